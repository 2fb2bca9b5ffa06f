package command

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/cory-johannsen/skirmish/internal/game/encounter"
	"github.com/cory-johannsen/skirmish/internal/game/pathing"
)

// ErrUnknownCommand is returned for input that resolves to no command.
var ErrUnknownCommand = errors.New("unknown command")

// ErrUsage is returned when a command's arguments do not match its usage.
var ErrUsage = errors.New("usage")

// Interpreter runs console lines against one encounter. New log lines are
// written to out after every command that changes the fight.
type Interpreter struct {
	reg    *Registry
	enc    *encounter.Encounter
	out    io.Writer
	seen   int
	logger *zap.Logger
}

// NewInterpreter creates an Interpreter writing to out.
//
// Precondition: reg, enc, out and logger must not be nil.
func NewInterpreter(reg *Registry, enc *encounter.Encounter, out io.Writer, logger *zap.Logger) *Interpreter {
	if reg == nil || enc == nil || out == nil || logger == nil {
		panic("command.NewInterpreter: reg, enc, out and logger must not be nil")
	}
	return &Interpreter{reg: reg, enc: enc, out: out, logger: logger}
}

// Flush writes every log line not yet shown.
func (in *Interpreter) Flush() {
	for _, line := range in.enc.Log().Since(in.seen) {
		fmt.Fprintln(in.out, line)
	}
	in.seen = in.enc.Log().Total()
}

// Execute runs one input line.
//
// Postcondition: quit is true iff the line was a quit command. Bad input
// returns an error wrapping ErrUnknownCommand or ErrUsage and changes nothing.
func (in *Interpreter) Execute(ctx context.Context, line string) (quit bool, err error) {
	pr := Parse(line)
	if pr.Command == "" {
		return false, nil
	}
	cmd, ok := in.reg.Resolve(pr.Command)
	if !ok {
		return false, fmt.Errorf("%q: %w", pr.Command, ErrUnknownCommand)
	}
	in.logger.Debug("command", zap.String("name", cmd.Name), zap.Strings("args", pr.Args))

	switch cmd.Handler {
	case HandlerQuit:
		return true, nil
	case HandlerHelp:
		fmt.Fprint(in.out, in.reg.HelpText())
	case HandlerStatus:
		in.status()
	case HandlerMap:
		fmt.Fprint(in.out, RenderBoard(in.enc.Board(), in.enc.Creatures()))
	case HandlerLog:
		for _, l := range in.enc.Log().Lines() {
			fmt.Fprintln(in.out, l)
		}
		in.seen = in.enc.Log().Total()
	case HandlerFloor:
		err = in.floor(cmd, pr.Args)
	case HandlerReach:
		err = in.reach(cmd, pr.Args)
	case HandlerMove:
		err = in.move(cmd, pr.Args)
	case HandlerAttack:
		err = in.attack(cmd, pr.Args)
	case HandlerAuto:
		err = in.auto(ctx, cmd, pr.Args)
	case HandlerNext:
		if c := in.enc.NextCreature(); c != nil {
			fmt.Fprintf(in.out, "%s is up.\n", c.Name)
		} else {
			fmt.Fprintln(in.out, "Nobody else can act this round.")
		}
	case HandlerEnd:
		err = in.enc.EndTurn(ctx)
	default:
		return false, fmt.Errorf("%q: %w", pr.Command, ErrUnknownCommand)
	}
	in.Flush()
	return false, err
}

func usage(cmd *Command) error {
	return fmt.Errorf("%w: %s", ErrUsage, cmd.Usage)
}

func (in *Interpreter) status() {
	fmt.Fprintf(in.out, "Round %d, %s\n", in.enc.Round(), in.enc.Outcome())
	if a := in.enc.Active(); a != nil {
		fmt.Fprintf(in.out, "Active: %s\n", a.ID)
	}
	for _, c := range in.enc.Creatures() {
		fmt.Fprintln(in.out, FormatCreature(c))
	}
}

func (in *Interpreter) floor(cmd *Command, args []string) error {
	if len(args) != 2 {
		return usage(cmd)
	}
	p, err := ParsePoint(args[0], args[1])
	if err != nil {
		return fmt.Errorf("%w: %s", ErrUsage, err)
	}
	items := in.enc.Floor().ItemsAt(p)
	if len(items) == 0 {
		fmt.Fprintf(in.out, "Nothing lies at %s.\n", p)
		return nil
	}
	for _, it := range items {
		fmt.Fprintf(in.out, "%s (%s)\n", it.ItemID, it.InstanceID)
	}
	return nil
}

func (in *Interpreter) reach(cmd *Command, args []string) error {
	if len(args) != 1 {
		return usage(cmd)
	}
	res, err := in.enc.Reachable(args[0])
	if err != nil {
		return err
	}
	var tiles []string
	for _, p := range res.Tiles {
		if p != res.Origin {
			tiles = append(tiles, fmt.Sprintf("%s:%d", p, res.Cost[p]))
		}
	}
	if len(tiles) == 0 {
		fmt.Fprintf(in.out, "%s cannot move.\n", args[0])
		return nil
	}
	fmt.Fprintln(in.out, strings.Join(tiles, " "))
	return nil
}

func (in *Interpreter) move(cmd *Command, args []string) error {
	if len(args) != 3 {
		return usage(cmd)
	}
	to, err := ParsePoint(args[1], args[2])
	if err != nil {
		return fmt.Errorf("%w: %s", ErrUsage, err)
	}
	res, err := in.enc.PlayerMove(args[0], to)
	if err != nil {
		return err
	}
	if res.Status == pathing.MovePartial {
		fmt.Fprintf(in.out, "Stopped after %d steps.\n", len(res.Steps))
	}
	return nil
}

func (in *Interpreter) attack(cmd *Command, args []string) error {
	if len(args) < 2 || len(args) > 3 {
		return usage(cmd)
	}
	weapon := ""
	if len(args) == 3 {
		weapon = args[2]
	}
	_, err := in.enc.PlayerAttack(args[0], args[1], weapon)
	return err
}

func (in *Interpreter) auto(ctx context.Context, cmd *Command, args []string) error {
	if len(args) != 1 {
		return usage(cmd)
	}
	acted, err := in.enc.AutoPlay(ctx, args[0])
	if err != nil {
		return err
	}
	if !acted {
		fmt.Fprintf(in.out, "%s waits.\n", args[0])
	}
	return nil
}
