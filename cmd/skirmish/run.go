package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cory-johannsen/skirmish/internal/game/command"
	"github.com/cory-johannsen/skirmish/internal/game/dice"
	"github.com/cory-johannsen/skirmish/internal/game/encounter"
	"github.com/cory-johannsen/skirmish/internal/observability"
)

var runCmd = &cobra.Command{
	Use:   "run [scenario]",
	Short: "Play a scenario",
	Long: `Starts a scenario and reads commands from standard input. Type 'help'
for the command list. With --autoplay the engine plays your creatures too and
the fight runs unattended until it is decided or --rounds is reached.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		// The transcript goes to stdout; keep it out of the log stream.
		a, err := bootstrap(ctx, cmd, observability.DropComponent("encounter"))
		if err != nil {
			return err
		}
		defer a.close(context.Background())

		scenario, _ := cmd.Flags().GetString("scenario")
		if len(args) == 1 {
			scenario = args[0]
		}
		if scenario == "" {
			return fmt.Errorf("no scenario given; available: %v", a.content.ScenarioIDs())
		}

		var src dice.Source = dice.NewCryptoSource()
		if cmd.Flags().Changed("seed") {
			seed, _ := cmd.Flags().GetUint64("seed")
			src = dice.NewSeededSource(seed)
			a.logger.Info("using seeded dice", zap.Uint64("seed", seed))
		}
		roller := dice.NewLoggedRoller(src, a.logger)

		enc, err := encounter.New(a.content, scenario, roller, encounter.Options{
			Engine:    a.cfg.Engine,
			Scripting: a.cfg.Scripting,
		}, a.logger)
		if err != nil {
			return err
		}
		defer enc.Close()

		out := cmd.OutOrStdout()
		in := command.NewInterpreter(command.DefaultRegistry(), enc, out, a.logger)
		in.Flush()

		rounds, _ := cmd.Flags().GetInt("rounds")
		if auto, _ := cmd.Flags().GetBool("autoplay"); auto {
			err = autoplay(ctx, enc, in, rounds)
		} else {
			err = interactive(ctx, enc, in, cmd.InOrStdin(), out)
		}
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Outcome after round %d: %s\n", enc.Round(), enc.Outcome())
		return nil
	},
}

func init() {
	runCmd.Flags().String("scenario", "", "scenario ID to play")
	runCmd.Flags().Uint64("seed", 0, "seed the dice for a reproducible fight")
	runCmd.Flags().Int("rounds", 50, "stop an unattended fight after this many rounds")
	runCmd.Flags().Bool("autoplay", false, "let the engine play the player's creatures")
	rootCmd.AddCommand(runCmd)
}

// autoplay runs every player creature through the AI each round, then ends the
// turn, until the fight is decided or maxRounds have passed.
func autoplay(ctx context.Context, enc *encounter.Encounter, in *command.Interpreter, maxRounds int) error {
	for enc.Outcome() == encounter.OutcomeOngoing && enc.Round() <= maxRounds {
		played := make(map[string]bool)
		for c := enc.Active(); c != nil && c.IsPlayerControlled() && !played[c.ID]; c = enc.NextCreature() {
			played[c.ID] = true
			if _, err := enc.AutoPlay(ctx, c.ID); err != nil {
				return err
			}
			in.Flush()
			if enc.Outcome() != encounter.OutcomeOngoing {
				return nil
			}
		}
		if err := enc.EndTurn(ctx); err != nil {
			return err
		}
		in.Flush()
	}
	return nil
}

// interactive reads commands from r until quit, end of input, or a decided fight.
func interactive(ctx context.Context, enc *encounter.Encounter, in *command.Interpreter, r io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(r)
	for enc.Outcome() == encounter.OutcomeOngoing {
		if a := enc.Active(); a != nil {
			fmt.Fprintf(out, "[round %d, %s] > ", enc.Round(), a.ID)
		} else {
			fmt.Fprintf(out, "[round %d] > ", enc.Round())
		}
		if !scanner.Scan() {
			return scanner.Err()
		}
		quit, err := in.Execute(ctx, scanner.Text())
		switch {
		case errors.Is(err, context.Canceled):
			return err
		case err != nil:
			fmt.Fprintf(out, "error: %v\n", err)
		case quit:
			return nil
		}
	}
	return nil
}
