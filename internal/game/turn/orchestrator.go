package turn

import (
	"context"
	"fmt"
	"slices"
	"sort"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/cory-johannsen/skirmish/internal/game/ai"
	"github.com/cory-johannsen/skirmish/internal/game/creature"
	"github.com/cory-johannsen/skirmish/internal/game/world"
	"github.com/cory-johannsen/skirmish/internal/telemetry"
)

// PhaseContext is everything a round needs. Creatures and Groups are mutated
// in place; Turn is replaced by EndTurn.
type PhaseContext struct {
	Creatures []*creature.Creature
	Groups    []*creature.Group
	Board     *world.Board
	Turn      TurnState
	Sink      ai.MessageSink
	Presenter ai.Presenter
	// OnDefeat is called for every creature an AI attack defeats.
	OnDefeat func(*creature.Creature)
}

func (pc *PhaseContext) group(id string) *creature.Group {
	for _, g := range pc.Groups {
		if g.ID == id {
			return g
		}
	}
	return nil
}

func (pc *PhaseContext) turnContext() *ai.TurnContext {
	return &ai.TurnContext{
		Creatures: pc.Creatures,
		Board:     pc.Board,
		Sink:      pc.Sink,
		Presenter: pc.Presenter,
		OnDefeat:  pc.OnDefeat,
	}
}

func (pc *PhaseContext) message(format string, args ...any) {
	if pc.Sink != nil {
		pc.Sink.Message(fmt.Sprintf(format, args...))
	}
}

// AITurnState tracks progress through an AI phase.
type AITurnState struct {
	Active     bool
	Groups     []string
	GroupIndex int
	// Processed holds the IDs of creatures that already acted this phase.
	Processed map[string]bool
}

// Current returns the ID of the group due to act, or "" when the phase is done.
func (s AITurnState) Current() string {
	if !s.Active || s.GroupIndex >= len(s.Groups) {
		return ""
	}
	return s.Groups[s.GroupIndex]
}

func (s AITurnState) clone() AITurnState {
	s.Groups = append([]string(nil), s.Groups...)
	processed := make(map[string]bool, len(s.Processed))
	for k, v := range s.Processed {
		processed[k] = v
	}
	s.Processed = processed
	return s
}

// Orchestrator runs the end-of-turn sequence: player group end hooks, the AI
// phase group by group, then a new round and the player group start hooks.
type Orchestrator struct {
	executor *ai.Executor
	hooks    []GroupHooks
	logger   *zap.Logger
	tracer   trace.Tracer
}

// NewOrchestrator constructs an Orchestrator.
//
// Precondition: executor and logger must not be nil.
// Postcondition: hooks fire in the order given.
func NewOrchestrator(executor *ai.Executor, logger *zap.Logger, hooks ...GroupHooks) *Orchestrator {
	if executor == nil {
		panic("turn.NewOrchestrator: executor must not be nil")
	}
	if logger == nil {
		panic("turn.NewOrchestrator: logger must not be nil")
	}
	return &Orchestrator{executor: executor, hooks: hooks, logger: logger, tracer: telemetry.Tracer("turn")}
}

// ShouldAITakeTurn reports whether c takes part in its group's AI turn: AI
// controlled, alive, on the board, with movement, actions, or quick actions left.
func (o *Orchestrator) ShouldAITakeTurn(c *creature.Creature) bool {
	return c.IsAIControlled() && c.Alive() && c.Placed() && c.HasResources()
}

// StartAITurnPhase collects the groups with a living AI-controlled member,
// enemy groups first and then by ID. A player group qualifies when a
// placement handed one of its members to the AI.
//
// Postcondition: Active is false when there is nothing to process.
func (o *Orchestrator) StartAITurnPhase(_ context.Context, pc *PhaseContext) AITurnState {
	var groups []*creature.Group
	for _, g := range pc.Groups {
		if slices.ContainsFunc(g.LivingMembers(pc.Creatures), (*creature.Creature).IsAIControlled) {
			groups = append(groups, g)
		}
	}
	sort.SliceStable(groups, func(i, j int) bool {
		ei, ej := groups[i].Faction == creature.FactionEnemy, groups[j].Faction == creature.FactionEnemy
		if ei != ej {
			return ei
		}
		return groups[i].ID < groups[j].ID
	})
	state := AITurnState{Groups: make([]string, 0, len(groups)), Processed: map[string]bool{}}
	for _, g := range groups {
		state.Groups = append(state.Groups, g.ID)
	}
	state.Active = len(state.Groups) > 0
	o.logger.Info("ai phase started", zap.Int("round", pc.Turn.Round), zap.Strings("groups", state.Groups))
	return state
}

// ContinueAITurnPhase fully resolves the current group: its start hooks fire,
// every member that should act takes its whole turn in initiative order, and
// its end hooks fire. Then the phase moves to the next group.
//
// Precondition: state came from StartAITurnPhase or a previous call.
// Postcondition: the input state is not modified; Active is false once every
// group has acted.
func (o *Orchestrator) ContinueAITurnPhase(ctx context.Context, state AITurnState, pc *PhaseContext) (AITurnState, error) {
	next := state.clone()
	id := next.Current()
	if id == "" {
		next.Active = false
		return next, nil
	}
	g := pc.group(id)
	if g == nil {
		return next, fmt.Errorf("turn.Orchestrator.ContinueAITurnPhase: unknown group %q", id)
	}

	ctx, span := o.tracer.Start(ctx, "turn.ai_group", trace.WithAttributes(
		attribute.String("group.id", g.ID),
		attribute.Int("round", pc.Turn.Round),
	))
	defer span.End()

	// Player groups get their hooks from EndTurn.
	aiGroup := g.Controller == creature.ControlAI
	if aiGroup {
		o.fireStart(ctx, g, pc)
	}
	members := g.LivingMembers(pc.Creatures)
	SortByInitiative(members)
	tc := pc.turnContext()
	acted := 0
	for _, c := range members {
		if next.Processed[c.ID] || !o.ShouldAITakeTurn(c) {
			continue
		}
		next.Processed[c.ID] = true
		did, err := o.executor.ExecuteAITurnForCreature(ctx, c, tc)
		if err != nil {
			span.RecordError(err)
			return next, fmt.Errorf("turn.Orchestrator.ContinueAITurnPhase: group %q: %w", g.ID, err)
		}
		if did {
			acted++
		}
	}
	if aiGroup {
		o.fireEnd(ctx, g, pc)
	}
	span.SetAttributes(attribute.Int("group.acted", acted))
	o.logger.Info("ai group finished", zap.String("group", g.ID), zap.Int("acted", acted))

	next.GroupIndex++
	if next.GroupIndex >= len(next.Groups) {
		next.Active = false
	}
	return next, nil
}

// RunAIPhase drives StartAITurnPhase and ContinueAITurnPhase until the phase
// is no longer active.
//
// Postcondition: every AI group with living members acted at most once.
func (o *Orchestrator) RunAIPhase(ctx context.Context, pc *PhaseContext) error {
	ctx, span := o.tracer.Start(ctx, "turn.ai_phase", trace.WithAttributes(attribute.Int("round", pc.Turn.Round)))
	defer span.End()

	state := o.StartAITurnPhase(ctx, pc)
	for state.Active {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("turn.Orchestrator.RunAIPhase: %w", err)
		}
		var err error
		if state, err = o.ContinueAITurnPhase(ctx, state, pc); err != nil {
			span.RecordError(err)
			return err
		}
	}
	return nil
}

// EndTurn ends the player's turn: player groups' end hooks, the AI phase, a
// new round, and player groups' start hooks.
//
// Postcondition: pc.Turn holds the new round on success; on error pc.Turn is unchanged.
func (o *Orchestrator) EndTurn(ctx context.Context, pc *PhaseContext) error {
	for _, g := range pc.Groups {
		if g.Controller == creature.ControlPlayer {
			o.fireEnd(ctx, g, pc)
		}
	}
	if err := o.RunAIPhase(ctx, pc); err != nil {
		return fmt.Errorf("turn.Orchestrator.EndTurn: %w", err)
	}
	pc.Turn = AdvanceTurn(pc.Turn, pc.Creatures)
	o.logger.Info("round started", zap.Int("round", pc.Turn.Round), zap.String("active", pc.Turn.ActiveID))
	pc.message("Round %d begins.", pc.Turn.Round)
	for _, g := range pc.Groups {
		if g.Controller == creature.ControlPlayer {
			o.fireStart(ctx, g, pc)
		}
	}
	return nil
}

func (o *Orchestrator) fireStart(ctx context.Context, g *creature.Group, pc *PhaseContext) {
	for _, h := range o.hooks {
		h.StartTurn(ctx, g, pc)
	}
}

func (o *Orchestrator) fireEnd(ctx context.Context, g *creature.Group, pc *PhaseContext) {
	for _, h := range o.hooks {
		h.EndTurn(ctx, g, pc)
	}
}
