package ai

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/cory-johannsen/skirmish/internal/game/combat"
	"github.com/cory-johannsen/skirmish/internal/game/creature"
	"github.com/cory-johannsen/skirmish/internal/game/pathing"
	"github.com/cory-johannsen/skirmish/internal/game/world"
	"github.com/cory-johannsen/skirmish/internal/telemetry"
)

// DefaultMaxIterations bounds one creature's decide/execute loop.
const DefaultMaxIterations = 10

// MessageSink receives fire-and-forget narrative lines.
type MessageSink interface {
	Message(msg string)
}

// SinkFunc adapts a function to MessageSink.
type SinkFunc func(msg string)

// Message implements MessageSink.
func (f SinkFunc) Message(msg string) { f(msg) }

// Event describes one executed action.
type Event struct {
	Creature *creature.Creature
	Decision Decision
	Attack   *combat.Result
	Move     *pathing.MoveResult
}

// Presenter is called after each executed action, before the next decision
// is made. It may block (e.g. to animate).
type Presenter interface {
	Present(ctx context.Context, ev Event)
}

// TurnContext is the world an AI turn runs against. Sink, Presenter, and
// OnDefeat are optional.
type TurnContext struct {
	Creatures []*creature.Creature
	Board     *world.Board
	Sink      MessageSink
	Presenter Presenter
	// OnDefeat is called once for each creature felled during the turn.
	OnDefeat func(defeated *creature.Creature)
}

func (tc *TurnContext) message(format string, args ...any) {
	if tc.Sink != nil {
		tc.Sink.Message(fmt.Sprintf(format, args...))
	}
}

// ExecutorConfig tunes the Executor.
type ExecutorConfig struct {
	MaxIterations int
}

// Executor runs AI creature turns.
//
// Invariant: engine, resolver, policy, and logger are non-nil.
type Executor struct {
	engine   *Engine
	resolver *combat.Resolver
	policy   KillPolicy
	cfg      ExecutorConfig
	logger   *zap.Logger
	tracer   trace.Tracer
}

// NewExecutor constructs an Executor. A zero MaxIterations uses DefaultMaxIterations;
// a nil policy uses DefaultKillPolicy.
//
// Precondition: engine, resolver, and logger must not be nil.
func NewExecutor(engine *Engine, resolver *combat.Resolver, policy KillPolicy, cfg ExecutorConfig, logger *zap.Logger) *Executor {
	if engine == nil {
		panic("ai.NewExecutor: engine must not be nil")
	}
	if resolver == nil {
		panic("ai.NewExecutor: resolver must not be nil")
	}
	if logger == nil {
		panic("ai.NewExecutor: logger must not be nil")
	}
	if policy == nil {
		policy = DefaultKillPolicy{}
	}
	if cfg.MaxIterations <= 0 {
		cfg.MaxIterations = DefaultMaxIterations
	}
	return &Executor{engine: engine, resolver: resolver, policy: policy, cfg: cfg, logger: logger, tracer: telemetry.Tracer("ai")}
}

// Engine returns the decision engine the executor consults.
func (x *Executor) Engine() *Engine { return x.engine }

type resources struct{ actions, movement, quick int }

func snapshot(c *creature.Creature) resources {
	return resources{c.RemainingActions, c.RemainingMovement, c.RemainingQuickActions}
}

// ExecuteAITurnForCreature repeatedly decides and executes actions for c until
// it waits, stops making progress, attacks without killing, or the iteration
// cap is hit. After a kill the KillPolicy decides whether to continue.
//
// Precondition: c is a member of tc.Creatures.
// Postcondition: returns true if any attack or move was applied. Errors from the
// decision engine (e.g. ErrNoAIState) are returned unchanged after wrapping.
func (x *Executor) ExecuteAITurnForCreature(ctx context.Context, c *creature.Creature, tc *TurnContext) (bool, error) {
	ctx, span := x.tracer.Start(ctx, "ai.creature_turn", trace.WithAttributes(
		attribute.String("creature.id", c.ID),
		attribute.String("creature.name", c.Name),
	))
	defer span.End()

	acted := false
	iterations := 0
	for ; iterations < x.cfg.MaxIterations && c.Alive(); iterations++ {
		before := snapshot(c)
		dec, err := x.engine.MakeDecision(c, tc.Creatures, tc.Board)
		if err != nil {
			span.RecordError(err)
			return acted, fmt.Errorf("ai.Executor.ExecuteAITurnForCreature: %w", err)
		}
		x.logger.Debug("ai decision",
			zap.String("creature", c.ID),
			zap.String("decision", string(dec.Type)),
			zap.String("reason", dec.Reason),
			zap.String("target", dec.TargetID()),
			zap.Int("x", dec.Position.X),
			zap.Int("y", dec.Position.Y),
		)

		stop := false
		switch dec.Type {
		case DecisionWait:
			stop = true
		case DecisionAttack:
			var applied bool
			applied, stop = x.attack(ctx, c, dec, tc)
			acted = acted || applied
		case DecisionMove:
			mv := pathing.ApplyMove(c, dec.Path, tc.Creatures, tc.Board)
			if mv.Status == pathing.MoveRejected {
				x.logger.Warn("ai move rejected", zap.String("creature", c.ID), zap.String("reason", mv.Reason))
				stop = true
				break
			}
			acted = true
			tc.message("%s moves to %s.", combat.DisplayName(c), c.Position)
			x.present(ctx, tc, Event{Creature: c, Decision: dec, Move: &mv})
		}
		if stop || snapshot(c) == before {
			iterations++
			break
		}
	}
	span.SetAttributes(attribute.Int("ai.iterations", iterations), attribute.Bool("ai.acted", acted))
	return acted, nil
}

// attack resolves an attack decision and reports whether it applied and
// whether the turn should stop.
func (x *Executor) attack(ctx context.Context, c *creature.Creature, dec Decision, tc *TurnContext) (applied, stop bool) {
	res := x.resolver.ResolveAttack(c, dec.Target, dec.Weapon, tc.Creatures, tc.Board)
	for _, line := range res.Narrative {
		tc.message("%s", line)
	}
	if res.Status == combat.StatusRejected {
		x.logger.Warn("ai attack rejected", zap.String("creature", c.ID), zap.String("reason", string(res.Reason)))
		return false, true
	}
	*c.AI = c.AI.WithTarget(dec.Target.ID)
	x.present(ctx, tc, Event{Creature: c, Decision: dec, Attack: &res})

	if !res.TargetDefeated {
		return true, true
	}
	*c.AI = c.AI.ClearTarget()
	if tc.OnDefeat != nil {
		tc.OnDefeat(dec.Target)
	}
	return true, !x.policy.ContinueAfterKill(ctx, c)
}

func (x *Executor) present(ctx context.Context, tc *TurnContext, ev Event) {
	if tc.Presenter != nil {
		tc.Presenter.Present(ctx, ev)
	}
}
