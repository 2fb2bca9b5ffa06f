package turn

import (
	"context"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/cory-johannsen/skirmish/internal/game/ai"
	"github.com/cory-johannsen/skirmish/internal/game/creature"
	"github.com/cory-johannsen/skirmish/internal/game/world"
)

// GroupHooks observes the start and end of a group's turn.
type GroupHooks interface {
	StartTurn(ctx context.Context, g *creature.Group, pc *PhaseContext)
	EndTurn(ctx context.Context, g *creature.Group, pc *PhaseContext)
}

// Config holds round-level tunables.
type Config struct {
	// EngageRadius is the distance within which a hostile puts a group in combat.
	EngageRadius int
}

// CombatTracker keeps every Group.InCombat flag current. It refreshes all
// groups whenever any group's turn starts or ends.
type CombatTracker struct {
	radius int
	logger *zap.Logger
}

// NewCombatTracker constructs a CombatTracker.
//
// Precondition: cfg.EngageRadius >= 1; logger must not be nil.
func NewCombatTracker(cfg Config, logger *zap.Logger) *CombatTracker {
	if cfg.EngageRadius < 1 {
		panic("turn.NewCombatTracker: engage radius must be >= 1")
	}
	if logger == nil {
		panic("turn.NewCombatTracker: logger must not be nil")
	}
	return &CombatTracker{radius: cfg.EngageRadius, logger: logger}
}

// StartTurn implements GroupHooks.
func (t *CombatTracker) StartTurn(_ context.Context, _ *creature.Group, pc *PhaseContext) {
	t.Update(pc.Groups, pc.Creatures)
}

// EndTurn implements GroupHooks.
func (t *CombatTracker) EndTurn(_ context.Context, _ *creature.Group, pc *PhaseContext) {
	t.Update(pc.Groups, pc.Creatures)
}

// Update sets each group's InCombat flag: true iff a living, placed member is
// within the engage radius of a living, placed creature hostile to it.
func (t *CombatTracker) Update(groups []*creature.Group, all []*creature.Creature) {
	for _, g := range groups {
		in := t.engaged(g, all)
		if in != g.InCombat {
			t.logger.Info("group combat state changed", zap.String("group", g.ID), zap.Bool("in_combat", in))
		}
		g.InCombat = in
	}
}

func (t *CombatTracker) engaged(g *creature.Group, all []*creature.Creature) bool {
	for _, m := range g.LivingMembers(all) {
		if !m.Placed() {
			continue
		}
		for _, o := range all {
			if !o.Alive() || !o.Placed() || !m.IsHostileTo(o) {
				continue
			}
			if world.Distance(m.Position, o.Position) <= t.radius {
				return true
			}
		}
	}
	return false
}

// ScriptHooks forwards group turn boundaries to the scenario script as
// on_group_start(group_id, round) and on_group_end(group_id, round).
// Script errors are logged and otherwise ignored.
type ScriptHooks struct {
	caller  ai.ScriptCaller
	scopeID string
	logger  *zap.Logger
}

// NewScriptHooks constructs ScriptHooks.
//
// Precondition: caller and logger must not be nil.
func NewScriptHooks(caller ai.ScriptCaller, scopeID string, logger *zap.Logger) *ScriptHooks {
	if caller == nil {
		panic("turn.NewScriptHooks: caller must not be nil")
	}
	if logger == nil {
		panic("turn.NewScriptHooks: logger must not be nil")
	}
	return &ScriptHooks{caller: caller, scopeID: scopeID, logger: logger}
}

// StartTurn implements GroupHooks.
func (h *ScriptHooks) StartTurn(_ context.Context, g *creature.Group, pc *PhaseContext) {
	h.call("on_group_start", g, pc)
}

// EndTurn implements GroupHooks.
func (h *ScriptHooks) EndTurn(_ context.Context, g *creature.Group, pc *PhaseContext) {
	h.call("on_group_end", g, pc)
}

func (h *ScriptHooks) call(hook string, g *creature.Group, pc *PhaseContext) {
	if _, err := h.caller.CallHook(h.scopeID, hook, lua.LString(g.ID), lua.LNumber(pc.Turn.Round)); err != nil {
		h.logger.Warn("group hook failed", zap.String("hook", hook), zap.String("group", g.ID), zap.Error(err))
	}
}
