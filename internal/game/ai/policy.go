package ai

import (
	"context"
	"slices"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/cory-johannsen/skirmish/internal/game/combat"
	"github.com/cory-johannsen/skirmish/internal/game/creature"
	"github.com/cory-johannsen/skirmish/internal/game/inventory"
)

// KillPolicy decides whether a creature keeps acting after felling its target.
type KillPolicy interface {
	ContinueAfterKill(ctx context.Context, c *creature.Creature) bool
}

// DefaultKillPolicy continues while the creature is alive and can still pay
// for an attack with one of its armaments, counting quick actions for quick
// weapons.
type DefaultKillPolicy struct{}

// ContinueAfterKill implements KillPolicy.
func (DefaultKillPolicy) ContinueAfterKill(_ context.Context, c *creature.Creature) bool {
	if !c.Alive() {
		return false
	}
	return slices.ContainsFunc(Preferred(c), func(w *inventory.Weapon) bool {
		return combat.HasActionFor(c, w)
	})
}

// ScriptCaller is the interface required to evaluate Lua policy hooks.
type ScriptCaller interface {
	// CallHook calls a named Lua function in the given scope's VM.
	// Returns (LNil, nil) if the function is not defined.
	CallHook(scopeID, hook string, args ...lua.LValue) (lua.LValue, error)
}

// ScriptedKillPolicy asks the Lua hook continue_after_kill(creature_id) and
// falls back when the hook is undefined, errors, or returns nil.
//
// Invariant: caller and fallback are non-nil.
type ScriptedKillPolicy struct {
	caller   ScriptCaller
	scopeID  string
	fallback KillPolicy
	logger   *zap.Logger
}

// NewScriptedKillPolicy constructs a ScriptedKillPolicy.
//
// Precondition: caller and logger must not be nil; a nil fallback means DefaultKillPolicy.
func NewScriptedKillPolicy(caller ScriptCaller, scopeID string, fallback KillPolicy, logger *zap.Logger) *ScriptedKillPolicy {
	if caller == nil {
		panic("ai.NewScriptedKillPolicy: caller must not be nil")
	}
	if logger == nil {
		panic("ai.NewScriptedKillPolicy: logger must not be nil")
	}
	if fallback == nil {
		fallback = DefaultKillPolicy{}
	}
	return &ScriptedKillPolicy{caller: caller, scopeID: scopeID, fallback: fallback, logger: logger}
}

// ContinueAfterKill implements KillPolicy.
func (p *ScriptedKillPolicy) ContinueAfterKill(ctx context.Context, c *creature.Creature) bool {
	if !c.Alive() {
		return false
	}
	ret, err := p.caller.CallHook(p.scopeID, "continue_after_kill", lua.LString(c.ID))
	if err != nil {
		p.logger.Warn("continue_after_kill hook failed", zap.String("creature", c.ID), zap.Error(err))
		return p.fallback.ContinueAfterKill(ctx, c)
	}
	if ret == lua.LNil {
		return p.fallback.ContinueAfterKill(ctx, c)
	}
	return lua.LVAsBool(ret)
}
