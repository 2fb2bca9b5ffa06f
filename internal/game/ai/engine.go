// Package ai chooses and executes actions for AI-controlled creatures.
//
// Decision making (Engine) is a pure query over a world snapshot; execution
// (Executor) applies one decision at a time and is the only code here that
// mutates creatures.
package ai

import (
	"errors"
	"fmt"
	"sort"

	"github.com/cory-johannsen/skirmish/internal/game/combat"
	"github.com/cory-johannsen/skirmish/internal/game/creature"
	"github.com/cory-johannsen/skirmish/internal/game/inventory"
	"github.com/cory-johannsen/skirmish/internal/game/pathing"
	"github.com/cory-johannsen/skirmish/internal/game/world"
)

// ErrNoAIState is returned when a decision is requested for a creature without AI state.
var ErrNoAIState = errors.New("ai: creature has no AI state")

// DecisionType is the kind of action an AI decision asks for.
type DecisionType string

const (
	DecisionAttack DecisionType = "attack"
	DecisionMove   DecisionType = "move"
	DecisionWait   DecisionType = "wait"
)

// Reasons carried by decisions.
const (
	ReasonAttack     = "attack"
	ReasonNoTarget   = "no-target"
	ReasonNoMovement = "no-movement"
	ReasonHoldGround = "hold-ground"
	ReasonCannotAct  = "cannot-act"
)

// Decision is one action chosen by the Engine.
type Decision struct {
	Type DecisionType
	// Target is the creature attacked, or the creature a move is meant to engage.
	Target *creature.Creature
	// Weapon is the armament for an attack.
	Weapon *inventory.Weapon
	// Position and Path describe a move; Path excludes the current tile.
	Position world.Point
	Path     []world.Point
	Reason   string
}

// TargetID returns the decision's target ID, or "".
func (d Decision) TargetID() string {
	if d.Target == nil {
		return ""
	}
	return d.Target.ID
}

// Weights are the tunable constants of the scoring heuristic. Attack must
// exceed any distance swing so a valid attack tile always dominates.
type Weights struct {
	Distance int
	Attack   int
	Stay     int
	Pack     int
}

// DefaultWeights returns the stock weights.
func DefaultWeights() Weights {
	return Weights{Distance: 10, Attack: 1000, Stay: 1, Pack: 5}
}

// Engine makes AI decisions.
type Engine struct {
	weights     Weights
	visionRange int
}

// NewEngine creates an Engine.
//
// Precondition: visionRange > 0.
func NewEngine(w Weights, visionRange int) *Engine {
	if visionRange <= 0 {
		panic("ai.NewEngine: visionRange must be > 0")
	}
	return &Engine{weights: w, visionRange: visionRange}
}

// Weights returns the engine's scoring weights.
func (e *Engine) Weights() Weights { return e.weights }

// MakeDecision picks the next action for c.
//
// The target is the best visible hostile. If c can attack it from where it
// stands, the decision is an attack. Otherwise every reachable tile is scored
// and c moves to the strictly best one, or waits.
//
// Precondition: c.AI is non-nil, else ErrNoAIState is returned.
// Postcondition: no creature or board state is modified.
func (e *Engine) MakeDecision(c *creature.Creature, all []*creature.Creature, b *world.Board) (Decision, error) {
	if c.AI == nil {
		return Decision{}, fmt.Errorf("ai.Engine.MakeDecision: creature %q: %w", c.ID, ErrNoAIState)
	}
	if !c.Alive() || !c.Placed() {
		return Decision{Type: DecisionWait, Reason: ReasonCannotAct}, nil
	}

	target := e.SelectTarget(c, e.hostilesInView(c, all, b), all, b)
	if target == nil {
		return Decision{Type: DecisionWait, Reason: ReasonNoTarget}, nil
	}

	if w, ok := e.ChooseArmament(c, target, all, b, nil); ok {
		return Decision{Type: DecisionAttack, Target: target, Weapon: w, Position: c.Position, Reason: ReasonAttack}, nil
	}

	if c.RemainingMovement <= 0 {
		return Decision{Type: DecisionWait, Target: target, Reason: ReasonNoMovement}, nil
	}

	reach := pathing.GetReachableTiles(c, all, b)
	origin := c.Position
	best := origin
	bestScore := e.ScoreTile(c, target, origin, all, b) + e.weights.Stay
	for _, p := range reach.Tiles {
		if p == origin {
			continue
		}
		if s := e.ScoreTile(c, target, p, all, b); s > bestScore {
			best, bestScore = p, s
		}
	}
	if best == origin {
		return Decision{Type: DecisionWait, Target: target, Reason: ReasonHoldGround}, nil
	}
	path, _ := reach.PathTo(best)
	return Decision{Type: DecisionMove, Target: target, Position: best, Path: path, Reason: ReasonAttack}, nil
}

func (e *Engine) hostilesInView(c *creature.Creature, all []*creature.Creature, b *world.Board) []*creature.Creature {
	var out []*creature.Creature
	for _, o := range pathing.VisibleTo(c, all, b, e.visionRange) {
		if c.IsHostileTo(o) {
			out = append(out, o)
		}
	}
	return out
}

// SelectTarget picks the target among candidates.
//
// A sticky target that is still a candidate is kept. Keep-distance creatures
// prefer the farthest target they can already attack, else the nearest. All
// others score -distance*Distance + Aggression*missing vitality (+Pack per
// ally adjacent to the target with pack tactics). Ties go to the lower ID.
func (e *Engine) SelectTarget(c *creature.Creature, candidates []*creature.Creature, all []*creature.Creature, b *world.Board) *creature.Creature {
	if len(candidates) == 0 {
		return nil
	}
	sorted := append([]*creature.Creature(nil), candidates...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	if id := c.AI.TargetID; id != "" {
		for _, t := range sorted {
			if t.ID == id {
				return t
			}
		}
	}

	if c.AI.KeepDistance {
		var best *creature.Creature
		bestDist := -1
		for _, t := range sorted {
			if _, ok := e.ChooseArmament(c, t, all, b, nil); !ok {
				continue
			}
			if d := world.Distance(c.Position, t.Position); d > bestDist {
				best, bestDist = t, d
			}
		}
		if best != nil {
			return best
		}
		return nearest(c.Position, sorted)
	}

	var best *creature.Creature
	bestScore := 0
	for _, t := range sorted {
		s := -world.Distance(c.Position, t.Position)*e.weights.Distance +
			c.AI.Aggression*(t.MaxVitality-t.Vitality)
		if c.AI.PackTactics {
			s += e.weights.Pack * alliesEngaging(c, t, all)
		}
		if best == nil || s > bestScore {
			best, bestScore = t, s
		}
	}
	return best
}

func nearest(from world.Point, sorted []*creature.Creature) *creature.Creature {
	var best *creature.Creature
	bestDist := 0
	for _, t := range sorted {
		if d := world.Distance(from, t.Position); best == nil || d < bestDist {
			best, bestDist = t, d
		}
	}
	return best
}

// alliesEngaging counts c's living allies adjacent to t.
func alliesEngaging(c, t *creature.Creature, all []*creature.Creature) int {
	n := 0
	for _, o := range all {
		if o.ID == c.ID || !o.Alive() || !o.Placed() || c.IsHostileTo(o) || !o.IsHostileTo(t) {
			continue
		}
		if world.Adjacent(o.Position, t.Position) {
			n++
		}
	}
	return n
}

// Preferred returns c's armaments ordered by behavior preference, skipping
// broken weapons and spells c cannot afford.
func Preferred(c *creature.Creature) []*inventory.Weapon {
	var spells, ranged, melee []*inventory.Weapon
	for _, w := range c.Armaments() {
		switch {
		case w.Broken:
		case w.Def.IsSpell():
			if w.Def.ManaCost <= c.Mana {
				spells = append(spells, w)
			}
		case w.Def.IsRanged():
			ranged = append(ranged, w)
		default:
			melee = append(melee, w)
		}
	}
	var out []*inventory.Weapon
	behavior := creature.BehaviorMelee
	if c.AI != nil {
		behavior = c.AI.Behavior
	}
	switch behavior {
	case creature.BehaviorCaster:
		out = append(append(append(out, spells...), ranged...), melee...)
	case creature.BehaviorRanged:
		out = append(append(append(out, ranged...), spells...), melee...)
	default:
		out = append(append(append(out, melee...), ranged...), spells...)
	}
	return out
}

// ChooseArmament returns the first preferred armament with which c may attack
// target from `from` (c's own tile when nil).
//
// Postcondition: ok is false when no armament validates; w is then the most
// preferred armament, or nil if c has none usable.
func (e *Engine) ChooseArmament(c, target *creature.Creature, all []*creature.Creature, b *world.Board, from *world.Point) (w *inventory.Weapon, ok bool) {
	prefs := Preferred(c)
	for _, arm := range prefs {
		v := combat.ValidateCombat(c, target, arm, all, b, combat.ValidateOptions{From: from})
		if v.Valid {
			return arm, true
		}
	}
	if len(prefs) > 0 {
		return prefs[0], false
	}
	return nil, false
}

// ScoreTile scores standing on p for engaging target.
//
// Distance counts against the score, except for keep-distance creatures on a
// tile they could attack from, where distance counts for it. A tile with a
// valid attack gains the Attack bonus, and with pack tactics Pack per ally
// already adjacent to the target when p is adjacent too.
func (e *Engine) ScoreTile(c, target *creature.Creature, p world.Point, all []*creature.Creature, b *world.Board) int {
	d := world.Distance(p, target.Position)
	_, canAttack := e.ChooseArmament(c, target, all, b, &p)

	score := -d * e.weights.Distance
	if canAttack {
		if c.AI.KeepDistance {
			score = d * e.weights.Distance
		}
		score += e.weights.Attack
	}
	if c.AI.PackTactics && world.Adjacent(p, target.Position) {
		score += e.weights.Pack * alliesEngaging(c, target, all)
	}
	return score
}
