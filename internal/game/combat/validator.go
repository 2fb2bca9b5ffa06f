// Package combat validates and resolves attacks between creatures.
package combat

import (
	"fmt"

	"github.com/cory-johannsen/skirmish/internal/game/creature"
	"github.com/cory-johannsen/skirmish/internal/game/inventory"
	"github.com/cory-johannsen/skirmish/internal/game/pathing"
	"github.com/cory-johannsen/skirmish/internal/game/world"
)

// Reason is a machine-readable cause for a rejected attack.
type Reason string

const (
	ReasonOutOfRange       Reason = "out-of-range"
	ReasonBrokenWeapon     Reason = "broken-weapon"
	ReasonNoActions        Reason = "no-actions-remaining"
	ReasonNotHostile       Reason = "not-hostile"
	ReasonTargetDead       Reason = "target-dead"
	ReasonNoLineOfSight    Reason = "no-line-of-sight"
	ReasonAttackerDead     Reason = "attacker-dead"
	ReasonNotOnBoard       Reason = "not-on-board"
	ReasonInsufficientMana Reason = "insufficient-mana"
	ReasonSelfTarget       Reason = "self-target"
)

// String returns a human-readable description of the reason.
func (r Reason) String() string {
	switch r {
	case ReasonOutOfRange:
		return "target is out of range"
	case ReasonBrokenWeapon:
		return "weapon is broken"
	case ReasonNoActions:
		return "no actions remaining"
	case ReasonNotHostile:
		return "target is not hostile"
	case ReasonTargetDead:
		return "target is already dead"
	case ReasonNoLineOfSight:
		return "no line of sight"
	case ReasonAttackerDead:
		return "attacker is dead"
	case ReasonNotOnBoard:
		return "not on the board"
	case ReasonInsufficientMana:
		return "not enough mana"
	case ReasonSelfTarget:
		return "cannot attack itself"
	default:
		return string(r)
	}
}

// Validation is the outcome of ValidateCombat.
type Validation struct {
	Valid  bool
	Reason Reason
}

func reject(r Reason) Validation { return Validation{Reason: r} }

// ValidateOptions adjust what ValidateCombat checks.
type ValidateOptions struct {
	// From evaluates the attack as if the attacker stood on this tile.
	From *world.Point
	// Preview skips the action-availability check.
	Preview bool
}

// HasActionFor reports whether c can pay for an attack with w.
func HasActionFor(c *creature.Creature, w *inventory.Weapon) bool {
	if w != nil && w.Def.Quick && c.RemainingQuickActions > 0 {
		return true
	}
	return c.RemainingActions > 0
}

// ValidateCombat checks whether attacker may attack target with weapon. A nil
// weapon means unarmed.
//
// Postcondition: no creature, weapon, or board state is modified; every
// negative outcome carries a Reason.
func ValidateCombat(attacker, target *creature.Creature, weapon *inventory.Weapon, all []*creature.Creature, b *world.Board, opts ValidateOptions) Validation {
	if weapon == nil {
		weapon = creature.Unarmed()
	}
	if !attacker.Alive() {
		return reject(ReasonAttackerDead)
	}
	if attacker.ID == target.ID {
		return reject(ReasonSelfTarget)
	}
	if !target.Alive() {
		return reject(ReasonTargetDead)
	}
	origin := attacker.Position
	if opts.From != nil {
		origin = *opts.From
	}
	if !attacker.Placed() || !target.Placed() || !b.InBounds(origin) || !b.InBounds(target.Position) {
		return reject(ReasonNotOnBoard)
	}
	if !attacker.IsHostileTo(target) {
		return reject(ReasonNotHostile)
	}
	if !opts.Preview && !HasActionFor(attacker, weapon) {
		return reject(ReasonNoActions)
	}
	if weapon.Broken {
		return reject(ReasonBrokenWeapon)
	}
	if weapon.Def.ManaCost > attacker.Mana {
		return reject(ReasonInsufficientMana)
	}
	if !weapon.Def.InRange(world.Distance(origin, target.Position)) {
		return reject(ReasonOutOfRange)
	}
	if !weapon.Def.IgnoresLOS {
		blocked := pathing.SightBlockers(all, attacker.ID, target.ID)
		if !world.HasLineOfSight(b, origin, target.Position, blocked) {
			return reject(ReasonNoLineOfSight)
		}
	}
	return Validation{Valid: true}
}

// Describe formats a rejected validation for the message log.
func Describe(attacker, target *creature.Creature, v Validation) string {
	return fmt.Sprintf("%s cannot attack %s: %s.", DisplayName(attacker), DisplayName(target), v.Reason)
}

// DisplayName is the creature's name, falling back to its ID.
func DisplayName(c *creature.Creature) string {
	if c.Name != "" {
		return c.Name
	}
	return c.ID
}
