package combat

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/cory-johannsen/skirmish/internal/game/creature"
	"github.com/cory-johannsen/skirmish/internal/game/dice"
	"github.com/cory-johannsen/skirmish/internal/game/inventory"
	"github.com/cory-johannsen/skirmish/internal/game/world"
)

// Status is the outcome class of ResolveAttack.
type Status string

const (
	StatusResolved Status = "resolved"
	StatusRejected Status = "rejected"
)

// Result holds the outcome of a single attack.
type Result struct {
	Status Status
	// Reason is set when Status is StatusRejected.
	Reason Reason
	Hit    bool
	Damage int
	// TargetDefeated is true only when this attack took the target from alive to 0 vitality.
	TargetDefeated bool
	AttackRoll     dice.RollResult
	DefenseRoll    dice.RollResult
	// DamageDice are the pool dice for a melee hit; empty for flat damage.
	DamageDice  []int
	WeaponBroke bool
	Narrative   []string
}

// Resolver rolls attacks with an injected d6 provider.
type Resolver struct {
	dice   dice.D6
	logger *zap.Logger
}

// NewResolver creates a Resolver.
//
// Precondition: d6 and logger must be non-nil.
func NewResolver(d6 dice.D6, logger *zap.Logger) *Resolver {
	if d6 == nil {
		panic("combat.NewResolver: d6 must not be nil")
	}
	if logger == nil {
		panic("combat.NewResolver: logger must not be nil")
	}
	return &Resolver{dice: d6, logger: logger}
}

// AttackBonus is the attribute added to the attacker's roll for weapon w.
func AttackBonus(c *creature.Creature, w *inventory.WeaponDef) int {
	switch w.Class {
	case inventory.ClassRanged:
		return c.Attributes.Ranged
	case inventory.ClassSpell:
		return c.Attributes.Intelligence
	default:
		return c.Attributes.Combat
	}
}

// DefenseValue is the modifier added to the defender's roll.
func DefenseValue(c *creature.Creature) int {
	return c.Attributes.Combat + c.DefenseBonus()
}

// ResolveAttack validates and then resolves attacker's attack on defender.
//
// Dice are drawn in a fixed order: two attack dice, two defense dice, then the
// melee damage pool on a hit.
//
// Precondition: attacker and defender are non-nil; a nil weapon means unarmed.
// Postcondition: a rejected attack rolls nothing and changes nothing. A resolved
// attack spends a quick action (quick weapons, when available) or an action,
// spends mana for spells, wears the weapon, turns the attacker toward the
// defender, and applies damage floored at 0.
func (r *Resolver) ResolveAttack(attacker, defender *creature.Creature, weapon *inventory.Weapon, all []*creature.Creature, b *world.Board) Result {
	if weapon == nil {
		weapon = creature.Unarmed()
	}
	v := ValidateCombat(attacker, defender, weapon, all, b, ValidateOptions{})
	if !v.Valid {
		return Result{Status: StatusRejected, Reason: v.Reason, Narrative: []string{Describe(attacker, defender, v)}}
	}
	def := weapon.Def

	if !(def.Quick && attacker.SpendQuickAction()) {
		attacker.SpendAction()
	}
	attacker.SpendMana(def.ManaCost)
	if d := world.DirectionTo(attacker.Position, defender.Position); d != "" {
		attacker.Facing = d
	}

	bonus := AttackBonus(attacker, def)
	defense := DefenseValue(defender)
	atk := r.opposed(bonus)
	dfn := r.opposed(defense)

	res := Result{Status: StatusResolved, AttackRoll: atk, DefenseRoll: dfn}
	res.Hit = atk.Total() > dfn.Total()
	res.WeaponBroke = weapon.Use()

	verb := "attacks"
	if def.IsSpell() {
		verb = "casts " + def.Name + " at"
	}
	line := fmt.Sprintf("%s %s %s", DisplayName(attacker), verb, DisplayName(defender))
	if !def.IsSpell() && def.ID != inventory.Unarmed.ID {
		line += " with " + def.Name
	}
	line += fmt.Sprintf(" (%d vs %d)", atk.Total(), dfn.Total())

	if res.Hit {
		if def.IsMelee() {
			res.DamageDice = dice.RollPool(r.dice, attacker.Attributes.Strength+def.Damage)
			res.Damage = dice.RollResult{Dice: res.DamageDice}.CountAtLeast(defender.EffectiveArmor())
		} else {
			res.Damage = def.Damage
		}
		res.TargetDefeated = defender.ApplyDamage(res.Damage)
		if res.Damage > 0 {
			line += fmt.Sprintf(": hit for %d damage.", res.Damage)
		} else {
			line += ": hit, but the armor holds."
		}
	} else {
		line += ": miss."
	}
	res.Narrative = append(res.Narrative, line)
	if res.TargetDefeated {
		res.Narrative = append(res.Narrative, fmt.Sprintf("%s is defeated!", DisplayName(defender)))
	}
	if res.WeaponBroke {
		res.Narrative = append(res.Narrative, fmt.Sprintf("%s's %s breaks!", DisplayName(attacker), def.Name))
	}

	r.logger.Debug("attack resolved",
		zap.String("attacker", attacker.ID),
		zap.String("defender", defender.ID),
		zap.String("weapon", def.ID),
		zap.Int("attack_total", atk.Total()),
		zap.Int("defense_total", dfn.Total()),
		zap.Bool("hit", res.Hit),
		zap.Int("damage", res.Damage),
		zap.Bool("defeated", res.TargetDefeated),
	)
	return res
}

func (r *Resolver) opposed(modifier int) dice.RollResult {
	return dice.RollResult{
		Expression: fmt.Sprintf("2d6%+d", modifier),
		Dice:       dice.RollPool(r.dice, 2),
		Modifier:   modifier,
	}
}
