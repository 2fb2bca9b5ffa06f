// Package creature defines combatants, the groups they belong to, their AI
// state, and the preset factory that builds them for an encounter.
package creature

import (
	"maps"
	"slices"

	"github.com/cory-johannsen/skirmish/internal/game/inventory"
	"github.com/cory-johannsen/skirmish/internal/game/world"
)

// Controller tags who drives a creature.
type Controller string

const (
	ControlPlayer Controller = "player"
	ControlAI     Controller = "ai"
)

// Kind is the preset family a creature was built from.
type Kind string

const (
	KindHero      Kind = "hero"
	KindMercenary Kind = "mercenary"
	KindMonster   Kind = "monster"
)

// Faction identifies a side. Hostility between factions is data driven via HostileTo.
type Faction string

const (
	FactionPlayer  Faction = "player"
	FactionEnemy   Faction = "enemy"
	FactionNeutral Faction = "neutral"
)

// Size is a creature's size class.
type Size string

const (
	SizeSmall  Size = "small"
	SizeMedium Size = "medium"
	SizeLarge  Size = "large"
	SizeHuge   Size = "huge"
)

// Valid reports whether s is a known size class.
func (s Size) Valid() bool {
	switch s {
	case SizeSmall, SizeMedium, SizeLarge, SizeHuge:
		return true
	}
	return false
}

// BlocksSight reports whether a creature of this size blocks line of sight past it.
func (s Size) BlocksSight() bool { return s == SizeLarge || s == SizeHuge }

// BlocksPassage reports whether friendly creatures may not move through this size.
func (s Size) BlocksPassage() bool { return s == SizeHuge }

// Attributes holds the six attribute scores.
type Attributes struct {
	Combat       int `yaml:"combat"`
	Ranged       int `yaml:"ranged"`
	Strength     int `yaml:"strength"`
	Agility      int `yaml:"agility"`
	Courage      int `yaml:"courage"`
	Intelligence int `yaml:"intelligence"`
}

// Creature is a combatant on (or waiting to enter) the board.
//
// Invariants: 0 <= Remaining* <= max for every resource; 0 <= Vitality <= MaxVitality.
// The Spend*/ApplyDamage/Reset methods are the only mutators that preserve them.
type Creature struct {
	ID         string
	Name       string
	Kind       Kind
	Controller Controller
	Faction    Faction
	GroupID    string
	HostileTo  []Faction
	Size       Size

	Position world.Point
	OnBoard  bool
	Facing   world.Direction

	Attributes Attributes

	Movement              int
	RemainingMovement     int
	Actions               int
	RemainingActions      int
	QuickActions          int
	RemainingQuickActions int

	Vitality     int
	MaxVitality  int
	Mana         int
	MaxMana      int
	NaturalArmor int
	VisionRange  int // 0 uses the engine default

	Weapons   []*inventory.Weapon
	Spells    []*inventory.Weapon
	Armor     *inventory.ArmorDef
	Shield    *inventory.ShieldDef
	Inventory []string
	Skills    map[string]int

	AI *AIState
}

// Alive reports whether the creature has vitality left.
func (c *Creature) Alive() bool { return c.Vitality > 0 }

// Placed reports whether the creature is on the board.
func (c *Creature) Placed() bool { return c.OnBoard }

// Place puts the creature on tile p.
func (c *Creature) Place(p world.Point) {
	c.Position = p
	c.OnBoard = true
}

// Pos returns the creature's tile and whether it is on the board.
func (c *Creature) Pos() (world.Point, bool) { return c.Position, c.OnBoard }

// CanAct reports whether the creature is alive with movement or actions left.
func (c *Creature) CanAct() bool {
	return c.Alive() && (c.RemainingMovement > 0 || c.RemainingActions > 0)
}

// HasResources reports whether any of movement, actions, or quick actions remain.
func (c *Creature) HasResources() bool {
	return c.RemainingMovement > 0 || c.RemainingActions > 0 || c.RemainingQuickActions > 0
}

// IsPlayerControlled reports whether the player drives this creature.
func (c *Creature) IsPlayerControlled() bool { return c.Controller == ControlPlayer }

// IsAIControlled reports whether the AI drives this creature.
func (c *Creature) IsAIControlled() bool { return c.Controller == ControlAI }

// IsHostileTo reports whether c and other are enemies. Hostility holds when either
// side lists the other's faction; a creature is never hostile to itself.
func (c *Creature) IsHostileTo(other *Creature) bool {
	if other == nil || other.ID == c.ID {
		return false
	}
	return slices.Contains(c.HostileTo, other.Faction) || slices.Contains(other.HostileTo, c.Faction)
}

// EffectiveArmor is the equipped armor value, or natural armor when unarmored.
func (c *Creature) EffectiveArmor() int {
	if c.Armor != nil {
		return c.Armor.ArmorValue
	}
	return c.NaturalArmor
}

// DefenseBonus is the shield bonus added to defense rolls.
func (c *Creature) DefenseBonus() int {
	if c.Shield != nil {
		return c.Shield.DefenseBonus
	}
	return 0
}

// Armaments lists every way the creature can attack: weapons then spells.
// A creature with no weapons fights unarmed.
func (c *Creature) Armaments() []*inventory.Weapon {
	out := make([]*inventory.Weapon, 0, len(c.Weapons)+len(c.Spells)+1)
	out = append(out, c.Weapons...)
	if len(c.Weapons) == 0 {
		out = append(out, Unarmed())
	}
	return append(out, c.Spells...)
}

// Unarmed returns a natural-weapon instance. It never wears.
func Unarmed() *inventory.Weapon {
	return &inventory.Weapon{InstanceID: inventory.Unarmed.ID, Def: inventory.Unarmed}
}

// SpendAction consumes one action. Returns false if none remain.
func (c *Creature) SpendAction() bool {
	if c.RemainingActions <= 0 {
		return false
	}
	c.RemainingActions--
	return true
}

// SpendQuickAction consumes one quick action. Returns false if none remain.
func (c *Creature) SpendQuickAction() bool {
	if c.RemainingQuickActions <= 0 {
		return false
	}
	c.RemainingQuickActions--
	return true
}

// SpendMovement consumes n movement points.
//
// Postcondition: returns false and changes nothing when n < 0 or n > RemainingMovement.
func (c *Creature) SpendMovement(n int) bool {
	if n < 0 || n > c.RemainingMovement {
		return false
	}
	c.RemainingMovement -= n
	return true
}

// EndMovement forfeits all remaining movement.
func (c *Creature) EndMovement() { c.RemainingMovement = 0 }

// SpendMana consumes n mana. Returns false and changes nothing if n exceeds current mana.
func (c *Creature) SpendMana(n int) bool {
	if n < 0 || n > c.Mana {
		return false
	}
	c.Mana -= n
	return true
}

// ApplyDamage reduces vitality by n, floored at 0.
//
// Postcondition: defeated is true only if vitality went from above 0 to exactly 0.
func (c *Creature) ApplyDamage(n int) (defeated bool) {
	if n <= 0 || c.Vitality == 0 {
		return false
	}
	c.Vitality = max(c.Vitality-n, 0)
	return c.Vitality == 0
}

// ResetResources restores movement, actions, and quick actions to their maxima.
// Dead creatures stay exhausted.
func (c *Creature) ResetResources() {
	if !c.Alive() {
		c.RemainingMovement, c.RemainingActions, c.RemainingQuickActions = 0, 0, 0
		return
	}
	c.RemainingMovement = c.Movement
	c.RemainingActions = c.Actions
	c.RemainingQuickActions = c.QuickActions
}

// Clone returns a deep copy of c suitable for a read-only snapshot.
func (c *Creature) Clone() *Creature {
	if c == nil {
		return nil
	}
	cp := *c
	cp.HostileTo = slices.Clone(c.HostileTo)
	cp.Inventory = slices.Clone(c.Inventory)
	cp.Skills = maps.Clone(c.Skills)
	cp.Weapons = cloneWeapons(c.Weapons)
	cp.Spells = cloneWeapons(c.Spells)
	if c.AI != nil {
		ai := *c.AI
		cp.AI = &ai
	}
	return &cp
}

func cloneWeapons(in []*inventory.Weapon) []*inventory.Weapon {
	if in == nil {
		return nil
	}
	out := make([]*inventory.Weapon, len(in))
	for i, w := range in {
		out[i] = w.Clone()
	}
	return out
}

// Find returns the creature with id from all, or nil.
func Find(all []*Creature, id string) *Creature {
	for _, c := range all {
		if c.ID == id {
			return c
		}
	}
	return nil
}

// At returns the living creature standing on p, or nil.
func At(all []*Creature, p world.Point) *Creature {
	for _, c := range all {
		if c.Alive() && c.OnBoard && c.Position == p {
			return c
		}
	}
	return nil
}

// Living filters all down to creatures with vitality left.
func Living(all []*Creature) []*Creature {
	out := make([]*Creature, 0, len(all))
	for _, c := range all {
		if c.Alive() {
			out = append(out, c)
		}
	}
	return out
}

// CloneAll deep-copies a creature list.
func CloneAll(all []*Creature) []*Creature {
	out := make([]*Creature, len(all))
	for i, c := range all {
		out[i] = c.Clone()
	}
	return out
}
