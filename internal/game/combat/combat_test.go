package combat_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/skirmish/internal/game/combat"
	"github.com/cory-johannsen/skirmish/internal/game/creature"
	"github.com/cory-johannsen/skirmish/internal/game/inventory"
	"github.com/cory-johannsen/skirmish/internal/game/world"
)

// seqD6 returns scripted rolls in order and counts draws.
type seqD6 struct {
	rolls []int
	pos   int
}

func (s *seqD6) RollD6() int {
	v := s.rolls[s.pos%len(s.rolls)]
	s.pos++
	return v
}

var (
	terrain = world.NewTerrainRegistry()
	sword   = &inventory.WeaponDef{ID: "sword", Name: "Sword", Class: inventory.ClassMelee, Damage: 2, MinRange: 1, MaxRange: 1}
	spear   = &inventory.WeaponDef{ID: "spear", Name: "Spear", Class: inventory.ClassMelee, Damage: 1, MinRange: 1, MaxRange: 2}
	bow     = &inventory.WeaponDef{ID: "bow", Name: "Bow", Class: inventory.ClassRanged, Damage: 2, MinRange: 2, MaxRange: 8}
	dagger  = &inventory.WeaponDef{ID: "dagger", Name: "Dagger", Class: inventory.ClassMelee, Damage: 1, MinRange: 1, MaxRange: 1, Quick: true}
	bolt    = &inventory.WeaponDef{ID: "bolt", Name: "Firebolt", Class: inventory.ClassSpell, Damage: 3, MinRange: 1, MaxRange: 6, ManaCost: 2}
	mortar  = &inventory.WeaponDef{ID: "sling", Name: "Lobbed Stone", Class: inventory.ClassRanged, Damage: 1, MinRange: 2, MaxRange: 6, IgnoresLOS: true}
)

func board(cols, rows int) *world.Board {
	floor, _ := terrain.Get("floor")
	return world.NewBoard("arena", cols, rows, floor)
}

func fighter(id string, f creature.Faction, x, y int) *creature.Creature {
	c := &creature.Creature{
		ID: id, Name: id, Faction: f, Size: creature.SizeMedium,
		Movement: 4, Actions: 1, QuickActions: 1, Vitality: 5, MaxVitality: 5, Mana: 4, MaxMana: 4,
		Attributes: creature.Attributes{Combat: 2, Ranged: 1, Strength: 3, Intelligence: 2},
	}
	switch f {
	case creature.FactionPlayer:
		c.HostileTo = []creature.Faction{creature.FactionEnemy}
	case creature.FactionEnemy:
		c.HostileTo = []creature.Faction{creature.FactionPlayer}
	}
	c.ResetResources()
	c.Place(world.Pt(x, y))
	return c
}

func TestResolveAttack_LethalMeleeHit(t *testing.T) {
	b := board(5, 5)
	attacker := fighter("knight", creature.FactionPlayer, 1, 1)
	defender := fighter("orc", creature.FactionEnemy, 2, 1)
	defender.Armor = &inventory.ArmorDef{ID: "mail", ArmorValue: 4}
	defender.Vitality = 3
	d6 := &seqD6{rolls: []int{6, 6, 1, 1, 4, 5, 6, 1, 2}}
	r := combat.NewResolver(d6, zap.NewNop())

	res := r.ResolveAttack(attacker, defender, inventory.NewWeapon(sword), []*creature.Creature{attacker, defender}, b)
	require.Equal(t, combat.StatusResolved, res.Status)
	assert.True(t, res.Hit)
	assert.Equal(t, []int{4, 5, 6, 1, 2}, res.DamageDice, "pool = strength 3 + damage 2")
	assert.Equal(t, 3, res.Damage)
	assert.Equal(t, 0, defender.Vitality)
	assert.True(t, res.TargetDefeated)
	assert.Equal(t, 9, d6.pos)
	assert.Equal(t, 0, attacker.RemainingActions)
	assert.Contains(t, res.Narrative, "orc is defeated!")
}

func TestResolveAttack_OutOfRangeRejectedBeforeRolling(t *testing.T) {
	b := board(8, 8)
	attacker := fighter("knight", creature.FactionPlayer, 0, 0)
	defender := fighter("orc", creature.FactionEnemy, 5, 5)
	all := []*creature.Creature{attacker, defender}
	w := inventory.NewWeapon(spear)

	v := combat.ValidateCombat(attacker, defender, w, all, b, combat.ValidateOptions{})
	assert.False(t, v.Valid)
	assert.Equal(t, combat.ReasonOutOfRange, v.Reason)

	d6 := &seqD6{rolls: []int{6}}
	res := combat.NewResolver(d6, zap.NewNop()).ResolveAttack(attacker, defender, w, all, b)
	assert.Equal(t, combat.StatusRejected, res.Status)
	assert.Equal(t, combat.ReasonOutOfRange, res.Reason)
	assert.Zero(t, d6.pos, "no dice rolled")
	assert.Equal(t, 1, attacker.RemainingActions)
	assert.Equal(t, 5, defender.Vitality)
	require.Len(t, res.Narrative, 1)
	assert.Contains(t, res.Narrative[0], "out of range")
}

func TestResolveAttack_TiesGoToDefender(t *testing.T) {
	b := board(3, 3)
	attacker := fighter("knight", creature.FactionPlayer, 0, 0)
	defender := fighter("orc", creature.FactionEnemy, 1, 0)
	d6 := &seqD6{rolls: []int{3, 3, 3, 3}}

	res := combat.NewResolver(d6, zap.NewNop()).ResolveAttack(attacker, defender, inventory.NewWeapon(sword), []*creature.Creature{attacker, defender}, b)
	assert.False(t, res.Hit)
	assert.Zero(t, res.Damage)
	assert.Equal(t, 4, d6.pos, "no damage pool on a miss")
	assert.Equal(t, 0, attacker.RemainingActions, "a miss still spends the action")
}

func TestResolveAttack_ShieldAddsToDefense(t *testing.T) {
	b := board(3, 3)
	attacker := fighter("knight", creature.FactionPlayer, 0, 0)
	defender := fighter("orc", creature.FactionEnemy, 1, 0)
	defender.Shield = &inventory.ShieldDef{ID: "kite", DefenseBonus: 1}
	d6 := &seqD6{rolls: []int{4, 3, 3, 3}}

	res := combat.NewResolver(d6, zap.NewNop()).ResolveAttack(attacker, defender, inventory.NewWeapon(sword), []*creature.Creature{attacker, defender}, b)
	assert.Equal(t, 9, res.AttackRoll.Total())
	assert.Equal(t, 9, res.DefenseRoll.Total())
	assert.False(t, res.Hit)
}

func TestResolveAttack_RangedIsFlatAndUsesRangedAttribute(t *testing.T) {
	b := board(8, 3)
	attacker := fighter("archer", creature.FactionPlayer, 0, 1)
	attacker.Attributes.Ranged = 4
	defender := fighter("orc", creature.FactionEnemy, 5, 1)
	defender.Armor = &inventory.ArmorDef{ID: "plate", ArmorValue: 6}
	d6 := &seqD6{rolls: []int{2, 2, 2, 2}}

	res := combat.NewResolver(d6, zap.NewNop()).ResolveAttack(attacker, defender, inventory.NewWeapon(bow), []*creature.Creature{attacker, defender}, b)
	assert.Equal(t, "2d6+4", res.AttackRoll.Expression)
	assert.True(t, res.Hit)
	assert.Equal(t, 2, res.Damage, "flat damage ignores armor")
	assert.Empty(t, res.DamageDice)
	assert.Equal(t, 4, d6.pos)
	assert.Equal(t, world.East, attacker.Facing)
}

func TestResolveAttack_SpellUsesIntelligenceAndMana(t *testing.T) {
	b := board(8, 3)
	attacker := fighter("mage", creature.FactionPlayer, 0, 1)
	attacker.Attributes.Intelligence = 5
	attacker.Mana = 3
	defender := fighter("orc", creature.FactionEnemy, 3, 1)
	all := []*creature.Creature{attacker, defender}
	d6 := &seqD6{rolls: []int{1, 1, 1, 1}}
	r := combat.NewResolver(d6, zap.NewNop())
	spell := inventory.NewWeapon(bolt)

	res := r.ResolveAttack(attacker, defender, spell, all, b)
	assert.Equal(t, "2d6+5", res.AttackRoll.Expression)
	assert.True(t, res.Hit)
	assert.Equal(t, 3, res.Damage)
	assert.Equal(t, 1, attacker.Mana)

	attacker.ResetResources()
	v := combat.ValidateCombat(attacker, defender, spell, all, b, combat.ValidateOptions{})
	assert.Equal(t, combat.ReasonInsufficientMana, v.Reason)
}

func TestResolveAttack_QuickWeaponSpendsQuickAction(t *testing.T) {
	b := board(3, 3)
	attacker := fighter("rogue", creature.FactionPlayer, 0, 0)
	defender := fighter("orc", creature.FactionEnemy, 1, 0)
	all := []*creature.Creature{attacker, defender}
	r := combat.NewResolver(&seqD6{rolls: []int{1}}, zap.NewNop())
	knife := inventory.NewWeapon(dagger)

	r.ResolveAttack(attacker, defender, knife, all, b)
	assert.Equal(t, 0, attacker.RemainingQuickActions)
	assert.Equal(t, 1, attacker.RemainingActions)

	r.ResolveAttack(attacker, defender, knife, all, b)
	assert.Equal(t, 0, attacker.RemainingActions, "falls back to a full action")

	v := combat.ValidateCombat(attacker, defender, knife, all, b, combat.ValidateOptions{})
	assert.Equal(t, combat.ReasonNoActions, v.Reason)
	assert.True(t, combat.ValidateCombat(attacker, defender, knife, all, b, combat.ValidateOptions{Preview: true}).Valid)
}

func TestResolveAttack_WeaponBreaks(t *testing.T) {
	b := board(3, 3)
	attacker := fighter("knight", creature.FactionPlayer, 0, 0)
	attacker.Actions = 2
	attacker.ResetResources()
	defender := fighter("orc", creature.FactionEnemy, 1, 0)
	all := []*creature.Creature{attacker, defender}
	brittle := inventory.NewWeapon(&inventory.WeaponDef{ID: "club", Name: "Club", Class: inventory.ClassMelee, MinRange: 1, MaxRange: 1, Durability: 1})
	r := combat.NewResolver(&seqD6{rolls: []int{1}}, zap.NewNop())

	res := r.ResolveAttack(attacker, defender, brittle, all, b)
	assert.True(t, res.WeaponBroke)
	res = r.ResolveAttack(attacker, defender, brittle, all, b)
	assert.Equal(t, combat.ReasonBrokenWeapon, res.Reason)
	assert.Equal(t, 1, attacker.RemainingActions)
}

func TestValidateCombat_Reasons(t *testing.T) {
	b := board(7, 3)
	b.SetTerrain(world.Pt(2, 1), func() *world.TerrainDef { w, _ := terrain.Get("wall"); return w }())
	attacker := fighter("archer", creature.FactionPlayer, 0, 1)
	enemy := fighter("orc", creature.FactionEnemy, 4, 1)
	ally := fighter("ally", creature.FactionPlayer, 1, 0)
	corpse := fighter("corpse", creature.FactionEnemy, 3, 0)
	corpse.Vitality = 0
	offBoard := fighter("reserve", creature.FactionEnemy, 0, 0)
	offBoard.OnBoard = false
	all := []*creature.Creature{attacker, enemy, ally, corpse, offBoard}
	w := inventory.NewWeapon(bow)
	opts := combat.ValidateOptions{}

	assert.Equal(t, combat.ReasonNoLineOfSight, combat.ValidateCombat(attacker, enemy, w, all, b, opts).Reason)
	assert.True(t, combat.ValidateCombat(attacker, enemy, inventory.NewWeapon(mortar), all, b, opts).Valid, "lobbed attacks ignore walls")
	assert.Equal(t, combat.ReasonNotHostile, combat.ValidateCombat(attacker, ally, w, all, b, opts).Reason)
	assert.Equal(t, combat.ReasonTargetDead, combat.ValidateCombat(attacker, corpse, w, all, b, opts).Reason)
	assert.Equal(t, combat.ReasonSelfTarget, combat.ValidateCombat(attacker, attacker, w, all, b, opts).Reason)
	assert.Equal(t, combat.ReasonNotOnBoard, combat.ValidateCombat(attacker, offBoard, w, all, b, opts).Reason)

	from := world.Pt(3, 2)
	v := combat.ValidateCombat(attacker, enemy, inventory.NewWeapon(spear), all, b, combat.ValidateOptions{From: &from})
	assert.True(t, v.Valid, "hypothetical tile next to the target")
	assert.Equal(t, world.Pt(0, 1), attacker.Position)

	attacker.Vitality = 0
	assert.Equal(t, combat.ReasonAttackerDead, combat.ValidateCombat(attacker, enemy, w, all, b, opts).Reason)
}

func TestValidateCombat_LargeCreatureBlocksLine(t *testing.T) {
	b := board(7, 1)
	attacker := fighter("archer", creature.FactionPlayer, 0, 0)
	ogre := fighter("ogre", creature.FactionEnemy, 3, 0)
	ogre.Size = creature.SizeLarge
	orc := fighter("orc", creature.FactionEnemy, 6, 0)
	all := []*creature.Creature{attacker, ogre, orc}
	w := inventory.NewWeapon(bow)

	assert.Equal(t, combat.ReasonNoLineOfSight, combat.ValidateCombat(attacker, orc, w, all, b, combat.ValidateOptions{}).Reason)
	assert.True(t, combat.ValidateCombat(attacker, ogre, w, all, b, combat.ValidateOptions{}).Valid)
}

func TestValidateCombat_NilWeaponIsUnarmed(t *testing.T) {
	b := board(3, 3)
	attacker := fighter("brawler", creature.FactionPlayer, 0, 0)
	near := fighter("orc", creature.FactionEnemy, 1, 1)
	far := fighter("orc2", creature.FactionEnemy, 2, 2)
	all := []*creature.Creature{attacker, near, far}
	assert.True(t, combat.ValidateCombat(attacker, near, nil, all, b, combat.ValidateOptions{}).Valid)
	assert.Equal(t, combat.ReasonOutOfRange, combat.ValidateCombat(attacker, far, nil, all, b, combat.ValidateOptions{}).Reason)
}

func TestValidateCombat_DoesNotMutate(t *testing.T) {
	b := board(5, 5)
	attacker := fighter("knight", creature.FactionPlayer, 0, 0)
	defender := fighter("orc", creature.FactionEnemy, 1, 0)
	all := []*creature.Creature{attacker, defender}
	before := creature.CloneAll(all)
	w := inventory.NewWeapon(sword)

	combat.ValidateCombat(attacker, defender, w, all, b, combat.ValidateOptions{})
	assert.Equal(t, before, all)
	assert.Zero(t, w.Wear)
}

func TestResolveAttack_PureUnderFixedDice(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		b := board(4, 4)
		attacker := fighter("a", creature.FactionPlayer, 0, 0)
		defender := fighter("d", creature.FactionEnemy, 1, 0)
		attacker.Attributes.Combat = rapid.IntRange(0, 6).Draw(rt, "combat")
		attacker.Attributes.Strength = rapid.IntRange(0, 6).Draw(rt, "strength")
		defender.Attributes.Combat = rapid.IntRange(0, 6).Draw(rt, "defense")
		defender.NaturalArmor = rapid.IntRange(0, 7).Draw(rt, "armor")
		defender.Vitality = rapid.IntRange(1, 10).Draw(rt, "vitality")
		defender.MaxVitality = defender.Vitality
		damage := rapid.IntRange(0, 4).Draw(rt, "damage")
		rolls := rapid.SliceOfN(rapid.IntRange(1, 6), 16, 16).Draw(rt, "rolls")
		def := &inventory.WeaponDef{ID: "w", Name: "W", Class: inventory.ClassMelee, Damage: damage, MinRange: 1, MaxRange: 1}

		run := func() combat.Result {
			a, d := attacker.Clone(), defender.Clone()
			r := combat.NewResolver(&seqD6{rolls: rolls}, zap.NewNop())
			return r.ResolveAttack(a, d, inventory.NewWeapon(def), []*creature.Creature{a, d}, b)
		}
		first, second := run(), run()
		if first.Hit != second.Hit || first.Damage != second.Damage || first.TargetDefeated != second.TargetDefeated {
			rt.Fatalf("results differ: %+v vs %+v", first, second)
		}

		wantHit := rolls[0]+rolls[1]+attacker.Attributes.Combat > rolls[2]+rolls[3]+defender.Attributes.Combat
		if first.Hit != wantHit {
			rt.Fatalf("hit = %v, want %v", first.Hit, wantHit)
		}
		wantDamage := 0
		if wantHit {
			for _, d := range rolls[4 : 4+attacker.Attributes.Strength+damage] {
				if d >= defender.NaturalArmor {
					wantDamage++
				}
			}
		}
		if first.Damage != wantDamage {
			rt.Fatalf("damage = %d, want %d", first.Damage, wantDamage)
		}
		if first.TargetDefeated != (wantDamage >= defender.Vitality) {
			rt.Fatalf("defeated = %v with damage %d vs vitality %d", first.TargetDefeated, wantDamage, defender.Vitality)
		}
	})
}

func TestResolveAttack_LogsOutcome(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	b := board(3, 3)
	attacker := fighter("knight", creature.FactionPlayer, 0, 0)
	defender := fighter("orc", creature.FactionEnemy, 1, 0)
	r := combat.NewResolver(&seqD6{rolls: []int{6, 6, 1, 1, 6, 6, 6, 6, 6}}, zap.New(core))

	r.ResolveAttack(attacker, defender, inventory.NewWeapon(sword), []*creature.Creature{attacker, defender}, b)
	entries := logs.FilterMessage("attack resolved").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "knight", entries[0].ContextMap()["attacker"])
	assert.Equal(t, true, entries[0].ContextMap()["hit"])
}

func TestNewResolver_PanicsOnNil(t *testing.T) {
	assert.Panics(t, func() { combat.NewResolver(nil, zap.NewNop()) })
	assert.Panics(t, func() { combat.NewResolver(&seqD6{rolls: []int{1}}, nil) })
}
