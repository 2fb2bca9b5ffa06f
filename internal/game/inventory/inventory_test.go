package inventory_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/skirmish/internal/game/inventory"
	"github.com/cory-johannsen/skirmish/internal/game/world"
)

func writeYAML(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
}

func TestWeaponDef_Validate_RejectsEmpty(t *testing.T) {
	w := &inventory.WeaponDef{}
	assert.Error(t, w.Validate())
}

func TestWeaponDef_Validate_AcceptsMinimalMelee(t *testing.T) {
	w := &inventory.WeaponDef{ID: "club", Name: "Club", Class: inventory.ClassMelee, Damage: 1, MinRange: 1, MaxRange: 1}
	assert.NoError(t, w.Validate())
}

func TestWeaponDef_Validate_RejectsInvertedRange(t *testing.T) {
	w := &inventory.WeaponDef{ID: "bow", Name: "Bow", Class: inventory.ClassRanged, MinRange: 5, MaxRange: 2}
	assert.Error(t, w.Validate())
}

func TestWeaponDef_Validate_RejectsManaOnNonSpell(t *testing.T) {
	w := &inventory.WeaponDef{ID: "bow", Name: "Bow", Class: inventory.ClassRanged, MinRange: 2, MaxRange: 8, ManaCost: 1}
	assert.Error(t, w.Validate())
}

func TestWeaponDef_InRange(t *testing.T) {
	w := &inventory.WeaponDef{MinRange: 1, MaxRange: 2}
	assert.False(t, w.InRange(0))
	assert.True(t, w.InRange(1))
	assert.True(t, w.InRange(2))
	assert.False(t, w.InRange(3))
}

func TestUnarmed_IsValidMelee(t *testing.T) {
	require.NoError(t, inventory.Unarmed.Validate())
	assert.True(t, inventory.Unarmed.IsMelee())
	assert.Equal(t, 0, inventory.Unarmed.Damage)
}

func TestWeapon_Use_BreaksAtDurability(t *testing.T) {
	def := &inventory.WeaponDef{ID: "spear", Name: "Spear", Class: inventory.ClassMelee, Damage: 1, MinRange: 1, MaxRange: 2, Durability: 2}
	w := inventory.NewWeapon(def)
	assert.NotEmpty(t, w.InstanceID)
	assert.False(t, w.Use())
	assert.False(t, w.Broken)
	assert.True(t, w.Use())
	assert.True(t, w.Broken)
	assert.False(t, w.Use(), "a broken weapon does not break again")
	assert.Equal(t, 2, w.Wear)
}

func TestWeapon_Use_UnbreakableNeverWears(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		def := &inventory.WeaponDef{ID: "staff", Name: "Staff", Class: inventory.ClassMelee, MinRange: 1, MaxRange: 1}
		w := inventory.NewWeapon(def)
		n := rapid.IntRange(0, 50).Draw(rt, "uses")
		for i := 0; i < n; i++ {
			w.Use()
		}
		if w.Broken || w.Wear != 0 {
			rt.Fatalf("unbreakable weapon wore: wear=%d broken=%v", w.Wear, w.Broken)
		}
	})
}

func TestWeapon_Clone_IsIndependent(t *testing.T) {
	def := &inventory.WeaponDef{ID: "axe", Name: "Axe", Class: inventory.ClassMelee, MinRange: 1, MaxRange: 1, Durability: 3}
	w := inventory.NewWeapon(def)
	cp := w.Clone()
	cp.Use()
	assert.Equal(t, 0, w.Wear)
	assert.Same(t, w.Def, cp.Def)
}

func TestNewWeapon_PanicsOnNil(t *testing.T) {
	assert.Panics(t, func() { inventory.NewWeapon(nil) })
}

func TestLoadRegistry_LoadsAllKinds(t *testing.T) {
	root := t.TempDir()
	dirs := map[string]string{}
	for _, d := range []string{"weapons", "spells", "armor", "shields"} {
		dirs[d] = filepath.Join(root, d)
		require.NoError(t, os.Mkdir(dirs[d], 0755))
	}
	writeYAML(t, dirs["weapons"], "shortbow.yaml", `id: shortbow
name: Shortbow
class: ranged
damage: 2
min_range: 2
max_range: 8
durability: 40
`)
	writeYAML(t, dirs["weapons"], "notes.txt", "ignored")
	writeYAML(t, dirs["spells"], "firebolt.yaml", `id: firebolt
name: Firebolt
class: spell
damage: 3
min_range: 1
max_range: 6
mana_cost: 2
`)
	writeYAML(t, dirs["armor"], "leather.yaml", "id: leather\nname: Leather Jerkin\narmor_value: 3\n")
	writeYAML(t, dirs["shields"], "buckler.yaml", "id: buckler\nname: Buckler\ndefense_bonus: 1\n")

	reg, err := inventory.LoadRegistry(dirs["weapons"], dirs["spells"], dirs["armor"], dirs["shields"])
	require.NoError(t, err)

	w, a, s := reg.Counts()
	assert.Equal(t, 2, w)
	assert.Equal(t, 1, a)
	assert.Equal(t, 1, s)

	bow, ok := reg.Weapon("shortbow")
	require.True(t, ok)
	assert.True(t, bow.IsRanged())
	assert.Equal(t, 40, bow.Durability)

	bolt, ok := reg.Weapon("firebolt")
	require.True(t, ok)
	assert.True(t, bolt.IsSpell())
	assert.Equal(t, 2, bolt.ManaCost)

	armor, ok := reg.Armor("leather")
	require.True(t, ok)
	assert.Equal(t, 3, armor.ArmorValue)

	shield, ok := reg.Shield("buckler")
	require.True(t, ok)
	assert.Equal(t, 1, shield.DefenseBonus)

	ids := []string{}
	for _, d := range reg.AllWeapons() {
		ids = append(ids, d.ID)
	}
	assert.Equal(t, []string{"firebolt", "shortbow"}, ids)
}

func TestLoadSpells_RejectsNonSpell(t *testing.T) {
	dir := t.TempDir()
	writeYAML(t, dir, "club.yaml", "id: club\nname: Club\nclass: melee\ndamage: 1\nmin_range: 1\nmax_range: 1\n")
	_, err := inventory.LoadSpells(dir)
	assert.Error(t, err)
}

func TestLoadWeapons_InvalidFileFails(t *testing.T) {
	dir := t.TempDir()
	writeYAML(t, dir, "bad.yaml", "id: bad\nname: Bad\nclass: trebuchet\n")
	_, err := inventory.LoadWeapons(dir)
	assert.Error(t, err)
}

func TestLoadWeapons_MissingDirFails(t *testing.T) {
	_, err := inventory.LoadWeapons(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}

func TestRegistry_RejectsDuplicates(t *testing.T) {
	reg := inventory.NewRegistry()
	def := &inventory.WeaponDef{ID: "club"}
	require.NoError(t, reg.RegisterWeapon(def))
	assert.Error(t, reg.RegisterWeapon(def))
	require.NoError(t, reg.RegisterArmor(&inventory.ArmorDef{ID: "mail"}))
	assert.Error(t, reg.RegisterArmor(&inventory.ArmorDef{ID: "mail"}))
	require.NoError(t, reg.RegisterShield(&inventory.ShieldDef{ID: "kite"}))
	assert.Error(t, reg.RegisterShield(&inventory.ShieldDef{ID: "kite"}))
}

func TestArmorAndShield_Validate(t *testing.T) {
	assert.Error(t, (&inventory.ArmorDef{ID: "x", Name: "X", ArmorValue: -1}).Validate())
	assert.NoError(t, (&inventory.ArmorDef{ID: "x", Name: "X", ArmorValue: 5}).Validate())
	assert.Error(t, (&inventory.ShieldDef{ID: "y"}).Validate())
	assert.NoError(t, (&inventory.ShieldDef{ID: "y", Name: "Y", DefenseBonus: 2}).Validate())
}

func TestFloor_DropAndPickup(t *testing.T) {
	f := inventory.NewFloor()
	p := world.Pt(2, 3)
	a := f.Drop(p, "shortbow")
	b := f.Drop(p, "leather")
	assert.NotEqual(t, a.InstanceID, b.InstanceID)

	items := f.ItemsAt(p)
	require.Len(t, items, 2)
	items[0].ItemID = "mutated"
	assert.Equal(t, "shortbow", f.ItemsAt(p)[0].ItemID, "ItemsAt must return a copy")

	got, ok := f.Pickup(p, a.InstanceID)
	require.True(t, ok)
	assert.Equal(t, "shortbow", got.ItemID)
	assert.Len(t, f.ItemsAt(p), 1)

	_, ok = f.Pickup(p, "missing")
	assert.False(t, ok)
	assert.Len(t, f.ItemsAt(p), 1)

	all := f.PickupAll(p)
	assert.Len(t, all, 1)
	assert.Empty(t, f.ItemsAt(p))
	assert.NotNil(t, f.PickupAll(world.Pt(9, 9)))
}
