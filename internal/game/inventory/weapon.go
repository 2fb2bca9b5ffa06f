// Package inventory provides definitions and loaders for the weapons, spells,
// armor, and shields creatures carry into an encounter.
package inventory

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// WeaponClass distinguishes how an armament attacks.
type WeaponClass string

const (
	// ClassMelee rolls a damage pool against armor.
	ClassMelee WeaponClass = "melee"
	// ClassRanged deals its damage rating flat.
	ClassRanged WeaponClass = "ranged"
	// ClassSpell is cast with intelligence, costs mana, and deals flat damage.
	ClassSpell WeaponClass = "spell"
)

// WeaponDef defines the static properties of a weapon or attack spell loaded from YAML.
type WeaponDef struct {
	ID         string      `yaml:"id"`
	Name       string      `yaml:"name"`
	Class      WeaponClass `yaml:"class"`
	Damage     int         `yaml:"damage"`      // damage rating
	MinRange   int         `yaml:"min_range"`   // inclusive, in tiles
	MaxRange   int         `yaml:"max_range"`   // inclusive, in tiles
	IgnoresLOS bool        `yaml:"ignores_los"` // lobbed or magical attacks
	Quick      bool        `yaml:"quick"`       // may be used with a quick action
	ManaCost   int         `yaml:"mana_cost"`   // spells only
	Durability int         `yaml:"durability"`  // uses before breaking; 0 = unbreakable
}

// IsRanged reports whether the weapon resolves with the ranged attribute and flat damage.
func (w *WeaponDef) IsRanged() bool { return w.Class == ClassRanged }

// IsSpell reports whether the armament is an attack spell.
func (w *WeaponDef) IsSpell() bool { return w.Class == ClassSpell }

// IsMelee reports whether the weapon rolls a damage pool.
func (w *WeaponDef) IsMelee() bool { return w.Class == ClassMelee }

// InRange reports whether distance falls inside the weapon's [MinRange, MaxRange] band.
func (w *WeaponDef) InRange(distance int) bool {
	return distance >= w.MinRange && distance <= w.MaxRange
}

// Validate checks that the WeaponDef satisfies its invariants.
//
// Postcondition: returns nil iff all fields are valid.
func (w *WeaponDef) Validate() error {
	var errs []error
	if w.ID == "" {
		errs = append(errs, errors.New("id must not be empty"))
	}
	if w.Name == "" {
		errs = append(errs, errors.New("name must not be empty"))
	}
	switch w.Class {
	case ClassMelee, ClassRanged, ClassSpell:
	default:
		errs = append(errs, fmt.Errorf("class %q must be melee, ranged, or spell", w.Class))
	}
	if w.Damage < 0 {
		errs = append(errs, errors.New("damage must be >= 0"))
	}
	if w.MinRange < 0 || w.MaxRange < w.MinRange {
		errs = append(errs, fmt.Errorf("range band [%d,%d] is invalid", w.MinRange, w.MaxRange))
	}
	if w.Class == ClassMelee && w.MinRange == 0 {
		errs = append(errs, errors.New("melee min_range must be >= 1"))
	}
	if w.ManaCost < 0 || (w.ManaCost > 0 && w.Class != ClassSpell) {
		errs = append(errs, errors.New("mana_cost must be >= 0 and only set on spells"))
	}
	if w.Durability < 0 {
		errs = append(errs, errors.New("durability must be >= 0"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("weapon %q validation failed: %w", w.ID, errors.Join(errs...))
	}
	return nil
}

// Unarmed is the natural attack used when a creature carries no weapon.
var Unarmed = &WeaponDef{ID: "unarmed", Name: "bare hands", Class: ClassMelee, Damage: 0, MinRange: 1, MaxRange: 1}

// Weapon is a carried instance of a WeaponDef. It tracks wear.
//
// Invariant: Def is non-nil; Broken implies Def.Durability > 0.
type Weapon struct {
	InstanceID string
	Def        *WeaponDef
	Wear       int
	Broken     bool
}

// NewWeapon creates a fresh instance of def.
//
// Precondition: def must be non-nil.
func NewWeapon(def *WeaponDef) *Weapon {
	if def == nil {
		panic("inventory.NewWeapon: def must not be nil")
	}
	return &Weapon{InstanceID: uuid.NewString(), Def: def}
}

// Use records one attack with the weapon and reports whether it broke on this use.
//
// Postcondition: Broken becomes true once Wear reaches Def.Durability (when > 0).
func (w *Weapon) Use() bool {
	if w.Def.Durability == 0 || w.Broken {
		return false
	}
	w.Wear++
	if w.Wear >= w.Def.Durability {
		w.Broken = true
		return true
	}
	return false
}

// Clone returns an independent copy sharing the immutable Def.
func (w *Weapon) Clone() *Weapon {
	if w == nil {
		return nil
	}
	cp := *w
	return &cp
}

// LoadWeapons reads all *.yaml files from dir, parses each as a WeaponDef,
// validates it, and returns the collected slice.
//
// Precondition: dir is a readable directory path.
// Postcondition: returns all valid WeaponDefs or the first encountered error.
func LoadWeapons(dir string) ([]*WeaponDef, error) {
	var weapons []*WeaponDef
	err := loadYAMLDir(dir, func(path string, data []byte) error {
		var w WeaponDef
		if err := yaml.Unmarshal(data, &w); err != nil {
			return fmt.Errorf("cannot parse file %q: %w", path, err)
		}
		if err := w.Validate(); err != nil {
			return fmt.Errorf("invalid weapon in %q: %w", path, err)
		}
		weapons = append(weapons, &w)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("LoadWeapons: %w", err)
	}
	return weapons, nil
}

// loadYAMLDir calls fn for every *.yaml file in dir, in directory order.
func loadYAMLDir(dir string, fn func(path string, data []byte) error) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("cannot read directory %q: %w", dir, err)
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".yaml" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("cannot read file %q: %w", path, err)
		}
		if err := fn(path, data); err != nil {
			return err
		}
	}
	return nil
}

// LoadSpells loads attack spells from dir. Every definition must have class spell.
func LoadSpells(dir string) ([]*WeaponDef, error) {
	spells, err := LoadWeapons(dir)
	if err != nil {
		return nil, fmt.Errorf("LoadSpells: %w", err)
	}
	for _, s := range spells {
		if !s.IsSpell() {
			return nil, fmt.Errorf("LoadSpells: %q has class %q, want spell", s.ID, s.Class)
		}
	}
	return spells, nil
}
