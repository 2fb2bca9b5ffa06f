package inventory

import (
	"fmt"
	"sort"
)

// Registry holds all loaded weapon, spell, armor, and shield definitions indexed by ID.
// Spells share the weapon namespace.
type Registry struct {
	weapons map[string]*WeaponDef
	armors  map[string]*ArmorDef
	shields map[string]*ShieldDef
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		weapons: make(map[string]*WeaponDef),
		armors:  make(map[string]*ArmorDef),
		shields: make(map[string]*ShieldDef),
	}
}

// RegisterWeapon adds w to the registry.
//
// Postcondition: Weapon(w.ID) returns w; returns error if w.ID already registered.
func (r *Registry) RegisterWeapon(w *WeaponDef) error {
	if _, exists := r.weapons[w.ID]; exists {
		return fmt.Errorf("inventory: Registry.RegisterWeapon: weapon ID %q already registered", w.ID)
	}
	r.weapons[w.ID] = w
	return nil
}

// RegisterArmor adds a to the registry.
func (r *Registry) RegisterArmor(a *ArmorDef) error {
	if _, exists := r.armors[a.ID]; exists {
		return fmt.Errorf("inventory: Registry.RegisterArmor: armor ID %q already registered", a.ID)
	}
	r.armors[a.ID] = a
	return nil
}

// RegisterShield adds s to the registry.
func (r *Registry) RegisterShield(s *ShieldDef) error {
	if _, exists := r.shields[s.ID]; exists {
		return fmt.Errorf("inventory: Registry.RegisterShield: shield ID %q already registered", s.ID)
	}
	r.shields[s.ID] = s
	return nil
}

// Weapon returns the WeaponDef (or spell) for id.
func (r *Registry) Weapon(id string) (*WeaponDef, bool) {
	w, ok := r.weapons[id]
	return w, ok
}

// Armor returns the ArmorDef for id.
func (r *Registry) Armor(id string) (*ArmorDef, bool) {
	a, ok := r.armors[id]
	return a, ok
}

// Shield returns the ShieldDef for id.
func (r *Registry) Shield(id string) (*ShieldDef, bool) {
	s, ok := r.shields[id]
	return s, ok
}

// AllWeapons returns all registered WeaponDefs sorted by ID.
func (r *Registry) AllWeapons() []*WeaponDef {
	out := make([]*WeaponDef, 0, len(r.weapons))
	for _, w := range r.weapons {
		out = append(out, w)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Counts returns the number of weapons, armors, and shields registered.
func (r *Registry) Counts() (weapons, armors, shields int) {
	return len(r.weapons), len(r.armors), len(r.shields)
}

// LoadRegistry loads weapons (and spells), armor, and shields from the given
// directories into a new Registry. Empty directory paths are skipped.
func LoadRegistry(weaponsDir, spellsDir, armorDir, shieldsDir string) (*Registry, error) {
	reg := NewRegistry()
	loaders := []struct {
		dir  string
		load func(string) ([]*WeaponDef, error)
	}{{weaponsDir, LoadWeapons}, {spellsDir, LoadSpells}}
	for _, l := range loaders {
		if l.dir == "" {
			continue
		}
		defs, err := l.load(l.dir)
		if err != nil {
			return nil, err
		}
		for _, d := range defs {
			if err := reg.RegisterWeapon(d); err != nil {
				return nil, err
			}
		}
	}
	if armorDir != "" {
		defs, err := LoadArmors(armorDir)
		if err != nil {
			return nil, err
		}
		for _, d := range defs {
			if err := reg.RegisterArmor(d); err != nil {
				return nil, err
			}
		}
	}
	if shieldsDir != "" {
		defs, err := LoadShields(shieldsDir)
		if err != nil {
			return nil, err
		}
		for _, d := range defs {
			if err := reg.RegisterShield(d); err != nil {
				return nil, err
			}
		}
	}
	return reg, nil
}
