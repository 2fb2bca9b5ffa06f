package creature

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/skirmish/internal/game/inventory"
	"github.com/cory-johannsen/skirmish/internal/game/world"
)

// ErrPresetNotFound is returned by Registry.Spawn for an unknown preset ID.
var ErrPresetNotFound = errors.New("creature: preset not found")

// Preset defines a reusable creature archetype loaded from YAML.
type Preset struct {
	ID           string         `yaml:"id"`
	Name         string         `yaml:"name"`
	Kind         Kind           `yaml:"kind"`
	Size         Size           `yaml:"size"`
	Attributes   Attributes     `yaml:"attributes"`
	Movement     int            `yaml:"movement"`
	Actions      int            `yaml:"actions"`
	QuickActions int            `yaml:"quick_actions"`
	Vitality     int            `yaml:"vitality"`
	Mana         int            `yaml:"mana"`
	NaturalArmor int            `yaml:"natural_armor"`
	Vision       int            `yaml:"vision"`
	Weapons      []string       `yaml:"weapons"`
	Spells       []string       `yaml:"spells"`
	Armor        string         `yaml:"armor"`
	Shield       string         `yaml:"shield"`
	Inventory    []string       `yaml:"inventory"`
	Skills       map[string]int `yaml:"skills"`
	// Behavior is a behavior profile ID. Required for AI control.
	Behavior string `yaml:"behavior"`
}

// Validate checks that the preset satisfies basic invariants.
//
// Precondition: p must not be nil.
// Postcondition: Returns nil iff ID and Name are non-empty, Kind and Size are known,
// Vitality >= 1, and no resource maximum is negative.
func (p *Preset) Validate() error {
	if p.ID == "" {
		return fmt.Errorf("creature preset: id must not be empty")
	}
	if p.Name == "" {
		return fmt.Errorf("creature preset %q: name must not be empty", p.ID)
	}
	switch p.Kind {
	case KindHero, KindMercenary, KindMonster:
	default:
		return fmt.Errorf("creature preset %q: kind %q must be hero, mercenary, or monster", p.ID, p.Kind)
	}
	if !p.Size.Valid() {
		return fmt.Errorf("creature preset %q: size %q is not a size class", p.ID, p.Size)
	}
	if p.Vitality < 1 {
		return fmt.Errorf("creature preset %q: vitality must be >= 1", p.ID)
	}
	if p.Movement < 0 || p.Actions < 0 || p.QuickActions < 0 || p.Mana < 0 || p.NaturalArmor < 0 || p.Vision < 0 {
		return fmt.Errorf("creature preset %q: resources must be >= 0", p.ID)
	}
	return nil
}

// LoadPresetFromBytes parses a single preset from raw YAML bytes.
//
// Postcondition: Returns a validated *Preset, or an error.
func LoadPresetFromBytes(data []byte) (*Preset, error) {
	var p Preset
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parsing preset YAML: %w", err)
	}
	if p.Size == "" {
		p.Size = SizeMedium
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// LoadPresets reads all *.yaml files in dir and returns the parsed presets.
//
// Precondition: dir must be a readable directory.
// Postcondition: Returns all presets or an error on the first parse or validate failure.
func LoadPresets(dir string) ([]*Preset, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading preset dir %q: %w", dir, err)
	}
	var presets []*Preset
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %q: %w", path, err)
		}
		p, err := LoadPresetFromBytes(data)
		if err != nil {
			return nil, fmt.Errorf("loading %q: %w", path, err)
		}
		presets = append(presets, p)
	}
	return presets, nil
}

// SpawnOptions places a spawned creature into an encounter.
type SpawnOptions struct {
	// ID overrides the generated instance ID when non-empty.
	ID         string
	Name       string
	Controller Controller
	Faction    Faction
	GroupID    string
	HostileTo  []Faction
	At         *world.Point
	Facing     world.Direction
}

// Registry is the creature factory: presets and behavior profiles resolved
// against an equipment registry.
type Registry struct {
	items     *inventory.Registry
	presets   map[string]*Preset
	behaviors map[string]*BehaviorProfile
}

// NewRegistry creates a Registry that resolves equipment IDs through items.
//
// Precondition: items must not be nil.
func NewRegistry(items *inventory.Registry) *Registry {
	if items == nil {
		panic("creature.NewRegistry: items must not be nil")
	}
	return &Registry{
		items:     items,
		presets:   make(map[string]*Preset),
		behaviors: make(map[string]*BehaviorProfile),
	}
}

// AddPreset registers p. Duplicate IDs are an error.
func (r *Registry) AddPreset(p *Preset) error {
	if _, ok := r.presets[p.ID]; ok {
		return fmt.Errorf("creature.Registry.AddPreset: preset %q already registered", p.ID)
	}
	r.presets[p.ID] = p
	return nil
}

// AddBehavior registers b. Duplicate IDs are an error.
func (r *Registry) AddBehavior(b *BehaviorProfile) error {
	if _, ok := r.behaviors[b.ID]; ok {
		return fmt.Errorf("creature.Registry.AddBehavior: behavior %q already registered", b.ID)
	}
	r.behaviors[b.ID] = b
	return nil
}

// Preset returns the preset for id.
func (r *Registry) Preset(id string) (*Preset, bool) {
	p, ok := r.presets[id]
	return p, ok
}

// PresetIDs returns registered preset IDs in sorted order.
func (r *Registry) PresetIDs() []string {
	ids := make([]string, 0, len(r.presets))
	for id := range r.presets {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Behaviors returns the number of registered behavior profiles.
func (r *Registry) Behaviors() int { return len(r.behaviors) }

// CheckPreset resolves every reference in the preset without spawning it.
func (r *Registry) CheckPreset(id string) error {
	_, err := r.Spawn(id, SpawnOptions{ID: "check", Controller: ControlPlayer})
	return err
}

// Spawn builds a fully-initialized creature from presetID.
//
// Precondition: opts.Controller is player or AI.
// Postcondition: on success the creature is at full resources with a unique ID;
// an unknown preset returns an error wrapping ErrPresetNotFound; unknown
// equipment or a missing behavior for an AI creature is an error.
func (r *Registry) Spawn(presetID string, opts SpawnOptions) (*Creature, error) {
	p, ok := r.presets[presetID]
	if !ok {
		return nil, fmt.Errorf("creature.Registry.Spawn: %q: %w", presetID, ErrPresetNotFound)
	}
	if opts.Controller != ControlPlayer && opts.Controller != ControlAI {
		return nil, fmt.Errorf("creature.Registry.Spawn: %q: controller %q must be player or ai", presetID, opts.Controller)
	}

	c := &Creature{
		ID:           opts.ID,
		Name:         p.Name,
		Kind:         p.Kind,
		Controller:   opts.Controller,
		Faction:      opts.Faction,
		GroupID:      opts.GroupID,
		HostileTo:    append([]Faction(nil), opts.HostileTo...),
		Size:         p.Size,
		Facing:       world.South,
		Attributes:   p.Attributes,
		Movement:     p.Movement,
		Actions:      p.Actions,
		QuickActions: p.QuickActions,
		Vitality:     p.Vitality,
		MaxVitality:  p.Vitality,
		Mana:         p.Mana,
		MaxMana:      p.Mana,
		NaturalArmor: p.NaturalArmor,
		VisionRange:  p.Vision,
		Inventory:    append([]string(nil), p.Inventory...),
		Skills:       make(map[string]int, len(p.Skills)),
	}
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if opts.Name != "" {
		c.Name = opts.Name
	}
	if opts.Facing != "" {
		c.Facing = opts.Facing
	}
	if opts.At != nil {
		c.Place(*opts.At)
	}
	for k, v := range p.Skills {
		c.Skills[k] = v
	}

	for _, id := range p.Weapons {
		def, ok := r.items.Weapon(id)
		if !ok || def.IsSpell() {
			return nil, fmt.Errorf("creature.Registry.Spawn: preset %q: unknown weapon %q", p.ID, id)
		}
		c.Weapons = append(c.Weapons, inventory.NewWeapon(def))
	}
	for _, id := range p.Spells {
		def, ok := r.items.Weapon(id)
		if !ok || !def.IsSpell() {
			return nil, fmt.Errorf("creature.Registry.Spawn: preset %q: unknown spell %q", p.ID, id)
		}
		c.Spells = append(c.Spells, inventory.NewWeapon(def))
	}
	if p.Armor != "" {
		a, ok := r.items.Armor(p.Armor)
		if !ok {
			return nil, fmt.Errorf("creature.Registry.Spawn: preset %q: unknown armor %q", p.ID, p.Armor)
		}
		c.Armor = a
	}
	if p.Shield != "" {
		s, ok := r.items.Shield(p.Shield)
		if !ok {
			return nil, fmt.Errorf("creature.Registry.Spawn: preset %q: unknown shield %q", p.ID, p.Shield)
		}
		c.Shield = s
	}

	if p.Behavior != "" {
		b, ok := r.behaviors[p.Behavior]
		if !ok {
			return nil, fmt.Errorf("creature.Registry.Spawn: preset %q: unknown behavior %q", p.ID, p.Behavior)
		}
		st := b.State()
		c.AI = &st
	}
	if c.IsAIControlled() && c.AI == nil {
		return nil, fmt.Errorf("creature.Registry.Spawn: preset %q has no behavior and cannot be AI controlled", p.ID)
	}

	c.ResetResources()
	return c, nil
}
