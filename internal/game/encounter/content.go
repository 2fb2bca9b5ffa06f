package encounter

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"

	"github.com/cory-johannsen/skirmish/internal/config"
	"github.com/cory-johannsen/skirmish/internal/game/creature"
	"github.com/cory-johannsen/skirmish/internal/game/inventory"
	"github.com/cory-johannsen/skirmish/internal/game/world"
)

// Content bundles every registry a scenario is built from.
type Content struct {
	Terrain    *world.TerrainRegistry
	Maps       *world.Atlas
	Items      *inventory.Registry
	Creatures  *creature.Registry
	Scenarios  map[string]*Scenario
	ScriptsDir string
}

// Counts summarizes loaded content.
type Counts struct {
	Terrain   int
	Maps      int
	Weapons   int
	Armor     int
	Shields   int
	Behaviors int
	Presets   int
	Scenarios int
}

// LoadContent loads all content directories named by cfg.
//
// Postcondition: Returns fully cross-checked content or the first error encountered.
func LoadContent(cfg config.ContentConfig) (*Content, error) {
	terrain, err := world.LoadTerrainDir(cfg.Path(cfg.TerrainDir))
	if err != nil {
		return nil, fmt.Errorf("encounter.LoadContent: %w", err)
	}
	boards, err := world.LoadMapsFromDir(cfg.Path(cfg.MapsDir), terrain)
	if err != nil {
		return nil, fmt.Errorf("encounter.LoadContent: %w", err)
	}
	atlas, err := world.NewAtlas(boards)
	if err != nil {
		return nil, fmt.Errorf("encounter.LoadContent: %w", err)
	}
	items, err := inventory.LoadRegistry(cfg.Path(cfg.WeaponsDir), cfg.Path(cfg.SpellsDir), cfg.Path(cfg.ArmorDir), cfg.Path(cfg.ShieldsDir))
	if err != nil {
		return nil, fmt.Errorf("encounter.LoadContent: %w", err)
	}

	creatures := creature.NewRegistry(items)
	if dir := cfg.Path(cfg.BehaviorsDir); dir != "" {
		behaviors, err := creature.LoadBehaviors(dir)
		if err != nil {
			return nil, fmt.Errorf("encounter.LoadContent: %w", err)
		}
		for _, b := range behaviors {
			if err := creatures.AddBehavior(b); err != nil {
				return nil, fmt.Errorf("encounter.LoadContent: %w", err)
			}
		}
	}
	presets, err := creature.LoadPresets(cfg.Path(cfg.PresetsDir))
	if err != nil {
		return nil, fmt.Errorf("encounter.LoadContent: %w", err)
	}
	for _, p := range presets {
		if err := creatures.AddPreset(p); err != nil {
			return nil, fmt.Errorf("encounter.LoadContent: %w", err)
		}
	}

	scenarios, err := LoadScenarios(cfg.Path(cfg.ScenariosDir))
	if err != nil {
		return nil, fmt.Errorf("encounter.LoadContent: %w", err)
	}
	c := &Content{
		Terrain:    terrain,
		Maps:       atlas,
		Items:      items,
		Creatures:  creatures,
		Scenarios:  make(map[string]*Scenario, len(scenarios)),
		ScriptsDir: cfg.Path(cfg.ScriptsDir),
	}
	for _, s := range scenarios {
		if _, dup := c.Scenarios[s.ID]; dup {
			return nil, fmt.Errorf("encounter.LoadContent: duplicate scenario %q", s.ID)
		}
		c.Scenarios[s.ID] = s
	}
	if err := c.Check(); err != nil {
		return nil, fmt.Errorf("encounter.LoadContent: %w", err)
	}
	return c, nil
}

// Scenario returns the scenario with the given ID.
func (c *Content) Scenario(id string) (*Scenario, bool) {
	s, ok := c.Scenarios[id]
	return s, ok
}

// ScenarioIDs returns scenario IDs in sorted order.
func (c *Content) ScenarioIDs() []string {
	ids := make([]string, 0, len(c.Scenarios))
	for id := range c.Scenarios {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// ScriptPath resolves a scenario script name against ScriptsDir.
func (c *Content) ScriptPath(name string) string {
	if name == "" || filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(c.ScriptsDir, name)
}

// Counts reports how much of each kind of content is loaded.
func (c *Content) Counts() Counts {
	weapons, armor, shields := c.Items.Counts()
	return Counts{
		Terrain:   len(c.Terrain.IDs()),
		Maps:      c.Maps.Len(),
		Weapons:   weapons,
		Armor:     armor,
		Shields:   shields,
		Behaviors: c.Creatures.Behaviors(),
		Presets:   len(c.Creatures.PresetIDs()),
		Scenarios: len(c.Scenarios),
	}
}

// Check resolves every scenario against the loaded maps and presets: the map
// exists, each preset spawns, and each placement is on a distinct passable tile.
//
// Postcondition: Returns nil iff every scenario can be built.
func (c *Content) Check() error {
	var errs []error
	for _, id := range c.ScenarioIDs() {
		if err := c.checkScenario(c.Scenarios[id]); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (c *Content) checkScenario(s *Scenario) error {
	b, ok := c.Maps.Board(s.Map)
	if !ok {
		return fmt.Errorf("scenario %q: unknown map %q", s.ID, s.Map)
	}
	var errs []error
	used := make(map[world.Point]bool)
	for i, p := range s.Placements {
		if err := c.Creatures.CheckPreset(p.Preset); err != nil {
			errs = append(errs, fmt.Errorf("placement %d: %w", i, err))
		}
		at := p.Point()
		switch {
		case !b.InBounds(at):
			errs = append(errs, fmt.Errorf("placement %d: %s is off the map", i, at))
		case !b.Passable(at):
			errs = append(errs, fmt.Errorf("placement %d: %s is impassable", i, at))
		case used[at]:
			errs = append(errs, fmt.Errorf("placement %d: %s is already occupied", i, at))
		}
		used[at] = true
	}
	if len(errs) > 0 {
		return fmt.Errorf("scenario %q: %w", s.ID, errors.Join(errs...))
	}
	return nil
}
