// Package encounter sets up a scenario from content and exposes the caller
// surface of a running fight: player moves and attacks, ending the turn, and
// the outcome.
package encounter

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/skirmish/internal/game/creature"
	"github.com/cory-johannsen/skirmish/internal/game/world"
)

// GroupSpec declares a group in a scenario.
type GroupSpec struct {
	ID        string              `yaml:"id"`
	Name      string              `yaml:"name"`
	Faction   creature.Faction    `yaml:"faction"`
	Control   creature.Controller `yaml:"control"`
	HostileTo []creature.Faction  `yaml:"hostile_to"`
}

// PlacementSpec puts one creature from a preset onto the map.
type PlacementSpec struct {
	ID      string              `yaml:"id"`
	Name    string              `yaml:"name"`
	Preset  string              `yaml:"preset"`
	Group   string              `yaml:"group"`
	Control creature.Controller `yaml:"control"` // overrides the group's controller when set
	At      []int               `yaml:"at"`
	Facing  world.Direction     `yaml:"facing"`
}

// Point returns the placement's tile.
//
// Precondition: Validate passed.
func (p PlacementSpec) Point() world.Point { return world.Pt(p.At[0], p.At[1]) }

// Scenario is a map plus the groups and creatures that fight on it.
type Scenario struct {
	ID         string          `yaml:"id"`
	Name       string          `yaml:"name"`
	Map        string          `yaml:"map"`
	Script     string          `yaml:"script"`
	Groups     []GroupSpec     `yaml:"groups"`
	Placements []PlacementSpec `yaml:"placements"`
}

type scenarioFile struct {
	Scenario Scenario `yaml:"scenario"`
}

// Group returns the group spec with the given ID.
func (s *Scenario) Group(id string) (GroupSpec, bool) {
	for _, g := range s.Groups {
		if g.ID == id {
			return g, true
		}
	}
	return GroupSpec{}, false
}

// Validate checks the scenario's internal consistency. References to maps and
// presets are checked against content by Content.Check.
//
// Postcondition: Returns nil iff the scenario is well formed.
func (s *Scenario) Validate() error {
	var errs []error
	if s.ID == "" {
		errs = append(errs, errors.New("id must not be empty"))
	}
	if s.Map == "" {
		errs = append(errs, errors.New("map must not be empty"))
	}
	if len(s.Groups) == 0 {
		errs = append(errs, errors.New("at least one group is required"))
	}
	seen := make(map[string]bool, len(s.Groups))
	hasPlayer := false
	for _, g := range s.Groups {
		if g.ID == "" {
			errs = append(errs, errors.New("group id must not be empty"))
			continue
		}
		if seen[g.ID] {
			errs = append(errs, fmt.Errorf("duplicate group %q", g.ID))
		}
		seen[g.ID] = true
		if !validFaction(g.Faction) {
			errs = append(errs, fmt.Errorf("group %q: unknown faction %q", g.ID, g.Faction))
		}
		for _, f := range g.HostileTo {
			if !validFaction(f) {
				errs = append(errs, fmt.Errorf("group %q: unknown hostile faction %q", g.ID, f))
			}
		}
		switch g.Control {
		case creature.ControlPlayer:
			hasPlayer = true
		case creature.ControlAI:
		default:
			errs = append(errs, fmt.Errorf("group %q: control must be player or ai, got %q", g.ID, g.Control))
		}
	}
	if len(s.Groups) > 0 && !hasPlayer {
		errs = append(errs, errors.New("at least one player-controlled group is required"))
	}
	ids := make(map[string]bool)
	for i, p := range s.Placements {
		label := fmt.Sprintf("placement %d", i)
		if p.Preset == "" {
			errs = append(errs, fmt.Errorf("%s: preset must not be empty", label))
		}
		if !seen[p.Group] {
			errs = append(errs, fmt.Errorf("%s: unknown group %q", label, p.Group))
		}
		if len(p.At) != 2 {
			errs = append(errs, fmt.Errorf("%s: at must be [x, y]", label))
		}
		if p.Facing != "" && !p.Facing.Valid() {
			errs = append(errs, fmt.Errorf("%s: unknown facing %q", label, p.Facing))
		}
		if p.Control != "" && p.Control != creature.ControlPlayer && p.Control != creature.ControlAI {
			errs = append(errs, fmt.Errorf("%s: control must be player or ai, got %q", label, p.Control))
		}
		if p.ID != "" {
			if ids[p.ID] {
				errs = append(errs, fmt.Errorf("%s: duplicate id %q", label, p.ID))
			}
			ids[p.ID] = true
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("scenario %q: %w", s.ID, errors.Join(errs...))
	}
	return nil
}

func validFaction(f creature.Faction) bool {
	switch f {
	case creature.FactionPlayer, creature.FactionEnemy, creature.FactionNeutral:
		return true
	}
	return false
}

// LoadScenarioFromBytes parses and validates a scenario.
//
// Postcondition: Returns a validated Scenario or a non-nil error.
func LoadScenarioFromBytes(data []byte) (*Scenario, error) {
	var file scenarioFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		return nil, fmt.Errorf("parsing scenario YAML: %w", err)
	}
	s := file.Scenario
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// LoadScenarioFile reads and validates a single scenario file.
func LoadScenarioFile(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scenario file %s: %w", path, err)
	}
	return LoadScenarioFromBytes(data)
}

// LoadScenarios loads every *.yaml file in dir.
//
// Postcondition: Returns scenarios sorted by ID, or the first error encountered.
func LoadScenarios(dir string) ([]*Scenario, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading scenario directory %s: %w", dir, err)
	}
	var out []*Scenario
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || (!strings.HasSuffix(name, ".yaml") && !strings.HasSuffix(name, ".yml")) {
			continue
		}
		s, err := LoadScenarioFile(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("loading scenario from %s: %w", name, err)
		}
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
