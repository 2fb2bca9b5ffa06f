package world

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// TerrainDef is the static definition of a terrain type.
type TerrainDef struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	MoveCost    int    `yaml:"move_cost"`    // movement points to enter; >= 1 unless impassable
	Impassable  bool   `yaml:"impassable"`   // cannot be entered at all
	BlocksSight bool   `yaml:"blocks_sight"` // stops line of sight passing through
}

// Validate checks the definition's invariants.
//
// Postcondition: Returns nil iff ID and Name are set and passable terrain costs >= 1.
func (t *TerrainDef) Validate() error {
	var errs []error
	if t.ID == "" {
		errs = append(errs, errors.New("id must not be empty"))
	}
	if t.Name == "" {
		errs = append(errs, errors.New("name must not be empty"))
	}
	if !t.Impassable && t.MoveCost < 1 {
		errs = append(errs, fmt.Errorf("move_cost must be >= 1 for passable terrain, got %d", t.MoveCost))
	}
	if len(errs) > 0 {
		return fmt.Errorf("terrain %q: %w", t.ID, errors.Join(errs...))
	}
	return nil
}

// DefaultTerrain returns the built-in terrain set. Content may override any entry.
func DefaultTerrain() []*TerrainDef {
	return []*TerrainDef{
		{ID: "floor", Name: "Floor", MoveCost: 1},
		{ID: "grass", Name: "Grass", MoveCost: 1},
		{ID: "rubble", Name: "Rubble", MoveCost: 2},
		{ID: "water", Name: "Shallow Water", MoveCost: 3},
		{ID: "forest", Name: "Forest", MoveCost: 2, BlocksSight: true},
		{ID: "wall", Name: "Wall", Impassable: true, BlocksSight: true},
		{ID: "pit", Name: "Pit", Impassable: true},
	}
}

// TerrainRegistry indexes terrain definitions by ID.
type TerrainRegistry struct {
	defs map[string]*TerrainDef
}

// NewTerrainRegistry returns a registry preloaded with DefaultTerrain.
func NewTerrainRegistry() *TerrainRegistry {
	r := &TerrainRegistry{defs: make(map[string]*TerrainDef)}
	for _, d := range DefaultTerrain() {
		r.defs[d.ID] = d
	}
	return r
}

// Register adds or replaces def.
//
// Precondition: def must pass Validate.
func (r *TerrainRegistry) Register(def *TerrainDef) error {
	if err := def.Validate(); err != nil {
		return err
	}
	r.defs[def.ID] = def
	return nil
}

// Get returns the terrain for id.
func (r *TerrainRegistry) Get(id string) (*TerrainDef, bool) {
	d, ok := r.defs[id]
	return d, ok
}

// IDs returns all registered terrain IDs, sorted.
func (r *TerrainRegistry) IDs() []string {
	out := make([]string, 0, len(r.defs))
	for id := range r.defs {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// LoadTerrainDir reads every *.yaml file in dir as a TerrainDef and registers it
// on top of the defaults. A missing dir is not an error; defaults are returned.
func LoadTerrainDir(dir string) (*TerrainRegistry, error) {
	reg := NewTerrainRegistry()
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return reg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading terrain dir %q: %w", dir, err)
	}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".yaml") {
			continue
		}
		path := filepath.Join(dir, e.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %q: %w", path, err)
		}
		var def TerrainDef
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&def); err != nil {
			return nil, fmt.Errorf("parsing %q: %w", path, err)
		}
		if err := reg.Register(&def); err != nil {
			return nil, fmt.Errorf("loading %q: %w", path, err)
		}
	}
	return reg, nil
}
