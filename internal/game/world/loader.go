package world

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// yamlMapFile is the top-level YAML structure for map files.
type yamlMapFile struct {
	Map yamlMap `yaml:"map"`
}

// yamlMap is the YAML representation of a battle map.
//
//	map:
//	  id: crossroads
//	  name: Crossroads
//	  legend: {".": grass, "#": wall, "~": water}
//	  rows:
//	    - "....#"
//	    - ".~~.#"
//	  light:            # optional, one digit per tile; default bright
//	    - "22221"
//	    - "22100"
type yamlMap struct {
	ID     string            `yaml:"id"`
	Name   string            `yaml:"name"`
	Legend map[string]string `yaml:"legend"`
	Rows   []string          `yaml:"rows"`
	Light  []string          `yaml:"light"`
}

// LoadMapFromFile reads and validates a single map YAML file.
func LoadMapFromFile(path string, terrain *TerrainRegistry) (*Board, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading map file %s: %w", path, err)
	}
	return LoadMapFromBytes(data, terrain)
}

// LoadMapFromBytes parses and validates a map from YAML bytes.
//
// Precondition: terrain must be non-nil.
// Postcondition: Returns a validated Board or a non-nil error.
func LoadMapFromBytes(data []byte, terrain *TerrainRegistry) (*Board, error) {
	var file yamlMapFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing map YAML: %w", err)
	}
	b, err := convertYAMLMap(file.Map, terrain)
	if err != nil {
		return nil, err
	}
	if err := b.Validate(); err != nil {
		return nil, fmt.Errorf("validating map: %w", err)
	}
	return b, nil
}

// LoadMapsFromDir loads all YAML files in a directory as maps.
//
// Postcondition: Returns all validated maps or the first error encountered.
func LoadMapsFromDir(dir string, terrain *TerrainRegistry) ([]*Board, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading map directory %s: %w", dir, err)
	}
	var boards []*Board
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || (!strings.HasSuffix(name, ".yaml") && !strings.HasSuffix(name, ".yml")) {
			continue
		}
		b, err := LoadMapFromFile(filepath.Join(dir, name), terrain)
		if err != nil {
			return nil, fmt.Errorf("loading map from %s: %w", name, err)
		}
		boards = append(boards, b)
	}
	if len(boards) == 0 {
		return nil, fmt.Errorf("no map files found in %s", dir)
	}
	return boards, nil
}

func convertYAMLMap(ym yamlMap, terrain *TerrainRegistry) (*Board, error) {
	if ym.ID == "" {
		return nil, fmt.Errorf("map ID must not be empty")
	}
	if len(ym.Rows) == 0 {
		return nil, fmt.Errorf("map %q: rows must not be empty", ym.ID)
	}
	cols := len([]rune(ym.Rows[0]))
	if cols == 0 {
		return nil, fmt.Errorf("map %q: rows must not be empty strings", ym.ID)
	}

	legend := make(map[rune]*TerrainDef, len(ym.Legend))
	for glyph, id := range ym.Legend {
		r := []rune(glyph)
		if len(r) != 1 {
			return nil, fmt.Errorf("map %q: legend key %q must be a single character", ym.ID, glyph)
		}
		def, ok := terrain.Get(id)
		if !ok {
			return nil, fmt.Errorf("map %q: legend %q references unknown terrain %q", ym.ID, glyph, id)
		}
		legend[r[0]] = def
	}

	rows := len(ym.Rows)
	floor, _ := terrain.Get("floor")
	if floor == nil {
		floor = DefaultTerrain()[0]
	}
	b := NewBoard(ym.ID, cols, rows, floor)
	if ym.Name != "" {
		b.Name = ym.Name
	}

	for y, row := range ym.Rows {
		glyphs := []rune(row)
		if len(glyphs) != cols {
			return nil, fmt.Errorf("map %q: row %d has %d tiles, want %d", ym.ID, y, len(glyphs), cols)
		}
		for x, g := range glyphs {
			def, ok := legend[g]
			if !ok {
				return nil, fmt.Errorf("map %q: row %d col %d: glyph %q not in legend", ym.ID, y, x, string(g))
			}
			b.SetTerrain(Pt(x, y), def)
		}
	}

	if len(ym.Light) > 0 {
		if len(ym.Light) != rows {
			return nil, fmt.Errorf("map %q: light has %d rows, want %d", ym.ID, len(ym.Light), rows)
		}
		for y, row := range ym.Light {
			if len(row) != cols {
				return nil, fmt.Errorf("map %q: light row %d has %d entries, want %d", ym.ID, y, len(row), cols)
			}
			for x, c := range row {
				if c < '0' || c > '9' {
					return nil, fmt.Errorf("map %q: light row %d col %d: %q is not a digit", ym.ID, y, x, string(c))
				}
				b.SetLight(Pt(x, y), int(c-'0'))
			}
		}
	}
	return b, nil
}
