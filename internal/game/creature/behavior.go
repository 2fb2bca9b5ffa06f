package creature

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Behavior is an AI creature's tactical classification.
type Behavior string

const (
	BehaviorMelee  Behavior = "melee"
	BehaviorRanged Behavior = "ranged"
	BehaviorAnimal Behavior = "animal"
	BehaviorCaster Behavior = "caster"
)

// Valid reports whether b is a known behavior.
func (b Behavior) Valid() bool {
	switch b {
	case BehaviorMelee, BehaviorRanged, BehaviorAnimal, BehaviorCaster:
		return true
	}
	return false
}

// AIState is the behavior classification and tunable traits of an AI-driven creature.
// It is treated as a value: transitions return a new AIState.
type AIState struct {
	Behavior     Behavior
	KeepDistance bool
	Aggression   int
	PackTactics  bool
	// TargetID is the sticky target chosen on a previous attack; empty when none.
	TargetID string
}

// IsRanged reports whether the behavior acts in the ranged initiative band.
func (s AIState) IsRanged() bool { return s.Behavior == BehaviorRanged }

// WithTarget returns s locked onto id.
func (s AIState) WithTarget(id string) AIState {
	s.TargetID = id
	return s
}

// ClearTarget returns s with no sticky target.
func (s AIState) ClearTarget() AIState {
	s.TargetID = ""
	return s
}

// BehaviorProfile is a named AIState template loaded from YAML.
type BehaviorProfile struct {
	ID           string   `yaml:"id"`
	Type         Behavior `yaml:"type"`
	KeepDistance bool     `yaml:"keep_distance"`
	Aggression   int      `yaml:"aggression"`
	PackTactics  bool     `yaml:"pack_tactics"`
}

// Validate checks the profile's invariants.
func (p *BehaviorProfile) Validate() error {
	var errs []error
	if p.ID == "" {
		errs = append(errs, errors.New("id must not be empty"))
	}
	if !p.Type.Valid() {
		errs = append(errs, fmt.Errorf("type %q must be melee, ranged, animal, or caster", p.Type))
	}
	if p.Aggression < 0 {
		errs = append(errs, errors.New("aggression must be >= 0"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("behavior %q: %w", p.ID, errors.Join(errs...))
	}
	return nil
}

// State returns a fresh AIState for the profile.
func (p *BehaviorProfile) State() AIState {
	return AIState{
		Behavior:     p.Type,
		KeepDistance: p.KeepDistance,
		Aggression:   p.Aggression,
		PackTactics:  p.PackTactics,
	}
}

// LoadBehaviors reads all *.yaml behavior profiles in dir.
//
// Postcondition: returns all profiles or the first parse or validation error.
func LoadBehaviors(dir string) ([]*BehaviorProfile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading behavior dir %q: %w", dir, err)
	}
	var out []*BehaviorProfile
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %q: %w", path, err)
		}
		var p BehaviorProfile
		if err := yaml.Unmarshal(data, &p); err != nil {
			return nil, fmt.Errorf("parsing %q: %w", path, err)
		}
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("loading %q: %w", path, err)
		}
		out = append(out, &p)
	}
	return out, nil
}
