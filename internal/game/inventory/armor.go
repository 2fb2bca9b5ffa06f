package inventory

import (
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

// ArmorDef defines a body armor piece. ArmorValue replaces the wearer's
// natural armor as the threshold each damage die must meet.
type ArmorDef struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	ArmorValue  int    `yaml:"armor_value"`
}

// Validate reports an error if the ArmorDef is missing required fields or contains illegal values.
func (a *ArmorDef) Validate() error {
	var errs []error
	if a.ID == "" {
		errs = append(errs, errors.New("id must not be empty"))
	}
	if a.Name == "" {
		errs = append(errs, errors.New("name must not be empty"))
	}
	if a.ArmorValue < 0 {
		errs = append(errs, errors.New("armor_value must be >= 0"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("armor %q validation failed: %w", a.ID, errors.Join(errs...))
	}
	return nil
}

// ShieldDef defines a shield. DefenseBonus is added to the bearer's defense roll.
type ShieldDef struct {
	ID           string `yaml:"id"`
	Name         string `yaml:"name"`
	DefenseBonus int    `yaml:"defense_bonus"`
}

// Validate reports an error if the ShieldDef is malformed.
func (s *ShieldDef) Validate() error {
	var errs []error
	if s.ID == "" {
		errs = append(errs, errors.New("id must not be empty"))
	}
	if s.Name == "" {
		errs = append(errs, errors.New("name must not be empty"))
	}
	if s.DefenseBonus < 0 {
		errs = append(errs, errors.New("defense_bonus must be >= 0"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("shield %q validation failed: %w", s.ID, errors.Join(errs...))
	}
	return nil
}

// LoadArmors reads all .yaml files in dir and returns parsed ArmorDef slice.
//
// Postcondition: Returns non-nil slice and nil error on success; all returned defs pass Validate.
func LoadArmors(dir string) ([]*ArmorDef, error) {
	armors := []*ArmorDef{}
	err := loadYAMLDir(dir, func(path string, data []byte) error {
		var a ArmorDef
		if err := yaml.Unmarshal(data, &a); err != nil {
			return fmt.Errorf("cannot parse file %q: %w", path, err)
		}
		if err := a.Validate(); err != nil {
			return fmt.Errorf("invalid armor in %q: %w", path, err)
		}
		armors = append(armors, &a)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("LoadArmors: %w", err)
	}
	return armors, nil
}

// LoadShields reads all .yaml files in dir and returns parsed ShieldDef slice.
func LoadShields(dir string) ([]*ShieldDef, error) {
	shields := []*ShieldDef{}
	err := loadYAMLDir(dir, func(path string, data []byte) error {
		var s ShieldDef
		if err := yaml.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("cannot parse file %q: %w", path, err)
		}
		if err := s.Validate(); err != nil {
			return fmt.Errorf("invalid shield in %q: %w", path, err)
		}
		shields = append(shields, &s)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("LoadShields: %w", err)
	}
	return shields, nil
}
