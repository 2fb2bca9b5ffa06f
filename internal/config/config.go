// Package config provides Viper-based configuration loading for the skirmish engine.
package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
}

// EngineConfig holds the tunable constants of the turn and AI engine.
type EngineConfig struct {
	// MaxAIIterations bounds the decide/execute loop of one AI creature turn.
	MaxAIIterations int `mapstructure:"max_ai_iterations"`
	// DistanceWeight scales distance in tile and target scoring.
	DistanceWeight int `mapstructure:"distance_weight"`
	// AttackBonus is added to a tile from which an attack would be valid.
	// It must dominate any distance score so attack positions always win.
	AttackBonus int `mapstructure:"attack_bonus"`
	// StayBias is added to the creature's current tile so ties favor staying put.
	StayBias int `mapstructure:"stay_bias"`
	// PackWeight is added per ally already engaging the target (pack tactics).
	PackWeight int `mapstructure:"pack_weight"`
	// EngageRadius is the distance to a hostile that puts a group in combat.
	EngageRadius int `mapstructure:"engage_radius"`
	// VisionRange is the default sight radius for creatures without their own.
	VisionRange int `mapstructure:"vision_range"`
}

// ContentConfig holds the directories content is loaded from. Relative paths
// are resolved against Root when Root is set.
type ContentConfig struct {
	Root         string `mapstructure:"root"`
	TerrainDir   string `mapstructure:"terrain_dir"`
	MapsDir      string `mapstructure:"maps_dir"`
	WeaponsDir   string `mapstructure:"weapons_dir"`
	ArmorDir     string `mapstructure:"armor_dir"`
	ShieldsDir   string `mapstructure:"shields_dir"`
	SpellsDir    string `mapstructure:"spells_dir"`
	BehaviorsDir string `mapstructure:"behaviors_dir"`
	PresetsDir   string `mapstructure:"presets_dir"`
	ScenariosDir string `mapstructure:"scenarios_dir"`
	ScriptsDir   string `mapstructure:"scripts_dir"`
}

// Path resolves dir against Root.
//
// Postcondition: absolute paths and empty dirs are returned unchanged.
func (c ContentConfig) Path(dir string) string {
	if dir == "" || filepath.IsAbs(dir) || c.Root == "" {
		return dir
	}
	return filepath.Join(c.Root, dir)
}

// ScriptingConfig holds Lua sandbox settings.
type ScriptingConfig struct {
	// InstructionLimit caps Lua instructions per hook call; 0 disables the cap.
	InstructionLimit int `mapstructure:"instruction_limit"`
}

// TelemetryConfig holds OpenTelemetry settings.
type TelemetryConfig struct {
	// Enabled installs an OTLP HTTP trace exporter configured from OTEL_* variables.
	Enabled     bool   `mapstructure:"enabled"`
	ServiceName string `mapstructure:"service_name"`
}

// Config is the top-level application configuration.
type Config struct {
	Logging   LoggingConfig   `mapstructure:"logging"`
	Engine    EngineConfig    `mapstructure:"engine"`
	Content   ContentConfig   `mapstructure:"content"`
	Scripting ScriptingConfig `mapstructure:"scripting"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string

	if err := validateLogging(c.Logging); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateEngine(c.Engine); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateContent(c.Content); err != nil {
		errs = append(errs, err.Error())
	}
	if c.Scripting.InstructionLimit < 0 {
		errs = append(errs, fmt.Sprintf("scripting.instruction_limit must be >= 0, got %d", c.Scripting.InstructionLimit))
	}
	if c.Telemetry.Enabled && c.Telemetry.ServiceName == "" {
		errs = append(errs, "telemetry.service_name must not be empty when telemetry is enabled")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateLogging(l LoggingConfig) error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[l.Level] {
		return fmt.Errorf("logging.level must be one of [debug, info, warn, error], got %q", l.Level)
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("logging.format must be one of [json, console], got %q", l.Format)
	}
	return nil
}

func validateEngine(e EngineConfig) error {
	var errs []string
	if e.MaxAIIterations < 1 {
		errs = append(errs, fmt.Sprintf("engine.max_ai_iterations must be >= 1, got %d", e.MaxAIIterations))
	}
	if e.DistanceWeight < 1 {
		errs = append(errs, fmt.Sprintf("engine.distance_weight must be >= 1, got %d", e.DistanceWeight))
	}
	if e.StayBias < 1 {
		errs = append(errs, fmt.Sprintf("engine.stay_bias must be >= 1, got %d", e.StayBias))
	}
	if e.PackWeight < 0 {
		errs = append(errs, fmt.Sprintf("engine.pack_weight must be >= 0, got %d", e.PackWeight))
	}
	if e.VisionRange < 1 {
		errs = append(errs, fmt.Sprintf("engine.vision_range must be >= 1, got %d", e.VisionRange))
	}
	if e.EngageRadius < 1 {
		errs = append(errs, fmt.Sprintf("engine.engage_radius must be >= 1, got %d", e.EngageRadius))
	}
	// An attack position must outscore any repositioning: the widest distance
	// swing on a board is 2 * vision_range * distance_weight.
	if limit := 2 * e.VisionRange * e.DistanceWeight; e.AttackBonus <= limit {
		errs = append(errs, fmt.Sprintf("engine.attack_bonus must exceed 2*vision_range*distance_weight (%d), got %d", limit, e.AttackBonus))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateContent(c ContentConfig) error {
	var errs []string
	required := map[string]string{
		"content.maps_dir":      c.MapsDir,
		"content.presets_dir":   c.PresetsDir,
		"content.scenarios_dir": c.ScenariosDir,
	}
	for _, key := range []string{"content.maps_dir", "content.presets_dir", "content.scenarios_dir"} {
		if required[key] == "" {
			errs = append(errs, key+" must not be empty")
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

// Load reads configuration from the given file path, applies environment variable
// overrides, and validates the result.
//
// Precondition: path must be a valid file path to a YAML configuration file.
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	// Environment variable overrides with SKIRMISH_ prefix
	v.SetEnvPrefix("SKIRMISH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	SetDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// LoadFromViper builds a Config from an already-configured Viper instance.
//
// Precondition: v must be non-nil and have configuration values set.
// Postcondition: Returns a valid Config or a non-nil error.
func LoadFromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Default returns the configuration produced by the defaults alone.
func Default() Config {
	v := viper.New()
	SetDefaults(v)
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		panic(fmt.Sprintf("config.Default: %v", err))
	}
	return cfg
}

// SetDefaults registers every default value on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	v.SetDefault("engine.max_ai_iterations", 10)
	v.SetDefault("engine.distance_weight", 10)
	v.SetDefault("engine.attack_bonus", 1000)
	v.SetDefault("engine.stay_bias", 1)
	v.SetDefault("engine.pack_weight", 5)
	v.SetDefault("engine.engage_radius", 8)
	v.SetDefault("engine.vision_range", 20)

	v.SetDefault("content.root", "")
	v.SetDefault("content.terrain_dir", "content/terrain")
	v.SetDefault("content.maps_dir", "content/maps")
	v.SetDefault("content.weapons_dir", "content/weapons")
	v.SetDefault("content.armor_dir", "content/armor")
	v.SetDefault("content.shields_dir", "content/shields")
	v.SetDefault("content.spells_dir", "content/spells")
	v.SetDefault("content.behaviors_dir", "content/behaviors")
	v.SetDefault("content.presets_dir", "content/presets")
	v.SetDefault("content.scenarios_dir", "content/scenarios")
	v.SetDefault("content.scripts_dir", "content/scripts")

	v.SetDefault("scripting.instruction_limit", 100000)

	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.service_name", "skirmish")
}
