// Package observability provides logger construction and core filters.
package observability

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/cory-johannsen/skirmish/internal/config"
)

// NewLogger creates a structured logger from the given logging configuration.
//
// Precondition: cfg.Level must be one of "debug", "info", "warn", "error".
// Precondition: cfg.Format must be "json" or "console".
// Postcondition: Returns a configured zap.Logger writing to stderr, with opts
// applied, or a non-nil error.
func NewLogger(cfg config.LoggingConfig, opts ...zap.Option) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("parsing log level %q: %w", cfg.Level, err)
	}

	var zapCfg zap.Config
	switch cfg.Format {
	case "json":
		zapCfg = zap.NewProductionConfig()
	case "console":
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.DisableStacktrace = true
	default:
		return nil, fmt.Errorf("unknown log format %q", cfg.Format)
	}

	zapCfg.Level = zap.NewAtomicLevelAt(level)
	zapCfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	// Keep stdout free for the encounter transcript.
	zapCfg.OutputPaths = []string{"stderr"}

	logger, err := zapCfg.Build(opts...)
	if err != nil {
		return nil, fmt.Errorf("building logger: %w", err)
	}
	return logger, nil
}

// ComponentKey is the field that tags which subsystem wrote an entry.
const ComponentKey = "component"

// DropComponent discards entries tagged component=name, either on the entry
// itself or on a logger derived with With. The CLI uses it to keep narrative
// lines it already prints out of the log stream.
func DropComponent(name string) zap.Option {
	return zap.WrapCore(func(c zapcore.Core) zapcore.Core {
		return &dropCore{Core: c, component: name}
	})
}

type dropCore struct {
	zapcore.Core
	component string
	dropped   bool
}

func (d *dropCore) matches(fields []zapcore.Field) bool {
	for _, f := range fields {
		if f.Key == ComponentKey && f.Type == zapcore.StringType && f.String == d.component {
			return true
		}
	}
	return false
}

func (d *dropCore) With(fields []zapcore.Field) zapcore.Core {
	return &dropCore{
		Core:      d.Core.With(fields),
		component: d.component,
		dropped:   d.dropped || d.matches(fields),
	}
}

func (d *dropCore) Check(ent zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if d.dropped || !d.Enabled(ent.Level) {
		return ce
	}
	return ce.AddCore(ent, d)
}

func (d *dropCore) Write(ent zapcore.Entry, fields []zapcore.Field) error {
	if d.matches(fields) {
		return nil
	}
	return d.Core.Write(ent, fields)
}
