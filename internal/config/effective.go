package config

import (
	"fmt"
	"strings"
)

// ValidationError points at the offending key, with its file position when
// the key came from a config file.
type ValidationError struct {
	Path   string
	Source Source
	Err    error
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Source.Kind == SourceFile && e.Source.File != "" && e.Source.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %s: %v", e.Source.File, e.Source.Line, e.Source.Column, e.Path, e.Err)
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error { return e.Err }

// BuildEffectiveConfig applies raw on top of DefaultConfig.
func BuildEffectiveConfig(raw RawConfig) *Config {
	cfg := DefaultConfig()

	if raw.Display != nil {
		cfg.Display = strings.TrimSpace(*raw.Display)
	}
	if raw.SharedMemory != nil {
		cfg.SharedMemory = SharedMemoryMode(strings.ToLower(strings.TrimSpace(*raw.SharedMemory)))
	}
	if raw.FlushOnDraw != nil {
		cfg.FlushOnDraw = *raw.FlushOnDraw
	}
	if raw.WaitFirstExpose != nil {
		cfg.WaitFirstExpose = *raw.WaitFirstExpose
	}
	if raw.Background != nil {
		cfg.Background = *raw.Background
	}
	if raw.KeyAutoRepeat != nil {
		v := *raw.KeyAutoRepeat
		cfg.KeyAutoRepeat = &v
	}

	if d := raw.Demo; d != nil {
		if d.Width != nil {
			cfg.Demo.Width = *d.Width
		}
		if d.Height != nil {
			cfg.Demo.Height = *d.Height
		}
		if d.Title != nil {
			cfg.Demo.Title = *d.Title
		}
	}

	if l := raw.Logging; l != nil {
		if l.Level != nil {
			cfg.Logging.Level = strings.ToLower(strings.TrimSpace(*l.Level))
		}
		if l.File != nil {
			cfg.Logging.File = *l.File
		}
		if l.MaxSizeMB != nil {
			cfg.Logging.MaxSizeMB = *l.MaxSizeMB
		}
		if l.MaxFiles != nil {
			cfg.Logging.MaxFiles = *l.MaxFiles
		}
	}

	return cfg
}
