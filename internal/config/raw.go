package config

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// IncludeList accepts a single path or a list of paths:
//
//	include: "~/.config/mlx/local.yaml"
//
//	include:
//	  - "colors.yaml"
//	  - "conf.d"
type IncludeList []string

func (l *IncludeList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		if value.Tag != "!!str" {
			return fmt.Errorf("include must be a string or list of strings")
		}
		*l = IncludeList{value.Value}
	case yaml.SequenceNode:
		paths := make(IncludeList, 0, len(value.Content))
		for _, item := range value.Content {
			if item.Kind != yaml.ScalarNode || item.Tag != "!!str" {
				return fmt.Errorf("include entries must be strings")
			}
			paths = append(paths, item.Value)
		}
		*l = paths
	default:
		return fmt.Errorf("include must be a string or list of strings")
	}
	return nil
}

// RawConfig is one file as written. Nil fields were not set and keep the
// value from earlier files or the defaults.
type RawConfig struct {
	Include         IncludeList `yaml:"include"`
	Display         *string     `yaml:"display"`
	SharedMemory    *string     `yaml:"shared_memory"`
	FlushOnDraw     *bool       `yaml:"flush_on_draw"`
	WaitFirstExpose *bool       `yaml:"wait_first_expose"`
	Background      *string     `yaml:"background"`
	KeyAutoRepeat   *bool       `yaml:"key_autorepeat"`
	Demo            *RawDemo    `yaml:"demo"`
	Logging         *RawLogging `yaml:"logging"`
}

type RawDemo struct {
	Width  *int    `yaml:"width"`
	Height *int    `yaml:"height"`
	Title  *string `yaml:"title"`
}

type RawLogging struct {
	Level     *string `yaml:"level"`
	File      *string `yaml:"file"`
	MaxSizeMB *int    `yaml:"max_size_mb"`
	MaxFiles  *int    `yaml:"max_files"`
}

func pick[T any](base, overlay *T) *T {
	if overlay != nil {
		return overlay
	}
	return base
}

// merge returns c with every field set in overlay replaced.
func (c RawConfig) merge(overlay RawConfig) RawConfig {
	out := RawConfig{
		Display:         pick(c.Display, overlay.Display),
		SharedMemory:    pick(c.SharedMemory, overlay.SharedMemory),
		FlushOnDraw:     pick(c.FlushOnDraw, overlay.FlushOnDraw),
		WaitFirstExpose: pick(c.WaitFirstExpose, overlay.WaitFirstExpose),
		Background:      pick(c.Background, overlay.Background),
		KeyAutoRepeat:   pick(c.KeyAutoRepeat, overlay.KeyAutoRepeat),
		Demo:            c.Demo,
		Logging:         c.Logging,
	}
	if overlay.Demo != nil {
		base := RawDemo{}
		if c.Demo != nil {
			base = *c.Demo
		}
		out.Demo = &RawDemo{
			Width:  pick(base.Width, overlay.Demo.Width),
			Height: pick(base.Height, overlay.Demo.Height),
			Title:  pick(base.Title, overlay.Demo.Title),
		}
	}
	if overlay.Logging != nil {
		base := RawLogging{}
		if c.Logging != nil {
			base = *c.Logging
		}
		out.Logging = &RawLogging{
			Level:     pick(base.Level, overlay.Logging.Level),
			File:      pick(base.File, overlay.Logging.File),
			MaxSizeMB: pick(base.MaxSizeMB, overlay.Logging.MaxSizeMB),
			MaxFiles:  pick(base.MaxFiles, overlay.Logging.MaxFiles),
		}
	}
	return out
}
