package config

import (
	"fmt"
	"strings"
)

// Explain returns the effective value at a YAML path and where it came from.
//
// Supported paths:
//
//	display
//	shared_memory
//	flush_on_draw
//	wait_first_expose
//	background
//	key_autorepeat
//	demo.width, demo.height, demo.title
//	logging.level, logging.file, logging.max_size_mb, logging.max_files
func Explain(res *LoadResult, path string) (any, Source, error) {
	if res == nil || res.Config == nil {
		return nil, Source{}, fmt.Errorf("no config loaded")
	}
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, Source{}, fmt.Errorf("path is empty")
	}
	value, err := lookupValue(res.Config, path)
	if err != nil {
		return nil, Source{}, err
	}
	if src, ok := res.Sources[path]; ok {
		return value, src, nil
	}
	return value, Source{Kind: SourceDefault}, nil
}

func lookupValue(cfg *Config, path string) (any, error) {
	switch path {
	case "display":
		return cfg.Display, nil
	case "shared_memory":
		return string(cfg.SharedMemory), nil
	case "flush_on_draw":
		return cfg.FlushOnDraw, nil
	case "wait_first_expose":
		return cfg.WaitFirstExpose, nil
	case "background":
		return cfg.Background, nil
	case "key_autorepeat":
		if cfg.KeyAutoRepeat == nil {
			return nil, nil
		}
		return *cfg.KeyAutoRepeat, nil
	case "demo.width":
		return cfg.Demo.Width, nil
	case "demo.height":
		return cfg.Demo.Height, nil
	case "demo.title":
		return cfg.Demo.Title, nil
	case "logging.level":
		return cfg.Logging.Level, nil
	case "logging.file":
		return cfg.Logging.File, nil
	case "logging.max_size_mb":
		return cfg.Logging.MaxSizeMB, nil
	case "logging.max_files":
		return cfg.Logging.MaxFiles, nil
	}
	return nil, fmt.Errorf("unknown config path %q", path)
}
