package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// SharedMemoryMode controls MIT-SHM negotiation.
type SharedMemoryMode string

const (
	SharedMemoryAuto SharedMemoryMode = "auto"
	SharedMemoryOff  SharedMemoryMode = "off"
)

const (
	DefaultDemoWidth  = 640
	DefaultDemoHeight = 480
	DefaultDemoTitle  = "mlx demo"

	maxDimension = 65535
)

// Config is the effective configuration after defaults and overrides.
type Config struct {
	Display         string           `yaml:"display"`
	SharedMemory    SharedMemoryMode `yaml:"shared_memory"`
	FlushOnDraw     bool             `yaml:"flush_on_draw"`
	WaitFirstExpose bool             `yaml:"wait_first_expose"`
	// Background is a 0xRRGGBB or #RRGGBB color.
	Background string `yaml:"background"`
	// KeyAutoRepeat is applied to the server only when set.
	KeyAutoRepeat *bool         `yaml:"key_autorepeat,omitempty"`
	Demo          DemoConfig    `yaml:"demo"`
	Logging       LoggingConfig `yaml:"logging"`
}

// DemoConfig sizes the window opened by `mlx demo`.
type DemoConfig struct {
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
	Title  string `yaml:"title"`
}

// LoggingConfig controls the CLI logger. An empty File logs to stderr.
type LoggingConfig struct {
	Level     string `yaml:"level"`
	File      string `yaml:"file"`
	MaxSizeMB int    `yaml:"max_size_mb"`
	MaxFiles  int    `yaml:"max_files"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		SharedMemory:    SharedMemoryAuto,
		FlushOnDraw:     true,
		WaitFirstExpose: true,
		Background:      "0x000000",
		Demo: DemoConfig{
			Width:  DefaultDemoWidth,
			Height: DefaultDemoHeight,
			Title:  DefaultDemoTitle,
		},
		Logging: LoggingConfig{
			Level:     "info",
			MaxSizeMB: 10,
			MaxFiles:  3,
		},
	}
}

// BackgroundColor parses Background into 0x00RRGGBB.
func (c *Config) BackgroundColor() (uint32, error) {
	return ParseColor(c.Background)
}

// ParseColor accepts 0xRRGGBB, #RRGGBB or RRGGBB.
func ParseColor(s string) (uint32, error) {
	hex := strings.TrimSpace(s)
	switch {
	case strings.HasPrefix(hex, "0x"), strings.HasPrefix(hex, "0X"):
		hex = hex[2:]
	case strings.HasPrefix(hex, "#"):
		hex = hex[1:]
	}
	if len(hex) != 6 {
		return 0, fmt.Errorf("color %q must have six hex digits", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("color %q is not hexadecimal", s)
	}
	return uint32(v), nil
}

// LogFile returns the log file path with ~ expanded, or "" for stderr.
func (c *Config) LogFile() string {
	file := strings.TrimSpace(c.Logging.File)
	if file == "~" || strings.HasPrefix(file, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(file[1:], "/"))
		}
	}
	return file
}

// Validate performs strict validation of the effective configuration.
func (c *Config) Validate() error {
	switch c.SharedMemory {
	case SharedMemoryAuto, SharedMemoryOff:
	default:
		return &ValidationError{Path: "shared_memory", Err: fmt.Errorf("shared_memory must be one of: auto, off")}
	}
	if _, err := c.BackgroundColor(); err != nil {
		return &ValidationError{Path: "background", Err: err}
	}
	if c.Demo.Width < 1 || c.Demo.Width > maxDimension {
		return &ValidationError{Path: "demo.width", Err: fmt.Errorf("width must be between 1 and %d", maxDimension)}
	}
	if c.Demo.Height < 1 || c.Demo.Height > maxDimension {
		return &ValidationError{Path: "demo.height", Err: fmt.Errorf("height must be between 1 and %d", maxDimension)}
	}
	if strings.ContainsRune(c.Demo.Title, 0) {
		return &ValidationError{Path: "demo.title", Err: fmt.Errorf("title must not contain NUL bytes")}
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return &ValidationError{Path: "logging.level", Err: fmt.Errorf("level must be one of: debug, info, warn, error")}
	}
	if c.Logging.MaxSizeMB < 0 {
		return &ValidationError{Path: "logging.max_size_mb", Err: fmt.Errorf("max_size_mb must be >= 0")}
	}
	if c.Logging.MaxFiles < 0 {
		return &ValidationError{Path: "logging.max_files", Err: fmt.Errorf("max_files must be >= 0")}
	}
	return nil
}

// Marshal renders the effective configuration as YAML.
func (c *Config) Marshal() ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}
	return data, nil
}
