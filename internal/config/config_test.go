package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, dir, name, data string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected defaults to validate, got %v", err)
	}
	if !cfg.FlushOnDraw || !cfg.WaitFirstExpose {
		t.Fatalf("expected flush_on_draw and wait_first_expose to default to true")
	}
	if cfg.SharedMemory != SharedMemoryAuto {
		t.Fatalf("expected shared_memory auto, got %q", cfg.SharedMemory)
	}
	if cfg.KeyAutoRepeat != nil {
		t.Fatalf("expected key_autorepeat unset by default")
	}
}

func TestLoadFromPath_MissingFileUsesDefaults(t *testing.T) {
	res, err := LoadFromPath(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Config.Demo.Width != DefaultDemoWidth || len(res.Files) != 0 {
		t.Fatalf("expected defaults and no files, got %+v, %v", res.Config.Demo, res.Files)
	}
}

func TestLoadFromPath_EmptyFileUsesDefaults(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "config.yaml", "# empty\n")
	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Config.Logging.Level != "info" {
		t.Fatalf("expected logging.level info, got %q", res.Config.Logging.Level)
	}
}

func TestLoadFromPath_Overrides(t *testing.T) {
	data := strings.Join([]string{
		`display: ":1"`,
		`shared_memory: "OFF"`,
		`flush_on_draw: false`,
		`background: "#336699"`,
		`key_autorepeat: false`,
		`demo:`,
		`  width: 320`,
		`logging:`,
		`  level: debug`,
		"",
	}, "\n")
	res, err := LoadFromPath(writeConfig(t, t.TempDir(), "config.yaml", data))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	cfg := res.Config
	if cfg.Display != ":1" || cfg.SharedMemory != SharedMemoryOff || cfg.FlushOnDraw {
		t.Fatalf("unexpected top-level values: %+v", cfg)
	}
	if !cfg.WaitFirstExpose {
		t.Fatalf("expected wait_first_expose to keep its default")
	}
	if bg, _ := cfg.BackgroundColor(); bg != 0x336699 {
		t.Fatalf("expected background 0x336699, got %#x", bg)
	}
	if cfg.KeyAutoRepeat == nil || *cfg.KeyAutoRepeat {
		t.Fatalf("expected key_autorepeat false")
	}
	if cfg.Demo.Width != 320 || cfg.Demo.Height != DefaultDemoHeight || cfg.Demo.Title != DefaultDemoTitle {
		t.Fatalf("expected demo width override only, got %+v", cfg.Demo)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.MaxFiles != 3 {
		t.Fatalf("expected logging level override only, got %+v", cfg.Logging)
	}
}

func TestLoadFromPath_StrictUnknownKeyErrors(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "config.yaml", "unknown_key: 1\n")
	_, err := LoadFromPath(path)
	if err == nil {
		t.Fatalf("expected error for unknown key")
	}
	if !strings.Contains(err.Error(), "unknown_key") {
		t.Fatalf("expected unknown field error, got %v", err)
	}
	if !strings.Contains(err.Error(), path) {
		t.Fatalf("expected error to include file path, got %v", err)
	}
}

func TestLoadFromPath_ValidationErrorHasPosition(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "config.yaml", "demo:\n  width: 0\n")
	_, err := LoadFromPath(path)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if verr.Path != "demo.width" || verr.Source.Line != 2 {
		t.Fatalf("expected demo.width at line 2, got %q line %d", verr.Path, verr.Source.Line)
	}
	if !strings.HasPrefix(err.Error(), verr.Source.File+":2:") {
		t.Fatalf("expected error to start with file position, got %v", err)
	}
}

func TestValidate_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		path   string
	}{
		{"shared memory", func(c *Config) { c.SharedMemory = "always" }, "shared_memory"},
		{"background", func(c *Config) { c.Background = "red" }, "background"},
		{"demo height", func(c *Config) { c.Demo.Height = 70000 }, "demo.height"},
		{"demo title", func(c *Config) { c.Demo.Title = "a\x00b" }, "demo.title"},
		{"log level", func(c *Config) { c.Logging.Level = "verbose" }, "logging.level"},
		{"max files", func(c *Config) { c.Logging.MaxFiles = -1 }, "logging.max_files"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			var verr *ValidationError
			if err := cfg.Validate(); !errors.As(err, &verr) || verr.Path != tt.path {
				t.Fatalf("expected ValidationError at %q, got %v", tt.path, err)
			}
		})
	}
}

func TestParseColor(t *testing.T) {
	for in, want := range map[string]uint32{"0xFF0000": 0xFF0000, "#00ff00": 0x00FF00, "0000ff": 0x0000FF, " 0x123456 ": 0x123456} {
		got, err := ParseColor(in)
		if err != nil || got != want {
			t.Fatalf("ParseColor(%q) = %#x, %v, want %#x", in, got, err, want)
		}
	}
	for _, in := range []string{"", "0xFFF", "#GGGGGG", "0x1234567"} {
		if _, err := ParseColor(in); err == nil {
			t.Fatalf("ParseColor(%q) succeeded, want error", in)
		}
	}
}

func TestLoadFromPath_IncludeOrderAndMainOverrides(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "conf.d/10-a.yaml", "demo:\n  width: 100\n  title: from-a\n")
	writeConfig(t, dir, "conf.d/20-b.yaml", "demo:\n  width: 200\n")
	main := writeConfig(t, dir, "config.yaml", "include: conf.d\ndemo:\n  height: 50\n")

	res, err := LoadFromPath(main)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	demo := res.Config.Demo
	if demo.Width != 200 || demo.Height != 50 || demo.Title != "from-a" {
		t.Fatalf("expected merged demo 200x50 from-a, got %+v", demo)
	}
	if len(res.Files) != 3 || !strings.HasSuffix(res.Files[2], "config.yaml") {
		t.Fatalf("expected includes before main file, got %v", res.Files)
	}
}

func TestLoadFromPath_IncludeCycleDetection(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "a.yaml", "include: b.yaml\n")
	writeConfig(t, dir, "b.yaml", "include: a.yaml\n")

	_, err := LoadFromPath(filepath.Join(dir, "a.yaml"))
	if err == nil || !strings.Contains(err.Error(), "include cycle") {
		t.Fatalf("expected include cycle error, got %v", err)
	}
}

func TestLoadFromPath_IncludeMissingPathHasContext(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "config.yaml", "include: missing.yaml\n")
	_, err := LoadFromPath(path)
	if err == nil || !strings.Contains(err.Error(), `include "missing.yaml"`) {
		t.Fatalf("expected include context in error, got %v", err)
	}
}

func TestDefaultConfigPath_EnvOverride(t *testing.T) {
	t.Setenv(EnvConfigPath, "/tmp/mlx-test.yaml")
	path, err := DefaultConfigPath()
	if err != nil || path != "/tmp/mlx-test.yaml" {
		t.Fatalf("DefaultConfigPath = %q, %v, want /tmp/mlx-test.yaml", path, err)
	}

	t.Setenv(EnvConfigPath, "")
	t.Setenv("HOME", "/home/tester")
	path, err = DefaultConfigPath()
	if err != nil || path != filepath.Join("/home/tester", ".config", "mlx", "config.yaml") {
		t.Fatalf("DefaultConfigPath = %q, %v", path, err)
	}
}

func TestExplain(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "config.yaml", "display: \":2\"\n")
	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	val, src, err := Explain(res, "display")
	if err != nil || val != ":2" || src.Kind != SourceFile || src.Line != 1 {
		t.Fatalf("Explain(display) = %#v, %+v, %v", val, src, err)
	}
	val, src, err = Explain(res, "demo.width")
	if err != nil || val != DefaultDemoWidth || src.Kind != SourceDefault {
		t.Fatalf("Explain(demo.width) = %#v, %+v, %v", val, src, err)
	}
	if _, _, err := Explain(res, "nope"); err == nil {
		t.Fatalf("expected error for unknown path")
	}
}

func TestLogFileExpandsHome(t *testing.T) {
	t.Setenv("HOME", "/home/tester")
	cfg := DefaultConfig()
	cfg.Logging.File = "~/logs/mlx.log"
	if got := cfg.LogFile(); got != "/home/tester/logs/mlx.log" {
		t.Fatalf("LogFile() = %q", got)
	}
}
