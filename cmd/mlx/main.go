package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/1broseidon/mlx"
	"github.com/1broseidon/mlx/internal/config"
	"github.com/1broseidon/mlx/internal/displayenv"
	"github.com/1broseidon/mlx/internal/logging"
)

func main() {
	if len(os.Args) < 2 {
		printMainUsage(os.Stdout)
		os.Exit(0)
	}

	switch os.Args[1] {
	case "info":
		os.Exit(runInfo(os.Args[2:]))
	case "demo":
		os.Exit(runDemo(os.Args[2:]))
	case "config":
		os.Exit(runConfig(os.Args[2:]))
	case "help", "-h", "--help":
		printMainUsage(os.Stdout)
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printMainUsage(os.Stderr)
		os.Exit(2)
	}
}

func printMainUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: mlx <command> [options]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  info                Show screen, visual and shared-memory details")
	fmt.Fprintln(w, "  demo                Open an interactive drawing window")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  config validate     Validate configuration")
	fmt.Fprintln(w, "  config print        Print effective configuration")
	fmt.Fprintln(w, "  config explain      Explain a config value")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Run 'mlx <command> --help' for command-specific options.")
}

// loadConfig reads path, or the default location when path is empty.
func loadConfig(path string) (*config.LoadResult, error) {
	if path == "" {
		return config.LoadWithSources()
	}
	return config.LoadFromPath(path)
}

// setup loads the config and builds the logger. The returned closer
// flushes the log file.
func setup(path string) (*config.Config, *slog.Logger, io.Closer, error) {
	res, err := loadConfig(path)
	if err != nil {
		return nil, nil, nil, err
	}
	cfg := res.Config
	logger, closer, err := logging.New(logging.Options{
		Level:     cfg.Logging.Level,
		File:      cfg.LogFile(),
		MaxSizeMB: cfg.Logging.MaxSizeMB,
		MaxFiles:  cfg.Logging.MaxFiles,
	})
	if err != nil {
		return nil, nil, nil, err
	}
	return cfg, logger, closer, nil
}

// mlxOptions maps the effective config onto library options. An empty
// display is resolved from the environment and the desktop session.
func mlxOptions(cfg *config.Config, logger *slog.Logger) (mlx.Options, error) {
	bg, err := cfg.BackgroundColor()
	if err != nil {
		return mlx.Options{}, err
	}
	display := displayenv.Resolve(cfg.Display)
	if display == "" {
		logger.Debug("no display found in config, environment or session")
	}
	return mlx.Options{
		Display:             display,
		DisableSharedMemory: cfg.SharedMemory == config.SharedMemoryOff,
		NoFlush:             !cfg.FlushOnDraw,
		NoWaitFirstExpose:   !cfg.WaitFirstExpose,
		Background:          bg,
		Logger:              logger,
	}, nil
}

func runConfig(args []string) int {
	if len(args) == 0 || args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		fmt.Fprintln(os.Stderr, "Usage:")
		fmt.Fprintln(os.Stderr, "  mlx config validate [--path PATH]")
		fmt.Fprintln(os.Stderr, "  mlx config print [--path PATH] [--defaults]")
		fmt.Fprintln(os.Stderr, "  mlx config explain [--path PATH] <yaml.path>")
		return 2
	}

	fs := flag.NewFlagSet(args[0], flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	path := fs.String("path", "", "Config file path (default: $MLX_CONFIG or ~/.config/mlx/config.yaml)")

	switch args[0] {
	case "validate":
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}
		if _, err := loadConfig(*path); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		fmt.Println("config: ok")
		return 0

	case "print":
		printDefaults := fs.Bool("defaults", false, "Print built-in defaults (no files)")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}
		cfg := config.DefaultConfig()
		if !*printDefaults {
			res, err := loadConfig(*path)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				return 1
			}
			cfg = res.Config
		}
		data, err := cfg.Marshal()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		os.Stdout.Write(data)
		return 0

	case "explain":
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}
		if fs.NArg() != 1 {
			fmt.Fprintln(os.Stderr, "Usage: mlx config explain [--path PATH] <yaml.path>")
			return 2
		}
		res, err := loadConfig(*path)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		value, src, err := config.Explain(res, fs.Arg(0))
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		fmt.Printf("%s: %v\n", fs.Arg(0), value)
		fmt.Printf("source: %s\n", formatSource(src))
		return 0

	default:
		fmt.Fprintf(os.Stderr, "Unknown config command: %s\n", args[0])
		return 2
	}
}

func formatSource(src config.Source) string {
	if src.Kind == config.SourceFile {
		return fmt.Sprintf("%s:%d:%d", src.File, src.Line, src.Column)
	}
	return string(src.Kind)
}
