package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/1broseidon/mlx"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"
)

type infoReport struct {
	Display  string          `yaml:"display"`
	Screen   screenReport    `yaml:"screen"`
	Shm      shmReport       `yaml:"shared_memory"`
	Monitors []monitorReport `yaml:"monitors"`
}

type screenReport struct {
	Number          int    `yaml:"number"`
	Width           int    `yaml:"width"`
	Height          int    `yaml:"height"`
	Depth           int    `yaml:"depth"`
	Visual          string `yaml:"visual"`
	Colormap        string `yaml:"colormap"`
	PrivateColormap bool   `yaml:"private_colormap"`
	RedMask         string `yaml:"red_mask"`
	GreenMask       string `yaml:"green_mask"`
	BlueMask        string `yaml:"blue_mask"`
	ByteOrder       string `yaml:"byte_order"`
}

type shmReport struct {
	Enabled      bool   `yaml:"enabled"`
	PixmapFormat int    `yaml:"pixmap_format"`
	Reason       string `yaml:"reason,omitempty"`
}

type monitorReport struct {
	Name   string `yaml:"name"`
	X      int    `yaml:"x"`
	Y      int    `yaml:"y"`
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
}

func buildInfoReport(display string, screen mlx.ScreenInfo, shm mlx.ShmInfo, monitors []mlx.Monitor) infoReport {
	order := "lsb-first"
	if screen.Format.BigEndian {
		order = "msb-first"
	}
	r := infoReport{
		Display: display,
		Screen: screenReport{
			Number:          screen.Number,
			Width:           screen.Width,
			Height:          screen.Height,
			Depth:           screen.Depth,
			Visual:          fmt.Sprintf("0x%x", screen.Visual),
			Colormap:        fmt.Sprintf("0x%x", screen.Colormap),
			PrivateColormap: screen.PrivateColormap,
			RedMask:         fmt.Sprintf("0x%06x", screen.Format.RedMask),
			GreenMask:       fmt.Sprintf("0x%06x", screen.Format.GreenMask),
			BlueMask:        fmt.Sprintf("0x%06x", screen.Format.BlueMask),
			ByteOrder:       order,
		},
		Shm: shmReport{
			Enabled:      shm.Enabled,
			PixmapFormat: shm.PixmapFormat,
			Reason:       shm.Reason,
		},
	}
	for _, m := range monitors {
		r.Monitors = append(r.Monitors, monitorReport{Name: m.Name, X: m.X, Y: m.Y, Width: m.Width, Height: m.Height})
	}
	return r
}

func writeInfoText(w io.Writer, r infoReport) {
	s := r.Screen
	display := r.Display
	if display == "" {
		display = "(default)"
	}
	fmt.Fprintf(w, "display:          %s\n", display)
	fmt.Fprintf(w, "screen:           %d (%dx%d)\n", s.Number, s.Width, s.Height)
	fmt.Fprintf(w, "depth:            %d\n", s.Depth)
	fmt.Fprintf(w, "visual:           %s (r=%s g=%s b=%s, %s)\n", s.Visual, s.RedMask, s.GreenMask, s.BlueMask, s.ByteOrder)
	fmt.Fprintf(w, "colormap:         %s (private: %v)\n", s.Colormap, s.PrivateColormap)
	if r.Shm.Enabled {
		fmt.Fprintf(w, "shared_memory:    enabled (pixmap format %d)\n", r.Shm.PixmapFormat)
	} else {
		fmt.Fprintf(w, "shared_memory:    disabled (%s)\n", r.Shm.Reason)
	}
	for _, m := range r.Monitors {
		fmt.Fprintf(w, "monitor:          %s %dx%d+%d+%d\n", m.Name, m.Width, m.Height, m.X, m.Y)
	}
}

func runInfo(args []string) int {
	fs := flag.NewFlagSet("info", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	path := fs.String("path", "", "Config file path")
	format := fs.String("format", "", "Output format: text or yaml (default: text on a terminal, yaml otherwise)")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: mlx info [--path PATH] [--format text|yaml]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Connect to the display and report what the library negotiated.")
	}
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if *format == "" {
		*format = "yaml"
		if term.IsTerminal(int(os.Stdout.Fd())) {
			*format = "text"
		}
	}
	if *format != "text" && *format != "yaml" {
		fmt.Fprintf(os.Stderr, "unknown format %q\n", *format)
		return 2
	}

	cfg, logger, closer, err := setup(*path)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer closer.Close()

	opts, err := mlxOptions(cfg, logger)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	m, err := mlx.Init(opts)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer m.Close()

	monitors, err := m.Monitors()
	if err != nil {
		logger.Warn("failed to list monitors", "error", err)
	}
	report := buildInfoReport(opts.Display, m.Screen(), m.Shm(), monitors)

	if *format == "text" {
		writeInfoText(os.Stdout, report)
		return 0
	}
	data, err := yaml.Marshal(&report)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	os.Stdout.Write(data)
	return 0
}
