package main

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/1broseidon/mlx"
)

const (
	keysymEscape = 0xff1b
	brushSize    = 6
	frameEvery   = 33 * time.Millisecond
)

// gradient fills img with a color ramp shifted by phase.
func gradient(img *mlx.Image, phase int) {
	w, h := img.Width(), img.Height()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r := uint32((x + phase) * 255 / w % 256)
			g := uint32(y * 255 / h)
			b := uint32(phase % 256)
			img.PutPixel(x, y, r<<16|g<<8|b)
		}
	}
}

// paint draws a filled square centered on (cx, cy); pixels past the edges
// are dropped by PutPixel.
func paint(img *mlx.Image, cx, cy int, color uint32) {
	for y := cy - brushSize/2; y < cy+brushSize/2; y++ {
		for x := cx - brushSize/2; x < cx+brushSize/2; x++ {
			img.PutPixel(x, y, color)
		}
	}
}

type demo struct {
	m      *mlx.Mlx
	win    mlx.WindowID
	imgID  mlx.ImageID
	img    *mlx.Image
	frames *mlx.Handoff[int]
	logger *slog.Logger
	paused bool
}

func (d *demo) redraw() {
	if err := d.m.Blit(d.imgID, d.win, 0, 0); err != nil {
		d.logger.Warn("blit failed", "error", err)
		return
	}
	if err := d.m.StringPut(d.win, 8, 16, 0xFFFFFF, "click to paint, space to pause, esc to quit"); err != nil {
		d.logger.Debug("string put failed", "error", err)
	}
}

func (d *demo) onKey(ev mlx.Event) {
	switch ev.Keysym {
	case keysymEscape:
		d.m.LoopEnd()
	case ' ':
		d.paused = !d.paused
	}
}

func (d *demo) onMouse(ev mlx.Event) {
	color := uint32(0xFFFFFF)
	if ev.Button == 3 {
		color = 0x000000
	}
	paint(d.img, ev.X, ev.Y, color)
	d.redraw()
}

func (d *demo) onIdle() {
	latest := -1
	d.frames.Drain(func(f int) { latest = f })
	if latest < 0 || d.paused {
		time.Sleep(time.Millisecond)
		return
	}
	gradient(d.img, latest)
	d.redraw()
}

func runDemo(args []string) int {
	fs := flag.NewFlagSet("demo", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	path := fs.String("path", "", "Config file path")
	width := fs.Int("width", 0, "Window width (default from config)")
	height := fs.Int("height", 0, "Window height (default from config)")
	title := fs.String("title", "", "Window title (default from config)")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: mlx demo [--path PATH] [--width N] [--height N] [--title TITLE]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Open an animated window. Click to paint, space pauses, Escape quits.")
	}
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	cfg, logger, closer, err := setup(*path)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer closer.Close()

	if *width > 0 {
		cfg.Demo.Width = *width
	}
	if *height > 0 {
		cfg.Demo.Height = *height
	}
	if *title != "" {
		cfg.Demo.Title = *title
	}

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

	defer applyKeyAutoRepeat(m, cfg.KeyAutoRepeat, logger)()

	d, err := newDemo(m, cfg.Demo.Width, cfg.Demo.Height, cfg.Demo.Title, logger)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	stop := make(chan struct{})
	go produceFrames(d.frames, stop)
	defer close(stop)

	if err := m.Loop(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

type autoRepeater interface {
	KeyAutoRepeat(on bool) error
}

// applyKeyAutoRepeat sets the server-wide auto-repeat when setting is non-nil.
// The returned func turns auto-repeat back on after it was switched off.
func applyKeyAutoRepeat(r autoRepeater, setting *bool, logger *slog.Logger) func() {
	if setting == nil {
		return func() {}
	}
	if err := r.KeyAutoRepeat(*setting); err != nil {
		logger.Warn("failed to set key auto-repeat", "error", err)
		return func() {}
	}
	if *setting {
		return func() {}
	}
	return func() {
		if err := r.KeyAutoRepeat(true); err != nil {
			logger.Warn("failed to restore key auto-repeat", "error", err)
		}
	}
}

func newDemo(m *mlx.Mlx, width, height int, title string, logger *slog.Logger) (*demo, error) {
	win, err := m.NewWindow(width, height, title)
	if err != nil {
		return nil, err
	}
	imgID, err := m.AttachImage(win)
	if err != nil {
		return nil, err
	}
	img, err := m.Image(imgID)
	if err != nil {
		return nil, err
	}
	logger.Info("demo window ready", "width", width, "height", height, "shared_image", img.Shared())

	d := &demo{
		m:      m,
		win:    win,
		imgID:  imgID,
		img:    img,
		frames: mlx.NewHandoff[int](8),
		logger: logger,
	}
	gradient(img, 0)

	hooks := []error{
		m.KeyHook(win, d.onKey),
		m.MouseHook(win, d.onMouse),
		m.ExposeHook(win, func(ev mlx.Event) {
			if ev.Count == 0 {
				d.redraw()
			}
		}),
		m.Hook(win, mlx.DestroyNotify, func(mlx.Event) { m.LoopEnd() }),
	}
	if err := errors.Join(hooks...); err != nil {
		return nil, err
	}
	m.LoopHook(d.onIdle)
	d.redraw()
	return d, nil
}

// produceFrames pushes frame numbers until stop is closed. Frames the loop
// has not drained yet are dropped.
func produceFrames(frames *mlx.Handoff[int], stop <-chan struct{}) {
	ticker := time.NewTicker(frameEvery)
	defer ticker.Stop()
	for frame := 1; ; frame++ {
		select {
		case <-stop:
			return
		case <-ticker.C:
			frames.Push(frame)
		}
	}
}
