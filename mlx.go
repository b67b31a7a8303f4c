// Package mlx is a small X11 drawing library: fixed-size windows, pixel
// images blitted through MIT-SHM when the display is local, and a
// callback-driven event loop.
//
// An *Mlx is not safe for concurrent use. Other goroutines hand data to the
// loop through a Handoff drained from the idle hook.
package mlx

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/1broseidon/mlx/internal/platform"
	"github.com/1broseidon/mlx/internal/x11"
)

// ScreenInfo describes the default screen and the drawing visual.
type ScreenInfo = platform.ScreenInfo

// ShmInfo is the shared-memory negotiation result.
type ShmInfo = platform.ShmInfo

// Monitor is one output area of the screen.
type Monitor = platform.Monitor

// SizeHints are the WM_NORMAL_HINTS set on every window.
type SizeHints = platform.SizeHints

// Options configures Init.
type Options struct {
	// Display is the X display target. Empty uses $DISPLAY.
	Display string
	// DisableSharedMemory forces the socket transport for images.
	DisableSharedMemory bool
	// NoFlush skips the server round trip after each drawing call.
	NoFlush bool
	// NoWaitFirstExpose returns from NewWindow without waiting for the
	// window to be exposed.
	NoWaitFirstExpose bool
	// Background is the 0x00RRGGBB color used by ClearImage and as the
	// window background.
	Background uint32
	// Logger receives diagnostics. Nil uses slog.Default().
	Logger *slog.Logger
}

// Mlx owns one display connection and every window and image created on it.
type Mlx struct {
	backend platform.Backend
	logger  *slog.Logger
	screen  platform.ScreenInfo
	format  platform.PixelFormat

	flush      bool
	waitExpose bool
	background uint32

	windows    []*window
	byID       map[WindowID]*window
	byXID      map[platform.WindowID]*window
	nextWindow WindowID

	images    []*Image
	imageByID map[ImageID]*Image
	nextImage ImageID

	idle   func()
	end    bool
	closed bool
}

// Init connects to the display server. Any failure is fatal; there is no retry.
func Init(opts Options) (*Mlx, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	conn, err := x11.NewConnection(x11.Options{
		Display:           opts.Display,
		AllowSharedMemory: !opts.DisableSharedMemory,
		Logger:            logger,
	})
	if err != nil {
		return nil, &InitError{Display: opts.Display, Err: err}
	}
	opts.Logger = logger
	return newMlx(conn, opts), nil
}

func newMlx(b platform.Backend, opts Options) *Mlx {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	screen := b.Screen()
	m := &Mlx{
		backend:    b,
		logger:     logger,
		screen:     screen,
		format:     screen.Format,
		flush:      !opts.NoFlush,
		waitExpose: !opts.NoWaitFirstExpose,
		background: opts.Background & 0xFFFFFF,
		byID:       make(map[WindowID]*window),
		byXID:      make(map[platform.WindowID]*window),
		imageByID:  make(map[ImageID]*Image),
	}
	shm := b.Shm()
	logger.Debug("display ready",
		"screen", screen.Number,
		"depth", screen.Depth,
		"visual", fmt.Sprintf("0x%x", screen.Visual),
		"private_colormap", screen.PrivateColormap,
		"shm", shm.Enabled,
		"shm_pixmap_format", shm.PixmapFormat,
	)
	return m
}

// Screen returns the default screen and the selected visual.
func (m *Mlx) Screen() ScreenInfo {
	return m.screen
}

// Shm returns how images are transported to the server.
func (m *Mlx) Shm() ShmInfo {
	return m.backend.Shm()
}

// ScreenSize returns the size of the default screen in pixels.
func (m *Mlx) ScreenSize() (int, int) {
	return m.screen.Width, m.screen.Height
}

// Monitors lists the outputs of the screen.
func (m *Mlx) Monitors() ([]Monitor, error) {
	if m.closed {
		return nil, ErrClosed
	}
	return m.backend.Monitors()
}

// ColorValue converts a 0x00RRGGBB color into the server's pixel value.
func (m *Mlx) ColorValue(color uint32) uint32 {
	return m.format.Encode(color)
}

// DoSync waits until the server has processed every request sent so far.
func (m *Mlx) DoSync() error {
	if m.closed {
		return ErrClosed
	}
	return m.backend.Flush()
}

// Close releases every image, then every window, then the connection.
// Calling Close again is a no-op.
func (m *Mlx) Close() error {
	if m.closed {
		return nil
	}
	var errs []error
	for _, img := range m.images {
		if err := img.release(); err != nil {
			errs = append(errs, fmt.Errorf("failed to release image %d: %w", img.id, err))
		}
	}
	m.images = nil
	clear(m.imageByID)

	for _, w := range m.windows {
		if err := m.destroyBackendWindow(w); err != nil {
			errs = append(errs, fmt.Errorf("failed to destroy window %d: %w", w.id, err))
		}
	}
	m.windows = nil
	clear(m.byID)
	clear(m.byXID)

	m.closed = true
	if err := m.backend.Close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// afterDraw flushes when flush-on-draw is enabled.
func (m *Mlx) afterDraw() error {
	if !m.flush {
		return nil
	}
	return m.backend.Flush()
}
