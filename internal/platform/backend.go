package platform

import "errors"

// WindowID is a window-system window identifier.
type WindowID uint32

// NoShmFormat is the pixmap format reported when shared pixmaps are unavailable.
const NoShmFormat = -1

var (
	// ErrDisplayOpen is returned when the display server cannot be reached.
	ErrDisplayOpen = errors.New("cannot open display")
	// ErrClosed is returned by event reads once the display connection is gone.
	ErrClosed = errors.New("display connection closed")
	// ErrNoTrueColor is returned when the screen offers no usable TrueColor visual.
	ErrNoTrueColor = errors.New("no TrueColor visual available")
)

// ScreenInfo describes the default screen and the visual selected for drawing.
type ScreenInfo struct {
	Number          int
	Root            WindowID
	Width           int
	Height          int
	Depth           int
	Visual          uint32
	Colormap        uint32
	PrivateColormap bool
	Format          PixelFormat
}

// ShmInfo is the outcome of shared-memory negotiation.
type ShmInfo struct {
	Enabled      bool
	PixmapFormat int
	// Reason explains why shared memory is disabled. Empty when enabled.
	Reason string
}

// Monitor is one output area of the screen.
type Monitor struct {
	Name   string
	X      int
	Y      int
	Width  int
	Height int
}

// SizeHints mirrors the WM_NORMAL_HINTS fields the library sets.
type SizeHints struct {
	Flags     uint32
	X         int
	Y         int
	Width     int
	Height    int
	MinWidth  int
	MinHeight int
	MaxWidth  int
	MaxHeight int
}

// Size hint flags (ICCCM 4.1.2.3).
const (
	HintUSPosition uint32 = 1 << iota
	HintUSSize
	HintPPosition
	HintPSize
	HintPMinSize
	HintPMaxSize
)

// FixedSizeHints returns hints that pin a window to width x height.
func FixedSizeHints(width, height int) SizeHints {
	return SizeHints{
		Flags:     HintPPosition | HintPSize | HintPMinSize | HintPMaxSize,
		Width:     width,
		Height:    height,
		MinWidth:  width,
		MinHeight: height,
		MaxWidth:  width,
		MaxHeight: height,
	}
}

// AllowsResize reports whether a window manager honoring h may resize the window.
func (h SizeHints) AllowsResize() bool {
	const fixed = HintPMinSize | HintPMaxSize
	if h.Flags&fixed != fixed {
		return true
	}
	return h.MinWidth != h.MaxWidth || h.MinHeight != h.MaxHeight
}

// WindowSpec describes a window to create.
type WindowSpec struct {
	Width           int
	Height          int
	Title           string
	Background      uint32
	WaitFirstExpose bool
}

// Window is a created window together with its graphics context.
type Window struct {
	ID    WindowID
	GC    uint32
	Hints SizeHints
}

// SharedBuffer is pixel memory visible to both the client and the server.
type SharedBuffer interface {
	Bytes() []byte
	// Release detaches the buffer from the server and from this process.
	Release() error
}

// ImageData is a packed pixel buffer ready to be put on a window.
type ImageData struct {
	Width  int
	Height int
	Stride int
	Data   []byte
	// Shared is set when Data lives in a SharedBuffer.
	Shared SharedBuffer
}

// Backend abstracts the windowing-system operations the library needs.
type Backend interface {
	Screen() ScreenInfo
	Shm() ShmInfo
	Monitors() ([]Monitor, error)

	CreateWindow(spec WindowSpec) (Window, error)
	DestroyWindow(w Window) error
	// ReleaseWindow frees the client-side resources of a window the server
	// has already destroyed.
	ReleaseWindow(w Window) error
	ClearWindow(id WindowID) error
	PointPut(w Window, x, y int, pixel uint32) error
	TextPut(w Window, x, y int, pixel uint32, text string) error

	NewSharedBuffer(size int) (SharedBuffer, error)
	PutImage(w Window, img ImageData, x, y int) error

	PointerPosition(id WindowID) (x, y int, err error)
	WarpPointer(id WindowID, x, y int) error
	SetCursorVisible(id WindowID, visible bool) error
	SetKeyAutoRepeat(on bool) error

	// Flush waits until the server has processed every request sent so far.
	Flush() error
	// PollEvent returns the next queued event; ok is false when none is pending.
	PollEvent() (ev Event, ok bool, err error)
	// WaitEvent blocks until an event arrives. It returns ErrClosed once the
	// connection has shut down.
	WaitEvent() (Event, error)

	Close() error
}
