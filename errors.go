package mlx

import (
	"errors"
	"fmt"

	"github.com/1broseidon/mlx/internal/platform"
)

var (
	// ErrDisplayOpen reports that the display server could not be reached.
	ErrDisplayOpen = platform.ErrDisplayOpen
	// ErrNoTrueColor reports that the screen has no usable TrueColor visual.
	ErrNoTrueColor = platform.ErrNoTrueColor

	ErrInvalidSize      = errors.New("size must be between 1 and 65535")
	ErrInvalidTitle     = errors.New("title must not contain NUL bytes")
	ErrInvalidEventKind = errors.New("invalid event kind")
	ErrWindowDestroyed  = errors.New("window has been destroyed")
	ErrUnknownWindow    = errors.New("unknown window")
	ErrUnknownImage     = errors.New("unknown image")
	ErrOutOfBounds      = errors.New("coordinates out of bounds")
	// ErrConnectionClosed ends Loop when the server connection goes away.
	ErrConnectionClosed = errors.New("display connection closed")
	ErrQueueFull        = errors.New("handoff queue is full")
	// ErrClosed is returned by every operation after Close.
	ErrClosed = errors.New("mlx is closed")
)

// InitError is returned by Init. It is always fatal for the caller.
type InitError struct {
	Display string
	Err     error
}

func (e *InitError) Error() string {
	if e.Display == "" {
		return fmt.Sprintf("mlx init: %v", e.Err)
	}
	return fmt.Sprintf("mlx init on display %q: %v", e.Display, e.Err)
}

func (e *InitError) Unwrap() error { return e.Err }

// WindowError is returned when a window cannot be created.
type WindowError struct {
	Width  int
	Height int
	Err    error
}

func (e *WindowError) Error() string {
	return fmt.Sprintf("create %dx%d window: %v", e.Width, e.Height, e.Err)
}

func (e *WindowError) Unwrap() error { return e.Err }

// AllocError is returned when an image buffer cannot be allocated.
type AllocError struct {
	Width  int
	Height int
	Shared bool
	Err    error
}

func (e *AllocError) Error() string {
	kind := "heap"
	if e.Shared {
		kind = "shared"
	}
	return fmt.Sprintf("allocate %dx%d %s image: %v", e.Width, e.Height, kind, e.Err)
}

func (e *AllocError) Unwrap() error { return e.Err }
