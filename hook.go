package mlx

import (
	"fmt"

	"github.com/1broseidon/mlx/internal/platform"
)

// Event is a decoded X event delivered to hooks.
type Event = platform.Event

// EventKind is an X core event code.
type EventKind = platform.EventKind

const (
	KeyPress         = platform.KeyPress
	KeyRelease       = platform.KeyRelease
	ButtonPress      = platform.ButtonPress
	ButtonRelease    = platform.ButtonRelease
	MotionNotify     = platform.MotionNotify
	EnterNotify      = platform.EnterNotify
	LeaveNotify      = platform.LeaveNotify
	FocusIn          = platform.FocusIn
	FocusOut         = platform.FocusOut
	Expose           = platform.Expose
	VisibilityNotify = platform.VisibilityNotify
	DestroyNotify    = platform.DestroyNotify
	UnmapNotify      = platform.UnmapNotify
	MapNotify        = platform.MapNotify
	ConfigureNotify  = platform.ConfigureNotify
	ResizeRequest    = platform.ResizeRequest
	ClientMessage    = platform.ClientMessage
)

// Hook registers fn for events of kind on the window, replacing any hook
// already registered for the pair. A nil fn removes it.
//
// DestroyNotify hooks also receive close requests from the window manager;
// those events have DeleteRequest set.
func (m *Mlx) Hook(win WindowID, kind EventKind, fn func(Event)) error {
	w, err := m.lookupWindow(win)
	if err != nil {
		return err
	}
	if !kind.Valid() {
		return fmt.Errorf("%w: %d", ErrInvalidEventKind, int(kind))
	}
	w.hooks[kind] = fn
	return nil
}

// HookWith registers fn with a value passed back on every call.
func HookWith[T any](m *Mlx, win WindowID, kind EventKind, param T, fn func(Event, T)) error {
	if fn == nil {
		return m.Hook(win, kind, nil)
	}
	return m.Hook(win, kind, func(ev Event) { fn(ev, param) })
}

// MouseHook registers fn for button presses.
func (m *Mlx) MouseHook(win WindowID, fn func(Event)) error {
	return m.Hook(win, ButtonPress, fn)
}

// KeyHook registers fn for key releases.
func (m *Mlx) KeyHook(win WindowID, fn func(Event)) error {
	return m.Hook(win, KeyRelease, fn)
}

// ExposeHook registers fn for Expose events.
func (m *Mlx) ExposeHook(win WindowID, fn func(Event)) error {
	return m.Hook(win, Expose, fn)
}

// LoopHook sets the idle hook, called whenever Loop finds no pending event.
// With an idle hook Loop polls instead of blocking. A nil fn removes it.
func (m *Mlx) LoopHook(fn func()) {
	m.idle = fn
}

// LoopHookWith sets the idle hook with a value passed back on every call.
func LoopHookWith[T any](m *Mlx, param T, fn func(T)) {
	if fn == nil {
		m.LoopHook(nil)
		return
	}
	m.LoopHook(func() { fn(param) })
}
