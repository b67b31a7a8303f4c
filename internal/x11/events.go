package x11

import (
	"fmt"

	"github.com/1broseidon/mlx/internal/platform"
	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/keybind"
)

// PollEvent returns the next queued event without blocking.
func (c *Connection) PollEvent() (platform.Event, bool, error) {
	for {
		raw, err := c.next(false)
		if err != nil || raw == nil {
			return platform.Event{}, false, err
		}
		if ev, ok := c.decode(raw); ok {
			return ev, true, nil
		}
	}
}

// WaitEvent blocks until a decodable event arrives.
func (c *Connection) WaitEvent() (platform.Event, error) {
	for {
		raw, err := c.next(true)
		if err != nil {
			return platform.Event{}, err
		}
		if ev, ok := c.decode(raw); ok {
			return ev, nil
		}
	}
}

// next returns queued events first, then reads from the connection.
func (c *Connection) next(block bool) (xgb.Event, error) {
	if len(c.pending) > 0 {
		ev := c.pending[0]
		c.pending = c.pending[1:]
		return ev, nil
	}
	if c.closed {
		return nil, platform.ErrClosed
	}

	conn := c.XUtil.Conn()
	var (
		ev   xgb.Event
		xerr xgb.Error
	)
	if block {
		ev, xerr = conn.WaitForEvent()
		if ev == nil && xerr == nil {
			return nil, platform.ErrClosed
		}
	} else {
		ev, xerr = conn.PollForEvent()
	}
	if xerr != nil {
		return nil, fmt.Errorf("X protocol error: %w", xerr)
	}
	return ev, nil
}

func (c *Connection) decode(raw xgb.Event) (platform.Event, bool) {
	keysym := func(code xproto.Keycode) uint32 {
		return uint32(keybind.KeysymGet(c.XUtil, code, 0))
	}
	return decodeEvent(raw, keysym, c.isDeleteRequest)
}

// decodeEvent converts the core events the library dispatches. Other events
// report ok=false.
func decodeEvent(raw xgb.Event, keysym func(xproto.Keycode) uint32, isDelete func(xproto.ClientMessageEvent) bool) (platform.Event, bool) {
	switch e := raw.(type) {
	case xproto.KeyPressEvent:
		return keyEvent(platform.KeyPress, e, keysym), true
	case xproto.KeyReleaseEvent:
		return keyEvent(platform.KeyRelease, xproto.KeyPressEvent(e), keysym), true
	case xproto.ButtonPressEvent:
		return buttonEvent(platform.ButtonPress, e), true
	case xproto.ButtonReleaseEvent:
		return buttonEvent(platform.ButtonRelease, xproto.ButtonPressEvent(e)), true
	case xproto.MotionNotifyEvent:
		return platform.Event{
			Kind:   platform.MotionNotify,
			Window: platform.WindowID(e.Event),
			State:  e.State,
			X:      int(e.EventX),
			Y:      int(e.EventY),
		}, true
	case xproto.EnterNotifyEvent:
		return crossingEvent(platform.EnterNotify, e), true
	case xproto.LeaveNotifyEvent:
		return crossingEvent(platform.LeaveNotify, xproto.EnterNotifyEvent(e)), true
	case xproto.FocusInEvent:
		return platform.Event{Kind: platform.FocusIn, Window: platform.WindowID(e.Event)}, true
	case xproto.FocusOutEvent:
		return platform.Event{Kind: platform.FocusOut, Window: platform.WindowID(e.Event)}, true
	case xproto.ExposeEvent:
		return platform.Event{
			Kind:   platform.Expose,
			Window: platform.WindowID(e.Window),
			X:      int(e.X),
			Y:      int(e.Y),
			Width:  int(e.Width),
			Height: int(e.Height),
			Count:  int(e.Count),
		}, true
	case xproto.VisibilityNotifyEvent:
		return platform.Event{Kind: platform.VisibilityNotify, Window: platform.WindowID(e.Window), State: uint16(e.State)}, true
	case xproto.DestroyNotifyEvent:
		return platform.Event{Kind: platform.DestroyNotify, Window: platform.WindowID(e.Window)}, true
	case xproto.UnmapNotifyEvent:
		return platform.Event{Kind: platform.UnmapNotify, Window: platform.WindowID(e.Window)}, true
	case xproto.MapNotifyEvent:
		return platform.Event{Kind: platform.MapNotify, Window: platform.WindowID(e.Window)}, true
	case xproto.ConfigureNotifyEvent:
		return platform.Event{
			Kind:   platform.ConfigureNotify,
			Window: platform.WindowID(e.Window),
			X:      int(e.X),
			Y:      int(e.Y),
			Width:  int(e.Width),
			Height: int(e.Height),
		}, true
	case xproto.ResizeRequestEvent:
		return platform.Event{
			Kind:   platform.ResizeRequest,
			Window: platform.WindowID(e.Window),
			Width:  int(e.Width),
			Height: int(e.Height),
		}, true
	case xproto.ClientMessageEvent:
		return platform.Event{
			Kind:          platform.ClientMessage,
			Window:        platform.WindowID(e.Window),
			DeleteRequest: isDelete(e),
		}, true
	}
	return platform.Event{}, false
}

func keyEvent(kind platform.EventKind, e xproto.KeyPressEvent, keysym func(xproto.Keycode) uint32) platform.Event {
	return platform.Event{
		Kind:    kind,
		Window:  platform.WindowID(e.Event),
		Keycode: uint8(e.Detail),
		Keysym:  keysym(e.Detail),
		State:   e.State,
		X:       int(e.EventX),
		Y:       int(e.EventY),
	}
}

func buttonEvent(kind platform.EventKind, e xproto.ButtonPressEvent) platform.Event {
	return platform.Event{
		Kind:   kind,
		Window: platform.WindowID(e.Event),
		Button: uint8(e.Detail),
		State:  e.State,
		X:      int(e.EventX),
		Y:      int(e.EventY),
	}
}

func crossingEvent(kind platform.EventKind, e xproto.EnterNotifyEvent) platform.Event {
	return platform.Event{
		Kind:   kind,
		Window: platform.WindowID(e.Event),
		State:  e.State,
		X:      int(e.EventX),
		Y:      int(e.EventY),
	}
}
