package x11

import (
	"fmt"

	"github.com/1broseidon/mlx/internal/platform"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/icccm"
)

// allEventsMask selects every core event class. ResizeRedirect is part of it,
// so resize attempts by other clients arrive as ResizeRequest events instead
// of changing the window.
const allEventsMask = 0xFFFFFF

// CreateWindow creates, names and maps a fixed-size top-level window.
func (c *Connection) CreateWindow(spec platform.WindowSpec) (platform.Window, error) {
	conn := c.XUtil.Conn()

	wid, err := xproto.NewWindowId(conn)
	if err != nil {
		return platform.Window{}, fmt.Errorf("failed to allocate window id: %w", err)
	}

	// Value list order follows the bit positions of the mask (low to high):
	// BackPixel, BorderPixel, EventMask, Colormap. Border pixel and colormap
	// are required when the visual differs from the root's.
	err = xproto.CreateWindowChecked(
		conn,
		c.depth,
		wid,
		c.Root,
		0, 0,
		uint16(spec.Width), uint16(spec.Height),
		0,
		xproto.WindowClassInputOutput,
		c.visual,
		xproto.CwBackPixel|xproto.CwBorderPixel|xproto.CwEventMask|xproto.CwColormap,
		[]uint32{spec.Background, 0xFFFFFFFF, allEventsMask, uint32(c.cmap)},
	).Check()
	if err != nil {
		return platform.Window{}, fmt.Errorf("failed to create window: %w", err)
	}

	win := platform.Window{
		ID:    platform.WindowID(wid),
		Hints: platform.FixedSizeHints(spec.Width, spec.Height),
	}

	// Hints must be in place before the window is mapped.
	if err := icccm.WmNormalHintsSet(c.XUtil, wid, normalHints(win.Hints)); err != nil {
		xproto.DestroyWindow(conn, wid)
		return platform.Window{}, fmt.Errorf("failed to set size hints: %w", err)
	}
	if err := icccm.WmNameSet(c.XUtil, wid, spec.Title); err != nil {
		xproto.DestroyWindow(conn, wid)
		return platform.Window{}, fmt.Errorf("failed to set window title: %w", err)
	}
	if err := ewmh.WmNameSet(c.XUtil, wid, spec.Title); err != nil {
		c.logger.Debug("failed to set _NET_WM_NAME", "window", wid, "error", err)
	}
	if err := icccm.WmProtocolsSet(c.XUtil, wid, []string{"WM_DELETE_WINDOW"}); err != nil {
		xproto.DestroyWindow(conn, wid)
		return platform.Window{}, fmt.Errorf("failed to set WM_PROTOCOLS: %w", err)
	}

	gc, err := c.createGC(xproto.Drawable(wid))
	if err != nil {
		xproto.DestroyWindow(conn, wid)
		return platform.Window{}, err
	}
	win.GC = uint32(gc)

	xproto.MapWindow(conn, wid)
	xproto.ConfigureWindow(conn, wid, xproto.ConfigWindowStackMode, []uint32{xproto.StackModeAbove})

	if spec.WaitFirstExpose {
		if err := c.waitFirstExpose(wid); err != nil {
			c.DestroyWindow(win)
			return platform.Window{}, err
		}
	}
	return win, nil
}

func (c *Connection) createGC(d xproto.Drawable) (xproto.Gcontext, error) {
	conn := c.XUtil.Conn()
	gc, err := xproto.NewGcontextId(conn)
	if err != nil {
		return 0, fmt.Errorf("failed to allocate gc id: %w", err)
	}
	err = xproto.CreateGCChecked(
		conn,
		gc,
		d,
		xproto.GcFunction|xproto.GcPlaneMask|xproto.GcForeground|xproto.GcGraphicsExposures,
		[]uint32{
			xproto.GxCopy, // function
			0xFFFFFFFF,    // plane_mask
			0xFFFFFFFF,    // foreground
			0,             // graphics_exposures=false
		},
	).Check()
	if err != nil {
		return 0, fmt.Errorf("failed to create gc: %w", err)
	}
	return gc, nil
}

// waitFirstExpose blocks until wid is exposed. Events read meanwhile,
// including the Expose itself, are queued for the event loop.
func (c *Connection) waitFirstExpose(wid xproto.Window) error {
	conn := c.XUtil.Conn()
	for {
		ev, xerr := conn.WaitForEvent()
		if ev == nil && xerr == nil {
			return platform.ErrClosed
		}
		if xerr != nil {
			c.logger.Warn("X error while waiting for expose", "error", xerr)
			continue
		}
		c.pending = append(c.pending, ev)
		if e, ok := ev.(xproto.ExposeEvent); ok && e.Window == wid {
			return nil
		}
	}
}

// DestroyWindow frees the window's GC and destroys it on the server.
func (c *Connection) DestroyWindow(w platform.Window) error {
	if c.closed {
		return nil
	}
	c.ReleaseWindow(w)
	xproto.DestroyWindow(c.XUtil.Conn(), xproto.Window(w.ID))
	return nil
}

// ReleaseWindow frees the GC of a window the server already destroyed. The
// GC outlives its drawable, so it must be freed separately.
func (c *Connection) ReleaseWindow(w platform.Window) error {
	if c.closed || w.GC == 0 {
		return nil
	}
	xproto.FreeGC(c.XUtil.Conn(), xproto.Gcontext(w.GC))
	return nil
}

// ClearWindow repaints the whole window with its background.
func (c *Connection) ClearWindow(id platform.WindowID) error {
	return xproto.ClearAreaChecked(c.XUtil.Conn(), false, xproto.Window(id), 0, 0, 0, 0).Check()
}

// PointPut draws a single pixel directly on the window.
func (c *Connection) PointPut(w platform.Window, x, y int, pixel uint32) error {
	conn := c.XUtil.Conn()
	gc := xproto.Gcontext(w.GC)
	xproto.ChangeGC(conn, gc, xproto.GcForeground, []uint32{pixel})
	xproto.PolyPoint(conn, xproto.CoordModeOrigin, xproto.Drawable(w.ID), gc,
		[]xproto.Point{{X: int16(x), Y: int16(y)}})
	return nil
}

// TextPut draws text with the GC's font; (x, y) is the baseline origin.
func (c *Connection) TextPut(w platform.Window, x, y int, pixel uint32, text string) error {
	if text == "" {
		return nil
	}
	conn := c.XUtil.Conn()
	gc := xproto.Gcontext(w.GC)
	xproto.ChangeGC(conn, gc, xproto.GcForeground, []uint32{pixel})
	xproto.PolyText8(conn, xproto.Drawable(w.ID), gc, int16(x), int16(y), textItems(text))
	return nil
}

// maxTextItem is the longest string a single TEXTITEM8 can carry.
const maxTextItem = 254

// textItems encodes s as PolyText8 items (length, delta, bytes), splitting
// long strings into consecutive items.
func textItems(s string) []byte {
	items := make([]byte, 0, len(s)+2*(len(s)/maxTextItem+1))
	for len(s) > 0 {
		n := len(s)
		if n > maxTextItem {
			n = maxTextItem
		}
		items = append(items, byte(n), 0)
		items = append(items, s[:n]...)
		s = s[n:]
	}
	return items
}

func normalHints(h platform.SizeHints) *icccm.NormalHints {
	return &icccm.NormalHints{
		Flags:     uint(h.Flags),
		X:         h.X,
		Y:         h.Y,
		Width:     uint(h.Width),
		Height:    uint(h.Height),
		MinWidth:  uint(h.MinWidth),
		MinHeight: uint(h.MinHeight),
		MaxWidth:  uint(h.MaxWidth),
		MaxHeight: uint(h.MaxHeight),
	}
}
