package x11

import (
	"fmt"

	"github.com/1broseidon/mlx/internal/platform"
	"github.com/BurntSushi/xgb/xproto"
)

// PointerPosition returns the pointer position relative to the window.
func (c *Connection) PointerPosition(id platform.WindowID) (int, int, error) {
	reply, err := xproto.QueryPointer(c.XUtil.Conn(), xproto.Window(id)).Reply()
	if err != nil {
		return 0, 0, fmt.Errorf("failed to query pointer: %w", err)
	}
	return int(reply.WinX), int(reply.WinY), nil
}

// WarpPointer moves the pointer to (x, y) inside the window.
func (c *Connection) WarpPointer(id platform.WindowID, x, y int) error {
	return xproto.WarpPointerChecked(c.XUtil.Conn(), 0, xproto.Window(id), 0, 0, 0, 0, int16(x), int16(y)).Check()
}

// SetCursorVisible hides the pointer over the window or restores the
// inherited cursor.
func (c *Connection) SetCursorVisible(id platform.WindowID, visible bool) error {
	cursor := uint32(0) // None: use the parent's cursor
	if !visible {
		hidden, err := c.invisibleCursor()
		if err != nil {
			return err
		}
		cursor = uint32(hidden)
	}
	return xproto.ChangeWindowAttributesChecked(c.XUtil.Conn(), xproto.Window(id), xproto.CwCursor, []uint32{cursor}).Check()
}

// invisibleCursor lazily builds a cursor from an empty 1x1 bitmap.
func (c *Connection) invisibleCursor() (xproto.Cursor, error) {
	if c.hiddenCursor != 0 {
		return c.hiddenCursor, nil
	}
	conn := c.XUtil.Conn()

	pix, err := xproto.NewPixmapId(conn)
	if err != nil {
		return 0, fmt.Errorf("failed to allocate pixmap id: %w", err)
	}
	if err := xproto.CreatePixmapChecked(conn, 1, pix, xproto.Drawable(c.Root), 1, 1).Check(); err != nil {
		return 0, fmt.Errorf("failed to create cursor bitmap: %w", err)
	}
	defer xproto.FreePixmap(conn, pix)

	// Pixmap contents are undefined until drawn; clear it to zero.
	gc, err := xproto.NewGcontextId(conn)
	if err != nil {
		return 0, fmt.Errorf("failed to allocate gc id: %w", err)
	}
	if err := xproto.CreateGCChecked(conn, gc, xproto.Drawable(pix), xproto.GcForeground, []uint32{0}).Check(); err != nil {
		return 0, fmt.Errorf("failed to create cursor gc: %w", err)
	}
	xproto.PolyFillRectangle(conn, xproto.Drawable(pix), gc, []xproto.Rectangle{{Width: 1, Height: 1}})
	xproto.FreeGC(conn, gc)

	cur, err := xproto.NewCursorId(conn)
	if err != nil {
		return 0, fmt.Errorf("failed to allocate cursor id: %w", err)
	}
	if err := xproto.CreateCursorChecked(conn, cur, pix, pix, 0, 0, 0, 0, 0, 0, 0, 0).Check(); err != nil {
		return 0, fmt.Errorf("failed to create invisible cursor: %w", err)
	}
	c.hiddenCursor = cur
	return cur, nil
}

// SetKeyAutoRepeat turns global keyboard auto-repeat on or off.
func (c *Connection) SetKeyAutoRepeat(on bool) error {
	mode := uint32(xproto.AutoRepeatModeOff)
	if on {
		mode = xproto.AutoRepeatModeOn
	}
	return xproto.ChangeKeyboardControlChecked(c.XUtil.Conn(), xproto.KbAutoRepeatMode, []uint32{mode}).Check()
}
