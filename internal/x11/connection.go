package x11

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/1broseidon/mlx/internal/displayenv"
	"github.com/1broseidon/mlx/internal/platform"
	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/keybind"
	"github.com/BurntSushi/xgbutil/xprop"
)

// Options configures a display connection.
type Options struct {
	// Display is the X display target; empty uses $DISPLAY.
	Display string
	// AllowSharedMemory enables MIT-SHM negotiation.
	AllowSharedMemory bool
	Logger            *slog.Logger
}

// Connection manages the X11 connection and the resources shared by every
// window: visual, colormap, WM atoms and the negotiated transport.
type Connection struct {
	XUtil *xgbutil.XUtil
	Root  xproto.Window

	screen platform.ScreenInfo
	shm    platform.ShmInfo
	depth  byte
	visual xproto.Visualid
	cmap   xproto.Colormap

	wmProtocols    xproto.Atom
	wmDeleteWindow xproto.Atom
	hiddenCursor   xproto.Cursor

	// pending holds events read while waiting for a window's first Expose.
	pending []xgb.Event
	logger  *slog.Logger
	closed  bool
}

var _ platform.Backend = (*Connection)(nil)

// NewConnection establishes a connection to the X11 server, selects a
// TrueColor visual and negotiates shared memory.
func NewConnection(opts Options) (*Connection, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	xu, err := xgbutil.NewConnDisplay(opts.Display)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", platform.ErrDisplayOpen, err)
	}

	// Keysym lookup for key hooks.
	keybind.Initialize(xu)

	c := &Connection{
		XUtil:  xu,
		Root:   xu.RootWin(),
		logger: logger,
	}
	if err := c.selectVisual(); err != nil {
		xu.Conn().Close()
		return nil, err
	}
	if err := c.internAtoms(); err != nil {
		c.Close()
		return nil, err
	}

	target := opts.Display
	if target == "" {
		target = os.Getenv("DISPLAY")
	}
	c.shm = NegotiateShm(c.queryShm(), target, displayenv.Hostname(), opts.AllowSharedMemory)
	if !c.shm.Enabled {
		logger.Debug("shared memory disabled", "reason", c.shm.Reason)
	}
	return c, nil
}

func (c *Connection) internAtoms() error {
	var err error
	if c.wmProtocols, err = xprop.Atm(c.XUtil, "WM_PROTOCOLS"); err != nil {
		return fmt.Errorf("failed to intern WM_PROTOCOLS: %w", err)
	}
	if c.wmDeleteWindow, err = xprop.Atm(c.XUtil, "WM_DELETE_WINDOW"); err != nil {
		return fmt.Errorf("failed to intern WM_DELETE_WINDOW: %w", err)
	}
	return nil
}

// Screen returns the default screen and selected visual.
func (c *Connection) Screen() platform.ScreenInfo {
	return c.screen
}

// Shm returns the cached shared-memory negotiation result.
func (c *Connection) Shm() platform.ShmInfo {
	return c.shm
}

// Flush blocks until the server has handled every request sent so far.
func (c *Connection) Flush() error {
	if _, err := xproto.GetInputFocus(c.XUtil.Conn()).Reply(); err != nil {
		return fmt.Errorf("failed to sync with X server: %w", err)
	}
	return nil
}

// Close frees connection-wide resources and disconnects from the X11 server.
func (c *Connection) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true

	conn := c.XUtil.Conn()
	if c.hiddenCursor != 0 {
		xproto.FreeCursor(conn, c.hiddenCursor)
	}
	if c.screen.PrivateColormap {
		xproto.FreeColormap(conn, c.cmap)
	}
	conn.Close()
	return nil
}

// isDeleteRequest reports whether ev is a WM_DELETE_WINDOW protocol message.
func (c *Connection) isDeleteRequest(ev xproto.ClientMessageEvent) bool {
	return isDeleteMessage(ev, c.wmProtocols, c.wmDeleteWindow)
}

func isDeleteMessage(ev xproto.ClientMessageEvent, protocols, deleteWindow xproto.Atom) bool {
	if ev.Type != protocols || ev.Format != 32 || len(ev.Data.Data32) == 0 {
		return false
	}
	return xproto.Atom(ev.Data.Data32[0]) == deleteWindow
}
