package mlx

import (
	"fmt"
	"slices"
	"strings"

	"github.com/1broseidon/mlx/internal/platform"
)

// WindowID is an opaque window handle. Handles are never reused.
type WindowID uint32

// maxDimension bounds window and image sizes (16-bit protocol fields).
const maxDimension = 65535

type window struct {
	id     WindowID
	win    platform.Window
	width  int
	height int
	title  string

	hooks  [platform.MaxEventKind]func(Event)
	images []ImageID

	// destroyed is set once the server reported DestroyNotify.
	destroyed bool
}

func validSize(width, height int) bool {
	return width >= 1 && width <= maxDimension && height >= 1 && height <= maxDimension
}

// NewWindow creates and maps a window that cannot be resized.
func (m *Mlx) NewWindow(width, height int, title string) (WindowID, error) {
	if m.closed {
		return 0, ErrClosed
	}
	if !validSize(width, height) {
		return 0, &WindowError{Width: width, Height: height, Err: ErrInvalidSize}
	}
	if strings.IndexByte(title, 0) >= 0 {
		return 0, &WindowError{Width: width, Height: height, Err: ErrInvalidTitle}
	}

	pw, err := m.backend.CreateWindow(platform.WindowSpec{
		Width:           width,
		Height:          height,
		Title:           title,
		Background:      m.format.Encode(m.background),
		WaitFirstExpose: m.waitExpose,
	})
	if err != nil {
		return 0, &WindowError{Width: width, Height: height, Err: err}
	}

	m.nextWindow++
	w := &window{
		id:     m.nextWindow,
		win:    pw,
		width:  width,
		height: height,
		title:  title,
	}
	m.windows = append(m.windows, w)
	m.byID[w.id] = w
	m.byXID[pw.ID] = w
	m.logger.Debug("window created", "window", w.id, "xid", pw.ID, "width", width, "height", height)
	return w.id, nil
}

// lookupWindow returns a window that is still alive on the server.
func (m *Mlx) lookupWindow(id WindowID) (*window, error) {
	w, err := m.registeredWindow(id)
	if err != nil {
		return nil, err
	}
	if w.destroyed {
		return nil, fmt.Errorf("window %d: %w", id, ErrWindowDestroyed)
	}
	return w, nil
}

// registeredWindow returns a window even if the server already destroyed it.
func (m *Mlx) registeredWindow(id WindowID) (*window, error) {
	if m.closed {
		return nil, ErrClosed
	}
	w, ok := m.byID[id]
	if !ok {
		return nil, fmt.Errorf("window %d: %w", id, ErrUnknownWindow)
	}
	return w, nil
}

// DestroyWindow destroys the window's images, then the window. Windows the
// server already destroyed only have their GC freed and are dropped from
// the registry.
func (m *Mlx) DestroyWindow(id WindowID) error {
	w, err := m.registeredWindow(id)
	if err != nil {
		return err
	}
	var firstErr error
	for _, imgID := range slices.Clone(w.images) {
		if err := m.DestroyImage(imgID); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if err := m.destroyBackendWindow(w); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("failed to destroy window %d: %w", id, err)
	}
	delete(m.byID, id)
	delete(m.byXID, w.win.ID)
	m.windows = slices.DeleteFunc(m.windows, func(x *window) bool { return x == w })
	return firstErr
}

// destroyBackendWindow destroys w on the server, or only frees its GC when
// the server already destroyed it.
func (m *Mlx) destroyBackendWindow(w *window) error {
	if w.destroyed {
		return m.backend.ReleaseWindow(w.win)
	}
	return m.backend.DestroyWindow(w.win)
}

// Windows returns the live window handles in creation order. Windows the
// server destroyed are left out even before DestroyWindow drops them.
func (m *Mlx) Windows() []WindowID {
	ids := make([]WindowID, 0, len(m.windows))
	for _, w := range m.windows {
		if !w.destroyed {
			ids = append(ids, w.id)
		}
	}
	return ids
}

// WindowSize returns the size the window was created with.
func (m *Mlx) WindowSize(id WindowID) (int, int, error) {
	w, err := m.lookupWindow(id)
	if err != nil {
		return 0, 0, err
	}
	return w.width, w.height, nil
}

// WindowTitle returns the title the window was created with.
func (m *Mlx) WindowTitle(id WindowID) (string, error) {
	w, err := m.lookupWindow(id)
	if err != nil {
		return "", err
	}
	return w.title, nil
}

// WindowHints returns the size hints set on the window.
func (m *Mlx) WindowHints(id WindowID) (SizeHints, error) {
	w, err := m.lookupWindow(id)
	if err != nil {
		return SizeHints{}, err
	}
	return w.win.Hints, nil
}

// Resizable reports whether a window manager honoring the hints may resize
// the window. It is false for every window NewWindow creates.
func (m *Mlx) Resizable(id WindowID) (bool, error) {
	h, err := m.WindowHints(id)
	if err != nil {
		return false, err
	}
	return h.AllowsResize(), nil
}

// ClearWindow repaints the window with its background color.
func (m *Mlx) ClearWindow(id WindowID) error {
	w, err := m.lookupWindow(id)
	if err != nil {
		return err
	}
	if err := m.backend.ClearWindow(w.win.ID); err != nil {
		return fmt.Errorf("failed to clear window %d: %w", id, err)
	}
	return m.afterDraw()
}

// WindowPixelPut draws one pixel directly on the window.
func (m *Mlx) WindowPixelPut(id WindowID, x, y int, color uint32) error {
	w, err := m.lookupWindow(id)
	if err != nil {
		return err
	}
	if err := m.backend.PointPut(w.win, x, y, m.format.Encode(color)); err != nil {
		return err
	}
	return m.afterDraw()
}

// StringPut draws text on the window with the server's default font.
// (x, y) is the left end of the baseline.
func (m *Mlx) StringPut(id WindowID, x, y int, color uint32, text string) error {
	w, err := m.lookupWindow(id)
	if err != nil {
		return err
	}
	if err := m.backend.TextPut(w.win, x, y, m.format.Encode(color), text); err != nil {
		return err
	}
	return m.afterDraw()
}

// MouseGetPos returns the pointer position relative to the window.
func (m *Mlx) MouseGetPos(id WindowID) (int, int, error) {
	w, err := m.lookupWindow(id)
	if err != nil {
		return 0, 0, err
	}
	return m.backend.PointerPosition(w.win.ID)
}

// MouseMove warps the pointer to (x, y) inside the window.
func (m *Mlx) MouseMove(id WindowID, x, y int) error {
	w, err := m.lookupWindow(id)
	if err != nil {
		return err
	}
	return m.backend.WarpPointer(w.win.ID, x, y)
}

// MouseHide hides the pointer while it is over the window.
func (m *Mlx) MouseHide(id WindowID) error {
	return m.setCursorVisible(id, false)
}

// MouseShow restores the pointer over the window.
func (m *Mlx) MouseShow(id WindowID) error {
	return m.setCursorVisible(id, true)
}

func (m *Mlx) setCursorVisible(id WindowID, visible bool) error {
	w, err := m.lookupWindow(id)
	if err != nil {
		return err
	}
	return m.backend.SetCursorVisible(w.win.ID, visible)
}

// KeyAutoRepeat turns keyboard auto-repeat on or off. The setting is global
// to the server, not to a window.
func (m *Mlx) KeyAutoRepeat(on bool) error {
	if m.closed {
		return ErrClosed
	}
	return m.backend.SetKeyAutoRepeat(on)
}
