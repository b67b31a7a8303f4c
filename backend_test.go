package mlx

import (
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/1broseidon/mlx/internal/platform"
)

// fakeBackend is an in-memory platform.Backend. PutImage records what the
// server would have shown at the blit origin.
type fakeBackend struct {
	screen platform.ScreenInfo
	shm    platform.ShmInfo

	nextXID   platform.WindowID
	created   []platform.WindowSpec
	destroyed []platform.WindowID
	released  []platform.WindowID
	puts      []platform.ImageData
	flushes   int
	closes    int

	events    []platform.Event
	eventErrs []error

	shmErr     error
	buffers    []*fakeBuffer
	createErr  error
	autoRepeat *bool
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		screen: platform.ScreenInfo{
			Width:  1920,
			Height: 1080,
			Depth:  24,
			Format: platform.DefaultPixelFormat,
		},
		shm:     platform.ShmInfo{PixmapFormat: platform.NoShmFormat, Reason: "test"},
		nextXID: 0x200000,
	}
}

type fakeBuffer struct {
	data     []byte
	releases int
}

func (b *fakeBuffer) Bytes() []byte { return b.data }

func (b *fakeBuffer) Release() error {
	b.releases++
	return nil
}

func (f *fakeBackend) Screen() platform.ScreenInfo { return f.screen }
func (f *fakeBackend) Shm() platform.ShmInfo { return f.shm }

func (f *fakeBackend) Monitors() ([]platform.Monitor, error) {
	return []platform.Monitor{{Name: "fake", Width: f.screen.Width, Height: f.screen.Height}}, nil
}

func (f *fakeBackend) CreateWindow(spec platform.WindowSpec) (platform.Window, error) {
	if f.createErr != nil {
		return platform.Window{}, f.createErr
	}
	f.nextXID++
	f.created = append(f.created, spec)
	return platform.Window{
		ID:    f.nextXID,
		GC:    uint32(f.nextXID) + 1,
		Hints: platform.FixedSizeHints(spec.Width, spec.Height),
	}, nil
}

func (f *fakeBackend) DestroyWindow(w platform.Window) error {
	f.destroyed = append(f.destroyed, w.ID)
	return nil
}

func (f *fakeBackend) ReleaseWindow(w platform.Window) error {
	f.released = append(f.released, w.ID)
	return nil
}

func (f *fakeBackend) ClearWindow(platform.WindowID) error { return nil }
func (f *fakeBackend) PointPut(platform.Window, int, int, uint32) error { return nil }
func (f *fakeBackend) TextPut(platform.Window, int, int, uint32, string) error { return nil }
func (f *fakeBackend) PointerPosition(platform.WindowID) (int, int, error) { return 3, 4, nil }
func (f *fakeBackend) WarpPointer(platform.WindowID, int, int) error { return nil }
func (f *fakeBackend) SetCursorVisible(platform.WindowID, bool) error { return nil }

func (f *fakeBackend) SetKeyAutoRepeat(on bool) error {
	f.autoRepeat = &on
	return nil
}

func (f *fakeBackend) NewSharedBuffer(size int) (platform.SharedBuffer, error) {
	if f.shmErr != nil {
		return nil, f.shmErr
	}
	b := &fakeBuffer{data: make([]byte, size)}
	f.buffers = append(f.buffers, b)
	return b, nil
}

func (f *fakeBackend) PutImage(w platform.Window, img platform.ImageData, x, y int) error {
	cp := img
	cp.Data = append([]byte(nil), img.Data...)
	f.puts = append(f.puts, cp)
	return nil
}

func (f *fakeBackend) Flush() error {
	f.flushes++
	return nil
}

func (f *fakeBackend) PollEvent() (platform.Event, bool, error) {
	if len(f.eventErrs) > 0 {
		err := f.eventErrs[0]
		f.eventErrs = f.eventErrs[1:]
		return platform.Event{}, false, err
	}
	if len(f.events) == 0 {
		return platform.Event{}, false, nil
	}
	ev := f.events[0]
	f.events = f.events[1:]
	return ev, true, nil
}

func (f *fakeBackend) WaitEvent() (platform.Event, error) {
	ev, ok, err := f.PollEvent()
	if err != nil {
		return platform.Event{}, err
	}
	if !ok {
		return platform.Event{}, platform.ErrClosed
	}
	return ev, nil
}

func (f *fakeBackend) Close() error {
	f.closes++
	return nil
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestMlx(t *testing.T, opts Options) (*Mlx, *fakeBackend) {
	t.Helper()
	fb := newFakeBackend()
	opts.Logger = quietLogger()
	m := newMlx(fb, opts)
	t.Cleanup(func() { m.Close() })
	return m, fb
}

func newTestWindow(t *testing.T, m *Mlx, w, h int) WindowID {
	t.Helper()
	id, err := m.NewWindow(w, h, "test")
	if err != nil {
		t.Fatalf("NewWindow(%d, %d) returned error: %v", w, h, err)
	}
	return id
}

// xidOf returns the server id the fake assigned to a window.
func xidOf(t *testing.T, m *Mlx, id WindowID) platform.WindowID {
	t.Helper()
	w, ok := m.byID[id]
	if !ok {
		t.Fatalf("window %d not registered", id)
	}
	return w.win.ID
}

var errBoom = errors.New("boom")
