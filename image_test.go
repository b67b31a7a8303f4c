package mlx

import (
	"errors"
	"testing"

	"github.com/1broseidon/mlx/internal/platform"
)

func TestPutPixelRoundTrip(t *testing.T) {
	m, _ := newTestMlx(t, Options{})
	id, err := m.NewImage(16, 8)
	if err != nil {
		t.Fatalf("NewImage returned error: %v", err)
	}
	img, err := m.Image(id)
	if err != nil {
		t.Fatalf("Image returned error: %v", err)
	}
	if img.Stride() != 16*BytesPerPixel || len(img.Data()) < img.Stride()*img.Height() {
		t.Fatalf("stride = %d, len = %d, want 64 and >= 512", img.Stride(), len(img.Data()))
	}

	points := []struct {
		x, y  int
		color uint32
	}{
		{0, 0, 0xFF0000},
		{15, 7, 0x00FF00},
		{3, 5, 0x123456},
	}
	for _, p := range points {
		if err := m.PutPixel(id, p.x, p.y, p.color); err != nil {
			t.Fatalf("PutPixel returned error: %v", err)
		}
	}
	for _, p := range points {
		got, err := m.Pixel(id, p.x, p.y)
		if err != nil || got != p.color {
			t.Fatalf("Pixel(%d, %d) = %#06x, %v, want %#06x", p.x, p.y, got, err, p.color)
		}
	}
}

func TestPutPixelIgnoresTopByte(t *testing.T) {
	m, _ := newTestMlx(t, Options{})
	id, _ := m.NewImage(2, 2)
	m.PutPixel(id, 1, 1, 0xAB00FF00)
	if got, _ := m.Pixel(id, 1, 1); got != 0x00FF00 {
		t.Fatalf("Pixel = %#x, want 0x00ff00", got)
	}
}

func TestPutPixelOutOfBoundsIsNoop(t *testing.T) {
	m, _ := newTestMlx(t, Options{})
	id, _ := m.NewImage(4, 4)
	img, _ := m.Image(id)
	before := append([]byte(nil), img.Data()...)

	for _, p := range [][2]int{{-1, 0}, {0, -1}, {4, 0}, {0, 4}, {100, 100}} {
		if err := m.PutPixel(id, p[0], p[1], 0xFFFFFF); err != nil {
			t.Fatalf("PutPixel(%d, %d) returned error: %v", p[0], p[1], err)
		}
	}
	if string(before) != string(img.Data()) {
		t.Fatal("out-of-bounds PutPixel changed the buffer")
	}
	if _, err := m.Pixel(id, 4, 0); !errors.Is(err, ErrOutOfBounds) {
		t.Fatalf("Pixel(4, 0) error = %v, want ErrOutOfBounds", err)
	}
}

func TestClearImageUsesBackground(t *testing.T) {
	m, _ := newTestMlx(t, Options{Background: 0x336699})
	id, _ := m.NewImage(3, 3)
	if got, _ := m.Pixel(id, 2, 2); got != 0x336699 {
		t.Fatalf("new image pixel = %#06x, want background 0x336699", got)
	}
	m.PutPixel(id, 1, 1, 0xFFFFFF)
	if err := m.ClearImage(id); err != nil {
		t.Fatalf("ClearImage returned error: %v", err)
	}
	for y := 0; y < 3; y++ {
		for x := 0; x < 3; x++ {
			if got, _ := m.Pixel(id, x, y); got != 0x336699 {
				t.Fatalf("Pixel(%d, %d) = %#06x after clear, want 0x336699", x, y, got)
			}
		}
	}
}

func TestBigEndianLayout(t *testing.T) {
	fb := newFakeBackend()
	fb.screen.Format.BigEndian = true
	m := newMlx(fb, Options{Logger: quietLogger()})
	defer m.Close()

	id, _ := m.NewImage(1, 1)
	m.PutPixel(id, 0, 0, 0x112233)
	img, _ := m.Image(id)
	if got := img.Data()[:4]; got[0] != 0x00 || got[1] != 0x11 || got[3] != 0x33 {
		t.Fatalf("big-endian pixel bytes = %v, want [0 17 34 51]", got)
	}
}

func TestAttachImageBlitRoundTrip(t *testing.T) {
	m, fb := newTestMlx(t, Options{})
	win, err := m.NewWindow(100, 100, "test")
	if err != nil {
		t.Fatalf("NewWindow returned error: %v", err)
	}
	id, err := m.AttachImage(win)
	if err != nil {
		t.Fatalf("AttachImage returned error: %v", err)
	}
	img, _ := m.Image(id)
	if img.Width() != 100 || img.Height() != 100 || img.Owner() != win {
		t.Fatalf("attached image = %dx%d owner %d, want 100x100 owner %d", img.Width(), img.Height(), img.Owner(), win)
	}

	m.PutPixel(id, 0, 0, 0x00FF0000)
	if err := m.Blit(id, win, 0, 0); err != nil {
		t.Fatalf("Blit returned error: %v", err)
	}
	if got, _ := m.Pixel(id, 0, 0); got != 0x00FF0000 {
		t.Fatalf("Pixel after blit = %#08x, want 0x00ff0000", got)
	}
	if len(fb.puts) != 1 {
		t.Fatalf("backend received %d images, want 1", len(fb.puts))
	}
	put := fb.puts[0]
	if put.Width != 100 || put.Stride != 400 {
		t.Fatalf("put image = %dx%d stride %d, want 100 wide, stride 400", put.Width, put.Height, put.Stride)
	}
	shown := platform.DefaultPixelFormat.Decode(platform.DefaultPixelFormat.ByteOrder().Uint32(put.Data[:4]))
	if shown != 0xFF0000 {
		t.Fatalf("blitted pixel = %#06x, want 0xff0000", shown)
	}
	if fb.flushes != 1 {
		t.Fatalf("flushes = %d, want 1", fb.flushes)
	}
}

func TestSharedImageFallsBackToHeap(t *testing.T) {
	m, fb := newTestMlx(t, Options{})
	fb.shm.Enabled = true
	fb.shmErr = errBoom

	id, err := m.NewImage(4, 4)
	if err != nil {
		t.Fatalf("NewImage returned error: %v", err)
	}
	img, _ := m.Image(id)
	if img.Shared() {
		t.Fatal("image is shared after the shared allocation failed")
	}
	m.PutPixel(id, 1, 2, 0xABCDEF)
	if got, _ := m.Pixel(id, 1, 2); got != 0xABCDEF {
		t.Fatalf("Pixel = %#06x, want 0xabcdef", got)
	}
}

func TestSharedImageReleasedOnce(t *testing.T) {
	m, fb := newTestMlx(t, Options{})
	fb.shm.Enabled = true

	a, _ := m.NewImage(4, 4)
	m.NewImage(4, 4)
	img, _ := m.Image(a)
	if !img.Shared() {
		t.Fatal("image is not shared with shared memory enabled")
	}
	if err := m.DestroyImage(a); err != nil {
		t.Fatalf("DestroyImage returned error: %v", err)
	}
	if err := m.DestroyImage(a); !errors.Is(err, ErrUnknownImage) {
		t.Fatalf("second DestroyImage error = %v, want ErrUnknownImage", err)
	}
	if err := m.Close(); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}
	if err := m.Close(); err != nil {
		t.Fatalf("second Close returned error: %v", err)
	}
	for i, b := range fb.buffers {
		if b.releases != 1 {
			t.Fatalf("buffer %d released %d times, want 1", i, b.releases)
		}
	}
	if fb.closes != 1 {
		t.Fatalf("backend closed %d times, want 1", fb.closes)
	}
}

func TestNewImageInvalidSize(t *testing.T) {
	m, _ := newTestMlx(t, Options{})
	_, err := m.NewImage(0, 10)
	var aerr *AllocError
	if !errors.As(err, &aerr) || !errors.Is(err, ErrInvalidSize) {
		t.Fatalf("NewImage(0, 10) error = %v, want *AllocError wrapping ErrInvalidSize", err)
	}
}

func TestNewImageHeapFailure(t *testing.T) {
	m, _ := newTestMlx(t, Options{})
	orig := allocHeap
	allocHeap = func(int) ([]byte, error) { return nil, errBoom }
	defer func() { allocHeap = orig }()

	_, err := m.NewImage(10, 10)
	var aerr *AllocError
	if !errors.As(err, &aerr) || aerr.Shared || aerr.Width != 10 {
		t.Fatalf("NewImage error = %v, want heap *AllocError for 10x10", err)
	}
}

func TestTransferImage(t *testing.T) {
	m, _ := newTestMlx(t, Options{})
	a := newTestWindow(t, m, 4, 4)
	b := newTestWindow(t, m, 4, 4)
	id, _ := m.AttachImage(a)

	if err := m.TransferImage(id, b); err != nil {
		t.Fatalf("TransferImage returned error: %v", err)
	}
	if err := m.DestroyWindow(a); err != nil {
		t.Fatalf("DestroyWindow returned error: %v", err)
	}
	img, err := m.Image(id)
	if err != nil {
		t.Fatalf("transferred image destroyed with its old owner: %v", err)
	}
	if img.Owner() != b {
		t.Fatalf("Owner() = %d, want %d", img.Owner(), b)
	}
	if err := m.DestroyWindow(b); err != nil {
		t.Fatalf("DestroyWindow returned error: %v", err)
	}
	if _, err := m.Image(id); !errors.Is(err, ErrUnknownImage) {
		t.Fatalf("Image after owner destroyed error = %v, want ErrUnknownImage", err)
	}
}

func TestImageHandleAfterDestroyWindow(t *testing.T) {
	m, _ := newTestMlx(t, Options{})
	win := newTestWindow(t, m, 4, 3)
	id, err := m.AttachImage(win)
	if err != nil {
		t.Fatalf("AttachImage returned error: %v", err)
	}
	img, err := m.Image(id)
	if err != nil {
		t.Fatalf("Image returned error: %v", err)
	}
	if err := m.DestroyWindow(win); err != nil {
		t.Fatalf("DestroyWindow returned error: %v", err)
	}

	if !img.Released() {
		t.Fatalf("Released() = false after owner window destroyed")
	}
	img.PutPixel(1, 1, 0xFF0000)
	img.Clear()
	if _, err := img.Pixel(1, 1); !errors.Is(err, ErrUnknownImage) {
		t.Fatalf("Pixel after release error = %v, want ErrUnknownImage", err)
	}
	if img.Data() != nil {
		t.Fatalf("Data() = %v, want nil after release", img.Data())
	}
}

func TestImageHandleAfterClose(t *testing.T) {
	m, _ := newTestMlx(t, Options{})
	id, _ := m.NewImage(2, 2)
	img, _ := m.Image(id)
	if err := m.Close(); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}
	img.PutPixel(0, 0, 0x00FF00)
	if _, err := img.Pixel(0, 0); !errors.Is(err, ErrUnknownImage) {
		t.Fatalf("Pixel after Close error = %v, want ErrUnknownImage", err)
	}
}

func TestNewImageTooLarge(t *testing.T) {
	m, fb := newTestMlx(t, Options{})
	fb.shm = platform.ShmInfo{Enabled: true}
	called := false
	orig := allocHeap
	allocHeap = func(size int) ([]byte, error) {
		called = true
		return orig(size)
	}
	defer func() { allocHeap = orig }()

	_, err := m.NewImage(maxDimension, maxDimension)
	var aerr *AllocError
	if !errors.As(err, &aerr) || aerr.Width != maxDimension || !aerr.Shared {
		t.Fatalf("NewImage(%d, %d) error = %v, want shared *AllocError", maxDimension, maxDimension, err)
	}
	if called || len(fb.buffers) != 0 {
		t.Fatalf("allocation attempted for oversized image (heap=%v, shared buffers=%d)", called, len(fb.buffers))
	}
}
