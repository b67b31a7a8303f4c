package mlx

import (
	"fmt"
	"slices"

	"github.com/1broseidon/mlx/internal/platform"
)

// ImageID is an opaque image handle. Handles are never reused.
type ImageID uint32

// BytesPerPixel is the storage size of one pixel.
const BytesPerPixel = platform.BytesPerPixel

// maxImageBytes caps heap allocations so an oversized request fails with
// an AllocError instead of exhausting memory.
const maxImageBytes = 1 << 30

var allocHeap = func(size int) ([]byte, error) {
	if size > maxImageBytes {
		return nil, fmt.Errorf("%d bytes exceeds the %d byte limit", size, maxImageBytes)
	}
	return make([]byte, size), nil
}

// Image is an off-screen pixel surface. Pixels are stored in the server's
// layout, four bytes each, rows stride bytes apart.
type Image struct {
	id     ImageID
	width  int
	height int
	stride int
	data   []byte
	shared platform.SharedBuffer

	format     platform.PixelFormat
	background uint32
	owner      WindowID

	// released is set once the image is destroyed. Pixel access is then a
	// no-op or ErrUnknownImage.
	released bool
}

func (img *Image) ID() ImageID { return img.id }

func (img *Image) Width() int { return img.width }

func (img *Image) Height() int { return img.height }

// Stride is the distance between rows in bytes.
func (img *Image) Stride() int { return img.stride }

func (img *Image) BytesPerPixel() int { return BytesPerPixel }

// Shared reports whether the pixels live in memory shared with the server.
func (img *Image) Shared() bool { return img.shared != nil }

// Owner returns the window the image belongs to, or 0.
func (img *Image) Owner() WindowID { return img.owner }

// Data returns the raw pixel buffer, or nil once the image is destroyed.
// It must not be retained after the image is destroyed.
func (img *Image) Data() []byte { return img.data }

// Released reports whether the image has been destroyed.
func (img *Image) Released() bool { return img.released }

func (img *Image) inBounds(x, y int) bool {
	return x >= 0 && x < img.width && y >= 0 && y < img.height
}

// PutPixel stores a 0x00RRGGBB color at (x, y). Coordinates outside the
// image are ignored, as is every call after the image is destroyed. The top
// byte of color is ignored.
func (img *Image) PutPixel(x, y int, color uint32) {
	if img.released || !img.inBounds(x, y) {
		return
	}
	off := y*img.stride + x*BytesPerPixel
	img.format.ByteOrder().PutUint32(img.data[off:off+BytesPerPixel], img.format.Encode(color))
}

// Pixel returns the 0x00RRGGBB color at (x, y). It returns ErrUnknownImage
// once the image is destroyed.
func (img *Image) Pixel(x, y int) (uint32, error) {
	if img.released {
		return 0, fmt.Errorf("image %d: %w", img.id, ErrUnknownImage)
	}
	if !img.inBounds(x, y) {
		return 0, fmt.Errorf("pixel (%d,%d) of %dx%d image: %w", x, y, img.width, img.height, ErrOutOfBounds)
	}
	off := y*img.stride + x*BytesPerPixel
	return img.format.Decode(img.format.ByteOrder().Uint32(img.data[off : off+BytesPerPixel])), nil
}

// Clear sets every pixel to the background color. It does nothing once the
// image is destroyed.
func (img *Image) Clear() {
	if img.released {
		return
	}
	if img.background == 0 {
		clear(img.data)
		return
	}
	var px [BytesPerPixel]byte
	img.format.ByteOrder().PutUint32(px[:], img.format.Encode(img.background))
	for off := 0; off+BytesPerPixel <= len(img.data); off += BytesPerPixel {
		copy(img.data[off:], px[:])
	}
}

func (img *Image) imageData() platform.ImageData {
	return platform.ImageData{
		Width:  img.width,
		Height: img.height,
		Stride: img.stride,
		Data:   img.data,
		Shared: img.shared,
	}
}

// release detaches shared memory from the server and this process.
func (img *Image) release() error {
	img.released = true
	img.data = nil
	if img.shared == nil {
		return nil
	}
	buf := img.shared
	img.shared = nil
	return buf.Release()
}

// NewImage creates an image that belongs to no window.
func (m *Mlx) NewImage(width, height int) (ImageID, error) {
	if m.closed {
		return 0, ErrClosed
	}
	img, err := m.newImage(width, height)
	if err != nil {
		return 0, err
	}
	return img.id, nil
}

// AttachImage creates an image sized to the window and owned by it. It is
// destroyed together with the window.
func (m *Mlx) AttachImage(win WindowID) (ImageID, error) {
	w, err := m.lookupWindow(win)
	if err != nil {
		return 0, err
	}
	img, err := m.newImage(w.width, w.height)
	if err != nil {
		return 0, err
	}
	img.owner = w.id
	w.images = append(w.images, img.id)
	return img.id, nil
}

func (m *Mlx) newImage(width, height int) (*Image, error) {
	if !validSize(width, height) {
		return nil, &AllocError{Width: width, Height: height, Err: ErrInvalidSize}
	}
	stride := width * BytesPerPixel
	if stride > maxImageBytes/height {
		return nil, &AllocError{
			Width:  width,
			Height: height,
			Shared: m.backend.Shm().Enabled,
			Err:    fmt.Errorf("image exceeds the %d byte limit", maxImageBytes),
		}
	}
	size := stride * height

	img := &Image{
		width:      width,
		height:     height,
		stride:     stride,
		format:     m.format,
		background: m.background,
	}
	if m.backend.Shm().Enabled {
		buf, err := m.backend.NewSharedBuffer(size)
		if err != nil {
			m.logger.Warn("shared image unavailable, using heap memory",
				"width", width, "height", height, "error", err)
		} else {
			img.shared = buf
			img.data = buf.Bytes()[:size]
		}
	}
	if img.shared == nil {
		data, err := allocHeap(size)
		if err != nil {
			return nil, &AllocError{Width: width, Height: height, Err: err}
		}
		img.data = data
	}
	img.Clear()

	m.nextImage++
	img.id = m.nextImage
	m.images = append(m.images, img)
	m.imageByID[img.id] = img
	return img, nil
}

// Image returns the surface behind a handle for direct pixel access.
func (m *Mlx) Image(id ImageID) (*Image, error) {
	if m.closed {
		return nil, ErrClosed
	}
	img, ok := m.imageByID[id]
	if !ok {
		return nil, fmt.Errorf("image %d: %w", id, ErrUnknownImage)
	}
	return img, nil
}

// TransferImage makes win the owner of the image.
func (m *Mlx) TransferImage(id ImageID, win WindowID) error {
	img, err := m.Image(id)
	if err != nil {
		return err
	}
	w, err := m.lookupWindow(win)
	if err != nil {
		return err
	}
	if img.owner == w.id {
		return nil
	}
	if prev, ok := m.byID[img.owner]; ok {
		prev.images = slices.DeleteFunc(prev.images, func(x ImageID) bool { return x == id })
	}
	img.owner = w.id
	w.images = append(w.images, id)
	return nil
}

// ClearImage sets every pixel of the image to the background color.
func (m *Mlx) ClearImage(id ImageID) error {
	img, err := m.Image(id)
	if err != nil {
		return err
	}
	img.Clear()
	return nil
}

// PutPixel stores a color in the image. Out-of-bounds writes are ignored.
func (m *Mlx) PutPixel(id ImageID, x, y int, color uint32) error {
	img, err := m.Image(id)
	if err != nil {
		return err
	}
	img.PutPixel(x, y, color)
	return nil
}

// Pixel reads a color back from the image.
func (m *Mlx) Pixel(id ImageID, x, y int) (uint32, error) {
	img, err := m.Image(id)
	if err != nil {
		return 0, err
	}
	return img.Pixel(x, y)
}

// Blit copies the image onto the window with its top-left corner at (x, y).
func (m *Mlx) Blit(id ImageID, win WindowID, x, y int) error {
	img, err := m.Image(id)
	if err != nil {
		return err
	}
	w, err := m.lookupWindow(win)
	if err != nil {
		return err
	}
	if err := m.backend.PutImage(w.win, img.imageData(), x, y); err != nil {
		return fmt.Errorf("failed to put image %d on window %d: %w", id, win, err)
	}
	return m.afterDraw()
}

// DestroyImage releases the image and any shared memory behind it.
func (m *Mlx) DestroyImage(id ImageID) error {
	img, err := m.Image(id)
	if err != nil {
		return err
	}
	if w, ok := m.byID[img.owner]; ok {
		w.images = slices.DeleteFunc(w.images, func(x ImageID) bool { return x == id })
	}
	delete(m.imageByID, id)
	m.images = slices.DeleteFunc(m.images, func(x *Image) bool { return x == img })

	if err := img.release(); err != nil {
		return fmt.Errorf("failed to release image %d: %w", id, err)
	}
	return nil
}
