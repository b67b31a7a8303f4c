package x11

import (
	"fmt"

	"github.com/1broseidon/mlx/internal/platform"
	"github.com/BurntSushi/xgb/shm"
	"github.com/BurntSushi/xgb/xproto"
)

// putImageHeader is the fixed size of a core PutImage request in bytes.
const putImageHeader = 24

// PutImage copies img onto the window at (x, y). Shared images go through
// MIT-SHM; private ones are split into PutImage requests that fit the
// server's maximum request length.
func (c *Connection) PutImage(w platform.Window, img platform.ImageData, x, y int) error {
	if img.Width <= 0 || img.Height <= 0 {
		return nil
	}
	if sb, ok := img.Shared.(*sharedBuffer); ok && !sb.released {
		return c.putShmImage(w, sb, img, x, y)
	}
	if len(img.Data) < img.Stride*img.Height {
		return fmt.Errorf("image buffer holds %d bytes, need %d", len(img.Data), img.Stride*img.Height)
	}

	conn := c.XUtil.Conn()
	rows := rowsPerRequest(c.XUtil.Setup().MaximumRequestLength, img.Stride)
	if rows < 1 {
		return fmt.Errorf("image row of %d bytes exceeds the maximum request length", img.Stride)
	}
	for y0 := 0; y0 < img.Height; y0 += rows {
		n := rows
		if y0+n > img.Height {
			n = img.Height - y0
		}
		xproto.PutImage(
			conn,
			xproto.ImageFormatZPixmap,
			xproto.Drawable(w.ID),
			xproto.Gcontext(w.GC),
			uint16(img.Width), uint16(n),
			int16(x), int16(y+y0),
			0,
			c.depth,
			img.Data[y0*img.Stride:(y0+n)*img.Stride],
		)
	}
	return nil
}

func (c *Connection) putShmImage(w platform.Window, sb *sharedBuffer, img platform.ImageData, x, y int) error {
	shm.PutImage(
		c.XUtil.Conn(),
		xproto.Drawable(w.ID),
		xproto.Gcontext(w.GC),
		uint16(img.Width), uint16(img.Height), // total
		0, 0, // src x, y
		uint16(img.Width), uint16(img.Height), // src size
		int16(x), int16(y),
		c.depth,
		xproto.ImageFormatZPixmap,
		0, // no completion event
		sb.seg,
		0,
	)
	return nil
}

// rowsPerRequest returns how many rows of stride bytes fit in one request.
// maxLength is in 4-byte units, as reported in the connection setup.
func rowsPerRequest(maxLength uint16, stride int) int {
	if stride <= 0 {
		return 0
	}
	return (int(maxLength)*4 - putImageHeader) / stride
}
