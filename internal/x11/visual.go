package x11

import (
	"fmt"

	"github.com/1broseidon/mlx/internal/platform"
	"github.com/BurntSushi/xgb/xproto"
)

// visualChoice is the visual, depth and colormap strategy used for windows.
type visualChoice struct {
	Visual  xproto.VisualInfo
	Depth   byte
	Private bool // a private colormap must be created for Visual
}

// chooseVisual prefers the root visual when it is TrueColor. Otherwise it
// falls back to any depth-24 TrueColor visual, which needs its own colormap.
func chooseVisual(screen *xproto.ScreenInfo) (visualChoice, error) {
	for _, d := range screen.AllowedDepths {
		for _, v := range d.Visuals {
			if v.VisualId == screen.RootVisual && v.Class == xproto.VisualClassTrueColor {
				return visualChoice{Visual: v, Depth: d.Depth}, nil
			}
		}
	}
	for _, d := range screen.AllowedDepths {
		if d.Depth != 24 {
			continue
		}
		for _, v := range d.Visuals {
			if v.Class == xproto.VisualClassTrueColor {
				return visualChoice{Visual: v, Depth: d.Depth, Private: true}, nil
			}
		}
	}
	return visualChoice{}, platform.ErrNoTrueColor
}

// bitsPerPixel returns the pixmap storage size for depth.
func bitsPerPixel(setup *xproto.SetupInfo, depth byte) (int, bool) {
	for _, f := range setup.PixmapFormats {
		if f.Depth == depth {
			return int(f.BitsPerPixel), true
		}
	}
	return 0, false
}

// pixelFormat derives the RGB conversion for a visual.
func pixelFormat(setup *xproto.SetupInfo, v xproto.VisualInfo) platform.PixelFormat {
	return platform.PixelFormat{
		RedMask:   v.RedMask,
		GreenMask: v.GreenMask,
		BlueMask:  v.BlueMask,
		BigEndian: setup.ImageByteOrder == xproto.ImageOrderMSBFirst,
	}
}

// selectVisual resolves the drawing visual and, when needed, allocates a
// private colormap for it.
func (c *Connection) selectVisual() error {
	conn := c.XUtil.Conn()
	setup := c.XUtil.Setup()
	screen := c.XUtil.Screen()

	choice, err := chooseVisual(screen)
	if err != nil {
		return err
	}
	bpp, ok := bitsPerPixel(setup, choice.Depth)
	if !ok || bpp != platform.BytesPerPixel*8 {
		return fmt.Errorf("%w: depth %d uses %d bits per pixel", platform.ErrNoTrueColor, choice.Depth, bpp)
	}

	cmap := screen.DefaultColormap
	if choice.Private {
		cmap, err = xproto.NewColormapId(conn)
		if err != nil {
			return fmt.Errorf("failed to allocate colormap id: %w", err)
		}
		err = xproto.CreateColormapChecked(conn, xproto.ColormapAllocNone, cmap, c.Root, choice.Visual.VisualId).Check()
		if err != nil {
			return fmt.Errorf("failed to create private colormap: %w", err)
		}
	}

	c.depth = choice.Depth
	c.visual = choice.Visual.VisualId
	c.cmap = cmap
	c.screen = platform.ScreenInfo{
		Number:          conn.DefaultScreen,
		Root:            platform.WindowID(c.Root),
		Width:           int(screen.WidthInPixels),
		Height:          int(screen.HeightInPixels),
		Depth:           int(choice.Depth),
		Visual:          uint32(choice.Visual.VisualId),
		Colormap:        uint32(cmap),
		PrivateColormap: choice.Private,
		Format:          pixelFormat(setup, choice.Visual),
	}
	return nil
}
