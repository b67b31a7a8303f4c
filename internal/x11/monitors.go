package x11

import (
	"fmt"

	"github.com/1broseidon/mlx/internal/platform"
	"github.com/BurntSushi/xgb/randr"
)

// Monitors lists the active outputs using XRandR. Without RandR the whole
// screen is reported as a single monitor.
func (c *Connection) Monitors() ([]platform.Monitor, error) {
	conn := c.XUtil.Conn()
	if err := randr.Init(conn); err != nil {
		c.logger.Debug("randr unavailable, reporting root screen", "error", err)
		return []platform.Monitor{c.screenMonitor()}, nil
	}

	resources, err := randr.GetScreenResources(conn, c.Root).Reply()
	if err != nil {
		return nil, fmt.Errorf("failed to get screen resources: %w", err)
	}

	var monitors []platform.Monitor
	for i, crtc := range resources.Crtcs {
		info, err := randr.GetCrtcInfo(conn, crtc, resources.ConfigTimestamp).Reply()
		if err != nil {
			continue
		}
		// Skip disabled CRTCs
		if info.Width == 0 || info.Height == 0 || len(info.Outputs) == 0 {
			continue
		}

		name := fmt.Sprintf("Monitor%d", i)
		if out, err := randr.GetOutputInfo(conn, info.Outputs[0], resources.ConfigTimestamp).Reply(); err == nil {
			name = string(out.Name)
		}
		monitors = append(monitors, platform.Monitor{
			Name:   name,
			X:      int(info.X),
			Y:      int(info.Y),
			Width:  int(info.Width),
			Height: int(info.Height),
		})
	}
	if len(monitors) == 0 {
		monitors = append(monitors, c.screenMonitor())
	}
	return monitors, nil
}

func (c *Connection) screenMonitor() platform.Monitor {
	return platform.Monitor{
		Name:   "screen",
		Width:  c.screen.Width,
		Height: c.screen.Height,
	}
}
