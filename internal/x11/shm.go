package x11

import (
	"errors"
	"fmt"

	"github.com/1broseidon/mlx/internal/displayenv"
	"github.com/1broseidon/mlx/internal/platform"
	"github.com/1broseidon/mlx/internal/shmseg"
	"github.com/BurntSushi/xgb/shm"
)

// ShmQuery is what the server reported about MIT-SHM.
type ShmQuery struct {
	Supported     bool
	SharedPixmaps bool
	PixmapFormat  int
	Major, Minor  int
	Err           error
}

// queryShm asks the server for MIT-SHM support. It never fails: problems
// are recorded in the result so negotiation can degrade.
func (c *Connection) queryShm() ShmQuery {
	conn := c.XUtil.Conn()
	if err := shm.Init(conn); err != nil {
		return ShmQuery{Err: err}
	}
	reply, err := shm.QueryVersion(conn).Reply()
	if err != nil {
		return ShmQuery{Err: err}
	}
	return ShmQuery{
		Supported:     true,
		SharedPixmaps: reply.SharedPixmaps,
		PixmapFormat:  int(reply.PixmapFormat),
		Major:         int(reply.MajorVersion),
		Minor:         int(reply.MinorVersion),
	}
}

// NegotiateShm decides whether shared-memory pixel transport is used. A
// remote display target disables it even when the extension is present,
// since the segment cannot be mapped across hosts.
func NegotiateShm(q ShmQuery, target, hostname string, allowed bool) platform.ShmInfo {
	info := platform.ShmInfo{PixmapFormat: platform.NoShmFormat}
	switch {
	case !allowed:
		info.Reason = "disabled by configuration"
	case q.Err != nil:
		info.Reason = fmt.Sprintf("MIT-SHM query failed: %v", q.Err)
	case !q.Supported:
		info.Reason = "MIT-SHM extension not available"
	case !displayenv.IsLocal(target, hostname):
		info.Reason = fmt.Sprintf("display %q is not local", target)
	default:
		info.Enabled = true
		if q.SharedPixmaps {
			info.PixmapFormat = q.PixmapFormat
		}
	}
	return info
}

// sharedBuffer is a SysV segment attached to both this process and the server.
type sharedBuffer struct {
	conn     *Connection
	seg      shm.Seg
	mem      *shmseg.Segment
	released bool
}

// NewSharedBuffer allocates size bytes of server-visible memory.
func (c *Connection) NewSharedBuffer(size int) (platform.SharedBuffer, error) {
	if !c.shm.Enabled {
		return nil, errors.New("shared memory is not enabled for this display")
	}
	mem, err := shmseg.Create(size)
	if err != nil {
		return nil, err
	}

	conn := c.XUtil.Conn()
	seg, err := shm.NewSegId(conn)
	if err != nil {
		mem.Close()
		return nil, fmt.Errorf("failed to allocate shm segment id: %w", err)
	}
	if err := shm.AttachChecked(conn, seg, uint32(mem.ID()), false).Check(); err != nil {
		mem.Close()
		return nil, fmt.Errorf("failed to attach shm segment to X server: %w", err)
	}
	// Both sides are attached; the kernel frees the segment after both detach.
	if err := mem.MarkForRemoval(); err != nil {
		c.logger.Warn("shared segment not marked for removal", "error", err)
	}

	return &sharedBuffer{conn: c, seg: seg, mem: mem}, nil
}

func (b *sharedBuffer) Bytes() []byte {
	return b.mem.Bytes()
}

// Release detaches the segment from the server and from this process. Both
// detaches are always attempted.
func (b *sharedBuffer) Release() error {
	if b.released {
		return nil
	}
	b.released = true

	var errs []error
	if !b.conn.closed {
		if err := shm.DetachChecked(b.conn.XUtil.Conn(), b.seg).Check(); err != nil {
			errs = append(errs, fmt.Errorf("failed to detach shm segment from X server: %w", err))
		}
	}
	if err := b.mem.Close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
