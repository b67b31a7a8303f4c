//go:build linux

package shmseg

import (
	"errors"
	"fmt"

	"golang.org/x/sys/unix"
)

// Create allocates and attaches a private segment of size bytes.
func Create(size int) (*Segment, error) {
	if size <= 0 {
		return nil, fmt.Errorf("invalid segment size %d", size)
	}
	id, err := unix.SysvShmGet(unix.IPC_PRIVATE, size, unix.IPC_CREAT|0600)
	if err != nil {
		return nil, fmt.Errorf("failed to create shared memory segment: %w", err)
	}
	data, err := unix.SysvShmAttach(id, 0, 0)
	if err != nil {
		unix.SysvShmCtl(id, unix.IPC_RMID, nil)
		return nil, fmt.Errorf("failed to attach shared memory segment %d: %w", id, err)
	}
	return &Segment{id: id, data: data}, nil
}

// MarkForRemoval asks the kernel to free the segment once every process has
// detached. Call it after the server attached, so a crash cannot leak it.
func (s *Segment) MarkForRemoval() error {
	if s.closed || s.marked {
		return nil
	}
	if _, err := unix.SysvShmCtl(s.id, unix.IPC_RMID, nil); err != nil {
		return fmt.Errorf("failed to mark segment %d for removal: %w", s.id, err)
	}
	s.marked = true
	return nil
}

// Close detaches the segment and removes it if it was never marked.
// Calling Close more than once is a no-op.
func (s *Segment) Close() error {
	if s == nil || s.closed {
		return nil
	}
	s.closed = true

	var errs []error
	if err := unix.SysvShmDetach(s.data); err != nil {
		errs = append(errs, fmt.Errorf("failed to detach segment %d: %w", s.id, err))
	}
	s.data = nil
	if !s.marked {
		if _, err := unix.SysvShmCtl(s.id, unix.IPC_RMID, nil); err != nil {
			errs = append(errs, fmt.Errorf("failed to remove segment %d: %w", s.id, err))
		}
		s.marked = true
	}
	return errors.Join(errs...)
}
