// Package shmseg manages System V shared memory segments used as pixel
// buffers shared with the X server.
package shmseg

import "errors"

// ErrUnsupported is returned on platforms without System V shared memory.
var ErrUnsupported = errors.New("shared memory segments not supported on this platform")

// Segment is a private segment attached to this process.
type Segment struct {
	id     int
	data   []byte
	marked bool
	closed bool
}

// ID returns the segment identifier the server needs to attach it.
func (s *Segment) ID() int {
	return s.id
}

// Bytes returns the attached memory. It is nil once the segment is closed.
func (s *Segment) Bytes() []byte {
	if s == nil || s.closed {
		return nil
	}
	return s.data
}

// Size returns the attached size in bytes.
func (s *Segment) Size() int {
	return len(s.Bytes())
}
