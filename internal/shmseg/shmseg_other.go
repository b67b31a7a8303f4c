//go:build !linux

package shmseg

// Create always fails outside Linux.
func Create(size int) (*Segment, error) {
	return nil, ErrUnsupported
}

// MarkForRemoval is a no-op outside Linux.
func (s *Segment) MarkForRemoval() error {
	return nil
}

// Close is a no-op outside Linux.
func (s *Segment) Close() error {
	return nil
}
