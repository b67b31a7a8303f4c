package mlx

import (
	"errors"
	"fmt"

	"github.com/1broseidon/mlx/internal/platform"
)

// Loop dispatches events to hooks until LoopEnd is called. Each call starts
// with the end flag cleared. It returns ErrConnectionClosed when the server
// connection goes away; protocol errors are logged and skipped.
func (m *Mlx) Loop() error {
	if m.closed {
		return ErrClosed
	}
	m.end = false
	for !m.end && !m.closed {
		if m.idle != nil {
			ev, ok, err := m.backend.PollEvent()
			if err != nil {
				if fatal := m.eventError(err); fatal != nil {
					return fatal
				}
				continue
			}
			if !ok {
				m.idle()
				continue
			}
			m.dispatch(ev)
			continue
		}

		ev, err := m.backend.WaitEvent()
		if err != nil {
			if fatal := m.eventError(err); fatal != nil {
				return fatal
			}
			continue
		}
		m.dispatch(ev)
	}
	return nil
}

// LoopEnd makes Loop return once the current dispatch step completes.
func (m *Mlx) LoopEnd() {
	m.end = true
}

func (m *Mlx) eventError(err error) error {
	if errors.Is(err, platform.ErrClosed) {
		return fmt.Errorf("%w: %w", ErrConnectionClosed, err)
	}
	m.logger.Warn("event read failed", "error", err)
	return nil
}

// dispatch routes ev to the hook of its window. Events for unknown windows
// and kinds without a hook are dropped.
func (m *Mlx) dispatch(ev Event) {
	w, ok := m.byXID[ev.Window]
	if !ok {
		return
	}
	switch {
	case ev.Kind == ClientMessage && ev.DeleteRequest:
		ev.Kind = DestroyNotify
	case ev.Kind == DestroyNotify:
		w.destroyed = true
		m.logger.Debug("window destroyed by server", "window", w.id)
	}
	if !ev.Kind.Valid() {
		return
	}
	if fn := w.hooks[ev.Kind]; fn != nil {
		fn(ev)
	}
}
