package mlx

import (
	"errors"
	"sync"
	"testing"
)

func TestHandoffBounded(t *testing.T) {
	h := NewHandoff[int](2)
	if err := h.Push(1); err != nil {
		t.Fatalf("Push(1) returned error: %v", err)
	}
	if err := h.Push(2); err != nil {
		t.Fatalf("Push(2) returned error: %v", err)
	}
	if err := h.Push(3); !errors.Is(err, ErrQueueFull) {
		t.Fatalf("Push(3) error = %v, want ErrQueueFull", err)
	}

	var got []int
	if n := h.Drain(func(v int) { got = append(got, v) }); n != 2 {
		t.Fatalf("Drain = %d, want 2", n)
	}
	if len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Fatalf("drained %v, want [1 2]", got)
	}
	if h.Len() != 0 {
		t.Fatalf("Len after drain = %d, want 0", h.Len())
	}
}

func TestHandoffConcurrentProducers(t *testing.T) {
	h := NewHandoff[int](1000)
	var wg sync.WaitGroup
	for p := 0; p < 4; p++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				h.Push(i)
			}
		}()
	}
	wg.Wait()

	if n := h.Drain(func(int) {}); n != 400 {
		t.Fatalf("Drain = %d, want 400", n)
	}
}

func TestHandoffDrainFromIdleHook(t *testing.T) {
	m, _ := newTestMlx(t, Options{})
	h := NewHandoff[uint32](4)
	h.Push(0x00FF00)
	id, _ := m.NewImage(1, 1)

	m.LoopHook(func() {
		h.Drain(func(c uint32) { m.PutPixel(id, 0, 0, c) })
		m.LoopEnd()
	})
	if err := m.Loop(); err != nil {
		t.Fatalf("Loop returned error: %v", err)
	}
	if got, _ := m.Pixel(id, 0, 0); got != 0x00FF00 {
		t.Fatalf("Pixel = %#06x, want 0x00ff00", got)
	}
}
