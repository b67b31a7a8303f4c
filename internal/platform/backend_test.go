package platform

import "testing"

func TestFixedSizeHints(t *testing.T) {
	h := FixedSizeHints(100, 50)
	if h.Width != 100 || h.MinWidth != 100 || h.MaxWidth != 100 {
		t.Fatalf("widths = %d/%d/%d, want 100", h.Width, h.MinWidth, h.MaxWidth)
	}
	if h.Height != 50 || h.MinHeight != 50 || h.MaxHeight != 50 {
		t.Fatalf("heights = %d/%d/%d, want 50", h.Height, h.MinHeight, h.MaxHeight)
	}
	if h.AllowsResize() {
		t.Fatal("fixed hints allow resize")
	}
}

func TestAllowsResize(t *testing.T) {
	tests := []struct {
		name string
		h    SizeHints
		want bool
	}{
		{"no flags", SizeHints{MinWidth: 10, MaxWidth: 10, MinHeight: 10, MaxHeight: 10}, true},
		{"min only", SizeHints{Flags: HintPMinSize, MinWidth: 10, MinHeight: 10}, true},
		{"range", SizeHints{Flags: HintPMinSize | HintPMaxSize, MinWidth: 10, MaxWidth: 20, MinHeight: 10, MaxHeight: 10}, true},
		{"pinned", SizeHints{Flags: HintPMinSize | HintPMaxSize, MinWidth: 10, MaxWidth: 10, MinHeight: 5, MaxHeight: 5}, false},
	}
	for _, tt := range tests {
		if got := tt.h.AllowsResize(); got != tt.want {
			t.Fatalf("%s: AllowsResize() = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestEventKind(t *testing.T) {
	if got := KeyRelease.String(); got != "KeyRelease" {
		t.Fatalf("KeyRelease.String() = %q, want %q", got, "KeyRelease")
	}
	if got := EventKind(34).String(); got != "EventKind(34)" {
		t.Fatalf("EventKind(34).String() = %q", got)
	}
	for _, k := range []EventKind{0, 1, MaxEventKind, -1} {
		if k.Valid() {
			t.Fatalf("%d.Valid() = true, want false", int(k))
		}
	}
	if !KeyPress.Valid() || !EventKind(35).Valid() {
		t.Fatal("KeyPress and 35 must be valid kinds")
	}
}
