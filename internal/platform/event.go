package platform

import "fmt"

// EventKind is an X core event code.
type EventKind int

const (
	KeyPress         EventKind = 2
	KeyRelease       EventKind = 3
	ButtonPress      EventKind = 4
	ButtonRelease    EventKind = 5
	MotionNotify     EventKind = 6
	EnterNotify      EventKind = 7
	LeaveNotify      EventKind = 8
	FocusIn          EventKind = 9
	FocusOut         EventKind = 10
	Expose           EventKind = 12
	VisibilityNotify EventKind = 15
	DestroyNotify    EventKind = 17
	UnmapNotify      EventKind = 18
	MapNotify        EventKind = 19
	ConfigureNotify  EventKind = 22
	ResizeRequest    EventKind = 25
	ClientMessage    EventKind = 33

	// MaxEventKind bounds the per-window hook table.
	MaxEventKind EventKind = 36
)

var kindNames = map[EventKind]string{
	KeyPress:         "KeyPress",
	KeyRelease:       "KeyRelease",
	ButtonPress:      "ButtonPress",
	ButtonRelease:    "ButtonRelease",
	MotionNotify:     "MotionNotify",
	EnterNotify:      "EnterNotify",
	LeaveNotify:      "LeaveNotify",
	FocusIn:          "FocusIn",
	FocusOut:         "FocusOut",
	Expose:           "Expose",
	VisibilityNotify: "VisibilityNotify",
	DestroyNotify:    "DestroyNotify",
	UnmapNotify:      "UnmapNotify",
	MapNotify:        "MapNotify",
	ConfigureNotify:  "ConfigureNotify",
	ResizeRequest:    "ResizeRequest",
	ClientMessage:    "ClientMessage",
}

func (k EventKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("EventKind(%d)", int(k))
}

// Valid reports whether k can index a hook table.
func (k EventKind) Valid() bool {
	return k >= KeyPress && k < MaxEventKind
}

// Event is a decoded window-system event.
type Event struct {
	Kind   EventKind
	Window WindowID

	// Key events.
	Keycode uint8
	Keysym  uint32
	// Button events; 1 left, 2 middle, 3 right, 4/5 wheel.
	Button uint8
	// Modifier and button state mask.
	State uint16

	// Pointer position or exposed/configured area origin.
	X int
	Y int
	// Exposed or configured area size.
	Width  int
	Height int
	// Number of Expose events still to follow.
	Count int

	// DeleteRequest is set on WM_DELETE_WINDOW client messages.
	DeleteRequest bool
}
