package config

import (
	"fmt"
	"strings"
)

// EventKind classifies window and page events.
type EventKind int

const (
	// EventNormal fires when its attribute changes.
	EventNormal EventKind = iota
	// EventLoad fires when the window is entered.
	EventLoad
	// EventUnload fires when the window is left.
	EventUnload
)

func (k EventKind) String() string {
	switch k {
	case EventNormal:
		return "normal"
	case EventLoad:
		return "load"
	case EventUnload:
		return "unload"
	default:
		return fmt.Sprintf("EventKind(%d)", int(k))
	}
}

// ParseEventKind parses the name of an event kind.
func ParseEventKind(s string) (EventKind, error) {
	switch strings.ToLower(s) {
	case "", "normal":
		return EventNormal, nil
	case "load":
		return EventLoad, nil
	case "unload":
		return EventUnload, nil
	default:
		return 0, fmt.Errorf("%w: unknown event kind %q", ErrInvalidArgument, s)
	}
}

// Event ties a model attribute to an action performed when it fires.
type Event struct {
	Name      string
	Attribute string
	Action    string
	Kind      EventKind

	passThrough bool
}

// PassThrough reports whether the event is forwarded to the client unchanged.
func (e *Event) PassThrough() bool {
	return e.passThrough
}

// SetPassThrough enables pass-through. Only normal events support it.
func (e *Event) SetPassThrough(on bool) error {
	if on && e.Kind != EventNormal {
		return fmt.Errorf("%w: pass-through on %s event %q", ErrInvalidArgument, e.Kind, e.Name)
	}
	e.passThrough = on
	return nil
}
