// Package call runs a live voice (and optionally video) conversation with a
// single agent over a streaming backend session.
package call

import "fmt"

// State is the lifecycle stage of a call.
type State int

const (
	StateConnecting State = iota
	StateConnected
	StateEnded
	StateError
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "Connecting"
	case StateConnected:
		return "Connected"
	case StateEnded:
		return "Ended"
	case StateError:
		return "Error"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Terminal reports whether no further transitions are possible.
func (s State) Terminal() bool {
	return s == StateEnded || s == StateError
}

// EventKind is a discrete input to the call state machine.
type EventKind int

const (
	EventOpened       EventKind = iota // backend session established
	EventFailed                        // media or backend failure
	EventRemoteClosed                  // backend closed the session
	EventHangUp                        // local user ended the call
)

// Event drives Transition. Err is set for EventFailed.
type Event struct {
	Kind EventKind
	Err  error
}

// Transition returns the state after applying ev to s. Terminal states
// absorb every event.
func Transition(s State, ev Event) State {
	if s.Terminal() {
		return s
	}
	switch ev.Kind {
	case EventFailed:
		return StateError
	case EventRemoteClosed, EventHangUp:
		return StateEnded
	case EventOpened:
		if s == StateConnecting {
			return StateConnected
		}
	}
	return s
}
