package runtime

import "github.com/sndwire-protocol/sndwire-go/pkg/element"

// EventKind discriminates the event union.
type EventKind uint8

const (
	// EventShutdown asks the consumer loop to terminate.
	EventShutdown EventKind = iota
	// EventDisconnected reports that the device left the bus.
	EventDisconnected
	// EventBusReset reports a bus reset with a new generation.
	EventBusReset
	// EventNotification carries a device notification word.
	EventNotification
	// EventElemWrite carries a host-initiated element write.
	EventElemWrite
	// EventTimer is the metering tick.
	EventTimer
)

// String returns the event kind name.
func (k EventKind) String() string {
	switch k {
	case EventShutdown:
		return "shutdown"
	case EventDisconnected:
		return "disconnected"
	case EventBusReset:
		return "bus-reset"
	case EventNotification:
		return "notification"
	case EventElemWrite:
		return "elem-write"
	case EventTimer:
		return "timer"
	default:
		return "unknown"
	}
}

// Event is the tagged union flowing through the runtime channel. Only the
// fields of the tagged kind are meaningful.
type Event struct {
	Kind EventKind

	// Generation of the bus after a reset (EventBusReset).
	Generation uint32

	// Word is the notification bitmask (EventNotification).
	Word uint32

	// Elem, Old and New describe a host element write (EventElemWrite).
	Elem element.ID
	Old  element.Value
	New  element.Value
}

// State of the runtime session.
type State uint32

const (
	// StateIdle is the initial state, before any transport access.
	StateIdle State = iota
	// StateAttached means the section layout and every parameter cache
	// have been read.
	StateAttached
	// StateListening means both producer goroutines are running.
	StateListening
	// StateRunning means the consumer loop is processing events.
	StateRunning
	// StateShuttingDown means the loop has exited and producers are being
	// joined.
	StateShuttingDown
	// StateStopped is terminal.
	StateStopped
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAttached:
		return "attached"
	case StateListening:
		return "listening"
	case StateRunning:
		return "running"
	case StateShuttingDown:
		return "shutting-down"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}
