package log

import "time"

// Event represents a control-plane log event captured at any layer.
// CBOR encoding uses integer keys for compactness.
type Event struct {
	// Timestamp when the event occurred (nanosecond precision).
	Timestamp time.Time `cbor:"1,keyasint"`

	// SessionID uniquely identifies the runtime session (UUID).
	SessionID string `cbor:"2,keyasint"`

	// Direction indicates transaction flow relative to the host.
	Direction Direction `cbor:"3,keyasint"`

	// Layer where the event was captured.
	Layer Layer `cbor:"4,keyasint"`

	// Category classifies the event type.
	Category Category `cbor:"5,keyasint"`

	// CardID is the sound card number the session is bound to.
	CardID int `cbor:"6,keyasint,omitempty"`

	// GUID is the device's bus identifier (populated after attach).
	GUID string `cbor:"7,keyasint,omitempty"`

	// Type-specific payload (one of these will be set).
	Transaction  *TransactionEvent  `cbor:"10,keyasint,omitempty"` // Register reads/writes/locks
	Command      *CommandEvent      `cbor:"11,keyasint,omitempty"` // AVC unit commands
	Notification *NotificationEvent `cbor:"12,keyasint,omitempty"` // Device notification words
	ElemChange   *ElemChangeEvent   `cbor:"13,keyasint,omitempty"` // Control-surface element accesses
	StateChange  *StateChangeEvent  `cbor:"14,keyasint,omitempty"` // Runtime/transport state
	Error        *ErrorEventData    `cbor:"15,keyasint,omitempty"` // Errors at any layer
}

// Direction indicates the direction of a transaction or event.
type Direction uint8

const (
	// DirectionIn indicates an event originated by the device.
	DirectionIn Direction = 0
	// DirectionOut indicates an event initiated by the host.
	DirectionOut Direction = 1
)

// String returns the direction name.
func (d Direction) String() string {
	switch d {
	case DirectionIn:
		return "IN"
	case DirectionOut:
		return "OUT"
	default:
		return "UNKNOWN"
	}
}

// Layer indicates which layer of the control plane captured the event.
type Layer uint8

const (
	// LayerTransport is the raw bus transaction layer.
	LayerTransport Layer = 0
	// LayerRegister is the sectioned register protocol layer.
	LayerRegister Layer = 1
	// LayerElement is the control-surface element layer.
	LayerElement Layer = 2
)

// String returns the layer name.
func (l Layer) String() string {
	switch l {
	case LayerTransport:
		return "TRANSPORT"
	case LayerRegister:
		return "REGISTER"
	case LayerElement:
		return "ELEMENT"
	default:
		return "UNKNOWN"
	}
}

// Category classifies the event type.
type Category uint8

const (
	// CategoryTransaction indicates a bus transaction or AVC command.
	CategoryTransaction Category = 0
	// CategoryNotification indicates a device notification.
	CategoryNotification Category = 1
	// CategoryState indicates a state change.
	CategoryState Category = 2
	// CategoryError indicates an error event.
	CategoryError Category = 3
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategoryTransaction:
		return "TRANSACTION"
	case CategoryNotification:
		return "NOTIFICATION"
	case CategoryState:
		return "STATE"
	case CategoryError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// TransactionEvent captures a register transaction on the bus.
type TransactionEvent struct {
	// Kind of transaction.
	Kind TransactionKind `cbor:"1,keyasint"`

	// Addr is the 48-bit bus address the transaction targets.
	Addr uint64 `cbor:"2,keyasint"`

	// Section is the register section name, when the address resolves
	// to one (e.g. "global", "router").
	Section string `cbor:"3,keyasint,omitempty"`

	// Size is the payload size in bytes.
	Size int `cbor:"4,keyasint,omitempty"`

	// Data is the payload (may be truncated for large transactions).
	Data []byte `cbor:"5,keyasint,omitempty"`

	// Truncated indicates if Data was truncated.
	Truncated bool `cbor:"6,keyasint,omitempty"`
}

// TransactionKind indicates the type of bus transaction.
type TransactionKind uint8

const (
	// TransactionRead indicates a block read.
	TransactionRead TransactionKind = 0
	// TransactionWrite indicates a block write.
	TransactionWrite TransactionKind = 1
	// TransactionLock indicates a bus reservation.
	TransactionLock TransactionKind = 2
	// TransactionUnlock indicates a bus release.
	TransactionUnlock TransactionKind = 3
)

// String returns the transaction kind name.
func (k TransactionKind) String() string {
	switch k {
	case TransactionRead:
		return "READ"
	case TransactionWrite:
		return "WRITE"
	case TransactionLock:
		return "LOCK"
	case TransactionUnlock:
		return "UNLOCK"
	default:
		return "UNKNOWN"
	}
}

// CommandEvent captures an AVC unit command and its response.
type CommandEvent struct {
	// Ctype is the command type code of the request frame.
	Ctype uint8 `cbor:"1,keyasint"`

	// Opcode is the AVC opcode.
	Opcode uint8 `cbor:"2,keyasint"`

	// Response is the response code of the reply frame, if one arrived.
	Response *uint8 `cbor:"3,keyasint,omitempty"`

	// Operands is the operand block of the frame (may be truncated).
	Operands []byte `cbor:"4,keyasint,omitempty"`

	// Truncated indicates if Operands was truncated.
	Truncated bool `cbor:"5,keyasint,omitempty"`

	// RoundTrip is the request-to-response duration.
	// Stored as nanoseconds.
	RoundTrip *time.Duration `cbor:"6,keyasint,omitempty"`
}

// NotificationEvent captures a notification word posted by the device.
type NotificationEvent struct {
	// Bits is the raw notification word.
	Bits uint32 `cbor:"1,keyasint"`

	// Handled indicates whether any cached section matched the word.
	Handled bool `cbor:"2,keyasint,omitempty"`
}

// ElemChangeEvent captures a control-surface element access.
type ElemChangeEvent struct {
	// Elem is the element identifier ("iface/name/index").
	Elem string `cbor:"1,keyasint"`

	// Write indicates a value write; false is a change announcement
	// toward the surface.
	Write bool `cbor:"2,keyasint,omitempty"`
}

// StateChangeEvent captures runtime and transport lifecycle events.
type StateChangeEvent struct {
	// Entity being changed.
	Entity StateEntity `cbor:"1,keyasint"`

	// OldState is the previous state (may be empty).
	OldState string `cbor:"2,keyasint,omitempty"`

	// NewState is the new state.
	NewState string `cbor:"3,keyasint"`

	// Reason for the change (if available).
	Reason string `cbor:"4,keyasint,omitempty"`
}

// StateEntity indicates what entity changed state.
type StateEntity uint8

const (
	// StateEntityRuntime indicates a runtime state change.
	StateEntityRuntime StateEntity = 0
	// StateEntityTransport indicates a transport state change (bus
	// reset, disconnect).
	StateEntityTransport StateEntity = 1
)

// String returns the state entity name.
func (s StateEntity) String() string {
	switch s {
	case StateEntityRuntime:
		return "RUNTIME"
	case StateEntityTransport:
		return "TRANSPORT"
	default:
		return "UNKNOWN"
	}
}

// ErrorEventData captures errors at any layer.
type ErrorEventData struct {
	// Layer where the error occurred.
	Layer Layer `cbor:"1,keyasint"`

	// Message is the error message.
	Message string `cbor:"2,keyasint"`

	// Context describes what operation was being performed.
	Context string `cbor:"3,keyasint,omitempty"`
}
