package transport

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"
)

// MaxFrameSize is the largest number of bytes a single bus transaction
// carries. Larger accesses are split into consecutive transactions.
const MaxFrameSize = 512

// Transport errors.
var (
	ErrTimeout       = errors.New("bus transaction timed out")
	ErrDisconnected  = errors.New("device disconnected from bus")
	ErrShortResponse = errors.New("malformed response length")
)

// Transport performs raw bus I/O against one device. All methods block until
// completion or until the caller-supplied timeout elapses, in which case they
// return ErrTimeout. Implementations need not be safe for concurrent use; the
// runtime serializes all access on its consumer goroutine.
type Transport interface {
	// Read fetches length bytes from the device register space at addr.
	Read(addr uint64, length int, timeout time.Duration) ([]byte, error)

	// Write stores data into the device register space at addr.
	Write(addr uint64, data []byte, timeout time.Duration) error

	// Command performs one synchronous command/response exchange and returns
	// the raw response code with its operands.
	Command(addr uint8, opcode uint8, operands []byte, timeout time.Duration) (uint8, []byte, error)

	// Close releases the underlying bus handle.
	Close() error
}

// Locker is the hardware-side mutual-exclusion bracket. It must be acquired
// before any multi-step mutating sequence the device cannot execute
// atomically, and released unconditionally afterward, including on error.
type Locker interface {
	Lock() error
	Unlock() error
}

// EventSink receives asynchronous bus events from a transport. The runtime
// installs one sink per device before listening.
type EventSink interface {
	// BusReset reports a bus reset with the new generation number.
	BusReset(generation uint32)

	// Notification reports an asynchronous notification word.
	Notification(word uint32)

	// Disconnected reports that the device left the bus.
	Disconnected()
}

// Notifier is implemented by transports that deliver asynchronous events.
type Notifier interface {
	SetEventSink(sink EventSink)
}

// OpenFunc opens a transport for the numbered card of its class.
type OpenFunc func(cardID uint32) (Transport, error)

var (
	registryMu sync.RWMutex
	registry   = make(map[string]OpenFunc)
)

// Register makes a transport class available to Open. Classes register from
// init functions; a duplicate name panics.
func Register(class string, open OpenFunc) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if _, ok := registry[class]; ok {
		panic(fmt.Sprintf("transport class %q registered twice", class))
	}
	registry[class] = open
}

// Open opens a transport of the named class for the given card.
func Open(class string, cardID uint32) (Transport, error) {
	registryMu.RLock()
	open, ok := registry[class]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown transport class %q (have %v)", class, Classes())
	}
	return open(cardID)
}

// Classes returns the registered class names, sorted.
func Classes() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
