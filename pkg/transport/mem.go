package transport

import (
	"fmt"
	"sync"
	"time"
)

// TxKind classifies a journaled bus transaction.
type TxKind uint8

const (
	TxRead TxKind = iota
	TxWrite
	TxCommand
	TxLock
	TxUnlock
)

// String returns the transaction kind name.
func (k TxKind) String() string {
	switch k {
	case TxRead:
		return "READ"
	case TxWrite:
		return "WRITE"
	case TxCommand:
		return "COMMAND"
	case TxLock:
		return "LOCK"
	case TxUnlock:
		return "UNLOCK"
	default:
		return "UNKNOWN"
	}
}

// Tx is one journaled bus transaction.
type Tx struct {
	Kind   TxKind
	Addr   uint64
	Data   []byte
	Opcode uint8
}

// CommandResponder produces the response for a command/response exchange
// against a MemTransport.
type CommandResponder func(addr uint8, opcode uint8, operands []byte) (uint8, []byte)

// MemTransport is an in-memory register space implementing Transport, Locker
// and Notifier. It journals every transaction so tests can assert on exact
// bus traffic, and splits large accesses at MaxFrameSize like real hardware.
//
// Unlike bus-backed transports it is safe for concurrent use, since tests
// drive it from multiple goroutines.
type MemTransport struct {
	mu        sync.Mutex
	mem       map[uint64]byte
	journal   []Tx
	responder CommandResponder
	sink      EventSink
	lockDepth int
	nextErr   error
	closed    bool
}

// NewMemTransport creates an empty in-memory register space.
func NewMemTransport() *MemTransport {
	return &MemTransport{mem: make(map[uint64]byte)}
}

func init() {
	Register("mem", func(cardID uint32) (Transport, error) {
		return NewMemTransport(), nil
	})
}

// LoadRegion seeds the register space with data at addr without journaling.
func (m *MemTransport) LoadRegion(addr uint64, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, b := range data {
		m.mem[addr+uint64(i)] = b
	}
}

// Region returns a copy of length bytes at addr without journaling.
func (m *MemTransport) Region(addr uint64, length int) []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]byte, length)
	for i := range out {
		out[i] = m.mem[addr+uint64(i)]
	}
	return out
}

// SetResponder installs the command/response handler. Without one, every
// command is answered with response code 0x08 (not implemented).
func (m *MemTransport) SetResponder(r CommandResponder) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responder = r
}

// FailNext makes the next transaction fail with err.
func (m *MemTransport) FailNext(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextErr = err
}

// Journal returns a copy of all journaled transactions.
func (m *MemTransport) Journal() []Tx {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Tx, len(m.journal))
	copy(out, m.journal)
	return out
}

// ResetJournal discards the journal.
func (m *MemTransport) ResetJournal() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.journal = nil
}

// WriteCount returns the number of journaled write transactions.
func (m *MemTransport) WriteCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, tx := range m.journal {
		if tx.Kind == TxWrite {
			n++
		}
	}
	return n
}

// LockDepth returns the current hardware lock nesting depth.
func (m *MemTransport) LockDepth() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lockDepth
}

func (m *MemTransport) takeErr() error {
	if m.closed {
		return ErrDisconnected
	}
	err := m.nextErr
	m.nextErr = nil
	return err
}

// Read implements Transport. Accesses larger than MaxFrameSize are split
// into consecutive frame-sized transactions.
func (m *MemTransport) Read(addr uint64, length int, timeout time.Duration) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.takeErr(); err != nil {
		return nil, err
	}
	out := make([]byte, 0, length)
	for length > 0 {
		n := min(length, MaxFrameSize)
		chunk := make([]byte, n)
		for i := range chunk {
			chunk[i] = m.mem[addr+uint64(i)]
		}
		m.journal = append(m.journal, Tx{Kind: TxRead, Addr: addr, Data: chunk})
		out = append(out, chunk...)
		addr += uint64(n)
		length -= n
	}
	return out, nil
}

// Write implements Transport with the same splitting rule as Read.
func (m *MemTransport) Write(addr uint64, data []byte, timeout time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.takeErr(); err != nil {
		return err
	}
	for len(data) > 0 {
		n := min(len(data), MaxFrameSize)
		chunk := make([]byte, n)
		copy(chunk, data[:n])
		for i, b := range chunk {
			m.mem[addr+uint64(i)] = b
		}
		m.journal = append(m.journal, Tx{Kind: TxWrite, Addr: addr, Data: chunk})
		addr += uint64(n)
		data = data[n:]
	}
	return nil
}

// Command implements Transport.
func (m *MemTransport) Command(addr uint8, opcode uint8, operands []byte, timeout time.Duration) (uint8, []byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.takeErr(); err != nil {
		return 0, nil, err
	}
	m.journal = append(m.journal, Tx{Kind: TxCommand, Addr: uint64(addr), Opcode: opcode, Data: append([]byte(nil), operands...)})
	if m.responder == nil {
		return 0x08, nil, nil
	}
	code, resp := m.responder(addr, opcode, operands)
	return code, resp, nil
}

// Close implements Transport. Subsequent transactions fail with
// ErrDisconnected.
func (m *MemTransport) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Lock implements Locker.
func (m *MemTransport) Lock() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrDisconnected
	}
	m.lockDepth++
	m.journal = append(m.journal, Tx{Kind: TxLock})
	return nil
}

// Unlock implements Locker.
func (m *MemTransport) Unlock() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.lockDepth == 0 {
		return fmt.Errorf("unlock without lock")
	}
	m.lockDepth--
	m.journal = append(m.journal, Tx{Kind: TxUnlock})
	return nil
}

// SetEventSink implements Notifier.
func (m *MemTransport) SetEventSink(sink EventSink) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sink = sink
}

func (m *MemTransport) currentSink() EventSink {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sink
}

// EmitNotification delivers an asynchronous notification word to the sink.
func (m *MemTransport) EmitNotification(word uint32) {
	if sink := m.currentSink(); sink != nil {
		sink.Notification(word)
	}
}

// EmitBusReset delivers a bus reset to the sink.
func (m *MemTransport) EmitBusReset(generation uint32) {
	if sink := m.currentSink(); sink != nil {
		sink.BusReset(generation)
	}
}

// EmitDisconnect delivers a disconnect to the sink.
func (m *MemTransport) EmitDisconnect() {
	if sink := m.currentSink(); sink != nil {
		sink.Disconnected()
	}
}

// Compile-time interface satisfaction checks.
var (
	_ Transport = (*MemTransport)(nil)
	_ Locker    = (*MemTransport)(nil)
	_ Notifier  = (*MemTransport)(nil)
)
