package runtime

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/sndwire-protocol/sndwire-go/pkg/element"
	"github.com/sndwire-protocol/sndwire-go/pkg/log"
	"github.com/sndwire-protocol/sndwire-go/pkg/models"
	"github.com/sndwire-protocol/sndwire-go/pkg/transport"
)

// ErrState is returned when a lifecycle method is called out of order.
var ErrState = errors.New("invalid runtime state")

// Defaults applied by New for zero Config fields.
const (
	DefaultTimeout    = 100 * time.Millisecond
	DefaultQueueDepth = 32
)

// Config tunes one runtime session.
type Config struct {
	// CardID is the card number the session is bound to, for log events.
	CardID int

	// Timeout bounds every bus transaction.
	Timeout time.Duration

	// QueueDepth is the capacity of the event channel.
	QueueDepth int

	// MeterInterval enables the peak metering timer when positive.
	MeterInterval time.Duration

	// Model is the catalog record of the attached device, when known. An
	// AVC-family model switches Attach off the register section pass: those
	// devices have no register space, and their bridges issue command
	// transactions instead of reading caches.
	Model *models.Model

	// Logger receives control-plane events. Nil disables capture.
	Logger log.Logger
}

// Runtime owns one device session: the transport, the parameter caches and
// the event loop. Construct with New; drive with Attach, Listen, Run, Stop.
type Runtime struct {
	cfg       Config
	transport transport.Transport
	surface   element.Surface
	bridges   []element.Bridge

	sessionID string
	logger    log.Logger

	dev *element.Device

	state atomic.Uint32

	// events is the single bounded funnel; busIn and surfaceIn are the
	// producer intakes fed by transport callbacks and host writes.
	events    chan Event
	busIn     chan Event
	surfaceIn chan Event

	ctx        context.Context
	cancel     context.CancelFunc
	producerWg sync.WaitGroup

	quit     chan struct{}
	quitOnce sync.Once
}

// New creates a runtime over an open transport. The surface receives element
// declarations at attach and value-change notifications while running; the
// bridges are tried in order for every element access.
func New(t transport.Transport, surface element.Surface, bridges []element.Bridge, cfg Config) *Runtime {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.QueueDepth <= 0 {
		cfg.QueueDepth = DefaultQueueDepth
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.NoopLogger{}
	}
	return &Runtime{
		cfg:       cfg,
		transport: t,
		surface:   surface,
		bridges:   bridges,
		sessionID: uuid.NewString(),
		logger:    logger,
		events:    make(chan Event, cfg.QueueDepth),
		busIn:     make(chan Event, cfg.QueueDepth),
		surfaceIn: make(chan Event, cfg.QueueDepth),
		quit:      make(chan struct{}),
	}
}

// SessionID returns the UUID correlating this session's log events.
func (r *Runtime) SessionID() string { return r.sessionID }

// State returns the current lifecycle state.
func (r *Runtime) State() State { return State(r.state.Load()) }

// Device exposes the cached parameter sets. Values are only coherent when
// read from the consumer goroutine or after Run has returned.
func (r *Runtime) Device() *element.Device { return r.dev }

func (r *Runtime) setState(s State) {
	old := State(r.state.Swap(uint32(s)))
	if old == s {
		return
	}
	r.logEvent(log.Event{
		Direction: log.DirectionOut,
		Layer:     log.LayerTransport,
		Category:  log.CategoryState,
		StateChange: &log.StateChangeEvent{
			Entity:   log.StateEntityRuntime,
			OldState: old.String(),
			NewState: s.String(),
		},
	})
}

// Attach binds the transport, reads the section layout and capabilities,
// fills every parameter cache and announces the bridges' elements to the
// surface. An Attach error is fatal to the session: without a complete
// read-only pass the cache invariant cannot be established.
func (r *Runtime) Attach() error {
	if r.State() != StateIdle {
		return fmt.Errorf("%w: attach from %s", ErrState, r.State())
	}

	dev := element.NewDevice(r.transport, r.cfg.Timeout)
	if r.cfg.Model == nil || r.cfg.Model.Family == models.FamilyRegister {
		if err := dev.Attach(); err != nil {
			r.logError("attach", err)
			return err
		}
	}

	for _, b := range r.bridges {
		descs, err := b.Load(dev)
		if err != nil {
			r.logError("loading bridge elements", err)
			return err
		}
		if len(descs) == 0 {
			continue
		}
		if err := r.surface.AddElements(descs); err != nil {
			r.logError("announcing elements", err)
			return err
		}
	}

	r.dev = dev
	r.setState(StateAttached)
	return nil
}

// Listen starts the two producer goroutines: one forwarding bus events
// (disconnect, bus reset, notification, metering tick) and one forwarding
// host element writes. Both funnel into the single bounded event channel.
func (r *Runtime) Listen() error {
	if r.State() != StateAttached {
		return fmt.Errorf("%w: listen from %s", ErrState, r.State())
	}

	r.ctx, r.cancel = context.WithCancel(context.Background())
	if n, ok := r.transport.(transport.Notifier); ok {
		n.SetEventSink(busSink{r})
	}

	r.producerWg.Add(2)
	go r.busProducer()
	go r.surfaceProducer()

	r.setState(StateListening)
	return nil
}

// Run executes the consumer loop until a Shutdown or Disconnected event,
// then joins both producers and drains the channel. Run blocks; call it from
// its own goroutine if the caller needs to keep working.
//
// A single event's processing error is logged and the loop continues.
func (r *Runtime) Run() error {
	if !r.state.CompareAndSwap(uint32(StateListening), uint32(StateRunning)) {
		return fmt.Errorf("%w: run from %s", ErrState, r.State())
	}
	r.logEvent(log.Event{
		Direction: log.DirectionOut,
		Layer:     log.LayerTransport,
		Category:  log.CategoryState,
		StateChange: &log.StateChangeEvent{
			Entity:   log.StateEntityRuntime,
			OldState: StateListening.String(),
			NewState: StateRunning.String(),
		},
	})

loop:
	for {
		select {
		case <-r.quit:
			break loop
		case ev := <-r.events:
			switch ev.Kind {
			case EventShutdown, EventDisconnected:
				break loop
			default:
				if err := r.handle(ev); err != nil {
					r.logError(fmt.Sprintf("processing %s event", ev.Kind), err)
				}
			}
		}
	}

	r.setState(StateShuttingDown)
	r.cancel()
	r.producerWg.Wait()
	for {
		select {
		case <-r.events:
		default:
			r.setState(StateStopped)
			return nil
		}
	}
}

// Stop asks the consumer loop to terminate. Safe to call more than once and
// from any goroutine.
func (r *Runtime) Stop() {
	r.quitOnce.Do(func() { close(r.quit) })
}

// ElemWrite enqueues a host-initiated element write. Unlike notifications,
// element writes are never dropped; the call blocks until the event is
// queued or the runtime stops.
//
// There is no read counterpart: surface reads call Bridge.Read against
// Device directly, and are coherent only from the consumer goroutine's
// callbacks or once Run has returned (see Device).
func (r *Runtime) ElemWrite(id element.ID, old, val element.Value) {
	select {
	case r.surfaceIn <- Event{Kind: EventElemWrite, Elem: id, Old: old, New: val}:
	case <-r.quit:
	}
}

// busProducer forwards bus events into the main channel and, when metering
// is enabled, emits timer ticks. Notifications, resets and ticks are dropped
// on a full channel: they are idempotent refresh hints, re-issued by the
// device, so loss is safe. Disconnects are delivered with a blocking send.
func (r *Runtime) busProducer() {
	defer r.producerWg.Done()

	var tick <-chan time.Time
	if r.cfg.MeterInterval > 0 {
		ticker := time.NewTicker(r.cfg.MeterInterval)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		select {
		case <-r.ctx.Done():
			return
		case ev := <-r.busIn:
			if ev.Kind == EventDisconnected {
				select {
				case r.events <- ev:
				case <-r.ctx.Done():
					return
				}
				continue
			}
			r.offer(ev)
		case <-tick:
			r.offer(Event{Kind: EventTimer})
		}
	}
}

// surfaceProducer forwards host element writes into the main channel. Writes
// are commands, not hints, so the send blocks instead of dropping.
func (r *Runtime) surfaceProducer() {
	defer r.producerWg.Done()
	for {
		select {
		case <-r.ctx.Done():
			return
		case ev := <-r.surfaceIn:
			select {
			case r.events <- ev:
			case <-r.ctx.Done():
				return
			}
		}
	}
}

// offer performs a non-blocking send, dropping the event on a full channel.
func (r *Runtime) offer(ev Event) {
	select {
	case r.events <- ev:
	default:
	}
}

// handle fully processes one event on the consumer goroutine.
func (r *Runtime) handle(ev Event) error {
	switch ev.Kind {
	case EventNotification:
		return r.handleNotification(ev.Word)
	case EventElemWrite:
		return r.handleElemWrite(ev)
	case EventBusReset:
		r.logEvent(log.Event{
			Direction: log.DirectionIn,
			Layer:     log.LayerTransport,
			Category:  log.CategoryState,
			StateChange: &log.StateChangeEvent{
				Entity:   log.StateEntityTransport,
				NewState: StateRunning.String(),
				Reason:   fmt.Sprintf("bus reset generation %d", ev.Generation),
			},
		})
		return nil
	case EventTimer:
		return r.dev.CachePeaks()
	default:
		return fmt.Errorf("unhandled event kind %s", ev.Kind)
	}
}

// handleNotification fans the word out to every cached section whose mask
// intersects it and, if anything changed, announces the affected elements.
func (r *Runtime) handleNotification(word uint32) error {
	changed, err := r.dev.Refresh(word)
	r.logEvent(log.Event{
		Direction:    log.DirectionIn,
		Layer:        log.LayerRegister,
		Category:     log.CategoryNotification,
		Notification: &log.NotificationEvent{Bits: word, Handled: changed},
	})
	if err != nil {
		return err
	}
	if !changed {
		return nil
	}

	var ids []element.ID
	for _, b := range r.bridges {
		ids = append(ids, b.NotifiedElems()...)
	}
	if len(ids) > 0 {
		r.surface.NotifyValueChange(ids)
	}
	return nil
}

// handleElemWrite tries each bridge in order. A bridge answering ErrNotFound
// is skipped; a write no bridge serves is an error, never silently dropped.
func (r *Runtime) handleElemWrite(ev Event) error {
	r.logEvent(log.Event{
		Direction:  log.DirectionOut,
		Layer:      log.LayerElement,
		Category:   log.CategoryTransaction,
		ElemChange: &log.ElemChangeEvent{Elem: ev.Elem.String(), Write: true},
	})
	for _, b := range r.bridges {
		err := b.Write(r.dev, ev.Elem, ev.Old, ev.New)
		if errors.Is(err, element.ErrNotFound) {
			continue
		}
		return err
	}
	return fmt.Errorf("no bridge serves element %s", ev.Elem)
}

func (r *Runtime) logEvent(ev log.Event) {
	ev.Timestamp = time.Now()
	ev.SessionID = r.sessionID
	ev.CardID = r.cfg.CardID
	r.logger.Log(ev)
}

func (r *Runtime) logError(during string, err error) {
	r.logEvent(log.Event{
		Direction: log.DirectionOut,
		Layer:     log.LayerTransport,
		Category:  log.CategoryError,
		Error:     &log.ErrorEventData{Layer: log.LayerTransport, Message: err.Error(), Context: during},
	})
}

// busSink adapts transport callbacks into bus producer intake sends. The
// callbacks run on the transport's event goroutine and must not block, so
// intake sends are non-blocking except for disconnects.
type busSink struct{ r *Runtime }

func (s busSink) BusReset(generation uint32) {
	select {
	case s.r.busIn <- Event{Kind: EventBusReset, Generation: generation}:
	default:
	}
}

func (s busSink) Notification(word uint32) {
	select {
	case s.r.busIn <- Event{Kind: EventNotification, Word: word}:
	default:
	}
}

func (s busSink) Disconnected() {
	select {
	case s.r.busIn <- Event{Kind: EventDisconnected}:
	case <-s.r.quit:
	}
}

// Compile-time interface satisfaction check.
var _ transport.EventSink = busSink{}
