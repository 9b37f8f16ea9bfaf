package section

import (
	"errors"
	"testing"
	"time"

	"github.com/sndwire-protocol/sndwire-go/pkg/quadlet"
	"github.com/sndwire-protocol/sndwire-go/pkg/transport"
)

func testCmdCaps() *Caps {
	return &Caps{
		Router:  RouterCaps{Exposed: true, MaximumEntryCount: 64},
		General: GeneralCaps{DynamicStreamFormat: true, StorageAvailable: true},
	}
}

// completeCommand clears the execute bit and posts a return value once the
// command write reached the register space.
func completeCommand(m *transport.MemTransport, sec Section, op Opcode, ret uint32) {
	go func() {
		for m.WriteCount() == 0 {
			time.Sleep(time.Millisecond)
		}
		m.LoadRegion(sec.BusAddr(), quadlet.AppendUint32(nil, op.word()))
		m.LoadRegion(sec.BusAddr()+quadlet.Size, quadlet.AppendUint32(nil, ret))
	}()
}

func TestInitiate(t *testing.T) {
	m := transport.NewMemTransport()
	sec := Section{Offset: extensionBase + 0x40, Size: 0x10}
	op := Opcode{ID: OpLoadRouter, Rate: RateModeLow}
	completeCommand(m, sec, op, 1)

	ret, err := Initiate(m, sec, testCmdCaps(), op, testTimeout)
	if err != nil {
		t.Fatalf("Initiate failed: %v", err)
	}
	if ret != 1 {
		t.Errorf("return value = %d, want 1", ret)
	}

	var first *transport.Tx
	for _, tx := range m.Journal() {
		if tx.Kind == transport.TxWrite {
			first = &tx
			break
		}
	}
	if first == nil {
		t.Fatal("no command write journaled")
	}
	if first.Addr != sec.BusAddr() {
		t.Errorf("command write addr = %#x, want %#x", first.Addr, sec.BusAddr())
	}
	v, _ := quadlet.Uint32(first.Data)
	if v != op.word()|cmdExecute {
		t.Errorf("command word = %#08x, want %#08x", v, op.word()|cmdExecute)
	}
}

func TestInitiateTimeout(t *testing.T) {
	m := transport.NewMemTransport()
	sec := Section{Offset: extensionBase + 0x40, Size: 0x10}

	// Nothing clears the execute bit.
	_, err := Initiate(m, sec, testCmdCaps(), Opcode{ID: OpNoOp}, testTimeout)
	if !errors.Is(err, ErrCmdTimeout) {
		t.Errorf("got %v, want ErrCmdTimeout", err)
	}
}

func TestInitiateCapabilityGate(t *testing.T) {
	tests := []struct {
		name string
		op   OpcodeID
		caps func(*Caps)
		want error
	}{
		{
			name: "router load with read-only router",
			op:   OpLoadRouter,
			caps: func(c *Caps) { c.Router.ReadOnly = true },
			want: ErrReadOnly,
		},
		{
			name: "router load without router",
			op:   OpLoadRouter,
			caps: func(c *Caps) { c.Router.Exposed = false },
			want: ErrNotExposed,
		},
		{
			name: "stream config load with static formats",
			op:   OpLoadStreamConfig,
			caps: func(c *Caps) { c.General.DynamicStreamFormat = false },
			want: ErrReadOnly,
		},
		{
			name: "combined load with static formats",
			op:   OpLoadRouterStreamConfig,
			caps: func(c *Caps) { c.General.DynamicStreamFormat = false },
			want: ErrReadOnly,
		},
		{
			name: "store without storage",
			op:   OpStoreToFlash,
			caps: func(c *Caps) { c.General.StorageAvailable = false },
			want: ErrStorage,
		},
		{
			name: "load without storage",
			op:   OpLoadFromFlash,
			caps: func(c *Caps) { c.General.StorageAvailable = false },
			want: ErrStorage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := transport.NewMemTransport()
			sec := Section{Offset: extensionBase + 0x40, Size: 0x10}
			caps := testCmdCaps()
			tt.caps(caps)

			_, err := Initiate(m, sec, caps, Opcode{ID: tt.op, Rate: RateModeLow}, testTimeout)
			if !errors.Is(err, tt.want) {
				t.Errorf("got %v, want %v", err, tt.want)
			}
			if len(m.Journal()) != 0 {
				t.Error("gated command must not touch the bus")
			}
		})
	}
}

func TestRateModeFor(t *testing.T) {
	tests := []struct {
		rate ClockRate
		want RateMode
	}{
		{Rate32000, RateModeLow},
		{Rate44100, RateModeLow},
		{Rate48000, RateModeLow},
		{RateAnyLow, RateModeLow},
		{Rate88200, RateModeMiddle},
		{Rate96000, RateModeMiddle},
		{RateAnyMid, RateModeMiddle},
		{Rate176400, RateModeHigh},
		{Rate192000, RateModeHigh},
		{RateAnyHi, RateModeHigh},
	}

	for _, tt := range tests {
		if got := RateModeFor(tt.rate); got != tt.want {
			t.Errorf("RateModeFor(%v) = %#x, want %#x", tt.rate, got, tt.want)
		}
	}
}
