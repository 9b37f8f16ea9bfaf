package section

import (
	"time"

	"github.com/sndwire-protocol/sndwire-go/pkg/quadlet"
	"github.com/sndwire-protocol/sndwire-go/pkg/transport"
)

// OpcodeID selects a command section operation.
type OpcodeID uint32

const (
	OpNoOp                   OpcodeID = 0x00
	OpLoadRouter             OpcodeID = 0x01
	OpLoadStreamConfig       OpcodeID = 0x02
	OpLoadRouterStreamConfig OpcodeID = 0x03
	OpLoadFromFlash          OpcodeID = 0x04
	OpStoreToFlash           OpcodeID = 0x05
)

// RateMode selects the rate range a load command applies to.
type RateMode uint32

const (
	RateModeLow    RateMode = 0x00010000
	RateModeMiddle RateMode = 0x00020000
	RateModeHigh   RateMode = 0x00040000
)

// RateModeFor maps a clock rate onto its rate range.
func RateModeFor(rate ClockRate) RateMode {
	switch {
	case rate == Rate88200 || rate == Rate96000 || rate == RateAnyMid:
		return RateModeMiddle
	case rate == Rate176400 || rate == Rate192000 || rate == RateAnyHi:
		return RateModeHigh
	default:
		return RateModeLow
	}
}

// Opcode is a fully qualified command: the operation and the rate range it
// targets. The rate range is ignored by flash and no-op commands.
type Opcode struct {
	ID   OpcodeID
	Rate RateMode
}

func (o Opcode) word() uint32 {
	return uint32(o.ID) | uint32(o.Rate)
}

// The execute bit is set by the driver and cleared by the device once the
// command finished.
const cmdExecute uint32 = 0x80000000

const cmdSectionName = "cmd"

const (
	cmdPollCount    = 10
	cmdPollInterval = 50 * time.Millisecond
)

func checkOpcode(op Opcode, caps *Caps) error {
	switch op.ID {
	case OpLoadRouter, OpLoadRouterStreamConfig:
		if !caps.Router.Exposed {
			return ErrNotExposed
		}
		if caps.Router.ReadOnly {
			return ErrReadOnly
		}
	}
	switch op.ID {
	case OpLoadStreamConfig, OpLoadRouterStreamConfig:
		if !caps.General.DynamicStreamFormat {
			return ErrReadOnly
		}
	}
	switch op.ID {
	case OpLoadFromFlash, OpStoreToFlash:
		if !caps.General.StorageAvailable {
			return ErrStorage
		}
	}
	return nil
}

// Initiate issues a command and waits for the device to finish it. The
// capability gate runs before any bus transaction; a command the device
// cannot honor never reaches it. The device's return value is reported once
// the execute bit clears.
func Initiate(t transport.Transport, sec Section, caps *Caps, op Opcode, timeout time.Duration) (uint32, error) {
	if err := checkOpcode(op, caps); err != nil {
		return 0, secErr(cmdSectionName, err)
	}

	frame := quadlet.AppendUint32(nil, op.word()|cmdExecute)
	if err := t.Write(sec.BusAddr(), frame, timeout); err != nil {
		return 0, secErr(cmdSectionName, err)
	}

	done := false
	for i := 0; i < cmdPollCount; i++ {
		raw, err := t.Read(sec.BusAddr(), quadlet.Size, timeout)
		if err != nil {
			return 0, secErr(cmdSectionName, err)
		}
		v, err := quadlet.Uint32(raw)
		if err != nil {
			return 0, secErr(cmdSectionName, err)
		}
		if v&cmdExecute == 0 {
			done = true
			break
		}
		time.Sleep(cmdPollInterval)
	}
	if !done {
		return 0, secErr(cmdSectionName, ErrCmdTimeout)
	}

	raw, err := t.Read(sec.BusAddr()+quadlet.Size, quadlet.Size, timeout)
	if err != nil {
		return 0, secErr(cmdSectionName, err)
	}
	ret, err := quadlet.Uint32(raw)
	if err != nil {
		return 0, secErr(cmdSectionName, err)
	}
	return ret, nil
}
