package avc

import (
	"errors"
	"fmt"
	"time"

	"github.com/sndwire-protocol/sndwire-go/pkg/transport"
)

// Client errors.
var (
	ErrUnexpectedResponse = errors.New("unexpected response code")
	ErrShortResponse      = errors.New("response operands too short")
)

// respPolicy lists the response codes a control command may be answered with
// for one opcode. Firmware of several generations answers the listed opcodes
// with reserved code 0x00 instead of Accepted; the allowance is data here so
// the transaction path stays free of per-device conditionals.
var respPolicy = map[uint8][]RespCode{
	OpcodeOutputPlugSignalFormat: {RespAccepted, RespCode(0x00)},
	OpcodeInputPlugSignalFormat:  {RespAccepted, RespCode(0x00)},
	OpcodeSignalSource:           {RespAccepted, RespCode(0x00)},
}

func controlAccepts(opcode uint8, code RespCode) bool {
	if allowed, ok := respPolicy[opcode]; ok {
		for _, c := range allowed {
			if c == code {
				return true
			}
		}
		return false
	}
	return code == RespAccepted
}

// Client performs AV/C transactions over a transport. It holds no state
// between calls.
type Client struct {
	t transport.Transport
}

// NewClient creates a client over the given transport.
func NewClient(t transport.Transport) *Client {
	return &Client{t: t}
}

// Control performs a control command: builds the operand buffer, runs one
// bounded exchange and classifies the response code against the per-opcode
// policy before parsing the response operands back into op.
func (c *Client) Control(addr Addr, op ControlOp, timeout time.Duration) error {
	operands, err := op.BuildControlOperands(addr)
	if err != nil {
		return fmt.Errorf("build operands for opcode %#x: %w", op.Opcode(), err)
	}
	code, resp, err := c.t.Command(uint8(addr), op.Opcode(), operands, timeout)
	if err != nil {
		return err
	}
	if !controlAccepts(op.Opcode(), RespCode(code)) {
		return fmt.Errorf("%w: control opcode %#x answered %s", ErrUnexpectedResponse, op.Opcode(), RespCode(code))
	}
	return op.ParseControlOperands(addr, resp)
}

// Status performs a status command, requiring ImplementedStable.
func (c *Client) Status(addr Addr, op StatusOp, timeout time.Duration) error {
	operands, err := op.BuildStatusOperands(addr)
	if err != nil {
		return fmt.Errorf("build operands for opcode %#x: %w", op.Opcode(), err)
	}
	code, resp, err := c.t.Command(uint8(addr), op.Opcode(), operands, timeout)
	if err != nil {
		return err
	}
	if RespCode(code) != RespImplementedStable {
		return fmt.Errorf("%w: status opcode %#x answered %s", ErrUnexpectedResponse, op.Opcode(), RespCode(code))
	}
	return op.ParseStatusOperands(addr, resp)
}
