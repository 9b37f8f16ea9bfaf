package avc

import "fmt"

// Opcodes of the operations implemented here.
const (
	OpcodeOutputPlugSignalFormat uint8 = 0x18
	OpcodeInputPlugSignalFormat  uint8 = 0x19
	OpcodeSignalSource           uint8 = 0x1a
)

const (
	extPlugFlag = 0x80
	plugIDMask  = 0x7f
)

// SignalAddr identifies one plug of the unit or of a subunit for signal
// routing. The wire form is two bytes: address byte then plug byte, with the
// high bit of the plug byte marking external unit plugs.
type SignalAddr struct {
	Addr     Addr
	PlugID   uint8
	External bool
}

// UnitSignalAddr builds the address of an isochronous unit plug.
func UnitSignalAddr(plugID uint8) SignalAddr {
	return SignalAddr{Addr: AddrUnit, PlugID: plugID & plugIDMask}
}

// ExtUnitSignalAddr builds the address of an external unit plug.
func ExtUnitSignalAddr(plugID uint8) SignalAddr {
	return SignalAddr{Addr: AddrUnit, PlugID: plugID & plugIDMask, External: true}
}

// SubunitSignalAddr builds the address of a subunit plug.
func SubunitSignalAddr(t SubunitType, id, plugID uint8) SignalAddr {
	return SignalAddr{Addr: SubunitAddr(t, id), PlugID: plugID}
}

func (a SignalAddr) encode() [2]byte {
	plug := a.PlugID
	if a.Addr == AddrUnit && a.External {
		plug |= extPlugFlag
	}
	return [2]byte{uint8(a.Addr), plug}
}

func decodeSignalAddr(raw []byte) SignalAddr {
	if Addr(raw[0]) == AddrUnit {
		return SignalAddr{
			Addr:     AddrUnit,
			PlugID:   raw[1] & plugIDMask,
			External: raw[1]&extPlugFlag > 0,
		}
	}
	return SignalAddr{Addr: Addr(raw[0]), PlugID: raw[1]}
}

// SignalSource selects which source plug feeds a destination plug.
type SignalSource struct {
	Src SignalAddr
	Dst SignalAddr
}

// Opcode implements Op.
func (*SignalSource) Opcode() uint8 { return OpcodeSignalSource }

// BuildControlOperands implements ControlOp.
func (s *SignalSource) BuildControlOperands(Addr) ([]byte, error) {
	src := s.Src.encode()
	dst := s.Dst.encode()
	return []byte{0xff, src[0], src[1], dst[0], dst[1]}, nil
}

// ParseControlOperands implements ControlOp.
func (s *SignalSource) ParseControlOperands(_ Addr, operands []byte) error {
	return s.parse(operands)
}

// BuildStatusOperands implements StatusOp. The source field is wildcarded;
// the device fills in the plug currently feeding Dst.
func (s *SignalSource) BuildStatusOperands(Addr) ([]byte, error) {
	dst := s.Dst.encode()
	return []byte{0xff, 0xff, 0xfe, dst[0], dst[1]}, nil
}

// ParseStatusOperands implements StatusOp.
func (s *SignalSource) ParseStatusOperands(_ Addr, operands []byte) error {
	return s.parse(operands)
}

func (s *SignalSource) parse(operands []byte) error {
	if len(operands) < 5 {
		return fmt.Errorf("%w: signal source needs 5, got %d", ErrShortResponse, len(operands))
	}
	s.Src = decodeSignalAddr(operands[1:3])
	s.Dst = decodeSignalAddr(operands[3:5])
	return nil
}

// PlugSignalFormat carries the stream format of one isochronous plug:
// the format field and its three format-dependent bytes.
type PlugSignalFormat struct {
	PlugID uint8
	FMT    uint8
	FDF    [3]uint8
}

func (p *PlugSignalFormat) buildControl() []byte {
	return []byte{p.PlugID, p.FMT, p.FDF[0], p.FDF[1], p.FDF[2]}
}

func (p *PlugSignalFormat) buildStatus() []byte {
	return []byte{p.PlugID, 0xff, 0xff, 0xff, 0xff}
}

func (p *PlugSignalFormat) parse(operands []byte) error {
	if len(operands) < 5 {
		return fmt.Errorf("%w: plug signal format needs 5, got %d", ErrShortResponse, len(operands))
	}
	p.PlugID = operands[0]
	p.FMT = operands[1]
	copy(p.FDF[:], operands[2:5])
	return nil
}

// InputPlugSignalFormat configures or queries the format of an input plug.
type InputPlugSignalFormat struct {
	PlugSignalFormat
}

// Opcode implements Op.
func (*InputPlugSignalFormat) Opcode() uint8 { return OpcodeInputPlugSignalFormat }

// BuildControlOperands implements ControlOp.
func (f *InputPlugSignalFormat) BuildControlOperands(Addr) ([]byte, error) {
	return f.buildControl(), nil
}

// ParseControlOperands implements ControlOp.
func (f *InputPlugSignalFormat) ParseControlOperands(_ Addr, operands []byte) error {
	return f.parse(operands)
}

// BuildStatusOperands implements StatusOp.
func (f *InputPlugSignalFormat) BuildStatusOperands(Addr) ([]byte, error) {
	return f.buildStatus(), nil
}

// ParseStatusOperands implements StatusOp.
func (f *InputPlugSignalFormat) ParseStatusOperands(_ Addr, operands []byte) error {
	return f.parse(operands)
}

// OutputPlugSignalFormat configures or queries the format of an output plug.
type OutputPlugSignalFormat struct {
	PlugSignalFormat
}

// Opcode implements Op.
func (*OutputPlugSignalFormat) Opcode() uint8 { return OpcodeOutputPlugSignalFormat }

// BuildControlOperands implements ControlOp.
func (f *OutputPlugSignalFormat) BuildControlOperands(Addr) ([]byte, error) {
	return f.buildControl(), nil
}

// ParseControlOperands implements ControlOp.
func (f *OutputPlugSignalFormat) ParseControlOperands(_ Addr, operands []byte) error {
	return f.parse(operands)
}

// BuildStatusOperands implements StatusOp.
func (f *OutputPlugSignalFormat) BuildStatusOperands(Addr) ([]byte, error) {
	return f.buildStatus(), nil
}

// ParseStatusOperands implements StatusOp.
func (f *OutputPlugSignalFormat) ParseStatusOperands(_ Addr, operands []byte) error {
	return f.parse(operands)
}
