package avc

import "fmt"

// SubunitType identifies the kind of subunit within a unit.
type SubunitType uint8

const (
	SubunitMonitor       SubunitType = 0x00
	SubunitAudio         SubunitType = 0x01
	SubunitPrinter       SubunitType = 0x02
	SubunitDisc          SubunitType = 0x03
	SubunitTape          SubunitType = 0x04
	SubunitTuner         SubunitType = 0x05
	SubunitCa            SubunitType = 0x06
	SubunitCamera        SubunitType = 0x07
	SubunitPanel         SubunitType = 0x09
	SubunitBulletinBoard SubunitType = 0x0a
	SubunitCameraStorage SubunitType = 0x0b
	SubunitMusic         SubunitType = 0x0c
	SubunitVendorUnique  SubunitType = 0x1c
	SubunitExtended      SubunitType = 0x1e
)

// String returns the subunit type name.
func (s SubunitType) String() string {
	switch s {
	case SubunitMonitor:
		return "monitor"
	case SubunitAudio:
		return "audio"
	case SubunitPrinter:
		return "printer"
	case SubunitDisc:
		return "disc"
	case SubunitTape:
		return "tape"
	case SubunitTuner:
		return "tuner"
	case SubunitCa:
		return "ca"
	case SubunitCamera:
		return "camera"
	case SubunitPanel:
		return "panel"
	case SubunitBulletinBoard:
		return "bulletin-board"
	case SubunitCameraStorage:
		return "camera-storage"
	case SubunitMusic:
		return "music"
	case SubunitVendorUnique:
		return "vendor-unique"
	case SubunitExtended:
		return "extended"
	default:
		return fmt.Sprintf("reserved(%#x)", uint8(s))
	}
}

// Addr is the one-byte AV/C address: 0xff for the unit itself, otherwise a
// subunit type and id packed into one byte.
type Addr uint8

// AddrUnit addresses the unit.
const AddrUnit Addr = 0xff

const (
	subunitTypeShift = 3
	subunitTypeMask  = 0x1f
	subunitIDMask    = 0x07
)

// SubunitAddr builds the address of a subunit.
func SubunitAddr(t SubunitType, id uint8) Addr {
	return Addr((uint8(t)&subunitTypeMask)<<subunitTypeShift | id&subunitIDMask)
}

// Addresses of the first audio and music subunits, for convenience.
var (
	AudioSubunit0 = SubunitAddr(SubunitAudio, 0)
	MusicSubunit0 = SubunitAddr(SubunitMusic, 0)
)

// SubunitType returns the subunit type encoded in a subunit address.
func (a Addr) SubunitType() SubunitType {
	return SubunitType((uint8(a) >> subunitTypeShift) & subunitTypeMask)
}

// SubunitID returns the subunit id encoded in a subunit address.
func (a Addr) SubunitID() uint8 {
	return uint8(a) & subunitIDMask
}

// String returns the address in unit or type/id form.
func (a Addr) String() string {
	if a == AddrUnit {
		return "unit"
	}
	return fmt.Sprintf("%s/%d", a.SubunitType(), a.SubunitID())
}

// CmdType is the command type of a transaction.
type CmdType uint8

const (
	CmdControl         CmdType = 0x00
	CmdStatus          CmdType = 0x01
	CmdSpecificInquiry CmdType = 0x02
	CmdNotify          CmdType = 0x03
	CmdGeneralInquiry  CmdType = 0x04
)

// String returns the command type name.
func (c CmdType) String() string {
	switch c {
	case CmdControl:
		return "CONTROL"
	case CmdStatus:
		return "STATUS"
	case CmdSpecificInquiry:
		return "SPECIFIC-INQUIRY"
	case CmdNotify:
		return "NOTIFY"
	case CmdGeneralInquiry:
		return "GENERAL-INQUIRY"
	default:
		return fmt.Sprintf("reserved(%#x)", uint8(c))
	}
}

// RespCode is the response code of a transaction.
type RespCode uint8

const (
	RespNotImplemented    RespCode = 0x08
	RespAccepted          RespCode = 0x09
	RespRejected          RespCode = 0x0a
	RespInTransition      RespCode = 0x0b
	RespImplementedStable RespCode = 0x0c
	RespChanged           RespCode = 0x0d
	RespInterim           RespCode = 0x0f
)

// String returns the response code name.
func (r RespCode) String() string {
	switch r {
	case RespNotImplemented:
		return "NOT-IMPLEMENTED"
	case RespAccepted:
		return "ACCEPTED"
	case RespRejected:
		return "REJECTED"
	case RespInTransition:
		return "IN-TRANSITION"
	case RespImplementedStable:
		return "IMPLEMENTED-STABLE"
	case RespChanged:
		return "CHANGED"
	case RespInterim:
		return "INTERIM"
	default:
		return fmt.Sprintf("reserved(%#x)", uint8(r))
	}
}

// Op is an AV/C operation identified by its opcode.
type Op interface {
	Opcode() uint8
}

// ControlOp is an operation usable with a control command.
type ControlOp interface {
	Op
	BuildControlOperands(addr Addr) ([]byte, error)
	ParseControlOperands(addr Addr, operands []byte) error
}

// StatusOp is an operation usable with a status command.
type StatusOp interface {
	Op
	BuildStatusOperands(addr Addr) ([]byte, error)
	ParseStatusOperands(addr Addr, operands []byte) error
}
