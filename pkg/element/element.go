package element

import (
	"errors"
	"fmt"
)

// Element errors. ErrNotFound is non-fatal: the caller tries the next
// bridge.
var (
	ErrNotFound   = errors.New("element not found")
	ErrRange      = errors.New("value out of range")
	ErrValueCount = errors.New("wrong number of channel values")
	ErrReadOnly   = errors.New("element is read-only")
)

// Iface is the surface interface an element belongs to.
type Iface uint8

const (
	IfaceCard Iface = iota
	IfaceMixer
)

func (i Iface) String() string {
	switch i {
	case IfaceCard:
		return "card"
	case IfaceMixer:
		return "mixer"
	default:
		return "unknown"
	}
}

// ID identifies one element on the surface.
type ID struct {
	Iface Iface
	Name  string
	Index int
}

func (id ID) String() string {
	return fmt.Sprintf("%s/%s/%d", id.Iface, id.Name, id.Index)
}

// Kind is the value type of an element.
type Kind uint8

const (
	KindBool Kind = iota
	KindEnum
	KindInt
)

// DBInterval describes the decibel range of an integer element, published to
// the surface as a TLV blob.
type DBInterval struct {
	// Min and Max are in centi-dB.
	Min    int32
	Max    int32
	Linear bool
}

// TLV type values of the surface convention.
const (
	tlvTypeDBMinMax = 4
	tlvTypeDBLinear = 2
)

// TLV returns the interval as surface TLV words: type, payload length in
// bytes, then the range.
func (d DBInterval) TLV() []uint32 {
	t := uint32(tlvTypeDBMinMax)
	if d.Linear {
		t = tlvTypeDBLinear
	}
	return []uint32{t, 8, uint32(d.Min), uint32(d.Max)}
}

// Descriptor announces one element to the surface.
type Descriptor struct {
	ID       ID
	Kind     Kind
	Count    int
	Writable bool

	// Labels are the enumerated choices, in wire order.
	Labels []string

	// Integer range.
	Min  int32
	Max  int32
	Step int32
	DB   *DBInterval
}

// Value holds the per-channel values of one element. Exactly the slice
// matching the element kind is populated.
type Value struct {
	Bools []bool
	Enums []int
	Ints  []int32
}

// BoolValue builds a boolean value.
func BoolValue(vals ...bool) Value { return Value{Bools: vals} }

// EnumValue builds an enumerated value of label indexes.
func EnumValue(idxs ...int) Value { return Value{Enums: idxs} }

// IntValue builds an integer value.
func IntValue(vals ...int32) Value { return Value{Ints: vals} }

// Bridge maps a group of elements onto parameter fields.
type Bridge interface {
	// Load announces the bridge's elements for the attached device. A
	// bridge whose sections the device does not expose returns no
	// descriptors.
	Load(dev *Device) ([]Descriptor, error)

	// Read fills the current value of id from the device cache. Unknown
	// ids yield ErrNotFound so the caller can try the next bridge.
	Read(dev *Device, id ID) (Value, error)

	// Write validates and applies a surface value. Unknown ids yield
	// ErrNotFound; invalid values are rejected before any bus traffic.
	Write(dev *Device, id ID, old, val Value) error

	// NotifiedElems lists the elements whose values hardware changes
	// asynchronously.
	NotifiedElems() []ID
}

// Surface is the consumed host control surface.
type Surface interface {
	AddElements(descs []Descriptor) error
	NotifyValueChange(ids []ID)
}
