package section

import (
	"fmt"
	"time"

	"github.com/sndwire-protocol/sndwire-go/pkg/quadlet"
	"github.com/sndwire-protocol/sndwire-go/pkg/transport"
)

// RouterCaps are the read-only limits of the router function.
type RouterCaps struct {
	Exposed  bool
	ReadOnly bool
	Storable bool
	// MaximumEntryCount bounds every router (de)serialization.
	MaximumEntryCount uint16
}

func routerCapsFromWord(v uint32) RouterCaps {
	return RouterCaps{
		Exposed:           v&0x1 > 0,
		ReadOnly:          v&0x2 > 0,
		Storable:          v&0x4 > 0,
		MaximumEntryCount: uint16(v >> 16),
	}
}

func routerCapsWord(c RouterCaps) uint32 {
	var v uint32
	if c.Exposed {
		v |= 0x1
	}
	if c.ReadOnly {
		v |= 0x2
	}
	if c.Storable {
		v |= 0x4
	}
	return v | uint32(c.MaximumEntryCount)<<16
}

// MixerCaps are the read-only limits of the mixer function.
type MixerCaps struct {
	Exposed        bool
	ReadOnly       bool
	Storable       bool
	InputDeviceID  uint8
	OutputDeviceID uint8
	InputCount     uint8
	OutputCount    uint8
}

func mixerCapsFromWord(v uint32) MixerCaps {
	return MixerCaps{
		Exposed:        v&0x1 > 0,
		ReadOnly:       v&0x2 > 0,
		Storable:       v&0x4 > 0,
		InputDeviceID:  uint8(v >> 4 & 0xf),
		OutputDeviceID: uint8(v >> 8 & 0xf),
		InputCount:     uint8(v >> 16),
		OutputCount:    uint8(v >> 24),
	}
}

func mixerCapsWord(c MixerCaps) uint32 {
	var v uint32
	if c.Exposed {
		v |= 0x1
	}
	if c.ReadOnly {
		v |= 0x2
	}
	if c.Storable {
		v |= 0x4
	}
	v |= uint32(c.InputDeviceID&0xf) << 4
	v |= uint32(c.OutputDeviceID&0xf) << 8
	v |= uint32(c.InputCount) << 16
	v |= uint32(c.OutputCount) << 24
	return v
}

// AsicType identifies the chip generation.
type AsicType uint16

const (
	AsicII AsicType = iota
	AsicMini
	AsicJunior
)

func (a AsicType) String() string {
	switch a {
	case AsicII:
		return "II"
	case AsicMini:
		return "mini"
	case AsicJunior:
		return "junior"
	default:
		return fmt.Sprintf("unknown(%d)", uint16(a))
	}
}

// GeneralCaps are the read-only limits of the streaming function.
type GeneralCaps struct {
	DynamicStreamFormat  bool
	StorageAvailable     bool
	PeakAvailable        bool
	MaxTxStreams         uint8
	MaxRxStreams         uint8
	StreamFormatStorable bool
	Asic                 AsicType
}

func generalCapsFromWord(v uint32) (GeneralCaps, error) {
	asic := AsicType(v >> 16)
	if asic > AsicJunior {
		return GeneralCaps{}, fmt.Errorf("unknown ASIC type value %d", uint16(asic))
	}
	return GeneralCaps{
		DynamicStreamFormat:  v&0x1 > 0,
		StorageAvailable:     v&0x2 > 0,
		PeakAvailable:        v&0x4 > 0,
		MaxTxStreams:         uint8(v >> 4 & 0xf),
		MaxRxStreams:         uint8(v >> 8 & 0xf),
		StreamFormatStorable: v&0x1000 > 0,
		Asic:                 asic,
	}, nil
}

func generalCapsWord(c GeneralCaps) uint32 {
	var v uint32
	if c.DynamicStreamFormat {
		v |= 0x1
	}
	if c.StorageAvailable {
		v |= 0x2
	}
	if c.PeakAvailable {
		v |= 0x4
	}
	v |= uint32(c.MaxTxStreams&0xf) << 4
	v |= uint32(c.MaxRxStreams&0xf) << 8
	if c.StreamFormatStorable {
		v |= 0x1000
	}
	return v | uint32(c.Asic)<<16
}

// Caps is the capability block of the device: three read-only quadlets
// fetched once at attach, bounding all later (de)serialization.
type Caps struct {
	Router  RouterCaps
	Mixer   MixerCaps
	General GeneralCaps
}

// CapsSize is the byte size of the capability block.
const CapsSize = 3 * quadlet.Size

const capsSectionName = "caps"

// ParseCaps decodes the capability block.
func ParseCaps(raw []byte) (Caps, error) {
	if len(raw) < CapsSize {
		return Caps{}, secErrf(capsSectionName, "%w: need %d bytes, have %d", ErrShortData, CapsSize, len(raw))
	}
	var c Caps
	v, _ := quadlet.Uint32(raw)
	c.Router = routerCapsFromWord(v)
	v, _ = quadlet.Uint32(raw[quadlet.Size:])
	c.Mixer = mixerCapsFromWord(v)
	v, _ = quadlet.Uint32(raw[2*quadlet.Size:])
	general, err := generalCapsFromWord(v)
	if err != nil {
		return Caps{}, secErr(capsSectionName, err)
	}
	c.General = general
	return c, nil
}

// AppendCaps encodes the capability block.
func AppendCaps(buf []byte, c Caps) []byte {
	buf = quadlet.AppendUint32(buf, routerCapsWord(c.Router))
	buf = quadlet.AppendUint32(buf, mixerCapsWord(c.Mixer))
	return quadlet.AppendUint32(buf, generalCapsWord(c.General))
}

// ReadCaps fetches the capability block from the device.
func ReadCaps(t transport.Transport, sections ExtensionSections, timeout time.Duration) (Caps, error) {
	if sections.Caps.Size < CapsSize {
		return Caps{}, secErrf(capsSectionName, "%w: declared %d, need %d", ErrTooSmall, sections.Caps.Size, CapsSize)
	}
	raw, err := t.Read(sections.Caps.BusAddr(), CapsSize, timeout)
	if err != nil {
		return Caps{}, secErr(capsSectionName, err)
	}
	return ParseCaps(raw)
}
