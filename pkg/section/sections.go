package section

import (
	"fmt"
	"time"

	"github.com/sndwire-protocol/sndwire-go/pkg/quadlet"
	"github.com/sndwire-protocol/sndwire-go/pkg/transport"
)

// BaseAddr is the bus address of the register space the section layout is
// relative to.
const BaseAddr uint64 = 0xffffe0000000

// extensionBase is the offset of the extension register space within the
// section address space.
const extensionBase = 0x00200000

// Section describes one named region of the register space. Offset and Size
// are in bytes; on the wire both are stored as quadlet counts.
type Section struct {
	Offset int
	Size   int
}

// BusAddr returns the absolute bus address of the section start.
func (s Section) BusAddr() uint64 {
	return BaseAddr + uint64(s.Offset)
}

const descriptorSize = 2 * quadlet.Size

func parseSection(raw []byte) (Section, error) {
	off, err := quadlet.Uint32(raw)
	if err != nil {
		return Section{}, err
	}
	size, err := quadlet.Uint32(raw[quadlet.Size:])
	if err != nil {
		return Section{}, err
	}
	return Section{Offset: 4 * int(off), Size: 4 * int(size)}, nil
}

func appendSection(buf []byte, s Section) []byte {
	buf = quadlet.AppendUint32(buf, uint32(s.Offset/4))
	return quadlet.AppendUint32(buf, uint32(s.Size/4))
}

// Sections is the general section layout read from the head of the register
// space. Fetched once at attach and immutable for the session.
type Sections struct {
	Global         Section
	TxStreamFormat Section
	RxStreamFormat Section
	ExtSync        Section
	Reserved       Section
}

// SectionsSize is the byte size of the general layout table.
const SectionsSize = 5 * descriptorSize

// ParseSections decodes the general layout table.
func ParseSections(raw []byte) (Sections, error) {
	if len(raw) < SectionsSize {
		return Sections{}, fmt.Errorf("%w: layout table needs %d bytes, have %d", ErrShortData, SectionsSize, len(raw))
	}
	var s Sections
	for i, dst := range []*Section{&s.Global, &s.TxStreamFormat, &s.RxStreamFormat, &s.ExtSync, &s.Reserved} {
		sec, err := parseSection(raw[i*descriptorSize:])
		if err != nil {
			return Sections{}, err
		}
		*dst = sec
	}
	return s, nil
}

// AppendSections encodes the general layout table.
func AppendSections(buf []byte, s Sections) []byte {
	for _, sec := range []Section{s.Global, s.TxStreamFormat, s.RxStreamFormat, s.ExtSync, s.Reserved} {
		buf = appendSection(buf, sec)
	}
	return buf
}

// ReadSections fetches the general layout table from the device.
func ReadSections(t transport.Transport, timeout time.Duration) (Sections, error) {
	raw, err := t.Read(BaseAddr, SectionsSize, timeout)
	if err != nil {
		return Sections{}, err
	}
	return ParseSections(raw)
}

// ExtensionSections is the layout of the extension register space. The
// parsed offsets are absolute within the section address space, so every
// Section carries its own bus address.
type ExtensionSections struct {
	Caps          Section
	Cmd           Section
	Mixer         Section
	Peak          Section
	Router        Section
	StreamFormat  Section
	CurrentConfig Section
	Standalone    Section
	Application   Section
}

// ExtensionSectionsSize is the byte size of the extension layout table.
const ExtensionSectionsSize = 9 * descriptorSize

// ParseExtensionSections decodes the extension layout table. Offsets are
// rebased onto the section address space.
func ParseExtensionSections(raw []byte) (ExtensionSections, error) {
	if len(raw) < ExtensionSectionsSize {
		return ExtensionSections{}, fmt.Errorf("%w: extension table needs %d bytes, have %d", ErrShortData, ExtensionSectionsSize, len(raw))
	}
	var s ExtensionSections
	for i, dst := range []*Section{
		&s.Caps, &s.Cmd, &s.Mixer, &s.Peak, &s.Router,
		&s.StreamFormat, &s.CurrentConfig, &s.Standalone, &s.Application,
	} {
		sec, err := parseSection(raw[i*descriptorSize:])
		if err != nil {
			return ExtensionSections{}, err
		}
		sec.Offset += extensionBase
		*dst = sec
	}
	return s, nil
}

// ReadExtensionSections fetches the extension layout table from the device.
func ReadExtensionSections(t transport.Transport, timeout time.Duration) (ExtensionSections, error) {
	raw, err := t.Read(BaseAddr+extensionBase, ExtensionSectionsSize, timeout)
	if err != nil {
		return ExtensionSections{}, err
	}
	return ParseExtensionSections(raw)
}

// Notification word bits. Each bit statically maps to "re-read this section".
const (
	NotifyRxCfgChg      uint32 = 0x00000001
	NotifyTxCfgChg      uint32 = 0x00000002
	NotifyLockChg       uint32 = 0x00000010
	NotifyClockAccepted uint32 = 0x00000020
	NotifyExtStatus     uint32 = 0x00000040
)
