package section

import (
	"fmt"

	"github.com/sndwire-protocol/sndwire-go/pkg/quadlet"
)

// SrcBlockID identifies a source block of the routing matrix.
type SrcBlockID uint8

const (
	SrcBlockAes   SrcBlockID = 0
	SrcBlockAdat  SrcBlockID = 1
	SrcBlockMixer SrcBlockID = 2
	SrcBlockIns0  SrcBlockID = 4
	SrcBlockIns1  SrcBlockID = 5
	SrcBlockApb   SrcBlockID = 10
	SrcBlockAvs0  SrcBlockID = 11
	SrcBlockAvs1  SrcBlockID = 12
	SrcBlockMute  SrcBlockID = 15
)

// DstBlockID identifies a destination block of the routing matrix.
type DstBlockID uint8

const (
	DstBlockAes      DstBlockID = 0
	DstBlockAdat     DstBlockID = 1
	DstBlockMixerTx0 DstBlockID = 2
	DstBlockMixerTx1 DstBlockID = 3
	DstBlockIns0     DstBlockID = 4
	DstBlockIns1     DstBlockID = 5
	DstBlockApb      DstBlockID = 10
	DstBlockAvs0     DstBlockID = 11
	DstBlockAvs1     DstBlockID = 12
)

func (id SrcBlockID) String() string {
	switch id {
	case SrcBlockAes:
		return "aes"
	case SrcBlockAdat:
		return "adat"
	case SrcBlockMixer:
		return "mixer"
	case SrcBlockIns0:
		return "ins0"
	case SrcBlockIns1:
		return "ins1"
	case SrcBlockApb:
		return "apb"
	case SrcBlockAvs0:
		return "avs0"
	case SrcBlockAvs1:
		return "avs1"
	case SrcBlockMute:
		return "mute"
	default:
		return "reserved"
	}
}

func (id DstBlockID) String() string {
	switch id {
	case DstBlockAes:
		return "aes"
	case DstBlockAdat:
		return "adat"
	case DstBlockMixerTx0:
		return "mixer-tx0"
	case DstBlockMixerTx1:
		return "mixer-tx1"
	case DstBlockIns0:
		return "ins0"
	case DstBlockIns1:
		return "ins1"
	case DstBlockApb:
		return "apb"
	case DstBlockAvs0:
		return "avs0"
	case DstBlockAvs1:
		return "avs1"
	default:
		return "reserved"
	}
}

// SrcBlock addresses one channel of a source block. The wire form packs the
// block id into the high nibble and the channel into the low nibble.
type SrcBlock struct {
	ID SrcBlockID
	Ch uint8
}

func (b SrcBlock) String() string {
	return fmt.Sprintf("%s/%d", b.ID, b.Ch)
}

func (b SrcBlock) byteValue() uint8 {
	return uint8(b.ID)<<4 | b.Ch&0x0f
}

func srcBlockFromByte(v uint8) SrcBlock {
	return SrcBlock{ID: SrcBlockID(v >> 4), Ch: v & 0x0f}
}

// DstBlock addresses one channel of a destination block.
type DstBlock struct {
	ID DstBlockID
	Ch uint8
}

func (b DstBlock) String() string {
	return fmt.Sprintf("%s/%d", b.ID, b.Ch)
}

func (b DstBlock) byteValue() uint8 {
	return uint8(b.ID)<<4 | b.Ch&0x0f
}

func dstBlockFromByte(v uint8) DstBlock {
	return DstBlock{ID: DstBlockID(v >> 4), Ch: v & 0x0f}
}

// RouterEntry is one route of the routing matrix. Peak is the metered signal
// level of the route, maintained by hardware; it never appears in write
// images.
type RouterEntry struct {
	Src  SrcBlock
	Dst  DstBlock
	Peak uint16
}

func routerEntryWord(e RouterEntry, withPeak bool) uint32 {
	v := uint32(e.Src.byteValue())<<8 | uint32(e.Dst.byteValue())
	if withPeak {
		v |= uint32(e.Peak) << 16
	}
	return v
}

func routerEntryFromWord(v uint32) RouterEntry {
	return RouterEntry{
		Src:  srcBlockFromByte(uint8(v >> 8)),
		Dst:  dstBlockFromByte(uint8(v)),
		Peak: uint16(v >> 16),
	}
}

// RouterParams is the parameter set of the router section: a count-prefixed
// list of routes, bounded by the router capability.
type RouterParams struct {
	Entries []RouterEntry
}

const routerSectionName = "router"

func (*RouterParams) SectionName() string { return routerSectionName }
func (*RouterParams) MinSize() int        { return quadlet.Size }

// The router section is reloaded through the command section, not the
// general notification word.
func (*RouterParams) NotifyMask() uint32 { return 0 }

func (*RouterParams) Writable(caps *Caps) error {
	if !caps.Router.Exposed {
		return ErrNotExposed
	}
	if caps.Router.ReadOnly {
		return ErrReadOnly
	}
	return nil
}

func checkRouterCount(count int, caps *Caps, have int) error {
	if count > int(caps.Router.MaximumEntryCount) {
		return fmt.Errorf("%w: %d router entries, limit %d", ErrCountExceedsCaps, count, caps.Router.MaximumEntryCount)
	}
	if need := quadlet.Size * (1 + count); have < need {
		return fmt.Errorf("%w: need %d bytes for %d entries, have %d", ErrShortData, need, count, have)
	}
	return nil
}

func (p *RouterParams) Encode(caps *Caps, raw []byte) error {
	if err := checkRouterCount(len(p.Entries), caps, len(raw)); err != nil {
		return err
	}
	buf := quadlet.AppendUint32(raw[:0], uint32(len(p.Entries)))
	for _, e := range p.Entries {
		buf = quadlet.AppendUint32(buf, routerEntryWord(e, false))
	}
	return nil
}

func (p *RouterParams) Decode(caps *Caps, raw []byte) error {
	count, err := quadlet.Uint32(raw)
	if err != nil {
		return err
	}
	if err := checkRouterCount(int(count), caps, len(raw)); err != nil {
		return err
	}
	p.Entries = make([]RouterEntry, count)
	for i := range p.Entries {
		v, _ := quadlet.Uint32(raw[quadlet.Size*(1+i):])
		p.Entries[i] = routerEntryFromWord(v)
	}
	return nil
}

// PeakParams mirrors the peak section: the routed entries with their metered
// levels, read-only and refreshed by the metering timer.
type PeakParams struct {
	Entries []RouterEntry
}

const peakSectionName = "peak"

func (*PeakParams) SectionName() string { return peakSectionName }
func (*PeakParams) MinSize() int        { return quadlet.Size }
func (*PeakParams) NotifyMask() uint32  { return 0 }

// Encode exists to satisfy Params; the peak section is never written.
func (p *PeakParams) Encode(*Caps, []byte) error {
	return ErrReadOnly
}

func (p *PeakParams) Decode(caps *Caps, raw []byte) error {
	if !caps.General.PeakAvailable {
		return ErrNotExposed
	}
	count := quadlet.Count(raw)
	if max := int(caps.Router.MaximumEntryCount); count > max {
		count = max
	}
	p.Entries = make([]RouterEntry, count)
	for i := range p.Entries {
		v, _ := quadlet.Uint32(raw[quadlet.Size*i:])
		p.Entries[i] = routerEntryFromWord(v)
	}
	return nil
}

// Compile-time interface satisfaction checks.
var (
	_ Mutable = (*RouterParams)(nil)
	_ Params  = (*PeakParams)(nil)
)
