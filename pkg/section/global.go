package section

import (
	"strings"

	"github.com/sndwire-protocol/sndwire-go/pkg/quadlet"
)

// Global section register offsets.
const (
	globalOwner        = 0x00
	globalLatestNotify = 0x08
	globalNickname     = 0x0c
	globalClockSelect  = 0x4c
	globalEnabled      = 0x50
	globalStatus       = 0x54
	globalExtStatus    = 0x58
	globalCurrentRate  = 0x5c
	globalVersion      = 0x60
	globalClockCaps    = 0x64
	globalClockNames   = 0x68
)

// NicknameSize is the byte size of the nickname text region.
const NicknameSize = 64

const clockNamesSize = 256

// SourceLabel pairs a clock source with its device-reported name. The slice
// order of a label table is the wire order of the name list.
type SourceLabel struct {
	Src  ClockSource
	Name string
}

// ExtSourceStates mirrors the extended status register: per external source,
// whether it is locked and whether it slipped since the last read. Lock
// changes are notified; slip bits fluctuate without notification.
type ExtSourceStates struct {
	Sources []ClockSource
	Locked  []bool
	Slipped []bool
}

// GlobalParams is the parameter set of the global section. Only Nickname and
// Clock are host-settable; everything else is owned by hardware and excluded
// from write images.
type GlobalParams struct {
	// Owner is the bus address notifications are posted to.
	Owner uint64
	// LatestNotification is the last notification word sent to the owner.
	LatestNotification uint32
	Nickname           string
	Clock              ClockConfig
	// Enabled reports whether packet streaming is running.
	Enabled bool
	Status  ClockStatus
	// External holds lock and slip states of external clock sources.
	External ExtSourceStates
	// CurrentRate is the measured sampling rate in Hz.
	CurrentRate uint32
	Version     uint32
	// AvailRates and AvailSources are the capability-filtered choices for
	// the clock selection register.
	AvailRates   []ClockRate
	AvailSources []ClockSource
	// SourceLabels names the selectable and detectable sources.
	SourceLabels []SourceLabel
}

const globalSectionName = "global"

// The extended fields appeared in a later protocol revision; old firmware
// sections end at the current rate register.
const globalMinSize = 96

func (*GlobalParams) SectionName() string { return globalSectionName }
func (*GlobalParams) MinSize() int        { return globalMinSize }

func (*GlobalParams) NotifyMask() uint32 {
	return NotifyLockChg | NotifyClockAccepted | NotifyExtStatus
}

func (*GlobalParams) Writable(*Caps) error { return nil }

// Encode writes the host-settable fields into their register slots and
// leaves the rest of the image zero, keeping hardware-driven state out of
// write deltas.
func (p *GlobalParams) Encode(_ *Caps, raw []byte) error {
	if len(raw) < globalMinSize {
		return ErrShortData
	}
	name, err := quadlet.BuildLabel(p.Nickname, NicknameSize)
	if err != nil {
		return err
	}
	copy(raw[globalNickname:], name)
	copy(raw[globalClockSelect:], quadlet.AppendUint32(nil, clockConfigWord(p.Clock)))
	return nil
}

// Decode consumes the full section image. Firmware older than the extended
// layout reports fixed clock choices.
func (p *GlobalParams) Decode(_ *Caps, raw []byte) error {
	if len(raw) < globalMinSize {
		return ErrShortData
	}

	if len(raw) > globalMinSize {
		if err := p.decodeExtended(raw); err != nil {
			return err
		}
	} else {
		p.Version = 0
		p.AvailRates = []ClockRate{Rate44100, Rate48000}
		p.AvailSources = []ClockSource{SrcInternal}
		p.SourceLabels = []SourceLabel{
			{Src: SrcArx1, Name: "Stream-1"},
			{Src: SrcInternal, Name: "internal"},
		}
	}

	p.Owner, _ = quadlet.Uint64(raw[globalOwner:])
	p.LatestNotification, _ = quadlet.Uint32(raw[globalLatestNotify:])

	nickname, err := quadlet.ParseLabel(raw[globalNickname : globalNickname+NicknameSize])
	if err != nil {
		return err
	}
	p.Nickname = nickname

	v, _ := quadlet.Uint32(raw[globalClockSelect:])
	p.Clock = clockConfigFromWord(v)

	p.Enabled, _ = quadlet.Bool(raw[globalEnabled:])

	v, _ = quadlet.Uint32(raw[globalStatus:])
	p.Status = clockStatusFromWord(v)

	v, _ = quadlet.Uint32(raw[globalExtStatus:])
	p.decodeExternalStates(v)

	p.CurrentRate, _ = quadlet.Uint32(raw[globalCurrentRate:])
	return nil
}

func (p *GlobalParams) decodeExtended(raw []byte) error {
	if len(raw) < globalClockNames+clockNamesSize {
		return ErrShortData
	}

	p.Version, _ = quadlet.Uint32(raw[globalVersion:])

	caps, _ := quadlet.Uint32(raw[globalClockCaps:])
	rateBits := uint16(caps)
	srcBits := uint16(caps >> 16)

	p.AvailRates = nil
	for i, rate := range clockRateTable {
		if rateBits&(1<<i) > 0 {
			p.AvailRates = append(p.AvailRates, rate)
		}
	}

	names, err := quadlet.ParseLabels(raw[globalClockNames : globalClockNames+clockNamesSize])
	if err != nil {
		return err
	}

	labels := make([]SourceLabel, 0, len(clockSourceTable))
	for i, src := range clockSourceTable {
		if i >= len(names) {
			break
		}
		name := names[i]
		// Stream receiver slots always read "unused"; give them their
		// real names when the capability bit marks them present.
		if src.isStream() && srcBits&(1<<i) > 0 {
			name = streamSourceLabels[src]
		}
		labels = append(labels, SourceLabel{Src: src, Name: name})
	}

	// Stream sources are detectable but never selectable; "unused" slots
	// are neither.
	p.AvailSources = nil
	for i, src := range clockSourceTable {
		if srcBits&(1<<i) == 0 || src.isStream() {
			continue
		}
		for _, l := range labels {
			if l.Src == src && strings.ToLower(l.Name) != "unused" {
				p.AvailSources = append(p.AvailSources, src)
				break
			}
		}
	}

	p.SourceLabels = nil
	for _, l := range labels {
		if strings.ToLower(l.Name) == "unused" {
			continue
		}
		if l.Src.isStream() || p.sourceAvailable(l.Src) {
			p.SourceLabels = append(p.SourceLabels, l)
		}
	}
	return nil
}

func (p *GlobalParams) sourceAvailable(src ClockSource) bool {
	for _, s := range p.AvailSources {
		if s == src {
			return true
		}
	}
	return false
}

func (p *GlobalParams) decodeExternalStates(v uint32) {
	lockedBits := uint16(v)
	slippedBits := uint16(v >> 16)

	p.External = ExtSourceStates{}
	for i, src := range externalSourceTable {
		named := false
		for _, l := range p.SourceLabels {
			if l.Src == src {
				named = true
				break
			}
		}
		if !named {
			continue
		}
		p.External.Sources = append(p.External.Sources, src)
		p.External.Locked = append(p.External.Locked, lockedBits&(1<<i) > 0)
		p.External.Slipped = append(p.External.Slipped, slippedBits&(1<<i) > 0)
	}
}

// Compile-time interface satisfaction checks.
var (
	_ Params  = (*GlobalParams)(nil)
	_ Mutable = (*GlobalParams)(nil)
)
