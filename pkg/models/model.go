package models

import (
	"time"

	"github.com/sndwire-protocol/sndwire-go/pkg/avc"
	"github.com/sndwire-protocol/sndwire-go/pkg/section"
)

// Family is the command protocol family a model belongs to.
type Family uint8

const (
	// FamilyAvc models are driven over AV/C commands and describe
	// themselves through the capability interfaces.
	FamilyAvc Family = iota
	// FamilyRegister models are driven through the sectioned register
	// protocol; their sections are self-describing and only the routing
	// matrix needs a per-model table.
	FamilyRegister
)

// String returns the family name.
func (f Family) String() string {
	switch f {
	case FamilyAvc:
		return "avc"
	case FamilyRegister:
		return "register"
	default:
		return "unknown"
	}
}

// Quirk is a bitset of firmware behaviors the engine compensates for.
type Quirk uint

const (
	// QuirkDeferredClockOps marks firmware answering clock control commands
	// with INTERIM before the final response; clock writes get a widened
	// timeout.
	QuirkDeferredClockOps Quirk = 1 << iota
)

// Model describes one supported device: its identity and the capability set
// configuring a generic engine instance. A nil capability field means the
// model does not implement that capability.
type Model struct {
	VendorID uint32
	ModelID  uint32
	Name     string
	Family   Family
	Quirks   Quirk

	Clock     MediaClockFrequency
	ClockSrc  SamplingClockSource
	Levels    AvcLevel
	Mutes     AvcMute
	Selectors AvcSelector

	// Routing matrix blocks of register-family models, in element channel
	// and label order. The mute block leads the source list.
	RouterSrcs []section.SrcBlock
	RouterDsts []section.DstBlock
}

// WriteTimeout widens the base transaction timeout for models whose clock
// commands defer their final response.
func (m *Model) WriteTimeout(base time.Duration) time.Duration {
	if m.Quirks&QuirkDeferredClockOps != 0 {
		return 3 * base
	}
	return base
}

// goPhase24Clock is shared by the Yamaha GO and Terratec PHASE 24 family:
// one DM1000 design sold under two brands.
func goPhase24Clock() (MediaClockFrequency, SamplingClockSource) {
	freq := &PlugFormatClock{FreqList: []uint32{44100, 48000, 88200, 96000, 192000}}
	src := &SelectorClock{FuncBlkID: 0x04, Labels: []string{"Internal", "S/PDIF"}}
	return freq, src
}

// catalog lists every supported model. Records are data: the engine never
// branches on identity, only on the capability set.
var catalog = func() []*Model {
	goFreq, goSrc := goPhase24Clock()

	return []*Model{
		{
			VendorID: 0x000a92,
			ModelID:  0x010000,
			Name:     "PreSonus FireBox",
			Quirks:   QuirkDeferredClockOps,
			Clock:    &PlugFormatClock{FreqList: []uint32{44100, 48000, 88200, 96000}},
			ClockSrc: &SignalSourceClock{
				Dst: avc.SubunitSignalAddr(avc.SubunitMusic, 0, 0x05),
				Srcs: []avc.SignalAddr{
					avc.SubunitSignalAddr(avc.SubunitMusic, 0, 0x06),
					avc.ExtUnitSignalAddr(0x03),
				},
				Labels: []string{"Internal", "S/PDIF"},
			},
			Levels: &FeatureTable{Entries: []FeatureEntry{
				{0x01, AudioChEach(0)}, {0x01, AudioChEach(1)},
				{0x02, AudioChEach(0)}, {0x02, AudioChEach(1)},
				{0x03, AudioChEach(0)}, {0x03, AudioChEach(1)},
			}},
			Mutes: &FeatureTable{Entries: []FeatureEntry{
				{0x01, AudioChEach(0)}, {0x01, AudioChEach(1)},
				{0x02, AudioChEach(0)}, {0x02, AudioChEach(1)},
				{0x03, AudioChEach(0)}, {0x03, AudioChEach(1)},
			}},
			Selectors: &SelectorTable{
				FuncBlkIDs:   []uint8{0x01, 0x02, 0x03, 0x05},
				InputPlugIDs: []uint8{0x00, 0x01},
				Choices:      []string{"stream-input", "mixer-output-1/2"},
			},
		},
		{
			VendorID: 0x000a92,
			ModelID:  0x010001,
			Name:     "PreSonus Inspire 1394",
			Quirks:   QuirkDeferredClockOps,
			Clock:    &PlugFormatClock{FreqList: []uint32{44100, 48000, 88200, 96000}},
			ClockSrc: &SignalSourceClock{
				Dst: avc.SubunitSignalAddr(avc.SubunitMusic, 0, 0x03),
				Srcs: []avc.SignalAddr{
					avc.SubunitSignalAddr(avc.SubunitMusic, 0, 0x02),
				},
				Labels: []string{"Internal"},
			},
		},
		{
			VendorID: 0x000aac,
			ModelID:  0x000007,
			Name:     "Terratec PHASE X24 FW",
			Quirks:   QuirkDeferredClockOps,
			Clock:    goFreq,
			ClockSrc: goSrc,
		},
		{
			VendorID: 0x00a0de,
			ModelID:  0x10000b,
			Name:     "Yamaha GO 44",
			Quirks:   QuirkDeferredClockOps,
			Clock:    goFreq,
			ClockSrc: goSrc,
		},
		{
			VendorID: 0x00a0de,
			ModelID:  0x10000c,
			Name:     "Yamaha GO 46",
			Quirks:   QuirkDeferredClockOps,
			Clock:    goFreq,
			ClockSrc: goSrc,
		},
		{
			VendorID: 0x000166,
			ModelID:  0x000020,
			Name:     "TC Electronic Konnekt 24D",
			Family:   FamilyRegister,
			RouterSrcs: []section.SrcBlock{
				{ID: section.SrcBlockMute, Ch: 0},
				{ID: section.SrcBlockIns0, Ch: 0}, {ID: section.SrcBlockIns0, Ch: 1},
				{ID: section.SrcBlockIns0, Ch: 2}, {ID: section.SrcBlockIns0, Ch: 3},
				{ID: section.SrcBlockAes, Ch: 0}, {ID: section.SrcBlockAes, Ch: 1},
				{ID: section.SrcBlockAvs0, Ch: 0}, {ID: section.SrcBlockAvs0, Ch: 1},
				{ID: section.SrcBlockMixer, Ch: 0}, {ID: section.SrcBlockMixer, Ch: 1},
			},
			RouterDsts: []section.DstBlock{
				{ID: section.DstBlockIns0, Ch: 0}, {ID: section.DstBlockIns0, Ch: 1},
				{ID: section.DstBlockAes, Ch: 0}, {ID: section.DstBlockAes, Ch: 1},
				{ID: section.DstBlockAvs0, Ch: 0}, {ID: section.DstBlockAvs0, Ch: 1},
				{ID: section.DstBlockMixerTx0, Ch: 0}, {ID: section.DstBlockMixerTx0, Ch: 1},
			},
		},
	}
}()

// Lookup returns the record for a vendor/model identity.
func Lookup(vendorID, modelID uint32) (*Model, bool) {
	for _, m := range catalog {
		if m.VendorID == vendorID && m.ModelID == modelID {
			return m, true
		}
	}
	return nil, false
}

// All returns every catalogued model.
func All() []*Model {
	out := make([]*Model, len(catalog))
	copy(out, catalog)
	return out
}
