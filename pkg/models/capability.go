package models

import (
	"errors"
	"fmt"
	"time"

	"github.com/sndwire-protocol/sndwire-go/pkg/avc"
)

// ErrRange is returned for an index outside a capability's table. Range
// errors are rejected before any bus transaction.
var ErrRange = errors.New("index out of range")

// MediaClockFrequency configures and reports the media clock rate. Rates are
// addressed by index into the model's frequency list.
type MediaClockFrequency interface {
	Frequencies() []uint32
	ReadFrequency(c *avc.Client, timeout time.Duration) (int, error)
	WriteFrequency(c *avc.Client, idx int, timeout time.Duration) error
}

// SamplingClockSource selects which plug the sampling clock recovers from.
// Sources are addressed by index into the model's source list.
type SamplingClockSource interface {
	SourceLabels() []string
	ReadSource(c *avc.Client, timeout time.Duration) (int, error)
	WriteSource(c *avc.Client, idx int, timeout time.Duration) error
}

// AvcLevel drives the volume controls of a model's feature function blocks.
type AvcLevel interface {
	LevelCount() int
	ReadLevel(c *avc.Client, idx int, timeout time.Duration) (int16, error)
	WriteLevel(c *avc.Client, idx int, vol int16, timeout time.Duration) error
}

// AvcMute drives the mute controls of a model's feature function blocks.
type AvcMute interface {
	MuteCount() int
	ReadMute(c *avc.Client, idx int, timeout time.Duration) (bool, error)
	WriteMute(c *avc.Client, idx int, mute bool, timeout time.Duration) error
}

// AvcSelector drives a model's selector function blocks. Selections are
// addressed by index into the model's input plug list.
type AvcSelector interface {
	SelectorCount() int
	SelectorChoices() []string
	ReadSelector(c *avc.Client, idx int, timeout time.Duration) (int, error)
	WriteSelector(c *avc.Client, idx, val int, timeout time.Duration) error
}

// PlugFormatClock implements MediaClockFrequency by rewriting the signal
// format of isochronous plug 0 in both directions. The device applies the
// rate once both plug formats agree.
type PlugFormatClock struct {
	FreqList []uint32
}

// Frequencies implements MediaClockFrequency.
func (p *PlugFormatClock) Frequencies() []uint32 { return p.FreqList }

// ReadFrequency implements MediaClockFrequency.
func (p *PlugFormatClock) ReadFrequency(c *avc.Client, timeout time.Duration) (int, error) {
	var op avc.InputPlugSignalFormat
	op.PlugID = 0
	if err := c.Status(avc.AddrUnit, &op, timeout); err != nil {
		return 0, err
	}
	if op.FMT != FmtAMDTP {
		return 0, fmt.Errorf("plug 0 carries format %#x, not AM824", op.FMT)
	}
	freq, err := amdtpFreq(op.FDF)
	if err != nil {
		return 0, err
	}
	for i, f := range p.FreqList {
		if f == freq {
			return i, nil
		}
	}
	return 0, fmt.Errorf("%w: device reports %d", ErrUnsupportedRate, freq)
}

// WriteFrequency implements MediaClockFrequency.
func (p *PlugFormatClock) WriteFrequency(c *avc.Client, idx int, timeout time.Duration) error {
	if idx < 0 || idx >= len(p.FreqList) {
		return fmt.Errorf("%w: frequency %d of %d", ErrRange, idx, len(p.FreqList))
	}
	fdf, err := amdtpFdf(p.FreqList[idx])
	if err != nil {
		return err
	}
	in := avc.InputPlugSignalFormat{
		PlugSignalFormat: avc.PlugSignalFormat{PlugID: 0, FMT: FmtAMDTP, FDF: fdf},
	}
	if err := c.Control(avc.AddrUnit, &in, timeout); err != nil {
		return err
	}
	out := avc.OutputPlugSignalFormat{
		PlugSignalFormat: avc.PlugSignalFormat{PlugID: 0, FMT: FmtAMDTP, FDF: fdf},
	}
	return c.Control(avc.AddrUnit, &out, timeout)
}

// SignalSourceClock implements SamplingClockSource with the SIGNAL SOURCE
// command: the destination plug is fixed per model and the selected source is
// whichever listed plug currently feeds it.
type SignalSourceClock struct {
	Dst    avc.SignalAddr
	Srcs   []avc.SignalAddr
	Labels []string
}

// SourceLabels implements SamplingClockSource.
func (s *SignalSourceClock) SourceLabels() []string { return s.Labels }

// ReadSource implements SamplingClockSource.
func (s *SignalSourceClock) ReadSource(c *avc.Client, timeout time.Duration) (int, error) {
	op := avc.SignalSource{Dst: s.Dst}
	if err := c.Status(avc.AddrUnit, &op, timeout); err != nil {
		return 0, err
	}
	for i, src := range s.Srcs {
		if src == op.Src {
			return i, nil
		}
	}
	return 0, fmt.Errorf("unexpected clock source plug %s/%d", op.Src.Addr, op.Src.PlugID)
}

// WriteSource implements SamplingClockSource.
func (s *SignalSourceClock) WriteSource(c *avc.Client, idx int, timeout time.Duration) error {
	if idx < 0 || idx >= len(s.Srcs) {
		return fmt.Errorf("%w: clock source %d of %d", ErrRange, idx, len(s.Srcs))
	}
	op := avc.SignalSource{Src: s.Srcs[idx], Dst: s.Dst}
	return c.Control(avc.AddrUnit, &op, timeout)
}

// SelectorClock implements SamplingClockSource for models whose clock source
// is a selector function block instead of a connectable plug; the source
// index is the input plug id of the selector.
type SelectorClock struct {
	FuncBlkID uint8
	Labels    []string
}

// SourceLabels implements SamplingClockSource.
func (s *SelectorClock) SourceLabels() []string { return s.Labels }

// ReadSource implements SamplingClockSource.
func (s *SelectorClock) ReadSource(c *avc.Client, timeout time.Duration) (int, error) {
	op := AudioSelector{FuncBlkID: s.FuncBlkID, Attr: AttrCurrent, InputPlugID: 0xff}
	if err := c.Status(avc.AudioSubunit0, &op, timeout); err != nil {
		return 0, err
	}
	if int(op.InputPlugID) >= len(s.Labels) {
		return 0, fmt.Errorf("unexpected clock selector input %d", op.InputPlugID)
	}
	return int(op.InputPlugID), nil
}

// WriteSource implements SamplingClockSource.
func (s *SelectorClock) WriteSource(c *avc.Client, idx int, timeout time.Duration) error {
	if idx < 0 || idx >= len(s.Labels) {
		return fmt.Errorf("%w: clock source %d of %d", ErrRange, idx, len(s.Labels))
	}
	op := AudioSelector{FuncBlkID: s.FuncBlkID, Attr: AttrCurrent, InputPlugID: uint8(idx)}
	return c.Control(avc.AudioSubunit0, &op, timeout)
}

// Volume range shared by feature function block levels.
const (
	LevelMin  int16 = VolumeNegInfinity
	LevelMax  int16 = 0x0000
	LevelStep int16 = 0x0100
)

// FeatureEntry addresses one channel of one feature function block.
type FeatureEntry struct {
	FuncBlkID uint8
	Ch        AudioCh
}

// FeatureTable implements AvcLevel and AvcMute over a list of feature
// function block channels. One table typically covers one signal group, for
// example all physical outputs.
type FeatureTable struct {
	Entries []FeatureEntry
}

func (t *FeatureTable) entry(idx int) (FeatureEntry, error) {
	if idx < 0 || idx >= len(t.Entries) {
		return FeatureEntry{}, fmt.Errorf("%w: feature %d of %d", ErrRange, idx, len(t.Entries))
	}
	return t.Entries[idx], nil
}

// LevelCount implements AvcLevel.
func (t *FeatureTable) LevelCount() int { return len(t.Entries) }

// ReadLevel implements AvcLevel.
func (t *FeatureTable) ReadLevel(c *avc.Client, idx int, timeout time.Duration) (int16, error) {
	e, err := t.entry(idx)
	if err != nil {
		return 0, err
	}
	op := FeatureVolume{FuncBlkID: e.FuncBlkID, Attr: AttrCurrent, Ch: e.Ch, Volume: make([]int16, 1)}
	if err := c.Status(avc.AudioSubunit0, &op, timeout); err != nil {
		return 0, err
	}
	if len(op.Volume) < 1 {
		return 0, fmt.Errorf("%w: empty volume answer", avc.ErrShortResponse)
	}
	return op.Volume[0], nil
}

// WriteLevel implements AvcLevel.
func (t *FeatureTable) WriteLevel(c *avc.Client, idx int, vol int16, timeout time.Duration) error {
	e, err := t.entry(idx)
	if err != nil {
		return err
	}
	op := FeatureVolume{FuncBlkID: e.FuncBlkID, Attr: AttrCurrent, Ch: e.Ch, Volume: []int16{vol}}
	return c.Control(avc.AudioSubunit0, &op, timeout)
}

// MuteCount implements AvcMute.
func (t *FeatureTable) MuteCount() int { return len(t.Entries) }

// ReadMute implements AvcMute.
func (t *FeatureTable) ReadMute(c *avc.Client, idx int, timeout time.Duration) (bool, error) {
	e, err := t.entry(idx)
	if err != nil {
		return false, err
	}
	op := FeatureMute{FuncBlkID: e.FuncBlkID, Attr: AttrCurrent, Ch: e.Ch, Mute: make([]bool, 1)}
	if err := c.Status(avc.AudioSubunit0, &op, timeout); err != nil {
		return false, err
	}
	if len(op.Mute) < 1 {
		return false, fmt.Errorf("%w: empty mute answer", avc.ErrShortResponse)
	}
	return op.Mute[0], nil
}

// WriteMute implements AvcMute.
func (t *FeatureTable) WriteMute(c *avc.Client, idx int, mute bool, timeout time.Duration) error {
	e, err := t.entry(idx)
	if err != nil {
		return err
	}
	op := FeatureMute{FuncBlkID: e.FuncBlkID, Attr: AttrCurrent, Ch: e.Ch, Mute: []bool{mute}}
	return c.Control(avc.AudioSubunit0, &op, timeout)
}

// SelectorTable implements AvcSelector over a list of selector function
// blocks sharing one set of selectable inputs.
type SelectorTable struct {
	FuncBlkIDs   []uint8
	InputPlugIDs []uint8
	Choices      []string
}

// SelectorCount implements AvcSelector.
func (t *SelectorTable) SelectorCount() int { return len(t.FuncBlkIDs) }

// SelectorChoices implements AvcSelector.
func (t *SelectorTable) SelectorChoices() []string { return t.Choices }

// ReadSelector implements AvcSelector.
func (t *SelectorTable) ReadSelector(c *avc.Client, idx int, timeout time.Duration) (int, error) {
	if idx < 0 || idx >= len(t.FuncBlkIDs) {
		return 0, fmt.Errorf("%w: selector %d of %d", ErrRange, idx, len(t.FuncBlkIDs))
	}
	op := AudioSelector{FuncBlkID: t.FuncBlkIDs[idx], Attr: AttrCurrent, InputPlugID: 0xff}
	if err := c.Status(avc.AudioSubunit0, &op, timeout); err != nil {
		return 0, err
	}
	for i, plug := range t.InputPlugIDs {
		if plug == op.InputPlugID {
			return i, nil
		}
	}
	return 0, fmt.Errorf("unexpected selector input plug %d", op.InputPlugID)
}

// WriteSelector implements AvcSelector.
func (t *SelectorTable) WriteSelector(c *avc.Client, idx, val int, timeout time.Duration) error {
	if idx < 0 || idx >= len(t.FuncBlkIDs) {
		return fmt.Errorf("%w: selector %d of %d", ErrRange, idx, len(t.FuncBlkIDs))
	}
	if val < 0 || val >= len(t.InputPlugIDs) {
		return fmt.Errorf("%w: input %d of %d", ErrRange, val, len(t.InputPlugIDs))
	}
	op := AudioSelector{FuncBlkID: t.FuncBlkIDs[idx], Attr: AttrCurrent, InputPlugID: t.InputPlugIDs[val]}
	return c.Control(avc.AudioSubunit0, &op, timeout)
}

// Compile-time interface satisfaction checks.
var (
	_ MediaClockFrequency = (*PlugFormatClock)(nil)
	_ SamplingClockSource = (*SignalSourceClock)(nil)
	_ SamplingClockSource = (*SelectorClock)(nil)
	_ AvcLevel            = (*FeatureTable)(nil)
	_ AvcMute             = (*FeatureTable)(nil)
	_ AvcSelector         = (*SelectorTable)(nil)
)
