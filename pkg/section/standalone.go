package section

import (
	"fmt"

	"github.com/sndwire-protocol/sndwire-go/pkg/quadlet"
)

// AdatMode selects how the ADAT ports behave when the device runs without a
// host.
type AdatMode uint32

const (
	AdatNormal AdatMode = 0x00
	AdatSmux2  AdatMode = 0x01
	AdatSmux4  AdatMode = 0x02
	AdatAuto   AdatMode = 0x03
)

// WordClockMode selects the word clock input scaling.
type WordClockMode uint32

const (
	WordClockNormal WordClockMode = 0x00
	WordClockLow    WordClockMode = 0x01
	WordClockMiddle WordClockMode = 0x02
	WordClockHigh   WordClockMode = 0x03
)

// WordClockRate is the word clock scaling ratio. Both terms are 1-based.
type WordClockRate struct {
	Numerator   uint16
	Denominator uint16
}

// StandaloneParams configures the device for operation without a host:
// clock source, per-port modes and the internally generated rate.
type StandaloneParams struct {
	ClockSource   ClockSource
	AesHighRate   bool
	Adat          AdatMode
	WordClock     WordClockMode
	WordClockRate WordClockRate
	InternalRate  ClockRate
}

const standaloneSectionName = "standalone"

func (*StandaloneParams) SectionName() string { return standaloneSectionName }
func (*StandaloneParams) MinSize() int        { return 5 * quadlet.Size }
func (*StandaloneParams) NotifyMask() uint32  { return 0 }

func (*StandaloneParams) Writable(*Caps) error { return nil }

func (p *StandaloneParams) Encode(_ *Caps, raw []byte) error {
	if len(raw) < p.MinSize() {
		return ErrShortData
	}
	if p.WordClockRate.Numerator < 1 || p.WordClockRate.Denominator < 1 {
		return fmt.Errorf("invalid word clock rate %d/%d", p.WordClockRate.Numerator, p.WordClockRate.Denominator)
	}
	var buf []byte
	buf = quadlet.AppendUint32(buf, uint32(p.ClockSource))
	buf = quadlet.AppendBool(buf, p.AesHighRate)
	buf = quadlet.AppendUint32(buf, uint32(p.Adat))

	wc := uint32(p.WordClock) & 0x03
	wc |= uint32(p.WordClockRate.Numerator-1) << 4
	wc |= uint32(p.WordClockRate.Denominator-1) << 16
	buf = quadlet.AppendUint32(buf, wc)

	buf = quadlet.AppendUint32(buf, uint32(p.InternalRate))
	copy(raw, buf)
	return nil
}

func (p *StandaloneParams) Decode(_ *Caps, raw []byte) error {
	if len(raw) < p.MinSize() {
		return ErrShortData
	}
	v, _ := quadlet.Uint32(raw)
	p.ClockSource = ClockSource(v & 0xff)

	p.AesHighRate, _ = quadlet.Bool(raw[quadlet.Size:])

	v, _ = quadlet.Uint32(raw[2*quadlet.Size:])
	p.Adat = AdatMode(v & 0x03)

	v, _ = quadlet.Uint32(raw[3*quadlet.Size:])
	p.WordClock = WordClockMode(v & 0x03)
	p.WordClockRate.Numerator = 1 + uint16(v>>4&0x0fff)
	p.WordClockRate.Denominator = 1 + uint16(v>>16)

	v, _ = quadlet.Uint32(raw[4*quadlet.Size:])
	p.InternalRate = ClockRate(v & 0xff)
	return nil
}

// Compile-time interface satisfaction check.
var _ Mutable = (*StandaloneParams)(nil)
