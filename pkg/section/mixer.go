package section

import (
	"fmt"

	"github.com/sndwire-protocol/sndwire-go/pkg/quadlet"
)

// Fixed-point gain sentinels of the mixer coefficient registers. The scale
// is specific to this section; other sections use their own ranges.
const (
	GainUnity uint16 = 0x2000
	GainMute  uint16 = 0x0000
)

// The coefficient matrix occupies a fixed register grid regardless of how
// many inputs and outputs the device exposes.
const (
	mixerMaxInputs  = 18
	mixerMaxOutputs = 16

	mixerSaturationOffset = 0x00
	mixerCoeffOffset      = 0x04
)

// MixerParams is the parameter set of the mixer section. Gains is an
// output-major matrix of fixed-point coefficients bounded by the mixer
// capability; Saturation is hardware-driven and excluded from write images.
type MixerParams struct {
	// Saturation flags one bit per output, set while the mix clips.
	Saturation []bool
	// Gains[out][in] is the coefficient feeding input in to output out.
	Gains [][]uint16
}

const mixerSectionName = "mixer"

func (*MixerParams) SectionName() string { return mixerSectionName }

func (*MixerParams) MinSize() int {
	return mixerCoeffOffset + quadlet.Size*mixerMaxOutputs*mixerMaxInputs
}

func (*MixerParams) NotifyMask() uint32 { return 0 }

func (*MixerParams) Writable(caps *Caps) error {
	if !caps.Mixer.Exposed {
		return ErrNotExposed
	}
	if caps.Mixer.ReadOnly {
		return ErrReadOnly
	}
	return nil
}

func checkMixerCaps(caps *Caps) error {
	if int(caps.Mixer.InputCount) > mixerMaxInputs || int(caps.Mixer.OutputCount) > mixerMaxOutputs {
		return fmt.Errorf("%w: mixer %dx%d, grid %dx%d", ErrCountExceedsCaps,
			caps.Mixer.InputCount, caps.Mixer.OutputCount, mixerMaxInputs, mixerMaxOutputs)
	}
	return nil
}

func mixerCoeffPos(out, in int) int {
	return mixerCoeffOffset + quadlet.Size*(out*mixerMaxInputs+in)
}

func (p *MixerParams) Encode(caps *Caps, raw []byte) error {
	if err := checkMixerCaps(caps); err != nil {
		return err
	}
	if len(raw) < p.MinSize() {
		return ErrShortData
	}
	if len(p.Gains) != int(caps.Mixer.OutputCount) {
		return fmt.Errorf("%w: %d gain rows, mixer has %d outputs", ErrCountExceedsCaps, len(p.Gains), caps.Mixer.OutputCount)
	}
	for out, row := range p.Gains {
		if len(row) != int(caps.Mixer.InputCount) {
			return fmt.Errorf("%w: %d gains in row %d, mixer has %d inputs", ErrCountExceedsCaps, len(row), out, caps.Mixer.InputCount)
		}
		for in, gain := range row {
			pos := mixerCoeffPos(out, in)
			copy(raw[pos:], quadlet.AppendUint32(nil, uint32(gain)))
		}
	}
	return nil
}

func (p *MixerParams) Decode(caps *Caps, raw []byte) error {
	if !caps.Mixer.Exposed {
		return ErrNotExposed
	}
	if err := checkMixerCaps(caps); err != nil {
		return err
	}
	if len(raw) < p.MinSize() {
		return ErrShortData
	}

	sat, _ := quadlet.Uint32(raw[mixerSaturationOffset:])
	p.Saturation = make([]bool, caps.Mixer.OutputCount)
	for i := range p.Saturation {
		p.Saturation[i] = sat&(1<<i) > 0
	}

	p.Gains = make([][]uint16, caps.Mixer.OutputCount)
	for out := range p.Gains {
		p.Gains[out] = make([]uint16, caps.Mixer.InputCount)
		for in := range p.Gains[out] {
			v, _ := quadlet.Uint32(raw[mixerCoeffPos(out, in):])
			p.Gains[out][in] = uint16(v)
		}
	}
	return nil
}

// Compile-time interface satisfaction check.
var _ Mutable = (*MixerParams)(nil)
