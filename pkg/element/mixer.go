package element

import "fmt"

// Element names of the mixer bridge.
const (
	MixerGainName       = "mixer-gain"
	MixerSaturationName = "mixer-saturation"
)

// Coefficient range of the mixer gain registers. 2:14 fixed point; the dB
// interval mirrors the hardware curve.
const (
	coefMin  = 0
	coefMax  = 0x0000ffff
	coefStep = 1
)

var coefDB = DBInterval{Min: -6000, Max: 400}

// MixerBridge exposes the coefficient matrix as one integer element per
// output, plus the read-only saturation flags.
type MixerBridge struct{}

func (MixerBridge) Load(dev *Device) ([]Descriptor, error) {
	if !dev.HasExtension || !dev.Caps.Mixer.Exposed {
		return nil, nil
	}
	db := coefDB
	descs := make([]Descriptor, 0, int(dev.Caps.Mixer.OutputCount)+1)
	for out := 0; out < int(dev.Caps.Mixer.OutputCount); out++ {
		descs = append(descs, Descriptor{
			ID:       ID{Iface: IfaceMixer, Name: MixerGainName, Index: out},
			Kind:     KindInt,
			Count:    int(dev.Caps.Mixer.InputCount),
			Writable: !dev.Caps.Mixer.ReadOnly,
			Min:      coefMin,
			Max:      coefMax,
			Step:     coefStep,
			DB:       &db,
		})
	}
	descs = append(descs, Descriptor{
		ID:    ID{Iface: IfaceMixer, Name: MixerSaturationName},
		Kind:  KindBool,
		Count: int(dev.Caps.Mixer.OutputCount),
	})
	return descs, nil
}

func (MixerBridge) Read(dev *Device, id ID) (Value, error) {
	switch id.Name {
	case MixerGainName:
		if id.Index < 0 || id.Index >= len(dev.Mixer.Gains) {
			return Value{}, fmt.Errorf("%w: output %d of %d", ErrRange, id.Index, len(dev.Mixer.Gains))
		}
		row := dev.Mixer.Gains[id.Index]
		vals := make([]int32, len(row))
		for i, g := range row {
			vals[i] = int32(g)
		}
		return IntValue(vals...), nil
	case MixerSaturationName:
		return BoolValue(dev.Mixer.Saturation...), nil
	default:
		return Value{}, ErrNotFound
	}
}

func (MixerBridge) Write(dev *Device, id ID, old, val Value) error {
	switch id.Name {
	case MixerSaturationName:
		return ErrReadOnly
	case MixerGainName:
	default:
		return ErrNotFound
	}

	if id.Index < 0 || id.Index >= len(dev.Mixer.Gains) {
		return fmt.Errorf("%w: output %d of %d", ErrRange, id.Index, len(dev.Mixer.Gains))
	}
	if len(val.Ints) != int(dev.Caps.Mixer.InputCount) {
		return fmt.Errorf("%w: %d values for %d inputs", ErrValueCount, len(val.Ints), dev.Caps.Mixer.InputCount)
	}
	for _, v := range val.Ints {
		if v < coefMin || v > coefMax {
			return fmt.Errorf("%w: coefficient %#x", ErrRange, v)
		}
	}

	p := dev.Mixer
	p.Gains = make([][]uint16, len(dev.Mixer.Gains))
	for i, row := range dev.Mixer.Gains {
		p.Gains[i] = append([]uint16(nil), row...)
	}
	for i, v := range val.Ints {
		p.Gains[id.Index][i] = uint16(v)
	}
	return dev.UpdateMixer(&p)
}

func (MixerBridge) NotifiedElems() []ID { return nil }

// Compile-time interface satisfaction check.
var _ Bridge = MixerBridge{}
