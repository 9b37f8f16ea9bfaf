package element

import (
	"fmt"

	"github.com/sndwire-protocol/sndwire-go/pkg/section"
)

// Element names of the standalone bridge, configuring operation without a
// host.
const (
	StandaloneClockSourceName   = "standalone-clock-source"
	StandaloneAesHighRateName   = "standalone-aes-high-rate"
	StandaloneAdatModeName      = "standalone-adat-mode"
	StandaloneWcModeName        = "standalone-word-clock-mode"
	StandaloneWcNumeratorName   = "standalone-word-clock-rate-numerator"
	StandaloneWcDenominatorName = "standalone-word-clock-rate-denominator"
	StandaloneInternalRateName  = "standalone-internal-clock-rate"
)

var (
	adatModes = []section.AdatMode{
		section.AdatNormal, section.AdatSmux2, section.AdatSmux4, section.AdatAuto,
	}
	adatModeLabels = []string{"normal", "smux2", "smux4", "auto"}

	wcModes = []section.WordClockMode{
		section.WordClockNormal, section.WordClockLow, section.WordClockMiddle, section.WordClockHigh,
	}
	wcModeLabels = []string{"normal", "low", "middle", "high"}

	internalRates = []section.ClockRate{
		section.Rate32000, section.Rate44100, section.Rate48000,
		section.Rate88200, section.Rate96000, section.Rate176400, section.Rate192000,
	}
)

// StandaloneBridge exposes the standalone configuration section.
type StandaloneBridge struct{}

func (StandaloneBridge) Load(dev *Device) ([]Descriptor, error) {
	if !dev.HasExtension || dev.Ext.Standalone.Size < dev.Standalone.MinSize() {
		return nil, nil
	}

	srcLabels := make([]string, len(dev.Global.AvailSources))
	for i, s := range dev.Global.AvailSources {
		srcLabels[i] = sourceName(&dev.Global, s)
	}
	rateLabels := make([]string, len(internalRates))
	for i, r := range internalRates {
		rateLabels[i] = r.String()
	}

	return []Descriptor{
		{ID: ID{Iface: IfaceCard, Name: StandaloneClockSourceName}, Kind: KindEnum, Count: 1, Writable: true, Labels: srcLabels},
		{ID: ID{Iface: IfaceCard, Name: StandaloneAesHighRateName}, Kind: KindBool, Count: 1, Writable: true},
		{ID: ID{Iface: IfaceCard, Name: StandaloneAdatModeName}, Kind: KindEnum, Count: 1, Writable: true, Labels: adatModeLabels},
		{ID: ID{Iface: IfaceCard, Name: StandaloneWcModeName}, Kind: KindEnum, Count: 1, Writable: true, Labels: wcModeLabels},
		{ID: ID{Iface: IfaceCard, Name: StandaloneWcNumeratorName}, Kind: KindInt, Count: 1, Writable: true, Min: 1, Max: 4096, Step: 1},
		{ID: ID{Iface: IfaceCard, Name: StandaloneWcDenominatorName}, Kind: KindInt, Count: 1, Writable: true, Min: 1, Max: 65536, Step: 1},
		{ID: ID{Iface: IfaceCard, Name: StandaloneInternalRateName}, Kind: KindEnum, Count: 1, Writable: true, Labels: rateLabels},
	}, nil
}

func (StandaloneBridge) Read(dev *Device, id ID) (Value, error) {
	p := &dev.Standalone
	switch id.Name {
	case StandaloneClockSourceName:
		idx, err := indexOfSource(dev.Global.AvailSources, p.ClockSource)
		if err != nil {
			return Value{}, err
		}
		return EnumValue(idx), nil
	case StandaloneAesHighRateName:
		return BoolValue(p.AesHighRate), nil
	case StandaloneAdatModeName:
		for i, m := range adatModes {
			if m == p.Adat {
				return EnumValue(i), nil
			}
		}
		return Value{}, fmt.Errorf("ADAT mode %d not in table", p.Adat)
	case StandaloneWcModeName:
		for i, m := range wcModes {
			if m == p.WordClock {
				return EnumValue(i), nil
			}
		}
		return Value{}, fmt.Errorf("word clock mode %d not in table", p.WordClock)
	case StandaloneWcNumeratorName:
		return IntValue(int32(p.WordClockRate.Numerator)), nil
	case StandaloneWcDenominatorName:
		return IntValue(int32(p.WordClockRate.Denominator)), nil
	case StandaloneInternalRateName:
		idx, err := indexOfRate(internalRates, p.InternalRate)
		if err != nil {
			return Value{}, err
		}
		return EnumValue(idx), nil
	default:
		return Value{}, ErrNotFound
	}
}

func (StandaloneBridge) Write(dev *Device, id ID, old, val Value) error {
	p := dev.Standalone
	switch id.Name {
	case StandaloneClockSourceName:
		idx, err := oneEnum(val, len(dev.Global.AvailSources))
		if err != nil {
			return err
		}
		p.ClockSource = dev.Global.AvailSources[idx]
	case StandaloneAesHighRateName:
		if len(val.Bools) != 1 {
			return ErrValueCount
		}
		p.AesHighRate = val.Bools[0]
	case StandaloneAdatModeName:
		idx, err := oneEnum(val, len(adatModes))
		if err != nil {
			return err
		}
		p.Adat = adatModes[idx]
	case StandaloneWcModeName:
		idx, err := oneEnum(val, len(wcModes))
		if err != nil {
			return err
		}
		p.WordClock = wcModes[idx]
	case StandaloneWcNumeratorName:
		v, err := oneInt(val, 1, 4096)
		if err != nil {
			return err
		}
		p.WordClockRate.Numerator = uint16(v)
	case StandaloneWcDenominatorName:
		v, err := oneInt(val, 1, 65536)
		if err != nil {
			return err
		}
		p.WordClockRate.Denominator = uint16(v)
	case StandaloneInternalRateName:
		idx, err := oneEnum(val, len(internalRates))
		if err != nil {
			return err
		}
		p.InternalRate = internalRates[idx]
	default:
		return ErrNotFound
	}
	return dev.UpdateStandalone(&p)
}

func (StandaloneBridge) NotifiedElems() []ID { return nil }

func oneEnum(val Value, n int) (int, error) {
	if len(val.Enums) != 1 {
		return 0, ErrValueCount
	}
	if idx := val.Enums[0]; idx < 0 || idx >= n {
		return 0, fmt.Errorf("%w: index %d of %d", ErrRange, idx, n)
	}
	return val.Enums[0], nil
}

func oneInt(val Value, min, max int32) (int32, error) {
	if len(val.Ints) != 1 {
		return 0, ErrValueCount
	}
	if v := val.Ints[0]; v < min || v > max {
		return 0, fmt.Errorf("%w: %d not in [%d, %d]", ErrRange, v, min, max)
	}
	return val.Ints[0], nil
}

// Compile-time interface satisfaction check.
var _ Bridge = StandaloneBridge{}
