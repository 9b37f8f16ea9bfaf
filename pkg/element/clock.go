package element

import (
	"fmt"

	"github.com/sndwire-protocol/sndwire-go/pkg/section"
)

// Element names of the clock bridge.
const (
	ClockRateName     = "clock-rate"
	ClockSourceName   = "clock-source"
	SourceLockedName  = "source-locked"
	SourceSlippedName = "source-slipped"
)

// ClockBridge exposes the sampling clock selection and the external source
// states of the global section. The enumerated index order is the order of
// the capability-filtered tables cached at attach.
type ClockBridge struct{}

func (ClockBridge) Load(dev *Device) ([]Descriptor, error) {
	rateLabels := make([]string, len(dev.Global.AvailRates))
	for i, r := range dev.Global.AvailRates {
		rateLabels[i] = r.String()
	}
	srcLabels := make([]string, len(dev.Global.AvailSources))
	for i, s := range dev.Global.AvailSources {
		srcLabels[i] = sourceName(&dev.Global, s)
	}

	descs := []Descriptor{
		{
			ID:       ID{Iface: IfaceCard, Name: ClockRateName},
			Kind:     KindEnum,
			Count:    1,
			Writable: true,
			Labels:   rateLabels,
		},
		{
			ID:       ID{Iface: IfaceCard, Name: ClockSourceName},
			Kind:     KindEnum,
			Count:    1,
			Writable: true,
			Labels:   srcLabels,
		},
	}
	if n := len(dev.Global.External.Sources); n > 0 {
		descs = append(descs,
			Descriptor{ID: ID{Iface: IfaceCard, Name: SourceLockedName}, Kind: KindBool, Count: n},
			Descriptor{ID: ID{Iface: IfaceCard, Name: SourceSlippedName}, Kind: KindBool, Count: n},
		)
	}
	return descs, nil
}

func sourceName(g *section.GlobalParams, src section.ClockSource) string {
	for _, l := range g.SourceLabels {
		if l.Src == src {
			return l.Name
		}
	}
	return src.String()
}

func (ClockBridge) Read(dev *Device, id ID) (Value, error) {
	switch id.Name {
	case ClockRateName:
		idx, err := indexOfRate(dev.Global.AvailRates, dev.Global.Clock.Rate)
		if err != nil {
			return Value{}, err
		}
		return EnumValue(idx), nil
	case ClockSourceName:
		idx, err := indexOfSource(dev.Global.AvailSources, dev.Global.Clock.Src)
		if err != nil {
			return Value{}, err
		}
		return EnumValue(idx), nil
	case SourceLockedName:
		return BoolValue(dev.Global.External.Locked...), nil
	case SourceSlippedName:
		return BoolValue(dev.Global.External.Slipped...), nil
	default:
		return Value{}, ErrNotFound
	}
}

func (ClockBridge) Write(dev *Device, id ID, old, val Value) error {
	switch id.Name {
	case ClockRateName, ClockSourceName:
		if len(val.Enums) != 1 {
			return ErrValueCount
		}
	case SourceLockedName, SourceSlippedName:
		return ErrReadOnly
	default:
		return ErrNotFound
	}

	// The clock cannot be reprogrammed under a running stream.
	if dev.Global.Enabled {
		return fmt.Errorf("clock is in use by a running stream")
	}

	p := dev.Global
	switch id.Name {
	case ClockRateName:
		if val.Enums[0] < 0 || val.Enums[0] >= len(p.AvailRates) {
			return fmt.Errorf("%w: rate index %d of %d", ErrRange, val.Enums[0], len(p.AvailRates))
		}
		p.Clock.Rate = p.AvailRates[val.Enums[0]]
	case ClockSourceName:
		if val.Enums[0] < 0 || val.Enums[0] >= len(p.AvailSources) {
			return fmt.Errorf("%w: source index %d of %d", ErrRange, val.Enums[0], len(p.AvailSources))
		}
		p.Clock.Src = p.AvailSources[val.Enums[0]]
	}
	return dev.UpdateGlobal(&p)
}

func (ClockBridge) NotifiedElems() []ID {
	return []ID{
		{Iface: IfaceCard, Name: ClockRateName},
		{Iface: IfaceCard, Name: ClockSourceName},
		{Iface: IfaceCard, Name: SourceLockedName},
		{Iface: IfaceCard, Name: SourceSlippedName},
	}
}

func indexOfRate(table []section.ClockRate, r section.ClockRate) (int, error) {
	for i, v := range table {
		if v == r {
			return i, nil
		}
	}
	return 0, fmt.Errorf("rate %v not in capability table", r)
}

func indexOfSource(table []section.ClockSource, s section.ClockSource) (int, error) {
	for i, v := range table {
		if v == s {
			return i, nil
		}
	}
	return 0, fmt.Errorf("source %v not in capability table", s)
}

// Compile-time interface satisfaction check.
var _ Bridge = ClockBridge{}
