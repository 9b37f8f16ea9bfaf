package element

import (
	"fmt"
	"strconv"

	"github.com/sndwire-protocol/sndwire-go/pkg/avc"
	"github.com/sndwire-protocol/sndwire-go/pkg/models"
)

// Element names of the AVC bridge.
const (
	PhysOutVolumeName = "phys-output-volume"
	PhysOutMuteName   = "phys-output-mute"
	OutputSourceName  = "output-source"
)

// Volume range published for feature level elements, in centi-dB. The wire
// unit is 1/256 dB with -0x8000 as negative infinity.
var avcVolumeDB = DBInterval{Min: -12800, Max: 0}

// AvcBridge serves the capability set of an AVC-family model. These devices
// carry no sectioned register space and no parameter cache; every element
// access is one or more command transactions, issued from the consumer
// goroutine like any other bus traffic.
type AvcBridge struct {
	Model *models.Model
}

func (b AvcBridge) Load(dev *Device) ([]Descriptor, error) {
	var descs []Descriptor
	if b.Model.Clock != nil {
		freqs := b.Model.Clock.Frequencies()
		labels := make([]string, len(freqs))
		for i, f := range freqs {
			labels[i] = strconv.FormatUint(uint64(f), 10)
		}
		descs = append(descs, Descriptor{
			ID:       ID{Iface: IfaceCard, Name: ClockRateName},
			Kind:     KindEnum,
			Count:    1,
			Writable: true,
			Labels:   labels,
		})
	}
	if b.Model.ClockSrc != nil {
		descs = append(descs, Descriptor{
			ID:       ID{Iface: IfaceCard, Name: ClockSourceName},
			Kind:     KindEnum,
			Count:    1,
			Writable: true,
			Labels:   append([]string(nil), b.Model.ClockSrc.SourceLabels()...),
		})
	}
	if b.Model.Levels != nil {
		db := avcVolumeDB
		descs = append(descs, Descriptor{
			ID:       ID{Iface: IfaceMixer, Name: PhysOutVolumeName},
			Kind:     KindInt,
			Count:    b.Model.Levels.LevelCount(),
			Writable: true,
			Min:      int32(models.LevelMin),
			Max:      int32(models.LevelMax),
			Step:     int32(models.LevelStep),
			DB:       &db,
		})
	}
	if b.Model.Mutes != nil {
		descs = append(descs, Descriptor{
			ID:       ID{Iface: IfaceMixer, Name: PhysOutMuteName},
			Kind:     KindBool,
			Count:    b.Model.Mutes.MuteCount(),
			Writable: true,
		})
	}
	if b.Model.Selectors != nil {
		descs = append(descs, Descriptor{
			ID:       ID{Iface: IfaceMixer, Name: OutputSourceName},
			Kind:     KindEnum,
			Count:    b.Model.Selectors.SelectorCount(),
			Writable: true,
			Labels:   append([]string(nil), b.Model.Selectors.SelectorChoices()...),
		})
	}
	return descs, nil
}

func (b AvcBridge) Read(dev *Device, id ID) (Value, error) {
	c := avc.NewClient(dev.Transport)
	switch id.Name {
	case ClockRateName:
		if b.Model.Clock == nil {
			return Value{}, ErrNotFound
		}
		idx, err := b.Model.Clock.ReadFrequency(c, dev.Timeout)
		if err != nil {
			return Value{}, err
		}
		return EnumValue(idx), nil

	case ClockSourceName:
		if b.Model.ClockSrc == nil {
			return Value{}, ErrNotFound
		}
		idx, err := b.Model.ClockSrc.ReadSource(c, dev.Timeout)
		if err != nil {
			return Value{}, err
		}
		return EnumValue(idx), nil

	case PhysOutVolumeName:
		if b.Model.Levels == nil {
			return Value{}, ErrNotFound
		}
		vols := make([]int32, b.Model.Levels.LevelCount())
		for i := range vols {
			v, err := b.Model.Levels.ReadLevel(c, i, dev.Timeout)
			if err != nil {
				return Value{}, err
			}
			vols[i] = int32(v)
		}
		return IntValue(vols...), nil

	case PhysOutMuteName:
		if b.Model.Mutes == nil {
			return Value{}, ErrNotFound
		}
		mutes := make([]bool, b.Model.Mutes.MuteCount())
		for i := range mutes {
			v, err := b.Model.Mutes.ReadMute(c, i, dev.Timeout)
			if err != nil {
				return Value{}, err
			}
			mutes[i] = v
		}
		return BoolValue(mutes...), nil

	case OutputSourceName:
		if b.Model.Selectors == nil {
			return Value{}, ErrNotFound
		}
		vals := make([]int, b.Model.Selectors.SelectorCount())
		for i := range vals {
			v, err := b.Model.Selectors.ReadSelector(c, i, dev.Timeout)
			if err != nil {
				return Value{}, err
			}
			vals[i] = v
		}
		return EnumValue(vals...), nil

	default:
		return Value{}, ErrNotFound
	}
}

func (b AvcBridge) Write(dev *Device, id ID, old, val Value) error {
	c := avc.NewClient(dev.Transport)
	switch id.Name {
	case ClockRateName:
		if b.Model.Clock == nil {
			return ErrNotFound
		}
		if len(val.Enums) != 1 {
			return ErrValueCount
		}
		if n := len(b.Model.Clock.Frequencies()); val.Enums[0] < 0 || val.Enums[0] >= n {
			return fmt.Errorf("%w: rate index %d of %d", ErrRange, val.Enums[0], n)
		}
		// Clock commands get the quirk-widened timeout: some firmware
		// answers them with INTERIM first.
		return b.Model.Clock.WriteFrequency(c, val.Enums[0], b.Model.WriteTimeout(dev.Timeout))

	case ClockSourceName:
		if b.Model.ClockSrc == nil {
			return ErrNotFound
		}
		if len(val.Enums) != 1 {
			return ErrValueCount
		}
		if n := len(b.Model.ClockSrc.SourceLabels()); val.Enums[0] < 0 || val.Enums[0] >= n {
			return fmt.Errorf("%w: source index %d of %d", ErrRange, val.Enums[0], n)
		}
		return b.Model.ClockSrc.WriteSource(c, val.Enums[0], b.Model.WriteTimeout(dev.Timeout))

	case PhysOutVolumeName:
		if b.Model.Levels == nil {
			return ErrNotFound
		}
		n := b.Model.Levels.LevelCount()
		if len(val.Ints) != n {
			return ErrValueCount
		}
		for i, v := range val.Ints {
			if v < int32(models.LevelMin) || v > int32(models.LevelMax) {
				return fmt.Errorf("%w: volume %d on channel %d", ErrRange, v, i)
			}
		}
		for i, v := range val.Ints {
			if len(old.Ints) == n && old.Ints[i] == v {
				continue
			}
			if err := b.Model.Levels.WriteLevel(c, i, int16(v), dev.Timeout); err != nil {
				return err
			}
		}
		return nil

	case PhysOutMuteName:
		if b.Model.Mutes == nil {
			return ErrNotFound
		}
		n := b.Model.Mutes.MuteCount()
		if len(val.Bools) != n {
			return ErrValueCount
		}
		for i, v := range val.Bools {
			if len(old.Bools) == n && old.Bools[i] == v {
				continue
			}
			if err := b.Model.Mutes.WriteMute(c, i, v, dev.Timeout); err != nil {
				return err
			}
		}
		return nil

	case OutputSourceName:
		if b.Model.Selectors == nil {
			return ErrNotFound
		}
		n := b.Model.Selectors.SelectorCount()
		if len(val.Enums) != n {
			return ErrValueCount
		}
		choices := len(b.Model.Selectors.SelectorChoices())
		for i, v := range val.Enums {
			if v < 0 || v >= choices {
				return fmt.Errorf("%w: choice %d on selector %d", ErrRange, v, i)
			}
		}
		for i, v := range val.Enums {
			if len(old.Enums) == n && old.Enums[i] == v {
				continue
			}
			if err := b.Model.Selectors.WriteSelector(c, i, v, dev.Timeout); err != nil {
				return err
			}
		}
		return nil

	default:
		return ErrNotFound
	}
}

// NotifiedElems is empty: AVC devices post no asynchronous notifications;
// values change only through host writes.
func (AvcBridge) NotifiedElems() []ID { return nil }

// Compile-time interface satisfaction check.
var _ Bridge = AvcBridge{}
