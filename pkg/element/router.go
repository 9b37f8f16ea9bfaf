package element

import (
	"fmt"

	"github.com/sndwire-protocol/sndwire-go/pkg/section"
)

// RouterOutSrcName is the enumerated source selection per routable output.
const RouterOutSrcName = "router-out-src"

// RouterBridge exposes the routing matrix as one enumerated source per
// destination. The destination and source block lists come from the model
// record; their order fixes the element channel and label order.
type RouterBridge struct {
	Dsts []section.DstBlock
	Srcs []section.SrcBlock
}

// muteIndex is the label index used for destinations with no route. The
// source list always carries the mute block first.
const muteIndex = 0

func (b RouterBridge) Load(dev *Device) ([]Descriptor, error) {
	if !dev.HasExtension || !dev.Caps.Router.Exposed {
		return nil, nil
	}
	labels := make([]string, len(b.Srcs))
	for i, s := range b.Srcs {
		labels[i] = s.String()
	}
	return []Descriptor{{
		ID:       ID{Iface: IfaceMixer, Name: RouterOutSrcName},
		Kind:     KindEnum,
		Count:    len(b.Dsts),
		Writable: !dev.Caps.Router.ReadOnly,
		Labels:   labels,
	}}, nil
}

func (b RouterBridge) Read(dev *Device, id ID) (Value, error) {
	if id.Name != RouterOutSrcName {
		return Value{}, ErrNotFound
	}
	idxs := make([]int, len(b.Dsts))
	for i, dst := range b.Dsts {
		idxs[i] = muteIndex
		for _, e := range dev.Router.Entries {
			if e.Dst != dst {
				continue
			}
			for j, src := range b.Srcs {
				if e.Src == src {
					idxs[i] = j
				}
			}
			break
		}
	}
	return EnumValue(idxs...), nil
}

func (b RouterBridge) Write(dev *Device, id ID, old, val Value) error {
	if id.Name != RouterOutSrcName {
		return ErrNotFound
	}
	if len(val.Enums) != len(b.Dsts) {
		return fmt.Errorf("%w: %d values for %d destinations", ErrValueCount, len(val.Enums), len(b.Dsts))
	}
	for _, idx := range val.Enums {
		if idx < 0 || idx >= len(b.Srcs) {
			return fmt.Errorf("%w: source index %d of %d", ErrRange, idx, len(b.Srcs))
		}
	}

	p := section.RouterParams{Entries: make([]section.RouterEntry, 0, len(b.Dsts))}
	for i, dst := range b.Dsts {
		if val.Enums[i] == muteIndex {
			continue
		}
		p.Entries = append(p.Entries, section.RouterEntry{Src: b.Srcs[val.Enums[i]], Dst: dst})
	}
	if n := int(dev.Caps.Router.MaximumEntryCount); len(p.Entries) > n {
		return fmt.Errorf("%w: %d routes, limit %d", ErrRange, len(p.Entries), n)
	}
	return dev.UpdateRouter(&p)
}

func (b RouterBridge) NotifiedElems() []ID { return nil }

// Compile-time interface satisfaction check.
var _ Bridge = RouterBridge{}
