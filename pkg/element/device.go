package element

import (
	"errors"
	"time"

	"github.com/sndwire-protocol/sndwire-go/pkg/section"
	"github.com/sndwire-protocol/sndwire-go/pkg/transport"
)

// Device aggregates the transport, the section layout and the cached
// parameter sets of one attached device. All bridges operate against it; the
// caches are only touched from the runtime's consumer goroutine, so Device
// itself carries no locking.
type Device struct {
	Transport transport.Transport
	// Hw is the hardware mutual-exclusion bracket, nil when the transport
	// does not provide one.
	Hw      transport.Locker
	Timeout time.Duration

	Sections section.Sections
	Ext      section.ExtensionSections
	Caps     section.Caps

	// HasExtension reports whether the extended register space was found.
	HasExtension bool

	Global     section.GlobalParams
	Tx         section.TxStreamFormatParams
	Rx         section.RxStreamFormatParams
	ExtSync    section.ExtSyncParams
	Router     section.RouterParams
	Mixer      section.MixerParams
	Peak       section.PeakParams
	Standalone section.StandaloneParams
}

// NewDevice binds a transport. The parameter caches stay empty until Attach.
func NewDevice(t transport.Transport, timeout time.Duration) *Device {
	d := &Device{Transport: t, Timeout: timeout}
	if hw, ok := t.(transport.Locker); ok {
		d.Hw = hw
	}
	return d
}

// Attach reads the section layout and fills every parameter cache. The
// extension space is optional; general sections are not.
func (d *Device) Attach() error {
	sections, err := section.ReadSections(d.Transport, d.Timeout)
	if err != nil {
		return err
	}
	d.Sections = sections

	if err := d.cacheGeneral(); err != nil {
		return err
	}
	return d.cacheExtension()
}

func (d *Device) cacheGeneral() error {
	if err := section.CacheWhole(d.Transport, d.Sections.Global, &d.Caps, &d.Global, d.Timeout); err != nil {
		return err
	}
	if err := section.CacheWhole(d.Transport, d.Sections.TxStreamFormat, &d.Caps, &d.Tx, d.Timeout); err != nil {
		return err
	}
	if err := section.CacheWhole(d.Transport, d.Sections.RxStreamFormat, &d.Caps, &d.Rx, d.Timeout); err != nil {
		return err
	}
	if d.Sections.ExtSync.Size >= d.ExtSync.MinSize() {
		if err := section.CacheWhole(d.Transport, d.Sections.ExtSync, &d.Caps, &d.ExtSync, d.Timeout); err != nil {
			return err
		}
	}
	return nil
}

func (d *Device) cacheExtension() error {
	ext, err := section.ReadExtensionSections(d.Transport, d.Timeout)
	if err != nil {
		return err
	}
	caps, err := section.ReadCaps(d.Transport, ext, d.Timeout)
	if err != nil {
		// Devices without the extended register space answer the layout
		// read with zeros; treat an absent caps section as no extension.
		if errors.Is(err, section.ErrTooSmall) {
			return nil
		}
		return err
	}
	d.Ext = ext
	d.Caps = caps
	d.HasExtension = true

	if d.Caps.Router.Exposed {
		if err := section.CacheWhole(d.Transport, d.Ext.Router, &d.Caps, &d.Router, d.Timeout); err != nil {
			return err
		}
	}
	if d.Caps.Mixer.Exposed {
		if err := section.CacheWhole(d.Transport, d.Ext.Mixer, &d.Caps, &d.Mixer, d.Timeout); err != nil {
			return err
		}
	}
	if d.Ext.Standalone.Size >= d.Standalone.MinSize() {
		if err := section.CacheWhole(d.Transport, d.Ext.Standalone, &d.Caps, &d.Standalone, d.Timeout); err != nil {
			return err
		}
	}
	return nil
}

// Refresh re-caches every section whose notify mask intersects the
// notification word. It reports whether any cache changed.
func (d *Device) Refresh(notification uint32) (bool, error) {
	refreshed := false
	for _, s := range []struct {
		sec section.Section
		p   section.Params
	}{
		{d.Sections.Global, &d.Global},
		{d.Sections.TxStreamFormat, &d.Tx},
		{d.Sections.RxStreamFormat, &d.Rx},
		{d.Sections.ExtSync, &d.ExtSync},
	} {
		if s.sec.Size < s.p.MinSize() {
			continue
		}
		done, err := section.CacheNotified(d.Transport, s.sec, &d.Caps, s.p, notification, d.Timeout)
		if err != nil {
			return refreshed, err
		}
		refreshed = refreshed || done
	}
	return refreshed, nil
}

// CachePeaks re-reads the metered peak section. Driven by the runtime's
// metering timer, not by notifications.
func (d *Device) CachePeaks() error {
	if !d.HasExtension || !d.Caps.General.PeakAvailable {
		return nil
	}
	return section.CacheWhole(d.Transport, d.Ext.Peak, &d.Caps, &d.Peak, d.Timeout)
}

// withLock runs fn inside the hardware lock bracket. The unlock is
// unconditional, error or not.
func (d *Device) withLock(fn func() error) error {
	if d.Hw == nil {
		return fn()
	}
	if err := d.Hw.Lock(); err != nil {
		return err
	}
	defer d.Hw.Unlock()
	return fn()
}

// UpdateGlobal applies p to the global section with a partial write and
// folds it into the cache.
func (d *Device) UpdateGlobal(p *section.GlobalParams) error {
	return d.withLock(func() error {
		return section.UpdatePartial(d.Transport, d.Sections.Global, &d.Caps, p, &d.Global, d.Timeout)
	})
}

// UpdateMixer applies p to the mixer section with a partial write.
func (d *Device) UpdateMixer(p *section.MixerParams) error {
	return d.withLock(func() error {
		return section.UpdatePartial(d.Transport, d.Ext.Mixer, &d.Caps, p, &d.Mixer, d.Timeout)
	})
}

// UpdateStandalone applies p to the standalone section with a partial write.
func (d *Device) UpdateStandalone(p *section.StandaloneParams) error {
	return d.withLock(func() error {
		return section.UpdatePartial(d.Transport, d.Ext.Standalone, &d.Caps, p, &d.Standalone, d.Timeout)
	})
}

// UpdateRouter writes the full route list, then commands the device to load
// it for the rate range of the current clock.
func (d *Device) UpdateRouter(p *section.RouterParams) error {
	return d.withLock(func() error {
		if err := section.UpdateWhole(d.Transport, d.Ext.Router, &d.Caps, p, &d.Router, d.Timeout); err != nil {
			return err
		}
		op := section.Opcode{ID: section.OpLoadRouter, Rate: section.RateModeFor(d.Global.Clock.Rate)}
		_, err := section.Initiate(d.Transport, d.Ext.Cmd, &d.Caps, op, d.Timeout)
		return err
	})
}
