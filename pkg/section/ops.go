package section

import (
	"time"

	"github.com/sndwire-protocol/sndwire-go/pkg/quadlet"
	"github.com/sndwire-protocol/sndwire-go/pkg/transport"
)

// Params is the typed parameter set of one section. Encode produces the full
// wire image of the section; fields the hardware drives on its own (metering,
// lock states) are left zero in the image so partial updates never write
// them. Decode consumes the full image.
type Params interface {
	// SectionName is the stable identifier used to tag errors.
	SectionName() string

	// MinSize is the smallest section byte size the type can decode. A
	// declared size below it is a protocol error at first access.
	MinSize() int

	// NotifyMask is the set of notification bits that invalidate the
	// cached state of this section.
	NotifyMask() uint32

	Decode(caps *Caps, raw []byte) error
	Encode(caps *Caps, raw []byte) error
}

// Mutable is a parameter set whose section accepts writes. Writable reports
// why the section cannot be written, if it cannot.
type Mutable interface {
	Params
	Writable(caps *Caps) error
}

func checkSize(sec Section, p Params) error {
	if sec.Size < p.MinSize() {
		return secErrf(p.SectionName(), "%w: declared %d, need %d", ErrTooSmall, sec.Size, p.MinSize())
	}
	return nil
}

// CacheWhole reads the full section range and decodes it into p. The cached
// value is authoritative until the next read or write.
func CacheWhole(t transport.Transport, sec Section, caps *Caps, p Params, timeout time.Duration) error {
	if err := checkSize(sec, p); err != nil {
		return err
	}
	raw, err := t.Read(sec.BusAddr(), sec.Size, timeout)
	if err != nil {
		return secErr(p.SectionName(), err)
	}
	return secErr(p.SectionName(), p.Decode(caps, raw))
}

// UpdateWhole encodes p and writes the full section range, then folds the
// written image back into old.
func UpdateWhole(t transport.Transport, sec Section, caps *Caps, p Mutable, old Params, timeout time.Duration) error {
	if err := checkSize(sec, p); err != nil {
		return err
	}
	if err := p.Writable(caps); err != nil {
		return secErr(p.SectionName(), err)
	}
	raw := make([]byte, sec.Size)
	if err := p.Encode(caps, raw); err != nil {
		return secErr(p.SectionName(), err)
	}
	if err := t.Write(sec.BusAddr(), raw, timeout); err != nil {
		return secErr(p.SectionName(), err)
	}
	return secErr(p.SectionName(), old.Decode(caps, raw))
}

// UpdatePartial encodes both the desired and the cached state, writes only
// the quadlets that differ and folds the written image back into old. Using
// the cache as the old image keeps bus traffic down to true deltas and never
// clobbers neighbor fields changing concurrently on hardware.
func UpdatePartial(t transport.Transport, sec Section, caps *Caps, p Mutable, old Params, timeout time.Duration) error {
	if err := checkSize(sec, p); err != nil {
		return err
	}
	if err := p.Writable(caps); err != nil {
		return secErr(p.SectionName(), err)
	}

	newImg := make([]byte, sec.Size)
	if err := p.Encode(caps, newImg); err != nil {
		return secErr(p.SectionName(), err)
	}
	oldImg := make([]byte, sec.Size)
	if err := old.Encode(caps, oldImg); err != nil {
		return secErr(p.SectionName(), err)
	}

	idxs, err := quadlet.Diff(oldImg, newImg)
	if err != nil {
		return secErr(p.SectionName(), err)
	}
	for _, i := range idxs {
		pos := i * quadlet.Size
		if err := t.Write(sec.BusAddr()+uint64(pos), newImg[pos:pos+quadlet.Size], timeout); err != nil {
			return secErr(p.SectionName(), err)
		}
	}
	return secErr(p.SectionName(), old.Decode(caps, newImg))
}

// CacheNotified re-reads the section only when the notification word
// intersects the section's static mask. It reports whether a re-read
// happened.
func CacheNotified(t transport.Transport, sec Section, caps *Caps, p Params, notification uint32, timeout time.Duration) (bool, error) {
	if notification&p.NotifyMask() == 0 {
		return false, nil
	}
	if err := CacheWhole(t, sec, caps, p, timeout); err != nil {
		return false, err
	}
	return true, nil
}
