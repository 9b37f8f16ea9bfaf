package section

import "github.com/sndwire-protocol/sndwire-go/pkg/quadlet"

// ExtSyncParams is the read-only external synchronization section: which
// source the sync engine follows, whether it is locked, the detected rate
// and the ADAT user data bits when the source carries them.
type ExtSyncParams struct {
	Src       ClockSource
	SrcLocked bool
	Rate      ClockRate
	// AdatUserData holds the four user bits of the ADAT stream;
	// AdatUserDataValid reports whether the hardware detected any.
	AdatUserData      uint8
	AdatUserDataValid bool
}

const extSyncSectionName = "ext-sync"

const (
	adatUserDataMask    = 0x0f
	adatUserDataUnavail = 0x10
)

func (*ExtSyncParams) SectionName() string { return extSyncSectionName }
func (*ExtSyncParams) MinSize() int        { return 4 * quadlet.Size }
func (*ExtSyncParams) NotifyMask() uint32  { return NotifyExtStatus }

// Encode exists to satisfy Params; the section is never written.
func (p *ExtSyncParams) Encode(*Caps, []byte) error {
	return ErrReadOnly
}

func (p *ExtSyncParams) Decode(_ *Caps, raw []byte) error {
	if len(raw) < p.MinSize() {
		return ErrShortData
	}
	v, _ := quadlet.Uint32(raw)
	p.Src = ClockSource(v & 0xff)

	p.SrcLocked, _ = quadlet.Bool(raw[quadlet.Size:])

	v, _ = quadlet.Uint32(raw[2*quadlet.Size:])
	p.Rate = ClockRate(v & 0xff)

	v, _ = quadlet.Uint32(raw[3*quadlet.Size:])
	p.AdatUserDataValid = v&adatUserDataUnavail == 0
	p.AdatUserData = uint8(v & adatUserDataMask)
	return nil
}

// Compile-time interface satisfaction check.
var _ Params = (*ExtSyncParams)(nil)
