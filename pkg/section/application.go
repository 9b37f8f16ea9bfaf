package section

import "github.com/sndwire-protocol/sndwire-go/pkg/quadlet"

// ApplicationParams is the vendor-specific application section: an opaque
// quadlet-aligned block interpreted by model-specific code.
type ApplicationParams struct {
	Raw []byte
}

const applicationSectionName = "application"

func (*ApplicationParams) SectionName() string { return applicationSectionName }
func (*ApplicationParams) MinSize() int        { return quadlet.Size }
func (*ApplicationParams) NotifyMask() uint32  { return 0 }

func (*ApplicationParams) Writable(*Caps) error { return nil }

func (p *ApplicationParams) Encode(_ *Caps, raw []byte) error {
	if len(raw) < len(p.Raw) {
		return ErrShortData
	}
	copy(raw, p.Raw)
	return nil
}

func (p *ApplicationParams) Decode(_ *Caps, raw []byte) error {
	if err := quadlet.Aligned(raw); err != nil {
		return err
	}
	p.Raw = append(p.Raw[:0], raw...)
	return nil
}

// Compile-time interface satisfaction check.
var _ Mutable = (*ApplicationParams)(nil)
