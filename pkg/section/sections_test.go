package section

import (
	"errors"
	"testing"
	"time"

	"github.com/sndwire-protocol/sndwire-go/pkg/quadlet"
	"github.com/sndwire-protocol/sndwire-go/pkg/transport"
)

const testTimeout = 100 * time.Millisecond

func TestParseSectionsLayout(t *testing.T) {
	// Layout table of a shipping device; offsets and sizes are stored as
	// quadlet counts.
	raw := []byte{
		0x00, 0x00, 0x00, 0x0a, 0x00, 0x00, 0x00, 0x5f,
		0x00, 0x00, 0x00, 0x69, 0x00, 0x00, 0x00, 0x8e,
		0x00, 0x00, 0x00, 0xf7, 0x00, 0x00, 0x01, 0x1a,
		0x00, 0x00, 0x02, 0x11, 0x00, 0x00, 0x00, 0x04,
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
	}

	s, err := ParseSections(raw)
	if err != nil {
		t.Fatalf("ParseSections failed: %v", err)
	}

	want := Sections{
		Global:         Section{Offset: 0x28, Size: 0x17c},
		TxStreamFormat: Section{Offset: 0x1a4, Size: 0x238},
		RxStreamFormat: Section{Offset: 0x3dc, Size: 0x468},
		ExtSync:        Section{Offset: 0x844, Size: 0x10},
	}
	if s != want {
		t.Errorf("sections = %+v, want %+v", s, want)
	}

	if got := AppendSections(nil, s); string(got) != string(raw) {
		t.Errorf("re-encoded table = %x, want %x", got, raw)
	}
}

func TestParseSectionsShort(t *testing.T) {
	if _, err := ParseSections(make([]byte, SectionsSize-1)); !errors.Is(err, ErrShortData) {
		t.Errorf("got %v, want ErrShortData", err)
	}
}

func TestSectionBusAddr(t *testing.T) {
	sec := Section{Offset: 0x28, Size: 0x17c}
	if got := sec.BusAddr(); got != BaseAddr+0x28 {
		t.Errorf("BusAddr = %#x, want %#x", got, BaseAddr+0x28)
	}
}

func TestParseExtensionSectionsRebase(t *testing.T) {
	var raw []byte
	// Nine descriptors, caps first at relative offset 0x28.
	raw = quadlet.AppendUint32(raw, 0x0a)
	raw = quadlet.AppendUint32(raw, 0x04)
	for i := 0; i < 8; i++ {
		raw = quadlet.AppendUint32(raw, uint32(0x20+4*i))
		raw = quadlet.AppendUint32(raw, 0x08)
	}

	s, err := ParseExtensionSections(raw)
	if err != nil {
		t.Fatalf("ParseExtensionSections failed: %v", err)
	}
	if s.Caps.Offset != extensionBase+0x28 {
		t.Errorf("caps offset = %#x, want %#x", s.Caps.Offset, extensionBase+0x28)
	}
	if s.Caps.Size != 0x10 {
		t.Errorf("caps size = %#x, want 0x10", s.Caps.Size)
	}
	if got := s.Caps.BusAddr(); got != BaseAddr+extensionBase+0x28 {
		t.Errorf("caps bus addr = %#x, want %#x", got, BaseAddr+extensionBase+0x28)
	}
	if s.Application.Offset != extensionBase+4*(0x20+4*7) {
		t.Errorf("application offset = %#x", s.Application.Offset)
	}
}

func TestReadSections(t *testing.T) {
	m := transport.NewMemTransport()
	want := Sections{
		Global:  Section{Offset: 0x28, Size: 0x60},
		ExtSync: Section{Offset: 0x88, Size: 0x10},
	}
	m.LoadRegion(BaseAddr, AppendSections(nil, want))

	got, err := ReadSections(m, testTimeout)
	if err != nil {
		t.Fatalf("ReadSections failed: %v", err)
	}
	if got != want {
		t.Errorf("sections = %+v, want %+v", got, want)
	}
}

func TestReadSectionsTransportError(t *testing.T) {
	m := transport.NewMemTransport()
	m.FailNext(transport.ErrTimeout)
	if _, err := ReadSections(m, testTimeout); !errors.Is(err, transport.ErrTimeout) {
		t.Errorf("got %v, want ErrTimeout", err)
	}
}
