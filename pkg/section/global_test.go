package section

import (
	"errors"
	"reflect"
	"testing"

	"github.com/sndwire-protocol/sndwire-go/pkg/quadlet"
)

func putQuadlet(raw []byte, off int, v uint32) {
	copy(raw[off:], quadlet.AppendUint32(nil, v))
}

func mustLabel(t *testing.T, name string, size int) []byte {
	t.Helper()
	raw, err := quadlet.BuildLabel(name, size)
	if err != nil {
		t.Fatalf("BuildLabel failed: %v", err)
	}
	return raw
}

func mustLabels(t *testing.T, names []string, size int) []byte {
	t.Helper()
	raw, err := quadlet.BuildLabels(names, size)
	if err != nil {
		t.Fatalf("BuildLabels failed: %v", err)
	}
	return raw
}

func TestGlobalDecodeOldLayout(t *testing.T) {
	raw := make([]byte, globalMinSize)
	copy(raw[globalOwner:], quadlet.AppendUint64(nil, 0xffc0_0000_4321))
	putQuadlet(raw, globalLatestNotify, NotifyLockChg)
	copy(raw[globalNickname:], mustLabel(t, "Desk 6", NicknameSize))
	putQuadlet(raw, globalClockSelect, uint32(Rate44100)<<8|uint32(SrcInternal))
	putQuadlet(raw, globalEnabled, 1)
	putQuadlet(raw, globalStatus, uint32(Rate44100)<<8|0x1)
	putQuadlet(raw, globalExtStatus, 1<<6) // stream receiver 1 locked
	putQuadlet(raw, globalCurrentRate, 44100)

	var p GlobalParams
	if err := p.Decode(nil, raw); err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	if p.Owner != 0xffc0_0000_4321 {
		t.Errorf("owner = %#x", p.Owner)
	}
	if p.LatestNotification != NotifyLockChg {
		t.Errorf("latest notification = %#x", p.LatestNotification)
	}
	if p.Nickname != "Desk 6" {
		t.Errorf("nickname = %q", p.Nickname)
	}
	if p.Clock != (ClockConfig{Rate: Rate44100, Src: SrcInternal}) {
		t.Errorf("clock = %+v", p.Clock)
	}
	if !p.Enabled {
		t.Error("enabled = false")
	}
	if p.Status != (ClockStatus{SrcLocked: true, Rate: Rate44100}) {
		t.Errorf("status = %+v", p.Status)
	}
	if p.CurrentRate != 44100 {
		t.Errorf("current rate = %d", p.CurrentRate)
	}

	// Pre-extension firmware reports fixed clock choices.
	if p.Version != 0 {
		t.Errorf("version = %#x", p.Version)
	}
	if !reflect.DeepEqual(p.AvailRates, []ClockRate{Rate44100, Rate48000}) {
		t.Errorf("avail rates = %v", p.AvailRates)
	}
	if !reflect.DeepEqual(p.AvailSources, []ClockSource{SrcInternal}) {
		t.Errorf("avail sources = %v", p.AvailSources)
	}
	wantLabels := []SourceLabel{
		{Src: SrcArx1, Name: "Stream-1"},
		{Src: SrcInternal, Name: "internal"},
	}
	if !reflect.DeepEqual(p.SourceLabels, wantLabels) {
		t.Errorf("source labels = %v", p.SourceLabels)
	}

	wantExt := ExtSourceStates{
		Sources: []ClockSource{SrcArx1},
		Locked:  []bool{true},
		Slipped: []bool{false},
	}
	if !reflect.DeepEqual(p.External, wantExt) {
		t.Errorf("external = %+v, want %+v", p.External, wantExt)
	}
}

func TestGlobalDecodeExtended(t *testing.T) {
	raw := make([]byte, globalClockNames+clockNamesSize)
	copy(raw[globalNickname:], mustLabel(t, "Studio", NicknameSize))
	putQuadlet(raw, globalClockSelect, uint32(Rate48000)<<8|uint32(SrcAes1))
	putQuadlet(raw, globalStatus, uint32(Rate48000)<<8|0x1)
	// AES1 and stream receiver 1 locked, ADAT slipped.
	putQuadlet(raw, globalExtStatus, 1<<4<<16|1<<6|1<<0)
	putQuadlet(raw, globalCurrentRate, 48000)
	putQuadlet(raw, globalVersion, 0x0100_0048)

	// Rates 44.1 through 96 kHz; sources AES1, ADAT, word clock, stream
	// receiver 1 and internal.
	rateBits := uint32(1<<1 | 1<<2 | 1<<3 | 1<<4)
	srcBits := uint32(1<<0 | 1<<5 | 1<<7 | 1<<8 | 1<<12)
	putQuadlet(raw, globalClockCaps, srcBits<<16|rateBits)

	names := []string{
		"AES1", "unused", "unused", "unused", "unused", "ADAT", "unused",
		"Word Clock", "unused", "unused", "unused", "unused", "Internal",
	}
	copy(raw[globalClockNames:], mustLabels(t, names, clockNamesSize))

	var p GlobalParams
	if err := p.Decode(nil, raw); err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	if p.Version != 0x0100_0048 {
		t.Errorf("version = %#x", p.Version)
	}
	if !reflect.DeepEqual(p.AvailRates, []ClockRate{Rate44100, Rate48000, Rate88200, Rate96000}) {
		t.Errorf("avail rates = %v", p.AvailRates)
	}
	if !reflect.DeepEqual(p.AvailSources, []ClockSource{SrcAes1, SrcAdat, SrcWordClock, SrcInternal}) {
		t.Errorf("avail sources = %v", p.AvailSources)
	}

	// Stream receivers keep a substituted name; "unused" slots disappear.
	wantLabels := []SourceLabel{
		{Src: SrcAes1, Name: "AES1"},
		{Src: SrcAdat, Name: "ADAT"},
		{Src: SrcWordClock, Name: "Word Clock"},
		{Src: SrcArx1, Name: "Stream-1"},
		{Src: SrcInternal, Name: "Internal"},
	}
	if !reflect.DeepEqual(p.SourceLabels, wantLabels) {
		t.Errorf("source labels = %v, want %v", p.SourceLabels, wantLabels)
	}

	wantExt := ExtSourceStates{
		Sources: []ClockSource{SrcAes1, SrcAdat, SrcArx1, SrcWordClock},
		Locked:  []bool{true, false, true, false},
		Slipped: []bool{false, true, false, false},
	}
	if !reflect.DeepEqual(p.External, wantExt) {
		t.Errorf("external = %+v, want %+v", p.External, wantExt)
	}
}

func TestGlobalEncodeWritesOnlyHostFields(t *testing.T) {
	p := GlobalParams{
		Owner:              0xffc0_0000_4321,
		LatestNotification: NotifyLockChg,
		Nickname:           "Studio",
		Clock:              ClockConfig{Rate: Rate96000, Src: SrcAdat},
		Enabled:            true,
		Status:             ClockStatus{SrcLocked: true, Rate: Rate96000},
		CurrentRate:        96000,
	}

	raw := make([]byte, globalMinSize)
	if err := p.Encode(nil, raw); err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	name, err := quadlet.ParseLabel(raw[globalNickname : globalNickname+NicknameSize])
	if err != nil {
		t.Fatalf("ParseLabel failed: %v", err)
	}
	if name != "Studio" {
		t.Errorf("nickname in image = %q", name)
	}
	v, _ := quadlet.Uint32(raw[globalClockSelect:])
	if clockConfigFromWord(v) != p.Clock {
		t.Errorf("clock word = %#x", v)
	}

	// Hardware-owned registers stay zero so deltas never touch them.
	for _, off := range []int{globalOwner, globalOwner + 4, globalLatestNotify, globalEnabled, globalStatus, globalExtStatus, globalCurrentRate} {
		if v, _ := quadlet.Uint32(raw[off:]); v != 0 {
			t.Errorf("register at %#x = %#x, want 0", off, v)
		}
	}
}

func TestGlobalDecodeShort(t *testing.T) {
	var p GlobalParams
	if err := p.Decode(nil, make([]byte, globalMinSize-4)); !errors.Is(err, ErrShortData) {
		t.Errorf("got %v, want ErrShortData", err)
	}
}
