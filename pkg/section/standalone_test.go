package section

import (
	"reflect"
	"testing"

	"github.com/sndwire-protocol/sndwire-go/pkg/quadlet"
)

func TestStandaloneRoundTrip(t *testing.T) {
	tests := []struct {
		name   string
		params StandaloneParams
	}{
		{
			name: "internal clock",
			params: StandaloneParams{
				ClockSource:   SrcInternal,
				Adat:          AdatNormal,
				WordClock:     WordClockNormal,
				WordClockRate: WordClockRate{Numerator: 1, Denominator: 1},
				InternalRate:  Rate48000,
			},
		},
		{
			name: "word clock doubler",
			params: StandaloneParams{
				ClockSource:   SrcWordClock,
				AesHighRate:   true,
				Adat:          AdatSmux2,
				WordClock:     WordClockHigh,
				WordClockRate: WordClockRate{Numerator: 2, Denominator: 1},
				InternalRate:  Rate96000,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := make([]byte, tt.params.MinSize())
			if err := tt.params.Encode(nil, raw); err != nil {
				t.Fatalf("Encode failed: %v", err)
			}
			var got StandaloneParams
			if err := got.Decode(nil, raw); err != nil {
				t.Fatalf("Decode failed: %v", err)
			}
			if !reflect.DeepEqual(got, tt.params) {
				t.Errorf("round trip = %+v, want %+v", got, tt.params)
			}
		})
	}
}

func TestStandaloneWordClockRatePacking(t *testing.T) {
	p := StandaloneParams{
		WordClock:     WordClockMiddle,
		WordClockRate: WordClockRate{Numerator: 3, Denominator: 2},
	}

	raw := make([]byte, p.MinSize())
	if err := p.Encode(nil, raw); err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	v, _ := quadlet.Uint32(raw[3*quadlet.Size:])
	if want := uint32(0x02)<<0 | 2<<4 | 1<<16; v != want {
		t.Errorf("word clock register = %#x, want %#x", v, want)
	}
}

func TestStandaloneRejectsZeroRateTerms(t *testing.T) {
	p := StandaloneParams{WordClockRate: WordClockRate{Numerator: 0, Denominator: 1}}
	if err := p.Encode(nil, make([]byte, p.MinSize())); err == nil {
		t.Error("expected error for zero numerator")
	}
	p.WordClockRate = WordClockRate{Numerator: 1, Denominator: 0}
	if err := p.Encode(nil, make([]byte, p.MinSize())); err == nil {
		t.Error("expected error for zero denominator")
	}
}

func TestExtSyncDecode(t *testing.T) {
	var raw []byte
	raw = quadlet.AppendUint32(raw, uint32(SrcAdat))
	raw = quadlet.AppendBool(raw, true)
	raw = quadlet.AppendUint32(raw, uint32(Rate48000))
	raw = quadlet.AppendUint32(raw, 0x05)

	var p ExtSyncParams
	if err := p.Decode(nil, raw); err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	want := ExtSyncParams{
		Src:               SrcAdat,
		SrcLocked:         true,
		Rate:              Rate48000,
		AdatUserData:      0x05,
		AdatUserDataValid: true,
	}
	if p != want {
		t.Errorf("params = %+v, want %+v", p, want)
	}
}

func TestExtSyncAdatUserDataUnavailable(t *testing.T) {
	var raw []byte
	raw = quadlet.AppendUint32(raw, uint32(SrcWordClock))
	raw = quadlet.AppendBool(raw, false)
	raw = quadlet.AppendUint32(raw, uint32(RateNone))
	raw = quadlet.AppendUint32(raw, adatUserDataUnavail)

	var p ExtSyncParams
	if err := p.Decode(nil, raw); err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if p.AdatUserDataValid {
		t.Error("user data reported valid despite unavailable flag")
	}
	if p.AdatUserData != 0 {
		t.Errorf("user data = %#x, want 0", p.AdatUserData)
	}
}

func TestApplicationRoundTrip(t *testing.T) {
	p := ApplicationParams{Raw: quadlet.AppendUint32(nil, 0xdeadbeef)}

	raw := make([]byte, 2*quadlet.Size)
	if err := p.Encode(nil, raw); err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	var got ApplicationParams
	if err := got.Decode(nil, raw); err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if len(got.Raw) != len(raw) {
		t.Fatalf("raw length = %d, want %d", len(got.Raw), len(raw))
	}
	v, _ := quadlet.Uint32(got.Raw)
	if v != 0xdeadbeef {
		t.Errorf("first quadlet = %#x", v)
	}
}
