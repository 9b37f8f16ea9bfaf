package section

import (
	"errors"
	"reflect"
	"testing"

	"github.com/sndwire-protocol/sndwire-go/pkg/quadlet"
	"github.com/sndwire-protocol/sndwire-go/pkg/transport"
)

func TestCacheCurrentRouter(t *testing.T) {
	m := transport.NewMemTransport()
	sec := Section{Offset: extensionBase + 0x1000, Size: 3 * currentPairSize}
	caps := testRouterCaps()

	want := RouterParams{
		Entries: []RouterEntry{
			{Src: SrcBlock{ID: SrcBlockAvs0, Ch: 0}, Dst: DstBlock{ID: DstBlockIns0, Ch: 0}},
			{Src: SrcBlock{ID: SrcBlockMute, Ch: 0}, Dst: DstBlock{ID: DstBlockIns0, Ch: 1}},
		},
	}
	raw := make([]byte, quadlet.Size*(1+len(want.Entries)))
	if err := want.Encode(caps, raw); err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	m.LoadRegion(sec.BusAddr()+uint64(currentConfigOffset(RateModeMiddle)), raw)

	var p RouterParams
	if err := CacheCurrentRouter(m, sec, caps, RateModeMiddle, &p, testTimeout); err != nil {
		t.Fatalf("CacheCurrentRouter failed: %v", err)
	}
	if !reflect.DeepEqual(p.Entries, want.Entries) {
		t.Errorf("entries = %+v, want %+v", p.Entries, want.Entries)
	}
}

func TestCacheCurrentRouterSectionTooSmall(t *testing.T) {
	m := transport.NewMemTransport()
	sec := Section{Offset: extensionBase + 0x1000, Size: currentPairSize}

	var p RouterParams
	err := CacheCurrentRouter(m, sec, testRouterCaps(), RateModeHigh, &p, testTimeout)
	if !errors.Is(err, ErrTooSmall) {
		t.Fatalf("got %v, want ErrTooSmall", err)
	}
	if len(m.Journal()) != 0 {
		t.Error("undersized section must not be read")
	}
}

func TestCacheCurrentStreamFormats(t *testing.T) {
	m := transport.NewMemTransport()
	sec := Section{Offset: extensionBase + 0x1000, Size: 3 * currentPairSize}
	caps := testStreamCaps()

	tx := TxStreamFormatParams{
		Entries: []TxStreamFormatEntry{
			{IsoChannel: 0, PCM: 8, Labels: []string{"Analog 1"}},
		},
	}
	rx := RxStreamFormatParams{
		Entries: []RxStreamFormatEntry{
			{IsoChannel: 1, PCM: 2, Labels: []string{"Main L", "Main R"}},
		},
	}

	raw := make([]byte, currentStreamSize)
	if err := tx.Encode(caps, raw); err != nil {
		t.Fatalf("tx Encode failed: %v", err)
	}
	rxOff := 2*quadlet.Size + streamEntrySize
	if err := rx.Encode(caps, raw[rxOff:]); err != nil {
		t.Fatalf("rx Encode failed: %v", err)
	}
	m.LoadRegion(sec.BusAddr()+uint64(currentRouterSize), raw)

	var gotTx TxStreamFormatParams
	var gotRx RxStreamFormatParams
	if err := CacheCurrentStreamFormats(m, sec, caps, RateModeLow, &gotTx, &gotRx, testTimeout); err != nil {
		t.Fatalf("CacheCurrentStreamFormats failed: %v", err)
	}
	if !reflect.DeepEqual(gotTx.Entries, tx.Entries) {
		t.Errorf("tx entries = %+v, want %+v", gotTx.Entries, tx.Entries)
	}
	if !reflect.DeepEqual(gotRx.Entries, rx.Entries) {
		t.Errorf("rx entries = %+v, want %+v", gotRx.Entries, rx.Entries)
	}
}
