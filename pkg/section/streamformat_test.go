package section

import (
	"errors"
	"reflect"
	"testing"

	"github.com/sndwire-protocol/sndwire-go/pkg/quadlet"
)

func testStreamCaps() *Caps {
	return &Caps{
		General: GeneralCaps{
			DynamicStreamFormat: true,
			MaxTxStreams:        2,
			MaxRxStreams:        2,
		},
	}
}

func TestTxStreamFormatRoundTrip(t *testing.T) {
	caps := testStreamCaps()

	p := TxStreamFormatParams{
		Entries: []TxStreamFormatEntry{
			{
				IsoChannel: 0,
				PCM:        8,
				MIDI:       1,
				Speed:      2,
				Labels:     []string{"Analog 1", "Analog 2"},
			},
			{
				IsoChannel: -1,
				PCM:        2,
				Labels:     []string{"SPDIF L", "SPDIF R"},
			},
		},
	}
	p.Entries[0].Iec60958[0] = Iec60958Param{Cap: true, Enable: true}
	p.Entries[0].Iec60958[1] = Iec60958Param{Cap: true}

	raw := make([]byte, 2*quadlet.Size+2*streamEntrySize)
	if err := p.Encode(caps, raw); err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	count, _ := quadlet.Uint32(raw)
	if count != 2 {
		t.Errorf("entry count in image = %d", count)
	}
	size, _ := quadlet.Uint32(raw[quadlet.Size:])
	if int(size) != streamEntrySize/4 {
		t.Errorf("entry size in image = %d quadlets", size)
	}

	var got TxStreamFormatParams
	if err := got.Decode(caps, raw); err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if !reflect.DeepEqual(got.Entries, p.Entries) {
		t.Errorf("entries = %+v, want %+v", got.Entries, p.Entries)
	}
}

func TestRxStreamFormatRoundTrip(t *testing.T) {
	caps := testStreamCaps()

	p := RxStreamFormatParams{
		Entries: []RxStreamFormatEntry{
			{
				IsoChannel: 1,
				Start:      0,
				PCM:        8,
				MIDI:       1,
				Labels:     []string{"Main L", "Main R"},
			},
		},
	}

	raw := make([]byte, 2*quadlet.Size+streamEntrySize)
	if err := p.Encode(caps, raw); err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	var got RxStreamFormatParams
	if err := got.Decode(caps, raw); err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if !reflect.DeepEqual(got.Entries, p.Entries) {
		t.Errorf("entries = %+v, want %+v", got.Entries, p.Entries)
	}
}

func TestStreamFormatEncodeCountExceedsCaps(t *testing.T) {
	caps := testStreamCaps()

	p := TxStreamFormatParams{Entries: make([]TxStreamFormatEntry, 3)}
	raw := make([]byte, 2*quadlet.Size+3*streamEntrySize)
	if err := p.Encode(caps, raw); !errors.Is(err, ErrCountExceedsCaps) {
		t.Errorf("got %v, want ErrCountExceedsCaps", err)
	}
}

func TestStreamFormatDecodeIsSelfDescribing(t *testing.T) {
	// The general sections decode before the extension caps are fetched, and
	// on devices without the extension space they decode with none at all.
	// The count/size header alone bounds the decode.
	src := TxStreamFormatParams{
		Entries: []TxStreamFormatEntry{{IsoChannel: 0, PCM: 2, Labels: []string{"Out L", "Out R"}}},
	}
	raw := make([]byte, 2*quadlet.Size+streamEntrySize)
	if err := src.Encode(testStreamCaps(), raw); err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	var p TxStreamFormatParams
	if err := p.Decode(&Caps{}, raw); err != nil {
		t.Fatalf("Decode with zero caps failed: %v", err)
	}
	if !reflect.DeepEqual(p.Entries, src.Entries) {
		t.Errorf("entries = %+v, want %+v", p.Entries, src.Entries)
	}

	var rx RxStreamFormatParams
	if err := rx.Decode(&Caps{}, raw); err != nil {
		t.Fatalf("rx Decode with zero caps failed: %v", err)
	}
	if len(rx.Entries) != 1 {
		t.Errorf("rx entries = %d, want 1", len(rx.Entries))
	}
}

func TestStreamFormatDeviceEntrySizePreserved(t *testing.T) {
	caps := testStreamCaps()

	// A newer device using larger entries than this revision knows about.
	const deviceSize = streamEntrySize + 8
	raw := make([]byte, 2*quadlet.Size+deviceSize)
	copy(raw, quadlet.AppendUint32(nil, 1))
	copy(raw[quadlet.Size:], quadlet.AppendUint32(nil, deviceSize/4))

	var p TxStreamFormatParams
	if err := p.Decode(caps, raw); err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	out := make([]byte, len(raw))
	if err := p.Encode(caps, out); err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	size, _ := quadlet.Uint32(out[quadlet.Size:])
	if int(size) != deviceSize/4 {
		t.Errorf("re-encoded entry size = %d quadlets, want %d", size, deviceSize/4)
	}
}

func TestStreamFormatWritableGate(t *testing.T) {
	caps := testStreamCaps()
	caps.General.DynamicStreamFormat = false

	var tx TxStreamFormatParams
	if err := tx.Writable(caps); !errors.Is(err, ErrReadOnly) {
		t.Errorf("tx: got %v, want ErrReadOnly", err)
	}
	var rx RxStreamFormatParams
	if err := rx.Writable(caps); !errors.Is(err, ErrReadOnly) {
		t.Errorf("rx: got %v, want ErrReadOnly", err)
	}
}

func TestStreamFormatShortEntry(t *testing.T) {
	caps := testStreamCaps()

	raw := make([]byte, 2*quadlet.Size+streamEntrySize)
	copy(raw, quadlet.AppendUint32(nil, 1))
	// Entry size below the fixed entry layout.
	copy(raw[quadlet.Size:], quadlet.AppendUint32(nil, 4))

	var p RxStreamFormatParams
	if err := p.Decode(caps, raw); !errors.Is(err, ErrShortData) {
		t.Errorf("got %v, want ErrShortData", err)
	}
}
