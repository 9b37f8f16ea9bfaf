package section

import (
	"fmt"

	"github.com/sndwire-protocol/sndwire-go/pkg/quadlet"
)

// Iec60958Channels is the channel count of the IEC 60958 mode table in every
// stream format entry.
const Iec60958Channels = 32

// Iec60958Param is the IEC 60958 mode of one data channel.
type Iec60958Param struct {
	Cap    bool
	Enable bool
}

func appendIec60958(buf []byte, params *[Iec60958Channels]Iec60958Param) []byte {
	var caps, enables uint32
	for i, p := range params {
		if p.Cap {
			caps |= 1 << i
		}
		if p.Enable {
			enables |= 1 << i
		}
	}
	buf = quadlet.AppendUint32(buf, caps)
	return quadlet.AppendUint32(buf, enables)
}

func parseIec60958(params *[Iec60958Channels]Iec60958Param, raw []byte) error {
	caps, err := quadlet.Uint32(raw)
	if err != nil {
		return err
	}
	enables, err := quadlet.Uint32(raw[quadlet.Size:])
	if err != nil {
		return err
	}
	for i := range params {
		params[i].Cap = caps&(1<<i) > 0
		params[i].Enable = enables&(1<<i) > 0
	}
	return nil
}

// Layout of one stream format entry: four header quadlets, the channel name
// region, then the IEC 60958 mode table.
const (
	streamLabelsOffset = 16
	streamLabelsSize   = 256
	streamIecOffset    = streamLabelsOffset + streamLabelsSize
	streamEntrySize    = streamIecOffset + 2*quadlet.Size
)

// TxStreamFormatEntry is the format of one stream transmitted by the device.
type TxStreamFormatEntry struct {
	// IsoChannel is the isochronous channel number, -1 when unassigned.
	IsoChannel int8
	PCM        uint32
	MIDI       uint32
	Speed      uint32
	// Labels name the data channels in wire order.
	Labels   []string
	Iec60958 [Iec60958Channels]Iec60958Param
}

func (e *TxStreamFormatEntry) encode(raw []byte) error {
	if len(raw) < streamEntrySize {
		return ErrShortData
	}
	var buf []byte
	buf = quadlet.AppendInt32(buf, int32(e.IsoChannel))
	buf = quadlet.AppendUint32(buf, e.PCM)
	buf = quadlet.AppendUint32(buf, e.MIDI)
	buf = quadlet.AppendUint32(buf, e.Speed)
	copy(raw, buf)

	labels, err := quadlet.BuildLabels(e.Labels, streamLabelsSize)
	if err != nil {
		return err
	}
	copy(raw[streamLabelsOffset:], labels)
	copy(raw[streamIecOffset:], appendIec60958(nil, &e.Iec60958))
	return nil
}

func (e *TxStreamFormatEntry) decode(raw []byte) error {
	if len(raw) < streamEntrySize {
		return ErrShortData
	}
	v, _ := quadlet.Int32(raw)
	e.IsoChannel = int8(v)
	e.PCM, _ = quadlet.Uint32(raw[4:])
	e.MIDI, _ = quadlet.Uint32(raw[8:])
	e.Speed, _ = quadlet.Uint32(raw[12:])

	labels, err := quadlet.ParseLabels(raw[streamLabelsOffset : streamLabelsOffset+streamLabelsSize])
	if err != nil {
		return err
	}
	e.Labels = labels
	return parseIec60958(&e.Iec60958, raw[streamIecOffset:])
}

// RxStreamFormatEntry is the format of one stream received by the device.
type RxStreamFormatEntry struct {
	IsoChannel int8
	// Start is the first data channel position within the packet payload,
	// in quadlets.
	Start    uint32
	PCM      uint32
	MIDI     uint32
	Labels   []string
	Iec60958 [Iec60958Channels]Iec60958Param
}

func (e *RxStreamFormatEntry) encode(raw []byte) error {
	if len(raw) < streamEntrySize {
		return ErrShortData
	}
	var buf []byte
	buf = quadlet.AppendInt32(buf, int32(e.IsoChannel))
	buf = quadlet.AppendUint32(buf, e.Start)
	buf = quadlet.AppendUint32(buf, e.PCM)
	buf = quadlet.AppendUint32(buf, e.MIDI)
	copy(raw, buf)

	labels, err := quadlet.BuildLabels(e.Labels, streamLabelsSize)
	if err != nil {
		return err
	}
	copy(raw[streamLabelsOffset:], labels)
	copy(raw[streamIecOffset:], appendIec60958(nil, &e.Iec60958))
	return nil
}

func (e *RxStreamFormatEntry) decode(raw []byte) error {
	if len(raw) < streamEntrySize {
		return ErrShortData
	}
	v, _ := quadlet.Int32(raw)
	e.IsoChannel = int8(v)
	e.Start, _ = quadlet.Uint32(raw[4:])
	e.PCM, _ = quadlet.Uint32(raw[8:])
	e.MIDI, _ = quadlet.Uint32(raw[12:])

	labels, err := quadlet.ParseLabels(raw[streamLabelsOffset : streamLabelsOffset+streamLabelsSize])
	if err != nil {
		return err
	}
	e.Labels = labels
	return parseIec60958(&e.Iec60958, raw[streamIecOffset:])
}

// streamHeader is the count-prefixed header of a stream format section: the
// entry count then the per-entry byte size, both device-owned.
func decodeStreamHeader(raw []byte) (count, size int, err error) {
	if len(raw) < 2*quadlet.Size {
		return 0, 0, ErrShortData
	}
	c, _ := quadlet.Uint32(raw)
	s, _ := quadlet.Uint32(raw[quadlet.Size:])
	return int(c), 4 * int(s), nil
}

// checkStreamLayout validates the device-owned header against the section
// image. The general stream format sections are self-describing: the header
// alone bounds decoding, with no dependency on the extension capabilities.
func checkStreamLayout(count, size, have int) error {
	if size < streamEntrySize {
		return fmt.Errorf("%w: entry size %d, need %d", ErrShortData, size, streamEntrySize)
	}
	if need := 2*quadlet.Size + count*size; have < need {
		return fmt.Errorf("%w: need %d bytes for %d entries, have %d", ErrShortData, need, count, have)
	}
	return nil
}

// checkStreamBounds additionally bounds host-written images by the stream
// capability. Only Encode enforces it; a device reporting more streams than
// the extension caps advertise is decoded as-is.
func checkStreamBounds(count, size, max, have int) error {
	if count > max {
		return fmt.Errorf("%w: %d entries, limit %d", ErrCountExceedsCaps, count, max)
	}
	return checkStreamLayout(count, size, have)
}

// TxStreamFormatParams is the parameter set of the tx stream format section.
// The entry count and entry size are device-owned; they are captured at
// decode and re-emitted verbatim so partial updates never touch them.
type TxStreamFormatParams struct {
	Entries []TxStreamFormatEntry

	entrySize int
}

const txStreamSectionName = "tx-stream-format"

func (*TxStreamFormatParams) SectionName() string { return txStreamSectionName }
func (*TxStreamFormatParams) MinSize() int        { return 2 * quadlet.Size }
func (*TxStreamFormatParams) NotifyMask() uint32  { return NotifyTxCfgChg }

func (*TxStreamFormatParams) Writable(caps *Caps) error {
	if !caps.General.DynamicStreamFormat {
		return fmt.Errorf("%w: stream format is static", ErrReadOnly)
	}
	return nil
}

func (p *TxStreamFormatParams) stride() int {
	if p.entrySize == 0 {
		return streamEntrySize
	}
	return p.entrySize
}

func (p *TxStreamFormatParams) Encode(caps *Caps, raw []byte) error {
	size := p.stride()
	if err := checkStreamBounds(len(p.Entries), size, int(caps.General.MaxTxStreams), len(raw)); err != nil {
		return err
	}
	copy(raw, quadlet.AppendUint32(nil, uint32(len(p.Entries))))
	copy(raw[quadlet.Size:], quadlet.AppendUint32(nil, uint32(size/4)))
	for i := range p.Entries {
		pos := 2*quadlet.Size + i*size
		if err := p.Entries[i].encode(raw[pos : pos+size]); err != nil {
			return err
		}
	}
	return nil
}

func (p *TxStreamFormatParams) Decode(_ *Caps, raw []byte) error {
	count, size, err := decodeStreamHeader(raw)
	if err != nil {
		return err
	}
	if err := checkStreamLayout(count, size, len(raw)); err != nil {
		return err
	}
	p.entrySize = size
	p.Entries = make([]TxStreamFormatEntry, count)
	for i := range p.Entries {
		pos := 2*quadlet.Size + i*size
		if err := p.Entries[i].decode(raw[pos : pos+size]); err != nil {
			return err
		}
	}
	return nil
}

// RxStreamFormatParams is the parameter set of the rx stream format section.
type RxStreamFormatParams struct {
	Entries []RxStreamFormatEntry

	entrySize int
}

const rxStreamSectionName = "rx-stream-format"

func (*RxStreamFormatParams) SectionName() string { return rxStreamSectionName }
func (*RxStreamFormatParams) MinSize() int        { return 2 * quadlet.Size }
func (*RxStreamFormatParams) NotifyMask() uint32  { return NotifyRxCfgChg }

func (*RxStreamFormatParams) Writable(caps *Caps) error {
	if !caps.General.DynamicStreamFormat {
		return fmt.Errorf("%w: stream format is static", ErrReadOnly)
	}
	return nil
}

func (p *RxStreamFormatParams) stride() int {
	if p.entrySize == 0 {
		return streamEntrySize
	}
	return p.entrySize
}

func (p *RxStreamFormatParams) Encode(caps *Caps, raw []byte) error {
	size := p.stride()
	if err := checkStreamBounds(len(p.Entries), size, int(caps.General.MaxRxStreams), len(raw)); err != nil {
		return err
	}
	copy(raw, quadlet.AppendUint32(nil, uint32(len(p.Entries))))
	copy(raw[quadlet.Size:], quadlet.AppendUint32(nil, uint32(size/4)))
	for i := range p.Entries {
		pos := 2*quadlet.Size + i*size
		if err := p.Entries[i].encode(raw[pos : pos+size]); err != nil {
			return err
		}
	}
	return nil
}

func (p *RxStreamFormatParams) Decode(_ *Caps, raw []byte) error {
	count, size, err := decodeStreamHeader(raw)
	if err != nil {
		return err
	}
	if err := checkStreamLayout(count, size, len(raw)); err != nil {
		return err
	}
	p.entrySize = size
	p.Entries = make([]RxStreamFormatEntry, count)
	for i := range p.Entries {
		pos := 2*quadlet.Size + i*size
		if err := p.Entries[i].decode(raw[pos : pos+size]); err != nil {
			return err
		}
	}
	return nil
}

// Compile-time interface satisfaction checks.
var (
	_ Mutable = (*TxStreamFormatParams)(nil)
	_ Mutable = (*RxStreamFormatParams)(nil)
)
