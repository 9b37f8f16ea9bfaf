package models

import (
	"encoding/binary"
	"fmt"

	"github.com/sndwire-protocol/sndwire-go/pkg/avc"
)

// OpcodeFunctionBlock is the AV/C Audio Subunit FUNCTION_BLOCK opcode.
const OpcodeFunctionBlock uint8 = 0xb8

type funcBlkType uint8

const (
	funcBlkSelector   funcBlkType = 0x80
	funcBlkFeature    funcBlkType = 0x81
	funcBlkProcessing funcBlkType = 0x82
)

// CtlAttr selects which attribute of a function block control a command
// addresses.
type CtlAttr uint8

const (
	AttrResolution CtlAttr = 0x01
	AttrMinimum    CtlAttr = 0x02
	AttrMaximum    CtlAttr = 0x03
	AttrDefault    CtlAttr = 0x04
	AttrDuration   CtlAttr = 0x08
	AttrCurrent    CtlAttr = 0x10
	AttrMove       CtlAttr = 0x18
	AttrDelta      CtlAttr = 0x19
)

// String returns the attribute name.
func (a CtlAttr) String() string {
	switch a {
	case AttrResolution:
		return "resolution"
	case AttrMinimum:
		return "minimum"
	case AttrMaximum:
		return "maximum"
	case AttrDefault:
		return "default"
	case AttrDuration:
		return "duration"
	case AttrCurrent:
		return "current"
	case AttrMove:
		return "move"
	case AttrDelta:
		return "delta"
	default:
		return fmt.Sprintf("reserved(%#x)", uint8(a))
	}
}

// AudioCh addresses one channel of a feature function block. The zero value
// is the master channel; individual channels are one-based on the wire.
type AudioCh uint8

// AudioChMaster addresses the master (all-channel) control.
const AudioChMaster AudioCh = 0x00

// AudioChEach addresses the control of a single zero-based channel.
func AudioChEach(ch uint8) AudioCh { return AudioCh(ch + 1) }

// String returns the channel in master or zero-based form.
func (c AudioCh) String() string {
	if c == AudioChMaster {
		return "master"
	}
	return fmt.Sprintf("ch%d", uint8(c)-1)
}

// funcBlk is the shared operand codec of the FUNCTION_BLOCK command. The
// operand layout is the function block header, a length-prefixed selector
// field, the control selector and an optional length-prefixed data field.
type funcBlk struct {
	typ          funcBlkType
	id           uint8
	attr         CtlAttr
	selectorData []byte
	ctlSelector  uint8
	ctlData      []byte
}

func (b *funcBlk) build(addr avc.Addr) ([]byte, error) {
	if addr == avc.AddrUnit || addr.SubunitType() != avc.SubunitAudio {
		return nil, fmt.Errorf("function block command addresses an audio subunit, not %s", addr)
	}
	operands := make([]byte, 0, 6+len(b.selectorData)+len(b.ctlData))
	operands = append(operands, uint8(b.typ), b.id, uint8(b.attr), uint8(1+len(b.selectorData)))
	operands = append(operands, b.selectorData...)
	operands = append(operands, b.ctlSelector)
	if len(b.ctlData) > 0 {
		operands = append(operands, uint8(len(b.ctlData)))
		operands = append(operands, b.ctlData...)
	}
	return operands, nil
}

func (b *funcBlk) parse(operands []byte) error {
	if len(operands) < 4 {
		return fmt.Errorf("%w: function block needs 4, got %d", avc.ErrShortResponse, len(operands))
	}
	if funcBlkType(operands[0]) != b.typ {
		return fmt.Errorf("%w: function block type %#x, want %#x", avc.ErrUnexpectedResponse, operands[0], uint8(b.typ))
	}
	if operands[1] != b.id {
		return fmt.Errorf("%w: function block id %#x, want %#x", avc.ErrUnexpectedResponse, operands[1], b.id)
	}
	if CtlAttr(operands[2]) != b.attr {
		return fmt.Errorf("%w: control attribute %s, want %s", avc.ErrUnexpectedResponse, CtlAttr(operands[2]), b.attr)
	}
	selLen := int(operands[3])
	if selLen < 1 {
		return fmt.Errorf("%w: zero selector length", avc.ErrUnexpectedResponse)
	}
	if len(operands) < 3+selLen {
		return fmt.Errorf("%w: function block selector needs %d, got %d", avc.ErrShortResponse, 3+selLen, len(operands))
	}
	dataLen := selLen - 1
	b.selectorData = append([]byte(nil), operands[4:4+dataLen]...)

	rest := operands[4+dataLen:]
	b.ctlSelector = rest[0]
	b.ctlData = nil
	if len(rest) > 1 {
		n := int(rest[1])
		if len(rest) >= 2+n {
			b.ctlData = append([]byte(nil), rest[2:2+n]...)
		}
	}
	return nil
}

// Control selectors of the feature function block.
const (
	featureCtlMute   uint8 = 0x01
	featureCtlVolume uint8 = 0x02
)

// Boolean encoding of feature control data.
const (
	featureTrue  uint8 = 0x70
	featureFalse uint8 = 0x60
)

// Sentinel volume values of the feature function block.
const (
	VolumeInfinity    int16 = 0x7ffe
	VolumeNegInfinity int16 = -0x8000
)

// FeatureVolume reads or writes the volume control of a feature function
// block. Volume carries one big-endian signed value per addressed channel.
type FeatureVolume struct {
	FuncBlkID uint8
	Attr      CtlAttr
	Ch        AudioCh
	Volume    []int16

	blk funcBlk
}

// Opcode implements avc.Op.
func (*FeatureVolume) Opcode() uint8 { return OpcodeFunctionBlock }

func (f *FeatureVolume) buildBlk() {
	data := make([]byte, 2*len(f.Volume))
	for i, v := range f.Volume {
		binary.BigEndian.PutUint16(data[2*i:], uint16(v))
	}
	f.blk = funcBlk{
		typ:          funcBlkFeature,
		id:           f.FuncBlkID,
		attr:         f.Attr,
		selectorData: []byte{uint8(f.Ch)},
		ctlSelector:  featureCtlVolume,
		ctlData:      data,
	}
}

func (f *FeatureVolume) parseBlk(operands []byte) error {
	if err := f.blk.parse(operands); err != nil {
		return err
	}
	if len(f.blk.selectorData) != 1 || AudioCh(f.blk.selectorData[0]) != f.Ch {
		return fmt.Errorf("%w: volume answer for channel %v, want %s", avc.ErrUnexpectedResponse, f.blk.selectorData, f.Ch)
	}
	if f.blk.ctlSelector != featureCtlVolume {
		return fmt.Errorf("%w: control selector %#x, want volume", avc.ErrUnexpectedResponse, f.blk.ctlSelector)
	}
	f.Volume = make([]int16, len(f.blk.ctlData)/2)
	for i := range f.Volume {
		f.Volume[i] = int16(binary.BigEndian.Uint16(f.blk.ctlData[2*i:]))
	}
	return nil
}

// BuildControlOperands implements avc.ControlOp.
func (f *FeatureVolume) BuildControlOperands(addr avc.Addr) ([]byte, error) {
	f.buildBlk()
	return f.blk.build(addr)
}

// ParseControlOperands implements avc.ControlOp.
func (f *FeatureVolume) ParseControlOperands(_ avc.Addr, operands []byte) error {
	return f.parseBlk(operands)
}

// BuildStatusOperands implements avc.StatusOp.
func (f *FeatureVolume) BuildStatusOperands(addr avc.Addr) ([]byte, error) {
	f.buildBlk()
	return f.blk.build(addr)
}

// ParseStatusOperands implements avc.StatusOp.
func (f *FeatureVolume) ParseStatusOperands(_ avc.Addr, operands []byte) error {
	return f.parseBlk(operands)
}

// FeatureMute reads or writes the mute control of a feature function block.
type FeatureMute struct {
	FuncBlkID uint8
	Attr      CtlAttr
	Ch        AudioCh
	Mute      []bool

	blk funcBlk
}

// Opcode implements avc.Op.
func (*FeatureMute) Opcode() uint8 { return OpcodeFunctionBlock }

func (f *FeatureMute) buildBlk() {
	data := make([]byte, len(f.Mute))
	for i, m := range f.Mute {
		if m {
			data[i] = featureTrue
		} else {
			data[i] = featureFalse
		}
	}
	f.blk = funcBlk{
		typ:          funcBlkFeature,
		id:           f.FuncBlkID,
		attr:         f.Attr,
		selectorData: []byte{uint8(f.Ch)},
		ctlSelector:  featureCtlMute,
		ctlData:      data,
	}
}

func (f *FeatureMute) parseBlk(operands []byte) error {
	if err := f.blk.parse(operands); err != nil {
		return err
	}
	if len(f.blk.selectorData) != 1 || AudioCh(f.blk.selectorData[0]) != f.Ch {
		return fmt.Errorf("%w: mute answer for channel %v, want %s", avc.ErrUnexpectedResponse, f.blk.selectorData, f.Ch)
	}
	if f.blk.ctlSelector != featureCtlMute {
		return fmt.Errorf("%w: control selector %#x, want mute", avc.ErrUnexpectedResponse, f.blk.ctlSelector)
	}
	f.Mute = make([]bool, len(f.blk.ctlData))
	for i, b := range f.blk.ctlData {
		f.Mute[i] = b == featureTrue
	}
	return nil
}

// BuildControlOperands implements avc.ControlOp.
func (f *FeatureMute) BuildControlOperands(addr avc.Addr) ([]byte, error) {
	f.buildBlk()
	return f.blk.build(addr)
}

// ParseControlOperands implements avc.ControlOp.
func (f *FeatureMute) ParseControlOperands(_ avc.Addr, operands []byte) error {
	return f.parseBlk(operands)
}

// BuildStatusOperands implements avc.StatusOp.
func (f *FeatureMute) BuildStatusOperands(addr avc.Addr) ([]byte, error) {
	f.buildBlk()
	return f.blk.build(addr)
}

// ParseStatusOperands implements avc.StatusOp.
func (f *FeatureMute) ParseStatusOperands(_ avc.Addr, operands []byte) error {
	return f.parseBlk(operands)
}

const selectorControl uint8 = 0x01

// AudioSelector reads or writes the input selection of a selector function
// block. InputPlugID is the selected input; 0xff queries the current one.
type AudioSelector struct {
	FuncBlkID   uint8
	Attr        CtlAttr
	InputPlugID uint8

	blk funcBlk
}

// Opcode implements avc.Op.
func (*AudioSelector) Opcode() uint8 { return OpcodeFunctionBlock }

func (s *AudioSelector) buildBlk() {
	s.blk = funcBlk{
		typ:          funcBlkSelector,
		id:           s.FuncBlkID,
		attr:         s.Attr,
		selectorData: []byte{s.InputPlugID},
		ctlSelector:  selectorControl,
	}
}

func (s *AudioSelector) parseBlk(operands []byte) error {
	if err := s.blk.parse(operands); err != nil {
		return err
	}
	if s.blk.ctlSelector != selectorControl {
		return fmt.Errorf("%w: control selector %#x, want selector", avc.ErrUnexpectedResponse, s.blk.ctlSelector)
	}
	if len(s.blk.ctlData) > 0 {
		return fmt.Errorf("%w: selector answered %d control data bytes", avc.ErrUnexpectedResponse, len(s.blk.ctlData))
	}
	if len(s.blk.selectorData) != 1 {
		return fmt.Errorf("%w: selector answer carries %d selector bytes", avc.ErrUnexpectedResponse, len(s.blk.selectorData))
	}
	s.InputPlugID = s.blk.selectorData[0]
	return nil
}

// BuildControlOperands implements avc.ControlOp.
func (s *AudioSelector) BuildControlOperands(addr avc.Addr) ([]byte, error) {
	s.buildBlk()
	return s.blk.build(addr)
}

// ParseControlOperands implements avc.ControlOp.
func (s *AudioSelector) ParseControlOperands(_ avc.Addr, operands []byte) error {
	return s.parseBlk(operands)
}

// BuildStatusOperands implements avc.StatusOp.
func (s *AudioSelector) BuildStatusOperands(addr avc.Addr) ([]byte, error) {
	s.buildBlk()
	return s.blk.build(addr)
}

// ParseStatusOperands implements avc.StatusOp.
func (s *AudioSelector) ParseStatusOperands(_ avc.Addr, operands []byte) error {
	return s.parseBlk(operands)
}

// Compile-time interface satisfaction checks.
var (
	_ avc.ControlOp = (*FeatureVolume)(nil)
	_ avc.StatusOp  = (*FeatureVolume)(nil)
	_ avc.ControlOp = (*FeatureMute)(nil)
	_ avc.StatusOp  = (*FeatureMute)(nil)
	_ avc.ControlOp = (*AudioSelector)(nil)
	_ avc.StatusOp  = (*AudioSelector)(nil)
)
