package quadlet

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// Size is the width of one quadlet in bytes.
const Size = 4

// Codec errors.
var (
	ErrShortBuffer = errors.New("buffer too short for quadlet data")
	ErrUnaligned   = errors.New("buffer length is not quadlet aligned")
)

// Marshaler is implemented by fixed-layout register structures that encode
// themselves into quadlet-aligned bytes.
type Marshaler interface {
	MarshalQuadlets() ([]byte, error)
}

// Unmarshaler is implemented by fixed-layout register structures that decode
// themselves from quadlet-aligned bytes.
type Unmarshaler interface {
	UnmarshalQuadlets(raw []byte) error
}

// AppendUint32 appends v as one big-endian quadlet.
func AppendUint32(buf []byte, v uint32) []byte {
	return binary.BigEndian.AppendUint32(buf, v)
}

// Uint32 decodes one big-endian quadlet from the front of raw.
func Uint32(raw []byte) (uint32, error) {
	if len(raw) < Size {
		return 0, fmt.Errorf("%w: need %d, have %d", ErrShortBuffer, Size, len(raw))
	}
	return binary.BigEndian.Uint32(raw), nil
}

// AppendInt32 appends v as one big-endian quadlet in two's complement.
func AppendInt32(buf []byte, v int32) []byte {
	return binary.BigEndian.AppendUint32(buf, uint32(v))
}

// Int32 decodes one signed big-endian quadlet from the front of raw.
func Int32(raw []byte) (int32, error) {
	v, err := Uint32(raw)
	return int32(v), err
}

// AppendBool appends v as one quadlet: 1 for true, 0 for false.
func AppendBool(buf []byte, v bool) []byte {
	var w uint32
	if v {
		w = 1
	}
	return AppendUint32(buf, w)
}

// Bool decodes one quadlet as a boolean. Any non-zero word is true.
func Bool(raw []byte) (bool, error) {
	v, err := Uint32(raw)
	return v > 0, err
}

// AppendUint64 appends v as two big-endian quadlets, high word first.
func AppendUint64(buf []byte, v uint64) []byte {
	buf = AppendUint32(buf, uint32(v>>32))
	return AppendUint32(buf, uint32(v))
}

// Uint64 decodes two big-endian quadlets (high word first) from raw.
func Uint64(raw []byte) (uint64, error) {
	if len(raw) < 2*Size {
		return 0, fmt.Errorf("%w: need %d, have %d", ErrShortBuffer, 2*Size, len(raw))
	}
	hi := binary.BigEndian.Uint32(raw)
	lo := binary.BigEndian.Uint32(raw[Size:])
	return uint64(hi)<<32 | uint64(lo), nil
}

// Aligned reports an error unless len(raw) is a multiple of the quadlet size.
func Aligned(raw []byte) error {
	if len(raw)%Size != 0 {
		return fmt.Errorf("%w: %d bytes", ErrUnaligned, len(raw))
	}
	return nil
}

// Count returns the number of whole quadlets in raw.
func Count(raw []byte) int {
	return len(raw) / Size
}

// Diff returns the indexes of quadlets that differ between old and new.
// Both images must have the same quadlet-aligned length.
func Diff(old, new []byte) ([]int, error) {
	if len(old) != len(new) {
		return nil, fmt.Errorf("%w: image sizes differ (%d vs %d)", ErrShortBuffer, len(old), len(new))
	}
	if err := Aligned(old); err != nil {
		return nil, err
	}
	var idxs []int
	for i := 0; i < len(old); i += Size {
		if !equalQuadlet(old[i:i+Size], new[i:i+Size]) {
			idxs = append(idxs, i/Size)
		}
	}
	return idxs, nil
}

func equalQuadlet(a, b []byte) bool {
	return a[0] == b[0] && a[1] == b[1] && a[2] == b[2] && a[3] == b[3]
}
