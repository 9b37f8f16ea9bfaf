package quadlet

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// Label list framing inside text regions.
const (
	labelSeparator  = "\\"
	labelTerminator = "\\\\"
)

// Label errors.
var (
	ErrLabelTooLong  = errors.New("labels do not fit in text region")
	ErrLabelEncoding = errors.New("text region is not valid UTF-8")
)

// swapBytes reverses the bytes inside each quadlet of raw. Firmware stores
// text little-endian within words; applying the swap twice is the identity.
func swapBytes(raw []byte) []byte {
	out := make([]byte, len(raw))
	copy(out, raw)
	for i := 0; i+Size <= len(out); i += Size {
		out[i], out[i+3] = out[i+3], out[i]
		out[i+1], out[i+2] = out[i+2], out[i+1]
	}
	return out
}

func checkRegionSize(size int) error {
	if size <= 0 || size%Size != 0 {
		return fmt.Errorf("%w: region size %d", ErrUnaligned, size)
	}
	return nil
}

// BuildLabel encodes a single name into a text region of the given byte size,
// NUL terminated and NUL padded. Names longer than size-1 bytes are rejected.
func BuildLabel(name string, size int) ([]byte, error) {
	if err := checkRegionSize(size); err != nil {
		return nil, err
	}
	if len(name) >= size {
		return nil, fmt.Errorf("%w: %q in %d bytes", ErrLabelTooLong, name, size)
	}
	region := make([]byte, size)
	copy(region, name)
	return swapBytes(region), nil
}

// ParseLabel decodes a single NUL-terminated name from a text region.
func ParseLabel(raw []byte) (string, error) {
	plain := swapBytes(raw)
	if i := bytes.IndexByte(plain, 0); i >= 0 {
		plain = plain[:i]
	}
	if !utf8.Valid(plain) {
		return "", ErrLabelEncoding
	}
	return string(plain), nil
}

// BuildLabels encodes a list of names into a text region of the given byte
// size: each name is followed by '\' and the list ends with an extra '\',
// so the last name is followed by "\\". The remainder is NUL padded.
func BuildLabels(labels []string, size int) ([]byte, error) {
	if err := checkRegionSize(size); err != nil {
		return nil, err
	}
	packed := strings.Join(labels, labelSeparator) + labelTerminator
	if len(packed) > size {
		return nil, fmt.Errorf("%w: %d bytes in %d", ErrLabelTooLong, len(packed), size)
	}
	region := make([]byte, size)
	copy(region, packed)
	return swapBytes(region), nil
}

// ParseLabels decodes a '\'-separated, "\\"-terminated name list from a text
// region. A region without the terminator decodes to the names found before
// the first NUL.
func ParseLabels(raw []byte) ([]string, error) {
	plain := swapBytes(raw)
	if i := bytes.Index(plain, []byte(labelTerminator)); i >= 0 {
		plain = plain[:i+1]
	} else if i := bytes.IndexByte(plain, 0); i >= 0 {
		plain = plain[:i]
	}
	if !utf8.Valid(plain) {
		return nil, ErrLabelEncoding
	}
	var labels []string
	for _, part := range strings.Split(string(plain), labelSeparator) {
		if part != "" {
			labels = append(labels, part)
		}
	}
	return labels, nil
}
