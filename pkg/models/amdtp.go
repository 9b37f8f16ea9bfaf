package models

import (
	"errors"
	"fmt"
)

// FmtAMDTP is the format byte of an AM824 isochronous stream in plug signal
// format operands.
const FmtAMDTP uint8 = 0x90

// ErrUnsupportedRate is returned for a sampling rate outside the AM824 table
// or outside a model's frequency list.
var ErrUnsupportedRate = errors.New("unsupported sampling rate")

// sfcCodes maps sampling frequencies to the sfc field of the AM824 FDF byte.
var sfcCodes = map[uint32]uint8{
	32000:  0x00,
	44100:  0x01,
	48000:  0x02,
	88200:  0x03,
	96000:  0x04,
	176400: 0x05,
	192000: 0x06,
}

// amdtpFdf builds the format-dependent bytes of an AM824 stream at freq.
func amdtpFdf(freq uint32) ([3]uint8, error) {
	sfc, ok := sfcCodes[freq]
	if !ok {
		return [3]uint8{}, fmt.Errorf("%w: %d", ErrUnsupportedRate, freq)
	}
	return [3]uint8{sfc, 0xff, 0xff}, nil
}

// amdtpFreq recovers the sampling frequency from AM824 format-dependent bytes.
func amdtpFreq(fdf [3]uint8) (uint32, error) {
	for freq, sfc := range sfcCodes {
		if fdf[0] == sfc {
			return freq, nil
		}
	}
	return 0, fmt.Errorf("%w: fdf %#x", ErrUnsupportedRate, fdf[0])
}
