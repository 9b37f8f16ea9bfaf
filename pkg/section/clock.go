package section

// ClockRate is the nominal sampling rate enumerant of the clock registers.
type ClockRate uint8

const (
	Rate32000  ClockRate = 0x00
	Rate44100  ClockRate = 0x01
	Rate48000  ClockRate = 0x02
	Rate88200  ClockRate = 0x03
	Rate96000  ClockRate = 0x04
	Rate176400 ClockRate = 0x05
	Rate192000 ClockRate = 0x06
	RateAnyLow ClockRate = 0x07
	RateAnyMid ClockRate = 0x08
	RateAnyHi  ClockRate = 0x09
	RateNone   ClockRate = 0x0a
)

// clockRateTable is the bit order of the rate half of the clock capability
// register.
var clockRateTable = []ClockRate{
	Rate32000, Rate44100, Rate48000, Rate88200, Rate96000,
	Rate176400, Rate192000, RateAnyLow, RateAnyMid, RateAnyHi, RateNone,
}

// Hz returns the rate in Hertz, or 0 for the range and sentinel values.
func (r ClockRate) Hz() uint32 {
	switch r {
	case Rate32000:
		return 32000
	case Rate44100:
		return 44100
	case Rate48000:
		return 48000
	case Rate88200:
		return 88200
	case Rate96000:
		return 96000
	case Rate176400:
		return 176400
	case Rate192000:
		return 192000
	default:
		return 0
	}
}

func (r ClockRate) String() string {
	switch r {
	case Rate32000:
		return "32000"
	case Rate44100:
		return "44100"
	case Rate48000:
		return "48000"
	case Rate88200:
		return "88200"
	case Rate96000:
		return "96000"
	case Rate176400:
		return "176400"
	case Rate192000:
		return "192000"
	case RateAnyLow:
		return "any-low"
	case RateAnyMid:
		return "any-mid"
	case RateAnyHi:
		return "any-high"
	case RateNone:
		return "none"
	default:
		return "reserved"
	}
}

// ClockSource is the sampling clock source enumerant of the clock registers.
type ClockSource uint8

const (
	SrcAes1      ClockSource = 0x00
	SrcAes2      ClockSource = 0x01
	SrcAes3      ClockSource = 0x02
	SrcAes4      ClockSource = 0x03
	SrcAesAny    ClockSource = 0x04
	SrcAdat      ClockSource = 0x05
	SrcTdif      ClockSource = 0x06
	SrcWordClock ClockSource = 0x07
	SrcArx1      ClockSource = 0x08
	SrcArx2      ClockSource = 0x09
	SrcArx3      ClockSource = 0x0a
	SrcArx4      ClockSource = 0x0b
	SrcInternal  ClockSource = 0x0c
)

// clockSourceTable is the bit and label position order of clock sources:
// label order is wire order for the source name table.
var clockSourceTable = []ClockSource{
	SrcAes1, SrcAes2, SrcAes3, SrcAes4, SrcAesAny, SrcAdat, SrcTdif,
	SrcWordClock, SrcArx1, SrcArx2, SrcArx3, SrcArx4, SrcInternal,
}

// externalSourceTable is the bit order of the lock/slip halves of the
// extended status register. Internal clock is always excluded.
var externalSourceTable = []ClockSource{
	SrcAes1, SrcAes2, SrcAes3, SrcAes4, SrcAdat, SrcTdif,
	SrcArx1, SrcArx2, SrcArx3, SrcArx4, SrcWordClock,
}

// streamSourceLabels overrides the name table for stream receivers, whose
// firmware labels always read "unused" even when the source is usable.
var streamSourceLabels = map[ClockSource]string{
	SrcArx1: "Stream-1",
	SrcArx2: "Stream-2",
	SrcArx3: "Stream-3",
	SrcArx4: "Stream-4",
}

func (s ClockSource) isStream() bool {
	_, ok := streamSourceLabels[s]
	return ok
}

func (s ClockSource) String() string {
	switch s {
	case SrcAes1:
		return "aes1"
	case SrcAes2:
		return "aes2"
	case SrcAes3:
		return "aes3"
	case SrcAes4:
		return "aes4"
	case SrcAesAny:
		return "aes-any"
	case SrcAdat:
		return "adat"
	case SrcTdif:
		return "tdif"
	case SrcWordClock:
		return "word-clock"
	case SrcArx1:
		return "arx1"
	case SrcArx2:
		return "arx2"
	case SrcArx3:
		return "arx3"
	case SrcArx4:
		return "arx4"
	case SrcInternal:
		return "internal"
	default:
		return "reserved"
	}
}

// ClockConfig is the host-settable clock selection register: source in the
// low byte, rate in the next.
type ClockConfig struct {
	Rate ClockRate
	Src  ClockSource
}

func clockConfigWord(c ClockConfig) uint32 {
	return uint32(c.Rate)<<8 | uint32(c.Src)
}

func clockConfigFromWord(v uint32) ClockConfig {
	return ClockConfig{
		Rate: ClockRate(v >> 8 & 0xff),
		Src:  ClockSource(v & 0xff),
	}
}

// ClockStatus is the hardware-driven clock status register.
type ClockStatus struct {
	SrcLocked bool
	Rate      ClockRate
}

func clockStatusFromWord(v uint32) ClockStatus {
	return ClockStatus{
		SrcLocked: v&0x1 > 0,
		Rate:      ClockRate(v >> 8 & 0xff),
	}
}
