package section

import (
	"time"

	"github.com/sndwire-protocol/sndwire-go/pkg/quadlet"
	"github.com/sndwire-protocol/sndwire-go/pkg/transport"
)

// The current-config section holds the device's active router and stream
// format snapshots, one pair per rate range. Snapshots reflect what a load
// command last installed, so they are read-only by construction.
const (
	currentRouterSize = 0x1000
	currentStreamSize = 0x1000
	currentPairSize   = currentRouterSize + currentStreamSize
)

func currentConfigOffset(mode RateMode) int {
	switch mode {
	case RateModeMiddle:
		return currentPairSize
	case RateModeHigh:
		return 2 * currentPairSize
	default:
		return 0
	}
}

// CacheCurrentRouter reads the active router snapshot for the given rate
// range into p.
func CacheCurrentRouter(t transport.Transport, sec Section, caps *Caps, mode RateMode, p *RouterParams, timeout time.Duration) error {
	off := currentConfigOffset(mode)
	if sec.Size < off+currentRouterSize {
		return secErrf(p.SectionName(), "%w: declared %d, need %d", ErrTooSmall, sec.Size, off+currentRouterSize)
	}
	raw, err := t.Read(sec.BusAddr()+uint64(off), currentRouterSize, timeout)
	if err != nil {
		return secErr(p.SectionName(), err)
	}
	return secErr(p.SectionName(), p.Decode(caps, raw))
}

// CacheCurrentStreamFormats reads the active stream format snapshot for the
// given rate range into tx and rx.
func CacheCurrentStreamFormats(t transport.Transport, sec Section, caps *Caps, mode RateMode, tx *TxStreamFormatParams, rx *RxStreamFormatParams, timeout time.Duration) error {
	off := currentConfigOffset(mode) + currentRouterSize
	if sec.Size < off+currentStreamSize {
		return secErrf("stream-format", "%w: declared %d, need %d", ErrTooSmall, sec.Size, off+currentStreamSize)
	}
	raw, err := t.Read(sec.BusAddr()+uint64(off), currentStreamSize, timeout)
	if err != nil {
		return secErr("stream-format", err)
	}
	// Tx entries first, rx entries follow in the same image.
	if err := tx.Decode(caps, raw); err != nil {
		return secErr(tx.SectionName(), err)
	}
	used := 2*quadlet.Size + len(tx.Entries)*tx.stride()
	if len(raw) < used {
		return secErr(tx.SectionName(), ErrShortData)
	}
	return secErr(rx.SectionName(), rx.Decode(caps, raw[used:]))
}
