package element

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sndwire-protocol/sndwire-go/pkg/quadlet"
	"github.com/sndwire-protocol/sndwire-go/pkg/section"
	"github.com/sndwire-protocol/sndwire-go/pkg/transport"
)

const testTimeout = 100 * time.Millisecond

const (
	extBase    = 0x00200000
	cmdExecute = 0x80000000
)

// Fixture register offsets, relative to the extension space.
const (
	fxCapsOff       = 0x28
	fxCmdOff        = 0x40
	fxMixerOff      = 0x1000
	fxPeakOff       = 0x1600
	fxRouterOff     = 0x1800
	fxStandaloneOff = 0x9000
)

func appendDesc(buf []byte, off, size int) []byte {
	buf = quadlet.AppendUint32(buf, uint32(off/4))
	return quadlet.AppendUint32(buf, uint32(size/4))
}

func putWord(m *transport.MemTransport, addr uint64, v uint32) {
	m.LoadRegion(addr, quadlet.AppendUint32(nil, v))
}

func testCaps() section.Caps {
	return section.Caps{
		Router: section.RouterCaps{Exposed: true, MaximumEntryCount: 64},
		Mixer:  section.MixerCaps{Exposed: true, InputCount: 4, OutputCount: 2},
		General: section.GeneralCaps{
			DynamicStreamFormat: true,
			PeakAvailable:       true,
			MaxTxStreams:        1,
			MaxRxStreams:        1,
			Asic:                section.AsicMini,
		},
	}
}

// seedDevice loads a full register image of a small extended device and
// attaches to it.
func seedDevice(t *testing.T) (*Device, *transport.MemTransport) {
	t.Helper()
	m := transport.NewMemTransport()
	caps := testCaps()

	globalSize := 0x68 + 256
	secs := section.Sections{
		Global:         section.Section{Offset: 0x28, Size: globalSize},
		TxStreamFormat: section.Section{Offset: 0x1a4, Size: 8 + 280},
		RxStreamFormat: section.Section{Offset: 0x2e4, Size: 8 + 280},
		ExtSync:        section.Section{Offset: 0x424, Size: 16},
	}
	m.LoadRegion(section.BaseAddr, section.AppendSections(nil, secs))

	var ext []byte
	ext = appendDesc(ext, fxCapsOff, section.CapsSize)
	ext = appendDesc(ext, fxCmdOff, 0x10)
	ext = appendDesc(ext, fxMixerOff, 0x500)
	ext = appendDesc(ext, fxPeakOff, 0x40)
	ext = appendDesc(ext, fxRouterOff, 0x104)
	ext = appendDesc(ext, 0x2000, 0x240)  // stream format
	ext = appendDesc(ext, 0x3000, 0x6000) // current config
	ext = appendDesc(ext, fxStandaloneOff, 0x14)
	ext = appendDesc(ext, 0x9800, 0x10) // application
	m.LoadRegion(section.BaseAddr+extBase, ext)

	m.LoadRegion(section.BaseAddr+extBase+fxCapsOff, section.AppendCaps(nil, caps))

	// Global section: extended layout with AES1, stream 1 and internal
	// sources, rates 44.1/48 kHz.
	global := make([]byte, globalSize)
	nickname, err := quadlet.BuildLabel("Fixture", section.NicknameSize)
	require.NoError(t, err)
	copy(global[0x0c:], nickname)
	copy(global[0x4c:], quadlet.AppendUint32(nil, uint32(section.Rate48000)<<8|uint32(section.SrcInternal)))
	copy(global[0x54:], quadlet.AppendUint32(nil, uint32(section.Rate48000)<<8|0x1))
	copy(global[0x5c:], quadlet.AppendUint32(nil, 48000))
	rateBits := uint32(1<<1 | 1<<2)
	srcBits := uint32(1<<0 | 1<<8 | 1<<12)
	copy(global[0x64:], quadlet.AppendUint32(nil, srcBits<<16|rateBits))
	names := []string{
		"AES1", "unused", "unused", "unused", "unused", "unused", "unused",
		"unused", "unused", "unused", "unused", "unused", "Internal",
	}
	nameRegion, err := quadlet.BuildLabels(names, 256)
	require.NoError(t, err)
	copy(global[0x68:], nameRegion)
	m.LoadRegion(secs.Global.BusAddr(), global)

	// One tx and one rx stream.
	tx := section.TxStreamFormatParams{
		Entries: []section.TxStreamFormatEntry{{IsoChannel: 0, PCM: 2, Labels: []string{"Out L", "Out R"}}},
	}
	raw := make([]byte, secs.TxStreamFormat.Size)
	require.NoError(t, tx.Encode(&caps, raw))
	m.LoadRegion(secs.TxStreamFormat.BusAddr(), raw)

	rx := section.RxStreamFormatParams{
		Entries: []section.RxStreamFormatEntry{{IsoChannel: 1, PCM: 2, Labels: []string{"In L", "In R"}}},
	}
	raw = make([]byte, secs.RxStreamFormat.Size)
	require.NoError(t, rx.Encode(&caps, raw))
	m.LoadRegion(secs.RxStreamFormat.BusAddr(), raw)

	var sync []byte
	sync = quadlet.AppendUint32(sync, uint32(section.SrcAes1))
	sync = quadlet.AppendBool(sync, true)
	sync = quadlet.AppendUint32(sync, uint32(section.Rate48000))
	sync = quadlet.AppendUint32(sync, 0x10)
	m.LoadRegion(secs.ExtSync.BusAddr(), sync)

	router := section.RouterParams{
		Entries: []section.RouterEntry{
			{Src: section.SrcBlock{ID: section.SrcBlockAvs0, Ch: 0}, Dst: section.DstBlock{ID: section.DstBlockIns0, Ch: 0}},
		},
	}
	raw = make([]byte, 0x104)
	require.NoError(t, router.Encode(&caps, raw))
	m.LoadRegion(section.BaseAddr+extBase+fxRouterOff, raw)

	standalone := section.StandaloneParams{
		ClockSource:   section.SrcInternal,
		WordClockRate: section.WordClockRate{Numerator: 1, Denominator: 1},
		InternalRate:  section.Rate48000,
	}
	raw = make([]byte, standalone.MinSize())
	require.NoError(t, standalone.Encode(nil, raw))
	m.LoadRegion(section.BaseAddr+extBase+fxStandaloneOff, raw)

	d := NewDevice(m, testTimeout)
	require.NoError(t, d.Attach())
	m.ResetJournal()
	return d, m
}

// completeCommands clears the execute bit whenever a command lands in the
// cmd register, standing in for the device's firmware.
func completeCommands(t *testing.T, m *transport.MemTransport) {
	t.Helper()
	done := make(chan struct{})
	t.Cleanup(func() { close(done) })
	go func() {
		addr := uint64(section.BaseAddr + extBase + fxCmdOff)
		for {
			select {
			case <-done:
				return
			default:
			}
			raw := m.Region(addr, quadlet.Size)
			v, _ := quadlet.Uint32(raw)
			if v&cmdExecute > 0 {
				putWord(m, addr, v&^uint32(cmdExecute))
			}
			time.Sleep(time.Millisecond)
		}
	}()
}

func TestDeviceAttach(t *testing.T) {
	d, _ := seedDevice(t)

	assert.True(t, d.HasExtension)
	assert.Equal(t, "Fixture", d.Global.Nickname)
	assert.Equal(t, section.ClockConfig{Rate: section.Rate48000, Src: section.SrcInternal}, d.Global.Clock)
	assert.Equal(t, []section.ClockRate{section.Rate44100, section.Rate48000}, d.Global.AvailRates)
	assert.Equal(t, []section.ClockSource{section.SrcAes1, section.SrcInternal}, d.Global.AvailSources)

	require.Len(t, d.Tx.Entries, 1)
	assert.Equal(t, []string{"Out L", "Out R"}, d.Tx.Entries[0].Labels)
	require.Len(t, d.Rx.Entries, 1)

	assert.Equal(t, section.SrcAes1, d.ExtSync.Src)
	assert.True(t, d.ExtSync.SrcLocked)
	assert.False(t, d.ExtSync.AdatUserDataValid)

	require.Len(t, d.Router.Entries, 1)
	assert.Len(t, d.Mixer.Gains, 2)
	assert.Len(t, d.Mixer.Gains[0], 4)
	assert.Equal(t, section.SrcInternal, d.Standalone.ClockSource)
}

func TestDeviceRefreshMatchesMask(t *testing.T) {
	d, m := seedDevice(t)

	// Change the nickname behind the cache and notify a lock change.
	nickname, err := quadlet.BuildLabel("Renamed", section.NicknameSize)
	require.NoError(t, err)
	m.LoadRegion(d.Sections.Global.BusAddr()+0x0c, nickname)

	refreshed, err := d.Refresh(section.NotifyLockChg)
	require.NoError(t, err)
	assert.True(t, refreshed)
	assert.Equal(t, "Renamed", d.Global.Nickname)
}

func TestDeviceRefreshIgnoresUnrelatedBits(t *testing.T) {
	d, m := seedDevice(t)

	refreshed, err := d.Refresh(0x8000_0000)
	require.NoError(t, err)
	assert.False(t, refreshed)
	assert.Empty(t, m.Journal(), "unrelated notification must not touch the bus")
}

func TestDeviceCachePeaks(t *testing.T) {
	d, m := seedDevice(t)

	putWord(m, section.BaseAddr+extBase+fxPeakOff, 0x1234b044)
	require.NoError(t, d.CachePeaks())
	require.NotEmpty(t, d.Peak.Entries)
	assert.Equal(t, uint16(0x1234), d.Peak.Entries[0].Peak)
}

func TestDeviceWriteFailureReleasesLock(t *testing.T) {
	d, m := seedDevice(t)

	p := d.Global
	p.Clock.Rate = section.Rate44100
	m.FailNext(transport.ErrTimeout)
	err := d.UpdateGlobal(&p)
	require.Error(t, err)
	assert.Equal(t, 0, m.LockDepth(), "lock must be released on error")
}
