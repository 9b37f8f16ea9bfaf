// Command sndwire-shell is an interactive explorer for the sectioned
// register space of an audio interface card. It speaks raw bus reads and
// writes, decodes the section layout tables, and on the in-memory transport
// can inject asynchronous events to exercise a listening runtime.
//
// Usage:
//
//	sndwire-shell [flags] <transport-class> <card-id>
//
// Flags:
//
//	-timeout duration  Bus transaction timeout (default 100ms)
//
// Examples:
//
//	# Explore card 0 over the in-memory transport
//	sndwire-shell mem 0
package main

import (
	"flag"
	"fmt"
	"io"
	stdlog "log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/chzyer/readline"

	"github.com/sndwire-protocol/sndwire-go/pkg/models"
	"github.com/sndwire-protocol/sndwire-go/pkg/quadlet"
	"github.com/sndwire-protocol/sndwire-go/pkg/section"
	"github.com/sndwire-protocol/sndwire-go/pkg/transport"
)

var timeout time.Duration

func init() {
	flag.DurationVar(&timeout, "timeout", 100*time.Millisecond, "Bus transaction timeout")
}

func main() {
	flag.Parse()

	if flag.NArg() != 2 {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] <transport-class> <card-id>\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "transport classes: %s\n", strings.Join(transport.Classes(), ", "))
		os.Exit(2)
	}
	cardID, err := strconv.ParseUint(flag.Arg(1), 10, 32)
	if err != nil {
		stdlog.Fatalf("Invalid card id %q: %v", flag.Arg(1), err)
	}

	t, err := transport.Open(flag.Arg(0), uint32(cardID))
	if err != nil {
		stdlog.Fatalf("Failed to open transport: %v", err)
	}
	defer t.Close()

	sh, err := newShell(t)
	if err != nil {
		stdlog.Fatalf("Failed to create readline: %v", err)
	}
	sh.run()
}

// shell holds the interactive session state.
type shell struct {
	t  transport.Transport
	rl *readline.Instance
}

var _ transport.EventSink = (*shell)(nil)

func newShell(t transport.Transport) (*shell, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "sndwire> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create readline: %w", err)
	}

	sh := &shell{t: t, rl: rl}

	// Asynchronous events print through the readline writer so they do not
	// tear the prompt.
	if n, ok := t.(transport.Notifier); ok {
		n.SetEventSink(sh)
	}
	return sh, nil
}

// run starts the interactive command loop.
func (sh *shell) run() {
	defer sh.rl.Close()

	sh.printHelp()

	for {
		line, err := sh.rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt {
				continue
			}
			fmt.Fprintln(sh.rl.Stdout(), "Exiting...")
			return
		}

		input := strings.TrimSpace(line)
		if input == "" {
			continue
		}

		parts := strings.Fields(input)
		cmd := strings.ToLower(parts[0])
		args := parts[1:]

		switch cmd {
		case "help", "?":
			sh.printHelp()

		case "read", "r":
			sh.cmdRead(args)

		case "write", "w":
			sh.cmdWrite(args)

		case "sections", "s":
			sh.cmdSections()

		case "ext":
			sh.cmdExtSections()

		case "dump", "d":
			sh.cmdDump(args)

		case "global", "g":
			sh.cmdGlobal()

		case "caps":
			sh.cmdCaps()

		case "current":
			sh.cmdCurrent(args)

		case "models", "m":
			sh.cmdModels()

		case "notify":
			sh.cmdNotify(args)

		case "reset":
			sh.cmdReset(args)

		case "disconnect":
			sh.cmdDisconnect()

		case "quit", "q", "exit":
			fmt.Fprintln(sh.rl.Stdout(), "Exiting...")
			return

		default:
			fmt.Fprintf(sh.rl.Stdout(), "Unknown command %q. Type 'help' for commands.\n", cmd)
		}
	}
}

func (sh *shell) printHelp() {
	out := sh.rl.Stdout()
	fmt.Fprintln(out, "Commands:")
	fmt.Fprintln(out, "  read <addr> [quadlets]      Read registers (r)")
	fmt.Fprintln(out, "  write <addr> <value...>     Write quadlets (w)")
	fmt.Fprintln(out, "  sections                    General section layout table (s)")
	fmt.Fprintln(out, "  ext                         Extension section layout table")
	fmt.Fprintln(out, "  dump <section>              Hex dump of one general section (d)")
	fmt.Fprintln(out, "  global                      Decoded global section (g)")
	fmt.Fprintln(out, "  caps                        Decoded extension capabilities")
	fmt.Fprintln(out, "  current <router|formats> [low|middle|high]")
	fmt.Fprintln(out, "                              Active configuration snapshot")
	fmt.Fprintln(out, "  models                      Supported model catalog (m)")
	fmt.Fprintln(out, "  notify <hex-word>           Inject a notification (mem transport)")
	fmt.Fprintln(out, "  reset <generation>          Inject a bus reset (mem transport)")
	fmt.Fprintln(out, "  disconnect                  Simulate device removal (mem transport)")
	fmt.Fprintln(out, "  help                        Show this help (?)")
	fmt.Fprintln(out, "  quit                        Exit (q)")
	fmt.Fprintln(out, "Addresses are hex and may be absolute or offsets below",
		fmt.Sprintf("%#012x.", section.BaseAddr))
}

// parseAddr accepts an absolute bus address or an offset into the section
// register space.
func parseAddr(arg string) (uint64, error) {
	v, err := strconv.ParseUint(strings.TrimPrefix(arg, "0x"), 16, 64)
	if err != nil {
		return 0, fmt.Errorf("address %q: %w", arg, err)
	}
	if v < section.BaseAddr {
		v += section.BaseAddr
	}
	return v, nil
}

func (sh *shell) cmdRead(args []string) {
	out := sh.rl.Stdout()
	if len(args) < 1 || len(args) > 2 {
		fmt.Fprintln(out, "Usage: read <addr> [quadlets]")
		return
	}
	addr, err := parseAddr(args[0])
	if err != nil {
		fmt.Fprintln(out, "Error:", err)
		return
	}
	count := 1
	if len(args) == 2 {
		if count, err = strconv.Atoi(args[1]); err != nil || count < 1 {
			fmt.Fprintf(out, "Invalid quadlet count %q\n", args[1])
			return
		}
	}
	raw, err := sh.t.Read(addr, count*quadlet.Size, timeout)
	if err != nil {
		fmt.Fprintln(out, "Error:", err)
		return
	}
	hexDump(out, addr, raw)
}

func (sh *shell) cmdWrite(args []string) {
	out := sh.rl.Stdout()
	if len(args) < 2 {
		fmt.Fprintln(out, "Usage: write <addr> <value...>")
		return
	}
	addr, err := parseAddr(args[0])
	if err != nil {
		fmt.Fprintln(out, "Error:", err)
		return
	}
	var data []byte
	for _, arg := range args[1:] {
		v, err := strconv.ParseUint(strings.TrimPrefix(arg, "0x"), 16, 32)
		if err != nil {
			fmt.Fprintf(out, "Invalid quadlet %q\n", arg)
			return
		}
		data = quadlet.AppendUint32(data, uint32(v))
	}
	if err := sh.t.Write(addr, data, timeout); err != nil {
		fmt.Fprintln(out, "Error:", err)
		return
	}
	fmt.Fprintf(out, "Wrote %d quadlets at %#012x\n", len(data)/quadlet.Size, addr)
}

func (sh *shell) cmdSections() {
	out := sh.rl.Stdout()
	layout, err := section.ReadSections(sh.t, timeout)
	if err != nil {
		fmt.Fprintln(out, "Error:", err)
		return
	}
	for _, row := range []struct {
		name string
		sec  section.Section
	}{
		{"global", layout.Global},
		{"tx-stream-format", layout.TxStreamFormat},
		{"rx-stream-format", layout.RxStreamFormat},
		{"ext-sync", layout.ExtSync},
		{"reserved", layout.Reserved},
	} {
		fmt.Fprintf(out, "  %-18s %#012x  %5d bytes\n", row.name, row.sec.BusAddr(), row.sec.Size)
	}
}

func (sh *shell) cmdExtSections() {
	out := sh.rl.Stdout()
	layout, err := section.ReadExtensionSections(sh.t, timeout)
	if err != nil {
		fmt.Fprintln(out, "Error:", err)
		return
	}
	for _, row := range []struct {
		name string
		sec  section.Section
	}{
		{"caps", layout.Caps},
		{"cmd", layout.Cmd},
		{"mixer", layout.Mixer},
		{"peak", layout.Peak},
		{"router", layout.Router},
		{"stream-format", layout.StreamFormat},
		{"current-config", layout.CurrentConfig},
		{"standalone", layout.Standalone},
		{"application", layout.Application},
	} {
		fmt.Fprintf(out, "  %-18s %#012x  %5d bytes\n", row.name, row.sec.BusAddr(), row.sec.Size)
	}
}

func (sh *shell) cmdDump(args []string) {
	out := sh.rl.Stdout()
	if len(args) != 1 {
		fmt.Fprintln(out, "Usage: dump <global|tx-stream-format|rx-stream-format|ext-sync>")
		return
	}
	layout, err := section.ReadSections(sh.t, timeout)
	if err != nil {
		fmt.Fprintln(out, "Error:", err)
		return
	}
	var sec section.Section
	switch args[0] {
	case "global":
		sec = layout.Global
	case "tx-stream-format":
		sec = layout.TxStreamFormat
	case "rx-stream-format":
		sec = layout.RxStreamFormat
	case "ext-sync":
		sec = layout.ExtSync
	default:
		fmt.Fprintf(out, "Unknown section %q\n", args[0])
		return
	}
	if sec.Size == 0 {
		fmt.Fprintf(out, "Section %s is empty\n", args[0])
		return
	}
	raw, err := sh.t.Read(sec.BusAddr(), sec.Size, timeout)
	if err != nil {
		fmt.Fprintln(out, "Error:", err)
		return
	}
	hexDump(out, sec.BusAddr(), raw)
}

func (sh *shell) cmdGlobal() {
	out := sh.rl.Stdout()
	layout, err := section.ReadSections(sh.t, timeout)
	if err != nil {
		fmt.Fprintln(out, "Error:", err)
		return
	}
	var params section.GlobalParams
	if err := section.CacheWhole(sh.t, layout.Global, nil, &params, timeout); err != nil {
		fmt.Fprintln(out, "Error:", err)
		return
	}
	fmt.Fprintf(out, "  nickname      %q\n", params.Nickname)
	fmt.Fprintf(out, "  owner         %#012x\n", params.Owner)
	fmt.Fprintf(out, "  clock         %s @ %s\n", params.Clock.Src, params.Clock.Rate)
	fmt.Fprintf(out, "  status        locked=%t rate=%s\n", params.Status.SrcLocked, params.Status.Rate)
	fmt.Fprintf(out, "  measured      %d Hz\n", params.CurrentRate)
	fmt.Fprintf(out, "  streaming     %t\n", params.Enabled)
	fmt.Fprintf(out, "  version       %#08x\n", params.Version)
	for _, l := range params.SourceLabels {
		fmt.Fprintf(out, "  source        %s = %q\n", l.Src, l.Name)
	}
}

func (sh *shell) cmdCaps() {
	out := sh.rl.Stdout()
	layout, err := section.ReadExtensionSections(sh.t, timeout)
	if err != nil {
		fmt.Fprintln(out, "Error:", err)
		return
	}
	caps, err := section.ReadCaps(sh.t, layout, timeout)
	if err != nil {
		fmt.Fprintln(out, "Error:", err)
		return
	}
	fmt.Fprintf(out, "  %+v\n", caps)
}

// cmdCurrent decodes the active configuration snapshots the device installed
// on its last load commands, one pair per rate range.
func (sh *shell) cmdCurrent(args []string) {
	out := sh.rl.Stdout()
	if len(args) < 1 || len(args) > 2 {
		fmt.Fprintln(out, "Usage: current <router|formats> [low|middle|high]")
		return
	}
	mode := section.RateModeLow
	if len(args) == 2 {
		switch args[1] {
		case "low":
			mode = section.RateModeLow
		case "middle":
			mode = section.RateModeMiddle
		case "high":
			mode = section.RateModeHigh
		default:
			fmt.Fprintf(out, "Unknown rate range %q\n", args[1])
			return
		}
	}

	layout, err := section.ReadExtensionSections(sh.t, timeout)
	if err != nil {
		fmt.Fprintln(out, "Error:", err)
		return
	}
	caps, err := section.ReadCaps(sh.t, layout, timeout)
	if err != nil {
		fmt.Fprintln(out, "Error:", err)
		return
	}

	switch args[0] {
	case "router":
		var p section.RouterParams
		if err := section.CacheCurrentRouter(sh.t, layout.CurrentConfig, &caps, mode, &p, timeout); err != nil {
			fmt.Fprintln(out, "Error:", err)
			return
		}
		for i, e := range p.Entries {
			fmt.Fprintf(out, "  %3d  %s -> %s\n", i, e.Src, e.Dst)
		}
	case "formats":
		var tx section.TxStreamFormatParams
		var rx section.RxStreamFormatParams
		if err := section.CacheCurrentStreamFormats(sh.t, layout.CurrentConfig, &caps, mode, &tx, &rx, timeout); err != nil {
			fmt.Fprintln(out, "Error:", err)
			return
		}
		for i, e := range tx.Entries {
			fmt.Fprintf(out, "  tx %d  iso %d  pcm %d  midi %d  %s\n",
				i, e.IsoChannel, e.PCM, e.MIDI, strings.Join(e.Labels, ", "))
		}
		for i, e := range rx.Entries {
			fmt.Fprintf(out, "  rx %d  iso %d  pcm %d  midi %d  %s\n",
				i, e.IsoChannel, e.PCM, e.MIDI, strings.Join(e.Labels, ", "))
		}
	default:
		fmt.Fprintf(out, "Unknown snapshot %q\n", args[0])
	}
}

func (sh *shell) cmdModels() {
	out := sh.rl.Stdout()
	for _, m := range models.All() {
		fmt.Fprintf(out, "  %06x:%06x  %-9s %s\n", m.VendorID, m.ModelID, m.Family, m.Name)
	}
}

// mem returns the in-memory transport, or nil with a message when the
// session runs on real hardware.
func (sh *shell) mem() *transport.MemTransport {
	m, ok := sh.t.(*transport.MemTransport)
	if !ok {
		fmt.Fprintln(sh.rl.Stdout(), "Event injection needs the mem transport")
		return nil
	}
	return m
}

func (sh *shell) cmdNotify(args []string) {
	out := sh.rl.Stdout()
	if len(args) != 1 {
		fmt.Fprintln(out, "Usage: notify <hex-word>")
		return
	}
	word, err := strconv.ParseUint(strings.TrimPrefix(args[0], "0x"), 16, 32)
	if err != nil {
		fmt.Fprintf(out, "Invalid notification word %q\n", args[0])
		return
	}
	if m := sh.mem(); m != nil {
		m.EmitNotification(uint32(word))
	}
}

func (sh *shell) cmdReset(args []string) {
	out := sh.rl.Stdout()
	if len(args) != 1 {
		fmt.Fprintln(out, "Usage: reset <generation>")
		return
	}
	gen, err := strconv.ParseUint(args[0], 10, 32)
	if err != nil {
		fmt.Fprintf(out, "Invalid generation %q\n", args[0])
		return
	}
	if m := sh.mem(); m != nil {
		m.EmitBusReset(uint32(gen))
	}
}

func (sh *shell) cmdDisconnect() {
	if m := sh.mem(); m != nil {
		m.EmitDisconnect()
	}
}

// hexDump prints quadlet-aligned register contents, four quadlets per line.
func hexDump(out io.Writer, addr uint64, raw []byte) {
	for off := 0; off < len(raw); off += quadlet.Size {
		if off%(4*quadlet.Size) == 0 {
			if off > 0 {
				fmt.Fprintln(out)
			}
			fmt.Fprintf(out, "%#012x:", addr+uint64(off))
		}
		end := off + quadlet.Size
		if end > len(raw) {
			end = len(raw)
		}
		fmt.Fprintf(out, " %x", raw[off:end])
	}
	fmt.Fprintln(out)
}

// EventSink: asynchronous bus events from the transport.

func (sh *shell) BusReset(generation uint32) {
	fmt.Fprintf(sh.rl.Stdout(), "<< bus reset, generation %d\n", generation)
}

func (sh *shell) Notification(word uint32) {
	fmt.Fprintf(sh.rl.Stdout(), "<< notification %#08x\n", word)
}

func (sh *shell) Disconnected() {
	fmt.Fprintln(sh.rl.Stdout(), "<< device disconnected")
}
