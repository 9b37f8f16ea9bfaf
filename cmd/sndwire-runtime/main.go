// Command sndwire-runtime attaches to one audio interface card and serves
// its control surface until interrupted.
//
// Usage:
//
//	sndwire-runtime [flags] <transport-class> <card-id>
//
// Flags:
//
//	-config string     Configuration file path (YAML)
//	-model string      Model identity as vendor:model hex pair
//	-log-level string  Log level: debug, info, warn, error (default "info")
//	-log-file string   Append control-plane events to a .swlog file
//	-timeout duration  Bus transaction timeout (default 100ms)
//	-meter duration    Peak metering interval, 0 disables (default 0)
//
// Examples:
//
//	# Attach to card 0 over the in-memory transport
//	sndwire-runtime mem 0
//
//	# Run with an event capture file and metering
//	sndwire-runtime -log-file session.swlog -meter 50ms mem 0
package main

import (
	"flag"
	"fmt"
	stdlog "log"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/sndwire-protocol/sndwire-go/pkg/element"
	"github.com/sndwire-protocol/sndwire-go/pkg/log"
	"github.com/sndwire-protocol/sndwire-go/pkg/models"
	"github.com/sndwire-protocol/sndwire-go/pkg/runtime"
	"github.com/sndwire-protocol/sndwire-go/pkg/transport"
)

// Config holds the session configuration. File values apply first; flags
// set on the command line override them.
type Config struct {
	ConfigFile string
	Model      string `yaml:"model"`
	LogLevel   string `yaml:"log_level"`
	LogFile    string `yaml:"log_file"`
	Timeout    time.Duration
	Meter      time.Duration
	QueueDepth int `yaml:"queue_depth"`

	// Duration fields in their YAML string form.
	TimeoutStr string `yaml:"timeout"`
	MeterStr   string `yaml:"meter_interval"`
}

var config Config

func init() {
	flag.StringVar(&config.ConfigFile, "config", "", "Configuration file path (YAML)")
	flag.StringVar(&config.Model, "model", "", "Model identity as vendor:model hex pair")
	flag.StringVar(&config.LogLevel, "log-level", "info", "Log level: debug, info, warn, error")
	flag.StringVar(&config.LogFile, "log-file", "", "Append control-plane events to a .swlog file")
	flag.DurationVar(&config.Timeout, "timeout", runtime.DefaultTimeout, "Bus transaction timeout")
	flag.DurationVar(&config.Meter, "meter", 0, "Peak metering interval, 0 disables")
}

func main() {
	flag.Parse()

	if flag.NArg() != 2 {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] <transport-class> <card-id>\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "transport classes: %s\n", strings.Join(transport.Classes(), ", "))
		os.Exit(2)
	}
	class := flag.Arg(0)
	cardID, err := strconv.ParseUint(flag.Arg(1), 10, 32)
	if err != nil {
		stdlog.Fatalf("Invalid card id %q: %v", flag.Arg(1), err)
	}

	if config.ConfigFile != "" {
		if err := loadConfigFile(config.ConfigFile); err != nil {
			stdlog.Fatalf("Invalid configuration: %v", err)
		}
	}

	logger, slogger, closeLog, err := setupLogging()
	if err != nil {
		stdlog.Fatalf("Failed to set up logging: %v", err)
	}
	defer closeLog()

	t, err := transport.Open(class, uint32(cardID))
	if err != nil {
		slogger.Error("opening transport", "class", class, "card", cardID, "error", err)
		os.Exit(1)
	}
	defer t.Close()

	bridges, model, err := buildBridges(config.Model)
	if err != nil {
		slogger.Error("resolving model", "model", config.Model, "error", err)
		os.Exit(1)
	}

	r := runtime.New(t, &consoleSurface{logger: slogger}, bridges, runtime.Config{
		CardID:        int(cardID),
		Timeout:       config.Timeout,
		QueueDepth:    config.QueueDepth,
		MeterInterval: config.Meter,
		Model:         model,
		Logger:        logger,
	})

	// An attach failure is fatal: without a complete read-only pass the
	// parameter caches cannot be established.
	if err := r.Attach(); err != nil {
		fmt.Fprintf(os.Stderr, "attach to %s card %d failed: %v\n", class, cardID, err)
		os.Exit(1)
	}
	if err := r.Listen(); err != nil {
		slogger.Error("starting producers", "error", err)
		os.Exit(1)
	}

	serving := []any{"class", class, "card", cardID, "session", r.SessionID()}
	if model != nil {
		serving = append(serving, "model", model.Name)
	}
	if nickname := r.Device().Global.Nickname; nickname != "" {
		serving = append(serving, "nickname", nickname)
	}
	slogger.Info("serving", serving...)

	done := make(chan error, 1)
	go func() { done <- r.Run() }()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		slogger.Info("shutting down", "signal", sig.String())
		r.Stop()
		<-done
	case err := <-done:
		// Device left the bus or the loop failed on its own.
		if err != nil {
			slogger.Error("event loop", "error", err)
			os.Exit(1)
		}
		slogger.Info("device disconnected")
	}
}

// loadConfigFile applies file values underneath any flags set explicitly on
// the command line.
func loadConfigFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var file Config
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	if file.TimeoutStr != "" {
		if file.Timeout, err = time.ParseDuration(file.TimeoutStr); err != nil {
			return fmt.Errorf("timeout: %w", err)
		}
	}
	if file.MeterStr != "" {
		if file.Meter, err = time.ParseDuration(file.MeterStr); err != nil {
			return fmt.Errorf("meter_interval: %w", err)
		}
	}

	set := map[string]bool{}
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })
	if !set["model"] && file.Model != "" {
		config.Model = file.Model
	}
	if !set["log-level"] && file.LogLevel != "" {
		config.LogLevel = file.LogLevel
	}
	if !set["log-file"] && file.LogFile != "" {
		config.LogFile = file.LogFile
	}
	if !set["timeout"] && file.Timeout > 0 {
		config.Timeout = file.Timeout
	}
	if !set["meter"] && file.Meter > 0 {
		config.Meter = file.Meter
	}
	if file.QueueDepth > 0 {
		config.QueueDepth = file.QueueDepth
	}
	return nil
}

// setupLogging builds the event logger: structured console output always,
// plus CBOR capture when a log file is configured.
func setupLogging() (log.Logger, *slog.Logger, func(), error) {
	var level slog.Level
	switch config.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "info", "":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return nil, nil, nil, fmt.Errorf("unknown log level %q", config.LogLevel)
	}

	slogger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	loggers := []log.Logger{log.NewSlogAdapter(slogger)}
	closeLog := func() {}
	if config.LogFile != "" {
		fl, err := log.NewFileLogger(config.LogFile)
		if err != nil {
			return nil, nil, nil, err
		}
		loggers = append(loggers, fl)
		closeLog = func() { fl.Close() }
	}
	return log.NewMultiLogger(loggers...), slogger, closeLog, nil
}

// buildBridges assembles the bridge list for the model identity. Register
// sections are self-describing, so without a model only the routing matrix
// is missing; an AVC-family model replaces the register bridges entirely,
// since those devices are driven through command transactions.
func buildBridges(modelArg string) ([]element.Bridge, *models.Model, error) {
	bridges := []element.Bridge{
		element.ClockBridge{},
		element.MixerBridge{},
		element.StandaloneBridge{},
	}
	if modelArg == "" {
		return bridges, nil, nil
	}

	vendorID, modelID, err := parseModelArg(modelArg)
	if err != nil {
		return nil, nil, err
	}
	m, ok := models.Lookup(vendorID, modelID)
	if !ok {
		return nil, nil, fmt.Errorf("model %06x:%06x not in catalog", vendorID, modelID)
	}
	if m.Family == models.FamilyAvc {
		return []element.Bridge{element.AvcBridge{Model: m}}, m, nil
	}
	if len(m.RouterSrcs) > 0 {
		bridges = append(bridges, element.RouterBridge{Srcs: m.RouterSrcs, Dsts: m.RouterDsts})
	}
	return bridges, m, nil
}

func parseModelArg(arg string) (uint32, uint32, error) {
	vendor, model, ok := strings.Cut(arg, ":")
	if !ok {
		return 0, 0, fmt.Errorf("model %q: want vendor:model hex pair", arg)
	}
	v, err := strconv.ParseUint(vendor, 16, 32)
	if err != nil {
		return 0, 0, fmt.Errorf("vendor id %q: %w", vendor, err)
	}
	m, err := strconv.ParseUint(model, 16, 32)
	if err != nil {
		return 0, 0, fmt.Errorf("model id %q: %w", model, err)
	}
	return uint32(v), uint32(m), nil
}

// consoleSurface is a stand-in control surface printing element
// announcements and change notifications.
type consoleSurface struct {
	logger *slog.Logger
}

var _ element.Surface = (*consoleSurface)(nil)

func (s *consoleSurface) AddElements(descs []element.Descriptor) error {
	for _, d := range descs {
		s.logger.Info("element", "id", d.ID.String(), "kind", d.Kind,
			"count", d.Count, "writable", d.Writable)
	}
	return nil
}

func (s *consoleSurface) NotifyValueChange(ids []element.ID) {
	for _, id := range ids {
		s.logger.Info("value changed", "id", id.String())
	}
}
