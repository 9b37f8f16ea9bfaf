// Package log provides structured event capture for the control plane.
//
// This package defines the Logger interface and Event types for capturing
// events at multiple layers (transport, register protocol, control-surface
// elements). It is separate from operational logging (slog) - event capture
// provides a complete machine-readable trace of bus traffic for debugging
// and analysis.
//
// # Basic Usage
//
// Applications configure capture by providing a Logger implementation:
//
//	// For development: log to console via slog
//	cfg.EventLogger = log.NewSlogAdapter(slog.Default())
//
//	// For production: write to binary file
//	cfg.EventLogger, _ = log.NewFileLogger("/var/log/sndwire/card0.swlog")
//
//	// Both: use MultiLogger
//	cfg.EventLogger = log.NewMultiLogger(
//	    log.NewSlogAdapter(slog.Default()),
//	    log.NewFileLogger("/var/log/sndwire/card0.swlog"),
//	)
//
// # Event Types
//
// Events are captured at multiple layers:
//   - Transport: register transactions and AVC commands (TransactionEvent,
//     CommandEvent)
//   - Register: device notifications (NotificationEvent)
//   - Element: control-surface accesses (ElemChangeEvent)
//
// State changes and errors have dedicated event types.
//
// # File Format
//
// Log files use CBOR encoding with .swlog extension. Reader provides
// streaming access with filtering.
package log
