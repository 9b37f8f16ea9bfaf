package log

import (
	"context"
	"log/slog"
)

// SlogAdapter writes control-plane events to an slog.Logger.
// Useful for development when you want to see bus traffic in console.
type SlogAdapter struct {
	logger *slog.Logger
}

// NewSlogAdapter creates a new SlogAdapter that writes to the given slog.Logger.
func NewSlogAdapter(logger *slog.Logger) *SlogAdapter {
	return &SlogAdapter{logger: logger}
}

// Log writes the event to the slog logger at Debug level.
func (a *SlogAdapter) Log(event Event) {
	attrs := []slog.Attr{
		slog.String("session_id", event.SessionID),
		slog.String("direction", event.Direction.String()),
		slog.String("layer", event.Layer.String()),
		slog.String("category", event.Category.String()),
	}

	// Add optional identifiers
	if event.CardID != 0 {
		attrs = append(attrs, slog.Int("card", event.CardID))
	}
	if event.GUID != "" {
		attrs = append(attrs, slog.String("guid", event.GUID))
	}

	// Add type-specific attributes
	switch {
	case event.Transaction != nil:
		attrs = append(attrs,
			slog.String("tx_kind", event.Transaction.Kind.String()),
			slog.Uint64("addr", event.Transaction.Addr),
			slog.Int("size", event.Transaction.Size),
		)
		if event.Transaction.Section != "" {
			attrs = append(attrs, slog.String("section", event.Transaction.Section))
		}
		if event.Transaction.Truncated {
			attrs = append(attrs, slog.Bool("truncated", true))
		}
	case event.Command != nil:
		attrs = append(attrs,
			slog.Uint64("ctype", uint64(event.Command.Ctype)),
			slog.Uint64("opcode", uint64(event.Command.Opcode)),
		)
		if event.Command.Response != nil {
			attrs = append(attrs, slog.Uint64("response", uint64(*event.Command.Response)))
		}
		if event.Command.RoundTrip != nil {
			attrs = append(attrs, slog.Duration("round_trip", *event.Command.RoundTrip))
		}
	case event.Notification != nil:
		attrs = append(attrs,
			slog.Uint64("bits", uint64(event.Notification.Bits)),
			slog.Bool("handled", event.Notification.Handled),
		)
	case event.ElemChange != nil:
		attrs = append(attrs,
			slog.String("elem", event.ElemChange.Elem),
			slog.Bool("write", event.ElemChange.Write),
		)
	case event.StateChange != nil:
		attrs = append(attrs,
			slog.String("entity", event.StateChange.Entity.String()),
			slog.String("old_state", event.StateChange.OldState),
			slog.String("new_state", event.StateChange.NewState),
		)
		if event.StateChange.Reason != "" {
			attrs = append(attrs, slog.String("reason", event.StateChange.Reason))
		}
	case event.Error != nil:
		attrs = append(attrs,
			slog.String("error_layer", event.Error.Layer.String()),
			slog.String("error_msg", event.Error.Message),
			slog.String("error_context", event.Error.Context),
		)
	}

	a.logger.LogAttrs(context.Background(), slog.LevelDebug, "bus", attrs...)
}

// Compile-time interface satisfaction check.
var _ Logger = (*SlogAdapter)(nil)
