package log

import (
	"bytes"
	"testing"
	"time"
)

func TestEventCBORRoundTrip(t *testing.T) {
	ts := time.Date(2026, 1, 28, 10, 15, 32, 123456789, time.UTC)
	original := Event{
		Timestamp: ts,
		SessionID: "abc12345-def6-7890-abcd-ef1234567890",
		Direction: DirectionOut,
		Layer:     LayerTransport,
		Category:  CategoryTransaction,
		CardID:    2,
		GUID:      "0x0001f2000000c0de",
	}

	data, err := EncodeEvent(original)
	if err != nil {
		t.Fatalf("EncodeEvent failed: %v", err)
	}

	decoded, err := DecodeEvent(data)
	if err != nil {
		t.Fatalf("DecodeEvent failed: %v", err)
	}

	// Compare fields
	if !decoded.Timestamp.Equal(original.Timestamp) {
		t.Errorf("Timestamp: got %v, want %v", decoded.Timestamp, original.Timestamp)
	}
	if decoded.SessionID != original.SessionID {
		t.Errorf("SessionID: got %q, want %q", decoded.SessionID, original.SessionID)
	}
	if decoded.Direction != original.Direction {
		t.Errorf("Direction: got %v, want %v", decoded.Direction, original.Direction)
	}
	if decoded.Layer != original.Layer {
		t.Errorf("Layer: got %v, want %v", decoded.Layer, original.Layer)
	}
	if decoded.Category != original.Category {
		t.Errorf("Category: got %v, want %v", decoded.Category, original.Category)
	}
	if decoded.CardID != original.CardID {
		t.Errorf("CardID: got %d, want %d", decoded.CardID, original.CardID)
	}
	if decoded.GUID != original.GUID {
		t.Errorf("GUID: got %q, want %q", decoded.GUID, original.GUID)
	}
}

func TestTransactionEventCBORRoundTrip(t *testing.T) {
	original := Event{
		Timestamp: time.Now(),
		SessionID: "sess-123",
		Direction: DirectionOut,
		Layer:     LayerTransport,
		Category:  CategoryTransaction,
		Transaction: &TransactionEvent{
			Kind:      TransactionWrite,
			Addr:      0xffffe000004c,
			Section:   "global",
			Size:      256,
			Data:      []byte{0x00, 0x00, 0x05, 0x0c},
			Truncated: true,
		},
	}

	data, err := EncodeEvent(original)
	if err != nil {
		t.Fatalf("EncodeEvent failed: %v", err)
	}

	decoded, err := DecodeEvent(data)
	if err != nil {
		t.Fatalf("DecodeEvent failed: %v", err)
	}

	if decoded.Transaction == nil {
		t.Fatal("Transaction is nil")
	}
	tx := decoded.Transaction
	if tx.Kind != TransactionWrite {
		t.Errorf("Kind: got %v, want %v", tx.Kind, TransactionWrite)
	}
	if tx.Addr != original.Transaction.Addr {
		t.Errorf("Addr: got %#x, want %#x", tx.Addr, original.Transaction.Addr)
	}
	if tx.Section != "global" {
		t.Errorf("Section: got %q, want %q", tx.Section, "global")
	}
	if tx.Size != 256 {
		t.Errorf("Size: got %d, want 256", tx.Size)
	}
	if !bytes.Equal(tx.Data, original.Transaction.Data) {
		t.Errorf("Data: got %v, want %v", tx.Data, original.Transaction.Data)
	}
	if !tx.Truncated {
		t.Error("Truncated: got false, want true")
	}
}

func TestCommandEventCBORRoundTrip(t *testing.T) {
	response := uint8(0x09)
	roundTrip := 2 * time.Millisecond

	tests := []struct {
		name string
		cmd  *CommandEvent
	}{
		{
			name: "request only",
			cmd: &CommandEvent{
				Ctype:    0x00,
				Opcode:   0x19,
				Operands: []byte{0x07, 0xff},
			},
		},
		{
			name: "with response",
			cmd: &CommandEvent{
				Ctype:     0x01,
				Opcode:    0x22,
				Response:  &response,
				RoundTrip: &roundTrip,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			original := Event{
				Timestamp: time.Now(),
				SessionID: "sess-1",
				Direction: DirectionOut,
				Layer:     LayerTransport,
				Category:  CategoryTransaction,
				Command:   tt.cmd,
			}

			data, err := EncodeEvent(original)
			if err != nil {
				t.Fatalf("EncodeEvent failed: %v", err)
			}

			decoded, err := DecodeEvent(data)
			if err != nil {
				t.Fatalf("DecodeEvent failed: %v", err)
			}

			if decoded.Command == nil {
				t.Fatal("Command is nil")
			}
			if decoded.Command.Ctype != tt.cmd.Ctype {
				t.Errorf("Ctype: got %#x, want %#x", decoded.Command.Ctype, tt.cmd.Ctype)
			}
			if decoded.Command.Opcode != tt.cmd.Opcode {
				t.Errorf("Opcode: got %#x, want %#x", decoded.Command.Opcode, tt.cmd.Opcode)
			}
			if tt.cmd.Response != nil {
				if decoded.Command.Response == nil || *decoded.Command.Response != *tt.cmd.Response {
					t.Errorf("Response: got %v, want %v", decoded.Command.Response, *tt.cmd.Response)
				}
			} else if decoded.Command.Response != nil {
				t.Errorf("Response: got %v, want nil", *decoded.Command.Response)
			}
			if tt.cmd.RoundTrip != nil {
				if decoded.Command.RoundTrip == nil || *decoded.Command.RoundTrip != *tt.cmd.RoundTrip {
					t.Errorf("RoundTrip: got %v, want %v", decoded.Command.RoundTrip, *tt.cmd.RoundTrip)
				}
			}
		})
	}
}

func TestNotificationEventCBORRoundTrip(t *testing.T) {
	original := Event{
		Timestamp:    time.Now(),
		SessionID:    "sess-1",
		Direction:    DirectionIn,
		Layer:        LayerRegister,
		Category:     CategoryNotification,
		Notification: &NotificationEvent{Bits: 0x0000_0030, Handled: true},
	}

	data, err := EncodeEvent(original)
	if err != nil {
		t.Fatalf("EncodeEvent failed: %v", err)
	}

	decoded, err := DecodeEvent(data)
	if err != nil {
		t.Fatalf("DecodeEvent failed: %v", err)
	}

	if decoded.Notification == nil {
		t.Fatal("Notification is nil")
	}
	if decoded.Notification.Bits != 0x30 {
		t.Errorf("Bits: got %#x, want 0x30", decoded.Notification.Bits)
	}
	if !decoded.Notification.Handled {
		t.Error("Handled: got false, want true")
	}
}

func TestElemChangeEventCBORRoundTrip(t *testing.T) {
	original := Event{
		Timestamp:  time.Now(),
		SessionID:  "sess-1",
		Direction:  DirectionOut,
		Layer:      LayerElement,
		Category:   CategoryTransaction,
		ElemChange: &ElemChangeEvent{Elem: "card/clock-rate/0", Write: true},
	}

	data, err := EncodeEvent(original)
	if err != nil {
		t.Fatalf("EncodeEvent failed: %v", err)
	}

	decoded, err := DecodeEvent(data)
	if err != nil {
		t.Fatalf("DecodeEvent failed: %v", err)
	}

	if decoded.ElemChange == nil {
		t.Fatal("ElemChange is nil")
	}
	if decoded.ElemChange.Elem != "card/clock-rate/0" {
		t.Errorf("Elem: got %q, want %q", decoded.ElemChange.Elem, "card/clock-rate/0")
	}
	if !decoded.ElemChange.Write {
		t.Error("Write: got false, want true")
	}
}

func TestStateChangeEventCBORRoundTrip(t *testing.T) {
	original := Event{
		Timestamp: time.Now(),
		SessionID: "sess-1",
		Direction: DirectionIn,
		Layer:     LayerTransport,
		Category:  CategoryState,
		StateChange: &StateChangeEvent{
			Entity:   StateEntityTransport,
			OldState: "listening",
			NewState: "running",
			Reason:   "bus reset generation 4",
		},
	}

	data, err := EncodeEvent(original)
	if err != nil {
		t.Fatalf("EncodeEvent failed: %v", err)
	}

	decoded, err := DecodeEvent(data)
	if err != nil {
		t.Fatalf("DecodeEvent failed: %v", err)
	}

	if decoded.StateChange == nil {
		t.Fatal("StateChange is nil")
	}
	sc := decoded.StateChange
	if sc.Entity != StateEntityTransport {
		t.Errorf("Entity: got %v, want %v", sc.Entity, StateEntityTransport)
	}
	if sc.OldState != "listening" || sc.NewState != "running" {
		t.Errorf("states: got %q -> %q, want listening -> running", sc.OldState, sc.NewState)
	}
	if sc.Reason != "bus reset generation 4" {
		t.Errorf("Reason: got %q", sc.Reason)
	}
}

func TestErrorEventCBORRoundTrip(t *testing.T) {
	original := Event{
		Timestamp: time.Now(),
		SessionID: "sess-1",
		Direction: DirectionOut,
		Layer:     LayerRegister,
		Category:  CategoryError,
		Error: &ErrorEventData{
			Layer:   LayerRegister,
			Message: "transaction timeout",
			Context: "caching global section",
		},
	}

	data, err := EncodeEvent(original)
	if err != nil {
		t.Fatalf("EncodeEvent failed: %v", err)
	}

	decoded, err := DecodeEvent(data)
	if err != nil {
		t.Fatalf("DecodeEvent failed: %v", err)
	}

	if decoded.Error == nil {
		t.Fatal("Error is nil")
	}
	if decoded.Error.Layer != LayerRegister {
		t.Errorf("Error.Layer: got %v, want %v", decoded.Error.Layer, LayerRegister)
	}
	if decoded.Error.Message != "transaction timeout" {
		t.Errorf("Error.Message: got %q", decoded.Error.Message)
	}
	if decoded.Error.Context != "caching global section" {
		t.Errorf("Error.Context: got %q", decoded.Error.Context)
	}
}

func TestTimestampNanosecondPrecision(t *testing.T) {
	ts := time.Date(2026, 1, 28, 10, 15, 32, 987654321, time.UTC)
	original := Event{
		Timestamp: ts,
		SessionID: "sess-1",
		Direction: DirectionIn,
		Layer:     LayerTransport,
		Category:  CategoryTransaction,
	}

	data, err := EncodeEvent(original)
	if err != nil {
		t.Fatalf("EncodeEvent failed: %v", err)
	}

	decoded, err := DecodeEvent(data)
	if err != nil {
		t.Fatalf("DecodeEvent failed: %v", err)
	}

	if !decoded.Timestamp.Equal(ts) {
		t.Errorf("Timestamp precision lost: got %v, want %v", decoded.Timestamp, ts)
	}
	if decoded.Timestamp.Nanosecond() != 987654321 {
		t.Errorf("Nanosecond: got %d, want 987654321", decoded.Timestamp.Nanosecond())
	}
}

func TestDecodeEventRejectsGarbage(t *testing.T) {
	if _, err := DecodeEvent([]byte{0xff, 0xff, 0xff}); err == nil {
		t.Error("expected error decoding garbage bytes")
	}
}
