package quadlet

import (
	"errors"
	"reflect"
	"testing"
)

func TestLabelRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		text string
		size int
	}{
		{name: "short name with padding", text: "Studio", size: 64},
		{name: "empty name", text: "", size: 64},
		{name: "fills region minus terminator", text: "abcdefghijk", size: 12},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, err := BuildLabel(tt.text, tt.size)
			if err != nil {
				t.Fatalf("BuildLabel failed: %v", err)
			}
			if len(raw) != tt.size {
				t.Fatalf("region size = %d, want %d", len(raw), tt.size)
			}
			got, err := ParseLabel(raw)
			if err != nil {
				t.Fatalf("ParseLabel failed: %v", err)
			}
			if got != tt.text {
				t.Errorf("round trip = %q, want %q", got, tt.text)
			}
		})
	}
}

func TestLabelTooLong(t *testing.T) {
	if _, err := BuildLabel("this-name-is-far-too-long", 8); !errors.Is(err, ErrLabelTooLong) {
		t.Errorf("got %v, want ErrLabelTooLong", err)
	}
}

func TestLabelsRoundTrip(t *testing.T) {
	tests := []struct {
		name   string
		labels []string
		size   int
	}{
		{
			name:   "clock source names",
			labels: []string{"AES1", "AES2", "ADAT", "Word Clock", "Internal"},
			size:   256,
		},
		{
			name:   "single entry",
			labels: []string{"Internal"},
			size:   64,
		},
		{
			name:   "empty list",
			labels: nil,
			size:   16,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, err := BuildLabels(tt.labels, tt.size)
			if err != nil {
				t.Fatalf("BuildLabels failed: %v", err)
			}
			got, err := ParseLabels(raw)
			if err != nil {
				t.Fatalf("ParseLabels failed: %v", err)
			}
			if !reflect.DeepEqual(got, tt.labels) {
				t.Errorf("round trip = %v, want %v", got, tt.labels)
			}
		})
	}
}

func TestLabelsWithoutTerminator(t *testing.T) {
	// Old firmware pads without writing the double-separator terminator;
	// parsing falls back to the NUL boundary.
	region := make([]byte, 16)
	copy(region, "One\\Two\\")
	labels, err := ParseLabels(swapBytes(region))
	if err != nil {
		t.Fatalf("ParseLabels failed: %v", err)
	}
	want := []string{"One", "Two"}
	if !reflect.DeepEqual(labels, want) {
		t.Errorf("labels = %v, want %v", labels, want)
	}
}

func TestLabelsTooLong(t *testing.T) {
	labels := []string{"aaaaaaaa", "bbbbbbbb", "cccccccc"}
	if _, err := BuildLabels(labels, 16); !errors.Is(err, ErrLabelTooLong) {
		t.Errorf("got %v, want ErrLabelTooLong", err)
	}
}
