package timeutil

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/fxamacker/cbor/v2"
)

func TestTimeMarshalJSON(t *testing.T) {
	tests := []struct {
		name     string
		input    Time
		expected string
	}{
		{
			name:     "zero milliseconds",
			input:    NewTime(time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)),
			expected: `"2024-01-15T10:30:00.000Z"`,
		},
		{
			name:     "nanoseconds truncated to millis",
			input:    NewTime(time.Date(2024, 1, 15, 10, 30, 0, 123456789, time.UTC)),
			expected: `"2024-01-15T10:30:00.123Z"`,
		},
		{
			name:     "non-UTC timezone converted",
			input:    NewTime(time.Date(2024, 1, 15, 12, 30, 0, 0, time.FixedZone("CET", 2*60*60))),
			expected: `"2024-01-15T10:30:00.000Z"`,
		},
		{
			name:     "zero value",
			input:    Time{},
			expected: `"0001-01-01T00:00:00.000Z"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.input)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if string(data) != tt.expected {
				t.Fatalf("expected %s, got %s", tt.expected, string(data))
			}
		})
	}
}

func TestTimeUnmarshalJSON(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected time.Time
	}{
		{"with Z", `"2024-01-15T10:30:00Z"`, time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)},
		{"with millis", `"2024-01-15T10:30:00.123Z"`, time.Date(2024, 1, 15, 10, 30, 0, 123000000, time.UTC)},
		{"with offset", `"2024-01-15T12:30:00+02:00"`, time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var result Time
			if err := json.Unmarshal([]byte(tt.input), &result); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !result.UTC().Equal(tt.expected) {
				t.Fatalf("expected %v, got %v", tt.expected, result.UTC())
			}
		})
	}
}

func TestTimeUnmarshalJSONNullPreservesValue(t *testing.T) {
	result := NewTime(time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC))
	original := result.Time
	if err := json.Unmarshal([]byte("null"), &result); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Equal(original) {
		t.Fatalf("expected %v preserved, got %v", original, result.Time)
	}
}

func TestTimeUnmarshalJSONInvalid(t *testing.T) {
	var result Time
	if err := json.Unmarshal([]byte(`"yesterday"`), &result); err == nil {
		t.Fatal("expected error for invalid time")
	}
}

func TestTimeCBORIsText(t *testing.T) {
	in := NewTime(time.Date(2024, 1, 15, 10, 30, 0, 123000000, time.UTC))
	data, err := cbor.Marshal(in)
	if err != nil {
		t.Fatalf("cbor marshal: %v", err)
	}

	var text string
	if err := cbor.Unmarshal(data, &text); err != nil {
		t.Fatalf("expected a CBOR text string: %v", err)
	}
	if text != "2024-01-15T10:30:00.123Z" {
		t.Fatalf("unexpected text %q", text)
	}

	var out Time
	if err := cbor.Unmarshal(data, &out); err != nil {
		t.Fatalf("cbor unmarshal: %v", err)
	}
	if !out.Equal(in.Time) {
		t.Fatalf("expected %v, got %v", in.Time, out.Time)
	}
}

func TestTimeInStruct(t *testing.T) {
	type event struct {
		At Time `json:"at" cbor:"at"`
	}
	in := event{At: NewTime(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))}

	data, err := cbor.Marshal(in)
	if err != nil {
		t.Fatalf("cbor marshal: %v", err)
	}
	var generic map[string]any
	if err := cbor.Unmarshal(data, &generic); err != nil {
		t.Fatalf("cbor unmarshal: %v", err)
	}
	if generic["at"] != "2026-03-01T12:00:00.000Z" {
		t.Fatalf("unexpected at %v", generic["at"])
	}
}
