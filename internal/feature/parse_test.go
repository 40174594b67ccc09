package feature

import (
	"testing"
	"time"
)

func TestParseFloat(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		value    string
		expected float64
	}{
		{name: "positive", value: "3.5", expected: 3.5},
		{name: "positive", value: " 42 ", expected: 42},
		{name: "negative_value", value: "-1.25", expected: -1.25},
		{name: "empty", value: "", expected: 0},
		{name: "garbage", value: "n/a", expected: 0},
	}
	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			if got := ParseFloat(test.value); got != test.expected {
				t.Errorf("parsing %q, got: %v, expected: %v", test.value, got, test.expected)
			}
		})
	}
}

func TestParseFloatStrict(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name      string
		value     string
		expected  float64
		expectErr bool
	}{
		{name: "positive", value: "3.5", expected: 3.5},
		{name: "empty", value: "", expectErr: true},
		{name: "blank", value: "   ", expectErr: true},
		{name: "garbage", value: "unknown", expectErr: true},
	}
	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			got, err := ParseFloatStrict(test.value)
			if test.expectErr {
				if err == nil {
					t.Errorf("parsing %q must return an error", test.value)
				}
				return
			}
			if err != nil {
				t.Errorf("the error should not be returned: %v", err)
			}
			if got != test.expected {
				t.Errorf("parsing %q, got: %v, expected: %v", test.value, got, test.expected)
			}
		})
	}
}

func TestParseBool(t *testing.T) {
	t.Parallel()
	tests := []struct {
		value    string
		expected float64
	}{
		{value: "1", expected: 1},
		{value: "true", expected: 1},
		{value: "TRUE", expected: 1},
		{value: "Yes", expected: 1},
		{value: " y ", expected: 1},
		{value: "0", expected: 0},
		{value: "no", expected: 0},
		{value: "", expected: 0},
		{value: "2", expected: 0},
	}
	for _, test := range tests {
		if got := ParseBool(test.value); got != test.expected {
			t.Errorf("parsing %q, got: %v, expected: %v", test.value, got, test.expected)
		}
	}
}

func TestParseTime(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		value    string
		expected time.Time
		ok       bool
	}{
		{
			name:     "rfc3339",
			value:    "2024-07-15T14:30:00Z",
			expected: time.Date(2024, 7, 15, 14, 30, 0, 0, time.UTC),
			ok:       true,
		},
		{
			name:     "no_zone",
			value:    "2024-07-15T14:30:00",
			expected: time.Date(2024, 7, 15, 14, 30, 0, 0, time.UTC),
			ok:       true,
		},
		{
			name:     "date_only",
			value:    "2024-07-15",
			expected: time.Date(2024, 7, 15, 0, 0, 0, 0, time.UTC),
			ok:       true,
		},
		{name: "empty", value: "", ok: false},
		{name: "garbage", value: "yesterday", ok: false},
	}
	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			got, ok := ParseTime(test.value)
			if ok != test.ok {
				t.Fatalf("parsing %q, ok got: %v, expected: %v", test.value, ok, test.ok)
			}
			if ok && !got.Equal(test.expected) {
				t.Errorf("parsing %q, got: %v, expected: %v", test.value, got, test.expected)
			}
		})
	}
}

func TestDeriveTimeFeatures(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name          string
		fields        map[string]string
		expectedHour  float64
		expectedMonth float64
	}{
		{
			name:          "positive",
			fields:        map[string]string{FieldStartTime: "2024-07-15T14:30:00Z"},
			expectedHour:  14,
			expectedMonth: 7,
		},
		{
			name:          "missing",
			fields:        map[string]string{},
			expectedHour:  0,
			expectedMonth: 0,
		},
		{
			name:          "unparsable",
			fields:        map[string]string{FieldStartTime: "noon"},
			expectedHour:  0,
			expectedMonth: 0,
		},
	}
	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			hour, month := DeriveTimeFeatures(test.fields)
			if hour != test.expectedHour || month != test.expectedMonth {
				t.Errorf(
					"derived time features, got: (%v, %v), expected: (%v, %v)",
					hour, month, test.expectedHour, test.expectedMonth)
			}
		})
	}
}
