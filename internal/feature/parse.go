package feature

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// The lenient parsers never fail: historical data is assumed noisy, so a
// malformed value degrades to the zero value instead of aborting a scan.
// The strict variants report the malformation and exist for callers that
// must validate input loudly.

var trueLiterals = map[string]struct{}{
	"1": {}, "true": {}, "yes": {}, "y": {},
}

// ParseFloat returns 0.0 for empty or unconvertible input.
func ParseFloat(value string) float64 {
	f, _ := ParseFloatStrict(value)
	return f
}

// ParseFloatStrict returns an error for empty or unconvertible input.
func ParseFloatStrict(value string) (float64, error) {
	text := strings.TrimSpace(value)
	if text == "" {
		return 0.0, fmt.Errorf("empty numeric value")
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0.0, fmt.Errorf("unable to parse %q as float: %v", value, err)
	}
	return f, nil
}

// ParseBool maps the true-literal set {"1","true","yes","y"} (case-insensitive,
// trimmed) to 1.0 and everything else, including empty input, to 0.0.
func ParseBool(value string) float64 {
	text := strings.ToLower(strings.TrimSpace(value))
	if _, ok := trueLiterals[text]; ok {
		return 1.0
	}
	return 0.0
}

var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseTime accepts ISO-8601 text, treating a trailing "Z" as a UTC offset.
// The second return value is false for empty or unparsable input.
func ParseTime(value string) (time.Time, bool) {
	text := strings.TrimSpace(value)
	if text == "" {
		return time.Time{}, false
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, text); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// DeriveTimeFeatures computes (hour-of-day, month) from the record's
// start-time field, or (0, 0) when it is absent or unparsable.
func DeriveTimeFeatures(fields map[string]string) (float64, float64) {
	start, ok := ParseTime(fields[FieldStartTime])
	if !ok {
		return 0.0, 0.0
	}
	return float64(start.Hour()), float64(int(start.Month()))
}
