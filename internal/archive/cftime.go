package archive

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// Reference time layouts accepted after "since" in CF time units
var referenceLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
}

// TimeUnits is a parsed CF time units attribute, "<unit> since <reference>"
type TimeUnits struct {
	Step      time.Duration
	Reference time.Time
}

// ParseTimeUnits parses CF time units such as
// "hours since 1900-01-01 00:00:00.0" or "seconds since 1970-01-01".
// Only the Gregorian calendar is supported.
func ParseTimeUnits(units string) (TimeUnits, error) {
	parts := strings.SplitN(strings.TrimSpace(units), " since ", 2)
	if len(parts) != 2 {
		return TimeUnits{}, fmt.Errorf("unsupported time units %q", units)
	}

	var step time.Duration
	switch strings.ToLower(strings.TrimSpace(parts[0])) {
	case "seconds", "second", "secs", "sec", "s":
		step = time.Second
	case "minutes", "minute", "mins", "min":
		step = time.Minute
	case "hours", "hour", "hrs", "hr", "h":
		step = time.Hour
	case "days", "day", "d":
		step = 24 * time.Hour
	default:
		return TimeUnits{}, fmt.Errorf("unsupported time step in %q", units)
	}

	refStr := strings.TrimSpace(parts[1])
	refStr = strings.TrimSpace(strings.TrimSuffix(refStr, "UTC"))
	for _, layout := range referenceLayouts {
		if ref, err := time.Parse(layout, refStr); err == nil {
			return TimeUnits{Step: step, Reference: ref.UTC()}, nil
		}
	}

	return TimeUnits{}, fmt.Errorf("unsupported reference time in %q", units)
}

// Offset returns the instant n steps after the reference, rounded to the
// second
func (u TimeUnits) Offset(n float64) time.Time {
	seconds := n * u.Step.Seconds()

	// Split whole days off so large offsets cannot overflow a Duration
	days := math.Floor(seconds / 86400)
	rest := seconds - days*86400

	t := u.Reference.AddDate(0, 0, int(days))
	return t.Add(time.Duration(rest * float64(time.Second))).Round(time.Second)
}

// Decode converts raw time-axis values into UTC instants. NaN values are
// skipped.
func (u TimeUnits) Decode(values interface{}) ([]time.Time, error) {
	var out []time.Time
	add := func(n float64) {
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return
		}
		out = append(out, u.Offset(n))
	}

	switch v := values.(type) {
	case []int64:
		for _, n := range v {
			add(float64(n))
		}
	case []int32:
		for _, n := range v {
			add(float64(n))
		}
	case []int16:
		for _, n := range v {
			add(float64(n))
		}
	case []uint32:
		for _, n := range v {
			add(float64(n))
		}
	case []uint64:
		for _, n := range v {
			add(float64(n))
		}
	case []float64:
		for _, n := range v {
			add(n)
		}
	case []float32:
		for _, n := range v {
			add(float64(n))
		}
	case int64:
		add(float64(v))
	case int32:
		add(float64(v))
	case float64:
		add(v)
	case float32:
		add(float64(v))
	default:
		return nil, fmt.Errorf("unsupported time axis type %T", values)
	}

	return out, nil
}
