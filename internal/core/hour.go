// internal/core/hour.go
package core

import (
	"fmt"
	"strings"
	"time"
)

const (
	// keyLayout is the canonical partition key format, e.g. "2025-11-10_21".
	keyLayout = "2006-01-02_15"
	// timestampLayout is the export API timestamp format, e.g. "20251110T21".
	timestampLayout = "20060102T15"
)

// Hour identifies a single calendar hour, the unit of storage and transfer.
// Timestamps are treated as naive: whatever reference frame the caller uses
// is preserved, no timezone conversion is performed.
type Hour struct {
	t time.Time
}

// HourOf truncates t to the hour.
func HourOf(t time.Time) Hour {
	return Hour{t: t.Truncate(time.Hour)}
}

// ParseHour parses either the API timestamp format ("20251110T21") or a
// human-readable date+hour form ("2025-11-10 21", "2025-11-10_21").
func ParseHour(s string) (Hour, error) {
	norm := s
	if !strings.Contains(norm, "T") {
		norm = strings.ReplaceAll(norm, "-", "")
		norm = strings.ReplaceAll(norm, " ", "T")
		norm = strings.ReplaceAll(norm, "_", "T")
	}
	t, err := time.Parse(timestampLayout, norm)
	if err != nil {
		return Hour{}, WrapError(ErrParse, fmt.Errorf("hour %q: %w", s, err))
	}
	return Hour{t: t}, nil
}

// ParseKey parses a canonical partition key like "2025-11-10_21".
func ParseKey(s string) (Hour, error) {
	t, err := time.Parse(keyLayout, s)
	if err != nil {
		return Hour{}, WrapError(ErrParse, fmt.Errorf("key %q: %w", s, err))
	}
	return Hour{t: t}, nil
}

// Key returns the canonical partition key, e.g. "2025-11-10_21".
func (h Hour) Key() string {
	return h.t.Format(keyLayout)
}

// Timestamp returns the API timestamp form, e.g. "20251110T21".
func (h Hour) Timestamp() string {
	return h.t.Format(timestampLayout)
}

// Next returns the following hour.
func (h Hour) Next() Hour {
	return Hour{t: h.t.Add(time.Hour)}
}

// Add returns the hour d away from h. d is truncated to whole hours.
func (h Hour) Add(d time.Duration) Hour {
	return Hour{t: h.t.Add(d.Truncate(time.Hour))}
}

// After reports whether h is after other.
func (h Hour) After(other Hour) bool {
	return h.t.After(other.t)
}

// Before reports whether h is before other.
func (h Hour) Before(other Hour) bool {
	return h.t.Before(other.t)
}

// Equal reports whether h and other identify the same hour.
func (h Hour) Equal(other Hour) bool {
	return h.t.Equal(other.t)
}

// Sub returns the number of whole hours from other to h.
func (h Hour) Sub(other Hour) int {
	return int(h.t.Sub(other.t) / time.Hour)
}
