// Package resolver computes the hourly partitions a time range requires
// and derives the minimal fetch plan from what already exists.
package resolver

import (
	"sort"

	"github.com/newthinker/ampsync/internal/core"
)

// Instruction is one single-hour fetch: start and end are the same API
// timestamp, as the export endpoint treats the window as inclusive.
type Instruction struct {
	Key   string
	Start string
	End   string
}

// RequiredSet returns every hour key in [start, end] inclusive, stepping
// one hour at a time. Empty when start is after end.
func RequiredSet(start, end core.Hour) map[string]struct{} {
	required := make(map[string]struct{})
	for h := start; !h.After(end); h = h.Next() {
		required[h.Key()] = struct{}{}
	}
	return required
}

// Missing returns required − existing.
func Missing(required, existing map[string]struct{}) map[string]struct{} {
	missing := make(map[string]struct{})
	for key := range required {
		if _, ok := existing[key]; !ok {
			missing[key] = struct{}{}
		}
	}
	return missing
}

// LongestPrefix walks the required range ascending from start and returns
// the last hour of the unbroken prefix present in remote. ok is false when
// the very first hour is already absent.
func LongestPrefix(start, end core.Hour, remote map[string]struct{}) (core.Hour, bool) {
	var last core.Hour
	ok := false
	for h := start; !h.After(end); h = h.Next() {
		if _, present := remote[h.Key()]; !present {
			break
		}
		last, ok = h, true
	}
	return last, ok
}

// FetchPlan converts a missing set into single-hour fetch instructions,
// sorted ascending by key.
func FetchPlan(missing map[string]struct{}) ([]Instruction, error) {
	keys := make([]string, 0, len(missing))
	for key := range missing {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	plan := make([]Instruction, 0, len(keys))
	for _, key := range keys {
		h, err := core.ParseKey(key)
		if err != nil {
			return nil, err
		}
		ts := h.Timestamp()
		plan = append(plan, Instruction{Key: key, Start: ts, End: ts})
	}
	return plan, nil
}
