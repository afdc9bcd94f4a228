package resolver

import (
	"testing"

	"github.com/newthinker/ampsync/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func hour(t *testing.T, s string) core.Hour {
	t.Helper()
	h, err := core.ParseHour(s)
	require.NoError(t, err)
	return h
}

func TestRequiredSet_Cardinality(t *testing.T) {
	start := hour(t, "20251110T00")
	end := hour(t, "20251111T05")

	required := RequiredSet(start, end)
	assert.Len(t, required, end.Sub(start)+1)
	assert.Contains(t, required, "2025-11-10_00")
	assert.Contains(t, required, "2025-11-11_05")
}

func TestRequiredSet_SingleHour(t *testing.T) {
	h := hour(t, "20251110T21")
	required := RequiredSet(h, h)
	assert.Equal(t, map[string]struct{}{"2025-11-10_21": {}}, required)
}

func TestRequiredSet_EmptyWhenInverted(t *testing.T) {
	start := hour(t, "20251111T00")
	end := hour(t, "20251110T00")
	assert.Empty(t, RequiredSet(start, end))
}

func TestRequiredSet_FormatInvariant(t *testing.T) {
	a := RequiredSet(hour(t, "20251110T00"), hour(t, "20251110T23"))
	b := RequiredSet(hour(t, "2025-11-10 00"), hour(t, "2025-11-10_23"))
	assert.Equal(t, a, b)
}

func TestMissing(t *testing.T) {
	required := RequiredSet(hour(t, "20251110T00"), hour(t, "20251110T03"))
	existing := map[string]struct{}{
		"2025-11-10_01": {},
		"2025-11-10_03": {},
		"2025-11-09_23": {}, // outside the range, ignored
	}

	missing := Missing(required, existing)
	assert.Equal(t, map[string]struct{}{
		"2025-11-10_00": {},
		"2025-11-10_02": {},
	}, missing)
}

func TestMissing_SelfIsEmpty(t *testing.T) {
	required := RequiredSet(hour(t, "20251110T00"), hour(t, "20251110T23"))
	assert.Empty(t, Missing(required, required))
}

func TestLongestPrefix_Gapless(t *testing.T) {
	start := hour(t, "20251110T00")
	end := hour(t, "20251110T23")
	remote := map[string]struct{}{}
	for _, k := range []string{"2025-11-10_00", "2025-11-10_01", "2025-11-10_02",
		"2025-11-10_03", "2025-11-10_04", "2025-11-10_05"} {
		remote[k] = struct{}{}
	}

	last, ok := LongestPrefix(start, end, remote)
	require.True(t, ok)
	assert.Equal(t, "2025-11-10_05", last.Key())
	assert.Equal(t, "20251110T06", last.Next().Timestamp())
}

func TestLongestPrefix_GapKeepsOriginalStart(t *testing.T) {
	start := hour(t, "20251110T00")
	end := hour(t, "20251110T23")
	remote := map[string]struct{}{}
	for _, k := range []string{"2025-11-10_00", "2025-11-10_01", "2025-11-10_02",
		"2025-11-10_04", "2025-11-10_05"} { // gap at _03
		remote[k] = struct{}{}
	}

	last, ok := LongestPrefix(start, end, remote)
	require.True(t, ok)
	assert.Equal(t, "2025-11-10_02", last.Key())
}

func TestLongestPrefix_FirstHourAbsent(t *testing.T) {
	start := hour(t, "20251110T00")
	end := hour(t, "20251110T23")
	remote := map[string]struct{}{"2025-11-10_05": {}}

	_, ok := LongestPrefix(start, end, remote)
	assert.False(t, ok)
}

func TestFetchPlan_AscendingSingleHour(t *testing.T) {
	missing := map[string]struct{}{
		"2025-11-10_22": {},
		"2025-11-10_06": {},
		"2025-11-11_00": {},
	}

	plan, err := FetchPlan(missing)
	require.NoError(t, err)
	require.Len(t, plan, 3)

	assert.Equal(t, Instruction{Key: "2025-11-10_06", Start: "20251110T06", End: "20251110T06"}, plan[0])
	assert.Equal(t, Instruction{Key: "2025-11-10_22", Start: "20251110T22", End: "20251110T22"}, plan[1])
	assert.Equal(t, Instruction{Key: "2025-11-11_00", Start: "20251111T00", End: "20251111T00"}, plan[2])
}

func TestFetchPlan_Empty(t *testing.T) {
	plan, err := FetchPlan(nil)
	require.NoError(t, err)
	assert.Empty(t, plan)
}
