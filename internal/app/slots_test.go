package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func berlin(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("Europe/Berlin")
	require.NoError(t, err)
	return loc
}

func testDay(t *testing.T, loc *time.Location) time.Time {
	t.Helper()
	day, err := time.ParseInLocation("2006-01-02", "2026-09-02", loc)
	require.NoError(t, err)
	return day
}

func TestTimeGridBackToBack(t *testing.T) {
	loc := berlin(t)
	day := testDay(t, loc)

	slots, err := timeGrid(day, "08:00", "12:00", 60*time.Minute, loc)
	require.NoError(t, err)
	assert.Equal(t, []string{"08:00", "09:00", "10:00", "11:00"}, slotNames(slots))
}

func TestTimeGridStepsByDuration(t *testing.T) {
	loc := berlin(t)
	day := testDay(t, loc)

	duration := 45 * time.Minute
	slots, err := timeGrid(day, "08:00", "18:00", duration, loc)
	require.NoError(t, err)
	require.NotEmpty(t, slots)

	assert.Equal(t, "08:00", slots[0].Format("15:04"))
	for i := 1; i < len(slots); i++ {
		assert.Equal(t, duration, slots[i].Sub(slots[i-1]))
	}
	close := time.Date(2026, 9, 2, 18, 0, 0, 0, loc)
	last := slots[len(slots)-1]
	assert.False(t, last.Add(duration).After(close))
}

func TestTimeGridEmptyWhenDurationExceedsWindow(t *testing.T) {
	loc := berlin(t)
	day := testDay(t, loc)

	slots, err := timeGrid(day, "08:00", "09:00", 90*time.Minute, loc)
	require.NoError(t, err)
	assert.Empty(t, slots)
}

func TestTimeGridKeepsSlotEndingExactlyAtClose(t *testing.T) {
	loc := berlin(t)
	day := testDay(t, loc)

	slots, err := timeGrid(day, "11:15", "12:00", 45*time.Minute, loc)
	require.NoError(t, err)
	assert.Equal(t, []string{"11:15"}, slotNames(slots))
}

func TestTimeGridInvalidTimes(t *testing.T) {
	loc := berlin(t)
	day := testDay(t, loc)

	_, err := timeGrid(day, "8am", "12:00", 60*time.Minute, loc)
	assert.Error(t, err)
}

func TestFilterSlotsOverlap(t *testing.T) {
	loc := berlin(t)
	day := testDay(t, loc)

	slots, err := timeGrid(day, "08:00", "12:00", 60*time.Minute, loc)
	require.NoError(t, err)

	// Straddles the 09:00 and 10:00 slots.
	busy := []Interval{{
		Start: time.Date(2026, 9, 2, 9, 30, 0, 0, loc),
		End:   time.Date(2026, 9, 2, 10, 30, 0, 0, loc),
	}}
	free := filterSlots(slots, 60*time.Minute, busy)
	assert.Equal(t, []string{"08:00", "11:00"}, slotNames(free))
}

func TestFilterSlotsTouchingIntervalsDoNotBlock(t *testing.T) {
	loc := berlin(t)
	day := testDay(t, loc)

	slots, err := timeGrid(day, "08:00", "12:00", 60*time.Minute, loc)
	require.NoError(t, err)

	// Busy ends exactly when the 09:00 slot starts.
	busy := []Interval{{
		Start: time.Date(2026, 9, 2, 8, 0, 0, 0, loc),
		End:   time.Date(2026, 9, 2, 9, 0, 0, 0, loc),
	}}
	free := filterSlots(slots, 60*time.Minute, busy)
	assert.Equal(t, []string{"09:00", "10:00", "11:00"}, slotNames(free))
}

func TestFilterSlotsIdempotent(t *testing.T) {
	loc := berlin(t)
	day := testDay(t, loc)

	slots, err := timeGrid(day, "08:00", "12:00", 60*time.Minute, loc)
	require.NoError(t, err)

	busy := []Interval{{
		Start: time.Date(2026, 9, 2, 9, 0, 0, 0, loc),
		End:   time.Date(2026, 9, 2, 10, 0, 0, 0, loc),
	}}
	once := filterSlots(slots, 60*time.Minute, busy)
	twice := filterSlots(once, 60*time.Minute, busy)
	assert.Equal(t, once, twice)
}

func TestParseHHMM(t *testing.T) {
	tests := []struct {
		input   string
		hour    int
		minute  int
		wantErr bool
	}{
		{"08:00", 8, 0, false},
		{"09:00:00.000000", 9, 0, false},
		{"23:45", 23, 45, false},
		{"8:0", 0, 0, true},
		{"", 0, 0, true},
	}

	for _, tt := range tests {
		got, err := parseHHMM(tt.input)
		if tt.wantErr {
			assert.Error(t, err, tt.input)
			continue
		}
		require.NoError(t, err, tt.input)
		assert.Equal(t, tt.hour, got.Hour(), tt.input)
		assert.Equal(t, tt.minute, got.Minute(), tt.input)
	}
}
