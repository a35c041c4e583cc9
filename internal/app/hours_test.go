package app

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleHours = `{"monday":{"from":"08:00","to":"18:00","closed":false},` +
	`"wednesday":{"from":"08:00","to":"12:00"},` +
	`"saturday":{"closed":true},` +
	`"sunday":"09:00-13:00"}`

func TestDecodeHoursTableSingleEncoded(t *testing.T) {
	table, normalized, reencoded, err := decodeHoursTable(sampleHours)
	require.NoError(t, err)
	assert.False(t, reencoded)
	assert.Equal(t, sampleHours, normalized)
	assert.Contains(t, table, "monday")
}

func TestDecodeHoursTableDoubleEncoded(t *testing.T) {
	outer, err := json.Marshal(sampleHours)
	require.NoError(t, err)

	table, normalized, reencoded, err := decodeHoursTable(string(outer))
	require.NoError(t, err)
	assert.True(t, reencoded)
	assert.Equal(t, sampleHours, normalized)
	assert.Contains(t, table, "wednesday")
}

func TestDecodeHoursTableEmpty(t *testing.T) {
	table, _, _, err := decodeHoursTable("   ")
	require.NoError(t, err)
	assert.Nil(t, table)
}

func TestDecodeHoursTableGarbage(t *testing.T) {
	_, _, _, err := decodeHoursTable("{not json")
	assert.Error(t, err)
}

func TestDayWindow(t *testing.T) {
	table, _, _, err := decodeHoursTable(sampleHours)
	require.NoError(t, err)

	tests := []struct {
		name    string
		weekday time.Weekday
		want    DayWindow
		found   bool
	}{
		{"object entry", time.Monday, DayWindow{From: "08:00", To: "18:00", Open: true}, true},
		{"object without flags", time.Wednesday, DayWindow{From: "08:00", To: "12:00", Open: true}, true},
		{"closed entry", time.Saturday, DayWindow{Open: false}, true},
		{"legacy string entry", time.Sunday, DayWindow{From: "09:00", To: "13:00", Open: true}, true},
		{"absent weekday", time.Friday, DayWindow{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, found := dayWindow(table, tt.weekday)
			assert.Equal(t, tt.found, found)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDayWindowWorkingFlag(t *testing.T) {
	raw := `{"tuesday":{"from":"09:00","to":"17:00","working":true},` +
		`"thursday":{"from":"09:00","to":"17:00","working":false}}`
	table, _, _, err := decodeHoursTable(raw)
	require.NoError(t, err)

	window, found := dayWindow(table, time.Tuesday)
	require.True(t, found)
	assert.True(t, window.Open)

	window, found = dayWindow(table, time.Thursday)
	require.True(t, found)
	assert.False(t, window.Open)
}

func TestDayString(t *testing.T) {
	loc := berlin(t)
	// Stored DATE columns come back as midnight values; the calendar day
	// must survive untouched.
	assert.Equal(t, "2026-09-02", dayString(time.Date(2026, 9, 2, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "2026-09-02", dayString(time.Date(2026, 9, 2, 0, 0, 0, 0, loc)))
}
