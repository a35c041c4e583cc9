package app

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// DayWindow is one weekday's entry of an opening-hours or working-hours table.
type DayWindow struct {
	From string
	To   string
	Open bool
}

// dayEntry covers both stored object shapes:
//
//	{"from":"08:00","to":"18:00","closed":false}   workshop opening hours
//	{"from":"08:00","to":"16:00","working":true}   employee working hours
type dayEntry struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Closed  bool   `json:"closed"`
	Working *bool  `json:"working"`
}

// decodeHoursTable parses a stored hours JSON string into a per-weekday table.
// A historical bug left some rows JSON-encoded twice; when the first decode
// yields a string the value is decoded again and normalized is the
// single-encoded form the caller should persist back.
func decodeHoursTable(raw string) (table map[string]json.RawMessage, normalized string, reencoded bool, err error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, "", false, nil
	}

	var inner string
	if err := json.Unmarshal([]byte(trimmed), &inner); err == nil {
		trimmed = inner
		reencoded = true
	}

	if err := json.Unmarshal([]byte(trimmed), &table); err != nil {
		return nil, "", reencoded, fmt.Errorf("hours table: %w", err)
	}
	return table, trimmed, reencoded, nil
}

// dayWindow looks up the weekday's window in a decoded table. ok is false when
// the weekday is absent or its entry cannot be parsed; a present entry that is
// closed or not marked working comes back with Open=false.
func dayWindow(table map[string]json.RawMessage, weekday time.Weekday) (DayWindow, bool) {
	raw, found := table[weekdayKey(weekday)]
	if !found {
		return DayWindow{}, false
	}

	// Legacy string shape "08:00-18:00".
	var legacy string
	if err := json.Unmarshal(raw, &legacy); err == nil {
		from, to, found := strings.Cut(legacy, "-")
		if !found {
			return DayWindow{}, false
		}
		return DayWindow{From: strings.TrimSpace(from), To: strings.TrimSpace(to), Open: true}, true
	}

	var entry dayEntry
	if err := json.Unmarshal(raw, &entry); err != nil {
		return DayWindow{}, false
	}
	open := !entry.Closed && (entry.Working == nil || *entry.Working) &&
		entry.From != "" && entry.To != ""
	return DayWindow{From: entry.From, To: entry.To, Open: open}, true
}

func weekdayKey(weekday time.Weekday) string {
	return strings.ToLower(weekday.String())
}

// dayString is the canonical YYYY-MM-DD form used for all date comparisons.
// Stored date-only columns carry a meaningless midnight clock, so the
// calendar day is read off the value itself instead of converting zones.
func dayString(t time.Time) string {
	return t.Format("2006-01-02")
}
