package app

import (
	"fmt"
	"time"
)

// Interval is a [Start, End) busy range in the workshop's timezone.
type Interval struct {
	Start time.Time
	End   time.Time
}

// Overlaps reports whether [start, end) intersects the interval.
func (iv Interval) Overlaps(start, end time.Time) bool {
	return start.Before(iv.End) && end.After(iv.Start)
}

// timeGrid expands an open/close window on the given day into candidate slot
// start times. Slots are back-to-back: generation starts at open and steps by
// the slot duration, and the last slot ends no later than close. A duration
// longer than the window yields no slots.
func timeGrid(day time.Time, open, close string, duration time.Duration, loc *time.Location) ([]time.Time, error) {
	openTOD, err := parseHHMM(open)
	if err != nil {
		return nil, fmt.Errorf("open time: %w", err)
	}
	closeTOD, err := parseHHMM(close)
	if err != nil {
		return nil, fmt.Errorf("close time: %w", err)
	}

	year, month, dayNum := day.In(loc).Date()
	start := time.Date(year, month, dayNum, openTOD.Hour(), openTOD.Minute(), 0, 0, loc)
	end := time.Date(year, month, dayNum, closeTOD.Hour(), closeTOD.Minute(), 0, 0, loc)

	var slots []time.Time
	for s := start; !s.Add(duration).After(end); s = s.Add(duration) {
		slots = append(slots, s)
	}
	return slots, nil
}

// filterSlots drops every candidate whose [slot, slot+duration) range overlaps
// a busy interval. Order is preserved; filtering twice with the same busy set
// is a no-op.
func filterSlots(slots []time.Time, duration time.Duration, busy []Interval) []time.Time {
	var free []time.Time
	for _, s := range slots {
		end := s.Add(duration)
		blocked := false
		for _, iv := range busy {
			if iv.Overlaps(s, end) {
				blocked = true
				break
			}
		}
		if !blocked {
			free = append(free, s)
		}
	}
	return free
}

func slotNames(slots []time.Time) []string {
	names := make([]string, 0, len(slots))
	for _, s := range slots {
		names = append(names, s.Format("15:04"))
	}
	return names
}

func parseHHMM(s string) (time.Time, error) {
	// Tolerate "09:00:00.000000" style values from time columns.
	if len(s) < 5 {
		return time.Time{}, fmt.Errorf("invalid time string: %s", s)
	}
	tt, err := time.Parse("15:04", s[:5])
	if err != nil {
		return time.Time{}, err
	}
	return tt, nil
}
