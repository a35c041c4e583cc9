package app

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

// Messages returned with successful empty results. Closed days and vacations
// are business conditions, not errors.
const (
	msgOnVacation   = "workshop is on vacation that day"
	msgClosed       = "workshop is closed that day"
	msgInvalidHours = "workshop has no valid opening hours configured"
)

// ConfigError means nothing is set up to answer the question: no usable
// calendar anywhere, or every configured source failed. Distinct from an
// empty slot list, which means everything is booked.
type ConfigError struct {
	Reason  string
	Message string
	Details map[string]any
}

func (e *ConfigError) Error() string { return e.Reason }

func errCalendarNotConnected(details map[string]any) *ConfigError {
	return &ConfigError{
		Reason:  "calendar not connected",
		Message: "connect a Google Calendar for the workshop or its employees in the settings",
		Details: details,
	}
}

// Availability is the outcome of a slot computation. Slots is never nil;
// Message explains an empty list when a business condition caused it.
type Availability struct {
	Slots   []string `json:"slots"`
	Message string   `json:"message,omitempty"`
}

func emptyAvailability(message string) *Availability {
	return &Availability{Slots: []string{}, Message: message}
}

// AvailableSlots computes the bookable slot start times for a workshop on a
// date ("YYYY-MM-DD"). Source selection, first match wins: workshop vacation,
// then the workshop's own calendar when its binding is usable, then the union
// of qualifying employee calendars. employeeID optionally restricts the
// fallback to a single employee. Local reservations block slots on every
// path.
func (a *App) AvailableSlots(ctx context.Context, workshopID, employeeID, date string, durationMinutes int) (*Availability, error) {
	if durationMinutes <= 0 {
		durationMinutes = defaultSlotMinutes
	}
	duration := time.Duration(durationMinutes) * time.Minute

	day, err := time.Parse("2006-01-02", date)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q: %w", date, err)
	}

	workshop, err := a.Store.GetWorkshop(ctx, workshopID, day)
	if err != nil {
		return nil, err
	}
	loc := a.location(workshop.Timezone)
	day, _ = time.ParseInLocation("2006-01-02", date, loc)

	if workshop.OnVacation {
		return emptyAvailability(msgOnVacation), nil
	}

	if workshop.Calendar.Usable() {
		return a.workshopSlots(ctx, workshop, day, duration, loc)
	}
	return a.employeeSlots(ctx, workshop, employeeID, day, duration, loc)
}

// workshopSlots answers from the workshop-level calendar plus local
// reservations. The workshop calendar is the only external source here, so a
// failure degenerates to the configuration-error case.
func (a *App) workshopSlots(ctx context.Context, workshop *Workshop, day time.Time, duration time.Duration, loc *time.Location) (*Availability, error) {
	window, ok := a.openingWindow(ctx, workshop, day, loc)
	if !ok {
		return emptyAvailability(msgInvalidHours), nil
	}
	if !window.Open {
		return emptyAvailability(msgClosed), nil
	}

	grid, err := timeGrid(day, window.From, window.To, duration, loc)
	if err != nil {
		a.Logger.Warn().Err(err).Str("workshop_id", workshop.ID).Msg("malformed opening hours window")
		return emptyAvailability(msgInvalidHours), nil
	}

	busy, err := a.reservationBusy(ctx, workshop.ID, day, duration, loc)
	if err != nil {
		return nil, err
	}

	calBusy, err := a.calendarBusy(ctx, credentialOwner{workshopID: workshop.ID}, workshop.Calendar, day, loc)
	if err != nil {
		// Fail closed: a broken workshop calendar must not look like a
		// fully free day.
		a.Logger.Error().Err(err).Str("workshop_id", workshop.ID).Msg("workshop calendar source failed")
		return nil, errCalendarNotConnected(map[string]any{
			"source": "workshop",
			"cause":  err.Error(),
		})
	}
	busy = append(busy, calBusy...)

	free := filterSlots(grid, duration, busy)
	return &Availability{Slots: slotNames(free)}, nil
}

// employeeSlots aggregates availability across qualifying employees: one
// concurrent calendar fetch per employee, per-task error isolation, and a
// final union — a slot is offered when any qualifying employee is free.
func (a *App) employeeSlots(ctx context.Context, workshop *Workshop, employeeID string, day time.Time, duration time.Duration, loc *time.Location) (*Availability, error) {
	weekday := day.In(loc).Weekday()

	type candidate struct {
		employee Employee
		window   DayWindow
	}
	var (
		qualifying    []candidate
		employeeFound bool
	)
	for _, e := range workshop.Employees {
		if employeeID != "" && e.ID != employeeID {
			continue
		}
		employeeFound = true
		if !e.Calendar.Usable() || e.OnVacation {
			continue
		}
		table, _, _, err := decodeHoursTable(e.WorkingHours)
		if err != nil || table == nil {
			continue
		}
		window, ok := dayWindow(table, weekday)
		if !ok || !window.Open {
			continue
		}
		qualifying = append(qualifying, candidate{employee: e, window: window})
	}
	if employeeID != "" && !employeeFound {
		return nil, ErrEmployeeNotFound
	}
	if len(qualifying) == 0 {
		return nil, errCalendarNotConnected(map[string]any{
			"source":    "employees",
			"employees": len(workshop.Employees),
		})
	}

	// The reservation source is workshop-wide and shared by every employee.
	localBusy, err := a.reservationBusy(ctx, workshop.ID, day, duration, loc)
	if err != nil {
		return nil, err
	}

	var (
		mu     sync.Mutex
		wg     sync.WaitGroup
		union  = make(map[string]struct{})
		failed int
	)
	sem := make(chan struct{}, maxCalendarFetches)
	for _, cand := range qualifying {
		wg.Add(1)
		go func(cand candidate) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			names, err := a.employeeDaySlots(ctx, cand.employee, cand.window, day, duration, loc, localBusy)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				// Fail open per source: one broken employee calendar
				// must not abort the rest.
				failed++
				a.Logger.Warn().Err(err).Str("employee_id", cand.employee.ID).
					Msg("employee calendar source failed, skipping")
				return
			}
			for _, name := range names {
				union[name] = struct{}{}
			}
		}(cand)
	}
	wg.Wait()

	if failed == len(qualifying) {
		return nil, errCalendarNotConnected(map[string]any{
			"source":  "employees",
			"failed":  failed,
			"message": "all employee calendar sources failed",
		})
	}

	slots := make([]string, 0, len(union))
	for name := range union {
		slots = append(slots, name)
	}
	sort.Strings(slots)
	return &Availability{Slots: slots}, nil
}

// employeeDaySlots computes one employee's free slot names: a grid over that
// employee's working window, filtered by their calendar plus the shared local
// reservations.
func (a *App) employeeDaySlots(ctx context.Context, employee Employee, window DayWindow, day time.Time, duration time.Duration, loc *time.Location, localBusy []Interval) ([]string, error) {
	grid, err := timeGrid(day, window.From, window.To, duration, loc)
	if err != nil {
		return nil, fmt.Errorf("working hours window: %w", err)
	}

	busy, err := a.calendarBusy(ctx, credentialOwner{employeeID: employee.ID}, employee.Calendar, day, loc)
	if err != nil {
		return nil, err
	}
	busy = append(busy, localBusy...)

	return slotNames(filterSlots(grid, duration, busy)), nil
}

// openingWindow decodes the workshop's opening hours and looks up the day's
// window. Double-encoded tables are tolerated and written back normalized,
// best effort, so the runtime branch can eventually go away.
func (a *App) openingWindow(ctx context.Context, workshop *Workshop, day time.Time, loc *time.Location) (DayWindow, bool) {
	table, normalized, reencoded, err := decodeHoursTable(workshop.OpeningHours)
	if err != nil || table == nil {
		return DayWindow{}, false
	}
	if reencoded {
		a.Logger.Warn().Str("workshop_id", workshop.ID).Msg("opening hours stored double-encoded, normalizing")
		if err := a.Store.SaveWorkshopOpeningHours(ctx, workshop.ID, normalized); err != nil {
			a.Logger.Warn().Err(err).Str("workshop_id", workshop.ID).Msg("failed to persist normalized opening hours")
		}
	}
	window, ok := dayWindow(table, day.In(loc).Weekday())
	if !ok {
		// Weekday absent from the table means the workshop never opens
		// that day.
		return DayWindow{Open: false}, true
	}
	return window, true
}
