package app

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// reservationBusy collects busy intervals from locally stored reservations.
// It first sweeps expired RESERVED rows workshop-wide (a blind idempotent
// delete), then keeps the requested day's blocking reservations: CONFIRMED,
// COMPLETED, and RESERVED leases that have not expired yet.
func (a *App) reservationBusy(ctx context.Context, workshopID string, day time.Time, duration time.Duration, loc *time.Location) ([]Interval, error) {
	now := time.Now()

	deleted, err := a.Store.DeleteExpiredReservations(ctx, workshopID, now)
	if err != nil {
		return nil, fmt.Errorf("expire reservations: %w", err)
	}
	if deleted > 0 {
		a.Logger.Debug().Str("workshop_id", workshopID).Int64("deleted", deleted).
			Msg("swept expired reservations")
	}

	reservations, err := a.Store.ListReservations(ctx, workshopID)
	if err != nil {
		return nil, err
	}

	want := dayString(day.In(loc))
	year, month, dayNum := day.In(loc).Date()

	var busy []Interval
	for _, r := range reservations {
		if dayString(r.Date) != want {
			continue
		}
		switch r.Status {
		case StatusConfirmed, StatusCompleted:
		case StatusReserved:
			if r.ReservedUntil == nil || !r.ReservedUntil.After(now) {
				continue
			}
		default:
			continue
		}
		tod, err := parseHHMM(r.Time)
		if err != nil {
			a.Logger.Warn().Str("reservation_id", r.ID).Str("time", r.Time).
				Msg("skipping reservation with malformed time")
			continue
		}
		start := time.Date(year, month, dayNum, tod.Hour(), tod.Minute(), 0, 0, loc)
		busy = append(busy, Interval{Start: start, End: start.Add(duration)})
	}
	return busy, nil
}

// calendarBusy collects busy intervals from one external calendar binding for
// the requested day, refreshing the credential first. Event instants come
// back in the provider's zone and are normalized to the workshop's.
func (a *App) calendarBusy(ctx context.Context, owner credentialOwner, binding CalendarBinding, day time.Time, loc *time.Location) ([]Interval, error) {
	if a.Calendar == nil {
		return nil, errors.New("calendar client not configured")
	}
	accessToken, err := a.freshAccessToken(ctx, owner, binding)
	if err != nil {
		return nil, err
	}

	year, month, dayNum := day.In(loc).Date()
	dayStart := time.Date(year, month, dayNum, 0, 0, 0, 0, loc)
	dayEnd := dayStart.Add(24 * time.Hour)

	// One slow provider must not stall the whole request.
	ctx, cancel := context.WithTimeout(ctx, a.Cfg.CalendarTimeout)
	defer cancel()

	events, err := a.Calendar.ListEvents(ctx, accessToken, binding.RefreshToken, binding.CalendarID, dayStart, dayEnd)
	if err != nil {
		return nil, err
	}

	var busy []Interval
	for _, ev := range events {
		if ev.Start.IsZero() || ev.End.IsZero() {
			continue
		}
		busy = append(busy, Interval{Start: ev.Start.In(loc), End: ev.End.In(loc)})
	}
	return busy, nil
}
