package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrWorkshopNotFound = errors.New("workshop not found")
	ErrEmployeeNotFound = errors.New("employee not found")
)

// Store is the persistence surface the availability computation needs.
type Store interface {
	// GetWorkshop loads a workshop with its employees; the vacation flags
	// are evaluated against the given day.
	GetWorkshop(ctx context.Context, workshopID string, day time.Time) (*Workshop, error)
	// DeleteExpiredReservations removes RESERVED rows whose soft lease has
	// passed, workshop-wide. Idempotent under concurrent callers.
	DeleteExpiredReservations(ctx context.Context, workshopID string, now time.Time) (int64, error)
	ListReservations(ctx context.Context, workshopID string) ([]Reservation, error)
	SaveWorkshopCredentials(ctx context.Context, workshopID, accessToken, refreshToken string, expiry time.Time) error
	SaveEmployeeCredentials(ctx context.Context, employeeID, accessToken, refreshToken string, expiry time.Time) error
	SaveWorkshopOpeningHours(ctx context.Context, workshopID, hours string) error
	SaveWorkshopCalendar(ctx context.Context, workshopID, calendarID, accessToken, refreshToken string, expiry time.Time) error
	SaveEmployeeCalendar(ctx context.Context, employeeID, calendarID, accessToken, refreshToken string, expiry time.Time) error
}

type PGStore struct {
	Pool *pgxpool.Pool
}

func (s *PGStore) GetWorkshop(ctx context.Context, workshopID string, day time.Time) (*Workshop, error) {
	q := `SELECT w.id, w.name, COALESCE(w.timezone,''), COALESCE(w.opening_hours,''),
	             COALESCE(w.google_calendar_id,''), COALESCE(w.google_access_token,''),
	             COALESCE(w.google_refresh_token,''), w.google_token_expiry,
	             EXISTS(SELECT 1 FROM workshop_vacations v
	                    WHERE v.workshop_id = w.id AND v.start_date <= $2 AND v.end_date >= $2)
	      FROM workshops w WHERE w.id = $1`

	var w Workshop
	err := s.Pool.QueryRow(ctx, q, workshopID, day).Scan(
		&w.ID, &w.Name, &w.Timezone, &w.OpeningHours,
		&w.Calendar.CalendarID, &w.Calendar.AccessToken,
		&w.Calendar.RefreshToken, &w.Calendar.TokenExpiry, &w.OnVacation)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrWorkshopNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load workshop: %w", err)
	}

	q = `SELECT e.id, e.workshop_id, e.name, COALESCE(e.working_hours,''),
	            COALESCE(e.google_calendar_id,''), COALESCE(e.google_access_token,''),
	            COALESCE(e.google_refresh_token,''), e.google_token_expiry,
	            EXISTS(SELECT 1 FROM employee_vacations v
	                   WHERE v.employee_id = e.id AND v.start_date <= $2 AND v.end_date >= $2)
	     FROM employees e WHERE e.workshop_id = $1 ORDER BY e.id`
	rows, err := s.Pool.Query(ctx, q, workshopID, day)
	if err != nil {
		return nil, fmt.Errorf("load employees: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var e Employee
		if err := rows.Scan(&e.ID, &e.WorkshopID, &e.Name, &e.WorkingHours,
			&e.Calendar.CalendarID, &e.Calendar.AccessToken,
			&e.Calendar.RefreshToken, &e.Calendar.TokenExpiry, &e.OnVacation); err != nil {
			return nil, fmt.Errorf("scan employee: %w", err)
		}
		w.Employees = append(w.Employees, e)
	}
	return &w, rows.Err()
}

func (s *PGStore) DeleteExpiredReservations(ctx context.Context, workshopID string, now time.Time) (int64, error) {
	q := `DELETE FROM direct_bookings
	      WHERE workshop_id = $1 AND status = 'RESERVED'
	        AND reserved_until IS NOT NULL AND reserved_until < $2`
	tag, err := s.Pool.Exec(ctx, q, workshopID, now)
	if err != nil {
		return 0, fmt.Errorf("delete expired reservations: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (s *PGStore) ListReservations(ctx context.Context, workshopID string) ([]Reservation, error) {
	q := `SELECT id, workshop_id, date, time, status, reserved_until
	      FROM direct_bookings
	      WHERE workshop_id = $1 AND status IN ('RESERVED','CONFIRMED','COMPLETED')
	      ORDER BY date, time`
	rows, err := s.Pool.Query(ctx, q, workshopID)
	if err != nil {
		return nil, fmt.Errorf("list reservations: %w", err)
	}
	defer rows.Close()

	var out []Reservation
	for rows.Next() {
		var r Reservation
		if err := rows.Scan(&r.ID, &r.WorkshopID, &r.Date, &r.Time, &r.Status, &r.ReservedUntil); err != nil {
			return nil, fmt.Errorf("scan reservation: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *PGStore) SaveWorkshopCredentials(ctx context.Context, workshopID, accessToken, refreshToken string, expiry time.Time) error {
	q := `UPDATE workshops
	      SET google_access_token=$2, google_refresh_token=$3, google_token_expiry=$4, updated_at=now()
	      WHERE id=$1`
	return s.exec(ctx, q, workshopID, accessToken, refreshToken, expiry)
}

func (s *PGStore) SaveEmployeeCredentials(ctx context.Context, employeeID, accessToken, refreshToken string, expiry time.Time) error {
	q := `UPDATE employees
	      SET google_access_token=$2, google_refresh_token=$3, google_token_expiry=$4, updated_at=now()
	      WHERE id=$1`
	return s.exec(ctx, q, employeeID, accessToken, refreshToken, expiry)
}

func (s *PGStore) SaveWorkshopOpeningHours(ctx context.Context, workshopID, hours string) error {
	q := `UPDATE workshops SET opening_hours=$2, updated_at=now() WHERE id=$1`
	return s.exec(ctx, q, workshopID, hours)
}

func (s *PGStore) SaveWorkshopCalendar(ctx context.Context, workshopID, calendarID, accessToken, refreshToken string, expiry time.Time) error {
	q := `UPDATE workshops
	      SET google_calendar_id=$2, google_access_token=$3, google_refresh_token=$4, google_token_expiry=$5, updated_at=now()
	      WHERE id=$1`
	return s.exec(ctx, q, workshopID, calendarID, accessToken, refreshToken, expiry)
}

func (s *PGStore) SaveEmployeeCalendar(ctx context.Context, employeeID, calendarID, accessToken, refreshToken string, expiry time.Time) error {
	q := `UPDATE employees
	      SET google_calendar_id=$2, google_access_token=$3, google_refresh_token=$4, google_token_expiry=$5, updated_at=now()
	      WHERE id=$1`
	return s.exec(ctx, q, employeeID, calendarID, accessToken, refreshToken, expiry)
}

func (s *PGStore) exec(ctx context.Context, q string, args ...any) error {
	tag, err := s.Pool.Exec(ctx, q, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
