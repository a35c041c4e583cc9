package app

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
)

type mockStore struct {
	mock.Mock
}

func (m *mockStore) GetWorkshop(ctx context.Context, workshopID string, day time.Time) (*Workshop, error) {
	args := m.Called(ctx, workshopID, day)
	if ws := args.Get(0); ws != nil {
		return ws.(*Workshop), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockStore) DeleteExpiredReservations(ctx context.Context, workshopID string, now time.Time) (int64, error) {
	args := m.Called(ctx, workshopID, now)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockStore) ListReservations(ctx context.Context, workshopID string) ([]Reservation, error) {
	args := m.Called(ctx, workshopID)
	if res := args.Get(0); res != nil {
		return res.([]Reservation), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockStore) SaveWorkshopCredentials(ctx context.Context, workshopID, accessToken, refreshToken string, expiry time.Time) error {
	return m.Called(ctx, workshopID, accessToken, refreshToken, expiry).Error(0)
}

func (m *mockStore) SaveEmployeeCredentials(ctx context.Context, employeeID, accessToken, refreshToken string, expiry time.Time) error {
	return m.Called(ctx, employeeID, accessToken, refreshToken, expiry).Error(0)
}

func (m *mockStore) SaveWorkshopOpeningHours(ctx context.Context, workshopID, hours string) error {
	return m.Called(ctx, workshopID, hours).Error(0)
}

func (m *mockStore) SaveWorkshopCalendar(ctx context.Context, workshopID, calendarID, accessToken, refreshToken string, expiry time.Time) error {
	return m.Called(ctx, workshopID, calendarID, accessToken, refreshToken, expiry).Error(0)
}

func (m *mockStore) SaveEmployeeCalendar(ctx context.Context, employeeID, calendarID, accessToken, refreshToken string, expiry time.Time) error {
	return m.Called(ctx, employeeID, calendarID, accessToken, refreshToken, expiry).Error(0)
}

type mockCalendar struct {
	mock.Mock
}

func (m *mockCalendar) ListEvents(ctx context.Context, accessToken, refreshToken, calendarID string, from, to time.Time) ([]Event, error) {
	args := m.Called(ctx, accessToken, refreshToken, calendarID, from, to)
	if events := args.Get(0); events != nil {
		return events.([]Event), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockCalendar) RefreshCredentials(ctx context.Context, refreshToken string) (Credentials, error) {
	args := m.Called(ctx, refreshToken)
	return args.Get(0).(Credentials), args.Error(1)
}
