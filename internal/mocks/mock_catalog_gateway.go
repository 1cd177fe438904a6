package mocks

import (
	"context"
	"time"

	"github.com/metinatakli/movie-booking/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

type MockCatalogGateway struct {
	mock.Mock
}

func (m *MockCatalogGateway) GetGenres(ctx context.Context, movieID int) ([]domain.Genre, error) {
	args := m.Called(ctx, movieID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Genre), args.Error(1)
}

func (m *MockCatalogGateway) GetTheatersForMovie(ctx context.Context, movieID int) ([]domain.Theater, error) {
	args := m.Called(ctx, movieID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Theater), args.Error(1)
}

func (m *MockCatalogGateway) GetSchedulesForMovie(ctx context.Context, movieID int) ([]domain.Schedule, error) {
	args := m.Called(ctx, movieID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Schedule), args.Error(1)
}

func (m *MockCatalogGateway) GetBookedSeats(ctx context.Context, scheduleID int) ([]domain.SeatID, error) {
	args := m.Called(ctx, scheduleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.SeatID), args.Error(1)
}

func (m *MockCatalogGateway) CreateBooking(ctx context.Context, userID, scheduleID int, at time.Time) (int, error) {
	args := m.Called(ctx, userID, scheduleID, at)
	return args.Int(0), args.Error(1)
}

func (m *MockCatalogGateway) CreateBookingDetail(
	ctx context.Context,
	bookingID int,
	seat domain.SeatID,
	price decimal.Decimal) error {

	args := m.Called(ctx, bookingID, seat, price)
	return args.Error(0)
}
