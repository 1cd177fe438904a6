package mocks

import (
	"context"
	"time"

	"github.com/metinatakli/movie-booking/internal/domain"
	"github.com/shopspring/decimal"
)

type MockGenreRepo struct {
	GetByMovieIDFunc func(ctx context.Context, movieID int) ([]domain.Genre, error)
}

func (m *MockGenreRepo) GetByMovieID(ctx context.Context, movieID int) ([]domain.Genre, error) {
	return m.GetByMovieIDFunc(ctx, movieID)
}

type MockTheaterRepo struct {
	GetByMovieIDFunc func(ctx context.Context, movieID int) ([]domain.Theater, error)
}

func (m *MockTheaterRepo) GetByMovieID(ctx context.Context, movieID int) ([]domain.Theater, error) {
	return m.GetByMovieIDFunc(ctx, movieID)
}

type MockScheduleRepo struct {
	GetByMovieIDFunc func(ctx context.Context, movieID int) ([]domain.Schedule, error)
}

func (m *MockScheduleRepo) GetByMovieID(ctx context.Context, movieID int) ([]domain.Schedule, error) {
	return m.GetByMovieIDFunc(ctx, movieID)
}

type MockBookingRepo struct {
	GetBookedSeatsFunc func(ctx context.Context, scheduleID int) ([]domain.SeatID, error)
	CreateFunc         func(ctx context.Context, userID, scheduleID int, at time.Time) (int, error)
	CreateDetailFunc   func(ctx context.Context, bookingID int, seat domain.SeatID, price decimal.Decimal) error
}

func (m *MockBookingRepo) GetBookedSeats(ctx context.Context, scheduleID int) ([]domain.SeatID, error) {
	return m.GetBookedSeatsFunc(ctx, scheduleID)
}

func (m *MockBookingRepo) Create(ctx context.Context, userID, scheduleID int, at time.Time) (int, error) {
	return m.CreateFunc(ctx, userID, scheduleID, at)
}

func (m *MockBookingRepo) CreateDetail(
	ctx context.Context,
	bookingID int,
	seat domain.SeatID,
	price decimal.Decimal) error {

	return m.CreateDetailFunc(ctx, bookingID, seat, price)
}

type MockUserRepo struct {
	GetByIDFunc func(ctx context.Context, id int) (*domain.User, error)
}

func (m *MockUserRepo) GetByID(ctx context.Context, id int) (*domain.User, error) {
	return m.GetByIDFunc(ctx, id)
}
