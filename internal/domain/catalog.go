package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// CatalogGateway is everything the booking core reads from and writes to the
// backing service. Read methods return an empty slice when nothing matches.
type CatalogGateway interface {
	GetGenres(ctx context.Context, movieID int) ([]Genre, error)
	GetTheatersForMovie(ctx context.Context, movieID int) ([]Theater, error)
	GetSchedulesForMovie(ctx context.Context, movieID int) ([]Schedule, error)
	GetBookedSeats(ctx context.Context, scheduleID int) ([]SeatID, error)
	CreateBooking(ctx context.Context, userID, scheduleID int, at time.Time) (int, error)
	CreateBookingDetail(ctx context.Context, bookingID int, seat SeatID, price decimal.Decimal) error
}
