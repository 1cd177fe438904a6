package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type BookingSeat struct {
	Seat  SeatID
	Price decimal.Decimal
}

type BookingRequest struct {
	UserID     int
	ScheduleID int
	Timestamp  time.Time
	Seats      []BookingSeat
}

// Total returns the sum of the seat prices of the request.
func (r BookingRequest) Total() decimal.Decimal {
	total := decimal.Zero

	for _, s := range r.Seats {
		total = total.Add(s.Price)
	}

	return total
}

type BookingOutcome int

const (
	BookingFailed BookingOutcome = iota
	BookingConfirmed
	BookingPartial
)

func (o BookingOutcome) String() string {
	switch o {
	case BookingConfirmed:
		return "confirmed"
	case BookingPartial:
		return "partial"
	default:
		return "failed"
	}
}

// BookingResult is the outcome of a booking submission. A Partial result has
// a parent booking whose detail rows were only partly created; Failed lists
// the seats that still need a detail row.
type BookingResult struct {
	Outcome   BookingOutcome
	BookingID int
	Request   BookingRequest
	Created   []SeatID
	Failed    []SeatID
	Err       error
}

func (r BookingResult) Succeeded() bool {
	return r.Outcome == BookingConfirmed
}

// PriceOf returns the price requested for seat.
func (r BookingResult) PriceOf(seat SeatID) (decimal.Decimal, bool) {
	for _, s := range r.Request.Seats {
		if s.Seat == seat {
			return s.Price, true
		}
	}

	return decimal.Zero, false
}

type BookingRepository interface {
	GetBookedSeats(ctx context.Context, scheduleID int) ([]SeatID, error)
	Create(ctx context.Context, userID, scheduleID int, at time.Time) (int, error)
	CreateDetail(ctx context.Context, bookingID int, seat SeatID, price decimal.Decimal) error
}
