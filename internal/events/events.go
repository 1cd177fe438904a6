// Package events announces booking outcomes to a message broker so that
// downstream consumers can react without polling the bookings table.
package events

import (
	"context"
	"time"

	"github.com/metinatakli/movie-booking/internal/domain"
	"github.com/shopspring/decimal"
)

const (
	TypeBookingConfirmed = "booking.confirmed"
	TypeBookingPartial   = "booking.partial"
)

type BookingEvent struct {
	Type        string    `json:"type"`
	BookingID   int       `json:"bookingId"`
	UserID      int       `json:"userId"`
	MovieID     int       `json:"movieId"`
	ScheduleID  int       `json:"scheduleId"`
	Seats       []string  `json:"seats"`
	FailedSeats []string  `json:"failedSeats,omitempty"`
	Total       string    `json:"total"`
	OccurredAt  time.Time `json:"occurredAt"`
}

// NewBookingEvent describes result. Only results that created a parent
// booking produce an event; ok is false otherwise.
func NewBookingEvent(movieID int, result domain.BookingResult, at time.Time) (BookingEvent, bool) {
	var eventType string

	switch result.Outcome {
	case domain.BookingConfirmed:
		eventType = TypeBookingConfirmed
	case domain.BookingPartial:
		eventType = TypeBookingPartial
	default:
		return BookingEvent{}, false
	}

	total := result.Request.Total()
	if result.Outcome == domain.BookingPartial {
		total = total.Sub(sumOf(result, result.Failed))
	}

	event := BookingEvent{
		Type:       eventType,
		BookingID:  result.BookingID,
		UserID:     result.Request.UserID,
		MovieID:    movieID,
		ScheduleID: result.Request.ScheduleID,
		Seats:      domain.SeatStrings(result.Created),
		Total:      total.StringFixed(2),
		OccurredAt: at.UTC(),
	}

	if len(result.Failed) > 0 {
		event.FailedSeats = domain.SeatStrings(result.Failed)
	}

	return event, true
}

func sumOf(result domain.BookingResult, seats []domain.SeatID) decimal.Decimal {
	total := decimal.Zero

	for _, seat := range seats {
		if price, ok := result.PriceOf(seat); ok {
			total = total.Add(price)
		}
	}

	return total
}

type Publisher interface {
	PublishBooking(ctx context.Context, event BookingEvent) error
	Close() error
}

// NopPublisher drops every event. It is used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) PublishBooking(context.Context, BookingEvent) error { return nil }

func (NopPublisher) Close() error { return nil }
