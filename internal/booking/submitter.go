// Package booking writes a booking as one parent record plus one detail
// record per seat. The backing service offers no transaction spanning these
// writes, so a booking whose parent exists but whose details were only partly
// written is reported as a partial outcome instead of being rolled back.
package booking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/metinatakli/movie-booking/internal/domain"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

const instrumentationName = "github.com/metinatakli/movie-booking/internal/booking"

type Submitter struct {
	gateway     domain.CatalogGateway
	users       domain.UserProvider
	logger      *slog.Logger
	now         func() time.Time
	location    *time.Location
	submissions metric.Int64Counter
}

type Option func(*Submitter)

// WithClock overrides the time source used for the booking timestamp and the
// past-schedule check.
func WithClock(now func() time.Time) Option {
	return func(s *Submitter) {
		s.now = now
	}
}

// WithLocation sets the time zone schedule dates are interpreted in.
func WithLocation(loc *time.Location) Option {
	return func(s *Submitter) {
		s.location = loc
	}
}

func NewSubmitter(gateway domain.CatalogGateway, users domain.UserProvider, logger *slog.Logger, opts ...Option) *Submitter {
	s := &Submitter{
		gateway:  gateway,
		users:    users,
		logger:   logger,
		now:      time.Now,
		location: time.Local,
	}

	for _, opt := range opts {
		opt(s)
	}

	counter, err := otel.Meter(instrumentationName).Int64Counter(
		"booking.submissions",
		metric.WithDescription("Number of booking submissions by outcome"),
	)
	if err != nil {
		logger.Warn("failed to create booking counter", "error", err)
		counter = noop.Int64Counter{}
	}

	s.submissions = counter

	return s
}

// Submit books seats, in order, for the schedule on behalf of the current user.
func (s *Submitter) Submit(ctx context.Context, schedule domain.Schedule, seats []domain.SeatID) domain.BookingResult {
	const op = "submit booking"

	if err := s.validate(schedule, seats); err != nil {
		return s.record(ctx, failed(seats, domain.NewError(domain.KindInvalid, op, err)))
	}

	user, err := s.users.CurrentUser(ctx)
	if err != nil || user == nil {
		if err == nil {
			err = domain.ErrUserNotFound
		}

		return s.record(ctx, failed(seats, domain.NewError(domain.KindTotalBooking, op, err)))
	}

	request := domain.BookingRequest{
		UserID:     user.ID,
		ScheduleID: schedule.ID,
		Timestamp:  s.now(),
		Seats:      make([]domain.BookingSeat, len(seats)),
	}

	for i, seat := range seats {
		request.Seats[i] = domain.BookingSeat{Seat: seat, Price: schedule.PricePerSeat}
	}

	bookingID, err := s.gateway.CreateBooking(ctx, request.UserID, request.ScheduleID, request.Timestamp)
	if err != nil {
		s.logger.Error("failed to create booking", "schedule_id", schedule.ID, "user_id", user.ID, "error", err)

		result := failed(seats, domain.NewError(domain.KindTotalBooking, op, err))
		result.Request = request

		return s.record(ctx, result)
	}

	result := domain.BookingResult{
		BookingID: bookingID,
		Request:   request,
	}

	errs := s.createDetails(ctx, &result, request.Seats)

	return s.record(ctx, conclude(op, result, errs))
}

// RetryFailed re-sends the detail records a partial booking is missing. Seats
// the backend reports as already attached to the booking count as created.
func (s *Submitter) RetryFailed(ctx context.Context, previous domain.BookingResult) domain.BookingResult {
	const op = "retry booking"

	if previous.Outcome != domain.BookingPartial || len(previous.Failed) == 0 {
		previous.Err = domain.NewError(domain.KindInvalid, op, domain.ErrNothingToRetry)
		return previous
	}

	retry := make([]domain.BookingSeat, 0, len(previous.Failed))
	for _, seat := range previous.Failed {
		price, _ := previous.PriceOf(seat)
		retry = append(retry, domain.BookingSeat{Seat: seat, Price: price})
	}

	result := domain.BookingResult{
		BookingID: previous.BookingID,
		Request:   previous.Request,
		Created:   append([]domain.SeatID(nil), previous.Created...),
	}

	errs := s.createDetails(ctx, &result, retry)

	return s.record(ctx, conclude(op, result, errs))
}

func (s *Submitter) validate(schedule domain.Schedule, seats []domain.SeatID) error {
	if len(seats) == 0 {
		return domain.ErrNoSeatsSelected
	}

	if schedule.ID == 0 {
		return domain.ErrNoActiveSchedule
	}

	day, err := schedule.Day(s.location)
	if err != nil {
		return fmt.Errorf("invalid schedule date %q: %w", schedule.Date, err)
	}

	now := s.now().In(s.location)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.location)

	if day.Before(today) {
		return domain.ErrScheduleInPast
	}

	return nil
}

// createDetails writes one detail per seat, sequentially. A failed seat does
// not stop the remaining ones; a cancelled context does.
func (s *Submitter) createDetails(ctx context.Context, result *domain.BookingResult, seats []domain.BookingSeat) []error {
	var errs []error

	for i, seat := range seats {
		if err := ctx.Err(); err != nil {
			for _, rest := range seats[i:] {
				result.Failed = append(result.Failed, rest.Seat)
			}
			errs = append(errs, err)

			break
		}

		err := s.gateway.CreateBookingDetail(ctx, result.BookingID, seat.Seat, seat.Price)
		switch {
		case err == nil:
			result.Created = append(result.Created, seat.Seat)
		case errors.Is(err, domain.ErrDuplicateSeat):
			s.logger.Warn("booking detail already exists", "booking_id", result.BookingID, "seat", seat.Seat.String())
			result.Created = append(result.Created, seat.Seat)
		default:
			s.logger.Error("failed to create booking detail",
				"booking_id", result.BookingID,
				"seat", seat.Seat.String(),
				"error", err)
			result.Failed = append(result.Failed, seat.Seat)
			errs = append(errs, fmt.Errorf("seat %s: %w", seat.Seat, err))
		}
	}

	return errs
}

func (s *Submitter) record(ctx context.Context, result domain.BookingResult) domain.BookingResult {
	s.submissions.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", result.Outcome.String())))

	switch result.Outcome {
	case domain.BookingConfirmed:
		s.logger.Info("booking confirmed",
			"booking_id", result.BookingID,
			"schedule_id", result.Request.ScheduleID,
			"seats", len(result.Created))
	case domain.BookingPartial:
		s.logger.Warn("booking partially created",
			"booking_id", result.BookingID,
			"created", len(result.Created),
			"failed", strings.Join(domain.SeatStrings(result.Failed), ","))
	default:
		s.logger.Warn("booking failed", "kind", domain.KindOf(result.Err).String(), "error", result.Err)
	}

	return result
}

func conclude(op string, result domain.BookingResult, errs []error) domain.BookingResult {
	if len(result.Failed) == 0 {
		result.Outcome = domain.BookingConfirmed
		return result
	}

	total := len(result.Created) + len(result.Failed)
	err := fmt.Errorf("%d of %d seat details failed (%s): %w",
		len(result.Failed), total, strings.Join(domain.SeatStrings(result.Failed), ", "), errors.Join(errs...))

	result.Outcome = domain.BookingPartial
	result.Err = domain.NewError(domain.KindPartialBooking, op, err)

	return result
}

func failed(seats []domain.SeatID, err error) domain.BookingResult {
	return domain.BookingResult{
		Outcome: domain.BookingFailed,
		Failed:  append([]domain.SeatID(nil), seats...),
		Err:     err,
	}
}
