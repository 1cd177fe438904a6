// Package catalog adapts the repositories to the domain.CatalogGateway the
// booking core consumes. Reads can be retried with backoff when configured;
// writes are attempted exactly once because the backend has no idempotency
// key for them.
package catalog

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/metinatakli/movie-booking/internal/domain"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/metinatakli/movie-booking/internal/catalog"

type Config struct {
	MaxAttempts     uint
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// DefaultConfig makes a single attempt per read.
func DefaultConfig() Config {
	return Config{
		MaxAttempts:     1,
		InitialInterval: 100 * time.Millisecond,
		MaxInterval:     2 * time.Second,
	}
}

type Gateway struct {
	genres    domain.GenreRepository
	theaters  domain.TheaterRepository
	schedules domain.ScheduleRepository
	bookings  domain.BookingRepository
	logger    *slog.Logger
	tracer    trace.Tracer
	cfg       Config
}

func NewGateway(
	genres domain.GenreRepository,
	theaters domain.TheaterRepository,
	schedules domain.ScheduleRepository,
	bookings domain.BookingRepository,
	logger *slog.Logger,
	cfg Config) *Gateway {

	if cfg.MaxAttempts == 0 {
		cfg.MaxAttempts = 1
	}

	return &Gateway{
		genres:    genres,
		theaters:  theaters,
		schedules: schedules,
		bookings:  bookings,
		logger:    logger,
		tracer:    otel.Tracer(instrumentationName),
		cfg:       cfg,
	}
}

func (g *Gateway) GetGenres(ctx context.Context, movieID int) ([]domain.Genre, error) {
	return read(ctx, g, "catalog.GetGenres", attribute.Int("movie.id", movieID), g.genres.GetByMovieID, movieID)
}

func (g *Gateway) GetTheatersForMovie(ctx context.Context, movieID int) ([]domain.Theater, error) {
	return read(ctx, g, "catalog.GetTheatersForMovie", attribute.Int("movie.id", movieID), g.theaters.GetByMovieID, movieID)
}

func (g *Gateway) GetSchedulesForMovie(ctx context.Context, movieID int) ([]domain.Schedule, error) {
	return read(ctx, g, "catalog.GetSchedulesForMovie", attribute.Int("movie.id", movieID), g.schedules.GetByMovieID, movieID)
}

func (g *Gateway) GetBookedSeats(ctx context.Context, scheduleID int) ([]domain.SeatID, error) {
	return read(ctx, g, "catalog.GetBookedSeats", attribute.Int("schedule.id", scheduleID), g.bookings.GetBookedSeats, scheduleID)
}

func (g *Gateway) CreateBooking(ctx context.Context, userID, scheduleID int, at time.Time) (int, error) {
	const op = "catalog.CreateBooking"

	ctx, span := g.tracer.Start(ctx, op, trace.WithAttributes(
		attribute.Int("user.id", userID),
		attribute.Int("schedule.id", scheduleID),
	))
	defer span.End()

	id, err := g.bookings.Create(ctx, userID, scheduleID, at)
	if err != nil {
		return 0, g.fail(span, op, classifyWrite(err), err)
	}

	span.SetAttributes(attribute.Int("booking.id", id))

	return id, nil
}

func (g *Gateway) CreateBookingDetail(ctx context.Context, bookingID int, seat domain.SeatID, price decimal.Decimal) error {
	const op = "catalog.CreateBookingDetail"

	ctx, span := g.tracer.Start(ctx, op, trace.WithAttributes(
		attribute.Int("booking.id", bookingID),
		attribute.String("seat", seat.String()),
	))
	defer span.End()

	err := g.bookings.CreateDetail(ctx, bookingID, seat, price)
	if err != nil {
		return g.fail(span, op, classifyWrite(err), err)
	}

	return nil
}

// read runs fetch with retries. A missing record is an empty result, not an
// error; anything else still failing after the last attempt is transient.
func read[T any](
	ctx context.Context,
	g *Gateway,
	op string,
	attr attribute.KeyValue,
	fetch func(context.Context, int) ([]T, error),
	id int) ([]T, error) {

	ctx, span := g.tracer.Start(ctx, op, trace.WithAttributes(attr))
	defer span.End()

	attempts := 0
	operation := func() ([]T, error) {
		attempts++

		items, err := fetch(ctx, id)
		switch {
		case err == nil:
			return items, nil
		case errors.Is(err, domain.ErrRecordNotFound):
			return nil, nil
		case ctx.Err() != nil:
			return nil, backoff.Permanent(err)
		}

		return nil, err
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = g.cfg.InitialInterval
	b.MaxInterval = g.cfg.MaxInterval

	items, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(b),
		backoff.WithMaxTries(g.cfg.MaxAttempts),
		backoff.WithNotify(func(err error, next time.Duration) {
			g.logger.Warn("catalog read failed, retrying", "op", op, "error", err, "retry_in", next)
		}),
	)

	span.SetAttributes(attribute.Int("attempts", attempts))

	if err != nil {
		return nil, g.fail(span, op, domain.KindTransient, err)
	}

	if items == nil {
		items = []T{}
	}

	return items, nil
}

func (g *Gateway) fail(span trace.Span, op string, kind domain.ErrorKind, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())

	g.logger.Error("catalog call failed", "op", op, "kind", kind.String(), "error", err)

	return domain.NewError(kind, op, err)
}

func classifyWrite(err error) domain.ErrorKind {
	switch {
	case errors.Is(err, domain.ErrRecordNotFound):
		return domain.KindNotFound
	case errors.Is(err, domain.ErrDuplicateSeat), errors.Is(err, domain.ErrSeatBooked):
		return domain.KindConflict
	default:
		return domain.KindTransient
	}
}
