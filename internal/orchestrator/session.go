// Package orchestrator drives one movie-detail session: it loads the catalog,
// forwards user intents to the selection machine, keeps the booked seats of
// the active showtime fresh and hands the frozen selection to the submitter.
package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/metinatakli/movie-booking/internal/domain"
	"github.com/metinatakli/movie-booking/internal/seatmap"
	"github.com/metinatakli/movie-booking/internal/selection"
	"golang.org/x/sync/errgroup"
)

type BookingSubmitter interface {
	Submit(ctx context.Context, schedule domain.Schedule, seats []domain.SeatID) domain.BookingResult
	RetryFailed(ctx context.Context, previous domain.BookingResult) domain.BookingResult
}

// Session serializes all mutations of a selection machine. Booked-seat fetches
// run in the background against the session's own context and are applied
// only if no newer showtime was chosen in the meantime.
type Session struct {
	movieID   int
	gateway   domain.CatalogGateway
	submitter BookingSubmitter
	logger    *slog.Logger

	mu      sync.Mutex
	machine *selection.Machine
	genres  []domain.Genre

	ctx       context.Context
	cancel    context.CancelFunc
	refreshes sync.WaitGroup
}

func New(movieID int, gateway domain.CatalogGateway, submitter BookingSubmitter, logger *slog.Logger) *Session {
	ctx, cancel := context.WithCancel(context.Background())

	return &Session{
		movieID:   movieID,
		gateway:   gateway,
		submitter: submitter,
		logger:    logger.With("movie_id", movieID),
		machine:   selection.New(),
		ctx:       ctx,
		cancel:    cancel,
	}
}

func (s *Session) MovieID() int {
	return s.movieID
}

// Load fetches genres, theaters and schedules concurrently. Nothing is applied
// unless all three succeed.
func (s *Session) Load(ctx context.Context) error {
	var (
		genres    []domain.Genre
		theaters  []domain.Theater
		schedules []domain.Schedule
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		genres, err = s.gateway.GetGenres(gctx, s.movieID)
		return err
	})

	g.Go(func() error {
		var err error
		theaters, err = s.gateway.GetTheatersForMovie(gctx, s.movieID)
		return err
	})

	g.Go(func() error {
		var err error
		schedules, err = s.gateway.GetSchedulesForMovie(gctx, s.movieID)
		return err
	})

	err := g.Wait()

	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		s.logger.Error("failed to load catalog", "error", err)
		s.machine.LoadFailed(err)

		return err
	}

	s.genres = genres
	s.startRefresh(s.machine.Load(theaters, schedules))

	s.logger.Info("session loaded",
		"theaters", len(theaters),
		"schedules", len(schedules),
		"genres", len(genres))

	return nil
}

func (s *Session) SelectTheater(ctx context.Context, theaterID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	theater, ok := s.machine.FindTheater(theaterID)
	if !ok {
		return fmt.Errorf("theater %d: %w", theaterID, domain.ErrUnknownTheater)
	}

	return s.machine.SelectTheater(theater)
}

func (s *Session) SelectDate(ctx context.Context, date string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, err := s.machine.SelectDate(date)
	if err != nil {
		return err
	}

	s.startRefresh(r)

	return nil
}

func (s *Session) SelectTime(ctx context.Context, showtime string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, err := s.machine.SelectTime(showtime)
	if err != nil {
		return err
	}

	s.startRefresh(r)

	return nil
}

// ToggleSeat flips a seat of the selected theater and reports whether it is
// now selected.
func (s *Session) ToggleSeat(ctx context.Context, seat domain.SeatID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state := s.machine.Snapshot()
	if state.Theater == nil || !seatmap.Contains(*state.Theater, seat) {
		return false, fmt.Errorf("seat %s: %w", seat, domain.ErrUnknownSeat)
	}

	return s.machine.ToggleSeat(seat)
}

// Submit books the current selection. The machine rejects other mutations
// while the submission is in flight.
func (s *Session) Submit(ctx context.Context) (domain.BookingResult, error) {
	s.mu.Lock()
	draft, err := s.machine.BeginSubmit()
	s.mu.Unlock()

	if err != nil {
		return domain.BookingResult{}, err
	}

	result := s.submitter.Submit(ctx, draft.Schedule, draft.Seats)

	s.finish(result)

	return result, nil
}

// RetryFailed re-sends the seats the last partial booking could not write.
func (s *Session) RetryFailed(ctx context.Context) (domain.BookingResult, error) {
	s.mu.Lock()
	previous, err := s.machine.BeginRetry()
	s.mu.Unlock()

	if err != nil {
		return domain.BookingResult{}, err
	}

	result := s.submitter.RetryFailed(ctx, previous)

	s.finish(result)

	return result, nil
}

func (s *Session) State() selection.State {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.machine.Snapshot()
}

func (s *Session) Genres() []domain.Genre {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]domain.Genre(nil), s.genres...)
}

func (s *Session) Theaters() []domain.Theater {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.machine.Theaters()
}

func (s *Session) Schedules() []domain.Schedule {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.machine.Schedules()
}

// SeatMap returns every seat of the selected theater in display order.
func (s *Session) SeatMap() []domain.SeatID {
	state := s.State()
	if state.Theater == nil {
		return nil
	}

	return seatmap.Generate(*state.Theater)
}

// Wait blocks until all in-flight booked-seat fetches have been applied or
// discarded.
func (s *Session) Wait() {
	s.refreshes.Wait()
}

// Close cancels in-flight fetches and waits for them to return.
func (s *Session) Close() {
	s.cancel()
	s.refreshes.Wait()
}

func (s *Session) finish(result domain.BookingResult) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.machine.FinishSubmit(result)

	s.logger.Info("booking finished",
		"outcome", result.Outcome.String(),
		"booking_id", result.BookingID,
		"created", len(result.Created),
		"failed", len(result.Failed))
}

// startRefresh must be called with s.mu held.
func (s *Session) startRefresh(r selection.Refresh) {
	if !r.Needed {
		return
	}

	s.refreshes.Add(1)

	go func() {
		defer s.refreshes.Done()
		defer func() {
			if err := recover(); err != nil {
				s.logger.Error("booked seat refresh panicked", "error", err, "schedule_id", r.ScheduleID)
			}
		}()

		seats, err := s.gateway.GetBookedSeats(s.ctx, r.ScheduleID)

		s.mu.Lock()
		defer s.mu.Unlock()

		var applied bool
		if err != nil {
			applied = s.machine.RefreshFailed(r.Generation, err)
		} else {
			applied = s.machine.ApplyBookedSeats(r.Generation, seats)
		}

		if !applied {
			s.logger.Debug("discarded stale booked seats",
				"schedule_id", r.ScheduleID,
				"generation", r.Generation)
			return
		}

		if err != nil {
			s.logger.Warn("failed to refresh booked seats", "schedule_id", r.ScheduleID, "error", err)
		}
	}()
}
