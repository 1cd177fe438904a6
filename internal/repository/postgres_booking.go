package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/metinatakli/movie-booking/internal/domain"
	"github.com/shopspring/decimal"
)

type PostgresBookingRepository struct {
	db *pgxpool.Pool
}

func NewPostgresBookingRepository(db *pgxpool.Pool) *PostgresBookingRepository {
	return &PostgresBookingRepository{
		db: db,
	}
}

// GetBookedSeats returns every seat held by any booking of the schedule, in
// the order the details were written.
func (p *PostgresBookingRepository) GetBookedSeats(ctx context.Context, scheduleID int) ([]domain.SeatID, error) {
	query := `
		SELECT bd.seat
		FROM booking_details bd
		INNER JOIN bookings b ON b.id = bd.booking_id
		WHERE b.schedule_id = $1
		ORDER BY bd.id`

	rows, err := p.db.Query(ctx, query, scheduleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	seats := []domain.SeatID{}

	for rows.Next() {
		var raw string

		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}

		seat, err := domain.ParseSeatID(raw)
		if err != nil {
			return nil, err
		}

		seats = append(seats, seat)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return seats, nil
}

func (p *PostgresBookingRepository) Create(ctx context.Context, userID, scheduleID int, at time.Time) (int, error) {
	query := `
		INSERT INTO bookings (user_id, schedule_id, booked_at)
		VALUES ($1, $2, $3)
		RETURNING id`

	var id int

	err := p.db.QueryRow(ctx, query, userID, scheduleID, at).Scan(&id)
	if err != nil {
		return 0, mapWriteError(err)
	}

	return id, nil
}

// CreateDetail attaches a seat to a booking. Writing the same seat twice for
// one booking yields domain.ErrDuplicateSeat.
func (p *PostgresBookingRepository) CreateDetail(
	ctx context.Context,
	bookingID int,
	seat domain.SeatID,
	price decimal.Decimal) error {

	query := `
		INSERT INTO booking_details (booking_id, seat, price)
		VALUES ($1, $2, $3)`

	_, err := p.db.Exec(ctx, query, bookingID, seat.String(), price)
	if err != nil {
		return mapWriteError(err)
	}

	return nil
}

func mapWriteError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	switch pgErr.Code {
	case pgerrcode.UniqueViolation:
		return domain.ErrDuplicateSeat
	case pgerrcode.ForeignKeyViolation:
		return domain.ErrRecordNotFound
	}

	return err
}
