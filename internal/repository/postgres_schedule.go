package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/metinatakli/movie-booking/internal/domain"
)

type PostgresScheduleRepository struct {
	db *pgxpool.Pool
}

func NewPostgresScheduleRepository(db *pgxpool.Pool) *PostgresScheduleRepository {
	return &PostgresScheduleRepository{
		db: db,
	}
}

func (p *PostgresScheduleRepository) GetByMovieID(ctx context.Context, movieID int) ([]domain.Schedule, error) {
	query := `
		SELECT
			id,
			movie_id,
			theater_id,
			to_char(show_date, 'YYYY-MM-DD'),
			to_char(show_time, 'HH24:MI'),
			price
		FROM schedules
		WHERE movie_id = $1
		ORDER BY id`

	rows, err := p.db.Query(ctx, query, movieID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	schedules := []domain.Schedule{}

	for rows.Next() {
		var schedule domain.Schedule

		err := rows.Scan(
			&schedule.ID,
			&schedule.MovieID,
			&schedule.TheaterID,
			&schedule.Date,
			&schedule.Time,
			&schedule.PricePerSeat,
		)
		if err != nil {
			return nil, err
		}

		schedules = append(schedules, schedule)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return schedules, nil
}
