package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/metinatakli/movie-booking/internal/domain"
)

type PostgresTheaterRepository struct {
	db *pgxpool.Pool
}

func NewPostgresTheaterRepository(db *pgxpool.Pool) *PostgresTheaterRepository {
	return &PostgresTheaterRepository{
		db: db,
	}
}

// GetByMovieID returns the theaters that screen the movie, ordered by id.
func (p *PostgresTheaterRepository) GetByMovieID(ctx context.Context, movieID int) ([]domain.Theater, error) {
	query := `
		SELECT t.id, t.name, t.sections, t.columns_per_section, t.rows_per_section
		FROM theaters t
		WHERE EXISTS (
			SELECT 1
			FROM schedules s
			WHERE s.theater_id = t.id AND s.movie_id = $1
		)
		ORDER BY t.id`

	rows, err := p.db.Query(ctx, query, movieID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	theaters := []domain.Theater{}

	for rows.Next() {
		var theater domain.Theater

		err := rows.Scan(
			&theater.ID,
			&theater.Name,
			&theater.Sections,
			&theater.ColumnsPerSection,
			&theater.RowsPerSection,
		)
		if err != nil {
			return nil, err
		}

		theaters = append(theaters, theater)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return theaters, nil
}
