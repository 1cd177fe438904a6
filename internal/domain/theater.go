package domain

import "context"

// Theater describes a screening room's layout. Seats are laid out in
// Sections side by side, each ColumnsPerSection lettered columns wide and
// RowsPerSection rows deep.
type Theater struct {
	ID                int
	Name              string
	Sections          int
	ColumnsPerSection int
	RowsPerSection    int
}

type TheaterRepository interface {
	GetByMovieID(ctx context.Context, movieID int) ([]Theater, error)
}
