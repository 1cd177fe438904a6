package domain

import "context"

type Genre struct {
	ID   int
	Name string
}

type GenreRepository interface {
	GetByMovieID(ctx context.Context, movieID int) ([]Genre, error)
}
