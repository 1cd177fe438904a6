package domain

import "context"

type User struct {
	ID       int
	FullName string
	Email    string
}

type UserRepository interface {
	GetByID(ctx context.Context, id int) (*User, error)
}

// UserProvider resolves the user on whose behalf a booking is made.
type UserProvider interface {
	CurrentUser(ctx context.Context) (*User, error)
}
