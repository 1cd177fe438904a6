package mocks

import (
	"context"

	"github.com/metinatakli/movie-booking/internal/domain"
)

type MockUserProvider struct {
	CurrentUserFunc func(ctx context.Context) (*domain.User, error)
}

func (m *MockUserProvider) CurrentUser(ctx context.Context) (*domain.User, error) {
	return m.CurrentUserFunc(ctx)
}

// StaticUser returns a provider that always resolves to user.
func StaticUser(user domain.User) *MockUserProvider {
	return &MockUserProvider{
		CurrentUserFunc: func(context.Context) (*domain.User, error) {
			return &user, nil
		},
	}
}
