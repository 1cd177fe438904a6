package app

import (
	"context"
	"net/http"

	"github.com/metinatakli/movie-booking/internal/domain"
)

type sessionKey string

// SessionKeyUserId is written by the login service that shares the session
// store; this service only reads it.
const SessionKeyUserId = sessionKey("userID")

func (s sessionKey) String() string {
	return string(s)
}

func (app *Application) contextGetUserId(r *http.Request) int {
	userId, ok := r.Context().Value(SessionKeyUserId).(int)
	if !ok {
		panic("missing user id from context")
	}

	return userId
}

// UserProvider resolves the authenticated user of a request context.
type UserProvider struct {
	users domain.UserRepository
}

func NewUserProvider(users domain.UserRepository) *UserProvider {
	return &UserProvider{users: users}
}

func (p *UserProvider) CurrentUser(ctx context.Context) (*domain.User, error) {
	userId, ok := ctx.Value(SessionKeyUserId).(int)
	if !ok || userId == 0 {
		return nil, domain.ErrUserNotFound
	}

	return p.users.GetByID(ctx, userId)
}
