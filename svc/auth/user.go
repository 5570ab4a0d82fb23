package auth

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/dmitrymomot/biportal/pkg/jwt"
)

// User is the authenticated identity as seen by the portal.
type User struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	CompanyID string    `json:"company_id,omitempty"`
}

// UserFromClaims builds a User from verified token claims.
func UserFromClaims(c *jwt.Claims) (*User, error) {
	if c == nil {
		return nil, ErrUnauthenticated
	}
	id, err := uuid.Parse(c.Subject)
	if err != nil {
		return nil, errors.Join(ErrInvalidSubject, err)
	}
	return &User{ID: id, Email: c.Email, CompanyID: c.CompanyID}, nil
}

type userContextKey struct{}

// SetUserToContext stores the authenticated user for the rest of the chain.
func SetUserToContext(ctx context.Context, user *User) context.Context {
	return context.WithValue(ctx, userContextKey{}, user)
}

// CurrentUser returns the authenticated user, if any.
func CurrentUser(ctx context.Context) (*User, bool) {
	user, ok := ctx.Value(userContextKey{}).(*User)
	return user, ok && user != nil
}

// LoggerExtractor adds user_id to log records of authenticated requests.
func LoggerExtractor() func(ctx context.Context) (slog.Attr, bool) {
	return func(ctx context.Context) (slog.Attr, bool) {
		if u, ok := CurrentUser(ctx); ok {
			return slog.String("user_id", u.ID.String()), true
		}
		return slog.Attr{}, false
	}
}
