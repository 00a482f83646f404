package auth

import (
	"context"

	"github.com/dmitrijs2005/videotube/internal/server/models"
)

type userContextKey struct{}

// WithUser returns a context carrying the authenticated account.
func WithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, userContextKey{}, user)
}

// UserFromContext returns the authenticated account, if any.
func UserFromContext(ctx context.Context) (*models.User, bool) {
	user, ok := ctx.Value(userContextKey{}).(*models.User)
	return user, ok && user != nil
}
