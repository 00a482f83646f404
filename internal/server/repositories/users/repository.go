// Package users holds the account store contract and its backends.
package users

import (
	"context"

	"github.com/dmitrijs2005/videotube/internal/server/models"
)

// Repository is the User Store. Implementations return common.ErrorNotFound
// for missing accounts and common.ErrorConflict when a unique username or
// email would be violated. Lookups expect already normalized identifiers.
type Repository interface {
	// FindByUsernameOrEmail matches either identifier; empty ones are ignored.
	// The returned record includes secrets.
	FindByUsernameOrEmail(ctx context.Context, username, email string) (*models.User, error)
	// Create stores a new account and returns it with the assigned ID and
	// timestamps.
	Create(ctx context.Context, user *models.User) (*models.User, error)
	// FindByID loads an account. With excludeSecrets the password hash and
	// refresh token are left empty.
	FindByID(ctx context.Context, id string, excludeSecrets bool) (*models.User, error)
	// UpdateRefreshToken sets the stored refresh token, or clears it when
	// token is empty. The returned record has secrets excluded.
	UpdateRefreshToken(ctx context.Context, id, token string) (*models.User, error)
	// UpdatePasswordHash replaces the stored password hash.
	UpdatePasswordHash(ctx context.Context, id, hash string) error
}
