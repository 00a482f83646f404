// Package repomanager opens a storage backend selected by DSN scheme and
// vends the repositories bound to it.
package repomanager

import (
	"context"
	"fmt"
	"net/url"

	"github.com/dmitrijs2005/videotube/internal/server/repositories/users"
)

// RepositoryManager owns a storage connection and the repositories on it.
type RepositoryManager interface {
	// RunMigrations prepares the schema: goose migrations for PostgreSQL,
	// unique indexes for MongoDB.
	RunMigrations(ctx context.Context) error
	// Users returns the account repository.
	Users() users.Repository
	// Ping checks that the backend is reachable.
	Ping(ctx context.Context) error
	// Close releases the underlying connection.
	Close(ctx context.Context) error
}

// New selects a backend from the DSN scheme: mongodb / mongodb+srv,
// postgres / postgresql, or memory.
func New(ctx context.Context, dsn, dbName string) (RepositoryManager, error) {
	u, err := url.Parse(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse database dsn: %w", err)
	}

	switch u.Scheme {
	case "mongodb", "mongodb+srv":
		return OpenMongo(ctx, dsn, dbName)
	case "postgres", "postgresql":
		return OpenPostgres(dsn)
	case "memory":
		return NewMemoryRepositoryManager(), nil
	default:
		return nil, fmt.Errorf("unsupported database scheme %q", u.Scheme)
	}
}
