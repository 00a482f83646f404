package repomanager

import (
	"context"
	"testing"

	"github.com/dmitrijs2005/videotube/internal/server/repositories/users"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_SelectsBackendByScheme(t *testing.T) {
	ctx := context.Background()

	m, err := New(ctx, "memory://", "")
	require.NoError(t, err)
	assert.IsType(t, &MemoryRepositoryManager{}, m)
	assert.IsType(t, &users.MemoryRepository{}, m.Users())
	require.NoError(t, m.RunMigrations(ctx))
	require.NoError(t, m.Ping(ctx))
	require.NoError(t, m.Close(ctx))

	m, err = New(ctx, "postgres://user:pw@localhost:5432/videotube?sslmode=disable", "")
	require.NoError(t, err)
	assert.IsType(t, &PostgresRepositoryManager{}, m)
	require.NoError(t, m.Close(ctx))

	m, err = New(ctx, "mongodb://localhost:27017", "videotube")
	require.NoError(t, err)
	assert.IsType(t, &MongoRepositoryManager{}, m)
	assert.IsType(t, &users.MongoRepository{}, m.Users())
	require.NoError(t, m.Close(ctx))
}

func TestNew_RejectsUnknownScheme(t *testing.T) {
	_, err := New(context.Background(), "redis://localhost:6379", "")
	assert.ErrorContains(t, err, `unsupported database scheme "redis"`)

	_, err = New(context.Background(), "::not a url", "")
	assert.Error(t, err)
}
