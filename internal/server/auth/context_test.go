package auth

import (
	"context"
	"testing"

	"github.com/dmitrijs2005/videotube/internal/server/models"
	"github.com/stretchr/testify/assert"
)

func TestUserContext(t *testing.T) {
	_, ok := UserFromContext(context.Background())
	assert.False(t, ok)

	u := &models.User{ID: "1", Username: "bob"}
	got, ok := UserFromContext(WithUser(context.Background(), u))
	assert.True(t, ok)
	assert.Same(t, u, got)

	_, ok = UserFromContext(WithUser(context.Background(), nil))
	assert.False(t, ok)
}
