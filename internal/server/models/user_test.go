package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUser_Public(t *testing.T) {
	u := &User{ID: "1", Username: "alice", PasswordHash: "$2a$10$x", RefreshToken: "rt"}

	p := u.Public()

	assert.Empty(t, p.PasswordHash)
	assert.Empty(t, p.RefreshToken)
	assert.Equal(t, "alice", p.Username)
	// original untouched
	assert.Equal(t, "rt", u.RefreshToken)

	var nilUser *User
	assert.Nil(t, nilUser.Public())
}

func TestUser_JSONHidesSecrets(t *testing.T) {
	b, err := json.Marshal(&User{ID: "1", Username: "alice", PasswordHash: "hash-value", RefreshToken: "refresh-value"})
	require.NoError(t, err)

	assert.NotContains(t, string(b), "hash-value")
	assert.NotContains(t, string(b), "refresh-value")
	assert.Contains(t, string(b), `"username":"alice"`)
}

func TestNormalizeIdentifier(t *testing.T) {
	assert.Equal(t, "alice", NormalizeIdentifier("  Alice "))
	assert.Equal(t, "alice@x.com", NormalizeIdentifier("ALICE@X.com"))
	assert.Equal(t, "", NormalizeIdentifier("   "))
}
