package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setEnv clears every recognized variable, then applies vars.
func setEnv(t *testing.T, vars map[string]string) {
	t.Helper()
	for _, names := range envBindings {
		for _, n := range names {
			t.Setenv(n, "")
		}
	}
	for k, v := range vars {
		t.Setenv(k, v)
	}
}

func parseEnvFor(t *testing.T, c *Config, vars map[string]string) error {
	t.Helper()
	setEnv(t, vars)
	env, err := newEnv()
	require.NoError(t, err)
	return parseEnv(c, env)
}

func TestParseEnv(t *testing.T) {
	c := &Config{}
	c.LoadDefaults()

	err := parseEnvFor(t, c, map[string]string{
		"PORT":                  "9000",
		"MONGODB_URI":           "mongodb://mongo:27017",
		"DB_NAME":               "accounts",
		"ACCESS_TOKEN_SECRET":   "a-secret",
		"ACCESS_TOKEN_EXPIRY":   "30m",
		"REFRESH_TOKEN_SECRET":  "r-secret",
		"REFRESH_TOKEN_EXPIRY":  "10d",
		"BCRYPT_COST":           "12",
		"CORS_ORIGIN":           "https://app.example",
		"S3_BUCKET":             "avatars",
		"MEDIA_PUBLIC_BASE_URL": "https://cdn.example/avatars",
	})
	require.NoError(t, err)

	assert.Equal(t, ":9000", c.EndpointAddrHTTP)
	assert.Equal(t, "mongodb://mongo:27017", c.DatabaseDSN)
	assert.Equal(t, "accounts", c.DatabaseName)
	assert.Equal(t, "a-secret", c.AccessTokenSecret)
	assert.Equal(t, 30*time.Minute, c.AccessTokenValidityDuration)
	assert.Equal(t, "r-secret", c.RefreshTokenSecret)
	assert.Equal(t, 10*24*time.Hour, c.RefreshTokenValidityDuration)
	assert.Equal(t, 12, c.BcryptCost)
	assert.Equal(t, "https://app.example", c.CORSOrigin)
	assert.Equal(t, "avatars", c.S3Bucket)
	assert.Equal(t, "https://cdn.example/avatars", c.MediaPublicBaseURL)
}

func TestParseEnv_Precedence(t *testing.T) {
	c := &Config{}
	c.LoadDefaults()

	require.NoError(t, parseEnvFor(t, c, map[string]string{
		"PORT":         "9000",
		"HTTP_ADDR":    "127.0.0.1:7000",
		"MONGODB_URI":  "mongodb://mongo",
		"DATABASE_DSN": "postgres://pg/db",
	}))

	assert.Equal(t, "127.0.0.1:7000", c.EndpointAddrHTTP)
	assert.Equal(t, "postgres://pg/db", c.DatabaseDSN)
}

func TestParseEnv_Errors(t *testing.T) {
	for _, env := range []map[string]string{
		{"ACCESS_TOKEN_EXPIRY": "soon"},
		{"REFRESH_TOKEN_EXPIRY": "7days"},
		{"BCRYPT_COST": "ten"},
	} {
		c := &Config{}
		assert.Error(t, parseEnvFor(t, c, env))
	}
}

func TestParseEnv_EmptyValuesIgnored(t *testing.T) {
	c := &Config{}
	c.LoadDefaults()

	require.NoError(t, parseEnvFor(t, c, map[string]string{"MONGODB_URI": "", "PORT": ""}))
	assert.Equal(t, "mongodb://localhost:27017", c.DatabaseDSN)
	assert.Equal(t, ":8000", c.EndpointAddrHTTP)
}
