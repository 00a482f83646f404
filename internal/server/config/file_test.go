package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTemp(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestParseFile_Formats(t *testing.T) {
	tests := []struct {
		name string
		file string
		body string
	}{
		{
			name: "json",
			file: "cfg.json",
			body: `{"endpoint_addr_http":"0.0.0.0:9090","database_dsn":"postgres://pg/app","access_token_secret":"acc","access_token_validity_duration":"5m","refresh_token_validity_duration":"2d","bcrypt_cost":11}`,
		},
		{
			name: "yaml",
			file: "cfg.yaml",
			body: "endpoint_addr_http: 0.0.0.0:9090\ndatabase_dsn: postgres://pg/app\naccess_token_secret: acc\naccess_token_validity_duration: 5m\nrefresh_token_validity_duration: 2d\nbcrypt_cost: 11\n",
		},
		{
			name: "toml",
			file: "cfg.toml",
			body: "endpoint_addr_http = \"0.0.0.0:9090\"\ndatabase_dsn = \"postgres://pg/app\"\naccess_token_secret = \"acc\"\naccess_token_validity_duration = \"5m\"\nrefresh_token_validity_duration = \"2d\"\nbcrypt_cost = 11\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Config{}
			c.LoadDefaults()

			require.NoError(t, parseFile(c, writeTemp(t, tt.file, tt.body)))

			assert.Equal(t, "0.0.0.0:9090", c.EndpointAddrHTTP)
			assert.Equal(t, "postgres://pg/app", c.DatabaseDSN)
			assert.Equal(t, "acc", c.AccessTokenSecret)
			assert.Equal(t, 5*time.Minute, c.AccessTokenValidityDuration)
			assert.Equal(t, 48*time.Hour, c.RefreshTokenValidityDuration)
			assert.Equal(t, 11, c.BcryptCost)
			// untouched
			assert.Equal(t, "videotube", c.DatabaseName)
			assert.Equal(t, "media", c.S3Bucket)
		})
	}
}

func TestParseFile_ExpandsEnv(t *testing.T) {
	t.Setenv("TEST_REFRESH_SECRET", "from-env")

	c := &Config{}
	require.NoError(t, parseFile(c, writeTemp(t, "cfg.yml", "refresh_token_secret: ${TEST_REFRESH_SECRET}\n")))
	assert.Equal(t, "from-env", c.RefreshTokenSecret)
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("TEST_DB_HOST", "pg")
	t.Setenv("TEST_DB_EMPTY", "")

	assert.Equal(t, "postgres://pg/app", expandEnvVars("postgres://${TEST_DB_HOST}/app"))
	assert.Equal(t, "x--y", expandEnvVars("x-${TEST_DB_EMPTY}-y"))
	assert.Equal(t, "cost $5", expandEnvVars("cost $5"))
}

func TestParseFile_Errors(t *testing.T) {
	c := &Config{}

	assert.NoError(t, parseFile(c, ""))
	assert.Error(t, parseFile(c, filepath.Join(t.TempDir(), "missing.json")))
	assert.Error(t, parseFile(c, writeTemp(t, "bad.json", "{ nope")))
	assert.Error(t, parseFile(c, writeTemp(t, "cfg.ini", "a=b")))
}
