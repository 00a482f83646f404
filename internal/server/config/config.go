// Package config handles configuration for the server: defaults, an optional
// config file overlay (JSON, YAML or TOML), environment variables and
// command-line flags, applied in that order.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/dmitrijs2005/videotube/internal/flagx"
)

// Config holds runtime settings for the account service.
//
// Fields:
//   - EndpointAddrHTTP: bind address for the HTTP API.
//   - DatabaseDSN: document store connection string. "mongodb://" selects
//     MongoDB, "postgres://" selects PostgreSQL, "memory://" an in-process store.
//   - DatabaseName: MongoDB database name.
//   - AccessTokenSecret / RefreshTokenSecret: distinct HS256 secrets per token kind.
//   - AccessTokenValidityDuration / RefreshTokenValidityDuration: token lifetimes.
//   - BcryptCost: password hashing cost factor.
//   - S3*: credentials and location of the media bucket; MediaPublicBaseURL,
//     when set, is the prefix of the durable URLs handed back for uploads.
type Config struct {
	EndpointAddrHTTP             string
	DatabaseDSN                  string
	DatabaseName                 string
	AccessTokenSecret            string
	RefreshTokenSecret           string
	AccessTokenValidityDuration  time.Duration
	RefreshTokenValidityDuration time.Duration
	BcryptCost                   int
	CORSOrigin                   string
	JSONBodyLimit                int
	UploadBodyLimit              int
	StaticDir                    string
	UploadStagingDir             string
	S3RootUser                   string
	S3RootPassword               string
	S3Bucket                     string
	S3Region                     string
	S3BaseEndpoint               string
	MediaPublicBaseURL           string
	LogLevel                     string
	ShutdownTimeout              time.Duration
}

// LoadDefaults populates Config with development defaults.
// Token secrets are deliberately left empty: they must come from the environment.
func (c *Config) LoadDefaults() {
	c.EndpointAddrHTTP = ":8000"
	c.DatabaseDSN = "mongodb://localhost:27017"
	c.DatabaseName = "videotube"
	c.AccessTokenValidityDuration = 15 * time.Minute
	c.RefreshTokenValidityDuration = 7 * 24 * time.Hour
	c.BcryptCost = 10
	c.CORSOrigin = "*"
	c.JSONBodyLimit = 16 * 1024
	c.UploadBodyLimit = 10 * 1024 * 1024
	c.StaticDir = "public"
	c.UploadStagingDir = "public/temp"
	c.S3RootUser = "admin"
	c.S3RootPassword = "secretpassword"
	c.S3Bucket = "media"
	c.S3Region = "us-east-1"
	c.S3BaseEndpoint = "http://127.0.0.1:9000/"
	c.LogLevel = "info"
	c.ShutdownTimeout = 10 * time.Second
}

// Validate reports settings the server cannot start without.
func (c *Config) Validate() error {
	if c.EndpointAddrHTTP == "" {
		return fmt.Errorf("http address is required")
	}
	if c.DatabaseDSN == "" {
		return fmt.Errorf("database dsn is required")
	}
	if c.BcryptCost < 10 || c.BcryptCost > 31 {
		return fmt.Errorf("bcrypt cost must be between 10 and 31, got %d", c.BcryptCost)
	}
	if c.AccessTokenValidityDuration <= 0 || c.RefreshTokenValidityDuration <= 0 {
		return fmt.Errorf("token lifetimes must be positive")
	}
	if c.AccessTokenSecret != "" && c.AccessTokenSecret == c.RefreshTokenSecret {
		return fmt.Errorf("access and refresh token secrets must differ")
	}
	return nil
}

// LoadConfig builds a Config by applying defaults, then the optional config
// file named by -c/-config, then the environment, then command-line flags.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	args := os.Args[1:]

	if err := parseFile(cfg, flagx.ConfigFileFlag(args)); err != nil {
		return nil, err
	}
	env, err := newEnv()
	if err != nil {
		return nil, err
	}
	if err := parseEnv(cfg, env); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}
