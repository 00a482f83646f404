package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/dmitrijs2005/videotube/internal/timex"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// FileConfig is the on-disk shape of the configuration. Durations accept
// strings such as "15m" or "7d". Zero values leave the current setting alone.
type FileConfig struct {
	EndpointAddrHTTP             string         `json:"endpoint_addr_http" yaml:"endpoint_addr_http" toml:"endpoint_addr_http"`
	DatabaseDSN                  string         `json:"database_dsn" yaml:"database_dsn" toml:"database_dsn"`
	DatabaseName                 string         `json:"database_name" yaml:"database_name" toml:"database_name"`
	AccessTokenSecret            string         `json:"access_token_secret" yaml:"access_token_secret" toml:"access_token_secret"`
	RefreshTokenSecret           string         `json:"refresh_token_secret" yaml:"refresh_token_secret" toml:"refresh_token_secret"`
	AccessTokenValidityDuration  timex.Duration `json:"access_token_validity_duration" yaml:"access_token_validity_duration" toml:"access_token_validity_duration"`
	RefreshTokenValidityDuration timex.Duration `json:"refresh_token_validity_duration" yaml:"refresh_token_validity_duration" toml:"refresh_token_validity_duration"`
	BcryptCost                   int            `json:"bcrypt_cost" yaml:"bcrypt_cost" toml:"bcrypt_cost"`
	CORSOrigin                   string         `json:"cors_origin" yaml:"cors_origin" toml:"cors_origin"`
	JSONBodyLimit                int            `json:"json_body_limit" yaml:"json_body_limit" toml:"json_body_limit"`
	UploadBodyLimit              int            `json:"upload_body_limit" yaml:"upload_body_limit" toml:"upload_body_limit"`
	StaticDir                    string         `json:"static_dir" yaml:"static_dir" toml:"static_dir"`
	UploadStagingDir             string         `json:"upload_staging_dir" yaml:"upload_staging_dir" toml:"upload_staging_dir"`
	S3RootUser                   string         `json:"s3_root_user" yaml:"s3_root_user" toml:"s3_root_user"`
	S3RootPassword               string         `json:"s3_root_password" yaml:"s3_root_password" toml:"s3_root_password"`
	S3Bucket                     string         `json:"s3_bucket" yaml:"s3_bucket" toml:"s3_bucket"`
	S3Region                     string         `json:"s3_region" yaml:"s3_region" toml:"s3_region"`
	S3BaseEndpoint               string         `json:"s3_base_endpoint" yaml:"s3_base_endpoint" toml:"s3_base_endpoint"`
	MediaPublicBaseURL           string         `json:"media_public_base_url" yaml:"media_public_base_url" toml:"media_public_base_url"`
	LogLevel                     string         `json:"log_level" yaml:"log_level" toml:"log_level"`
	ShutdownTimeout              timex.Duration `json:"shutdown_timeout" yaml:"shutdown_timeout" toml:"shutdown_timeout"`
}

var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// expandEnvVars replaces ${VAR} with the value of VAR, or "" when unset.
func expandEnvVars(s string) string {
	env := viper.New()
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		name := envVarPattern.FindStringSubmatch(match)[1]
		if err := env.BindEnv(name, name); err != nil {
			return ""
		}
		return env.GetString(name)
	})
}

// parseFile overlays the config file at path onto config. The format is
// chosen by extension: .json, .yaml/.yml or .toml. An empty path is a no-op.
func parseFile(config *Config, path string) error {
	if path == "" {
		return nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}
	data := []byte(expandEnvVars(string(raw)))

	fc := &FileConfig{}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		err = json.Unmarshal(data, fc)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, fc)
	case ".toml":
		_, err = toml.Decode(string(data), fc)
	default:
		return fmt.Errorf("unsupported config file extension %q", ext)
	}
	if err != nil {
		return fmt.Errorf("parsing config file %s: %w", path, err)
	}

	fc.apply(config)
	return nil
}

func (fc *FileConfig) apply(c *Config) {
	setString(&c.EndpointAddrHTTP, fc.EndpointAddrHTTP)
	setString(&c.DatabaseDSN, fc.DatabaseDSN)
	setString(&c.DatabaseName, fc.DatabaseName)
	setString(&c.AccessTokenSecret, fc.AccessTokenSecret)
	setString(&c.RefreshTokenSecret, fc.RefreshTokenSecret)
	setString(&c.CORSOrigin, fc.CORSOrigin)
	setString(&c.StaticDir, fc.StaticDir)
	setString(&c.UploadStagingDir, fc.UploadStagingDir)
	setString(&c.S3RootUser, fc.S3RootUser)
	setString(&c.S3RootPassword, fc.S3RootPassword)
	setString(&c.S3Bucket, fc.S3Bucket)
	setString(&c.S3Region, fc.S3Region)
	setString(&c.S3BaseEndpoint, fc.S3BaseEndpoint)
	setString(&c.MediaPublicBaseURL, fc.MediaPublicBaseURL)
	setString(&c.LogLevel, fc.LogLevel)

	if fc.AccessTokenValidityDuration.Duration > 0 {
		c.AccessTokenValidityDuration = fc.AccessTokenValidityDuration.Duration
	}
	if fc.RefreshTokenValidityDuration.Duration > 0 {
		c.RefreshTokenValidityDuration = fc.RefreshTokenValidityDuration.Duration
	}
	if fc.ShutdownTimeout.Duration > 0 {
		c.ShutdownTimeout = fc.ShutdownTimeout.Duration
	}
	if fc.BcryptCost > 0 {
		c.BcryptCost = fc.BcryptCost
	}
	if fc.JSONBodyLimit > 0 {
		c.JSONBodyLimit = fc.JSONBodyLimit
	}
	if fc.UploadBodyLimit > 0 {
		c.UploadBodyLimit = fc.UploadBodyLimit
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
