package config

import (
	"fmt"

	"github.com/dmitrijs2005/videotube/internal/timex"
	"github.com/spf13/cast"
	"github.com/spf13/viper"
)

// envBindings maps config keys to the environment variables that set them.
// When a key lists several variables the first one present wins.
var envBindings = map[string][]string{
	"port":                  {"PORT"},
	"http_addr":             {"HTTP_ADDR"},
	"database_dsn":          {"DATABASE_DSN", "MONGODB_URI"},
	"db_name":               {"DB_NAME"},
	"access_token_secret":   {"ACCESS_TOKEN_SECRET"},
	"access_token_expiry":   {"ACCESS_TOKEN_EXPIRY"},
	"refresh_token_secret":  {"REFRESH_TOKEN_SECRET"},
	"refresh_token_expiry":  {"REFRESH_TOKEN_EXPIRY"},
	"bcrypt_cost":           {"BCRYPT_COST"},
	"cors_origin":           {"CORS_ORIGIN"},
	"log_level":             {"LOG_LEVEL"},
	"s3_access_key":         {"S3_ACCESS_KEY"},
	"s3_secret_key":         {"S3_SECRET_KEY"},
	"s3_bucket":             {"S3_BUCKET"},
	"s3_region":             {"S3_REGION"},
	"s3_endpoint":           {"S3_ENDPOINT"},
	"media_public_base_url": {"MEDIA_PUBLIC_BASE_URL"},
}

// newEnv returns a viper instance bound to the recognized variables.
// Empty variables count as unset.
func newEnv() (*viper.Viper, error) {
	v := viper.New()
	v.AllowEmptyEnv(false)
	for key, names := range envBindings {
		if err := v.BindEnv(append([]string{key}, names...)...); err != nil {
			return nil, fmt.Errorf("bind %s: %w", key, err)
		}
	}
	return v, nil
}

// parseEnv overlays process environment variables onto config.
//
// Recognized variables:
//
//	PORT                     HTTP port, bound on all interfaces
//	HTTP_ADDR                full HTTP bind address (wins over PORT)
//	DATABASE_DSN, MONGODB_URI  store connection string (DATABASE_DSN wins)
//	DB_NAME                  MongoDB database name
//	ACCESS_TOKEN_SECRET, ACCESS_TOKEN_EXPIRY
//	REFRESH_TOKEN_SECRET, REFRESH_TOKEN_EXPIRY
//	BCRYPT_COST, CORS_ORIGIN, LOG_LEVEL
//	S3_ACCESS_KEY, S3_SECRET_KEY, S3_BUCKET, S3_REGION, S3_ENDPOINT
//	MEDIA_PUBLIC_BASE_URL
func parseEnv(config *Config, v *viper.Viper) error {
	str := func(key string, dst *string) {
		if v.IsSet(key) {
			*dst = v.GetString(key)
		}
	}

	if v.IsSet("port") {
		config.EndpointAddrHTTP = ":" + v.GetString("port")
	}
	str("http_addr", &config.EndpointAddrHTTP)
	str("database_dsn", &config.DatabaseDSN)
	str("db_name", &config.DatabaseName)
	str("access_token_secret", &config.AccessTokenSecret)
	str("refresh_token_secret", &config.RefreshTokenSecret)
	str("cors_origin", &config.CORSOrigin)
	str("log_level", &config.LogLevel)
	str("s3_access_key", &config.S3RootUser)
	str("s3_secret_key", &config.S3RootPassword)
	str("s3_bucket", &config.S3Bucket)
	str("s3_region", &config.S3Region)
	str("s3_endpoint", &config.S3BaseEndpoint)
	str("media_public_base_url", &config.MediaPublicBaseURL)

	if v.IsSet("access_token_expiry") {
		d, err := timex.ParseDuration(v.GetString("access_token_expiry"))
		if err != nil {
			return fmt.Errorf("ACCESS_TOKEN_EXPIRY: %w", err)
		}
		config.AccessTokenValidityDuration = d
	}
	if v.IsSet("refresh_token_expiry") {
		d, err := timex.ParseDuration(v.GetString("refresh_token_expiry"))
		if err != nil {
			return fmt.Errorf("REFRESH_TOKEN_EXPIRY: %w", err)
		}
		config.RefreshTokenValidityDuration = d
	}
	if v.IsSet("bcrypt_cost") {
		n, err := cast.ToIntE(v.GetString("bcrypt_cost"))
		if err != nil {
			return fmt.Errorf("BCRYPT_COST: %w", err)
		}
		config.BcryptCost = n
	}

	return nil
}
