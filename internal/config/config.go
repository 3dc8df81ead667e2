package config

import (
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
)

// Config is the process configuration, read from the environment with an
// optional .env file for local development.
type Config struct {
	Host string `env:"AUTHCORE_HOST" env-default:"0.0.0.0"`
	Port int    `env:"AUTHCORE_PORT" env-default:"8080"`

	// Issuer is the external base URL stamped into tokens and the discovery
	// document.
	Issuer string `env:"AUTHCORE_ISSUER" env-default:"http://localhost:8080"`

	// Production enforces https redirect URIs at the authorization endpoint.
	Production bool `env:"AUTHCORE_PRODUCTION" env-default:"false"`

	// ValidScopes is the provider-wide scope set. Empty disables the
	// provider-wide check.
	ValidScopes []string `env:"AUTHCORE_SCOPES" env-default:"openid,profile,email"`

	AccessTokenExpiry  time.Duration `env:"AUTHCORE_ACCESS_TOKEN_EXPIRY" env-default:"1h"`
	IDTokenExpiry      time.Duration `env:"AUTHCORE_ID_TOKEN_EXPIRY" env-default:"1h"`
	RefreshTokenExpiry time.Duration `env:"AUTHCORE_REFRESH_TOKEN_EXPIRY" env-default:"720h"`
	CodeExpiry         time.Duration `env:"AUTHCORE_CODE_EXPIRY" env-default:"15m"`
	DeviceCodeExpiry   time.Duration `env:"AUTHCORE_DEVICE_CODE_EXPIRY" env-default:"5m"`
	DevicePollInterval time.Duration `env:"AUTHCORE_DEVICE_POLL_INTERVAL" env-default:"5s"`

	// TokenRateLimit is the per-client-IP request budget per minute on the
	// token endpoints.
	TokenRateLimit int `env:"AUTHCORE_TOKEN_RATE_LIMIT" env-default:"60"`

	ReadTimeout     time.Duration `env:"AUTHCORE_READ_TIMEOUT" env-default:"10s"`
	WriteTimeout    time.Duration `env:"AUTHCORE_WRITE_TIMEOUT" env-default:"10s"`
	ShutdownTimeout time.Duration `env:"AUTHCORE_SHUTDOWN_TIMEOUT" env-default:"15s"`
}

// Load reads configuration from the environment. A .env file in the working
// directory is loaded first when present; a missing file is not an error.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, errors.Wrap(err, "[config.Load] ReadEnv")
	}
	return &cfg, nil
}
