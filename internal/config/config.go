// Package config loads the web client configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// MinSessionSecretLength mirrors the cookie store's requirement
const MinSessionSecretLength = 32

// Config is the server configuration
type Config struct {
	AppViewURL    string `env:"APPVIEW_URL"    envDefault:"http://localhost:3000"`
	ListenAddr    string `env:"LISTEN_ADDR"    envDefault:":8080"`
	SessionSecret string `env:"SESSION_SECRET,required,notEmpty"`
	// TokenSecret verifies HS256 access tokens; may be empty only in dev
	TokenSecret string `env:"TOKEN_SECRET"`
	// TokenIssuer, when set, is the required 'iss' of access tokens
	TokenIssuer string `env:"TOKEN_ISSUER"`
	LogLevel    string `env:"LOG_LEVEL"      envDefault:"info"`

	SessionTTL        time.Duration `env:"SESSION_TTL"         envDefault:"30m"`
	RateLimitWindow   time.Duration `env:"RATE_LIMIT_WINDOW"   envDefault:"1m"`
	RequestTimeout    time.Duration `env:"REQUEST_TIMEOUT"     envDefault:"10s"`
	PageSize          int           `env:"PAGE_SIZE"           envDefault:"10"`
	MaxSessions       int           `env:"MAX_SESSIONS"        envDefault:"10000"`
	RateLimitRequests int           `env:"RATE_LIMIT_REQUESTS" envDefault:"100"`
	IsDevEnv          bool          `env:"IS_DEV_ENV"          envDefault:"false"`
}

// LoadDotEnv loads variables from the given .env files when they exist.
// Variables already set in the environment win.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

// Load parses and validates the configuration from environment variables.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the values env tags cannot express
func (c Config) Validate() error {
	if len(c.SessionSecret) < MinSessionSecretLength {
		return fmt.Errorf("SESSION_SECRET must be at least %d bytes", MinSessionSecretLength)
	}
	if c.TokenSecret == "" && !c.IsDevEnv {
		return errors.New("TOKEN_SECRET is required outside development")
	}
	if !strings.HasPrefix(c.AppViewURL, "http://") && !strings.HasPrefix(c.AppViewURL, "https://") {
		return fmt.Errorf("APPVIEW_URL must be an http(s) URL, got %q", c.AppViewURL)
	}
	if c.PageSize <= 0 {
		return fmt.Errorf("PAGE_SIZE must be positive, got %d", c.PageSize)
	}
	if c.SessionTTL <= 0 || c.RateLimitWindow <= 0 || c.RequestTimeout <= 0 {
		return errors.New("SESSION_TTL, RATE_LIMIT_WINDOW and REQUEST_TIMEOUT must be positive")
	}
	if c.MaxSessions <= 0 || c.RateLimitRequests <= 0 {
		return errors.New("MAX_SESSIONS and RATE_LIMIT_REQUESTS must be positive")
	}
	return nil
}

// SlogLevel maps LOG_LEVEL onto a slog level, defaulting to info
func (c Config) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}
