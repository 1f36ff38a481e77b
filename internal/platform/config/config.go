// Copyright (c) 2026 Gukkan. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package config handles application-wide settings and environment parsing.

It leverages 'caarlos0/env' to map OS environment variables into a strongly-typed
Go struct, providing early validation and default values. A local '.env' file is
merged in first when present, so development setups do not need exported variables.

Usage:

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}

Architecture:

  - Immutability: Once loaded, configuration is read-only.
  - DI-Friendly: Passed to core components (backend client, DB, Redis) via constructors.
  - Zero Hidden State: No global variables are used to store config.
*/
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/taibuivan/gukkan/internal/platform/constants"
)

// # Configuration Schema

// Config holds all runtime configuration for the Gukkan web server.
type Config struct {

	// Server settings
	ServerPort  string `env:"SERVER_PORT"  envDefault:"8080"`
	Environment string `env:"ENVIRONMENT"  envDefault:"development"`
	Debug       bool   `env:"DEBUG"        envDefault:"false"`

	// TrustedProxies lists the CIDRs or addresses of reverse proxies whose
	// X-Forwarded-For is believed. Empty trusts no header.
	TrustedProxies []string `env:"TRUSTED_PROXIES" envSeparator:","`

	// Hosted backend (Supabase)
	SupabaseURL       string `env:"SUPABASE_URL,required,notEmpty"`
	SupabaseAnonKey   string `env:"SUPABASE_ANON_KEY,required,notEmpty"`
	SupabaseJWTSecret string `env:"SUPABASE_JWT_SECRET"`

	// BackendTimeout bounds every call to the backend (query, auth, refresh).
	BackendTimeout time.Duration `env:"BACKEND_TIMEOUT" envDefault:"5s"`

	// LibraryBackend selects how library rows are read: "postgrest" or "postgres".
	LibraryBackend string `env:"LIBRARY_BACKEND" envDefault:"postgrest"`

	// Relational Database (PostgreSQL), used by the direct library backend.
	DatabaseURL string `env:"DATABASE_URL"`

	// MigrationPath is the filesystem path to the SQL migrations directory.
	MigrationPath  string `env:"MIGRATION_PATH"   envDefault:"./data/migrations"`
	MigrateOnStart bool   `env:"MIGRATE_ON_START" envDefault:"false"`

	// Key-Value store (Redis) for session revocation. Optional.
	RedisURL string `env:"REDIS_URL"`

	// Login
	PseudoEmailDomain string `env:"PSEUDO_EMAIL_DOMAIN" envDefault:"app.local"`

	// Session cookies
	SessionCookieName string `env:"SESSION_COOKIE_NAME"`
	CookieSecure      bool   `env:"COOKIE_SECURE" envDefault:"true"`
}

// # Configuration Loading

// Load parses environment variables into a [Config] struct.
func Load() (*Config, error) {

	// A missing .env file is the normal case outside development.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("config: failed to read .env file: %w", err)
	}

	// Initialize an empty config struct
	cfg := &Config{}

	// Use the 'env' package to map environment variables to struct fields.
	// This will fail if any field marked with 'required' is missing.
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validate checks the rules that span more than one field.
func (c *Config) validate() error {
	if _, err := url.ParseRequestURI(c.SupabaseURL); err != nil {
		return fmt.Errorf("config: SUPABASE_URL is not a valid URL: %w", err)
	}

	switch c.LibraryBackend {
	case constants.BackendPostgREST:
	case constants.BackendPostgres:
		if c.DatabaseURL == "" {
			return errors.New("config: DATABASE_URL is required when LIBRARY_BACKEND=postgres")
		}
	default:
		return fmt.Errorf("config: unknown LIBRARY_BACKEND %q", c.LibraryBackend)
	}

	if c.BackendTimeout <= 0 {
		return errors.New("config: BACKEND_TIMEOUT must be positive")
	}

	if strings.TrimSpace(c.PseudoEmailDomain) == "" {
		return errors.New("config: PSEUDO_EMAIL_DOMAIN must not be empty")
	}

	return nil
}

// IsProduction reports whether the server is running in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// UsesPostgres reports whether library rows are read through a direct database connection.
func (c *Config) UsesPostgres() bool {
	return c.LibraryBackend == constants.BackendPostgres
}

// CookieName returns the session cookie name.
//
// Without an override it follows the hosted backend's convention
// 'sb-<project-ref>-auth-token', where the project ref is the first label
// of the backend host name.
func (c *Config) CookieName() string {
	if c.SessionCookieName != "" {
		return c.SessionCookieName
	}

	ref := "local"
	if parsed, err := url.Parse(c.SupabaseURL); err == nil && parsed.Hostname() != "" {
		ref = strings.SplitN(parsed.Hostname(), ".", 2)[0]
	}

	return "sb-" + ref + "-auth-token"
}
