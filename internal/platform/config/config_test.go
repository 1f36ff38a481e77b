// Copyright (c) 2026 Gukkan. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/gukkan/internal/platform/config"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("SUPABASE_URL", "https://abcdefgh.supabase.co")
	t.Setenv("SUPABASE_ANON_KEY", "anon-key")
}

/*
TestLoad_Defaults verifies the defaults applied when only the backend is configured.
*/
func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, "postgrest", cfg.LibraryBackend)
	assert.Equal(t, 5*time.Second, cfg.BackendTimeout)
	assert.Equal(t, "app.local", cfg.PseudoEmailDomain)
	assert.True(t, cfg.CookieSecure)
	assert.False(t, cfg.UsesPostgres())
	assert.False(t, cfg.IsProduction())
	assert.Empty(t, cfg.TrustedProxies)
}

/*
TestLoad_Invalid covers the cross-field rules.
*/
func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"postgres_without_dsn", map[string]string{"LIBRARY_BACKEND": "postgres"}},
		{"unknown_backend", map[string]string{"LIBRARY_BACKEND": "mysql"}},
		{"zero_timeout", map[string]string{"BACKEND_TIMEOUT": "0s"}},
		{"relative_url", map[string]string{"SUPABASE_URL": "not a url"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequired(t)
			for key, value := range tt.env {
				t.Setenv(key, value)
			}

			_, err := config.Load()
			assert.Error(t, err)
		})
	}
}

/*
TestLoad_MissingRequired verifies that the backend credentials are mandatory.
*/
func TestLoad_MissingRequired(t *testing.T) {
	t.Setenv("SUPABASE_URL", "")
	t.Setenv("SUPABASE_ANON_KEY", "")

	_, err := config.Load()
	assert.Error(t, err)
}

/*
TestConfig_CookieName checks the derived and overridden session cookie names.
*/
func TestConfig_CookieName(t *testing.T) {
	cfg := &config.Config{SupabaseURL: "https://abcdefgh.supabase.co"}
	assert.Equal(t, "sb-abcdefgh-auth-token", cfg.CookieName())

	cfg.SessionCookieName = "custom"
	assert.Equal(t, "custom", cfg.CookieName())
}

func TestLoad_TrustedProxies(t *testing.T) {
	setRequired(t)
	t.Setenv("TRUSTED_PROXIES", "10.0.0.0/8,192.0.2.10")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"10.0.0.0/8", "192.0.2.10"}, cfg.TrustedProxies)
}
