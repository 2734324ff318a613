package config

import (
	"flag"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func load(t *testing.T, args ...string) (*Config, error) {
	t.Helper()
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	return Load(fs, args)
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	cfg, err := load(t)
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Address)
	assert.Equal(t, "authd.db", cfg.DatabasePath)
	assert.Equal(t, 15*time.Minute, cfg.AccessTokenTTL)
	assert.Equal(t, 168*time.Hour, cfg.RefreshTokenTTL)
	assert.Equal(t, "test-secret", cfg.JWTSecret)
	assert.Empty(t, cfg.AdminSecret)
}

func TestLoad_Env(t *testing.T) {
	t.Setenv("JWT_SECRET", "env-secret")
	t.Setenv("ADMIN_SECRET", "env-admin")
	t.Setenv("AUTHD_ADDRESS", ":9090")
	t.Setenv("AUTHD_DATABASE", "/tmp/test.db")
	t.Setenv("ACCESS_TTL", "5m")
	t.Setenv("REFRESH_TTL", "72h")

	cfg, err := load(t)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Address)
	assert.Equal(t, "/tmp/test.db", cfg.DatabasePath)
	assert.Equal(t, "env-secret", cfg.JWTSecret)
	assert.Equal(t, "env-admin", cfg.AdminSecret)
	assert.Equal(t, 5*time.Minute, cfg.AccessTokenTTL)
	assert.Equal(t, 72*time.Hour, cfg.RefreshTokenTTL)
}

func TestLoad_FlagsOverrideEnv(t *testing.T) {
	t.Setenv("JWT_SECRET", "env-secret")
	t.Setenv("AUTHD_ADDRESS", ":9090")

	cfg, err := load(t, "-a", ":7070", "-s", "flag-secret", "-access-ttl", "1m")
	require.NoError(t, err)

	assert.Equal(t, ":7070", cfg.Address)
	assert.Equal(t, "flag-secret", cfg.JWTSecret)
	assert.Equal(t, time.Minute, cfg.AccessTokenTTL)
}

func TestLoad_MissingSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	_, err := load(t)
	assert.Error(t, err)
}

func TestLoad_InvalidTTL(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("ACCESS_TTL", "not-a-duration")

	_, err := load(t)
	assert.Error(t, err)
}
