package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "local", cfg.AppEnv)
	assert.Equal(t, 10, cfg.BcryptCost)
	assert.Empty(t, cfg.RedisURL)
	assert.Equal(t, 5*time.Minute, cfg.StatsCacheTTL)
	assert.False(t, cfg.IsProduction())
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("DATABASE_URL", "sqlite://warbler.db")
	t.Setenv("BCRYPT_COST", "4")
	t.Setenv("RATE_LIMIT_RPS", "2.5")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "sqlite://warbler.db", cfg.DatabaseURL)
	assert.Equal(t, 4, cfg.BcryptCost)
	assert.InDelta(t, 2.5, cfg.RateLimitRPS, 0.0001)
}

func TestLoad_RejectsDefaultSecretInProduction(t *testing.T) {
	t.Setenv("APP_ENV", "production")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SESSION_SECRET")
}

func TestLoad_RejectsInvalidBcryptCost(t *testing.T) {
	t.Setenv("BCRYPT_COST", "99")

	_, err := Load()
	require.Error(t, err)
}
