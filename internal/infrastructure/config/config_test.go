package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "auctionhouse-backend", cfg.App.Name)
	assert.Equal(t, "development", cfg.App.Env)
	assert.Equal(t, "8080", cfg.App.Port)
	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, 15*time.Minute, cfg.JWT.AccessTokenExpiration)
	assert.Equal(t, 30*time.Second, cfg.Clock.SweepInterval)
	assert.Equal(t, "stub", cfg.Storage.Provider)
	assert.False(t, cfg.IsProduction())
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("AUCTION_DATABASE_HOST", "db.internal")
	t.Setenv("AUCTION_APP_PORT", "9090")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, "9090", cfg.App.Port)
}

func TestValidate(t *testing.T) {
	t.Run("production requires jwt secret", func(t *testing.T) {
		cfg := &Config{}
		applyDefaults(cfg)
		cfg.App.Env = "production"
		require.Error(t, cfg.validate())

		cfg.JWT.Secret = "super-secret"
		require.NoError(t, cfg.validate())
	})

	t.Run("sampling ratio bounds", func(t *testing.T) {
		cfg := &Config{}
		applyDefaults(cfg)
		cfg.Telemetry.SamplingRatio = 1.5
		require.Error(t, cfg.validate())
	})

	t.Run("storage provider whitelist", func(t *testing.T) {
		cfg := &Config{}
		applyDefaults(cfg)
		cfg.Storage.Provider = "gcs"
		require.Error(t, cfg.validate())
	})
}

func TestDSN(t *testing.T) {
	c := DatabaseConfig{Host: "h", Port: 5433, User: "u", Password: "p", DBName: "d", SSLMode: "disable"}
	assert.Equal(t, "host=h port=5433 user=u password=p dbname=d sslmode=disable", c.DSN())
}

func TestRedisAddr(t *testing.T) {
	c := RedisConfig{Host: "r", Port: 6380}
	assert.Equal(t, "r:6380", c.Addr())
}
