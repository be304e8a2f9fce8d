package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/budgetly")
	t.Setenv("AUTH0_DOMAIN", "budgetly.eu.auth0.com")
	t.Setenv("AUTH0_AUDIENCE", "https://api.budgetly.app")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.CORSOrigins)
	assert.Equal(t, time.UTC, cfg.Timezone)
	assert.Equal(t, 30*time.Second, cfg.Aggregation.CacheTTL)
	assert.Equal(t, 1024, cfg.Aggregation.CacheSize)
	assert.Equal(t, 8, cfg.Aggregation.Concurrency)
	assert.Equal(t, 120, cfg.RateLimit.RequestsPerMinute)
	assert.True(t, cfg.RunMigrations)
	assert.False(t, cfg.IsProduction())
}

func TestLoad_Overrides(t *testing.T) {
	setRequired(t)
	t.Setenv("PORT", "9090")
	t.Setenv("CORS_ORIGINS", "https://budgetly.app,https://www.budgetly.app")
	t.Setenv("SPEND_CACHE_TTL", "0s")
	t.Setenv("AGGREGATION_CONCURRENCY", "2")
	t.Setenv("RUN_MIGRATIONS", "false")
	t.Setenv("ENV", "production")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, []string{"https://budgetly.app", "https://www.budgetly.app"}, cfg.CORSOrigins)
	assert.Equal(t, time.Duration(0), cfg.Aggregation.CacheTTL)
	assert.Equal(t, 2, cfg.Aggregation.Concurrency)
	assert.False(t, cfg.RunMigrations)
	assert.True(t, cfg.IsProduction())
}

func TestLoad_MissingRequired(t *testing.T) {
	tests := []struct {
		name    string
		unset   string
		wantErr string
	}{
		{"database url", "DATABASE_URL", "DATABASE_URL is required"},
		{"auth0 domain", "AUTH0_DOMAIN", "AUTH0_DOMAIN is required"},
		{"auth0 audience", "AUTH0_AUDIENCE", "AUTH0_AUDIENCE is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequired(t)
			t.Setenv(tt.unset, "")

			_, err := Load()

			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	t.Run("timezone", func(t *testing.T) {
		setRequired(t)
		t.Setenv("APP_TIMEZONE", "Mars/Olympus_Mons")

		_, err := Load()
		assert.ErrorContains(t, err, "APP_TIMEZONE")
	})

	t.Run("cache ttl", func(t *testing.T) {
		setRequired(t)
		t.Setenv("SPEND_CACHE_TTL", "soon")

		_, err := Load()
		assert.ErrorContains(t, err, "SPEND_CACHE_TTL")
	})

	t.Run("concurrency", func(t *testing.T) {
		setRequired(t)
		t.Setenv("AGGREGATION_CONCURRENCY", "0")

		_, err := Load()
		assert.ErrorContains(t, err, "AGGREGATION_CONCURRENCY")
	})
}
