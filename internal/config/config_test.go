package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("KAFKA_BROKERS", "")
	t.Setenv("JWT_ACCESS_TTL", "")

	cfg := Load()
	assert.Equal(t, "3000", cfg.Port)
	assert.Equal(t, 30*time.Minute, cfg.JWT.AccessTTL)
	assert.Empty(t, cfg.KafkaBrokers)
	assert.Equal(t, 10, cfg.LowStockLimit)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")
	t.Setenv("JWT_ACCESS_TTL", "5m")
	t.Setenv("COOKIE_SECURE", "true")
	t.Setenv("LOW_STOCK_LIMIT", "not-a-number")

	cfg := Load()
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, 5*time.Minute, cfg.JWT.AccessTTL)
	assert.True(t, cfg.CookieSecure)
	assert.Equal(t, 10, cfg.LowStockLimit)
}

func TestValidate(t *testing.T) {
	cfg := Config{}
	assert.EqualError(t, cfg.Validate(), "config: JWT_ACCESS_SECRET is required")

	cfg.JWT.AccessSecret = "same"
	assert.EqualError(t, cfg.Validate(), "config: JWT_REFRESH_SECRET is required")

	cfg.JWT.RefreshSecret = "same"
	assert.Error(t, cfg.Validate())

	cfg.JWT.RefreshSecret = "other"
	assert.NoError(t, cfg.Validate())
}
