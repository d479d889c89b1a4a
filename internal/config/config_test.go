package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"APP_ENV", "PORT", "DB_MAX_CONNS", "REDIS_URL", "KAFKA_BROKERS", "CACHE_TTL", "MIGRATE_ON_START"} {
		t.Setenv(k, "")
	}
	cfg := Load()

	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, "8081", cfg.Port)
	assert.Equal(t, int32(10), cfg.DBMaxConns)
	assert.Empty(t, cfg.RedisURL)
	assert.Empty(t, cfg.KafkaBrokers)
	assert.Equal(t, 5*time.Minute, cfg.CacheTTL)
	assert.False(t, cfg.MigrateOnStart)
	assert.False(t, cfg.IsProduction())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("DB_MAX_CONNS", "25")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,,")
	t.Setenv("CACHE_TTL", "90s")
	t.Setenv("RATE_LIMIT_RPS", "2.5")
	t.Setenv("MIGRATE_ON_START", "true")
	cfg := Load()

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, int32(25), cfg.DBMaxConns)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, 90*time.Second, cfg.CacheTTL)
	assert.Equal(t, 2.5, cfg.RateLimitRPS)
	assert.True(t, cfg.MigrateOnStart)
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("DB_MAX_CONNS", "lots")
	t.Setenv("CACHE_TTL", "-1m")
	t.Setenv("RATE_LIMIT_BURST", "-3")
	t.Setenv("REQUEST_TIMEOUT", "soon")
	t.Setenv("MIGRATE_ON_START", "maybe")
	cfg := Load()

	assert.Equal(t, int32(10), cfg.DBMaxConns)
	assert.Equal(t, 5*time.Minute, cfg.CacheTTL)
	assert.Equal(t, 10, cfg.RateLimitBurst)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout)
	assert.False(t, cfg.MigrateOnStart)
}
