package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/graciacafe/cafe-orders/internal/config"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"HTTP_ADDR", "POSTGRES_DSN", "REDIS_ADDR", "KAFKA_BROKERS",
		"JWT_SECRET", "SERVICE_NAME", "NOTIFIER_GROUP", "NOTIFIER_WORKERS",
	} {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg := config.Load()
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, []string{"kafka:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "cafe-notifier", cfg.NotifierGroup)
	assert.Equal(t, 4, cfg.NotifierWorkers)
}

func TestLoad_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092")
	t.Setenv("NOTIFIER_GROUP", "notifier-staging")
	t.Setenv("NOTIFIER_WORKERS", "8")

	cfg := config.Load()
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "notifier-staging", cfg.NotifierGroup)
	assert.Equal(t, 8, cfg.NotifierWorkers)
}

func TestLoad_WorkersFallsBackOnBadValue(t *testing.T) {
	clearEnv(t)

	for _, bad := range []string{"abc", "-2", "0"} {
		t.Setenv("NOTIFIER_WORKERS", bad)
		assert.Equal(t, 4, config.Load().NotifierWorkers, "value %q", bad)
	}
}
