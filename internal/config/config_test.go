package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/nikolayk812/orderflow/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Address)
	assert.Equal(t, config.DriverPostgres, cfg.Database.Driver)
	assert.Equal(t, 72*time.Hour, cfg.AutoComplete.After)
	assert.Equal(t, "orderflow:notifications", cfg.Redis.Channel)
	assert.Empty(t, cfg.Kafka.Brokers)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "orderflow.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
database:
  driver: memory
auto_complete:
  after: 48h
  interval: 10m
kafka:
  brokers: ["kafka-1:9092", "kafka-2:9092"]
log:
  level: debug
`), 0o600))

	t.Setenv("ORDERFLOW_LOG_LEVEL", "warn")
	t.Setenv("ORDERFLOW_SERVER_ADDRESS", ":9090")

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, config.DriverMemory, cfg.Database.Driver)
	assert.Equal(t, 48*time.Hour, cfg.AutoComplete.After)
	assert.Equal(t, 10*time.Minute, cfg.AutoComplete.Interval)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, ":9090", cfg.Server.Address)
}

func TestLoadRejectsUnknownDriver(t *testing.T) {
	t.Setenv("ORDERFLOW_DATABASE_DRIVER", "mysql")

	_, err := config.Load("")
	require.EqualError(t, err, `validate config: unknown database.driver "mysql"`)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}
