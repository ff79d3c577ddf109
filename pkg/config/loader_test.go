package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig("missing_service", t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "3000", cfg.Port)
	assert.Equal(t, 50, cfg.HistoryLimit)
	assert.Equal(t, 64, cfg.OutboundBuffer)
	assert.Equal(t, 5*time.Second, cfg.StorageTimeout)
	assert.Equal(t, StorageMongo, cfg.Storage.Driver)
	assert.Equal(t, "mongodb://localhost:27017", cfg.MongoDB.URI)
	assert.Equal(t, "chatdb", cfg.MongoDB.Database)
	assert.False(t, cfg.Redis.Enabled())
	assert.False(t, cfg.Kafka.Enabled())
	assert.Equal(t, 2, cfg.Kafka.RetryCount)
	assert.Equal(t, 2*time.Second, cfg.Kafka.RetryInterval)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("PORT", "8088")
	t.Setenv("MONGODB_URI", "mongodb://mongo:27017")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")

	cfg, err := LoadConfig("missing_service", t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "8088", cfg.Port)
	assert.Equal(t, "mongodb://mongo:27017", cfg.MongoDB.URI)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.True(t, cfg.Kafka.Enabled())
}

func TestLoadConfig_KafkaRetry(t *testing.T) {
	dir := t.TempDir()
	yaml := `
kafka:
  brokers: ["k1:9092"]
  retry_count: 5
  retry_interval: 500ms
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "chat_kafka.yaml"), []byte(yaml), 0o600))

	cfg, err := LoadConfig("chat_kafka", dir)
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.Kafka.RetryCount)
	assert.Equal(t, 500*time.Millisecond, cfg.Kafka.RetryInterval)
}

func TestLoadConfig_YAMLWithPlaceholders(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("CHAT_TEST_REDIS", "redis:6379")
	yaml := `
port: "4000"
history_limit: 20
storage_timeout: 2s
storage:
  driver: memory
redis:
  addr: ${CHAT_TEST_REDIS}
  history_ttl: 1h
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "chat_test.yaml"), []byte(yaml), 0o600))

	cfg, err := LoadConfig("chat_test", dir)
	require.NoError(t, err)

	assert.Equal(t, "4000", cfg.Port)
	assert.Equal(t, 20, cfg.HistoryLimit)
	assert.Equal(t, 2*time.Second, cfg.StorageTimeout)
	assert.Equal(t, StorageMemory, cfg.Storage.Driver)
	assert.Equal(t, "redis:6379", cfg.Redis.Addr)
	assert.Equal(t, time.Hour, cfg.Redis.HistoryTTL)
	assert.True(t, cfg.Redis.Enabled())
}

func TestLoadConfig_UnknownDriver(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "chat_bad.yaml"), []byte("storage:\n  driver: sqlite\n"), 0o600))

	_, err := LoadConfig("chat_bad", dir)
	assert.Error(t, err)
}

func TestLoadConfig_RejectsNonPositiveHistoryTTL(t *testing.T) {
	dir := t.TempDir()
	yaml := `
redis:
  addr: redis:6379
  history_ttl: 0s
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "chat_ttl.yaml"), []byte(yaml), 0o600))

	_, err := LoadConfig("chat_ttl", dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "history_ttl")
}
