package config

import "time"

// StorageDriver selects the message store backend
type StorageDriver string

const (
	// StorageMongo messages persisted in MongoDB
	StorageMongo StorageDriver = "mongo"
	// StorageMemory messages kept in process memory
	StorageMemory StorageDriver = "memory"
)

// Chat definition chat_service YAML structure
type Chat struct {
	Port            string        `mapstructure:"port"`
	LogPath         string        `mapstructure:"log_path"`
	HistoryLimit    int           `mapstructure:"history_limit"`
	OutboundBuffer  int           `mapstructure:"outbound_buffer"`
	StorageTimeout  time.Duration `mapstructure:"storage_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	PingInterval    time.Duration `mapstructure:"ping_interval"`

	Storage StorageConfig `mapstructure:"storage"`
	MongoDB MongoConfig   `mapstructure:"mongo"`
	Redis   RedisConfig   `mapstructure:"redis"`
	Kafka   KafkaConfig   `mapstructure:"kafka"`
}

// StorageConfig definition message store selection
type StorageConfig struct {
	Driver StorageDriver `mapstructure:"driver"`
}

// MongoConfig definition mongo setting
type MongoConfig struct {
	URI           string        `mapstructure:"uri"`
	Database      string        `mapstructure:"database"`
	RetryCount    int           `mapstructure:"retry_count"`
	RetryInterval time.Duration `mapstructure:"retry_interval"`
}

// RedisConfig definition redis history cache setting.
// Empty Addr and Sentinels disable the cache.
type RedisConfig struct {
	Addr       string        `mapstructure:"addr"`
	MasterName string        `mapstructure:"master_name"`
	Sentinels  []string      `mapstructure:"sentinels"`
	RedisDB    int           `mapstructure:"redis_db"`
	HistoryTTL time.Duration `mapstructure:"history_ttl"`
}

// Enabled report whether a redis endpoint is configured
func (r RedisConfig) Enabled() bool {
	return r.Addr != "" || len(r.Sentinels) > 0
}

// KafkaConfig definition message stream setting.
// Empty Brokers disable publishing.
type KafkaConfig struct {
	Brokers       []string      `mapstructure:"brokers"`
	Topic         string        `mapstructure:"topic"`
	RetryCount    int           `mapstructure:"retry_count"`
	RetryInterval time.Duration `mapstructure:"retry_interval"`
}

// Enabled report whether kafka brokers are configured
func (k KafkaConfig) Enabled() bool {
	return len(k.Brokers) > 0
}
