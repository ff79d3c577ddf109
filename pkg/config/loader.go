package config

import (
	"bytes"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// DefaultServiceName config file base name and log service field
const DefaultServiceName = "chat_service"

// EnvInfo process settings from .env
type EnvInfo struct {
	Env         string
	ServiceName string
	YAMLPath    string
	LogPath     string
}

var (
	envConfig EnvInfo
	once      sync.Once
)

// LoadEnv reads .env once (searched up to 5 parent directories) and returns the
// process settings. A missing .env is not an error.
func LoadEnv() EnvInfo {
	once.Do(func() {
		path, err := GetPath(".env", 5)
		if err == nil {
			if err := godotenv.Load(path); err != nil {
				log.Printf("Warning: Could not load .env file: %v", err)
			}
		}

		envConfig = EnvInfo{
			Env:         os.Getenv("ENV"),
			ServiceName: getenvDefault("CHAT_SERVICE", DefaultServiceName),
			YAMLPath:    os.Getenv("CHAT_SERVICE_YAML"),
			LogPath:     os.Getenv("CHAT_SERVICE_LOG"),
		}
	})
	return envConfig
}

// IsProduction check run env
func (e EnvInfo) IsProduction() bool {
	return e.Env == "production"
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "3000")
	v.SetDefault("history_limit", 50)
	v.SetDefault("outbound_buffer", 64)
	v.SetDefault("storage_timeout", 5*time.Second)
	v.SetDefault("shutdown_timeout", 10*time.Second)
	v.SetDefault("ping_interval", 30*time.Second)

	v.SetDefault("storage.driver", string(StorageMongo))

	v.SetDefault("mongo.uri", "mongodb://localhost:27017")
	v.SetDefault("mongo.database", "chatdb")
	v.SetDefault("mongo.retry_count", 3)
	v.SetDefault("mongo.retry_interval", 2*time.Second)

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.sentinels", []string{})
	v.SetDefault("redis.master_name", "mymaster")
	v.SetDefault("redis.redis_db", 0)
	v.SetDefault("redis.history_ttl", 24*time.Hour)

	v.SetDefault("kafka.brokers", []string{})
	v.SetDefault("kafka.topic", "chat.messages")
	v.SetDefault("kafka.retry_count", 2)
	v.SetDefault("kafka.retry_interval", 2*time.Second)
}

// LoadConfig reads <serviceName>.yaml from configPath, expands ${VAR}
// placeholders, and overlays environment variables. PORT and MONGODB_URI are
// honoured directly. A missing config file leaves the defaults in place.
func LoadConfig(serviceName string, configPath string) (Chat, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName(serviceName)
	v.SetConfigType("yaml")
	if configPath != "" {
		v.AddConfigPath(configPath)
	}
	v.AddConfigPath(".")

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	if err := v.BindEnv("port", "PORT"); err != nil {
		return Chat{}, err
	}
	if err := v.BindEnv("mongo.uri", "MONGODB_URI", "MONGO_URI"); err != nil {
		return Chat{}, err
	}

	var cfg Chat
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return cfg, fmt.Errorf("load config file: %w", err)
		}
	} else {
		rawConfig, err := os.ReadFile(v.ConfigFileUsed())
		if err != nil {
			return cfg, fmt.Errorf("read raw config file: %w", err)
		}
		expanded := os.ExpandEnv(string(rawConfig))
		if err := v.ReadConfig(bytes.NewBufferString(expanded)); err != nil {
			return cfg, fmt.Errorf("read expanded config: %w", err)
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c Chat) validate() error {
	switch c.Storage.Driver {
	case StorageMongo, StorageMemory:
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	if c.OutboundBuffer <= 0 {
		return errors.New("outbound_buffer must be positive")
	}
	if c.StorageTimeout <= 0 {
		return errors.New("storage_timeout must be positive")
	}
	if c.Redis.Enabled() && c.Redis.HistoryTTL <= 0 {
		return errors.New("redis.history_ttl must be positive")
	}
	if c.Kafka.Enabled() && c.Kafka.RetryCount < 0 {
		return errors.New("kafka.retry_count must not be negative")
	}
	return nil
}

// GetPath use fileName loop maxCount find file path
func GetPath(fileName string, maxCount int) (string, error) {
	path := "./" + fileName

	for i := 0; i < maxCount; i++ {
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
		path = "../" + path
	}
	return "", errors.New(fileName + " can't find path")
}
