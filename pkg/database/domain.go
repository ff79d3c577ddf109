package database

import (
	"time"

	"go.mongodb.org/mongo-driver/mongo"
)

// Connection definition mongo connect setting
type Connection struct {
	ConnectStr string

	RetryCount    int
	RetryInterval time.Duration
}

// MongoDB definition mongo db
type MongoDB struct {
	Client   *mongo.Client
	Database *mongo.Database
}

// RedisConnection definition redis setting.
// Sentinels take precedence over Addr.
type RedisConnection struct {
	Addr       string
	MasterName string
	Sentinels  []string
	DB         int
}

// KafkaConnection definition kafka
type KafkaConnection struct {
	Brokers       []string
	Topic         string
	RetryCount    int
	RetryInterval time.Duration
}
