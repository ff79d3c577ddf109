package database

import (
	"context"
	"time"

	errprocess "chat_relay_service/pkg/err"

	"github.com/go-redis/redis/v8"
)

// NewRedisClient builds a sentinel failover client when sentinels are set,
// a single node client otherwise, and pings it
func NewRedisClient(ctx context.Context, c RedisConnection) (*redis.Client, error) {
	var rdb *redis.Client
	if len(c.Sentinels) > 0 {
		rdb = redis.NewFailoverClient(&redis.FailoverOptions{
			MasterName:    c.MasterName,
			SentinelAddrs: c.Sentinels,
			DB:            c.DB,
		})
	} else {
		rdb = redis.NewClient(&redis.Options{
			Addr: c.Addr,
			DB:   c.DB,
		})
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, errprocess.Wrap("failed to connect to redis", err)
	}

	return rdb, nil
}
