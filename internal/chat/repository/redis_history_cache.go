package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"chat_relay_service/internal/chat/domain"
	"chat_relay_service/pkg/logger"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const (
	historyKeyPrefix = "chat:history:"
	versionKeyPrefix = "chat:history:version:"

	defaultHistoryTTL = 24 * time.Hour
)

// appendScript bumps the room version and, only when the room is already
// cached, adds the message and trims the set to capacity.
// KEYS[1] history set, KEYS[2] version
// ARGV[1] score, ARGV[2] member, ARGV[3] capacity, ARGV[4] ttl in ms
var appendScript = redis.NewScript(`
redis.call('INCR', KEYS[2])
redis.call('PEXPIRE', KEYS[2], ARGV[4])
if redis.call('EXISTS', KEYS[1]) == 1 then
	redis.call('ZADD', KEYS[1], ARGV[1], ARGV[2])
	redis.call('ZREMRANGEBYRANK', KEYS[1], 0, -(tonumber(ARGV[3]) + 1))
	redis.call('PEXPIRE', KEYS[1], ARGV[4])
end
return 1
`)

// redisHistoryCache keeps the newest capacity messages of each room in a redis
// sorted set scored by timestamp, in front of the durable store.
//
// A present set always holds the room's newest min(total, capacity) messages.
// Appends only extend sets that already exist. A miss rebuilds the set from the
// store while watching the room version, and every append bumps that version
// after its store write, so a rebuild that raced an append is discarded.
type redisHistoryCache struct {
	client   *redis.Client
	inner    MessageRepository
	capacity int
	ttl      time.Duration
}

// NewRedisHistoryCache wrap inner with a redis recent history cache.
// Cache failures are logged and fall through to inner. A non positive ttl
// falls back to 24h.
func NewRedisHistoryCache(client *redis.Client, inner MessageRepository, capacity int, ttl time.Duration) MessageRepository {
	if capacity <= 0 {
		capacity = domain.DefaultHistoryLimit
	}
	if ttl <= 0 {
		ttl = defaultHistoryTTL
	}
	return &redisHistoryCache{
		client:   client,
		inner:    inner,
		capacity: capacity,
		ttl:      ttl,
	}
}

func historyKey(roomID string) string {
	return historyKeyPrefix + roomID
}

func versionKey(roomID string) string {
	return versionKeyPrefix + roomID
}

func score(m domain.Message) float64 {
	return float64(m.Timestamp.UnixMilli())
}

func (c *redisHistoryCache) Append(ctx context.Context, roomID, sender, body string) (domain.Message, error) {
	msg, err := c.inner.Append(ctx, roomID, sender, body)
	if err != nil {
		return msg, err
	}

	data, err := json.Marshal(msg)
	if err != nil {
		logger.Log.Warn("history cache marshal failed", zap.String("room_id", roomID), zap.Error(err))
		c.invalidate(ctx, roomID)
		return msg, nil
	}

	keys := []string{historyKey(roomID), versionKey(roomID)}
	if err := appendScript.Run(ctx, c.client, keys, score(msg), data, c.capacity, c.ttl.Milliseconds()).Err(); err != nil {
		logger.Log.Warn("history cache append failed, dropping room entry", zap.String("room_id", roomID), zap.Error(err))
		c.invalidate(ctx, roomID)
	}
	return msg, nil
}

// invalidate drop the cached set and bump the version so an in flight rebuild
// is discarded too
func (c *redisHistoryCache) invalidate(ctx context.Context, roomID string) {
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, versionKey(roomID))
		pipe.Del(ctx, historyKey(roomID))
		return nil
	})
	if err != nil {
		logger.Log.Error("history cache invalidate failed", zap.String("room_id", roomID), zap.Error(err))
	}
}

func (c *redisHistoryCache) RecentHistory(ctx context.Context, roomID string, limit int) ([]domain.Message, error) {
	if limit <= 0 {
		return []domain.Message{}, nil
	}
	if limit > c.capacity {
		return c.inner.RecentHistory(ctx, roomID, limit)
	}

	raw, err := c.client.ZRange(ctx, historyKey(roomID), int64(-limit), -1).Result()
	if err != nil {
		logger.Log.Warn("history cache read failed", zap.String("room_id", roomID), zap.Error(err))
		return c.inner.RecentHistory(ctx, roomID, limit)
	}
	if len(raw) > 0 {
		messages, err := decodeMessages(raw)
		if err == nil {
			return messages, nil
		}
		logger.Log.Warn("history cache decode failed", zap.String("room_id", roomID), zap.Error(err))
	}

	messages, err := c.load(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if len(messages) > limit {
		messages = messages[len(messages)-limit:]
	}
	return messages, nil
}

// load read the newest capacity messages from the store and cache them unless
// the room version moved during the read
func (c *redisHistoryCache) load(ctx context.Context, roomID string) ([]domain.Message, error) {
	var (
		messages []domain.Message
		storeErr error
		loaded   bool
	)
	key := historyKey(roomID)

	err := c.client.Watch(ctx, func(tx *redis.Tx) error {
		messages, storeErr = c.inner.RecentHistory(ctx, roomID, c.capacity)
		loaded = true
		if storeErr != nil {
			return storeErr
		}

		members := make([]*redis.Z, 0, len(messages))
		for _, m := range messages {
			data, err := json.Marshal(m)
			if err != nil {
				return err
			}
			members = append(members, &redis.Z{Score: score(m), Member: data})
		}

		_, err := tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Del(ctx, key)
			if len(members) > 0 {
				pipe.ZAdd(ctx, key, members...)
				pipe.PExpire(ctx, key, c.ttl)
			}
			return nil
		})
		return err
	}, versionKey(roomID))

	switch {
	case storeErr != nil:
		return nil, storeErr
	case !loaded:
		logger.Log.Warn("history cache watch failed", zap.String("room_id", roomID), zap.Error(err))
		return c.inner.RecentHistory(ctx, roomID, c.capacity)
	case errors.Is(err, redis.TxFailedErr):
		logger.Log.Debug("history cache fill raced an append, not cached", zap.String("room_id", roomID))
	case err != nil:
		logger.Log.Warn("history cache fill failed", zap.String("room_id", roomID), zap.Error(err))
	}
	return messages, nil
}

func decodeMessages(raw []string) ([]domain.Message, error) {
	messages := make([]domain.Message, 0, len(raw))
	for _, item := range raw {
		var m domain.Message
		if err := json.Unmarshal([]byte(item), &m); err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	return messages, nil
}
