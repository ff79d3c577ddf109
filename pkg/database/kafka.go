package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	errprocess "chat_relay_service/pkg/err"
	"chat_relay_service/pkg/logger"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// NewKafkaWriterWithRetry dials the brokers until one answers, then returns an
// async writer keyed by hash so one room's messages keep partition order
func NewKafkaWriterWithRetry(ctx context.Context, k KafkaConnection) (*kafka.Writer, error) {
	if len(k.Brokers) == 0 {
		return nil, errprocess.Set("kafka: no brokers configured")
	}

	var err error
	for attempt := 1; attempt <= k.RetryCount+1; attempt++ {
		err = pingBrokers(ctx, k.Brokers)
		if err == nil {
			logger.Log.Info("kafka writer ready", zap.Strings("brokers", k.Brokers), zap.String("topic", k.Topic), zap.Int("attempt", attempt))
			return &kafka.Writer{
				Addr:                   kafka.TCP(k.Brokers...),
				Topic:                  k.Topic,
				Balancer:               &kafka.Hash{},
				Async:                  true,
				AllowAutoTopicCreation: true,
				BatchTimeout:           50 * time.Millisecond,
				Completion: func(messages []kafka.Message, err error) {
					if err != nil {
						logger.Log.Warn("kafka async write failed", zap.Int("messages", len(messages)), zap.Error(err))
					}
				},
			}, nil
		}

		logger.Log.Warn("kafka dial failed", zap.Int("attempt", attempt), zap.Error(err))
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(k.RetryInterval):
		}
	}

	return nil, fmt.Errorf("kafka: brokers unreachable after %d attempts: %w", k.RetryCount+1, err)
}

func pingBrokers(ctx context.Context, brokers []string) error {
	var errs []error
	for _, broker := range brokers {
		dialCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		conn, err := kafka.DialContext(dialCtx, "tcp", broker)
		cancel()
		if err == nil {
			return conn.Close()
		}
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
