package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"chat_relay_service/internal/chat/domain"

	"github.com/segmentio/kafka-go"
)

// MessagePublisher streams stored messages to downstream consumers
type MessagePublisher interface {
	Publish(ctx context.Context, msg domain.Message) error
	Close() error
}

// KafkaWriter subset of *kafka.Writer used by the publisher
type KafkaWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type kafkaMessagePublisher struct {
	writer KafkaWriter
}

// NewKafkaMessagePublisher publish messages keyed by room id
func NewKafkaMessagePublisher(w KafkaWriter) MessagePublisher {
	return &kafkaMessagePublisher{writer: w}
}

func (p *kafkaMessagePublisher) Publish(ctx context.Context, msg domain.Message) error {
	value, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}
	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(msg.RoomID),
		Value: value,
		Time:  msg.Timestamp,
		Headers: []kafka.Header{
			{Key: "event", Value: []byte(domain.ReceiveMessage)},
		},
	})
}

func (p *kafkaMessagePublisher) Close() error {
	return p.writer.Close()
}
