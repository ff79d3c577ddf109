package repository

import (
	"context"
	"fmt"
	"time"

	"chat_relay_service/internal/chat/domain"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MessagesCollection mongo collection holding chat messages
const MessagesCollection = "messages"

// MessageRepository append only room message log
type MessageRepository interface {
	// Append stamps and stores one message, returning the stored record
	Append(ctx context.Context, roomID, sender, body string) (domain.Message, error)
	// RecentHistory returns up to limit newest messages of roomID, oldest first
	RecentHistory(ctx context.Context, roomID string, limit int) ([]domain.Message, error)
}

type mongoMessageRepository struct {
	coll    *mongo.Collection
	timeout time.Duration
	now     func() time.Time
}

// NewMongoMessageRepository create a MessageRepository on db.messages.
// Every call runs under timeout.
func NewMongoMessageRepository(db *mongo.Database, timeout time.Duration) MessageRepository {
	return &mongoMessageRepository{
		coll:    db.Collection(MessagesCollection),
		timeout: timeout,
		now:     time.Now,
	}
}

// EnsureMessageIndexes create the {roomId, timestamp} index history reads use
func EnsureMessageIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(MessagesCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "roomId", Value: 1}, {Key: "timestamp", Value: -1}},
		Options: options.Index().SetName("room_timestamp"),
	})
	return err
}

func (r *mongoMessageRepository) Append(ctx context.Context, roomID, sender, body string) (domain.Message, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	msg := domain.Message{
		ID:        newMessageID(),
		RoomID:    roomID,
		Sender:    sender,
		Body:      body,
		Timestamp: domain.StorageTime(r.now()),
	}
	if _, err := r.coll.InsertOne(ctx, msg); err != nil {
		return domain.Message{}, storageErr("insert message", err)
	}
	return msg, nil
}

func (r *mongoMessageRepository) RecentHistory(ctx context.Context, roomID string, limit int) ([]domain.Message, error) {
	if limit <= 0 {
		return []domain.Message{}, nil
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	// newest first with a limit, reversed below
	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}, {Key: "_id", Value: -1}}).
		SetLimit(int64(limit))
	cur, err := r.coll.Find(ctx, bson.M{"roomId": roomID}, opts)
	if err != nil {
		return nil, storageErr("find history", err)
	}

	messages := make([]domain.Message, 0, limit)
	if err := cur.All(ctx, &messages); err != nil {
		return nil, storageErr("decode history", err)
	}
	reverse(messages)
	return messages, nil
}

// newMessageID time ordered id, so messages sharing a millisecond still sort
// in append order by _id
func newMessageID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}

func storageErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", domain.ErrStorageUnavailable, op, err)
}

func reverse(messages []domain.Message) {
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
}
