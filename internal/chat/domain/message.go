package domain

import "time"

// Message one persisted chat line. Immutable once stored.
type Message struct {
	ID        string    `bson:"_id" json:"_id"`
	RoomID    string    `bson:"roomId" json:"roomId"`
	Sender    string    `bson:"sender" json:"sender"`
	Body      string    `bson:"message" json:"message"`
	Timestamp time.Time `bson:"timestamp" json:"timestamp"`
}

// DefaultHistoryLimit number of messages replayed on join
const DefaultHistoryLimit = 50

// StorageTime normalises t to what the store keeps, so the broadcast value
// equals the persisted one
func StorageTime(t time.Time) time.Time {
	return t.UTC().Truncate(time.Millisecond)
}
