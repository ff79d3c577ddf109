package repository

import (
	"context"
	"sync"
	"time"

	"chat_relay_service/internal/chat/domain"
)

// MemoryMessageRepository process local MessageRepository, lost on restart
type MemoryMessageRepository struct {
	mu    sync.RWMutex
	rooms map[string][]domain.Message
	now   func() time.Time
}

// NewMemoryMessageRepository create an empty MemoryMessageRepository
func NewMemoryMessageRepository() *MemoryMessageRepository {
	return &MemoryMessageRepository{
		rooms: make(map[string][]domain.Message),
		now:   time.Now,
	}
}

// Append store one message
func (r *MemoryMessageRepository) Append(ctx context.Context, roomID, sender, body string) (domain.Message, error) {
	if err := ctx.Err(); err != nil {
		return domain.Message{}, storageErr("append", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	msg := domain.Message{
		ID:        newMessageID(),
		RoomID:    roomID,
		Sender:    sender,
		Body:      body,
		Timestamp: domain.StorageTime(r.now()),
	}
	r.rooms[roomID] = append(r.rooms[roomID], msg)
	return msg, nil
}

// RecentHistory last limit messages of roomID, oldest first
func (r *MemoryMessageRepository) RecentHistory(ctx context.Context, roomID string, limit int) ([]domain.Message, error) {
	if limit <= 0 {
		return []domain.Message{}, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, storageErr("history", err)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	all := r.rooms[roomID]
	if len(all) > limit {
		all = all[len(all)-limit:]
	}
	out := make([]domain.Message, len(all))
	copy(out, all)
	return out, nil
}

// Count number of messages stored for roomID
func (r *MemoryMessageRepository) Count(roomID string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms[roomID])
}
