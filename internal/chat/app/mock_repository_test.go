package app

import (
	"context"
	"sync"

	"chat_relay_service/internal/chat/domain"

	"github.com/stretchr/testify/mock"
)

// MockMessageRepository Mock MessageRepository
type MockMessageRepository struct {
	mock.Mock
}

// Append mock append
func (m *MockMessageRepository) Append(ctx context.Context, roomID, sender, body string) (domain.Message, error) {
	args := m.Called(ctx, roomID, sender, body)
	return args.Get(0).(domain.Message), args.Error(1)
}

// RecentHistory mock history
func (m *MockMessageRepository) RecentHistory(ctx context.Context, roomID string, limit int) ([]domain.Message, error) {
	args := m.Called(ctx, roomID, limit)
	if args.Get(0) != nil {
		return args.Get(0).([]domain.Message), args.Error(1)
	}
	return nil, args.Error(1)
}

// MockMessagePublisher Mock MessagePublisher
type MockMessagePublisher struct {
	mock.Mock
}

// Publish mock publish
func (m *MockMessagePublisher) Publish(ctx context.Context, msg domain.Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

// Close mock close
func (m *MockMessagePublisher) Close() error {
	return m.Called().Error(0)
}

// recorder Outbound keeping every accepted event
type recorder struct {
	id       string
	mu       sync.Mutex
	events   []domain.Event
	capacity int
	// closed is set once the connection is torn down; any later Enqueue
	// counts as late
	closed bool
	late   int
}

func newRecorder(id string) *recorder {
	return &recorder{id: id, capacity: -1}
}

func (r *recorder) ID() string { return r.id }

func (r *recorder) Enqueue(evt domain.Event) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		r.late++
		return false
	}
	if r.capacity >= 0 && len(r.events) >= r.capacity {
		return false
	}
	r.events = append(r.events, evt)
	return true
}

func (r *recorder) all() []domain.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Event, len(r.events))
	copy(out, r.events)
	return out
}

func (r *recorder) named(name domain.EventName) []domain.Event {
	var out []domain.Event
	for _, e := range r.all() {
		if e.Name == name {
			out = append(out, e)
		}
	}
	return out
}

func (r *recorder) markClosed() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
}

func (r *recorder) lateEnqueues() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.late
}

func (r *recorder) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}
