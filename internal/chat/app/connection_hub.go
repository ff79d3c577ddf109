package app

import (
	"sync"

	"chat_relay_service/internal/chat/domain"
	"chat_relay_service/pkg/logger"

	"go.uber.org/zap"
)

// Outbound per connection event queue
type Outbound interface {
	ID() string
	// Enqueue must not block; false means the event was dropped
	Enqueue(evt domain.Event) bool
}

// ConnectionHub routes events to the outbound queue of live connections
type ConnectionHub struct {
	mu    sync.RWMutex
	conns map[string]Outbound
}

// NewConnectionHub create an empty hub
func NewConnectionHub() *ConnectionHub {
	return &ConnectionHub{conns: make(map[string]Outbound)}
}

// Register make out reachable by its id
func (h *ConnectionHub) Register(out Outbound) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.conns[out.ID()] = out
}

// Unregister stop routing to connectionID. Once it returns no further Enqueue
// reaches that connection through the hub.
func (h *ConnectionHub) Unregister(connectionID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.conns, connectionID)
}

// Send deliver evt to one connection
func (h *ConnectionHub) Send(connectionID string, evt domain.Event) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out, ok := h.conns[connectionID]
	if !ok {
		return false
	}
	if !out.Enqueue(evt) {
		logger.Log.Warn("outbound queue full, event dropped",
			zap.String("connection_id", connectionID),
			zap.String("event", string(evt.Name)),
		)
		return false
	}
	return true
}

// Broadcast deliver evt to every id and return how many accepted it
func (h *ConnectionHub) Broadcast(connectionIDs []string, evt domain.Event) int {
	delivered := 0
	for _, id := range connectionIDs {
		if h.Send(id, evt) {
			delivered++
		}
	}
	return delivered
}

// Len number of registered connections
func (h *ConnectionHub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}
