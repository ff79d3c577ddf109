package app

import (
	"sync"
	"time"

	"chat_relay_service/internal/chat/domain"
)

// SessionRegistry owns every live Session and the RoomDirectory derived from
// them. Both structures change under one lock so readers never see them
// disagree.
type SessionRegistry struct {
	mu       sync.RWMutex
	sessions map[string]domain.Session
	rooms    *RoomDirectory
	now      func() time.Time
}

// NewSessionRegistry create an empty registry
func NewSessionRegistry() *SessionRegistry {
	return &SessionRegistry{
		sessions: make(map[string]domain.Session),
		rooms:    NewRoomDirectory(),
		now:      time.Now,
	}
}

// CreateOrReplace bind connectionID to username in roomID. An existing session
// is overwritten and, when its room differs, removed from the old room. The
// previous session is returned when there was one.
func (r *SessionRegistry) CreateOrReplace(connectionID, username, roomID string) (domain.Session, *domain.Session) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var previous *domain.Session
	if old, ok := r.sessions[connectionID]; ok {
		previous = &old
		if old.RoomID != roomID {
			r.rooms.Remove(old.RoomID, connectionID)
		}
	}

	session := domain.Session{
		ConnectionID: connectionID,
		Username:     username,
		RoomID:       roomID,
		JoinedAt:     r.now(),
	}
	r.sessions[connectionID] = session
	r.rooms.Add(roomID, connectionID)
	return session, previous
}

// Lookup session of connectionID
func (r *SessionRegistry) Lookup(connectionID string) (domain.Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[connectionID]
	return s, ok
}

// Remove delete the session of connectionID and its room entry, returning the
// removed session
func (r *SessionRegistry) Remove(connectionID string) (domain.Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[connectionID]
	if !ok {
		return domain.Session{}, false
	}
	delete(r.sessions, connectionID)
	r.rooms.Remove(s.RoomID, connectionID)
	return s, true
}

// MembersOf connection ids currently in roomID
func (r *SessionRegistry) MembersOf(roomID string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.rooms.MembersOf(roomID)
}

// MembersExcept connection ids currently in roomID other than connectionID
func (r *SessionRegistry) MembersExcept(roomID, connectionID string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	members := r.rooms.MembersOf(roomID)
	out := members[:0]
	for _, id := range members {
		if id != connectionID {
			out = append(out, id)
		}
	}
	return out
}

// Stats number of sessions and non empty rooms
func (r *SessionRegistry) Stats() (sessions, rooms int) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions), r.rooms.RoomCount()
}
