package app

import (
	"fmt"

	"chat_relay_service/internal/chat/domain"
)

// PresenceNotifier tells a room's other members about joins and leaves
type PresenceNotifier struct {
	registry *SessionRegistry
	hub      *ConnectionHub
}

// NewPresenceNotifier create a PresenceNotifier
func NewPresenceNotifier(registry *SessionRegistry, hub *ConnectionHub) *PresenceNotifier {
	return &PresenceNotifier{registry: registry, hub: hub}
}

// JoinedEvent user-joined for username
func JoinedEvent(username string) domain.Event {
	return domain.Event{
		Name: domain.UserJoined,
		Data: domain.PresencePayload{
			Username: username,
			Message:  fmt.Sprintf("%s joined the chat", username),
		},
	}
}

// LeftEvent user-left for username
func LeftEvent(username string) domain.Event {
	return domain.Event{
		Name: domain.UserLeft,
		Data: domain.PresencePayload{
			Username: username,
			Message:  fmt.Sprintf("%s left the chat", username),
		},
	}
}

// Joined send user-joined to everyone in s.RoomID except s itself
func (p *PresenceNotifier) Joined(s domain.Session) int {
	return p.hub.Broadcast(p.registry.MembersExcept(s.RoomID, s.ConnectionID), JoinedEvent(s.Username))
}

// Left send user-left to the members still in s.RoomID. s must already be
// removed from the registry.
func (p *PresenceNotifier) Left(s domain.Session) int {
	return p.hub.Broadcast(p.registry.MembersExcept(s.RoomID, s.ConnectionID), LeftEvent(s.Username))
}
