package domain

import "time"

const (
	// MinUsernameLength trimmed username lower bound, in characters
	MinUsernameLength = 2
	// MinRoomIDLength trimmed room id lower bound, in characters
	MinRoomIDLength = 3
)

// Session binds a live connection to a display name and a room
type Session struct {
	ConnectionID string
	Username     string
	RoomID       string
	JoinedAt     time.Time
}
