package domain

import (
	"encoding/json"
	"time"
)

// EventName websocket event name
type EventName string

const (
	// JoinRoom client event join-room
	JoinRoom EventName = "join-room"
	// SendMessage client event send-message
	SendMessage EventName = "send-message"
	// LeaveRoom client event leave-room
	LeaveRoom EventName = "leave-room"

	// Welcome server event sent to a joiner
	Welcome EventName = "welcome"
	// UserJoined server event sent to the other room members
	UserJoined EventName = "user-joined"
	// ReceiveMessage server event sent to every room member
	ReceiveMessage EventName = "receive-message"
	// UserLeft server event sent to the remaining room members
	UserLeft EventName = "user-left"
	// LeftRoom server event acknowledging leave-room
	LeftRoom EventName = "left-room"
	// ChatError server event reporting a rejected command
	ChatError EventName = "chat-error"
)

// WSRequest inbound frame
type WSRequest struct {
	Event EventName       `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// Event outbound frame
type Event struct {
	Name EventName   `json:"event"`
	Data interface{} `json:"data"`
}

// JoinRoomRequest join-room payload
type JoinRoomRequest struct {
	RoomID   string `json:"roomId"`
	Username string `json:"username"`
}

// SendMessageRequest send-message payload.
// RoomID and Sender are informational, the session decides both.
type SendMessageRequest struct {
	RoomID  string `json:"roomId"`
	Message string `json:"message"`
	Sender  string `json:"sender"`
}

// WelcomePayload welcome payload
type WelcomePayload struct {
	Message          string    `json:"message"`
	PreviousMessages []Message `json:"previousMessages"`
	YourID           string    `json:"yourId"`
}

// PresencePayload user-joined and user-left payload
type PresencePayload struct {
	Username string `json:"username"`
	Message  string `json:"message"`
}

// ReceiveMessagePayload receive-message payload
type ReceiveMessagePayload struct {
	Sender    string    `json:"sender"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	SenderID  string    `json:"senderId"`
}

// LeftRoomPayload left-room payload
type LeftRoomPayload struct {
	RoomID string `json:"roomId"`
}

// ErrorPayload chat-error payload
type ErrorPayload struct {
	Event   EventName `json:"event,omitempty"`
	Code    string    `json:"code"`
	Message string    `json:"message"`
}
