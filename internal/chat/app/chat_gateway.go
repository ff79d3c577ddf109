package app

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"chat_relay_service/internal/chat/domain"
	"chat_relay_service/internal/chat/repository"
	"chat_relay_service/pkg/logger"

	"go.uber.org/zap"
)

// GatewayOptions ChatGateway tuning
type GatewayOptions struct {
	HistoryLimit   int
	PublishTimeout time.Duration
}

// ChatGateway handles the commands of every connection.
// Calls for one connection must be serialized by the caller; calls for
// different connections may run concurrently.
type ChatGateway struct {
	registry  *SessionRegistry
	hub       *ConnectionHub
	presence  *PresenceNotifier
	msgRepo   repository.MessageRepository
	publisher repository.MessagePublisher

	historyLimit   int
	publishTimeout time.Duration
}

// NewChatGateway create a ChatGateway. publisher may be nil.
func NewChatGateway(
	msgRepo repository.MessageRepository,
	publisher repository.MessagePublisher,
	opts GatewayOptions,
) *ChatGateway {
	if opts.HistoryLimit == 0 {
		opts.HistoryLimit = domain.DefaultHistoryLimit
	}
	if opts.PublishTimeout <= 0 {
		opts.PublishTimeout = 2 * time.Second
	}

	registry := NewSessionRegistry()
	hub := NewConnectionHub()
	return &ChatGateway{
		registry:       registry,
		hub:            hub,
		presence:       NewPresenceNotifier(registry, hub),
		msgRepo:        msgRepo,
		publisher:      publisher,
		historyLimit:   opts.HistoryLimit,
		publishTimeout: opts.PublishTimeout,
	}
}

// Registry the gateway's session registry
func (g *ChatGateway) Registry() *SessionRegistry {
	return g.registry
}

// Connect register a new connection in the Connected-Unjoined state
func (g *ChatGateway) Connect(out Outbound) {
	g.hub.Register(out)
	logger.Log.Info("connection opened", zap.String("connection_id", out.ID()))
}

// Dispatch decode one inbound frame, run its command and report failures to
// the sending connection only
func (g *ChatGateway) Dispatch(ctx context.Context, connectionID string, frame []byte) {
	var req domain.WSRequest
	if err := json.Unmarshal(frame, &req); err != nil {
		g.replyError(connectionID, "", fmt.Errorf("%w: malformed frame", domain.ErrBadRequest))
		return
	}

	var err error
	switch req.Event {
	case domain.JoinRoom:
		var payload domain.JoinRoomRequest
		if err = decodePayload(req.Data, &payload); err == nil {
			err = g.Join(ctx, connectionID, payload)
		}
	case domain.SendMessage:
		var payload domain.SendMessageRequest
		if err = decodePayload(req.Data, &payload); err == nil {
			err = g.Send(ctx, connectionID, payload)
		}
	case domain.LeaveRoom:
		err = g.Leave(connectionID)
	default:
		err = fmt.Errorf("%w: unknown event %q", domain.ErrBadRequest, req.Event)
	}

	if err != nil {
		g.replyError(connectionID, req.Event, err)
	}
}

func decodePayload(data json.RawMessage, v interface{}) error {
	if len(data) == 0 {
		return fmt.Errorf("%w: missing data", domain.ErrBadRequest)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrBadRequest, err)
	}
	return nil
}

// Join bind the connection to a room, reply welcome with recent history and
// announce the joiner to the other members. Switching rooms leaves the old
// room silently.
func (g *ChatGateway) Join(ctx context.Context, connectionID string, req domain.JoinRoomRequest) error {
	roomID, username, err := normalizeJoin(req)
	if err != nil {
		return err
	}

	session, previous := g.registry.CreateOrReplace(connectionID, username, roomID)
	if previous != nil && previous.RoomID != roomID {
		logger.Log.Debug("implicit room switch",
			zap.String("connection_id", connectionID),
			zap.String("from", previous.RoomID),
			zap.String("to", roomID),
		)
	}

	history, err := g.msgRepo.RecentHistory(ctx, roomID, g.historyLimit)
	if err != nil {
		logger.Log.Warn("history unavailable, joining with empty history",
			zap.String("room_id", roomID),
			zap.Error(err),
		)
		history = []domain.Message{}
	}

	g.hub.Send(connectionID, domain.Event{
		Name: domain.Welcome,
		Data: domain.WelcomePayload{
			Message:          fmt.Sprintf("Welcome to room: %s", roomID),
			PreviousMessages: history,
			YourID:           connectionID,
		},
	})
	notified := g.presence.Joined(session)

	logger.Log.Info("user joined room",
		zap.String("connection_id", connectionID),
		zap.String("username", username),
		zap.String("room_id", roomID),
		zap.Int("history", len(history)),
		zap.Int("notified", notified),
	)
	return nil
}

// Send persist a message for the connection's room and broadcast it to every
// member, the sender included. Nothing is broadcast when the store fails.
func (g *ChatGateway) Send(ctx context.Context, connectionID string, req domain.SendMessageRequest) error {
	session, ok := g.registry.Lookup(connectionID)
	if !ok {
		return domain.ErrNotJoined
	}
	body, err := normalizeBody(req.Message)
	if err != nil {
		return err
	}
	if req.RoomID != "" && req.RoomID != session.RoomID {
		logger.Log.Debug("send-message room differs from session room",
			zap.String("connection_id", connectionID),
			zap.String("payload_room", req.RoomID),
			zap.String("session_room", session.RoomID),
		)
	}

	msg, err := g.msgRepo.Append(ctx, session.RoomID, session.Username, body)
	if err != nil {
		logger.Log.Error("append message failed",
			zap.String("connection_id", connectionID),
			zap.String("room_id", session.RoomID),
			zap.Error(err),
		)
		return err
	}

	delivered := g.hub.Broadcast(g.registry.MembersOf(session.RoomID), domain.Event{
		Name: domain.ReceiveMessage,
		Data: domain.ReceiveMessagePayload{
			Sender:    msg.Sender,
			Message:   msg.Body,
			Timestamp: msg.Timestamp,
			SenderID:  connectionID,
		},
	})
	logger.Log.Debug("message broadcast",
		zap.String("room_id", session.RoomID),
		zap.String("sender", session.Username),
		zap.Int("delivered", delivered),
	)

	g.publish(ctx, msg)
	return nil
}

func (g *ChatGateway) publish(ctx context.Context, msg domain.Message) {
	if g.publisher == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, g.publishTimeout)
	defer cancel()
	if err := g.publisher.Publish(ctx, msg); err != nil {
		logger.Log.Warn("publish message failed",
			zap.String("message_id", msg.ID),
			zap.String("room_id", msg.RoomID),
			zap.Error(err),
		)
	}
}

// Leave end the connection's session, announce it to the remaining members and
// acknowledge with left-room. The connection stays open and may join again.
func (g *ChatGateway) Leave(connectionID string) error {
	session, ok := g.registry.Remove(connectionID)
	if !ok {
		return domain.ErrNotJoined
	}
	g.presence.Left(session)
	g.hub.Send(connectionID, domain.Event{
		Name: domain.LeftRoom,
		Data: domain.LeftRoomPayload{RoomID: session.RoomID},
	})
	logger.Log.Info("user left room",
		zap.String("connection_id", connectionID),
		zap.String("username", session.Username),
		zap.String("room_id", session.RoomID),
	)
	return nil
}

// Disconnect tear down the connection. Must be called once per connection.
func (g *ChatGateway) Disconnect(connectionID string) {
	if session, ok := g.registry.Remove(connectionID); ok {
		g.presence.Left(session)
		logger.Log.Info("user disconnected",
			zap.String("connection_id", connectionID),
			zap.String("username", session.Username),
			zap.String("room_id", session.RoomID),
		)
	}
	g.hub.Unregister(connectionID)
	logger.Log.Info("connection closed", zap.String("connection_id", connectionID))
}

func (g *ChatGateway) replyError(connectionID string, event domain.EventName, err error) {
	logger.Log.Warn("command rejected",
		zap.String("connection_id", connectionID),
		zap.String("event", string(event)),
		zap.Error(err),
	)
	g.hub.Send(connectionID, domain.Event{
		Name: domain.ChatError,
		Data: domain.ErrorPayload{
			Event:   event,
			Code:    domain.ErrorCode(err),
			Message: domain.ClientMessage(err),
		},
	})
}
