package app

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"chat_relay_service/internal/chat/domain"
	"chat_relay_service/pkg/logger"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	maxMessageSize = 64 * 1024
)

// HandlerOptions websocket transport tuning
type HandlerOptions struct {
	OutboundBuffer int
	PingInterval   time.Duration
}

// ChatWebsocketHandler adapts websocket connections to the ChatGateway
type ChatWebsocketHandler struct {
	gateway        *ChatGateway
	outboundBuffer int
	pingInterval   time.Duration
}

// NewChatWebsocketHandler create ChatWebsocketHandler
func NewChatWebsocketHandler(gateway *ChatGateway, opts HandlerOptions) *ChatWebsocketHandler {
	if opts.OutboundBuffer <= 0 {
		opts.OutboundBuffer = 64
	}
	if opts.PingInterval <= 0 {
		opts.PingInterval = 30 * time.Second
	}
	return &ChatWebsocketHandler{
		gateway:        gateway,
		outboundBuffer: opts.OutboundBuffer,
		pingInterval:   opts.PingInterval,
	}
}

// wsClient bounded outbound queue drained by a single write pump
type wsClient struct {
	id     string
	conn   *websocket.Conn
	send   chan domain.Event
	mu     sync.Mutex
	closed bool
}

func newWSClient(conn *websocket.Conn, buffer int) *wsClient {
	return &wsClient{
		id:   uuid.New().String(),
		conn: conn,
		send: make(chan domain.Event, buffer),
	}
}

func (c *wsClient) ID() string {
	return c.id
}

func (c *wsClient) Enqueue(evt domain.Event) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- evt:
		return true
	default:
		return false
	}
}

func (c *wsClient) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

// writePump is the only writer of conn. It returns when send is closed or a
// write fails.
func (c *wsClient) writePump(pingInterval time.Duration, done chan<- struct{}) {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		close(done)
	}()

	for {
		select {
		case evt, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			b, err := json.Marshal(evt)
			if err != nil {
				logger.Log.Error("marshal event failed", zap.String("connection_id", c.id), zap.String("event", string(evt.Name)), zap.Error(err))
				continue
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, b); err != nil {
				logger.Log.Warn("websocket write failed", zap.String("connection_id", c.id), zap.Error(err))
				_ = c.conn.Close()
				return
			}
		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				logger.Log.Warn("websocket ping failed", zap.String("connection_id", c.id), zap.Error(err))
				_ = c.conn.Close()
				return
			}
		}
	}
}

// HandleConnection serves one websocket until the peer goes away. Commands of
// the connection run one at a time on this goroutine.
func (h *ChatWebsocketHandler) HandleConnection(ctx context.Context, conn *websocket.Conn) {
	client := newWSClient(conn, h.outboundBuffer)
	pongWait := h.pingInterval * 2

	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	h.gateway.Connect(client)
	done := make(chan struct{})
	go client.writePump(h.pingInterval, done)

	defer func() {
		h.gateway.Disconnect(client.id)
		client.close()
		// the fiber conn is released once this handler returns
		<-done
		_ = conn.Close()
	}()

	for {
		mt, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseNormalClosure,
				websocket.CloseGoingAway,
				websocket.CloseNoStatusReceived,
			) {
				logger.Log.Warn("websocket read error", zap.String("connection_id", client.id), zap.Error(err))
			}
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))

		if mt != websocket.TextMessage {
			h.gateway.replyError(client.id, "", domain.ErrBadRequest)
			continue
		}
		h.gateway.Dispatch(ctx, client.id, message)
	}
}
