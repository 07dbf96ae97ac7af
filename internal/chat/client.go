package chat

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/umar/nexttalk-dash/internal/auth"
	"github.com/umar/nexttalk-dash/internal/models"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 54 * time.Second
	maxMessageSize = 4096
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Client is one live connection. It receives events of every room until it
// narrows its subscription with room.join.
type Client struct {
	hub      *Hub
	conn     *websocket.Conn
	UserID   string
	Username string
	rooms    map[string]bool
	send     chan []byte
	mu       sync.Mutex
}

func ServeWS(hub *Hub, jwtSecret string, fallback models.User) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		viewer := fallback
		if token := r.URL.Query().Get("token"); token != "" {
			claims, err := auth.ValidateToken(token, jwtSecret)
			if err != nil {
				http.Error(w, "invalid token", http.StatusUnauthorized)
				return
			}
			viewer = models.User{ID: claims.UserID, Username: claims.Username}
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			slog.Error("websocket upgrade failed", "error", err)
			return
		}

		client := &Client{
			hub:      hub,
			conn:     conn,
			UserID:   viewer.ID,
			Username: viewer.Username,
			send:     make(chan []byte, 256),
		}

		select {
		case hub.register <- client:
		case <-hub.done:
			conn.Close()
			return
		}
		go client.writePump()
		go client.readPump()
	}
}

func (c *Client) subscribed(roomID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rooms == nil || c.rooms[roomID]
}

func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.Error("ws read error", "error", err, "user_id", c.UserID)
			}
			break
		}

		var msg WSMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			continue
		}

		c.handleMessage(msg)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) handleMessage(msg WSMessage) {
	switch msg.Type {
	case TypeRoomJoin, TypeRoomLeave:
		var payload RoomPayload
		if err := json.Unmarshal(msg.Payload, &payload); err != nil || payload.RoomID == "" {
			c.sendError("room_id is required", "INVALID_PAYLOAD")
			return
		}
		c.mu.Lock()
		if c.rooms == nil {
			c.rooms = make(map[string]bool)
		}
		if msg.Type == TypeRoomJoin {
			c.rooms[payload.RoomID] = true
		} else {
			delete(c.rooms, payload.RoomID)
		}
		c.mu.Unlock()
	case TypePing:
		data, _ := NewWSMessage(TypePong, nil)
		c.trySend(data)
	}
}

// trySend never blocks; the hub may already have closed send.
func (c *Client) trySend(data []byte) {
	defer func() { _ = recover() }()
	select {
	case c.send <- data:
	default:
	}
}

func (c *Client) sendError(message, code string) {
	data, _ := NewWSMessage(TypeError, ErrorPayload{
		Message: message,
		Code:    code,
	})
	c.trySend(data)
}
