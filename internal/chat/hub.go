package chat

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

const presenceRefreshPeriod = 60 * time.Second

type BroadcastMessage struct {
	RoomID string
	Data   []byte
}

// Presence records which users hold a live connection. The Redis
// implementation shares it across server instances.
type Presence interface {
	SetOnline(ctx context.Context, userID string) error
	SetOffline(ctx context.Context, userID string) error
	OnlineUserIDs(ctx context.Context) ([]string, error)
}

type presenceRefresher interface {
	Refresh(ctx context.Context, userID string) error
}

type Hub struct {
	clients map[*Client]bool
	mu      sync.RWMutex

	register   chan *Client
	unregister chan *Client
	broadcast  chan *BroadcastMessage
	done       chan struct{}

	presence Presence
}

func NewHub(presence Presence) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *BroadcastMessage, 256),
		done:       make(chan struct{}),
		presence:   presence,
	}
}

func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	refresh := time.NewTicker(presenceRefreshPeriod)
	defer refresh.Stop()

	for {
		select {
		case <-refresh.C:
			h.refreshPresence(ctx)

		case <-ctx.Done():
			h.mu.Lock()
			for client := range h.clients {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			slog.Info("client connected", "user_id", client.UserID)
			if h.presence != nil {
				if err := h.presence.SetOnline(ctx, client.UserID); err != nil {
					slog.Warn("failed to record presence", "error", err, "user_id", client.UserID)
				}
			}
			h.broadcastPresence(client.UserID, client.Username, "online")

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			stillOnline := h.hasUserLocked(client.UserID)
			h.mu.Unlock()
			slog.Info("client disconnected", "user_id", client.UserID)
			if stillOnline {
				continue
			}
			if h.presence != nil {
				if err := h.presence.SetOffline(ctx, client.UserID); err != nil {
					slog.Warn("failed to clear presence", "error", err, "user_id", client.UserID)
				}
			}
			h.broadcastPresence(client.UserID, client.Username, "offline")

		case msg := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients {
				if !client.subscribed(msg.RoomID) {
					continue
				}
				select {
				case client.send <- msg.Data:
				default:
					delete(h.clients, client)
					close(client.send)
				}
			}
			h.mu.Unlock()
		}
	}
}

func (h *Hub) refreshPresence(ctx context.Context) {
	r, ok := h.presence.(presenceRefresher)
	if !ok {
		return
	}
	h.mu.RLock()
	connected := make([]string, 0, len(h.clients))
	for client := range h.clients {
		connected = append(connected, client.UserID)
	}
	h.mu.RUnlock()
	for _, id := range connected {
		if err := r.Refresh(ctx, id); err != nil {
			slog.Warn("failed to refresh presence", "error", err, "user_id", id)
		}
	}
}

func (h *Hub) hasUserLocked(userID string) bool {
	for client := range h.clients {
		if client.UserID == userID {
			return true
		}
	}
	return false
}

func (h *Hub) broadcastPresence(userID, username, status string) {
	data, err := NewWSMessage(TypePresenceUpdate, PresenceUpdatePayload{
		UserID:   userID,
		Username: username,
		Status:   status,
	})
	if err != nil {
		return
	}
	h.mu.RLock()
	for client := range h.clients {
		select {
		case client.send <- data:
		default:
		}
	}
	h.mu.RUnlock()
}

// BroadcastToRoom queues data for every client subscribed to roomID. It
// drops the event once the hub has stopped.
func (h *Hub) BroadcastToRoom(roomID string, data []byte) {
	select {
	case h.broadcast <- &BroadcastMessage{RoomID: roomID, Data: data}:
	case <-h.done:
	}
}

// PublishRoomEvent lets the hub act as the Publisher of a single-instance
// deployment.
func (h *Hub) PublishRoomEvent(_ context.Context, roomID string, data []byte) error {
	h.BroadcastToRoom(roomID, data)
	return nil
}

func (h *Hub) OnlineUserIDs(ctx context.Context) ([]string, error) {
	if h.presence != nil {
		return h.presence.OnlineUserIDs(ctx)
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	seen := make(map[string]bool, len(h.clients))
	ids := make([]string, 0, len(h.clients))
	for client := range h.clients {
		if !seen[client.UserID] {
			seen[client.UserID] = true
			ids = append(ids, client.UserID)
		}
	}
	return ids, nil
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
