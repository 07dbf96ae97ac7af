package chat

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
	"github.com/umar/nexttalk-dash/internal/auth"
	"github.com/umar/nexttalk-dash/internal/models"
)

const testSecret = "secret"

func startHub(t *testing.T) (*Hub, string) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	hub := NewHub(nil)
	go hub.Run(ctx)
	srv := httptest.NewServer(ServeWS(hub, testSecret, models.User{ID: "current_user", Username: "You"}))
	t.Cleanup(func() {
		cancel()
		srv.Close()
	})
	return hub, "ws" + strings.TrimPrefix(srv.URL, "http")
}

// next reads the next event that is not a presence update.
func next(t *testing.T, conn *websocket.Conn) WSMessage {
	t.Helper()
	for {
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
		_, data, err := conn.ReadMessage()
		require.NoError(t, err)
		var msg WSMessage
		require.NoError(t, json.Unmarshal(data, &msg))
		if msg.Type != TypePresenceUpdate {
			return msg
		}
	}
}

func send(t *testing.T, conn *websocket.Conn, msgType string, payload interface{}) {
	t.Helper()
	data, err := NewWSMessage(msgType, payload)
	require.NoError(t, err)
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, data))
}

func TestHub_Room_Events(t *testing.T) {
	req := require.New(t)
	hub, url := startHub(t)

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	req.NoError(err)
	defer conn.Close()
	req.Eventually(func() bool { return hub.ClientCount() == 1 }, 2*time.Second, 5*time.Millisecond)

	// Given a client that receives every room
	PublishUnread(context.Background(), hub, "room2", "current_user", 0)
	msg := next(t, conn)
	req.Equal(TypeUnreadUpdate, msg.Type)
	req.Equal("room2", RoomOf(msg))

	// When it narrows to room1
	send(t, conn, TypeRoomJoin, RoomPayload{RoomID: "room1"})
	send(t, conn, TypePing, nil)
	req.Equal(TypePong, next(t, conn).Type)

	// Then only room1 events arrive
	PublishReaction(context.Background(), hub, "room2", "msg4", models.Reaction{Emoji: "👍", UserID: "u"})
	PublishMessage(context.Background(), hub, &models.Message{ID: "m", RoomID: "room1", Content: "hi"})
	msg = next(t, conn)
	req.Equal(TypeMessageNew, msg.Type)
	req.Equal("room1", RoomOf(msg))
}

func TestHub_Presence(t *testing.T) {
	req := require.New(t)
	hub, url := startHub(t)

	token, err := auth.GenerateToken("user2", "Bob", testSecret, time.Hour)
	req.NoError(err)
	conn, _, err := websocket.DefaultDialer.Dial(url+"?token="+token, nil)
	req.NoError(err)

	req.Eventually(func() bool {
		ids, _ := hub.OnlineUserIDs(context.Background())
		return len(ids) == 1 && ids[0] == "user2"
	}, 2*time.Second, 5*time.Millisecond)

	req.NoError(conn.Close())
	req.Eventually(func() bool { return hub.ClientCount() == 0 }, 2*time.Second, 5*time.Millisecond)
}

func TestServeWS_Rejects_Bad_Token(t *testing.T) {
	_, url := startHub(t)
	_, resp, err := websocket.DefaultDialer.Dial(url+"?token=junk", nil)
	require.Error(t, err)
	require.Equal(t, 401, resp.StatusCode)
}

func TestRoomOf(t *testing.T) {
	require.Empty(t, RoomOf(WSMessage{Type: TypePong}))
	require.Equal(t, "r", RoomOf(WSMessage{Payload: json.RawMessage(`{"room_id":"r"}`)}))
}
