package chat

import "encoding/json"

const (
	TypeRoomJoin  = "room.join"
	TypeRoomLeave = "room.leave"
	TypePing      = "ping"

	TypeMessageNew     = "message.new"
	TypeReactionNew    = "reaction.new"
	TypeUnreadUpdate   = "unread.update"
	TypePresenceUpdate = "presence.update"
	TypeError          = "error"
	TypePong           = "pong"
)

type WSMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type RoomPayload struct {
	RoomID string `json:"room_id"`
}

type NewMessagePayload struct {
	ID         string `json:"id"`
	RoomID     string `json:"room_id"`
	SenderID   string `json:"sender_id"`
	SenderName string `json:"sender_name"`
	Content    string `json:"content"`
	Timestamp  string `json:"timestamp"`
}

type ReactionPayload struct {
	RoomID    string `json:"room_id"`
	MessageID string `json:"message_id"`
	Emoji     string `json:"emoji"`
	UserID    string `json:"user_id"`
	Username  string `json:"username"`
}

type UnreadUpdatePayload struct {
	RoomID string `json:"room_id"`
	UserID string `json:"user_id"`
	Count  int    `json:"count"`
}

type PresenceUpdatePayload struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Status   string `json:"status"`
}

type ErrorPayload struct {
	Message string `json:"message"`
	Code    string `json:"code"`
}

func NewWSMessage(msgType string, payload interface{}) ([]byte, error) {
	var p json.RawMessage
	if payload != nil {
		var err error
		p, err = json.Marshal(payload)
		if err != nil {
			return nil, err
		}
	}
	msg := WSMessage{Type: msgType, Payload: p}
	return json.Marshal(msg)
}

// RoomOf extracts the room id carried by a room-scoped event payload.
func RoomOf(msg WSMessage) string {
	var p RoomPayload
	if len(msg.Payload) == 0 || json.Unmarshal(msg.Payload, &p) != nil {
		return ""
	}
	return p.RoomID
}
