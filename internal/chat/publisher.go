package chat

import (
	"context"
	"log/slog"
	"time"

	"github.com/umar/nexttalk-dash/internal/models"
)

// Publisher delivers encoded room events to live subscribers, either
// straight to the local hub or through Redis to every server instance.
type Publisher interface {
	PublishRoomEvent(ctx context.Context, roomID string, data []byte) error
}

func PublishMessage(ctx context.Context, p Publisher, m *models.Message) {
	publish(ctx, p, m.RoomID, TypeMessageNew, NewMessagePayload{
		ID:         m.ID,
		RoomID:     m.RoomID,
		SenderID:   m.SenderID,
		SenderName: m.SenderName,
		Content:    m.Content,
		Timestamp:  m.Timestamp.Format(time.RFC3339Nano),
	})
}

func PublishReaction(ctx context.Context, p Publisher, roomID, messageID string, r models.Reaction) {
	publish(ctx, p, roomID, TypeReactionNew, ReactionPayload{
		RoomID:    roomID,
		MessageID: messageID,
		Emoji:     r.Emoji,
		UserID:    r.UserID,
		Username:  r.Username,
	})
}

func PublishUnread(ctx context.Context, p Publisher, roomID, userID string, count int) {
	publish(ctx, p, roomID, TypeUnreadUpdate, UnreadUpdatePayload{
		RoomID: roomID,
		UserID: userID,
		Count:  count,
	})
}

func publish(ctx context.Context, p Publisher, roomID, msgType string, payload interface{}) {
	if p == nil {
		return
	}
	data, err := NewWSMessage(msgType, payload)
	if err != nil {
		slog.Error("failed to encode room event", "error", err, "type", msgType)
		return
	}
	if err := p.PublishRoomEvent(ctx, roomID, data); err != nil {
		slog.Warn("failed to publish room event", "error", err, "type", msgType, "room_id", roomID)
	}
}
