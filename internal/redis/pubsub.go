package redisc

import (
	"context"
	"log/slog"
	"strings"

	"github.com/redis/go-redis/v9"
)

const roomChannelPrefix = "chat:room:"

// RoomPublisher fans room events out to every server instance through
// Redis pub/sub.
type RoomPublisher struct {
	client *redis.Client
}

func NewRoomPublisher(client *redis.Client) *RoomPublisher {
	return &RoomPublisher{client: client}
}

func (p *RoomPublisher) PublishRoomEvent(ctx context.Context, roomID string, data []byte) error {
	return p.client.Publish(ctx, roomChannelPrefix+roomID, data).Err()
}

// SubscribeRooms delivers every room event published by any instance to
// handler until ctx is cancelled.
func SubscribeRooms(ctx context.Context, client *redis.Client, handler func(roomID string, data []byte)) {
	pubsub := client.PSubscribe(ctx, roomChannelPrefix+"*")
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			roomID := strings.TrimPrefix(msg.Channel, roomChannelPrefix)
			handler(roomID, []byte(msg.Payload))
			slog.Debug("pubsub message", "room_id", roomID)
		}
	}
}
