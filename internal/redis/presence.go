package redisc

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	presenceTTL    = 120 * time.Second
	onlineUsersKey = "online_users"
)

// Presence tracks live dashboard connections in Redis so every server
// instance reports the same online users.
type Presence struct {
	client *redis.Client
}

func NewPresence(client *redis.Client) *Presence {
	return &Presence{client: client}
}

func (p *Presence) SetOnline(ctx context.Context, userID string) error {
	pipe := p.client.Pipeline()
	pipe.SAdd(ctx, onlineUsersKey, userID)
	pipe.Set(ctx, "presence:"+userID, "online", presenceTTL)
	_, err := pipe.Exec(ctx)
	return err
}

func (p *Presence) SetOffline(ctx context.Context, userID string) error {
	pipe := p.client.Pipeline()
	pipe.SRem(ctx, onlineUsersKey, userID)
	pipe.Del(ctx, "presence:"+userID)
	_, err := pipe.Exec(ctx)
	return err
}

// OnlineUserIDs returns members of the online set whose presence key has
// not expired.
func (p *Presence) OnlineUserIDs(ctx context.Context) ([]string, error) {
	ids, err := p.client.SMembers(ctx, onlineUsersKey).Result()
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return ids, nil
	}

	pipe := p.client.Pipeline()
	checks := make([]*redis.IntCmd, len(ids))
	for i, id := range ids {
		checks[i] = pipe.Exists(ctx, "presence:"+id)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, err
	}

	online := ids[:0]
	for i, id := range ids {
		if checks[i].Val() > 0 {
			online = append(online, id)
		}
	}
	return online, nil
}

func (p *Presence) Refresh(ctx context.Context, userID string) error {
	return p.client.Expire(ctx, "presence:"+userID, presenceTTL).Err()
}
