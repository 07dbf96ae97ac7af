// Package redisc shares presence and room events between server instances.
package redisc

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	DefaultPingTimeout = 5 * time.Second
	clientName         = "nexttalk-server"
)

// Config selects the Redis server. An empty PingTimeout means
// DefaultPingTimeout.
type Config struct {
	URL         string
	PingTimeout time.Duration
}

func (c Config) options() (*redis.Options, error) {
	if c.URL == "" {
		return nil, fmt.Errorf("redis URL is empty")
	}
	opts, err := redis.ParseURL(c.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}
	if opts.ClientName == "" {
		opts.ClientName = clientName
	}
	return opts, nil
}

// Connect opens a client and checks the server answers before returning it.
func Connect(ctx context.Context, cfg Config) (*redis.Client, error) {
	opts, err := cfg.options()
	if err != nil {
		return nil, err
	}
	timeout := cfg.PingTimeout
	if timeout <= 0 {
		timeout = DefaultPingTimeout
	}

	client := redis.NewClient(opts)
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to reach Redis at %s: %w", opts.Addr, err)
	}
	return client, nil
}
