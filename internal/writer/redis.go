package writer

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rickgao/nft-pricewatch/internal/model"
)

// setter is the subset of *redis.Client used by RedisSink.
type setter interface {
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
}

var _ setter = (*redis.Client)(nil)

// RedisSink stores the latest snapshot under one key. The TTL lets readers
// tell a stalled poller from a live one.
type RedisSink struct {
	client setter
	key    string
	ttl    time.Duration
}

// NewRedisSink creates a RedisSink.
func NewRedisSink(client setter, key string, ttl time.Duration) *RedisSink {
	return &RedisSink{client: client, key: key, ttl: ttl}
}

// Write sets the key to the snapshot JSON.
func (s *RedisSink) Write(ctx context.Context, snap model.Snapshot) error {
	data, err := snap.Encode()
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := s.client.Set(ctx, s.key, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", s.key, err)
	}
	return nil
}
