package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"auctionhouse-backend/internal/model"

	"github.com/redis/go-redis/v9"
)

// StatusCache holds recently computed status views for the read path.
// It is invalidated on every accepted bid and on settlement, and is
// never consulted inside placeBid's accept/reject decision.
type StatusCache interface {
	Get(ctx context.Context, listingID string) (*model.AuctionStatusView, bool)
	Set(ctx context.Context, listingID string, view *model.AuctionStatusView)
	Invalidate(ctx context.Context, listingID string)
}

type RedisStatusCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStatusCache(addr, password string, db int, ttl time.Duration) (*RedisStatusCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect to Redis: %w", err)
	}

	return &RedisStatusCache{client: client, ttl: ttl}, nil
}

func statusKey(listingID string) string {
	return "auction:status:" + listingID
}

func (c *RedisStatusCache) Get(ctx context.Context, listingID string) (*model.AuctionStatusView, bool) {
	data, err := c.client.Get(ctx, statusKey(listingID)).Bytes()
	if err != nil {
		return nil, false
	}
	view := &model.AuctionStatusView{}
	if err := json.Unmarshal(data, view); err != nil {
		return nil, false
	}
	return view, true
}

func (c *RedisStatusCache) Set(ctx context.Context, listingID string, view *model.AuctionStatusView) {
	data, err := json.Marshal(view)
	if err != nil {
		return
	}
	_ = c.client.Set(ctx, statusKey(listingID), data, c.ttl).Err()
}

func (c *RedisStatusCache) Invalidate(ctx context.Context, listingID string) {
	_ = c.client.Del(ctx, statusKey(listingID)).Err()
}

func (c *RedisStatusCache) Close() error {
	return c.client.Close()
}

// NoopCache disables status caching.
type NoopCache struct{}

func (NoopCache) Get(context.Context, string) (*model.AuctionStatusView, bool) { return nil, false }
func (NoopCache) Set(context.Context, string, *model.AuctionStatusView)        {}
func (NoopCache) Invalidate(context.Context, string)                           {}
