package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"resonate/model"

	"github.com/redis/go-redis/v9"
)

const publicFeedKey = "feed:public"

// FeedCache keeps the public track feed in Redis for a short TTL so the
// landing page does not hit MySQL on every poll. A nil client disables
// caching and every call falls through to the store.
type FeedCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewFeedCache creates a feed cache with the given TTL.
func NewFeedCache(client *redis.Client, ttl time.Duration) *FeedCache {
	return &FeedCache{client: client, ttl: ttl}
}

// GetPublicFeed returns the cached feed, or ok=false on miss.
func (c *FeedCache) GetPublicFeed(ctx context.Context) ([]*model.Track, bool) {
	if c == nil || c.client == nil {
		return nil, false
	}

	data, err := c.client.Get(ctx, publicFeedKey).Bytes()
	if err != nil {
		return nil, false
	}

	var tracks []*model.Track
	if err := json.Unmarshal(data, &tracks); err != nil {
		return nil, false
	}
	return tracks, true
}

// SetPublicFeed stores the feed under the configured TTL.
func (c *FeedCache) SetPublicFeed(ctx context.Context, tracks []*model.Track) error {
	if c == nil || c.client == nil {
		return nil
	}

	data, err := json.Marshal(tracks)
	if err != nil {
		return fmt.Errorf("failed to marshal public feed: %w", err)
	}
	return c.client.Set(ctx, publicFeedKey, data, c.ttl).Err()
}

// InvalidatePublicFeed drops the cached feed after uploads and deletes.
func (c *FeedCache) InvalidatePublicFeed(ctx context.Context) error {
	if c == nil || c.client == nil {
		return nil
	}

	if err := c.client.Del(ctx, publicFeedKey).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("failed to invalidate public feed: %w", err)
	}
	return nil
}
