package transcript

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"

	"coursegen-backend/internal/models"
)

// Cache stores acquired transcripts by video id. Freshness is judged by the
// Acquirer from ProcessedAt; backends only need to honour the ttl hint.
type Cache interface {
	Get(ctx context.Context, videoID string) (*models.TranscriptRecord, bool, error)
	Set(ctx context.Context, record *models.TranscriptRecord, ttl time.Duration) error
	Delete(ctx context.Context, videoID string) error
}

// MemoryCache keeps transcripts in process.
type MemoryCache struct {
	items *gocache.Cache
}

func NewMemoryCache(cleanupInterval time.Duration) *MemoryCache {
	return &MemoryCache{items: gocache.New(gocache.NoExpiration, cleanupInterval)}
}

func (c *MemoryCache) Get(_ context.Context, videoID string) (*models.TranscriptRecord, bool, error) {
	v, ok := c.items.Get(videoID)
	if !ok {
		return nil, false, nil
	}
	rec := v.(models.TranscriptRecord)
	return &rec, true, nil
}

func (c *MemoryCache) Set(_ context.Context, record *models.TranscriptRecord, ttl time.Duration) error {
	c.items.Set(record.VideoID, *record, ttl)
	return nil
}

func (c *MemoryCache) Delete(_ context.Context, videoID string) error {
	c.items.Delete(videoID)
	return nil
}

// RedisCache stores transcripts as JSON under transcript:{videoID}.
type RedisCache struct {
	client *redis.Client
}

func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

func cacheKey(videoID string) string {
	return fmt.Sprintf("transcript:%s", videoID)
}

func (c *RedisCache) Get(ctx context.Context, videoID string) (*models.TranscriptRecord, bool, error) {
	data, err := c.client.Get(ctx, cacheKey(videoID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read cached transcript: %w", err)
	}

	var rec models.TranscriptRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		// Treat a corrupt entry as a miss; the next acquisition overwrites it.
		return nil, false, nil
	}
	return &rec, true, nil
}

func (c *RedisCache) Set(ctx context.Context, record *models.TranscriptRecord, ttl time.Duration) error {
	data, err := json.Marshal(record)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, cacheKey(record.VideoID), data, ttl).Err()
}

func (c *RedisCache) Delete(ctx context.Context, videoID string) error {
	return c.client.Del(ctx, cacheKey(videoID)).Err()
}
