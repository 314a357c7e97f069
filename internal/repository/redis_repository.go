package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"dataroom-service/internal/models"

	"github.com/redis/go-redis/v9"
)

const documentCachePrefix = "dataroom:document:"

type RedisRepo struct {
	client *redis.Client
}

func NewRedisRepo(client *redis.Client) *RedisRepo {
	return &RedisRepo{
		client: client,
	}
}

func (r *RedisRepo) SaveStructCached(ctx context.Context, key string, model any, ttl time.Duration) error {
	val, err := json.Marshal(model)
	if err != nil {
		return fmt.Errorf("error saving struct to cache: %w", err)
	}
	if err := r.client.Set(ctx, key, val, ttl).Err(); err != nil {
		return fmt.Errorf("error saving struct to cache: %w", err)
	}
	return nil
}

// GetStructCached decodes the value at key into model. A missing key is ErrNotFound.
func (r *RedisRepo) GetStructCached(ctx context.Context, key string, model any) error {
	raw, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("error get struct in cache: %w", err)
	}
	return json.Unmarshal(raw, model)
}

func (r *RedisRepo) DeleteKey(ctx context.Context, keys ...string) error {
	return r.client.Del(ctx, keys...).Err()
}

func (r *RedisRepo) Publish(ctx context.Context, channel string, payload []byte) error {
	return r.client.Publish(ctx, channel, payload).Err()
}

// DocumentCache keeps documents by slug in Redis. Cached copies include
// content, so entries are dropped whenever a document changes.
type DocumentCache struct {
	redis *RedisRepo
	ttl   time.Duration
}

func NewDocumentCache(redis *RedisRepo, ttl time.Duration) *DocumentCache {
	return &DocumentCache{redis: redis, ttl: ttl}
}

func (c *DocumentCache) Get(ctx context.Context, slug string) (*models.Document, error) {
	var doc models.Document
	if err := c.redis.GetStructCached(ctx, documentCachePrefix+slug, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

func (c *DocumentCache) Set(ctx context.Context, doc *models.Document) error {
	return c.redis.SaveStructCached(ctx, documentCachePrefix+doc.Slug, doc, c.ttl)
}

func (c *DocumentCache) Invalidate(ctx context.Context, slug string) error {
	return c.redis.DeleteKey(ctx, documentCachePrefix+slug)
}
