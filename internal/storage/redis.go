package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore remembers which sites were scraped recently so the API can
// refuse to hammer the same site twice within the dedup window.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(addr string) *RedisStore {
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	return &RedisStore{client: rdb}
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

// MarkAsScraped sets a key with a TTL to prevent re-scraping.
func (s *RedisStore) MarkAsScraped(ctx context.Context, sourceURL string, ttl time.Duration) error {
	return s.client.Set(ctx, scrapedKey(sourceURL), time.Now().UTC().Format(time.RFC3339), ttl).Err()
}

// IsRecentlyScraped checks if a URL has been scraped within the TTL.
func (s *RedisStore) IsRecentlyScraped(ctx context.Context, sourceURL string) (bool, error) {
	val, err := s.client.Exists(ctx, scrapedKey(sourceURL)).Result()
	if err != nil {
		return false, err
	}
	return val == 1, nil
}

func scrapedKey(sourceURL string) string {
	return fmt.Sprintf("scraped:%s", sourceURL)
}
