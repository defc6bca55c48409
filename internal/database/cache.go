package database

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
	"github.com/stayfinder/backend/internal/models"
)

// Cache key constants
const (
	SearchResultKey = "search:results:%s" // keyed by search fingerprint
	SearchAliasKey  = "search:alias:%s"   // deduped search id -> surviving search id
	SessionKey      = "session:%s"
)

// Cache wraps Redis with the typed operations the search pipeline and the
// session layer need. Entries are written once and expire by TTL; nothing
// updates a cached result in place.
type Cache struct {
	client *redis.Client
	logger *logrus.Logger
}

func NewCache(client *redis.Client, logger *logrus.Logger) *Cache {
	return &Cache{
		client: client,
		logger: logger,
	}
}

// PutSearchResult caches the assembled result under the search fingerprint.
func (c *Cache) PutSearchResult(ctx context.Context, fingerprint string, result *models.CachedResult, ttl time.Duration) error {
	key := fmt.Sprintf(SearchResultKey, fingerprint)

	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal search result: %w", err)
	}

	return c.client.Set(ctx, key, data, ttl).Err()
}

// GetSearchResult retrieves a cached result. Returns (nil, nil) when the
// entry is missing or expired.
func (c *Cache) GetSearchResult(ctx context.Context, fingerprint string) (*models.CachedResult, error) {
	key := fmt.Sprintf(SearchResultKey, fingerprint)

	data, err := c.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var result models.CachedResult
	if err := json.Unmarshal([]byte(data), &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached result: %w", err)
	}

	return &result, nil
}

// HasSearchResult reports whether an unexpired entry exists for the fingerprint.
func (c *Cache) HasSearchResult(ctx context.Context, fingerprint string) (bool, error) {
	key := fmt.Sprintf(SearchResultKey, fingerprint)

	n, err := c.client.Exists(ctx, key).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// PutSearchAlias records that lookups for a deduplicated search id should
// resolve to the surviving search instead.
func (c *Cache) PutSearchAlias(ctx context.Context, fromID, toID string, ttl time.Duration) error {
	key := fmt.Sprintf(SearchAliasKey, fromID)
	return c.client.Set(ctx, key, toID, ttl).Err()
}

// GetSearchAlias returns the surviving search id for a deduplicated one, or
// "" when no alias exists.
func (c *Cache) GetSearchAlias(ctx context.Context, id string) (string, error) {
	key := fmt.Sprintf(SearchAliasKey, id)

	toID, err := c.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return toID, nil
}

// Session storage

func (c *Cache) PutSession(ctx context.Context, token, userID string, ttl time.Duration) error {
	key := fmt.Sprintf(SessionKey, token)
	return c.client.Set(ctx, key, userID, ttl).Err()
}

func (c *Cache) GetSession(ctx context.Context, token string) (string, error) {
	key := fmt.Sprintf(SessionKey, token)

	userID, err := c.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return userID, nil
}

func (c *Cache) DeleteSession(ctx context.Context, token string) error {
	key := fmt.Sprintf(SessionKey, token)
	return c.client.Del(ctx, key).Err()
}
