// internal/common/database/redis.go
package database

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"wanted-applier/internal/common/config"
	apperrors "wanted-applier/internal/common/errors"
	"wanted-applier/internal/models"

	"github.com/redis/go-redis/v9"
)

// RedisClient wraps the Redis client
type RedisClient struct {
	Client *redis.Client
}

// NewRedis creates a new Redis client
func NewRedis(cfg config.RedisConfig) *RedisClient {
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Address,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     2,
	})

	return &RedisClient{Client: rdb}
}

// Ping tests the Redis connection
func (c *RedisClient) Ping(ctx context.Context) error {
	if err := c.Client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

// Close closes the Redis connection
func (c *RedisClient) Close() error {
	if c.Client != nil {
		return c.Client.Close()
	}
	return nil
}

// SessionCache keeps board sessions in Redis keyed by account email. Entries
// expire together with the token.
type SessionCache struct {
	client *redis.Client
	prefix string
	now    func() time.Time
}

func NewSessionCache(client *redis.Client, prefix string) *SessionCache {
	return &SessionCache{client: client, prefix: prefix, now: time.Now}
}

func (c *SessionCache) key(email string) string {
	return c.prefix + strings.ToLower(email)
}

// Load returns the cached session for email, or nil when there is none.
func (c *SessionCache) Load(ctx context.Context, email string) (*models.Session, error) {
	raw, err := c.client.Get(ctx, c.key(email)).Bytes()
	if stderrors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.NewSessionCacheError("load", err)
	}

	var session models.Session
	if err := json.Unmarshal(raw, &session); err != nil {
		return nil, apperrors.NewSessionCacheError("decode", err)
	}
	return &session, nil
}

// Store caches session until it expires. Already expired sessions are skipped.
func (c *SessionCache) Store(ctx context.Context, email string, session *models.Session) error {
	ttl := session.TTL(c.now())
	if ttl <= 0 {
		return nil
	}

	raw, err := json.Marshal(session)
	if err != nil {
		return apperrors.NewSessionCacheError("encode", err)
	}
	if err := c.client.Set(ctx, c.key(email), raw, ttl).Err(); err != nil {
		return apperrors.NewSessionCacheError("store", err)
	}
	return nil
}
