package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charlesng35/botspace/internal/cache"
	"github.com/charlesng35/botspace/internal/models"
)

const sessionCacheKeyPrefix = "user:"

var errSessionCacheMiss = errors.New("session cache miss")

// SessionCache stores the user snapshot taken when a session token was issued.
type SessionCache interface {
	Get(ctx context.Context, token string) (*models.User, error)
	Set(ctx context.Context, token string, user *models.User, ttl time.Duration) error
}

// NewSessionCache wraps a cache.Store (Redis or database backed) as a SessionCache.
func NewSessionCache(store cache.Store) SessionCache {
	if store == nil {
		return nil
	}
	return &sessionStoreCache{store: store}
}

type sessionStoreCache struct {
	store cache.Store
}

func (c *sessionStoreCache) Get(ctx context.Context, token string) (*models.User, error) {
	key := cacheKey(token)
	if key == "" {
		return nil, errSessionCacheMiss
	}

	data, found, err := c.store.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, errSessionCacheMiss
	}

	var user models.User
	if err := json.Unmarshal(data, &user); err != nil {
		return nil, fmt.Errorf("session cache: decode: %w", err)
	}
	return &user, nil
}

func (c *sessionStoreCache) Set(ctx context.Context, token string, user *models.User, ttl time.Duration) error {
	if user == nil {
		return errors.New("session cache: user is nil")
	}
	key := cacheKey(token)
	if key == "" {
		return errors.New("session cache: token missing")
	}

	payload, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("session cache: marshal: %w", err)
	}
	if ttl <= 0 {
		ttl = time.Second
	}

	return c.store.Set(ctx, key, payload, ttl)
}

func cacheKey(token string) string {
	token = strings.TrimSpace(token)
	if token == "" {
		return ""
	}
	return sessionCacheKeyPrefix + token
}
