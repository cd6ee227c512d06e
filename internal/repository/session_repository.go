package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"learnpulse_backend/internal/model"

	"github.com/go-redis/redis/v8"
)

const sessionKeyPrefix = "session:"

// SessionRepository persists conversation sessions in Redis as JSON blobs.
// Each write refreshes the TTL, so active sessions slide forward and idle
// ones expire on their own.
type SessionRepository struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewSessionRepository(rdb *redis.Client, ttl time.Duration) *SessionRepository {
	return &SessionRepository{rdb: rdb, ttl: ttl}
}

// Get loads a session by id. A missing key yields a fresh empty session;
// a store failure is surfaced so callers can decide how to degrade.
func (r *SessionRepository) Get(ctx context.Context, sessionID string) (*model.Session, error) {
	raw, err := r.rdb.Get(ctx, sessionKeyPrefix+sessionID).Result()
	if errors.Is(err, redis.Nil) {
		return model.NewSession(sessionID), nil
	}
	if err != nil {
		return nil, fmt.Errorf("session get %q: %w", sessionID, err)
	}

	var session model.Session
	if err := json.Unmarshal([]byte(raw), &session); err != nil {
		// Corrupt state is unrecoverable; start the session over.
		return model.NewSession(sessionID), nil
	}
	session.SessionID = sessionID
	return &session, nil
}

// Set writes the session back and slides its expiry.
func (r *SessionRepository) Set(ctx context.Context, session *model.Session) error {
	raw, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("session marshal %q: %w", session.SessionID, err)
	}
	if err := r.rdb.Set(ctx, sessionKeyPrefix+session.SessionID, raw, r.ttl).Err(); err != nil {
		return fmt.Errorf("session set %q: %w", session.SessionID, err)
	}
	return nil
}

// Delete removes a session outright.
func (r *SessionRepository) Delete(ctx context.Context, sessionID string) error {
	return r.rdb.Del(ctx, sessionKeyPrefix+sessionID).Err()
}

const cacheKeyPrefix = "cache:"

// CacheRepository is a small JSON cache for computed summaries.
type CacheRepository struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewCacheRepository(rdb *redis.Client, ttl time.Duration) *CacheRepository {
	return &CacheRepository{rdb: rdb, ttl: ttl}
}

// Get unmarshals the cached value into dest. The bool reports a hit;
// cache errors are swallowed and treated as misses.
func (r *CacheRepository) Get(ctx context.Context, key string, dest interface{}) bool {
	raw, err := r.rdb.Get(ctx, cacheKeyPrefix+key).Result()
	if err != nil {
		return false
	}
	return json.Unmarshal([]byte(raw), dest) == nil
}

// Set stores the value under key for the cache TTL. Failures are ignored;
// the cache is best-effort.
func (r *CacheRepository) Set(ctx context.Context, key string, value interface{}) {
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	_ = r.rdb.Set(ctx, cacheKeyPrefix+key, raw, r.ttl).Err()
}

// Invalidate drops a single cached entry.
func (r *CacheRepository) Invalidate(ctx context.Context, key string) {
	_ = r.rdb.Del(ctx, cacheKeyPrefix+key).Err()
}
