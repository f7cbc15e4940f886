package session

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ibukiaudio/ibuki/internal/ibukierr"
)

// ResumeStore persists the set of live session ids with a TTL matching the
// resume window, so a process restart during the resume window can still
// recognise a session id a reconnecting listener presents as "recently
// ours" before falling back to minting a fresh one. Manager.Attach/Detach
// (session.go) remain the source of truth for in-process state; this store is an
// optional durability layer for the reattach timing window.
type ResumeStore interface {
	Remember(ctx context.Context, sessionID string, ttl time.Duration) error
	Seen(ctx context.Context, sessionID string) (bool, error)
	Forget(ctx context.Context, sessionID string) error
}

type redisResumeStore struct {
	client *redis.Client
	prefix string
}

func NewRedisResumeStore(client *redis.Client) ResumeStore {
	return &redisResumeStore{client: client, prefix: "ibuki:session:"}
}

func (r *redisResumeStore) Remember(ctx context.Context, sessionID string, ttl time.Duration) error {
	if err := r.client.Set(ctx, r.prefix+sessionID, "1", ttl).Err(); err != nil {
		return ibukierr.Wrap(ibukierr.KindUnsupported, "persisting resume marker", err)
	}
	return nil
}

func (r *redisResumeStore) Seen(ctx context.Context, sessionID string) (bool, error) {
	n, err := r.client.Exists(ctx, r.prefix+sessionID).Result()
	if err != nil {
		return false, ibukierr.Wrap(ibukierr.KindUnsupported, "checking resume marker", err)
	}
	return n > 0, nil
}

func (r *redisResumeStore) Forget(ctx context.Context, sessionID string) error {
	if err := r.client.Del(ctx, r.prefix+sessionID).Err(); err != nil {
		return ibukierr.Wrap(ibukierr.KindUnsupported, "clearing resume marker", err)
	}
	return nil
}

// inProcessResumeStore is the zero-dependency fallback used when no redis
// client is configured (e.g. local/dev single-node deployments).
type inProcessResumeStore struct {
	entries map[string]time.Time
}

func NewInProcessResumeStore() ResumeStore {
	return &inProcessResumeStore{entries: make(map[string]time.Time)}
}

func (s *inProcessResumeStore) Remember(ctx context.Context, sessionID string, ttl time.Duration) error {
	s.entries[sessionID] = time.Now().Add(ttl)
	return nil
}

func (s *inProcessResumeStore) Seen(ctx context.Context, sessionID string) (bool, error) {
	exp, ok := s.entries[sessionID]
	if !ok {
		return false, nil
	}
	if time.Now().After(exp) {
		delete(s.entries, sessionID)
		return false, nil
	}
	return true, nil
}

func (s *inProcessResumeStore) Forget(ctx context.Context, sessionID string) error {
	delete(s.entries, sessionID)
	return nil
}
