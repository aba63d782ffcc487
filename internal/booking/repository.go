// AngelaMos | 2026
// repository.go

package booking

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/angelamos/localmart/internal/core"
)

// Repository keeps wizard state in redis. Nothing here is durable:
// sessions expire with their TTL and confirmations write no rows.
type Repository interface {
	SaveSession(ctx context.Context, session *Session, ttl time.Duration) error
	GetSession(ctx context.Context, sessionID string) (*Session, error)
	DeleteSession(ctx context.Context, sessionID string) error
	SaveSnapshot(ctx context.Context, sessionID string, snapshot *SlotSnapshot, ttl time.Duration) error
	GetSnapshot(ctx context.Context, sessionID, date string) (*SlotSnapshot, error)
}

type repository struct {
	redis *redis.Client
}

func NewRepository(redisClient *redis.Client) Repository {
	return &repository{redis: redisClient}
}

func sessionKey(sessionID string) string {
	return "booking:session:" + sessionID
}

func snapshotKey(sessionID, date string) string {
	return "booking:slots:" + sessionID + ":" + date
}

func (r *repository) SaveSession(
	ctx context.Context,
	session *Session,
	ttl time.Duration,
) error {
	raw, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	if err := r.redis.Set(ctx, sessionKey(session.ID), raw, ttl).Err(); err != nil {
		return fmt.Errorf("save session: %w", err)
	}

	return nil
}

func (r *repository) GetSession(
	ctx context.Context,
	sessionID string,
) (*Session, error) {
	raw, err := r.redis.Get(ctx, sessionKey(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("get session: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}

	var session Session
	if err := json.Unmarshal(raw, &session); err != nil {
		return nil, fmt.Errorf("unmarshal session: %w", err)
	}

	return &session, nil
}

func (r *repository) DeleteSession(
	ctx context.Context,
	sessionID string,
) error {
	if err := r.redis.Del(ctx, sessionKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (r *repository) SaveSnapshot(
	ctx context.Context,
	sessionID string,
	snapshot *SlotSnapshot,
	ttl time.Duration,
) error {
	raw, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	key := snapshotKey(sessionID, snapshot.Date)
	if err := r.redis.Set(ctx, key, raw, ttl).Err(); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}

	return nil
}

func (r *repository) GetSnapshot(
	ctx context.Context,
	sessionID, date string,
) (*SlotSnapshot, error) {
	raw, err := r.redis.Get(ctx, snapshotKey(sessionID, date)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("get snapshot: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get snapshot: %w", err)
	}

	var snapshot SlotSnapshot
	if err := json.Unmarshal(raw, &snapshot); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}

	return &snapshot, nil
}
