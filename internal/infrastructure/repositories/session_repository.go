package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/you/storefront/domain"
)

// sessionRecord is the Redis hash behind one shopper session
type sessionRecord struct {
	UserID    string `redis:"user_id"`
	ExpiresAt int64  `redis:"expires_at"`
	CreatedAt int64  `redis:"created_at"`
}

// SessionRepositoryImpl keeps shopper sessions as Redis hashes. A session
// lapses after idle time without use, and never outlives its ExpiresAt.
type SessionRepositoryImpl struct {
	client *redis.Client
	prefix string
	idle   time.Duration
	now    func() time.Time
}

// NewSessionRepository creates a session repository. A zero idle keeps
// sessions until they expire.
func NewSessionRepository(client *redis.Client, idle time.Duration) domain.SessionRepository {
	return &SessionRepositoryImpl{
		client: client,
		prefix: "storefront:session:",
		idle:   idle,
		now:    time.Now,
	}
}

func (r *SessionRepositoryImpl) key(sessionID string) string {
	return r.prefix + sessionID
}

// lifetime is how long the key may live from now
func (r *SessionRepositoryImpl) lifetime(expiresAt time.Time) time.Duration {
	left := expiresAt.Sub(r.now())
	if r.idle > 0 && r.idle < left {
		return r.idle
	}
	return left
}

// Create implements domain.SessionRepository
func (r *SessionRepositoryImpl) Create(ctx context.Context, session *domain.AuthSession) error {
	ttl := r.lifetime(session.ExpiresAt)
	if ttl <= 0 {
		return domain.ErrSessionExpired
	}
	key := r.key(session.ID)
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key,
			"user_id", session.UserID,
			"expires_at", session.ExpiresAt.Unix(),
			"created_at", session.CreatedAt.Unix(),
		)
		pipe.Expire(ctx, key, ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}
	return nil
}

// FindByID implements domain.SessionRepository
func (r *SessionRepositoryImpl) FindByID(ctx context.Context, sessionID string) (*domain.AuthSession, error) {
	key := r.key(sessionID)
	res := r.client.HGetAll(ctx, key)
	if err := res.Err(); err != nil {
		return nil, err
	}
	if len(res.Val()) == 0 {
		return nil, domain.ErrSessionNotFound
	}

	var rec sessionRecord
	if err := res.Scan(&rec); err != nil {
		return nil, fmt.Errorf("failed to read session: %w", err)
	}
	if rec.UserID == "" {
		return nil, fmt.Errorf("failed to read session %s: no user", sessionID)
	}

	session := &domain.AuthSession{
		ID:        sessionID,
		UserID:    rec.UserID,
		ExpiresAt: time.Unix(rec.ExpiresAt, 0).UTC(),
		CreatedAt: time.Unix(rec.CreatedAt, 0).UTC(),
	}
	if !session.ExpiresAt.After(r.now()) {
		r.client.Del(ctx, key)
		return nil, domain.ErrSessionExpired
	}
	return session, nil
}

// Touch implements domain.SessionRepository. It restarts the idle window.
func (r *SessionRepositoryImpl) Touch(ctx context.Context, sessionID string) error {
	key := r.key(sessionID)
	expiresAt, err := r.client.HGet(ctx, key, "expires_at").Int64()
	if errors.Is(err, redis.Nil) {
		return domain.ErrSessionNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to read session expiry: %w", err)
	}
	ttl := r.lifetime(time.Unix(expiresAt, 0))
	if ttl <= 0 {
		r.client.Del(ctx, key)
		return domain.ErrSessionExpired
	}
	return r.client.Expire(ctx, key, ttl).Err()
}

// Delete implements domain.SessionRepository
func (r *SessionRepositoryImpl) Delete(ctx context.Context, sessionID string) error {
	return r.client.Del(ctx, r.key(sessionID)).Err()
}
