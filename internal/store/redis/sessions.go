package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/redis/go-redis/v9"
)

const (
	// DefaultSessionTTL is used when no TTL is configured (7 days)
	DefaultSessionTTL = 7 * 24 * time.Hour

	tokenLength = 32
)

// ErrSessionNotFound is returned for unknown or expired tokens.
var ErrSessionNotFound = errors.New("session not found")

// Session is an issued admin session.
type Session struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// SessionStore keeps admin sessions in Redis with a TTL.
type SessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSessionStore creates a session store
func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &SessionStore{client: client, ttl: ttl}
}

// Create issues a new random session token
func (s *SessionStore) Create(ctx context.Context) (Session, error) {
	token, err := gonanoid.New(tokenLength)
	if err != nil {
		return Session{}, fmt.Errorf("failed to generate session token: %w", err)
	}

	now := time.Now().UTC()
	if err := s.client.Set(ctx, SessionKey(token), now.Unix(), s.ttl).Err(); err != nil {
		return Session{}, fmt.Errorf("failed to save session: %w", err)
	}

	return Session{Token: token, ExpiresAt: now.Add(s.ttl)}, nil
}

// Validate reports whether token names a live session
func (s *SessionStore) Validate(ctx context.Context, token string) error {
	if token == "" {
		return ErrSessionNotFound
	}
	n, err := s.client.Exists(ctx, SessionKey(token)).Result()
	if err != nil {
		return fmt.Errorf("failed to check session: %w", err)
	}
	if n == 0 {
		return ErrSessionNotFound
	}
	return nil
}

// Delete removes a session. Deleting an unknown token is not an error.
func (s *SessionStore) Delete(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := s.client.Del(ctx, SessionKey(token)).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// Count returns the number of live sessions
func (s *SessionStore) Count(ctx context.Context) (int, error) {
	var (
		cursor uint64
		total  int
	)
	for {
		keys, next, err := s.client.Scan(ctx, cursor, KeyPrefixSession+"*", 100).Result()
		if err != nil {
			return 0, fmt.Errorf("failed to scan sessions: %w", err)
		}
		total += len(keys)
		if next == 0 {
			return total, nil
		}
		cursor = next
	}
}

// Ping checks Redis connectivity
func (s *SessionStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
