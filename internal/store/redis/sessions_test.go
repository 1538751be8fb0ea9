package redis

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

func TestSessionKeys(t *testing.T) {
	key := SessionKey("abc")
	if key != "linkvault:session:abc" {
		t.Errorf("SessionKey() = %q", key)
	}
}

func TestSessionStoreDefaults(t *testing.T) {
	s := NewSessionStore(nil, 0)
	if s.ttl != DefaultSessionTTL {
		t.Errorf("ttl = %v, want %v", s.ttl, DefaultSessionTTL)
	}
	if err := s.Validate(context.Background(), ""); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Validate(\"\") = %v, want ErrSessionNotFound", err)
	}
	if err := s.Delete(context.Background(), ""); err != nil {
		t.Errorf("Delete(\"\") = %v, want nil", err)
	}
}

func TestSessionStoreUnreachable(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 200 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()

	s := NewSessionStore(client, time.Minute)
	ctx := context.Background()

	if _, err := s.Create(ctx); err == nil {
		t.Error("Create() should fail when redis is down")
	}
	err := s.Validate(ctx, "token")
	if err == nil || errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Validate() = %v, want connection error", err)
	}
}

// TestSessionStoreLive runs against a real server when LINKVAULT_TEST_REDIS_ADDR is set.
func TestSessionStoreLive(t *testing.T) {
	addr := os.Getenv("LINKVAULT_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("LINKVAULT_TEST_REDIS_ADDR not set")
	}

	client := redis.NewClient(&redis.Options{Addr: addr})
	defer client.Close()

	s := NewSessionStore(client, time.Minute)
	ctx := context.Background()

	sess, err := s.Create(ctx)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if len(sess.Token) != tokenLength {
		t.Errorf("token length = %d, want %d", len(sess.Token), tokenLength)
	}
	if err := s.Validate(ctx, sess.Token); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if n, err := s.Count(ctx); err != nil || n < 1 {
		t.Errorf("Count() = %d, %v", n, err)
	}
	if err := s.Delete(ctx, sess.Token); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := s.Validate(ctx, sess.Token); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Validate after Delete = %v, want ErrSessionNotFound", err)
	}
}
