package auth

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func setupTestSessionStore(t *testing.T) (SessionStore, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis.Run: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewRedisSessionStore(client), mr
}

func TestSessionStorePutAndActive(t *testing.T) {
	store, _ := setupTestSessionStore(t)
	ctx := context.Background()

	if err := store.Put(ctx, "sid-1", "uid-1", time.Hour); err != nil {
		t.Fatalf("Put: %v", err)
	}

	active, err := store.Active(ctx, "sid-1")
	if err != nil {
		t.Fatalf("Active: %v", err)
	}
	if !active {
		t.Error("stored session should be active")
	}

	active, err = store.Active(ctx, "sid-unknown")
	if err != nil {
		t.Fatalf("Active(unknown): %v", err)
	}
	if active {
		t.Error("unknown session must not be active")
	}
}

func TestSessionStoreRevoke(t *testing.T) {
	store, _ := setupTestSessionStore(t)
	ctx := context.Background()

	if err := store.Put(ctx, "sid-1", "uid-1", time.Hour); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := store.Revoke(ctx, "sid-1"); err != nil {
		t.Fatalf("Revoke: %v", err)
	}

	active, err := store.Active(ctx, "sid-1")
	if err != nil {
		t.Fatalf("Active: %v", err)
	}
	if active {
		t.Error("revoked session must not be active")
	}

	// revoking again or revoking an unknown id is a no-op
	if err := store.Revoke(ctx, "sid-1"); err != nil {
		t.Errorf("second Revoke: %v", err)
	}
	if err := store.Revoke(ctx, "never-existed"); err != nil {
		t.Errorf("Revoke(unknown): %v", err)
	}
}

func TestSessionStoreTTLExpiry(t *testing.T) {
	store, mr := setupTestSessionStore(t)
	ctx := context.Background()

	if err := store.Put(ctx, "sid-1", "uid-1", time.Minute); err != nil {
		t.Fatalf("Put: %v", err)
	}

	mr.FastForward(2 * time.Minute)

	active, err := store.Active(ctx, "sid-1")
	if err != nil {
		t.Fatalf("Active: %v", err)
	}
	if active {
		t.Error("session past its TTL must not be active")
	}
}
