package redis

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
)

func setupStore(t *testing.T) *MarkerStore {
	t.Helper()
	addr := os.Getenv("FLOWMIND_TEST_REDIS")
	if addr == "" {
		t.Skip("FLOWMIND_TEST_REDIS not set, skipping Redis integration test")
	}

	store, err := New(Config{Addr: addr, Prefix: "flowmind-test-" + uuid.NewString(), MarkerTTL: time.Minute})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestKeys(t *testing.T) {
	s := NewWithClient(goredis.NewClient(&goredis.Options{Addr: "localhost:0"}), Config{})
	defer s.Close()

	if got := s.markerKey("alice", "2025-03-10"); got != "flowmind:marker:alice:2025-03-10" {
		t.Errorf("markerKey = %q", got)
	}
	if got := s.claimKey("alice", "2025-03-10"); got != "flowmind:claim:alice:2025-03-10" {
		t.Errorf("claimKey = %q", got)
	}
	if got := s.pendingKey("alice", "2025-03-10"); got != "flowmind:pending:alice:2025-03-10" {
		t.Errorf("pendingKey = %q", got)
	}
}

func TestMarkers(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	if has, err := store.HasMarker(ctx, "alice", "2025-03-10"); err != nil || has {
		t.Fatalf("HasMarker = %v, %v; want false", has, err)
	}
	if ok, err := store.SetMarkerIfAbsent(ctx, "alice", "2025-03-10"); err != nil || !ok {
		t.Fatalf("first SetMarkerIfAbsent = %v, %v; want true", ok, err)
	}
	if ok, _ := store.SetMarkerIfAbsent(ctx, "alice", "2025-03-10"); ok {
		t.Error("second SetMarkerIfAbsent should report false")
	}
	if has, _ := store.HasMarker(ctx, "alice", "2025-03-10"); !has {
		t.Error("marker missing")
	}
	if err := store.ClearMarker(ctx, "alice", "2025-03-10"); err != nil {
		t.Fatalf("ClearMarker failed: %v", err)
	}
	if has, _ := store.HasMarker(ctx, "alice", "2025-03-10"); has {
		t.Error("marker should be cleared")
	}
}

func TestClaims(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	token, err := store.ClaimDay(ctx, "alice", "2025-03-10", time.Minute)
	if err != nil || token == "" {
		t.Fatalf("first ClaimDay = %q, %v; want a token", token, err)
	}
	if got, _ := store.ClaimDay(ctx, "alice", "2025-03-10", time.Minute); got != "" {
		t.Error("live claim granted twice")
	}

	// Another run in the same process holds a different token.
	if err := store.ReleaseDay(ctx, "alice", "2025-03-10", uuid.NewString()); err != nil {
		t.Fatalf("ReleaseDay failed: %v", err)
	}
	if got, _ := store.ClaimDay(ctx, "alice", "2025-03-10", time.Minute); got != "" {
		t.Error("foreign release should not drop the claim")
	}

	if err := store.ReleaseDay(ctx, "alice", "2025-03-10", token); err != nil {
		t.Fatalf("ReleaseDay failed: %v", err)
	}
	if got, _ := store.ClaimDay(ctx, "alice", "2025-03-10", time.Minute); got == "" {
		t.Error("claim should succeed after release")
	}
}

func TestClaims_ExpiredTokenCannotRelease(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	stale, err := store.ClaimDay(ctx, "alice", "2025-03-10", 50*time.Millisecond)
	if err != nil || stale == "" {
		t.Fatalf("ClaimDay = %q, %v", stale, err)
	}
	time.Sleep(100 * time.Millisecond)

	current, err := store.ClaimDay(ctx, "alice", "2025-03-10", time.Minute)
	if err != nil || current == "" {
		t.Fatalf("expired claim not taken over: %q, %v", current, err)
	}
	if err := store.ReleaseDay(ctx, "alice", "2025-03-10", stale); err != nil {
		t.Fatalf("ReleaseDay failed: %v", err)
	}
	if got, _ := store.ClaimDay(ctx, "alice", "2025-03-10", time.Minute); got != "" {
		t.Error("stale token released the new claim")
	}
}

func TestPending(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	if pending, err := store.IsPending(ctx, "alice", "2025-03-10"); err != nil || pending {
		t.Fatalf("IsPending = %v, %v; want false", pending, err)
	}
	if err := store.MarkPending(ctx, "alice", "2025-03-10"); err != nil {
		t.Fatalf("MarkPending failed: %v", err)
	}
	if ttl, _ := store.client.TTL(ctx, store.pendingKey("alice", "2025-03-10")).Result(); ttl != -1 {
		t.Errorf("pending TTL = %v, want none", ttl)
	}
	if pending, _ := store.IsPending(ctx, "alice", "2025-03-10"); !pending {
		t.Error("day should be pending")
	}
	if err := store.ClearPending(ctx, "alice", "2025-03-10"); err != nil {
		t.Fatalf("ClearPending failed: %v", err)
	}
	if pending, _ := store.IsPending(ctx, "alice", "2025-03-10"); pending {
		t.Error("pending survived ClearPending")
	}

	store.MarkPending(ctx, "alice", "2025-03-10")
	if err := store.ClearMarker(ctx, "alice", "2025-03-10"); err != nil {
		t.Fatalf("ClearMarker failed: %v", err)
	}
	if pending, _ := store.IsPending(ctx, "alice", "2025-03-10"); pending {
		t.Error("ClearMarker should drop the pending record")
	}
}
