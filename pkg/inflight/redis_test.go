package inflight_test

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"photocritic/pkg/inflight"
)

// redisClient connects to REDIS_ADDR or skips the test.
func redisClient(t *testing.T) *redis.Client {
	t.Helper()
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Fatalf("ping %s: %v", addr, err)
	}
	t.Cleanup(func() { client.Close() })
	return client
}

func TestRedisGuardLifecycle(t *testing.T) {
	ctx := context.Background()
	g := inflight.NewRedisGuard(redisClient(t), "test:"+uuid.NewString()+":", time.Minute)

	if g.IsProcessing(ctx, "p1") {
		t.Fatal("expected p1 idle before acquire")
	}
	release, err := g.TryAcquire(ctx, "p1")
	if err != nil {
		t.Fatalf("acquire p1: %v", err)
	}
	if !g.IsProcessing(ctx, "p1") {
		t.Error("expected p1 processing after acquire")
	}
	if _, err := g.TryAcquire(ctx, "p1"); !errors.Is(err, inflight.ErrInProgress) {
		t.Errorf("second acquire: got %v, want ErrInProgress", err)
	}
	if g.IsProcessing(ctx, "p2") {
		t.Error("p2 should be unaffected")
	}

	release()
	release()
	if g.IsProcessing(ctx, "p1") {
		t.Error("expected p1 idle after release")
	}
	again, err := g.TryAcquire(ctx, "p1")
	if err != nil {
		t.Fatalf("reacquire p1: %v", err)
	}
	again()
}

func TestRedisGuardStaleReleaseKeepsNewHolder(t *testing.T) {
	ctx := context.Background()
	client, prefix := redisClient(t), "test:"+uuid.NewString()+":"
	short := inflight.NewRedisGuard(client, prefix, 100*time.Millisecond)
	g := inflight.NewRedisGuard(client, prefix, time.Minute)

	stale, err := short.TryAcquire(ctx, "p1")
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for g.IsProcessing(ctx, "p1") {
		if time.Now().After(deadline) {
			t.Fatal("lease never expired")
		}
		time.Sleep(20 * time.Millisecond)
	}

	current, err := g.TryAcquire(ctx, "p1")
	if err != nil {
		t.Fatalf("acquire after expiry: %v", err)
	}
	defer current()

	stale()
	if !g.IsProcessing(ctx, "p1") {
		t.Error("expired holder released the new lease")
	}
}
