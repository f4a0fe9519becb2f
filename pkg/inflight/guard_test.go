package inflight_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"photocritic/pkg/inflight"
)

func TestMemoryGuardLifecycle(t *testing.T) {
	ctx := context.Background()
	g := inflight.NewMemoryGuard()

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
	if g.IsProcessing(ctx, "p2") {
		t.Error("p2 should be unaffected")
	}

	if _, err := g.TryAcquire(ctx, "p1"); !errors.Is(err, inflight.ErrInProgress) {
		t.Errorf("second acquire: got %v, want ErrInProgress", err)
	}

	release()
	if g.IsProcessing(ctx, "p1") {
		t.Error("expected p1 idle after release")
	}

	if _, err := g.TryAcquire(ctx, "p1"); err != nil {
		t.Errorf("re-acquire after release: %v", err)
	}
}

func TestMemoryGuardStaleReleaseKeepsNewLease(t *testing.T) {
	ctx := context.Background()
	g := inflight.NewMemoryGuard()

	first, err := g.TryAcquire(ctx, "p1")
	if err != nil {
		t.Fatal(err)
	}
	first()

	second, err := g.TryAcquire(ctx, "p1")
	if err != nil {
		t.Fatal(err)
	}
	defer second()

	// a repeated release of the old lease must not free the new one
	first()
	if !g.IsProcessing(ctx, "p1") {
		t.Fatal("stale release dropped the active lease")
	}
}

func TestMemoryGuardConcurrentAcquireHasOneWinner(t *testing.T) {
	ctx := context.Background()
	g := inflight.NewMemoryGuard()

	const workers = 64
	var (
		wg        sync.WaitGroup
		attempted sync.WaitGroup
		winners   int32
		start     = make(chan struct{})
		hold      = make(chan struct{})
	)
	attempted.Add(workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			release, err := g.TryAcquire(ctx, "photo")
			attempted.Done()
			if err != nil {
				if !errors.Is(err, inflight.ErrInProgress) {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			atomic.AddInt32(&winners, 1)
			<-hold
			release()
		}()
	}
	close(start)

	// the winner keeps holding until every worker has tried
	attempted.Wait()
	close(hold)
	wg.Wait()

	if winners != 1 {
		t.Fatalf("winners = %d, want 1", winners)
	}
	if g.IsProcessing(ctx, "photo") {
		t.Error("lease leaked after all workers finished")
	}
}

func guardedWork(ctx context.Context, g inflight.Guard, key string, work func() error) error {
	release, err := g.TryAcquire(ctx, key)
	if err != nil {
		return err
	}
	defer release()
	return work()
}

func TestMemoryGuardReleasedOnError(t *testing.T) {
	ctx := context.Background()
	g := inflight.NewMemoryGuard()

	boom := errors.New("model unavailable")
	err := guardedWork(ctx, g, "p1", func() error { return boom })
	if !errors.Is(err, boom) {
		t.Fatalf("got %v, want %v", err, boom)
	}
	if g.IsProcessing(ctx, "p1") {
		t.Fatal("lease leaked on error path")
	}
}

func TestMemoryGuardReleasedOnPanic(t *testing.T) {
	ctx := context.Background()
	g := inflight.NewMemoryGuard()

	func() {
		defer func() {
			if recover() == nil {
				t.Fatal("expected panic")
			}
		}()
		_ = guardedWork(ctx, g, "p1", func() error { panic("parse exploded") })
	}()

	if g.IsProcessing(ctx, "p1") {
		t.Fatal("lease leaked on panic path")
	}
	if _, err := g.TryAcquire(ctx, "p1"); err != nil {
		t.Fatalf("re-acquire after panic: %v", err)
	}
}
