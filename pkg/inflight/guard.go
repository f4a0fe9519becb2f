// Package inflight rejects concurrent duplicate work for the same key.
//
// A Guard hands out at most one lease per key. Callers acquire at the top of
// the guarded section and release with defer:
//
//	release, err := guard.TryAcquire(ctx, photoID.String())
//	if err != nil {
//		return err // ErrInProgress when another request holds the key
//	}
//	defer release()
package inflight

import (
	"context"
	"errors"
	"sync"
)

// ErrInProgress is returned when the key is already leased.
var ErrInProgress = errors.New("inflight: already in progress")

// Release ends a lease. Calling it more than once is a no-op.
type Release func()

// Guard is an atomic insert-if-absent set of in-progress keys.
type Guard interface {
	TryAcquire(ctx context.Context, key string) (Release, error)
	IsProcessing(ctx context.Context, key string) bool
}

// MemoryGuard keeps leases in process memory. A restart clears every lease.
type MemoryGuard struct {
	mu   sync.Mutex
	keys map[string]uint64
	seq  uint64
}

func NewMemoryGuard() *MemoryGuard {
	return &MemoryGuard{keys: make(map[string]uint64)}
}

func (g *MemoryGuard) TryAcquire(_ context.Context, key string) (Release, error) {
	g.mu.Lock()
	if _, held := g.keys[key]; held {
		g.mu.Unlock()
		return nil, ErrInProgress
	}
	g.seq++
	lease := g.seq
	g.keys[key] = lease
	g.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			g.mu.Lock()
			// only drop our own lease
			if g.keys[key] == lease {
				delete(g.keys, key)
			}
			g.mu.Unlock()
		})
	}, nil
}

func (g *MemoryGuard) IsProcessing(_ context.Context, key string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, held := g.keys[key]
	return held
}

// Len returns the number of held leases.
func (g *MemoryGuard) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.keys)
}
