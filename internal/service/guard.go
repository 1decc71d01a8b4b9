package service

import (
	"sync"
	"time"
)

// requestGuard deduplicates retried escalation requests within a short
// window. A key is claimed before the request runs, so two concurrent
// identical escalations cannot both transfer; the loser waits for the
// winner's result. Completed entries are pruned lazily on access.
type requestGuard struct {
	now     func() time.Time
	entries map[string]*guardEntry
	window  time.Duration
	mu      sync.Mutex
}

type guardEntry struct {
	done     chan struct{}
	at       time.Time
	result   *HandoffResult
	finished bool
}

func newRequestGuard(window time.Duration) *requestGuard {
	return &requestGuard{
		entries: make(map[string]*guardEntry),
		window:  window,
		now:     time.Now,
	}
}

// Begin claims key for the caller. When an identical request already ran
// (or is still running) inside the window, Begin waits it out and returns
// its result with owned=false. With owned=true the caller holds the claim
// and must settle it with Finish or Release.
func (g *requestGuard) Begin(key string) (prior *HandoffResult, owned bool) {
	for {
		g.mu.Lock()
		g.prune()
		entry, ok := g.entries[key]
		if !ok {
			g.entries[key] = &guardEntry{done: make(chan struct{}), at: g.now()}
			g.mu.Unlock()
			return nil, true
		}
		g.mu.Unlock()

		<-entry.done
		if entry.result != nil {
			return entry.result, false
		}
		// The earlier attempt failed and released the key; claim it fresh.
	}
}

// Finish publishes the result to any waiters and starts the dedupe window.
func (g *requestGuard) Finish(key string, result *HandoffResult) {
	g.mu.Lock()
	defer g.mu.Unlock()

	entry, ok := g.entries[key]
	if !ok {
		return
	}
	entry.result = result
	entry.finished = true
	entry.at = g.now()
	close(entry.done)
}

// Release drops a claim whose request failed, so a retry runs fresh.
func (g *requestGuard) Release(key string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	entry, ok := g.entries[key]
	if !ok {
		return
	}
	delete(g.entries, key)
	close(entry.done)
}

func (g *requestGuard) prune() {
	cutoff := g.now().Add(-g.window)
	for key, entry := range g.entries {
		if entry.finished && entry.at.Before(cutoff) {
			delete(g.entries, key)
		}
	}
}
