package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"frontdesk.app/call-server/internal/model"
)

// MemoryStore is the single-process Store. Sessions the provider never
// hangs up on are bounded by the TTL sweeper.
type MemoryStore struct {
	now      func() time.Time
	sessions map[string]*model.CallSession
	ttl      time.Duration
	mu       sync.RWMutex
}

var _ Store = &MemoryStore{}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]*model.CallSession),
		ttl:      ttl,
		now:      time.Now,
	}
}

func (s *MemoryStore) Register(_ context.Context, callID string, businessID int64, from, to string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.sessions[callID]; exists {
		return nil
	}

	s.sessions[callID] = &model.CallSession{
		CallID:     callID,
		BusinessID: businessID,
		From:       from,
		To:         to,
		StartedAt:  s.now(),
	}
	return nil
}

func (s *MemoryStore) Get(_ context.Context, callID string) (*model.CallSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[callID]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *sess
	return &copied, nil
}

func (s *MemoryStore) Remove(_ context.Context, callID string) (*model.CallSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[callID]
	if !ok {
		return nil, ErrNotFound
	}
	delete(s.sessions, callID)
	return sess, nil
}

func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// StartSweeper drops sessions older than the TTL until ctx is cancelled.
// The provider occasionally never delivers call.hangup (dropped trunks,
// webhook outages); without the sweep the map grows forever.
func (s *MemoryStore) StartSweeper(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := s.sweep(); n > 0 {
					slog.WarnContext(ctx, "purged abandoned call sessions", "count", n, "ttl", s.ttl)
				}
			}
		}
	}()
}

func (s *MemoryStore) sweep() int {
	cutoff := s.now().Add(-s.ttl)

	s.mu.Lock()
	defer s.mu.Unlock()

	purged := 0
	for callID, sess := range s.sessions {
		if sess.StartedAt.Before(cutoff) {
			delete(s.sessions, callID)
			purged++
		}
	}
	return purged
}
