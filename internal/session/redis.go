package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"frontdesk.app/call-server/internal/model"
)

// RedisStore shares the session registry between processes. The per-key
// expiry doubles as the abandoned-session bound, so no sweeper is needed.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

var _ Store = &RedisStore{}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func sessionKey(callID string) string {
	return "callsession:" + callID
}

func (s *RedisStore) Register(ctx context.Context, callID string, businessID int64, from, to string) error {
	sess := model.CallSession{
		CallID:     callID,
		BusinessID: businessID,
		From:       from,
		To:         to,
		StartedAt:  time.Now(),
	}

	payload, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("encoding session: %w", err)
	}

	// SETNX keeps the first registration; duplicate deliveries are no-ops.
	if err := s.client.SetNX(ctx, sessionKey(callID), payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("registering session %s: %w", callID, err)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, callID string) (*model.CallSession, error) {
	payload, err := s.client.Get(ctx, sessionKey(callID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("getting session %s: %w", callID, err)
	}
	return decodeSession(payload)
}

func (s *RedisStore) Remove(ctx context.Context, callID string) (*model.CallSession, error) {
	payload, err := s.client.GetDel(ctx, sessionKey(callID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("removing session %s: %w", callID, err)
	}
	return decodeSession(payload)
}

func decodeSession(payload []byte) (*model.CallSession, error) {
	var sess model.CallSession
	if err := json.Unmarshal(payload, &sess); err != nil {
		return nil, fmt.Errorf("decoding session: %w", err)
	}
	return &sess, nil
}
