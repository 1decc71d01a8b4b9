package session

import (
	"context"
	"errors"

	"frontdesk.app/call-server/internal/model"
)

var ErrNotFound = errors.New("call session not found")

// Store tracks in-flight call sessions keyed by the provider's call control
// ID. Register is idempotent: re-registering an existing call ID is a no-op
// and preserves the original start time. Implementations must be safe under
// concurrent webhook deliveries for the same call.
type Store interface {
	Register(ctx context.Context, callID string, businessID int64, from, to string) error
	Get(ctx context.Context, callID string) (*model.CallSession, error)
	Remove(ctx context.Context, callID string) (*model.CallSession, error)
}
