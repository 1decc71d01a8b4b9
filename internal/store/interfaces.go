package store

import (
	"context"
	"errors"
	"time"

	"frontdesk.app/call-server/internal/model"
)

var ErrNotFound = errors.New("not found")

// BusinessStore reads business records owned by the dashboard.
type BusinessStore interface {
	GetByID(ctx context.Context, id int64) (*model.Business, error)
	GetByPhone(ctx context.Context, phone string) (*model.Business, error)
}

// HandoffStore persists escalation records. Status changes are guarded so a
// handoff never regresses to an earlier status.
type HandoffStore interface {
	Create(ctx context.Context, handoff *model.HandoffRequest) error
	GetByID(ctx context.Context, id int64) (*model.HandoffRequest, error)
	ListByBusiness(ctx context.Context, businessID int64, status *model.HandoffStatus) ([]model.HandoffRequest, error)
	// MarkNotified moves a pending handoff to notified; a no-op past that.
	MarkNotified(ctx context.Context, id int64, at time.Time) error
	// MarkTransferred records a successful live-call transfer.
	MarkTransferred(ctx context.Context, id int64, transferredTo string, at time.Time) error
	UpdateStatus(ctx context.Context, id int64, status model.HandoffStatus) error
}

// CallRecordStore updates call rows owned elsewhere; writes are best-effort
// and tolerate the row not existing yet.
type CallRecordStore interface {
	MarkTransferredToHuman(ctx context.Context, callID string) error
}

// ConversationStore updates conversation rows owned elsewhere; writes
// tolerate the conversation already being in a terminal status.
type ConversationStore interface {
	SetStatus(ctx context.Context, conversationID, status string) error
}
