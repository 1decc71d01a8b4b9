package store

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"frontdesk.app/call-server/internal/model"
)

type handoffStore struct {
	pool *pgxpool.Pool
}

const handoffColumns = `id, business_id, channel, call_id, conversation_id, customer_phone,
	customer_name, reason, summary, urgency, status, transferred, transferred_to,
	created_at, notified_at`

func (s *handoffStore) Create(ctx context.Context, h *model.HandoffRequest) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO handoff_requests (`+handoffColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		h.ID, h.BusinessID, h.Channel, h.CallID, h.ConversationID, h.CustomerPhone,
		h.CustomerName, h.Reason, h.Summary, h.Urgency, h.Status, h.Transferred,
		h.TransferredTo, h.CreatedAt, h.NotifiedAt)
	return err
}

func (s *handoffStore) GetByID(ctx context.Context, id int64) (*model.HandoffRequest, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+handoffColumns+` FROM handoff_requests WHERE id = $1`, id)
	return scanHandoff(row)
}

func (s *handoffStore) ListByBusiness(ctx context.Context, businessID int64, status *model.HandoffStatus) ([]model.HandoffRequest, error) {
	query := `SELECT ` + handoffColumns + ` FROM handoff_requests WHERE business_id = $1`
	args := []any{businessID}
	if status != nil {
		query += ` AND status = $2`
		args = append(args, *status)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var handoffs []model.HandoffRequest
	for rows.Next() {
		h, err := scanHandoff(rows)
		if err != nil {
			return nil, err
		}
		handoffs = append(handoffs, *h)
	}
	return handoffs, rows.Err()
}

func (s *handoffStore) MarkNotified(ctx context.Context, id int64, at time.Time) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE handoff_requests SET status = $2, notified_at = $3
		 WHERE id = $1 AND status = $4`,
		id, model.HandoffStatusNotified, at, model.HandoffStatusPending)
	return err
}

func (s *handoffStore) MarkTransferred(ctx context.Context, id int64, transferredTo string, at time.Time) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE handoff_requests
		 SET transferred = TRUE, transferred_to = $2, status = $3, notified_at = COALESCE(notified_at, $4)
		 WHERE id = $1 AND status IN ($5, $3)`,
		id, transferredTo, model.HandoffStatusNotified, at, model.HandoffStatusPending)
	return err
}

func (s *handoffStore) UpdateStatus(ctx context.Context, id int64, status model.HandoffStatus) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE handoff_requests SET status = $2 WHERE id = $1`,
		id, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanHandoff(row pgx.Row) (*model.HandoffRequest, error) {
	var h model.HandoffRequest
	err := row.Scan(&h.ID, &h.BusinessID, &h.Channel, &h.CallID, &h.ConversationID,
		&h.CustomerPhone, &h.CustomerName, &h.Reason, &h.Summary, &h.Urgency,
		&h.Status, &h.Transferred, &h.TransferredTo, &h.CreatedAt, &h.NotifiedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &h, nil
}
