package store

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

type callRecordStore struct {
	pool *pgxpool.Pool
}

// MarkTransferredToHuman flags the call record for a transferred call. The
// record is written asynchronously by the call pipeline and may not exist
// yet; zero rows updated is not an error.
func (s *callRecordStore) MarkTransferredToHuman(ctx context.Context, callID string) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE call_records SET transferred_to_human = TRUE WHERE call_id = $1`, callID)
	return err
}

type conversationStore struct {
	pool *pgxpool.Pool
}

// SetStatus moves a conversation into the given status unless it already
// reached a terminal one.
func (s *conversationStore) SetStatus(ctx context.Context, conversationID, status string) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE conversations SET status = $2
		 WHERE id = $1 AND status NOT IN ('closed', 'handoff')`,
		conversationID, status)
	return err
}
