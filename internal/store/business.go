package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"frontdesk.app/call-server/internal/model"
)

type businessStore struct {
	pool *pgxpool.Pool
}

const businessColumns = `id, name, phone, handoff_phone, handoff_email`

func (s *businessStore) GetByID(ctx context.Context, id int64) (*model.Business, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+businessColumns+` FROM businesses WHERE id = $1 AND NOT is_deleted`, id)
	return scanBusiness(row)
}

func (s *businessStore) GetByPhone(ctx context.Context, phone string) (*model.Business, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+businessColumns+` FROM businesses WHERE phone = $1 AND NOT is_deleted`, phone)
	return scanBusiness(row)
}

func scanBusiness(row pgx.Row) (*model.Business, error) {
	var b model.Business
	err := row.Scan(&b.ID, &b.Name, &b.Phone, &b.HandoffPhone, &b.HandoffEmail)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &b, nil
}
