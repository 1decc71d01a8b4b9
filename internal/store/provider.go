package store

import "github.com/jackc/pgx/v5/pgxpool"

// Provider hands out the pgx-backed stores sharing one pool.
type Provider struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Provider {
	return &Provider{pool: pool}
}

func (p *Provider) Businesses() BusinessStore {
	return &businessStore{pool: p.pool}
}

func (p *Provider) Handoffs() HandoffStore {
	return &handoffStore{pool: p.pool}
}

func (p *Provider) CallRecords() CallRecordStore {
	return &callRecordStore{pool: p.pool}
}

func (p *Provider) Conversations() ConversationStore {
	return &conversationStore{pool: p.pool}
}
