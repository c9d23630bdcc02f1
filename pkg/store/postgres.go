package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/voidshard/ledgerview/pkg/domain"
)

const (
	pgListBanks = `SELECT id, user_id, shareable_id, access_token
		FROM banks WHERE user_id = $1 ORDER BY created_at, id`

	pgGetBank = `SELECT id, user_id, shareable_id, access_token
		FROM banks WHERE id = $1`

	pgListTransfers = `SELECT id, name, amount::text, channel, category, sender_bank_id, receiver_bank_id, created_at
		FROM transfers WHERE sender_bank_id = $1 OR receiver_bank_id = $1`
)

// Postgres reads linked banks and transfers from a Postgres database.
type Postgres struct {
	db *pgxpool.Pool
}

func NewPostgres(ctx context.Context, dsn string) (*Postgres, error) {
	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("unable to parse database config: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	return &Postgres{db: pool}, nil
}

func (p *Postgres) ListLinkedBanks(ctx context.Context, userID string) ([]*domain.LinkedBank, error) {
	rows, err := p.db.Query(ctx, pgListBanks, userID)
	if err != nil {
		return nil, fmt.Errorf("query banks: %w", err)
	}
	defer rows.Close()

	banks := []*domain.LinkedBank{}
	for rows.Next() {
		b := &domain.LinkedBank{}
		if err := rows.Scan(&b.ID, &b.UserID, &b.ShareableID, &b.AccessToken); err != nil {
			return nil, fmt.Errorf("scan bank: %w", err)
		}
		banks = append(banks, b)
	}
	return banks, rows.Err()
}

func (p *Postgres) GetLinkedBank(ctx context.Context, linkID string) (*domain.LinkedBank, error) {
	b := &domain.LinkedBank{}
	err := p.db.QueryRow(ctx, pgGetBank, linkID).Scan(&b.ID, &b.UserID, &b.ShareableID, &b.AccessToken)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.NewNotFoundError("get linked bank "+linkID, err)
	}
	if err != nil {
		return nil, fmt.Errorf("query bank: %w", err)
	}
	return b, nil
}

func (p *Postgres) ListTransfers(ctx context.Context, linkID string) ([]*domain.Transfer, error) {
	rows, err := p.db.Query(ctx, pgListTransfers, linkID)
	if err != nil {
		return nil, fmt.Errorf("query transfers: %w", err)
	}
	defer rows.Close()

	transfers := []*domain.Transfer{}
	for rows.Next() {
		t := &domain.Transfer{}
		var amount string
		err := rows.Scan(&t.ID, &t.Name, &amount, &t.Channel, &t.Category, &t.SenderBankID, &t.ReceiverBankID, &t.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan transfer: %w", err)
		}
		if t.Amount, err = parseAmount(amount); err != nil {
			return nil, fmt.Errorf("transfer %s: %w", t.ID, err)
		}
		transfers = append(transfers, t)
	}
	return transfers, rows.Err()
}

func (p *Postgres) Close() error {
	p.db.Close()
	return nil
}
