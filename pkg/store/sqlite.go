package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"

	"github.com/voidshard/ledgerview/pkg/domain"

	_ "modernc.org/sqlite"
)

const (
	sqliteListBanks = `SELECT id, user_id, shareable_id, access_token
		FROM banks WHERE user_id = ? ORDER BY created_at, id`

	sqliteGetBank = `SELECT id, user_id, shareable_id, access_token
		FROM banks WHERE id = ?`

	sqliteListTransfers = `SELECT id, name, amount, channel, category, sender_bank_id, receiver_bank_id, created_at
		FROM transfers WHERE sender_bank_id = ?1 OR receiver_bank_id = ?1`
)

// SQLite reads linked banks and transfers from a local SQLite file. The
// schema is migrated on open.
type SQLite struct {
	db *sql.DB
}

func NewSQLite(dbPath string) (*SQLite, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := MigrateSQLite(dbPath); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLite{db: db}, nil
}

func (s *SQLite) ListLinkedBanks(ctx context.Context, userID string) ([]*domain.LinkedBank, error) {
	rows, err := s.db.QueryContext(ctx, sqliteListBanks, userID)
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

func (s *SQLite) GetLinkedBank(ctx context.Context, linkID string) (*domain.LinkedBank, error) {
	b := &domain.LinkedBank{}
	err := s.db.QueryRowContext(ctx, sqliteGetBank, linkID).Scan(&b.ID, &b.UserID, &b.ShareableID, &b.AccessToken)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NewNotFoundError("get linked bank "+linkID, err)
	}
	if err != nil {
		return nil, fmt.Errorf("query bank: %w", err)
	}
	return b, nil
}

func (s *SQLite) ListTransfers(ctx context.Context, linkID string) ([]*domain.Transfer, error) {
	rows, err := s.db.QueryContext(ctx, sqliteListTransfers, linkID)
	if err != nil {
		return nil, fmt.Errorf("query transfers: %w", err)
	}
	defer rows.Close()

	transfers := []*domain.Transfer{}
	for rows.Next() {
		t := &domain.Transfer{}
		var amount, created string
		err := rows.Scan(&t.ID, &t.Name, &amount, &t.Channel, &t.Category, &t.SenderBankID, &t.ReceiverBankID, &created)
		if err != nil {
			return nil, fmt.Errorf("scan transfer: %w", err)
		}
		if t.Amount, err = parseAmount(amount); err != nil {
			return nil, fmt.Errorf("transfer %s: %w", t.ID, err)
		}
		if t.CreatedAt, err = time.Parse(time.RFC3339Nano, created); err != nil {
			return nil, fmt.Errorf("transfer %s: bad created_at %q: %w", t.ID, created, err)
		}
		transfers = append(transfers, t)
	}
	return transfers, rows.Err()
}

func (s *SQLite) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func parseAmount(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("bad amount %q: %w", s, err)
	}
	return d, nil
}
