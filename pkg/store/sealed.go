package store

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/voidshard/ledgerview/pkg/crypto"
	"github.com/voidshard/ledgerview/pkg/domain"
)

// Sealed decorates a Store whose access tokens are encrypted at rest. Tokens
// are opened on read so callers only ever see plaintext.
type Sealed struct {
	Store
	sealer *crypto.Sealer
	log    *slog.Logger
}

func NewSealed(s Store, sealer *crypto.Sealer, log *slog.Logger) *Sealed {
	if log == nil {
		log = slog.Default()
	}
	return &Sealed{Store: s, sealer: sealer, log: log.With("component", "store.sealed")}
}

// ListLinkedBanks skips banks whose token cannot be opened. One bad row
// must not hide the user's other banks.
func (s *Sealed) ListLinkedBanks(ctx context.Context, userID string) ([]*domain.LinkedBank, error) {
	banks, err := s.Store.ListLinkedBanks(ctx, userID)
	if err != nil {
		return nil, err
	}

	opened := make([]*domain.LinkedBank, 0, len(banks))
	for _, b := range banks {
		if err := s.open(b); err != nil {
			s.log.Warn("skipping bank with unreadable token", "user", userID, "link", b.ID, "err", err)
			continue
		}
		opened = append(opened, b)
	}
	return opened, nil
}

func (s *Sealed) GetLinkedBank(ctx context.Context, linkID string) (*domain.LinkedBank, error) {
	b, err := s.Store.GetLinkedBank(ctx, linkID)
	if err != nil {
		return nil, err
	}
	if err := s.open(b); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *Sealed) open(b *domain.LinkedBank) error {
	token, err := s.sealer.Open(b.AccessToken)
	if err != nil {
		return fmt.Errorf("open access token of bank %s: %w", b.ID, err)
	}
	b.AccessToken = token
	return nil
}
