package store

import (
	"context"

	"github.com/voidshard/ledgerview/pkg/domain"
)

// Store gives read access to linked banks and the internal transfer ledger.
type Store interface {
	// ListLinkedBanks returns every bank linked by a user, possibly none.
	ListLinkedBanks(ctx context.Context, userID string) ([]*domain.LinkedBank, error)

	// GetLinkedBank returns one linked bank. A missing link is reported with
	// an error wrapping domain.ErrNotFound.
	GetLinkedBank(ctx context.Context, linkID string) (*domain.LinkedBank, error)

	// ListTransfers returns every transfer the link sent or received.
	ListTransfers(ctx context.Context, linkID string) ([]*domain.Transfer, error)

	Close() error
}
