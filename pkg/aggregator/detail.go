package aggregator

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/voidshard/ledgerview/pkg/domain"
)

// AccountDetail returns one linked bank's snapshot with its external
// transactions and internal transfers merged, most recent first. Unlike
// Summary every part must succeed; the first failure cancels the rest.
func (a *Aggregator) AccountDetail(ctx context.Context, linkID string) (*domain.AccountDetail, error) {
	op := "resolve account " + linkID
	if strings.TrimSpace(linkID) == "" {
		return nil, domain.NewValidationError("resolve account", "link id is required")
	}

	bank, err := timed(ctx, a, "get_bank", func(ctx context.Context) (*domain.LinkedBank, error) {
		return a.store.GetLinkedBank(ctx, linkID)
	})
	if err != nil {
		// a not found from the store keeps its kind
		return nil, domain.NewStoreError(op, err)
	}
	if bank == nil {
		return nil, domain.NewNotFoundError(op, nil)
	}

	var (
		snap     *domain.AccountSnapshot
		external []*domain.TransactionRecord
		internal []*domain.TransactionRecord
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		snap, err = a.Snapshot(gctx, bank)
		return err
	})
	g.Go(func() error {
		var err error
		internal, err = a.InternalTransfers(gctx, bank.ID)
		return err
	})
	g.Go(func() error {
		var err error
		external, err = a.ExternalTransactions(gctx, bank.AccessToken)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &domain.AccountDetail{
		Account:      snap,
		Transactions: domain.Merge(external, internal),
	}, nil
}
