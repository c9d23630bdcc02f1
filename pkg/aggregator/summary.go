package aggregator

import (
	"context"
	"strings"
	"sync"

	"golang.org/x/sync/semaphore"

	"github.com/voidshard/ledgerview/pkg/domain"
)

// Summary fetches a snapshot of every bank the user has linked and totals
// them. Banks whose snapshot cannot be fetched are logged and left out; only
// failing to list the banks fails the call.
func (a *Aggregator) Summary(ctx context.Context, userID string) (*domain.AggregateSummary, error) {
	const op = "summarise accounts"
	if strings.TrimSpace(userID) == "" {
		return nil, domain.NewValidationError(op, "user id is required")
	}

	banks, err := timed(ctx, a, "list_banks", func(ctx context.Context) ([]*domain.LinkedBank, error) {
		return a.store.ListLinkedBanks(ctx, userID)
	})
	if err != nil {
		return nil, domain.NewStoreError(op, err)
	}
	if len(banks) == 0 {
		return domain.NewAggregateSummary(nil), nil
	}

	var sem *semaphore.Weighted
	if a.maxConcurrency > 0 {
		sem = semaphore.NewWeighted(a.maxConcurrency)
	}

	// each goroutine owns exactly one slot
	slots := make([]*domain.AccountSnapshot, len(banks))

	var wg sync.WaitGroup
	for i, bank := range banks {
		wg.Add(1)
		go func(i int, bank *domain.LinkedBank) {
			defer wg.Done()

			if sem != nil {
				if err := sem.Acquire(ctx, 1); err != nil {
					a.drop(userID, bank, err)
					return
				}
				defer sem.Release(1)
			}

			snap, err := a.Snapshot(ctx, bank)
			if err != nil {
				a.drop(userID, bank, err)
				return
			}
			bankFetches.WithLabelValues("ok").Inc()
			slots[i] = snap
		}(i, bank)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	accounts := make([]*domain.AccountSnapshot, 0, len(slots))
	for _, s := range slots {
		if s != nil {
			accounts = append(accounts, s)
		}
	}
	return domain.NewAggregateSummary(accounts), nil
}

func (a *Aggregator) drop(userID string, bank *domain.LinkedBank, err error) {
	bankFetches.WithLabelValues("failed").Inc()
	a.log.Warn("dropping bank from summary", "user", userID, "link", bank.ID, "err", err)
}
