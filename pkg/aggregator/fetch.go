package aggregator

import (
	"context"
	"errors"
	"fmt"

	"github.com/voidshard/ledgerview/pkg/domain"
	"github.com/voidshard/ledgerview/pkg/provider"
)

// Institution returns display metadata for an institution id.
func (a *Aggregator) Institution(ctx context.Context, id string) (*domain.Institution, error) {
	op := fmt.Sprintf("resolve institution %q", id)
	if id == "" {
		return nil, domain.NewProviderError(op, errors.New("provider reported no institution"))
	}

	inst, err := timed(ctx, a, "institution", func(ctx context.Context) (*domain.Institution, error) {
		return a.provider.Institution(ctx, id)
	})
	if err != nil {
		return nil, domain.NewProviderError(op, err)
	}
	if inst == nil {
		return nil, domain.NewProviderError(op, errors.New("empty response"))
	}
	return inst, nil
}

// Snapshot fetches the primary account of a linked bank together with its
// institution. Either read failing fails the snapshot.
func (a *Aggregator) Snapshot(ctx context.Context, bank *domain.LinkedBank) (*domain.AccountSnapshot, error) {
	op := "fetch snapshot for bank " + bank.ID

	accts, err := timed(ctx, a, "accounts", func(ctx context.Context) (*provider.Accounts, error) {
		return a.provider.Accounts(ctx, bank.AccessToken)
	})
	if err != nil {
		return nil, domain.NewProviderError(op, err)
	}
	if accts == nil || len(accts.Accounts) == 0 {
		return nil, domain.NewProviderError(op, errors.New("provider returned no accounts"))
	}

	// the institution id is only known once accounts have been read
	inst, err := a.Institution(ctx, accts.InstitutionID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	acc := accts.Accounts[0]
	return &domain.AccountSnapshot{
		ID:               acc.ID,
		AvailableBalance: acc.Available,
		CurrentBalance:   acc.Current,
		InstitutionID:    inst.ID,
		InstitutionName:  inst.Name,
		Name:             acc.Name,
		OfficialName:     acc.OfficialName,
		Mask:             acc.Mask,
		Type:             acc.Type,
		Subtype:          acc.Subtype,
		LinkID:           bank.ID,
		ShareableID:      bank.ShareableID,
	}, nil
}

// ExternalTransactions pages through the provider's sync feed from the start
// and returns every transaction it reports. Any failed page discards what was
// gathered so far.
func (a *Aggregator) ExternalTransactions(ctx context.Context, accessToken string) ([]*domain.TransactionRecord, error) {
	records := []*domain.TransactionRecord{}
	cursor := ""

	for page := 1; ; page++ {
		op := fmt.Sprintf("sync transactions page %d", page)

		p, err := timed(ctx, a, "sync_transactions", func(ctx context.Context) (*provider.SyncPage, error) {
			return a.provider.SyncTransactions(ctx, accessToken, cursor)
		})
		if err != nil {
			return nil, domain.NewProviderError(op, err)
		}
		if p == nil {
			return nil, domain.NewProviderError(op, errors.New("empty response"))
		}

		for i := range p.Added {
			records = append(records, p.Added[i].Record())
		}

		if !p.HasMore {
			return records, nil
		}
		if p.NextCursor == cursor {
			return nil, domain.NewProviderError(op, fmt.Errorf("cursor %q did not advance", cursor))
		}
		cursor = p.NextCursor
	}
}

// InternalTransfers reads the transfers a linked bank sent or received and
// maps them into feed records with their direction.
func (a *Aggregator) InternalTransfers(ctx context.Context, linkID string) ([]*domain.TransactionRecord, error) {
	transfers, err := timed(ctx, a, "list_transfers", func(ctx context.Context) ([]*domain.Transfer, error) {
		return a.store.ListTransfers(ctx, linkID)
	})
	if err != nil {
		return nil, domain.NewStoreError("list transfers for bank "+linkID, err)
	}

	records := make([]*domain.TransactionRecord, 0, len(transfers))
	for _, t := range transfers {
		records = append(records, t.Record(linkID))
	}
	return records, nil
}
