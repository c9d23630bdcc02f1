package aggregator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"

	"github.com/voidshard/ledgerview/pkg/domain"
	"github.com/voidshard/ledgerview/pkg/provider"
)

var errInvalidToken = errors.New("ITEM_LOGIN_REQUIRED")

type fakeStore struct {
	banks     []*domain.LinkedBank
	transfers map[string][]*domain.Transfer

	listErr     error
	getErr      error
	transferErr error

	calls int32
}

func (f *fakeStore) ListLinkedBanks(ctx context.Context, userID string) ([]*domain.LinkedBank, error) {
	atomic.AddInt32(&f.calls, 1)
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := []*domain.LinkedBank{}
	for _, b := range f.banks {
		if b.UserID == userID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *fakeStore) GetLinkedBank(ctx context.Context, linkID string) (*domain.LinkedBank, error) {
	atomic.AddInt32(&f.calls, 1)
	if f.getErr != nil {
		return nil, f.getErr
	}
	for _, b := range f.banks {
		if b.ID == linkID {
			return b, nil
		}
	}
	return nil, domain.NewNotFoundError("get linked bank "+linkID, nil)
}

func (f *fakeStore) ListTransfers(ctx context.Context, linkID string) ([]*domain.Transfer, error) {
	atomic.AddInt32(&f.calls, 1)
	if f.transferErr != nil {
		return nil, f.transferErr
	}
	return f.transfers[linkID], nil
}

func (f *fakeStore) Close() error { return nil }

type fakeProvider struct {
	accounts     map[string]*provider.Accounts // by access token
	delay        map[string]time.Duration      // by access token
	institutions map[string]*domain.Institution
	pages        map[string]*provider.SyncPage // by cursor

	institutionErr error
	syncErr        error

	calls       int32
	inFlight    int32
	maxInFlight int32

	mu      sync.Mutex
	cursors []string
}

func (f *fakeProvider) Accounts(ctx context.Context, accessToken string) (*provider.Accounts, error) {
	atomic.AddInt32(&f.calls, 1)
	n := atomic.AddInt32(&f.inFlight, 1)
	defer atomic.AddInt32(&f.inFlight, -1)
	for {
		m := atomic.LoadInt32(&f.maxInFlight)
		if n <= m || atomic.CompareAndSwapInt32(&f.maxInFlight, m, n) {
			break
		}
	}

	if d := f.delay[accessToken]; d > 0 {
		select {
		case <-time.After(d):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	a, ok := f.accounts[accessToken]
	if !ok {
		return nil, errInvalidToken
	}
	return a, nil
}

func (f *fakeProvider) Institution(ctx context.Context, id string) (*domain.Institution, error) {
	atomic.AddInt32(&f.calls, 1)
	if f.institutionErr != nil {
		return nil, f.institutionErr
	}
	inst, ok := f.institutions[id]
	if !ok {
		return nil, fmt.Errorf("INVALID_INSTITUTION %s", id)
	}
	return inst, nil
}

func (f *fakeProvider) SyncTransactions(ctx context.Context, accessToken, cursor string) (*provider.SyncPage, error) {
	atomic.AddInt32(&f.calls, 1)
	f.mu.Lock()
	f.cursors = append(f.cursors, cursor)
	f.mu.Unlock()

	if f.syncErr != nil {
		return nil, f.syncErr
	}
	p, ok := f.pages[cursor]
	if !ok {
		return nil, fmt.Errorf("INVALID_CURSOR %q", cursor)
	}
	return p, nil
}

func day(d int) time.Time {
	return time.Date(2024, 3, d, 0, 0, 0, 0, time.UTC)
}

func money(s string) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.RequireFromString(s))
}

// world builds a store and provider where user-1 has n linked banks, each
// with one account holding a current balance of (i+1)*10.
func world(n int) (*fakeStore, *fakeProvider) {
	s := &fakeStore{transfers: map[string][]*domain.Transfer{}}
	p := &fakeProvider{
		accounts:     map[string]*provider.Accounts{},
		delay:        map[string]time.Duration{},
		institutions: map[string]*domain.Institution{"ins_1": {ID: "ins_1", Name: "First Platypus Bank"}},
		pages:        map[string]*provider.SyncPage{"": {}},
	}
	for i := 0; i < n; i++ {
		token := fmt.Sprintf("access-%d", i)
		s.banks = append(s.banks, &domain.LinkedBank{
			ID:          fmt.Sprintf("link-%d", i),
			UserID:      "user-1",
			ShareableID: fmt.Sprintf("share-%d", i),
			AccessToken: token,
		})
		p.accounts[token] = &provider.Accounts{
			InstitutionID: "ins_1",
			Accounts: []provider.Account{{
				ID:        fmt.Sprintf("acc-%d", i),
				Name:      "Plaid Checking",
				Mask:      "0000",
				Type:      "depository",
				Subtype:   "checking",
				Available: money(fmt.Sprintf("%d", (i+1)*10)),
				Current:   money(fmt.Sprintf("%d", (i+1)*10)),
			}},
		}
	}
	return s, p
}
