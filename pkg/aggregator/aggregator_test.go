package aggregator

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voidshard/ledgerview/pkg/crypto"
	"github.com/voidshard/ledgerview/pkg/domain"
	"github.com/voidshard/ledgerview/pkg/provider"
	"github.com/voidshard/ledgerview/pkg/store"
)

func TestSummary(t *testing.T) {
	s, p := world(3)
	a := New(s, p)

	sum, err := a.Summary(context.Background(), "user-1")
	require.NoError(t, err)

	assert.Equal(t, 3, sum.TotalBanks)
	require.Len(t, sum.Accounts, 3)
	assert.True(t, decimal.NewFromInt(60).Equal(sum.TotalCurrentBalance))

	first := sum.Accounts[0]
	assert.Equal(t, "acc-0", first.ID)
	assert.Equal(t, "link-0", first.LinkID)
	assert.Equal(t, "share-0", first.ShareableID)
	assert.Equal(t, "ins_1", first.InstitutionID)
	assert.Equal(t, "First Platypus Bank", first.InstitutionName)
}

func TestSummaryDropsFailedBanks(t *testing.T) {
	s, p := world(5)
	delete(p.accounts, "access-1")
	delete(p.accounts, "access-3")
	a := New(s, p)

	sum, err := a.Summary(context.Background(), "user-1")
	require.NoError(t, err)

	assert.Equal(t, 3, sum.TotalBanks)
	require.Len(t, sum.Accounts, 3)
	assert.Equal(t, []string{"link-0", "link-2", "link-4"}, linkIDs(sum.Accounts))
	assert.True(t, decimal.NewFromInt(10+30+50).Equal(sum.TotalCurrentBalance))
}

func TestSummaryAllBanksFail(t *testing.T) {
	s, p := world(2)
	p.institutionErr = errors.New("RATE_LIMIT_EXCEEDED")
	a := New(s, p)

	sum, err := a.Summary(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, 0, sum.TotalBanks)
	assert.Empty(t, sum.Accounts)
	assert.True(t, sum.TotalCurrentBalance.IsZero())
}

func TestSummaryNoBanks(t *testing.T) {
	s, p := world(2)
	a := New(s, p)

	sum, err := a.Summary(context.Background(), "user-without-banks")
	require.NoError(t, err)

	assert.NotNil(t, sum.Accounts)
	assert.Len(t, sum.Accounts, 0)
	assert.Equal(t, 0, sum.TotalBanks)
	assert.True(t, sum.TotalCurrentBalance.IsZero())
	assert.Equal(t, int32(0), atomic.LoadInt32(&p.calls))
}

func TestSummaryRequiresUser(t *testing.T) {
	for _, userID := range []string{"", "   "} {
		s, p := world(1)
		a := New(s, p)

		_, err := a.Summary(context.Background(), userID)
		assert.ErrorIs(t, err, domain.ErrValidation)
		assert.Equal(t, int32(0), atomic.LoadInt32(&s.calls))
		assert.Equal(t, int32(0), atomic.LoadInt32(&p.calls))
	}
}

func TestSummaryStoreDown(t *testing.T) {
	s, p := world(1)
	s.listErr = errors.New("connection refused")
	a := New(s, p)

	_, err := a.Summary(context.Background(), "user-1")
	assert.ErrorIs(t, err, domain.ErrStore)
	assert.Equal(t, int32(0), atomic.LoadInt32(&p.calls))
}

func TestSummarySlowBankTimesOut(t *testing.T) {
	s, p := world(3)
	p.delay["access-1"] = time.Minute
	a := New(s, p, WithCallTimeout(50*time.Millisecond))

	start := time.Now()
	sum, err := a.Summary(context.Background(), "user-1")
	require.NoError(t, err)

	assert.Less(t, time.Since(start), 5*time.Second)
	assert.Equal(t, []string{"link-0", "link-2"}, linkIDs(sum.Accounts))
	assert.Equal(t, 2, sum.TotalBanks)
}

func TestSummaryKeepsStoreOrder(t *testing.T) {
	s, p := world(5)
	// later banks answer first
	for i := 0; i < 5; i++ {
		p.delay[fmt.Sprintf("access-%d", i)] = time.Duration(5-i) * 10 * time.Millisecond
	}
	a := New(s, p)

	sum, err := a.Summary(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"link-0", "link-1", "link-2", "link-3", "link-4"}, linkIDs(sum.Accounts))
}

func TestSummaryMaxConcurrency(t *testing.T) {
	s, p := world(8)
	for i := 0; i < 8; i++ {
		p.delay[fmt.Sprintf("access-%d", i)] = 20 * time.Millisecond
	}
	a := New(s, p, WithMaxConcurrency(2))

	sum, err := a.Summary(context.Background(), "user-1")
	require.NoError(t, err)

	assert.Equal(t, 8, sum.TotalBanks)
	assert.LessOrEqual(t, atomic.LoadInt32(&p.maxInFlight), int32(2))
	assert.True(t, decimal.NewFromInt(360).Equal(sum.TotalCurrentBalance))
}

func TestSummaryCancelled(t *testing.T) {
	s, p := world(2)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(s, p).Summary(ctx, "user-1")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSnapshot(t *testing.T) {
	s, p := world(1)
	p.accounts["access-0"].Accounts[0].Available = decimal.NullDecimal{}
	p.accounts["access-0"].Accounts = append(p.accounts["access-0"].Accounts, provider.Account{ID: "acc-savings"})
	a := New(s, p)

	snap, err := a.Snapshot(context.Background(), s.banks[0])
	require.NoError(t, err)

	assert.Equal(t, "acc-0", snap.ID)
	assert.False(t, snap.AvailableBalance.Valid)
	assert.True(t, snap.CurrentBalance.Valid)
	assert.Equal(t, "checking", snap.Subtype)
}

func TestSnapshotFailures(t *testing.T) {
	tests := []struct {
		name  string
		setup func(p *fakeProvider)
	}{
		{"bad token", func(p *fakeProvider) { delete(p.accounts, "access-0") }},
		{"no accounts", func(p *fakeProvider) { p.accounts["access-0"].Accounts = nil }},
		{"no institution id", func(p *fakeProvider) { p.accounts["access-0"].InstitutionID = "" }},
		{"institution fails", func(p *fakeProvider) { p.institutionErr = errors.New("INTERNAL_SERVER_ERROR") }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, p := world(1)
			tt.setup(p)

			snap, err := New(s, p).Snapshot(context.Background(), s.banks[0])
			assert.Nil(t, snap)
			assert.ErrorIs(t, err, domain.ErrProvider)
		})
	}
}

func TestInstitution(t *testing.T) {
	_, p := world(0)
	a := New(&fakeStore{}, p)

	inst, err := a.Institution(context.Background(), "ins_1")
	require.NoError(t, err)
	assert.Equal(t, "First Platypus Bank", inst.Name)

	_, err = a.Institution(context.Background(), "ins_missing")
	assert.ErrorIs(t, err, domain.ErrProvider)

	_, err = a.Institution(context.Background(), "")
	assert.ErrorIs(t, err, domain.ErrProvider)
}

func linkIDs(accounts []*domain.AccountSnapshot) []string {
	out := []string{}
	for _, a := range accounts {
		out = append(out, a.LinkID)
	}
	return out
}

func TestSummarySealedStoreSkipsUnreadableToken(t *testing.T) {
	s, p := world(3)

	key, err := crypto.NewRandomKey()
	require.NoError(t, err)
	sig, err := crypto.NewRandomKey()
	require.NoError(t, err)
	sealer, err := crypto.NewSealer(key, sig)
	require.NoError(t, err)

	for _, b := range s.banks {
		b.AccessToken, err = sealer.Seal(b.AccessToken)
		require.NoError(t, err)
	}
	s.banks[1].AccessToken = "corrupted"

	a := New(store.NewSealed(s, sealer, nil), p)

	sum, err := a.Summary(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"link-0", "link-2"}, linkIDs(sum.Accounts))
	assert.True(t, decimal.NewFromInt(10+30).Equal(sum.TotalCurrentBalance))
}
