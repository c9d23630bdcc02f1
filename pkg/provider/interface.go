package provider

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/voidshard/ledgerview/pkg/domain"
)

// Provider is an external banking-data source.
type Provider interface {
	// Accounts returns the accounts and balances behind an access token.
	Accounts(ctx context.Context, accessToken string) (*Accounts, error)

	// Institution returns display metadata for an institution id.
	Institution(ctx context.Context, id string) (*domain.Institution, error)

	// SyncTransactions returns one page of the incremental transaction feed
	// starting at cursor. An empty cursor starts from the beginning.
	SyncTransactions(ctx context.Context, accessToken, cursor string) (*SyncPage, error)
}

// Accounts is what the provider reports for one access token.
type Accounts struct {
	InstitutionID string
	Accounts      []Account
}

type Account struct {
	ID           string
	Name         string
	OfficialName string
	Mask         string
	Type         string
	Subtype      string
	Available    decimal.NullDecimal
	Current      decimal.NullDecimal
}

// SyncPage is one page of the incremental transaction feed.
type SyncPage struct {
	Added      []Transaction
	NextCursor string
	HasMore    bool
}

type Transaction struct {
	ID             string
	AccountID      string
	Name           string
	Amount         decimal.Decimal
	Date           time.Time
	PaymentChannel string
	Pending        bool
	Categories     []string
	LogoURL        string
}

// Record maps a provider transaction into the merged feed shape. Only the
// first category label is kept.
func (t *Transaction) Record() *domain.TransactionRecord {
	category := ""
	if len(t.Categories) > 0 {
		category = t.Categories[0]
	}
	return &domain.TransactionRecord{
		ID:             t.ID,
		Name:           t.Name,
		Amount:         t.Amount,
		Date:           t.Date,
		PaymentChannel: t.PaymentChannel,
		Category:       category,
		Pending:        t.Pending,
		Origin:         domain.OriginExternal,
		AccountID:      t.AccountID,
		Image:          t.LogoURL,
	}
}
