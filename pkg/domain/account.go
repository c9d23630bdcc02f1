package domain

import (
	"github.com/shopspring/decimal"
)

// AccountSnapshot is a point-in-time view of the primary account behind a
// linked bank. Balances are optional; a balance the provider did not report
// stays invalid rather than becoming zero.
type AccountSnapshot struct {
	ID               string              `json:"id"`
	AvailableBalance decimal.NullDecimal `json:"availableBalance"`
	CurrentBalance   decimal.NullDecimal `json:"currentBalance"`
	InstitutionID    string              `json:"institutionId"`
	InstitutionName  string              `json:"institutionName,omitempty"`
	Name             string              `json:"name"`
	OfficialName     string              `json:"officialName"`
	Mask             string              `json:"mask"`
	Type             string              `json:"type"`
	Subtype          string              `json:"subtype"`
	LinkID           string              `json:"linkId"`
	ShareableID      string              `json:"shareableId"`
}

// AggregateSummary covers every linked bank of a user whose snapshot could be
// fetched. Banks that failed are left out entirely.
type AggregateSummary struct {
	Accounts            []*AccountSnapshot `json:"data"`
	TotalBanks          int                `json:"totalBanks"`
	TotalCurrentBalance decimal.Decimal    `json:"totalCurrentBalance"`
}

// NewAggregateSummary totals the given snapshots. A snapshot without a
// current balance counts as zero towards the total.
func NewAggregateSummary(accounts []*AccountSnapshot) *AggregateSummary {
	if accounts == nil {
		accounts = []*AccountSnapshot{}
	}
	total := decimal.Zero
	for _, a := range accounts {
		if a.CurrentBalance.Valid {
			total = total.Add(a.CurrentBalance.Decimal)
		}
	}
	return &AggregateSummary{
		Accounts:            accounts,
		TotalBanks:          len(accounts),
		TotalCurrentBalance: total,
	}
}

// AccountDetail is one linked bank's snapshot together with its merged feed.
type AccountDetail struct {
	Account      *AccountSnapshot     `json:"data"`
	Transactions []*TransactionRecord `json:"transactions"`
}
