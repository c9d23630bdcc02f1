package provider

import (
	"fmt"
	"time"

	"github.com/plaid/plaid-go/v20/plaid"
	"github.com/shopspring/decimal"

	"github.com/voidshard/ledgerview/pkg/domain"
)

const plaidDate = "2006-01-02"

func parsePlaidAccounts(resp plaid.AccountsGetResponse) *Accounts {
	item := resp.GetItem()
	out := &Accounts{
		InstitutionID: item.GetInstitutionId(),
		Accounts:      []Account{},
	}

	for _, a := range resp.GetAccounts() {
		bal := a.GetBalances()
		out.Accounts = append(out.Accounts, Account{
			ID:           a.GetAccountId(),
			Name:         a.GetName(),
			OfficialName: a.GetOfficialName(),
			Mask:         a.GetMask(),
			Type:         string(a.GetType()),
			Subtype:      string(a.GetSubtype()),
			Available:    nullDecimal(bal.GetAvailableOk()),
			Current:      nullDecimal(bal.GetCurrentOk()),
		})
	}

	return out
}

// nullDecimal keeps "not reported" apart from zero.
func nullDecimal(v *float64, ok bool) decimal.NullDecimal {
	if !ok || v == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(decimal.NewFromFloat(*v))
}

func parsePlaidInstitution(in plaid.Institution) *domain.Institution {
	return &domain.Institution{
		ID:   in.GetInstitutionId(),
		Name: in.GetName(),
		Logo: in.GetLogo(),
		URL:  in.GetUrl(),
	}
}

func parsePlaidSyncPage(resp plaid.TransactionsSyncResponse) (*SyncPage, error) {
	page := &SyncPage{
		Added:      []Transaction{},
		NextCursor: resp.GetNextCursor(),
		HasMore:    resp.GetHasMore(),
	}

	for _, t := range resp.GetAdded() {
		date, err := time.Parse(plaidDate, t.GetDate())
		if err != nil {
			return nil, fmt.Errorf("transaction %s: bad date %q: %w", t.GetTransactionId(), t.GetDate(), err)
		}

		page.Added = append(page.Added, Transaction{
			ID:             t.GetTransactionId(),
			AccountID:      t.GetAccountId(),
			Name:           t.GetName(),
			Amount:         decimal.NewFromFloat(t.GetAmount()),
			Date:           date,
			PaymentChannel: t.GetPaymentChannel(),
			Pending:        t.GetPending(),
			Categories:     t.GetCategory(),
			LogoURL:        t.GetLogoUrl(),
		})
	}

	return page, nil
}
