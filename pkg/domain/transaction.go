package domain

import (
	"encoding/json"
	"slices"
	"time"

	"github.com/shopspring/decimal"
)

// Origin says which source a TransactionRecord came from.
type Origin string

const (
	OriginExternal         Origin = "external"
	OriginInternalTransfer Origin = "internal-transfer"
)

// Direction of an internal transfer relative to the linked bank it was read for.
type Direction string

const (
	DirectionDebit  Direction = "debit"
	DirectionCredit Direction = "credit"
)

// TransactionRecord is a single posted or pending transaction from either
// the provider feed or the internal transfer ledger.
type TransactionRecord struct {
	ID   string `json:"id"`
	Name string `json:"name"`

	// Amount is signed and in the currency unit the source returned it in.
	Amount decimal.Decimal `json:"amount"`
	Date   time.Time       `json:"date"`

	PaymentChannel string `json:"paymentChannel"`
	Category       string `json:"category"`
	Pending        bool   `json:"pending"`

	Origin    Origin    `json:"origin"`
	Direction Direction `json:"direction,omitempty"`

	// set for external records only
	AccountID string `json:"accountId,omitempty"`
	Image     string `json:"image,omitempty"`
}

func (t *TransactionRecord) JSON() ([]byte, error) {
	return json.Marshal(t)
}

// Transfer is a transfer as recorded by the internal ledger. A transfer
// appears in the feed of both the sending and the receiving linked bank.
type Transfer struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	Amount         decimal.Decimal `json:"amount"`
	Channel        string          `json:"channel"`
	Category       string          `json:"category"`
	SenderBankID   string          `json:"senderBankId"`
	ReceiverBankID string          `json:"receiverBankId"`
	CreatedAt      time.Time       `json:"createdAt"`
}

// Record maps the transfer into the feed of linkID. The transfer is a debit
// for the sender and a credit for anyone else.
func (t *Transfer) Record(linkID string) *TransactionRecord {
	dir := DirectionCredit
	if t.SenderBankID == linkID {
		dir = DirectionDebit
	}
	return &TransactionRecord{
		ID:             t.ID,
		Name:           t.Name,
		Amount:         t.Amount,
		Date:           t.CreatedAt,
		PaymentChannel: t.Channel,
		Category:       t.Category,
		Origin:         OriginInternalTransfer,
		Direction:      dir,
	}
}

// SortByDateDesc orders records most recent first, in place. Records on the
// same date keep their relative order.
func SortByDateDesc(records []*TransactionRecord) {
	slices.SortStableFunc(records, func(a, b *TransactionRecord) int {
		return b.Date.Compare(a.Date)
	})
}

// Merge concatenates feeds and fully re-sorts the result. The inputs are not
// assumed to be sorted.
func Merge(feeds ...[]*TransactionRecord) []*TransactionRecord {
	n := 0
	for _, f := range feeds {
		n += len(f)
	}
	all := make([]*TransactionRecord, 0, n)
	for _, f := range feeds {
		all = append(all, f...)
	}
	SortByDateDesc(all)
	return all
}
