package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"

	"github.com/voidshard/ledgerview/pkg/domain"
)

// JSONFile is a read-only store loaded from a fixture file, handy for demos
// and local development.
type JSONFile struct {
	banks     []*domain.LinkedBank
	transfers []*domain.Transfer
}

type jsonFixture struct {
	Banks []struct {
		ID          string `json:"id"`
		UserID      string `json:"userId"`
		ShareableID string `json:"shareableId"`
		AccessToken string `json:"accessToken"`
	} `json:"banks"`
	Transfers []struct {
		ID             string          `json:"id"`
		Name           string          `json:"name"`
		Amount         decimal.Decimal `json:"amount"`
		Channel        string          `json:"channel"`
		Category       string          `json:"category"`
		SenderBankID   string          `json:"senderBankId"`
		ReceiverBankID string          `json:"receiverBankId"`
		CreatedAt      time.Time       `json:"createdAt"`
	} `json:"transfers"`
}

func NewJSONFile(filename string) (*JSONFile, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", filename, err)
	}
	return parseJSONFile(data)
}

func parseJSONFile(data []byte) (*JSONFile, error) {
	raw := &jsonFixture{}
	if err := json.Unmarshal(data, raw); err != nil {
		return nil, fmt.Errorf("parse fixture: %w", err)
	}

	f := &JSONFile{}
	for _, b := range raw.Banks {
		f.banks = append(f.banks, &domain.LinkedBank{
			ID:          b.ID,
			UserID:      b.UserID,
			ShareableID: b.ShareableID,
			AccessToken: b.AccessToken,
		})
	}
	for _, t := range raw.Transfers {
		f.transfers = append(f.transfers, &domain.Transfer{
			ID:             t.ID,
			Name:           t.Name,
			Amount:         t.Amount,
			Channel:        t.Channel,
			Category:       t.Category,
			SenderBankID:   t.SenderBankID,
			ReceiverBankID: t.ReceiverBankID,
			CreatedAt:      t.CreatedAt,
		})
	}
	return f, nil
}

func (f *JSONFile) ListLinkedBanks(ctx context.Context, userID string) ([]*domain.LinkedBank, error) {
	out := []*domain.LinkedBank{}
	for _, b := range f.banks {
		if b.UserID == userID {
			cp := *b
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *JSONFile) GetLinkedBank(ctx context.Context, linkID string) (*domain.LinkedBank, error) {
	for _, b := range f.banks {
		if b.ID == linkID {
			cp := *b
			return &cp, nil
		}
	}
	return nil, domain.NewNotFoundError("get linked bank "+linkID, nil)
}

func (f *JSONFile) ListTransfers(ctx context.Context, linkID string) ([]*domain.Transfer, error) {
	out := []*domain.Transfer{}
	for _, t := range f.transfers {
		if t.SenderBankID == linkID || t.ReceiverBankID == linkID {
			cp := *t
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *JSONFile) Close() error {
	return nil
}
