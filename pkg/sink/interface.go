package sink

import (
	"context"

	"github.com/voidshard/ledgerview/pkg/domain"
)

// Sink receives a merged transaction feed for export.
type Sink interface {
	Write(ctx context.Context, records []*domain.TransactionRecord) error
}
