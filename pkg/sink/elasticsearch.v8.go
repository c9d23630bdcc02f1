package sink

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/voidshard/ledgerview/pkg/domain"

	"github.com/cenkalti/backoff/v4"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esutil"
)

const (
	esIndex = "ledgerview-transactions"
	esFlush = 2048

	envEsAddr = "ELASTICSEARCH_SERVICE_HOST"
	envEsPort = "ELASTICSEARCH_SERVICE_PORT"
)

// ElasticsearchV8 bulk indexes a feed, one document per record keyed by
// record id, so re-exporting a feed overwrites rather than duplicates.
type ElasticsearchV8 struct {
	addresses []string
	log       *slog.Logger
}

func NewElasticsearchV8(log *slog.Logger, urls ...string) *ElasticsearchV8 {
	if len(urls) == 0 {
		urls = []string{esAddressFromEnv()}
	}
	if log == nil {
		log = slog.Default()
	}
	return &ElasticsearchV8{addresses: urls, log: log.With("component", "sink.es8")}
}

func esAddressFromEnv() string {
	address := os.Getenv(envEsAddr)
	port := os.Getenv(envEsPort)
	if port == "" {
		port = "9200"
	}
	if address == "" {
		address = "localhost"
	}
	return fmt.Sprintf("http://%s:%s", address, port)
}

func (e *ElasticsearchV8) client() (*elasticsearch.Client, error) {
	retryBackoff := backoff.NewExponentialBackOff()

	return elasticsearch.NewClient(elasticsearch.Config{
		Addresses:     e.addresses,
		RetryOnStatus: []int{502, 503, 504, 429},
		RetryBackoff: func(i int) time.Duration {
			if i == 1 {
				retryBackoff.Reset()
			}
			return retryBackoff.NextBackOff()
		},
		MaxRetries: 5,
	})
}

func (e *ElasticsearchV8) Write(ctx context.Context, records []*domain.TransactionRecord) error {
	es, err := e.client()
	if err != nil {
		return fmt.Errorf("create elasticsearch client: %w", err)
	}

	bi, err := esutil.NewBulkIndexer(esutil.BulkIndexerConfig{
		Index:         esIndex,
		FlushBytes:    esFlush,
		Client:        es,
		NumWorkers:    4,
		FlushInterval: 10 * time.Second,
	})
	if err != nil {
		return fmt.Errorf("create bulk indexer: %w", err)
	}

	res, err := es.Indices.Create(esIndex, es.Indices.Create.WithContext(ctx))
	if err != nil {
		e.log.Warn("create index", "index", esIndex, "err", err)
	} else {
		res.Body.Close()
	}

	for _, r := range records {
		data, err := r.JSON()
		if err != nil {
			bi.Close(ctx)
			return fmt.Errorf("encode record %s: %w", r.ID, err)
		}

		err = bi.Add(ctx, esutil.BulkIndexerItem{
			Action:     "index",
			DocumentID: documentID(r),
			Body:       bytes.NewReader(data),
			OnFailure: func(ctx context.Context, item esutil.BulkIndexerItem, res esutil.BulkIndexerResponseItem, err error) {
				if err != nil {
					e.log.Error("index record", "id", item.DocumentID, "err", err)
				} else {
					e.log.Error("index record", "id", item.DocumentID, "type", res.Error.Type, "reason", res.Error.Reason)
				}
			},
		})
		if err != nil {
			bi.Close(ctx)
			return fmt.Errorf("queue record %s: %w", r.ID, err)
		}
	}

	if err := bi.Close(ctx); err != nil {
		return fmt.Errorf("flush bulk indexer: %w", err)
	}

	stats := bi.Stats()
	if stats.NumFailed > 0 {
		return fmt.Errorf("failed indexing %d of %d records", stats.NumFailed, len(records))
	}
	e.log.Info("indexed records", "index", esIndex, "count", stats.NumFlushed)
	return nil
}

// documentID keeps external transactions and transfers from colliding when
// both ledgers happen to reuse an id.
func documentID(r *domain.TransactionRecord) string {
	return string(r.Origin) + ":" + r.ID
}
