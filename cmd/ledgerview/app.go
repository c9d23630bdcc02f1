package main

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"

	"github.com/voidshard/ledgerview/pkg/aggregator"
	"github.com/voidshard/ledgerview/pkg/config"
	"github.com/voidshard/ledgerview/pkg/provider"
	"github.com/voidshard/ledgerview/pkg/store"
)

// app is everything a command needs once configuration is loaded.
type app struct {
	agg   *aggregator.Aggregator
	store store.Store
	log   *slog.Logger
}

func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	log := cfg.Logger(os.Stderr)
	slog.SetDefault(log)

	sealer, err := cfg.Sealer()
	if err != nil {
		return nil, err
	}

	st, err := store.Open(ctx, cfg.Store)
	if err != nil {
		return nil, err
	}
	if sealer != nil {
		st = store.NewSealed(st, sealer, log)
	}

	agg := aggregator.New(
		st,
		provider.NewPlaid(cfg.Plaid(log)),
		aggregator.WithCallTimeout(cfg.CallTimeout),
		aggregator.WithMaxConcurrency(cfg.MaxConcurrency),
		aggregator.WithLogger(log),
	)

	return &app{agg: agg, store: st, log: log}, nil
}

func (a *app) Close() error {
	return a.store.Close()
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
