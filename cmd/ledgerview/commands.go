package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/voidshard/ledgerview/pkg/config"
	"github.com/voidshard/ledgerview/pkg/domain"
	"github.com/voidshard/ledgerview/pkg/sink"
	"github.com/voidshard/ledgerview/pkg/store"
)

type summaryCmd struct {
	User string `required:"" help:"User whose linked banks to summarise."`
}

func (c *summaryCmd) Run(cfg *config.Config) error {
	ctx := context.Background()
	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	sum, err := a.agg.Summary(ctx, c.User)
	if err != nil {
		return err
	}
	return printJSON(os.Stdout, sum)
}

type accountCmd struct {
	Link       string `required:"" help:"Linked bank to resolve."`
	Page       int    `help:"Print only this page of the feed (10 rows per page). 0 prints everything."`
	Categories bool   `help:"Print the category breakdown instead of the feed."`
}

func (c *accountCmd) Run(cfg *config.Config) error {
	if c.Page < 0 {
		return fmt.Errorf("page must not be negative")
	}

	ctx := context.Background()
	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	detail, err := a.agg.AccountDetail(ctx, c.Link)
	if err != nil {
		return err
	}

	switch {
	case c.Categories:
		return printJSON(os.Stdout, domain.CountCategories(detail.Transactions))
	case c.Page > 0:
		return printJSON(os.Stdout, struct {
			Account *domain.AccountSnapshot `json:"account"`
			*domain.FeedPage
		}{detail.Account, domain.Paginate(detail.Transactions, c.Page, domain.DefaultPageSize)})
	}
	return printJSON(os.Stdout, detail)
}

type exportCmd struct {
	Link string `required:"" help:"Linked bank whose feed to export."`
	Out  string `default:"jsonfile:out.json" help:"Where to write [jsonfile:/path/file.json es8:http://myelasticsearch:9200]"`
}

func (c *exportCmd) Run(cfg *config.Config) error {
	ctx := context.Background()
	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	out, err := sink.Open(c.Out, a.log)
	if err != nil {
		return err
	}

	detail, err := a.agg.AccountDetail(ctx, c.Link)
	if err != nil {
		return err
	}

	if err := out.Write(ctx, detail.Transactions); err != nil {
		return fmt.Errorf("export feed of %s: %w", c.Link, err)
	}
	a.log.Info("exported feed", "link", c.Link, "records", len(detail.Transactions), "out", c.Out)
	return nil
}

type migrateCmd struct{}

func (c *migrateCmd) Run(cfg *config.Config) error {
	kind, addr, _ := strings.Cut(cfg.Store, ":")
	switch kind {
	case "postgres":
		return store.MigratePostgres(addr)
	case "sqlite":
		// opening a sqlite store migrates it
		s, err := store.NewSQLite(addr)
		if err != nil {
			return err
		}
		return s.Close()
	}
	return fmt.Errorf("store %q has no schema to migrate", cfg.Store)
}
