/*Basic command structure*/
package main

import (
	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"

	"github.com/voidshard/ledgerview/pkg/config"
)

// cli commands / args available
var cli struct {
	Config config.Config `embed:""`

	Serve   serveCmd   `cmd:"" help:"Serve the JSON API."`
	Summary summaryCmd `cmd:"" help:"Print every linked bank of a user with totals."`
	Account accountCmd `cmd:"" help:"Print one linked bank with its merged transaction feed."`
	Export  exportCmd  `cmd:"" help:"Write one linked bank's merged transaction feed to a sink."`
	Migrate migrateCmd `cmd:"" help:"Apply schema migrations to the configured store."`
	Keygen  keygenCmd  `cmd:"" help:"Print a new seal and sign key pair."`
	Seal    sealCmd    `cmd:"" help:"Seal an access token with the configured keys for storage."`
}

func main() {
	_ = godotenv.Load()

	ctx := kong.Parse(&cli,
		kong.Name("ledgerview"),
		kong.Description("Aggregates balances and transactions across linked banks."),
	)
	err := ctx.Run(&cli.Config)
	ctx.FatalIfErrorf(err)
}
