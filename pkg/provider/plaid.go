package provider

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/plaid/plaid-go/v20/plaid"

	"github.com/voidshard/ledgerview/pkg/domain"
)

// https://plaid.com/docs/api/

const (
	retries = 4
)

// check it meets the interface
var _ Provider = &Plaid{}

// PlaidConfig configures a Plaid client.
type PlaidConfig struct {
	ClientID string
	Secret   string

	// Environment is "sandbox", "production" or a base URL.
	Environment string

	// CountryCodes used for institution lookups, default US.
	CountryCodes []string

	Logger *slog.Logger
}

// Plaid talks to the Plaid API. Transient failures (network, 429, 5xx) are
// retried with exponential backoff; anything else fails straight away.
type Plaid struct {
	api       *plaid.PlaidApiService
	countries []plaid.CountryCode
	log       *slog.Logger

	newBackOff func() backoff.BackOff
}

func NewPlaid(cfg PlaidConfig) *Plaid {
	conf := plaid.NewConfiguration()
	conf.AddDefaultHeader("PLAID-CLIENT-ID", cfg.ClientID)
	conf.AddDefaultHeader("PLAID-SECRET", cfg.Secret)
	conf.UseEnvironment(environment(cfg.Environment))

	countries := []plaid.CountryCode{}
	for _, c := range cfg.CountryCodes {
		countries = append(countries, plaid.CountryCode(strings.ToUpper(c)))
	}
	if len(countries) == 0 {
		countries = append(countries, plaid.COUNTRYCODE_US)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Plaid{
		api:       plaid.NewAPIClient(conf).PlaidApi,
		countries: countries,
		log:       logger.With("component", "plaid"),
		newBackOff: func() backoff.BackOff {
			return backoff.NewExponentialBackOff()
		},
	}
}

func environment(name string) plaid.Environment {
	switch strings.ToLower(name) {
	case "", "sandbox":
		return plaid.Sandbox
	case "production":
		return plaid.Production
	}
	return plaid.Environment(name) // a base URL, eg. a local mock
}

func (p *Plaid) Accounts(ctx context.Context, accessToken string) (*Accounts, error) {
	var resp plaid.AccountsGetResponse

	err := p.do(ctx, "accounts get", func() (*http.Response, error) {
		req := plaid.NewAccountsGetRequest(accessToken)
		r, httpResp, err := p.api.AccountsGet(ctx).AccountsGetRequest(*req).Execute()
		resp = r
		return httpResp, err
	})
	if err != nil {
		return nil, err
	}

	return parsePlaidAccounts(resp), nil
}

func (p *Plaid) Institution(ctx context.Context, id string) (*domain.Institution, error) {
	var resp plaid.InstitutionsGetByIdResponse

	err := p.do(ctx, "institutions get by id", func() (*http.Response, error) {
		req := plaid.NewInstitutionsGetByIdRequest(id, p.countries)
		opts := plaid.NewInstitutionsGetByIdRequestOptions()
		opts.SetIncludeOptionalMetadata(true) // logo & url
		req.SetOptions(*opts)

		r, httpResp, err := p.api.InstitutionsGetById(ctx).InstitutionsGetByIdRequest(*req).Execute()
		resp = r
		return httpResp, err
	})
	if err != nil {
		return nil, err
	}

	return parsePlaidInstitution(resp.GetInstitution()), nil
}

func (p *Plaid) SyncTransactions(ctx context.Context, accessToken, cursor string) (*SyncPage, error) {
	var resp plaid.TransactionsSyncResponse

	err := p.do(ctx, "transactions sync", func() (*http.Response, error) {
		req := plaid.NewTransactionsSyncRequest(accessToken)
		if cursor != "" {
			req.SetCursor(cursor)
		}
		r, httpResp, err := p.api.TransactionsSync(ctx).TransactionsSyncRequest(*req).Execute()
		resp = r
		return httpResp, err
	})
	if err != nil {
		return nil, err
	}

	return parsePlaidSyncPage(resp)
}

// do runs call, retrying while the failure looks transient.
func (p *Plaid) do(ctx context.Context, op string, call func() (*http.Response, error)) error {
	b := backoff.WithContext(backoff.WithMaxRetries(p.newBackOff(), retries), ctx)

	err := backoff.RetryNotify(
		func() error {
			httpResp, err := call()
			if err == nil {
				return nil
			}
			err = describe(op, httpResp, err)
			if ctx.Err() != nil || !retryable(httpResp) {
				return backoff.Permanent(err)
			}
			return err
		},
		b,
		func(err error, wait time.Duration) {
			p.log.WarnContext(ctx, "plaid call failed, retrying", "op", op, "error", err, "wait", wait)
		},
	)
	return err
}

// retryable reports if a failed call is worth repeating. No response at all
// means the request never got an answer (network trouble).
func retryable(resp *http.Response) bool {
	if resp == nil {
		return true
	}
	return resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500
}

func describe(op string, resp *http.Response, err error) error {
	status := 0
	if resp != nil {
		status = resp.StatusCode
	}

	if perr, convErr := plaid.ToPlaidError(err); convErr == nil && perr.GetErrorCode() != "" {
		return fmt.Errorf("%s: status %d: %s: %s", op, status, perr.GetErrorCode(), perr.GetErrorMessage())
	}
	if status != 0 {
		return fmt.Errorf("%s: status %d: %w", op, status, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
