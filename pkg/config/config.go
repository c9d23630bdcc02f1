package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/voidshard/ledgerview/pkg/crypto"
	"github.com/voidshard/ledgerview/pkg/provider"
)

var (
	storeKinds = []string{"postgres", "sqlite", "jsonfile"}
	plaidEnvs  = []string{"sandbox", "production"}
	logLevels  = []string{"debug", "info", "warn", "error"}
	logFormats = []string{"text", "json"}
	minKeyLen  = 32
)

// ErrInvalid is wrapped by every Validate failure.
var ErrInvalid = errors.New("invalid configuration")

// Config holds options shared by every command. Kong fills it from flags,
// falling back to the environment.
type Config struct {
	Store string `env:"LEDGERVIEW_STORE" default:"sqlite:./data/ledgerview.db" help:"Where linked banks live [postgres:<dsn> sqlite:/path/file.db jsonfile:/path/file.json]"`

	SealKey string `env:"LEDGERVIEW_SEAL_KEY" help:"Key (32+ chars) access tokens are encrypted with at rest. Empty means tokens are stored in the clear."`
	SignKey string `env:"LEDGERVIEW_SIGN_KEY" help:"Key (32+ chars) access tokens are signed with at rest."`

	PlaidClientID     string   `name:"plaid-client-id" env:"PLAID_CLIENT_ID" help:"Plaid client ID."`
	PlaidSecret       string   `name:"plaid-secret" env:"PLAID_SECRET" help:"Plaid secret."`
	PlaidEnv          string   `name:"plaid-env" env:"PLAID_ENV" default:"sandbox" help:"Plaid environment [sandbox production] or a base URL."`
	PlaidCountryCodes []string `name:"plaid-country-codes" env:"PLAID_COUNTRY_CODES" default:"US" help:"Country codes for institution lookups."`

	CallTimeout    time.Duration `env:"LEDGERVIEW_CALL_TIMEOUT" default:"10s" help:"Deadline for each provider or store call."`
	MaxConcurrency int           `env:"LEDGERVIEW_MAX_CONCURRENCY" default:"0" help:"Max banks fetched at once per summary, 0 for no limit."`

	LogLevel  string `env:"LEDGERVIEW_LOG_LEVEL" default:"info" help:"Log level [debug info warn error]."`
	LogFormat string `env:"LEDGERVIEW_LOG_FORMAT" default:"text" help:"Log format [text json]."`
}

// Validate reports every problem with the configuration at once.
func (c *Config) Validate() error {
	var problems []string

	kind, addr, _ := strings.Cut(c.Store, ":")
	if !slices.Contains(storeKinds, kind) {
		problems = append(problems, fmt.Sprintf("invalid store '%s': kind must be one of %v", c.Store, storeKinds))
	} else if addr == "" {
		problems = append(problems, fmt.Sprintf("invalid store '%s': address cannot be empty", c.Store))
	}

	if (c.SealKey == "") != (c.SignKey == "") {
		problems = append(problems, "seal key and sign key must be set together")
	}
	for name, key := range map[string]string{"seal": c.SealKey, "sign": c.SignKey} {
		if key != "" && len(key) < minKeyLen {
			problems = append(problems, fmt.Sprintf("%s key must be at least %d chars, got %d", name, minKeyLen, len(key)))
		}
	}

	if c.PlaidClientID == "" {
		problems = append(problems, "Plaid client ID is required")
	}
	if c.PlaidSecret == "" {
		problems = append(problems, "Plaid secret is required")
	}
	if !slices.Contains(plaidEnvs, c.PlaidEnv) {
		if u, err := url.Parse(c.PlaidEnv); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			problems = append(problems, fmt.Sprintf("invalid Plaid environment '%s': must be one of %v or an http(s) URL", c.PlaidEnv, plaidEnvs))
		}
	}
	if len(c.PlaidCountryCodes) == 0 {
		problems = append(problems, "at least one Plaid country code is required")
	}

	if c.CallTimeout <= 0 {
		problems = append(problems, fmt.Sprintf("invalid call timeout %s: must be positive", c.CallTimeout))
	}
	if c.MaxConcurrency < 0 {
		problems = append(problems, fmt.Sprintf("invalid max concurrency %d: must not be negative", c.MaxConcurrency))
	}

	if !slices.Contains(logLevels, c.LogLevel) {
		problems = append(problems, fmt.Sprintf("invalid log level '%s': must be one of %v", c.LogLevel, logLevels))
	}
	if !slices.Contains(logFormats, c.LogFormat) {
		problems = append(problems, fmt.Sprintf("invalid log format '%s': must be one of %v", c.LogFormat, logFormats))
	}

	if len(problems) > 0 {
		slices.Sort(problems)
		return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(problems, "; "))
	}
	return nil
}

// Logger builds the process logger described by LogLevel and LogFormat.
func (c *Config) Logger(w io.Writer) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}

	if c.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// Sealer returns the credential sealer, or nil when tokens are stored in the
// clear.
func (c *Config) Sealer() (*crypto.Sealer, error) {
	if c.SealKey == "" && c.SignKey == "" {
		return nil, nil
	}
	return crypto.NewSealer(c.SealKey, c.SignKey)
}

// Plaid returns the provider settings for this configuration.
func (c *Config) Plaid(log *slog.Logger) provider.PlaidConfig {
	return provider.PlaidConfig{
		ClientID:     c.PlaidClientID,
		Secret:       c.PlaidSecret,
		Environment:  c.PlaidEnv,
		CountryCodes: c.PlaidCountryCodes,
		Logger:       log,
	}
}
