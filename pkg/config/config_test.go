package config

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/alecthomas/kong"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testKey = "0123456789abcdef0123456789abcdef"
	testSig = "fedcba9876543210fedcba9876543210"
)

func valid() Config {
	return Config{
		Store:             "sqlite:./data/ledgerview.db",
		PlaidClientID:     "client",
		PlaidSecret:       "secret",
		PlaidEnv:          "sandbox",
		PlaidCountryCodes: []string{"US"},
		CallTimeout:       10 * time.Second,
		LogLevel:          "info",
		LogFormat:         "text",
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name        string
		modify      func(c *Config)
		wantErr     bool
		errorString string
	}{
		{name: "valid sqlite config", modify: func(c *Config) {}},
		{name: "valid postgres config", modify: func(c *Config) { c.Store = "postgres:postgres://u:p@localhost:5432/ledgerview" }},
		{name: "valid sealed tokens", modify: func(c *Config) { c.SealKey, c.SignKey = testKey, testSig }},
		{name: "plaid base URL", modify: func(c *Config) { c.PlaidEnv = "http://localhost:9999" }},
		{
			name:        "unknown store kind",
			modify:      func(c *Config) { c.Store = "redis:localhost" },
			wantErr:     true,
			errorString: "invalid store 'redis:localhost': kind must be one of [postgres sqlite jsonfile]",
		},
		{
			name:        "store without address",
			modify:      func(c *Config) { c.Store = "jsonfile:" },
			wantErr:     true,
			errorString: "invalid store 'jsonfile:': address cannot be empty",
		},
		{
			name:        "seal key without sign key",
			modify:      func(c *Config) { c.SealKey = testKey },
			wantErr:     true,
			errorString: "seal key and sign key must be set together",
		},
		{
			name:        "short sign key",
			modify:      func(c *Config) { c.SealKey, c.SignKey = testKey, "short" },
			wantErr:     true,
			errorString: "sign key must be at least 32 chars, got 5",
		},
		{
			name:        "missing plaid credentials",
			modify:      func(c *Config) { c.PlaidClientID, c.PlaidSecret = "", "" },
			wantErr:     true,
			errorString: "Plaid client ID is required",
		},
		{
			name:        "bad plaid environment",
			modify:      func(c *Config) { c.PlaidEnv = "development" },
			wantErr:     true,
			errorString: "invalid Plaid environment 'development'",
		},
		{
			name:        "no country codes",
			modify:      func(c *Config) { c.PlaidCountryCodes = nil },
			wantErr:     true,
			errorString: "at least one Plaid country code is required",
		},
		{
			name:        "zero timeout",
			modify:      func(c *Config) { c.CallTimeout = 0 },
			wantErr:     true,
			errorString: "invalid call timeout 0s: must be positive",
		},
		{
			name:        "negative concurrency",
			modify:      func(c *Config) { c.MaxConcurrency = -1 },
			wantErr:     true,
			errorString: "invalid max concurrency -1: must not be negative",
		},
		{
			name:        "bad log level",
			modify:      func(c *Config) { c.LogLevel = "verbose" },
			wantErr:     true,
			errorString: "invalid log level 'verbose'",
		},
		{
			name:        "bad log format",
			modify:      func(c *Config) { c.LogFormat = "xml" },
			wantErr:     true,
			errorString: "invalid log format 'xml'",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.modify(&c)

			err := c.Validate()
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalid)
			assert.Contains(t, err.Error(), tt.errorString)
		})
	}
}

func TestConfig_ValidateReportsEverything(t *testing.T) {
	c := valid()
	c.PlaidSecret = ""
	c.LogFormat = "xml"

	err := c.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Plaid secret is required")
	assert.Contains(t, err.Error(), "invalid log format 'xml'")
}

func TestConfig_FromEnvironment(t *testing.T) {
	t.Setenv("LEDGERVIEW_STORE", "jsonfile:/tmp/banks.json")
	t.Setenv("PLAID_CLIENT_ID", "env-client")
	t.Setenv("PLAID_SECRET", "env-secret")
	t.Setenv("PLAID_COUNTRY_CODES", "US,GB")
	t.Setenv("LEDGERVIEW_CALL_TIMEOUT", "3s")
	t.Setenv("LEDGERVIEW_MAX_CONCURRENCY", "4")

	var cli struct {
		Config Config `embed:""`
	}
	parser, err := kong.New(&cli)
	require.NoError(t, err)
	_, err = parser.Parse([]string{"--log-level=debug"})
	require.NoError(t, err)

	c := cli.Config
	assert.Equal(t, "jsonfile:/tmp/banks.json", c.Store)
	assert.Equal(t, "env-client", c.PlaidClientID)
	assert.Equal(t, "env-secret", c.PlaidSecret)
	assert.Equal(t, "sandbox", c.PlaidEnv)
	assert.Equal(t, []string{"US", "GB"}, c.PlaidCountryCodes)
	assert.Equal(t, 3*time.Second, c.CallTimeout)
	assert.Equal(t, 4, c.MaxConcurrency)
	assert.Equal(t, "debug", c.LogLevel)
	assert.NoError(t, c.Validate())
}

func TestConfig_Logger(t *testing.T) {
	buf := &bytes.Buffer{}
	c := valid()
	c.LogFormat = "json"
	c.LogLevel = "warn"

	log := c.Logger(buf)
	log.Info("hidden")
	log.Warn("shown", "k", "v")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.True(t, strings.HasPrefix(out, "{"))
	assert.Contains(t, out, `"k":"v"`)
}

func TestConfig_Sealer(t *testing.T) {
	c := valid()
	s, err := c.Sealer()
	require.NoError(t, err)
	assert.Nil(t, s)

	c.SealKey, c.SignKey = testKey, testSig
	s, err = c.Sealer()
	require.NoError(t, err)
	require.NotNil(t, s)

	sealed, err := s.Seal("access-sandbox-1")
	require.NoError(t, err)
	opened, err := s.Open(sealed)
	require.NoError(t, err)
	assert.Equal(t, "access-sandbox-1", opened)
}
