package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voidshard/ledgerview/pkg/config"
	"github.com/voidshard/ledgerview/pkg/crypto"
)

func TestWriteKeys(t *testing.T) {
	buf := &bytes.Buffer{}
	require.NoError(t, writeKeys(buf))

	env := map[string]string{}
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		k, v, ok := strings.Cut(line, "=")
		require.True(t, ok, line)
		env[k] = v
	}
	require.Len(t, env, 2)

	_, err := crypto.NewSealer(env["LEDGERVIEW_SEAL_KEY"], env["LEDGERVIEW_SIGN_KEY"])
	assert.NoError(t, err)
	assert.NotEqual(t, env["LEDGERVIEW_SEAL_KEY"], env["LEDGERVIEW_SIGN_KEY"])
}

func TestSealToken(t *testing.T) {
	cfg := &config.Config{
		SealKey: "0123456789abcdef0123456789abcdef",
		SignKey: "fedcba9876543210fedcba9876543210",
	}
	sealer, err := cfg.Sealer()
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
		stdin string
	}{
		{"argument", "access-sandbox-1", ""},
		{"stdin", "-", "access-sandbox-1\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			require.NoError(t, sealToken(buf, strings.NewReader(tt.stdin), cfg, tt.token))

			opened, err := sealer.Open(strings.TrimSpace(buf.String()))
			require.NoError(t, err)
			assert.Equal(t, "access-sandbox-1", opened)
		})
	}
}

func TestSealTokenNeedsKeys(t *testing.T) {
	err := sealToken(&bytes.Buffer{}, strings.NewReader(""), &config.Config{}, "access-sandbox-1")
	assert.Error(t, err)

	cfg := &config.Config{
		SealKey: "0123456789abcdef0123456789abcdef",
		SignKey: "fedcba9876543210fedcba9876543210",
	}
	err = sealToken(&bytes.Buffer{}, strings.NewReader("\n"), cfg, "-")
	assert.Error(t, err)
}
