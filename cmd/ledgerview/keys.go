package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/voidshard/ledgerview/pkg/config"
	"github.com/voidshard/ledgerview/pkg/crypto"
)

type keygenCmd struct{}

func (c *keygenCmd) Run(cfg *config.Config) error {
	return writeKeys(os.Stdout)
}

// writeKeys prints a fresh key pair in .env form.
func writeKeys(w io.Writer) error {
	seal, err := crypto.NewRandomKey()
	if err != nil {
		return err
	}
	sign, err := crypto.NewRandomKey()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "LEDGERVIEW_SEAL_KEY=%s\nLEDGERVIEW_SIGN_KEY=%s\n", seal, sign)
	return err
}

type sealCmd struct {
	Token string `arg:"" help:"Access token to seal for storage, or - to read it from stdin."`
}

func (c *sealCmd) Run(cfg *config.Config) error {
	return sealToken(os.Stdout, os.Stdin, cfg, c.Token)
}

func sealToken(w io.Writer, r io.Reader, cfg *config.Config, token string) error {
	sealer, err := cfg.Sealer()
	if err != nil {
		return err
	}
	if sealer == nil {
		return fmt.Errorf("LEDGERVIEW_SEAL_KEY and LEDGERVIEW_SIGN_KEY must be set to seal tokens")
	}

	if token == "-" {
		line, err := bufio.NewReader(r).ReadString('\n')
		if err != nil && err != io.EOF {
			return fmt.Errorf("read token: %w", err)
		}
		token = strings.TrimSpace(line)
	}
	if token == "" {
		return fmt.Errorf("token cannot be empty")
	}

	sealed, err := sealer.Seal(token)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, sealed)
	return err
}
