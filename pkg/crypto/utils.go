package crypto

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/gtank/cryptopasta"
)

const minKeyLen = 32

// ErrTampered means sealed data failed its signature check.
var ErrTampered = errors.New("signature validation failed")

var enc = base64.RawURLEncoding

// Sealer encrypts and signs provider access credentials so they can sit in
// a store at rest, and reverses that on read.
type Sealer struct {
	encKey  *[32]byte
	signKey *[32]byte
}

// NewSealer builds a Sealer from an encryption key and a signing key, each at
// least 32 chars.
func NewSealer(encKey, signKey string) (*Sealer, error) {
	ek, err := toKey(encKey)
	if err != nil {
		return nil, fmt.Errorf("encryption key: %w", err)
	}
	sk, err := toKey(signKey)
	if err != nil {
		return nil, fmt.Errorf("signing key: %w", err)
	}
	return &Sealer{encKey: ek, signKey: sk}, nil
}

// NewRandomKey returns a random key suitable for NewSealer.
func NewRandomKey() (string, error) {
	raw := make([]byte, minKeyLen+1)
	if _, err := io.ReadFull(rand.Reader, raw); err != nil {
		return "", err
	}
	return enc.EncodeToString(raw), nil
}

// Seal returns "<ciphertext>.<hmac>", both base64 encoded.
func (s *Sealer) Seal(plaintext string) (string, error) {
	ciphertext, err := cryptopasta.Encrypt([]byte(plaintext), s.encKey)
	if err != nil {
		return "", fmt.Errorf("encrypt: %w", err)
	}
	mac := cryptopasta.GenerateHMAC(ciphertext, s.signKey)
	return enc.EncodeToString(ciphertext) + "." + enc.EncodeToString(mac), nil
}

// Open checks the signature of sealed data and decrypts it.
func (s *Sealer) Open(sealed string) (string, error) {
	body, sig, ok := strings.Cut(sealed, ".")
	if !ok {
		return "", fmt.Errorf("open: missing signature")
	}

	ciphertext, err := enc.DecodeString(body)
	if err != nil {
		return "", fmt.Errorf("open: decode ciphertext: %w", err)
	}
	mac, err := enc.DecodeString(sig)
	if err != nil {
		return "", fmt.Errorf("open: decode signature: %w", err)
	}

	if !cryptopasta.CheckHMAC(ciphertext, mac, s.signKey) {
		return "", ErrTampered
	}

	plaintext, err := cryptopasta.Decrypt(ciphertext, s.encKey)
	if err != nil {
		return "", fmt.Errorf("open: decrypt: %w", err)
	}
	return string(plaintext), nil
}

// toKey takes the first 32 bytes of s, as cryptopasta wants a *[32]byte.
func toKey(s string) (*[32]byte, error) {
	if len(s) < minKeyLen {
		return nil, fmt.Errorf("want at least %d chars, got %d", minKeyLen, len(s))
	}
	k := &[32]byte{}
	copy(k[:], s)
	return k, nil
}
