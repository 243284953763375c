package token

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
)

var errCiphertextTooShort = errors.New("ciphertext too short")

// fieldCipher seals short claim values with AES-256-GCM. The key is the
// SHA-256 of the signing secret; each value gets a fresh 12-byte nonce that
// is prepended to the ciphertext.
type fieldCipher struct {
	aead cipher.AEAD
}

func newFieldCipher(secret string) (*fieldCipher, error) {
	key := sha256.Sum256([]byte(secret))

	block, err := aes.NewCipher(key[:])
	if err != nil {
		return nil, fmt.Errorf("new cipher: %w", err)
	}

	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("new gcm: %w", err)
	}

	return &fieldCipher{aead: aead}, nil
}

func (c *fieldCipher) encrypt(plain string) (string, error) {
	nonce := make([]byte, c.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("read nonce: %w", err)
	}

	sealed := c.aead.Seal(nonce, nonce, []byte(plain), nil)
	return base64.RawURLEncoding.EncodeToString(sealed), nil
}

func (c *fieldCipher) decrypt(encoded string) (string, error) {
	sealed, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("decode: %w", err)
	}

	size := c.aead.NonceSize()
	if len(sealed) < size {
		return "", errCiphertextTooShort
	}

	plain, err := c.aead.Open(nil, sealed[:size], sealed[size:], nil)
	if err != nil {
		return "", fmt.Errorf("open: %w", err)
	}

	return string(plain), nil
}
