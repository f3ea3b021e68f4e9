// Package crypto provides field-level encryption for personally
// identifying submission data. Values are encrypted with AES-GCM and
// tagged with a prefix so cleartext and encrypted representations can
// coexist in the same collection.
package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"strings"
)

// encPrefix marks a stored value as encrypted
const encPrefix = "enc:"

var ErrCiphertextInvalid = errors.New("ciphertext invalid")

// FieldCipher encrypts and decrypts individual record fields
type FieldCipher interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(stored string) (string, error)
	Enabled() bool
}

// IsEncrypted reports whether a stored value carries the encryption marker
func IsEncrypted(value string) bool {
	return strings.HasPrefix(value, encPrefix)
}

// HashKey derives the deterministic lookup digest for a student identity.
// It backs the unique (studentKey, quizId) index regardless of whether the
// identity field itself is stored encrypted.
func HashKey(studentID string) string {
	sum := sha256.Sum256([]byte(strings.TrimSpace(studentID)))
	return hex.EncodeToString(sum[:])
}

type aesFieldCipher struct {
	aead cipher.AEAD
}

// NewAESFieldCipher builds a FieldCipher from a secret passphrase. The
// AES-256 key is the SHA-256 of the passphrase.
func NewAESFieldCipher(secret string) (FieldCipher, error) {
	key := sha256.Sum256([]byte(secret))
	block, err := aes.NewCipher(key[:])
	if err != nil {
		return nil, err
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	return &aesFieldCipher{aead: aead}, nil
}

func (c *aesFieldCipher) Enabled() bool { return true }

func (c *aesFieldCipher) Encrypt(plaintext string) (string, error) {
	nonce := make([]byte, c.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", err
	}
	sealed := c.aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return encPrefix + base64.StdEncoding.EncodeToString(sealed), nil
}

// Decrypt returns cleartext values unchanged, so callers can compare
// identities without caring which representation a record uses.
func (c *aesFieldCipher) Decrypt(stored string) (string, error) {
	if !IsEncrypted(stored) {
		return stored, nil
	}
	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(stored, encPrefix))
	if err != nil {
		return "", ErrCiphertextInvalid
	}
	if len(raw) < c.aead.NonceSize() {
		return "", ErrCiphertextInvalid
	}
	nonce, ciphertext := raw[:c.aead.NonceSize()], raw[c.aead.NonceSize():]
	plaintext, err := c.aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", ErrCiphertextInvalid
	}
	return string(plaintext), nil
}

// noopCipher is used when no encryption key is configured; identities are
// stored in cleartext.
type noopCipher struct{}

// NewNoopCipher returns a FieldCipher that passes values through unchanged
func NewNoopCipher() FieldCipher { return noopCipher{} }

func (noopCipher) Enabled() bool                    { return false }
func (noopCipher) Encrypt(p string) (string, error) { return p, nil }
func (noopCipher) Decrypt(s string) (string, error) { return s, nil }
