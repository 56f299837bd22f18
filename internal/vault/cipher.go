package vault

import (
	"encoding/base64"
	"errors"
	"fmt"
)

// Cipher reversibly transforms a credential payload for storage.
type Cipher interface {
	Encrypt(plain []byte) (string, error)
	Decrypt(cipher string) ([]byte, error)
}

// defaultSecret keys the XOR stream. Overridable per-vault, but the
// default matches the deployed extension so records are portable.
const defaultSecret = "liv8_internal_secret_key_change_in_prod"

// XORCipher obfuscates payloads with a repeating-key XOR stream and
// base64 encoding.
//
// This is NOT cryptographically strong. It exists so credentials are
// not stored as plain readable text in a local store, not to resist a
// motivated attacker. Deployments that need real confidentiality
// should use the keychain-backed store, or substitute an AEAD Cipher.
type XORCipher struct {
	key []byte
}

// NewXORCipher returns an XORCipher keyed by secret, or the built-in
// default when secret is empty.
func NewXORCipher(secret string) *XORCipher {
	if secret == "" {
		secret = defaultSecret
	}
	return &XORCipher{key: []byte(secret)}
}

func (c *XORCipher) Encrypt(plain []byte) (string, error) {
	if len(c.key) == 0 {
		return "", errors.New("vault: empty cipher key")
	}
	return base64.StdEncoding.EncodeToString(c.xor(plain)), nil
}

func (c *XORCipher) Decrypt(cipher string) ([]byte, error) {
	if len(c.key) == 0 {
		return nil, errors.New("vault: empty cipher key")
	}
	raw, err := base64.StdEncoding.DecodeString(cipher)
	if err != nil {
		return nil, fmt.Errorf("vault: malformed cipher text: %w", err)
	}
	return c.xor(raw), nil
}

func (c *XORCipher) xor(in []byte) []byte {
	out := make([]byte, len(in))
	for i, b := range in {
		out[i] = b ^ c.key[i%len(c.key)]
	}
	return out
}
