package auth

import (
	"encoding/hex"

	"golang.org/x/crypto/blake2b"
)

// TokenHasher derives stable cache keys from bearer tokens so raw tokens never
// reach the key-value store.
type TokenHasher struct {
	key []byte
}

// NewTokenHasher creates a hasher. A non-empty secret keys the hash (max 64 bytes are used).
func NewTokenHasher(secret string) *TokenHasher {
	key := []byte(secret)
	if len(key) > blake2b.Size {
		key = key[:blake2b.Size]
	}
	return &TokenHasher{key: key}
}

// Hash returns the hex BLAKE2b-256 digest of token
func (h *TokenHasher) Hash(token string) string {
	// New256 only fails for keys longer than 64 bytes
	d, err := blake2b.New256(h.key)
	if err != nil {
		panic(err)
	}
	d.Write([]byte(token))
	return hex.EncodeToString(d.Sum(nil))
}
