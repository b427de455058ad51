package auth

import (
	"context"
	"errors"
	"time"

	"github.com/erp/storefront/internal/domain/shared"
)

// RevocationList remembers tokens logged out through the gateway until they expire.
// The guard rejects them even while a cached /me response is still warm.
type RevocationList struct {
	store  shared.KVStore
	hasher *TokenHasher
}

// NewRevocationList stores revocations in store, keyed by token hash
func NewRevocationList(store shared.KVStore, hasher *TokenHasher) *RevocationList {
	return &RevocationList{store: store, hasher: hasher}
}

func (r *RevocationList) key(token string) string {
	return "revoked:" + r.hasher.Hash(token)
}

// Revoke marks token as revoked for ttl. A non-positive ttl is a no-op.
func (r *RevocationList) Revoke(ctx context.Context, token string, ttl time.Duration) error {
	if token == "" || ttl <= 0 {
		return nil
	}
	return r.store.Set(ctx, r.key(token), []byte("1"), ttl)
}

// IsRevoked reports whether token was revoked
func (r *RevocationList) IsRevoked(ctx context.Context, token string) (bool, error) {
	if token == "" {
		return false, nil
	}
	_, err := r.store.Get(ctx, r.key(token))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, shared.ErrKeyNotFound):
		return false, nil
	default:
		return false, err
	}
}
