package identity

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
)

// KeyInfo holds the stored data for a provisioned API key.
type KeyInfo struct {
	ID      string
	KeyHash string
	User    string
	Scopes  []string
}

// KeyRepository provides lookup of API keys by their HMAC-SHA256 hash.
type KeyRepository interface {
	FindByHash(ctx context.Context, hash string) (*KeyInfo, error)
}

// APIKeyResolver authenticates requests via HMAC-SHA256 hashed API keys and
// resolves the order's user from the key's owner, ignoring the claimed value.
type APIKeyResolver struct {
	keys   KeyRepository
	pepper []byte
}

// NewAPIKeyResolver creates an APIKeyResolver with the given repository and
// HMAC pepper.
func NewAPIKeyResolver(keys KeyRepository, pepper []byte) *APIKeyResolver {
	return &APIKeyResolver{
		keys:   keys,
		pepper: pepper,
	}
}

// HashKey computes the hex HMAC-SHA256 of an API key under the pepper.
// Shared with provisioning tools so stored hashes match lookups.
func HashKey(key, pepper []byte) string {
	mac := hmac.New(sha256.New, pepper)
	mac.Write(key)
	return hex.EncodeToString(mac.Sum(nil))
}

// Resolve authenticates the API key presented on the context and returns the
// key owner's user identifier. The stored hash is re-compared in constant
// time: the lookup already matched, but the repository could return a
// stale or wrong row.
func (r *APIKeyResolver) Resolve(ctx context.Context, _ string) (string, error) {
	key, ok := APIKeyFromContext(ctx)
	if !ok {
		return "", ErrUnauthorized
	}

	mac := hmac.New(sha256.New, r.pepper)
	mac.Write([]byte(key))
	hash := mac.Sum(nil)

	info, err := r.keys.FindByHash(ctx, hex.EncodeToString(hash))
	if err != nil {
		return "", ErrUnauthorized
	}

	stored, err := hex.DecodeString(info.KeyHash)
	if err != nil {
		return "", ErrUnauthorized
	}
	if subtle.ConstantTimeCompare(hash, stored) != 1 {
		return "", ErrUnauthorized
	}

	return info.User, nil
}
