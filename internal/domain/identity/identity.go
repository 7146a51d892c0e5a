// Package identity supplies the verified user identifier attached to orders.
//
// Identity is an explicit capability injected into the order service rather
// than an ambient default: the composer must never invent a user on its own.
package identity

import (
	"context"

	"github.com/go-faster/errors"
)

// ErrUnauthorized is returned when a request's credentials cannot be
// resolved to a user.
var ErrUnauthorized = errors.New("unauthorized")

// Resolver resolves the user identifier to attach to an order. The claimed
// value comes from the request body; implementations decide how much to
// trust it.
type Resolver interface {
	Resolve(ctx context.Context, claimed string) (string, error)
}

// Passthrough trusts the claimed user verbatim. It is selected when no API
// key pepper is configured, leaving authentication disabled.
type Passthrough struct{}

// Resolve returns the claimed user unchanged.
func (Passthrough) Resolve(_ context.Context, claimed string) (string, error) {
	return claimed, nil
}

// apiKeyKey is the context key under which the transport layer stores the
// presented API key.
type apiKeyKey struct{}

// WithAPIKey stores the presented API key on the context for resolvers that
// authenticate requests.
func WithAPIKey(ctx context.Context, key string) context.Context {
	return context.WithValue(ctx, apiKeyKey{}, key)
}

// APIKeyFromContext extracts the presented API key, if any.
func APIKeyFromContext(ctx context.Context) (string, bool) {
	key, ok := ctx.Value(apiKeyKey{}).(string)
	return key, ok && key != ""
}
