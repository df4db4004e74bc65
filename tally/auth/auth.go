// Package auth decides who is calling and whether they
// may change anything. Identities come from the connection,
// never from request bodies.
package auth

import (
	"context"
	"errors"

	"github.com/jrife/tally/utils/log"
	"go.uber.org/zap"
)

// Anonymous is the principal of callers whose
// identity could not be established
const Anonymous Principal = "anonymous"

// ErrUnauthorized is returned when an anonymous caller attempts
// a mutating operation and anonymous callers are not allowed
var ErrUnauthorized = errors.New("anonymous callers may not modify posts")

// Principal identifies a caller
type Principal string

// String returns the principal as a string
func (principal Principal) String() string {
	return string(principal)
}

type key int

const principalKey key = 0

// WithPrincipal attaches principal to the context
func WithPrincipal(ctx context.Context, principal Principal) context.Context {
	return log.WithFields(context.WithValue(ctx, principalKey, principal), zap.String("principal", string(principal)))
}

// FromContext returns the principal attached to the context.
// It returns Anonymous if there isn't one.
func FromContext(ctx context.Context) Principal {
	principal, ok := ctx.Value(principalKey).(Principal)

	if !ok || principal == "" {
		return Anonymous
	}

	return principal
}

// Guard enforces the anonymous access policy. It is
// consulted before any mutating operation touches storage.
type Guard struct {
	allowAnonymous bool
}

// NewGuard creates a guard. The policy can't
// be changed once the guard is created.
func NewGuard(allowAnonymous bool) *Guard {
	return &Guard{allowAnonymous: allowAnonymous}
}

// AllowAnonymous reports whether anonymous
// callers may perform mutating operations
func (guard *Guard) AllowAnonymous() bool {
	return guard.allowAnonymous
}

// Authorize returns the caller's principal if it may perform a
// mutating operation and ErrUnauthorized otherwise
func (guard *Guard) Authorize(ctx context.Context) (Principal, error) {
	principal := FromContext(ctx)

	if principal == Anonymous && !guard.allowAnonymous {
		return principal, ErrUnauthorized
	}

	return principal, nil
}
