package storage

import (
	"context"

	"github.com/iudanet/authd/internal/models"
)

// TokenStorage defines interface for the refresh-token denylist.
// Tokens themselves are stateless signed artifacts; only revocations
// are persisted, keyed by the token's jti claim.
type TokenStorage interface {
	// RevokeToken adds a refresh token to the denylist
	// Revoking the same jti twice is not an error
	RevokeToken(ctx context.Context, token *models.RevokedToken) error

	// IsRevoked reports whether a jti is in the denylist
	IsRevoked(ctx context.Context, jti string) (bool, error)

	// DeleteExpired removes denylist rows whose tokens have expired anyway
	// Returns number of deleted rows
	DeleteExpired(ctx context.Context) (int, error)
}
