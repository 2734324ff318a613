package sqlite

import (
	"context"
	"fmt"

	"github.com/iudanet/authd/internal/models"
)

// RevokeToken adds a refresh token to the denylist
func (s *Storage) RevokeToken(ctx context.Context, token *models.RevokedToken) error {
	query := `
		INSERT OR REPLACE INTO revoked_tokens (jti, user_id, expires_at, revoked_at)
		VALUES (?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		token.JTI,
		token.UserID,
		token.ExpiresAt,
		token.RevokedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}

	return nil
}

// IsRevoked reports whether a jti is in the denylist
func (s *Storage) IsRevoked(ctx context.Context, jti string) (bool, error) {
	query := `SELECT COUNT(1) FROM revoked_tokens WHERE jti = ?`

	var count int
	if err := s.db.QueryRowContext(ctx, query, jti).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to check revoked token: %w", err)
	}

	return count > 0, nil
}

// DeleteExpired removes denylist rows whose tokens have expired anyway
func (s *Storage) DeleteExpired(ctx context.Context) (int, error) {
	query := `DELETE FROM revoked_tokens WHERE expires_at < datetime('now')`

	result, err := s.db.ExecContext(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired tokens: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return int(rows), nil
}
