package storage

import (
	"context"

	"github.com/iudanet/authd/internal/models"
)

// UserStorage defines interface for account persistence
type UserStorage interface {
	// CreateUser creates a new account in the storage.
	// The unique index on email is the correctness backstop against
	// concurrent signups: a UNIQUE violation surfaces as ErrEmailTaken.
	CreateUser(ctx context.Context, account *models.Account) error

	// GetUserByEmail retrieves account by normalized email
	// Returns ErrUserNotFound if account doesn't exist
	GetUserByEmail(ctx context.Context, email string) (*models.Account, error)

	// GetUserByID retrieves account by ID
	// Returns ErrUserNotFound if account doesn't exist
	GetUserByID(ctx context.Context, userID string) (*models.Account, error)
}
