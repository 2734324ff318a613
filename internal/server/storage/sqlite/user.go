package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/iudanet/authd/internal/models"
	"github.com/iudanet/authd/internal/server/storage"
)

// CreateUser creates a new account in the storage
func (s *Storage) CreateUser(ctx context.Context, account *models.Account) error {
	query := `
		INSERT INTO accounts (id, email, password_hash, first_name, last_name, role, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		account.ID,
		account.Email,
		account.PasswordHash,
		account.FirstName,
		account.LastName,
		string(account.Role),
		account.CreatedAt,
	)

	if err != nil {
		// UNIQUE индекс по email — страховка от гонки двух
		// одновременных регистраций с одним адресом
		if strings.Contains(err.Error(), "UNIQUE constraint failed: accounts.email") {
			return storage.ErrEmailTaken
		}
		return fmt.Errorf("failed to insert account: %w", err)
	}

	return nil
}

// GetUserByEmail retrieves account by normalized email
func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*models.Account, error) {
	query := `
		SELECT id, email, password_hash, first_name, last_name, role, created_at
		FROM accounts
		WHERE email = ?
	`

	return s.scanAccount(s.db.QueryRowContext(ctx, query, email))
}

// GetUserByID retrieves account by ID
func (s *Storage) GetUserByID(ctx context.Context, userID string) (*models.Account, error) {
	query := `
		SELECT id, email, password_hash, first_name, last_name, role, created_at
		FROM accounts
		WHERE id = ?
	`

	return s.scanAccount(s.db.QueryRowContext(ctx, query, userID))
}

// scanAccount читает одну строку accounts
func (s *Storage) scanAccount(row *sql.Row) (*models.Account, error) {
	account := &models.Account{}
	var role string

	err := row.Scan(
		&account.ID,
		&account.Email,
		&account.PasswordHash,
		&account.FirstName,
		&account.LastName,
		&role,
		&account.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	account.Role = models.Role(role)

	return account, nil
}
