// authctl — операторская утилита authd.
// Создает admin аккаунт напрямую в хранилище, минуя HTTP и политику
// admin-секрета. Нужна для первоначальной настройки, когда ADMIN_SECRET
// еще не раздавался.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"golang.org/x/term"

	"github.com/iudanet/authd/internal/crypto"
	"github.com/iudanet/authd/internal/models"
	"github.com/iudanet/authd/internal/server/storage"
	"github.com/iudanet/authd/internal/server/storage/sqlite"
	"github.com/iudanet/authd/internal/validation"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "authctl: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	fs := flag.NewFlagSet("authctl", flag.ExitOnError)
	dbPath := fs.String("d", "authd.db", "path to SQLite database file")
	email := fs.String("email", "", "admin account email")
	firstName := fs.String("first-name", "Admin", "first name")
	lastName := fs.String("last-name", "Admin", "last name")
	if err := fs.Parse(os.Args[1:]); err != nil {
		return err
	}

	normalized := validation.NormalizeEmail(*email)
	if err := validation.ValidateEmail(normalized); err != nil {
		return err
	}

	password, err := readPassword("Password: ")
	if err != nil {
		return err
	}
	if err := validation.ValidatePassword(password); err != nil {
		return err
	}

	confirm, err := readPassword("Confirm password: ")
	if err != nil {
		return err
	}
	if password != confirm {
		return errors.New("passwords do not match")
	}

	passwordHash, err := crypto.HashPassword(password)
	if err != nil {
		return err
	}

	ctx := context.Background()

	store, err := sqlite.New(ctx, *dbPath)
	if err != nil {
		return fmt.Errorf("failed to open storage: %w", err)
	}
	defer store.Close()

	account := &models.Account{
		ID:           uuid.New().String(),
		Email:        normalized,
		PasswordHash: passwordHash,
		FirstName:    *firstName,
		LastName:     *lastName,
		Role:         models.RoleAdmin,
		CreatedAt:    time.Now(),
	}

	if err := store.CreateUser(ctx, account); err != nil {
		if errors.Is(err, storage.ErrEmailTaken) {
			return fmt.Errorf("account %s already exists", normalized)
		}
		return err
	}

	fmt.Printf("admin account created: %s (%s)\n", account.Email, account.ID)
	return nil
}

// readPassword читает пароль без эха терминала
func readPassword(prompt string) (string, error) {
	fmt.Print(prompt)
	fd := int(os.Stdin.Fd())
	pwBytes, err := term.ReadPassword(fd)
	fmt.Println("")
	if err != nil {
		return "", err
	}
	return string(pwBytes), nil
}
