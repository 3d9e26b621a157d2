// Package repository defines the interfaces for the persistence layer.
// These interfaces act as a contract between the domain/application layers and the infrastructure layer.
package repository

import (
	"context"

	"students/internal/domain/entity"
)

// AccountRepository defines the persistence operations on student accounts.
// Implementations translate storage-level unique violations into
// domainerrors.ErrUsernameTaken / ErrEmailTaken / ErrAccountConflict and a
// missing row into domainerrors.ErrAccountNotFound.
type AccountRepository interface {
	// FindByID retrieves a single account by its ID, always reading from the primary.
	FindByID(ctx context.Context, id int64) (*entity.Account, error)

	// FindByUsername retrieves a single account, including its secret hash, by lower-cased username.
	FindByUsername(ctx context.Context, username string) (*entity.Account, error)

	// List returns a page of accounts ordered by creation time, most recent first.
	List(ctx context.Context, limit, offset int) ([]*entity.Account, error)

	// Count returns the total number of accounts.
	Count(ctx context.Context) (int64, error)

	// UsernameExists reports whether an account already uses the lower-cased username.
	UsernameExists(ctx context.Context, username string) (bool, error)

	// EmailExists reports whether an account already uses the lower-cased email.
	EmailExists(ctx context.Context, email string) (bool, error)

	// Create persists a new account and fills in its ID and CreatedAt.
	Create(ctx context.Context, account *entity.Account) error

	// Update applies a partial change set to the account with the given ID.
	Update(ctx context.Context, id int64, changes *entity.AccountChanges) error

	// Delete permanently removes the account with the given ID.
	Delete(ctx context.Context, id int64) error
}
