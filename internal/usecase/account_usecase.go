// Package usecase contains the application-specific business rules.
// It orchestrates the domain layer to perform tasks.
package usecase

import (
	"context"

	"students/internal/domain/entity"
)

const (
	// DefaultListLimit is the page size used when the caller gives none.
	DefaultListLimit = 50
	// MaxListLimit is the largest page a caller may request.
	MaxListLimit = 100
)

// --- Input DTOs ---

// CreateAccountInput defines the data required to create a student account.
type CreateAccountInput struct {
	FullName       string  `json:"full_name" validate:"required,min=3,max=150"`
	AccessUsername string  `json:"access_username" validate:"required,min=3,max=50,username"`
	Secret         string  `json:"secret" validate:"required,min=6,max=100"`
	Email          string  `json:"email" validate:"required,max=255,email"`
	Note           *string `json:"note" validate:"omitnil,max=5000"`
}

// UpdateAccountInput is a partial update. Nil fields are left untouched;
// a present field is validated even when empty. ClearNote sets the note to NULL.
type UpdateAccountInput struct {
	FullName       *string `json:"full_name" validate:"omitnil,min=3,max=150"`
	AccessUsername *string `json:"access_username" validate:"omitnil,min=3,max=50,username"`
	Secret         *string `json:"secret" validate:"omitnil,min=6,max=100"`
	Email          *string `json:"email" validate:"omitnil,max=255,email"`
	Note           *string `json:"note" validate:"omitnil,max=5000"`
	ClearNote      bool    `json:"-"`
}

// IsEmpty reports whether the patch names no recognised field.
func (in *UpdateAccountInput) IsEmpty() bool {
	return in.FullName == nil &&
		in.AccessUsername == nil &&
		in.Secret == nil &&
		in.Email == nil &&
		in.Note == nil &&
		!in.ClearNote
}

// ListAccountsInput selects one page of accounts.
type ListAccountsInput struct {
	Limit  int
	Offset int
}

// --- Output DTOs ---

// ListAccountsOutput returns one page of accounts plus the total row count.
// Total comes from an independent count query.
type ListAccountsOutput struct {
	Items  []*entity.Account
	Total  int64
	Limit  int
	Offset int
}

// HasMore reports whether rows exist past this page.
func (o *ListAccountsOutput) HasMore() bool {
	if int64(o.Offset) >= o.Total {
		return false
	}

	return int64(o.Limit) < o.Total-int64(o.Offset)
}

// AccountUsecase defines the interface for student account operations.
// Accounts returned by every method have their secret hash cleared.
type AccountUsecase interface {
	Create(ctx context.Context, input *CreateAccountInput) (*entity.Account, error)
	GetByID(ctx context.Context, id int64) (*entity.Account, error)
	List(ctx context.Context, input ListAccountsInput) (*ListAccountsOutput, error)
	UsernameExists(ctx context.Context, username string) (bool, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	Update(ctx context.Context, targetID, callerID int64, input *UpdateAccountInput) (*entity.Account, error)
	Delete(ctx context.Context, targetID, callerID int64) error
}
