// Package impl contains the implementation of the application's business logic.
package impl

import (
	"context"
	"log/slog"
	"strings"

	deliverycontext "students/internal/delivery/context"
	"students/internal/domain/entity"
	domainerrors "students/internal/domain/errors"
	"students/internal/domain/repository"
	"students/internal/domain/service"
	"students/internal/usecase"
	"students/internal/validation"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// accountService implements the AccountUsecase interface.
type accountService struct {
	accountRepo repository.AccountRepository
	hasher      service.PasswordHasher
	validate    *validator.Validate
	logger      *slog.Logger
}

// AccountServiceParams holds dependencies for AccountService, injected by Fx.
type AccountServiceParams struct {
	fx.In

	AccountRepo repository.AccountRepository
	Hasher      service.PasswordHasher
	Validate    *validator.Validate
	Logger      *slog.Logger
}

// NewAccountService is the constructor for accountService.
func NewAccountService(params AccountServiceParams) usecase.AccountUsecase {
	return &accountService{
		accountRepo: params.AccountRepo,
		hasher:      params.Hasher,
		validate:    params.Validate,
		logger:      params.Logger,
	}
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *accountService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// Create validates the input, enforces uniqueness, hashes the secret and
// returns the stored record re-read from the primary.
func (srv *accountService) Create(ctx context.Context, input *usecase.CreateAccountInput) (*entity.Account, error) {
	normalized := *input
	normalized.FullName = strings.TrimSpace(input.FullName)
	normalized.AccessUsername = foldCase(input.AccessUsername)
	normalized.Email = foldCase(input.Email)
	normalized.Note = normalizeNote(input.Note)

	if err := validation.Struct(srv.validate, &normalized); err != nil {
		return nil, err
	}

	if err := srv.ensureUsernameFree(ctx, normalized.AccessUsername); err != nil {
		return nil, err
	}
	if err := srv.ensureEmailFree(ctx, normalized.Email); err != nil {
		return nil, err
	}

	hash, err := srv.hasher.Hash(normalized.Secret)
	if err != nil {
		srv.log(ctx).Error("Failed to hash secret", slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to hash secret")
	}

	account := &entity.Account{
		FullName:       normalized.FullName,
		AccessUsername: normalized.AccessUsername,
		Email:          normalized.Email,
		SecretHash:     hash,
		Note:           normalized.Note,
	}
	if err := srv.accountRepo.Create(ctx, account); err != nil {
		srv.log(ctx).Warn("Failed to create account",
			slog.String("access_username", account.AccessUsername),
			slog.Any("error", err),
		)

		return nil, errors.Wrap(err, "failed to create account")
	}

	stored, err := srv.accountRepo.FindByID(ctx, account.ID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to reload created account")
	}

	srv.log(ctx).Info("Account created", slog.Int64("account_id", stored.ID))

	return stored.WithoutSecret(), nil
}

// GetByID returns the account or ErrAccountNotFound.
func (srv *accountService) GetByID(ctx context.Context, id int64) (*entity.Account, error) {
	account, err := srv.accountRepo.FindByID(ctx, id)
	if err != nil {
		return nil, errors.Wrap(err, "failed to find account")
	}

	return account.WithoutSecret(), nil
}

// List returns one page of accounts, most recent first.
func (srv *accountService) List(ctx context.Context, input usecase.ListAccountsInput) (*usecase.ListAccountsOutput, error) {
	if input.Limit < 1 || input.Limit > usecase.MaxListLimit || input.Offset < 0 {
		return nil, domainerrors.ErrInvalidPagination
	}

	accounts, err := srv.accountRepo.List(ctx, input.Limit, input.Offset)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list accounts")
	}

	total, err := srv.accountRepo.Count(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to count accounts")
	}

	items := make([]*entity.Account, 0, len(accounts))
	for _, account := range accounts {
		items = append(items, account.WithoutSecret())
	}

	return &usecase.ListAccountsOutput{
		Items:  items,
		Total:  total,
		Limit:  input.Limit,
		Offset: input.Offset,
	}, nil
}

// UsernameExists is a case-insensitive availability probe.
func (srv *accountService) UsernameExists(ctx context.Context, username string) (bool, error) {
	username = foldCase(username)
	if username == "" {
		return false, domainerrors.NewValidationError([]string{"access_username is required"})
	}

	exists, err := srv.accountRepo.UsernameExists(ctx, username)
	if err != nil {
		return false, errors.Wrap(err, "failed to check username")
	}

	return exists, nil
}

// EmailExists is a case-insensitive availability probe.
func (srv *accountService) EmailExists(ctx context.Context, email string) (bool, error) {
	email = foldCase(email)
	if email == "" {
		return false, domainerrors.NewValidationError([]string{"email is required"})
	}

	exists, err := srv.accountRepo.EmailExists(ctx, email)
	if err != nil {
		return false, errors.Wrap(err, "failed to check email")
	}

	return exists, nil
}

// Update applies a partial change to the caller's own account.
// Ownership is checked before the target is looked up.
func (srv *accountService) Update(ctx context.Context, targetID, callerID int64, input *usecase.UpdateAccountInput) (*entity.Account, error) {
	if targetID != callerID {
		srv.log(ctx).Warn("Rejected update of foreign account",
			slog.Int64("target_id", targetID),
			slog.Int64("caller_id", callerID),
		)

		return nil, domainerrors.ErrNotAccountOwner
	}

	patch := normalizePatch(input)
	if patch.IsEmpty() {
		return nil, domainerrors.ErrNoFieldsToUpdate
	}
	if err := validation.Struct(srv.validate, patch); err != nil {
		return nil, err
	}

	current, err := srv.accountRepo.FindByID(ctx, targetID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to find account")
	}

	changes := &entity.AccountChanges{
		FullName:  patch.FullName,
		Note:      patch.Note,
		ClearNote: patch.ClearNote,
	}

	if patch.AccessUsername != nil && *patch.AccessUsername != current.AccessUsername {
		if err := srv.ensureUsernameFree(ctx, *patch.AccessUsername); err != nil {
			return nil, err
		}
		changes.AccessUsername = patch.AccessUsername
	}

	if patch.Email != nil && *patch.Email != current.Email {
		if err := srv.ensureEmailFree(ctx, *patch.Email); err != nil {
			return nil, err
		}
		changes.Email = patch.Email
	}

	if patch.Secret != nil {
		hash, err := srv.hasher.Hash(*patch.Secret)
		if err != nil {
			srv.log(ctx).Error("Failed to hash secret", slog.Any("error", err))

			return nil, errors.Wrap(err, "failed to hash secret")
		}
		changes.SecretHash = &hash
	}

	if !changes.IsEmpty() {
		if err := srv.accountRepo.Update(ctx, targetID, changes); err != nil {
			return nil, errors.Wrap(err, "failed to update account")
		}
	}

	updated, err := srv.accountRepo.FindByID(ctx, targetID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to reload updated account")
	}

	srv.log(ctx).Info("Account updated", slog.Int64("account_id", targetID))

	return updated.WithoutSecret(), nil
}

// Delete permanently removes the caller's own account.
func (srv *accountService) Delete(ctx context.Context, targetID, callerID int64) error {
	if targetID != callerID {
		srv.log(ctx).Warn("Rejected delete of foreign account",
			slog.Int64("target_id", targetID),
			slog.Int64("caller_id", callerID),
		)

		return domainerrors.ErrNotAccountOwner
	}

	if _, err := srv.accountRepo.FindByID(ctx, targetID); err != nil {
		return errors.Wrap(err, "failed to find account")
	}

	if err := srv.accountRepo.Delete(ctx, targetID); err != nil {
		return errors.Wrap(err, "failed to delete account")
	}

	srv.log(ctx).Info("Account deleted", slog.Int64("account_id", targetID))

	return nil
}

func (srv *accountService) ensureUsernameFree(ctx context.Context, username string) error {
	exists, err := srv.accountRepo.UsernameExists(ctx, username)
	if err != nil {
		return errors.Wrap(err, "failed to check username")
	}
	if exists {
		return domainerrors.ErrUsernameTaken
	}

	return nil
}

func (srv *accountService) ensureEmailFree(ctx context.Context, email string) error {
	exists, err := srv.accountRepo.EmailExists(ctx, email)
	if err != nil {
		return errors.Wrap(err, "failed to check email")
	}
	if exists {
		return domainerrors.ErrEmailTaken
	}

	return nil
}

func foldCase(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// normalizeNote trims the note; a blank note is stored as NULL.
func normalizeNote(note *string) *string {
	if note == nil {
		return nil
	}

	trimmed := strings.TrimSpace(*note)
	if trimmed == "" {
		return nil
	}

	return &trimmed
}

func normalizePatch(input *usecase.UpdateAccountInput) *usecase.UpdateAccountInput {
	patch := &usecase.UpdateAccountInput{
		Secret:    input.Secret,
		ClearNote: input.ClearNote,
	}

	if input.FullName != nil {
		name := strings.TrimSpace(*input.FullName)
		patch.FullName = &name
	}
	if input.AccessUsername != nil {
		username := foldCase(*input.AccessUsername)
		patch.AccessUsername = &username
	}
	if input.Email != nil {
		email := foldCase(*input.Email)
		patch.Email = &email
	}
	if input.Note != nil {
		if note := normalizeNote(input.Note); note != nil {
			patch.Note = note
		} else {
			patch.ClearNote = true
		}
	}

	return patch
}
