package database

import (
	"context"

	"students/internal/domain/entity"
	domainerrors "students/internal/domain/errors"
	"students/internal/domain/repository"
	"students/internal/infra/persistence/model"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/plugin/dbresolver"
)

// accountRepository implements repository.AccountRepository using GORM.
type accountRepository struct {
	db *gorm.DB
}

// NewAccountRepository is the constructor for accountRepository.
func NewAccountRepository(db *gorm.DB) repository.AccountRepository {
	return &accountRepository{db: db}
}

// primary pins the statement to the primary so reads observe preceding writes.
func (repo *accountRepository) primary(ctx context.Context) *gorm.DB {
	return repo.db.WithContext(ctx).Clauses(dbresolver.Write)
}

func (repo *accountRepository) FindByID(ctx context.Context, id int64) (*entity.Account, error) {
	var accountM model.AccountModel
	err := repo.primary(ctx).Where("id = ?", id).First(&accountM).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrAccountNotFound
		}

		return nil, domainerrors.NewDatabaseExecuteError(err, "find account by id")
	}

	return toAccountDomain(&accountM), nil
}

func (repo *accountRepository) FindByUsername(ctx context.Context, username string) (*entity.Account, error) {
	var accountM model.AccountModel
	err := repo.db.WithContext(ctx).Where("access_username = ?", username).First(&accountM).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrAccountNotFound
		}

		return nil, domainerrors.NewDatabaseExecuteError(err, "find account by username")
	}

	return toAccountDomain(&accountM), nil
}

func (repo *accountRepository) List(ctx context.Context, limit, offset int) ([]*entity.Account, error) {
	var accountMs []*model.AccountModel
	err := repo.db.WithContext(ctx).
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Offset(offset).
		Find(&accountMs).Error
	if err != nil {
		return nil, domainerrors.NewDatabaseExecuteError(err, "list accounts")
	}

	accounts := make([]*entity.Account, 0, len(accountMs))
	for _, accountM := range accountMs {
		accounts = append(accounts, toAccountDomain(accountM))
	}

	return accounts, nil
}

func (repo *accountRepository) Count(ctx context.Context) (int64, error) {
	var total int64
	if err := repo.db.WithContext(ctx).Model(&model.AccountModel{}).Count(&total).Error; err != nil {
		return 0, domainerrors.NewDatabaseExecuteError(err, "count accounts")
	}

	return total, nil
}

// UsernameExists reads the primary because its answer gates a write.
func (repo *accountRepository) UsernameExists(ctx context.Context, username string) (bool, error) {
	return repo.exists(ctx, "access_username = ?", username)
}

// EmailExists reads the primary because its answer gates a write.
func (repo *accountRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	return repo.exists(ctx, "email = ?", email)
}

func (repo *accountRepository) exists(ctx context.Context, query string, value string) (bool, error) {
	var count int64
	err := repo.primary(ctx).Model(&model.AccountModel{}).Where(query, value).Limit(1).Count(&count).Error
	if err != nil {
		return false, domainerrors.NewDatabaseExecuteError(err, "check account existence")
	}

	return count > 0, nil
}

func (repo *accountRepository) Create(ctx context.Context, account *entity.Account) error {
	accountM := fromAccountDomain(account)
	if err := repo.db.WithContext(ctx).Create(accountM).Error; err != nil {
		return translateWriteError(err, "create account")
	}

	account.ID = accountM.ID
	account.CreatedAt = accountM.CreatedAt

	return nil
}

func (repo *accountRepository) Update(ctx context.Context, id int64, changes *entity.AccountChanges) error {
	columns := changedColumns(changes)
	if len(columns) == 0 {
		return nil
	}

	result := repo.db.WithContext(ctx).Model(&model.AccountModel{}).Where("id = ?", id).Updates(columns)
	if result.Error != nil {
		return translateWriteError(result.Error, "update account")
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrAccountNotFound
	}

	return nil
}

func (repo *accountRepository) Delete(ctx context.Context, id int64) error {
	result := repo.db.WithContext(ctx).Where("id = ?", id).Delete(&model.AccountModel{})
	if result.Error != nil {
		return domainerrors.NewDatabaseExecuteError(result.Error, "delete account")
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrAccountNotFound
	}

	return nil
}

// changedColumns turns a change set into the column map gorm updates.
// A map is used so that clearing the note writes NULL.
func changedColumns(changes *entity.AccountChanges) map[string]any {
	columns := make(map[string]any)
	if changes == nil {
		return columns
	}

	if changes.FullName != nil {
		columns["full_name"] = *changes.FullName
	}
	if changes.AccessUsername != nil {
		columns["access_username"] = *changes.AccessUsername
	}
	if changes.Email != nil {
		columns["email"] = *changes.Email
	}
	if changes.SecretHash != nil {
		columns["secret_hash"] = *changes.SecretHash
	}
	switch {
	case changes.Note != nil:
		columns["note"] = *changes.Note
	case changes.ClearNote:
		columns["note"] = nil
	}

	return columns
}

func toAccountDomain(accountM *model.AccountModel) *entity.Account {
	return &entity.Account{
		ID:             accountM.ID,
		FullName:       accountM.FullName,
		AccessUsername: accountM.AccessUsername,
		Email:          accountM.Email,
		SecretHash:     accountM.SecretHash,
		Note:           accountM.Note,
		CreatedAt:      accountM.CreatedAt,
	}
}

func fromAccountDomain(account *entity.Account) *model.AccountModel {
	return &model.AccountModel{
		ID:             account.ID,
		FullName:       account.FullName,
		AccessUsername: account.AccessUsername,
		Email:          account.Email,
		SecretHash:     account.SecretHash,
		Note:           account.Note,
	}
}
