package database

import (
	"strings"

	domainerrors "students/internal/domain/errors"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

const (
	usernameConstraint = "uq_students_access_username"
	emailConstraint    = "uq_students_email"

	mysqlDuplicateEntry = 1062
)

// translateWriteError maps a unique violation to the matching Conflict error
// and anything else to a DatabaseExecuteError.
func translateWriteError(err error, operation string) error {
	if conflict := uniqueViolation(err); conflict != nil {
		return conflict.WrapMessage(operation)
	}

	return domainerrors.NewDatabaseExecuteError(err, operation)
}

func uniqueViolation(err error) *domainerrors.BaseError {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code != pgerrcode.UniqueViolation {
			return nil
		}

		return conflictFor(pgErr.ConstraintName)
	}

	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		if mysqlErr.Number != mysqlDuplicateEntry {
			return nil
		}

		// MySQL only names the key inside the message text.
		return conflictFor(mysqlErr.Message)
	}

	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return domainerrors.ErrAccountConflict
	}

	return nil
}

func conflictFor(constraint string) *domainerrors.BaseError {
	switch {
	case strings.Contains(constraint, usernameConstraint):
		return domainerrors.ErrUsernameTaken
	case strings.Contains(constraint, emailConstraint):
		return domainerrors.ErrEmailTaken
	default:
		return domainerrors.ErrAccountConflict
	}
}
