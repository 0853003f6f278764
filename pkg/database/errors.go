package database

import (
	"errors"

	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/tair/manufacturing-erp/pkg/apperror"
)

// PostgreSQL SQLSTATE codes
const (
	codeForeignKeyViolation = "23503"
	codeUniqueViolation     = "23505"
)

// TranslateError converts constraint violations into conflict errors. Every
// other error, including gorm.ErrRecordNotFound, is returned unchanged.
func TranslateError(err error) error {
	if err == nil {
		return nil
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch string(pqErr.Code) {
		case codeForeignKeyViolation:
			return &apperror.Error{Kind: apperror.KindConflict, Message: "record is referenced by other records", Err: err}
		case codeUniqueViolation:
			return &apperror.Error{Kind: apperror.KindConflict, Message: "record already exists", Err: err}
		}
	}

	switch {
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return &apperror.Error{Kind: apperror.KindConflict, Message: "record is referenced by other records", Err: err}
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return &apperror.Error{Kind: apperror.KindConflict, Message: "record already exists", Err: err}
	}
	return err
}

// IsNotFound reports whether err means no row matched.
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
