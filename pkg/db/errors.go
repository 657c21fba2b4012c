package db

import (
	"errors"
	"strings"

	pkgerrors "github.com/angelmondragon/dealerdesk-backend/pkg/errors"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Postgres SQLSTATE codes the service reacts to.
const (
	pgUndefinedTable        = "42P01"
	pgInsufficientPrivilege = "42501"
	pgUniqueViolation       = "23505"
	pgForeignKeyViolation   = "23503"
)

// Remediation hints attached to persistence failures.
const (
	HintTableMissing = "storage is not provisioned; run the migrations (cmd/migrate up)"
	HintPermission   = "the database role lacks permission for this table or a row policy denied the write"
	HintDuplicate    = "a record with the same identifier already exists"
	HintForeignKey   = "a referenced record is missing; register the buyer or investor first"
)

// IsUniqueViolation reports whether the provided error references a Postgres
// unique violation constraint. When constraintName is provided, the helper looks
// for the constraint text in the error message.
func IsUniqueViolation(err error, constraintName string) bool {
	if err == nil {
		return false
	}
	if code := sqlState(err); code != "" && code != pgUniqueViolation {
		return false
	}
	msg := err.Error()
	if constraintName != "" {
		return strings.Contains(msg, constraintName)
	}
	return sqlState(err) == pgUniqueViolation ||
		strings.Contains(msg, "duplicate key value") ||
		strings.Contains(msg, "UNIQUE constraint failed")
}

// IsUndefinedTable reports whether err is a missing-relation failure. List
// queries use it to return empty results on an unprovisioned database.
func IsUndefinedTable(err error) bool {
	if err == nil {
		return false
	}
	if sqlState(err) == pgUndefinedTable {
		return true
	}
	return strings.Contains(err.Error(), "no such table")
}

// Classify converts a persistence failure into a typed error carrying a
// remediation hint. Typed errors and record-not-found pass through.
func Classify(err error, message string) error {
	if err == nil {
		return nil
	}
	if pkgerrors.As(err) != nil {
		return err
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, message)
	}

	switch {
	case IsUndefinedTable(err):
		return withHint(pkgerrors.Wrap(pkgerrors.CodeDependency, err, message), HintTableMissing)
	case sqlState(err) == pgInsufficientPrivilege || strings.Contains(strings.ToLower(err.Error()), "policy"):
		return withHint(pkgerrors.Wrap(pkgerrors.CodeForbidden, err, message), HintPermission)
	case IsUniqueViolation(err, ""):
		return withHint(pkgerrors.Wrap(pkgerrors.CodeConflict, err, message), HintDuplicate)
	case sqlState(err) == pgForeignKeyViolation || strings.Contains(err.Error(), "FOREIGN KEY constraint failed"):
		return withHint(pkgerrors.Wrap(pkgerrors.CodeValidation, err, message), HintForeignKey)
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, message)
}

func withHint(err *pkgerrors.Error, hint string) *pkgerrors.Error {
	return err.WithDetails(map[string]any{"hint": hint})
}

func sqlState(err error) string {
	var pgxErr *pgconn.PgError
	if errors.As(err, &pgxErr) {
		return pgxErr.Code
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code)
	}
	return ""
}
