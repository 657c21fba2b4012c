package db

import (
	"errors"
	"fmt"
	"testing"

	pkgerrors "github.com/angelmondragon/dealerdesk-backend/pkg/errors"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestClassifyMapsPostgresCodes(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code pkgerrors.Code
		hint string
	}{
		{"missing table", &pgconn.PgError{Code: "42P01"}, pkgerrors.CodeDependency, HintTableMissing},
		{"permission", &pgconn.PgError{Code: "42501"}, pkgerrors.CodeForbidden, HintPermission},
		{"row policy", errors.New("new row violates row-level security policy"), pkgerrors.CodeForbidden, HintPermission},
		{"duplicate", &pq.Error{Code: "23505"}, pkgerrors.CodeConflict, HintDuplicate},
		{"foreign key", fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23503"}), pkgerrors.CodeValidation, HintForeignKey},
		{"sqlite missing table", errors.New("no such table: buyers"), pkgerrors.CodeDependency, HintTableMissing},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := pkgerrors.As(Classify(tc.err, "insert failed"))
			require.NotNil(t, got)
			assert.Equal(t, tc.code, got.Code())
			details, ok := got.Details().(map[string]any)
			require.True(t, ok)
			assert.Equal(t, tc.hint, details["hint"])
		})
	}
}

func TestClassifyPassThrough(t *testing.T) {
	assert.NoError(t, Classify(nil, "x"))

	typed := pkgerrors.New(pkgerrors.CodeStateConflict, "already sold")
	assert.Same(t, typed, Classify(typed, "x"))

	nf := pkgerrors.As(Classify(gorm.ErrRecordNotFound, "buyer not found"))
	require.NotNil(t, nf)
	assert.Equal(t, pkgerrors.CodeNotFound, nf.Code())

	other := pkgerrors.As(Classify(errors.New("connection reset"), "query failed"))
	require.NotNil(t, other)
	assert.Equal(t, pkgerrors.CodeInternal, other.Code())
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, IsUniqueViolation(&pgconn.PgError{Code: "23505"}, ""))
	assert.True(t, IsUniqueViolation(errors.New(`duplicate key value violates unique constraint "users_email_key"`), "users_email_key"))
	assert.False(t, IsUniqueViolation(&pgconn.PgError{Code: "23503"}, ""))
	assert.False(t, IsUniqueViolation(nil, ""))
}

func TestIsUndefinedTable(t *testing.T) {
	assert.True(t, IsUndefinedTable(&pgconn.PgError{Code: "42P01"}))
	assert.False(t, IsUndefinedTable(&pgconn.PgError{Code: "23505"}))
}
