package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestMetadataForKnownCodes(t *testing.T) {
	tests := []struct {
		code      Code
		status    int
		publicMsg string
		retryable bool
		detailsOK bool
	}{
		{code: CodeValidation, status: http.StatusBadRequest, publicMsg: "validation failed", detailsOK: true},
		{code: CodeUnauthorized, status: http.StatusUnauthorized, publicMsg: "authentication required"},
		{code: CodeForbidden, status: http.StatusForbidden, publicMsg: "access denied", detailsOK: true},
		{code: CodeNotFound, status: http.StatusNotFound, publicMsg: "resource not found", detailsOK: true},
		{code: CodeConflict, status: http.StatusConflict, publicMsg: "conflict detected", detailsOK: true},
		{code: CodeStateConflict, status: http.StatusUnprocessableEntity, publicMsg: "state transition disallowed", detailsOK: true},
		{code: CodeInternal, status: http.StatusInternalServerError, publicMsg: "internal server error", retryable: true},
		{code: CodeDependency, status: http.StatusServiceUnavailable, publicMsg: "dependency unavailable", retryable: true, detailsOK: true},
	}

	for _, tt := range tests {
		meta := MetadataFor(tt.code)
		if meta.HTTPStatus != tt.status {
			t.Fatalf("code %s expected status %d got %d", tt.code, tt.status, meta.HTTPStatus)
		}
		if meta.PublicMessage != tt.publicMsg {
			t.Fatalf("code %s expected public message %q got %q", tt.code, tt.publicMsg, meta.PublicMessage)
		}
		if meta.Retryable != tt.retryable {
			t.Fatalf("code %s expected retryable %v got %v", tt.code, tt.retryable, meta.Retryable)
		}
		if meta.DetailsAllowed != tt.detailsOK {
			t.Fatalf("code %s expected details allowed %v got %v", tt.code, tt.detailsOK, meta.DetailsAllowed)
		}
	}
}

func TestMetadataForUnknownCodeDefaultsToInternal(t *testing.T) {
	meta := MetadataFor("SOMETHING_UNKNOWN")
	if meta.HTTPStatus != http.StatusInternalServerError {
		t.Fatalf("expected internal status, got %d", meta.HTTPStatus)
	}
}

func TestErrorConstructors(t *testing.T) {
	base := New(CodeValidation, "buyer is required")
	if base.Code() != CodeValidation {
		t.Fatalf("expected validation code, got %s", base.Code())
	}
	if base.Details() != nil {
		t.Fatalf("details should be nil by default")
	}
	base.WithDetails(map[string]any{"field": "buyerId"})
	if base.Details() == nil {
		t.Fatalf("details should be preserved")
	}

	cause := stdErrors.New("boom")
	wrapped := Wrap(CodeConflict, cause, "duplicate")
	if !stdErrors.Is(wrapped, cause) {
		t.Fatalf("Wrap did not preserve cause")
	}
	if wrapped.Code() != CodeConflict {
		t.Fatalf("unexpected code %s", wrapped.Code())
	}

	formatted := Newf(CodeNotFound, "asset %s not found", "A1")
	if formatted.Message() != "asset A1 not found" {
		t.Fatalf("unexpected message %q", formatted.Message())
	}
}

func TestAsAndIsCodeWalkTheChain(t *testing.T) {
	err := fmt.Errorf("create contract: %w", New(CodeNotFound, "asset not found"))
	if got := As(err); got == nil || got.Code() != CodeNotFound {
		t.Fatalf("As failed to return typed error")
	}
	if !IsCode(err, CodeNotFound) {
		t.Fatalf("expected IsCode to match NOT_FOUND")
	}
	if IsCode(err, CodeConflict) {
		t.Fatalf("expected IsCode to reject CONFLICT")
	}
	if As(nil) != nil {
		t.Fatalf("As(nil) should return nil")
	}
}

func TestFieldErrors(t *testing.T) {
	err := FieldErrors("invalid contract", map[string]string{"months": "must be at least 1"})
	fields, ok := err.Details().(map[string]string)
	if !ok || fields["months"] == "" {
		t.Fatalf("expected field details, got %#v", err.Details())
	}
}

func TestDumpCapturesChain(t *testing.T) {
	err := fmt.Errorf("outer: %w", New(CodeInternal, "inner"))
	dump := Dump(err)
	if dump.Code != CodeInternal {
		t.Fatalf("expected internal code in dump, got %s", dump.Code)
	}
	if len(dump.Chain) != 2 {
		t.Fatalf("expected two chain entries, got %d", len(dump.Chain))
	}
}

func TestDumpCapturesPostgresFields(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "40001", Message: "could not serialize access", TableName: "investors", Hint: "retry"}
	dump := Dump(Wrap(CodeDependency, pgErr, "debit investor"))
	if dump.PG == nil || dump.PG.Table != "investors" || !dump.PG.Retryable() {
		t.Fatalf("unexpected pg dump %#v", dump.PG)
	}
	fields := dump.LogFields()
	if fields["pg_hint"] != "retry" || fields["pg_retryable"] != true {
		t.Fatalf("unexpected log fields %#v", fields)
	}
	if _, ok := fields["pg_column"]; ok {
		t.Fatalf("empty pg columns should be omitted")
	}
}

func TestDumpWithoutPostgresError(t *testing.T) {
	dump := Dump(New(CodeNotFound, "contract not found"))
	if dump.PG != nil {
		t.Fatalf("expected no pg dump")
	}
	if _, ok := dump.LogFields()["pg_code"]; ok {
		t.Fatalf("pg fields should be absent")
	}
}
