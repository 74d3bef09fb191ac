package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
	"testing"
)

func TestMetadataForKnownCodes(t *testing.T) {
	tests := []struct {
		code   Code
		status int
	}{
		{CodeValidation, http.StatusBadRequest},
		{CodeNotFound, http.StatusNotFound},
		{CodeConflict, http.StatusConflict},
		{CodeStateConflict, http.StatusUnprocessableEntity},
		{CodeDependency, http.StatusServiceUnavailable},
		{CodeInternal, http.StatusInternalServerError},
	}
	for _, tc := range tests {
		if got := MetadataFor(tc.code).HTTPStatus; got != tc.status {
			t.Fatalf("%s: expected status %d, got %d", tc.code, tc.status, got)
		}
	}
}

func TestMetadataForUnknownCodeFallsBackToInternal(t *testing.T) {
	meta := MetadataFor(Code("NOPE"))
	if meta.HTTPStatus != http.StatusInternalServerError {
		t.Fatalf("unknown code should map to internal, got %d", meta.HTTPStatus)
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := stdErrors.New("disk full")
	err := Wrap(CodeDependency, cause, "persist ledger entry")

	if !stdErrors.Is(err, cause) {
		t.Fatal("expected wrapped cause to survive errors.Is")
	}
	if err.Code() != CodeDependency {
		t.Fatalf("unexpected code %s", err.Code())
	}
	if err.Error() != fmt.Sprintf("%s: persist ledger entry", CodeDependency) {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestAsFindsTypedErrorInChain(t *testing.T) {
	inner := New(CodeConflict, "entry already recorded")
	wrapped := fmt.Errorf("append: %w", inner)

	typed := As(wrapped)
	if typed == nil || typed.Code() != CodeConflict {
		t.Fatalf("expected conflict error in chain, got %v", typed)
	}
	if As(stdErrors.New("plain")) != nil {
		t.Fatal("plain errors should not match")
	}
}

func TestIsCode(t *testing.T) {
	err := fmt.Errorf("outer: %w", New(CodeStateConflict, "already released"))
	if !IsCode(err, CodeStateConflict) {
		t.Fatal("expected IsCode to match wrapped code")
	}
	if IsCode(err, CodeValidation) {
		t.Fatal("IsCode should not match a different code")
	}
	if IsCode(nil, CodeValidation) {
		t.Fatal("nil error should never match")
	}
}
