package errors

import (
	stderrors "errors"
	"testing"
)

func TestErrorString(t *testing.T) {
	err := NewNotFound("professor", "p1")
	want := "NOT_FOUND: professor not found: p1"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestIs(t *testing.T) {
	if !Is(NewCredentialMissing(), ErrCredentialMissing) {
		t.Error("Is should match the code")
	}
	if Is(NewCredentialMissing(), ErrNotFound) {
		t.Error("Is should not match a different code")
	}
	if Is(stderrors.New("plain"), ErrInternal) {
		t.Error("Is should be false for non-structured errors")
	}
	if Is(nil, ErrInternal) {
		t.Error("Is should be false for nil")
	}
}

func TestStatusCodes(t *testing.T) {
	cases := []struct {
		err    *Error
		status int
	}{
		{NewInvalidRequest("x"), 400},
		{NewCredentialMissing(), 401},
		{NewNotFound("draft", "d1"), 404},
		{NewDocumentTooLarge(10, 20), 413},
		{NewUnrecognizedBackup(), 422},
		{NewInternal(nil), 500},
		{NewTransactionAborted(nil), 500},
		{NewNoJSONFound("object"), 502},
		{NewAIUnavailable(nil), 502},
	}
	for _, tc := range cases {
		if tc.err.Status != tc.status {
			t.Errorf("%s status = %d, want %d", tc.err.Code, tc.err.Status, tc.status)
		}
	}
}
