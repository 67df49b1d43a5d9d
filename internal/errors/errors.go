package errors

import "fmt"

// ErrorCode represents a profreach error code.
type ErrorCode string

const (
	ErrInvalidRequest     ErrorCode = "INVALID_REQUEST"     // 400
	ErrNotFound           ErrorCode = "NOT_FOUND"           // 404
	ErrUnrecognizedBackup ErrorCode = "UNRECOGNIZED_BACKUP" // 422
	ErrNoJSONFound        ErrorCode = "NO_JSON_FOUND"       // 502
	ErrCredentialMissing  ErrorCode = "CREDENTIAL_MISSING"  // 401
	ErrAIUnavailable      ErrorCode = "AI_UNAVAILABLE"      // 502
	ErrTransactionAborted ErrorCode = "TRANSACTION_ABORTED" // 500
	ErrDocumentTooLarge   ErrorCode = "DOCUMENT_TOO_LARGE"  // 413
	ErrInternal           ErrorCode = "INTERNAL"            // 500
)

// Error is a structured error with code, status, and details.
type Error struct {
	Code    ErrorCode
	Status  int
	Message string
	Details map[string]any
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewInvalidRequest creates a 400 error for invalid request parameters.
func NewInvalidRequest(msg string) *Error {
	return &Error{
		Code:    ErrInvalidRequest,
		Status:  400,
		Message: msg,
	}
}

// NewNotFound creates a 404 error for a missing entity.
func NewNotFound(kind, id string) *Error {
	return &Error{
		Code:    ErrNotFound,
		Status:  404,
		Message: fmt.Sprintf("%s not found: %s", kind, id),
		Details: map[string]any{"kind": kind, "id": id},
	}
}

// NewUnrecognizedBackup creates a 422 error for an import payload that has
// none of the recognized top-level collection keys.
func NewUnrecognizedBackup() *Error {
	return &Error{
		Code:    ErrUnrecognizedBackup,
		Status:  422,
		Message: "unrecognized backup format: no known collection keys present",
	}
}

// NewNoJSONFound creates an error for model output with no locatable JSON.
func NewNoJSONFound(kind string) *Error {
	return &Error{
		Code:    ErrNoJSONFound,
		Status:  502,
		Message: fmt.Sprintf("no JSON %s found in model response", kind),
		Details: map[string]any{"kind": kind},
	}
}

// NewCredentialMissing creates a 401 error for AI calls without an API key.
func NewCredentialMissing() *Error {
	return &Error{
		Code:    ErrCredentialMissing,
		Status:  401,
		Message: "no API key configured; set GEMINI_API_KEY or store one in settings",
	}
}

// NewAIUnavailable creates a 502 error for a failed model request.
func NewAIUnavailable(err error) *Error {
	msg := "AI request failed"
	if err != nil {
		msg = fmt.Sprintf("AI request failed: %v", err)
	}
	return &Error{
		Code:    ErrAIUnavailable,
		Status:  502,
		Message: msg,
	}
}

// NewTransactionAborted creates a 500 error for an aborted document store
// transaction. The caller must not assume partial success.
func NewTransactionAborted(err error) *Error {
	msg := "document store transaction aborted"
	if err != nil {
		msg = fmt.Sprintf("document store transaction aborted: %v", err)
	}
	return &Error{
		Code:    ErrTransactionAborted,
		Status:  500,
		Message: msg,
	}
}

// NewDocumentTooLarge creates a 413 error when a document exceeds the size cap.
func NewDocumentTooLarge(max, actual int64) *Error {
	return &Error{
		Code:    ErrDocumentTooLarge,
		Status:  413,
		Message: fmt.Sprintf("document exceeds maximum size: %d bytes (max %d)", actual, max),
		Details: map[string]any{"max_bytes": max, "actual_bytes": actual},
	}
}

// NewInternal creates a 500 error for unexpected internal errors.
func NewInternal(err error) *Error {
	msg := "internal error"
	if err != nil {
		msg = err.Error()
	}
	return &Error{
		Code:    ErrInternal,
		Status:  500,
		Message: msg,
	}
}

// Is checks if an error is an *Error with the given code.
func Is(err error, code ErrorCode) bool {
	if e, ok := err.(*Error); ok {
		return e.Code == code
	}
	return false
}
