package domain

import "fmt"

// DomainError represents a domain-specific error
type DomainError struct {
	Code    string
	Message string
	Err     error
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError creates a new DomainError
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     nil,
	}
}

// NewDomainErrorWithCause creates a new DomainError with an underlying cause
func NewDomainErrorWithCause(code, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common domain error codes
const (
	ErrCodeValidation       = "VALIDATION_ERROR"
	ErrCodeNotFound         = "NOT_FOUND"
	ErrCodeInternalError    = "INTERNAL_ERROR"
	ErrCodeInvalidOperation = "INVALID_OPERATION"
)

// Not found errors
var (
	ErrUserNotFound     = NewDomainError(ErrCodeNotFound, "user not found")
	ErrSubjectNotFound  = NewDomainError(ErrCodeNotFound, "subject not found")
	ErrDocumentNotFound = NewDomainError(ErrCodeNotFound, "document not found")
)

// Ingestion errors
var (
	ErrUnreadableDocument         = NewDomainError(ErrCodeValidation, "document could not be parsed")
	ErrEmptyDocument              = NewDomainError(ErrCodeValidation, "document contains no extractable text")
	ErrNoChunksGenerated          = NewDomainError(ErrCodeInternalError, "no chunks generated from document")
	ErrEmbeddingDimensionMismatch = NewDomainError(ErrCodeInternalError, "embedding has wrong dimensions")
	ErrPersistence                = NewDomainError(ErrCodeInternalError, "failed to persist chunks")
)

// Query errors
var (
	ErrEmbeddingFailure  = NewDomainError(ErrCodeInternalError, "failed to embed question")
	ErrSearchFailure     = NewDomainError(ErrCodeInternalError, "vector search failed")
	ErrGenerationFailure = NewDomainError(ErrCodeInternalError, "answer generation failed")
)
