package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDomainErrorFormatting(t *testing.T) {
	plain := NewDomainError(ErrCodeNotFound, "subject not found")
	assert.Equal(t, "[NOT_FOUND] subject not found", plain.Error())

	cause := fmt.Errorf("pq: connection refused")
	wrapped := NewDomainErrorWithCause(ErrCodeInternalError, "vector search failed", cause)
	assert.Equal(t, "[INTERNAL_ERROR] vector search failed: pq: connection refused", wrapped.Error())
	assert.Equal(t, cause, errors.Unwrap(wrapped))
}

func TestSentinelErrorsMatchWithErrorsIs(t *testing.T) {
	wrapped := fmt.Errorf("ingest failed: %w", ErrEmptyDocument)
	assert.True(t, errors.Is(wrapped, ErrEmptyDocument))
	assert.False(t, errors.Is(wrapped, ErrNoChunksGenerated))
}

func TestSentinelErrorCodes(t *testing.T) {
	tests := []struct {
		name string
		err  *DomainError
		code string
	}{
		{"empty document", ErrEmptyDocument, ErrCodeValidation},
		{"unreadable document", ErrUnreadableDocument, ErrCodeValidation},
		{"no chunks", ErrNoChunksGenerated, ErrCodeInternalError},
		{"dimension mismatch", ErrEmbeddingDimensionMismatch, ErrCodeInternalError},
		{"persistence", ErrPersistence, ErrCodeInternalError},
		{"embedding failure", ErrEmbeddingFailure, ErrCodeInternalError},
		{"search failure", ErrSearchFailure, ErrCodeInternalError},
		{"generation failure", ErrGenerationFailure, ErrCodeInternalError},
		{"user not found", ErrUserNotFound, ErrCodeNotFound},
		{"subject not found", ErrSubjectNotFound, ErrCodeNotFound},
		{"document not found", ErrDocumentNotFound, ErrCodeNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, tt.err.Code)
		})
	}
}
