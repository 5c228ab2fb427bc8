package domain

import (
	"fmt"
	"strings"
	"time"
)

// Subject is a named folder of documents owned by one user. It is the
// isolation boundary for retrieval: a query scoped to a subject must never
// see chunks from another subject.
type Subject struct {
	ID        string
	UserID    string
	Name      string
	CreatedAt time.Time
}

// NewSubject creates a new Subject instance
func NewSubject(id, userID, name string, createdAt time.Time) *Subject {
	return &Subject{
		ID:        id,
		UserID:    userID,
		Name:      name,
		CreatedAt: createdAt,
	}
}

// ValidateSubject validates a Subject instance
func ValidateSubject(s *Subject) error {
	if s == nil {
		return fmt.Errorf("subject cannot be nil")
	}

	if s.ID == "" {
		return fmt.Errorf("subject ID is required")
	}

	if s.UserID == "" {
		return fmt.Errorf("subject UserID is required")
	}

	if strings.TrimSpace(s.Name) == "" {
		return fmt.Errorf("subject Name is required")
	}

	return nil
}
