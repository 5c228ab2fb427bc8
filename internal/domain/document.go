package domain

import (
	"fmt"
	"time"
)

// Document identifies one uploaded source file. Immutable after creation
// except deletion; deleting a document cascades to its chunks.
type Document struct {
	ID         string
	SubjectID  string
	UserID     string
	Title      string
	StorageKey string // object storage key of the archived original, empty if not archived
	CreatedAt  time.Time
}

// NewDocument creates a new Document instance
func NewDocument(id, subjectID, userID, title string, createdAt time.Time) *Document {
	return &Document{
		ID:        id,
		SubjectID: subjectID,
		UserID:    userID,
		Title:     title,
		CreatedAt: createdAt,
	}
}

// ValidateDocument validates a Document instance
func ValidateDocument(d *Document) error {
	if d == nil {
		return fmt.Errorf("document cannot be nil")
	}

	if d.ID == "" {
		return fmt.Errorf("document ID is required")
	}

	if d.SubjectID == "" {
		return fmt.Errorf("document SubjectID is required")
	}

	if d.UserID == "" {
		return fmt.Errorf("document UserID is required")
	}

	if d.Title == "" {
		return fmt.Errorf("document Title is required")
	}

	return nil
}
