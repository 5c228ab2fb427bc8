package domain

import (
	"fmt"
	"time"
)

// ActionType identifies what kind of user action an activity log records.
type ActionType string

const (
	ActionUploadDocument ActionType = "upload_document"
	ActionCreateSubject  ActionType = "create_subject"
	ActionUpdateSubject  ActionType = "update_subject"
	ActionDeleteSubject  ActionType = "delete_subject"
	ActionDeleteDocument ActionType = "delete_document"
	ActionChatQuery      ActionType = "chat_query"
)

// IsValid checks if the action type is a known value
func (a ActionType) IsValid() bool {
	switch a {
	case ActionUploadDocument, ActionCreateSubject, ActionUpdateSubject,
		ActionDeleteSubject, ActionDeleteDocument, ActionChatQuery:
		return true
	}
	return false
}

// ActivityLog records one user action for the dashboard feed. Best effort:
// the pipeline that triggers it never fails because logging failed.
type ActivityLog struct {
	ID         string
	UserID     string
	ActionType ActionType
	EntityID   string
	Metadata   map[string]any
	CreatedAt  time.Time
}

// ValidateActivityLog validates an ActivityLog instance
func ValidateActivityLog(a *ActivityLog) error {
	if a == nil {
		return fmt.Errorf("activity log cannot be nil")
	}

	if a.UserID == "" {
		return fmt.Errorf("activity log UserID is required")
	}

	if !a.ActionType.IsValid() {
		return fmt.Errorf("invalid action type: %s", a.ActionType)
	}

	return nil
}
