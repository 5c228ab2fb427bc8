package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestActionTypeConstants(t *testing.T) {
	tests := []struct {
		name     string
		action   ActionType
		expected string
	}{
		{"UploadDocument", ActionUploadDocument, "upload_document"},
		{"CreateSubject", ActionCreateSubject, "create_subject"},
		{"UpdateSubject", ActionUpdateSubject, "update_subject"},
		{"DeleteSubject", ActionDeleteSubject, "delete_subject"},
		{"DeleteDocument", ActionDeleteDocument, "delete_document"},
		{"ChatQuery", ActionChatQuery, "chat_query"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, string(tt.action))
			assert.True(t, tt.action.IsValid())
		})
	}
}

func TestActionTypeIsValidRejectsUnknown(t *testing.T) {
	assert.False(t, ActionType("drop_table").IsValid())
	assert.False(t, ActionType("").IsValid())
}

func TestValidateActivityLog(t *testing.T) {
	tests := []struct {
		name    string
		log     *ActivityLog
		wantErr bool
	}{
		{
			name: "valid log",
			log: &ActivityLog{
				ID:         "a1",
				UserID:     "u1",
				ActionType: ActionChatQuery,
				EntityID:   "s1",
				Metadata:   map[string]any{"question": "what is osmosis?"},
			},
			wantErr: false,
		},
		{
			name:    "nil log",
			log:     nil,
			wantErr: true,
		},
		{
			name: "missing user",
			log: &ActivityLog{
				ID:         "a1",
				ActionType: ActionChatQuery,
			},
			wantErr: true,
		},
		{
			name: "unknown action",
			log: &ActivityLog{
				ID:         "a1",
				UserID:     "u1",
				ActionType: ActionType("bogus"),
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateActivityLog(tt.log)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
