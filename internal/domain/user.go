package domain

import (
	"fmt"
	"strings"
	"time"
)

// User represents a user identity created on first OAuth sign-in.
type User struct {
	ID        string
	Email     string
	Name      string
	Image     string
	CreatedAt time.Time
}

// NewUser creates a new User instance
func NewUser(id, email, name, image string, createdAt time.Time) *User {
	return &User{
		ID:        id,
		Email:     email,
		Name:      name,
		Image:     image,
		CreatedAt: createdAt,
	}
}

// ValidateUser validates a User instance
func ValidateUser(u *User) error {
	if u == nil {
		return fmt.Errorf("user cannot be nil")
	}

	if u.ID == "" {
		return fmt.Errorf("user ID is required")
	}

	if strings.TrimSpace(u.Email) == "" {
		return fmt.Errorf("user Email is required")
	}

	return nil
}
