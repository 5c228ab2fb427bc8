package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/kortex-labs/kortex/internal/api"
	"github.com/kortex-labs/kortex/internal/domain"
)

type UserService interface {
	GetOrCreate(ctx context.Context, email, name, image string) (*domain.User, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
}

type UserHandler struct {
	svc UserService
}

func NewUserHandler(svc UserService) *UserHandler {
	return &UserHandler{svc: svc}
}

type GetOrCreateUserRequest struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	Image string `json:"image"`
}

type UserResponse struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Name      string `json:"name,omitempty"`
	Image     string `json:"image,omitempty"`
	CreatedAt string `json:"created_at"`
}

func userToResponse(u *domain.User) *UserResponse {
	return &UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Image:     u.Image,
		CreatedAt: u.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
}

// GetOrCreate resolves an OAuth identity to a stored user, creating the
// record on first sign-in.
func (h *UserHandler) GetOrCreate(w http.ResponseWriter, r *http.Request) {
	var req GetOrCreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Email == "" {
		api.Error(w, http.StatusBadRequest, "email is required")
		return
	}

	user, err := h.svc.GetOrCreate(r.Context(), req.Email, req.Name, req.Image)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, userToResponse(user))
}
