package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/kortex-labs/kortex/internal/api"
	"github.com/kortex-labs/kortex/internal/api/middleware"
	"github.com/kortex-labs/kortex/internal/domain"
	"github.com/kortex-labs/kortex/internal/service"
)

type DashboardService interface {
	Stats(ctx context.Context, userID string) (*service.DashboardStats, error)
	RecentActivity(ctx context.Context, userID string, limit int) ([]*domain.ActivityLog, error)
}

type DashboardHandler struct {
	svc DashboardService
}

func NewDashboardHandler(svc DashboardService) *DashboardHandler {
	return &DashboardHandler{svc: svc}
}

type ActivityResponse struct {
	ID         string         `json:"id"`
	ActionType string         `json:"action_type"`
	EntityID   string         `json:"entity_id,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	CreatedAt  string         `json:"created_at"`
}

func activityToResponse(a *domain.ActivityLog) *ActivityResponse {
	return &ActivityResponse{
		ID:         a.ID,
		ActionType: string(a.ActionType),
		EntityID:   a.EntityID,
		Metadata:   a.Metadata,
		CreatedAt:  a.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
}

func (h *DashboardHandler) Stats(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	stats, err := h.svc.Stats(r.Context(), userID)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, stats)
}

func (h *DashboardHandler) Activity(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	limit := 10
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	activities, err := h.svc.RecentActivity(r.Context(), userID, limit)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	responses := make([]*ActivityResponse, len(activities))
	for i, a := range activities {
		responses[i] = activityToResponse(a)
	}

	api.Success(w, http.StatusOK, responses)
}
