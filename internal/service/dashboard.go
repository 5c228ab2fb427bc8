package service

import (
	"context"

	"github.com/kortex-labs/kortex/internal/domain"
	"github.com/kortex-labs/kortex/internal/telemetry"
)

// DashboardStats aggregates per-user counters for the dashboard.
type DashboardStats struct {
	Subjects  int `json:"subjects"`
	Documents int `json:"documents"`
	Queries   int `json:"queries"`
}

// DashboardRepositoryInterface defines the aggregate queries behind the dashboard
type DashboardRepositoryInterface interface {
	CountSubjects(ctx context.Context, userID string) (int, error)
	CountDocuments(ctx context.Context, userID string) (int, error)
	CountActivities(ctx context.Context, userID string, action domain.ActionType) (int, error)
	ListRecentActivities(ctx context.Context, userID string, limit int) ([]*domain.ActivityLog, error)
}

// DashboardService serves the dashboard's stats and activity feed.
type DashboardService struct {
	repo DashboardRepositoryInterface
}

// NewDashboardService creates a new DashboardService instance
func NewDashboardService(repo DashboardRepositoryInterface) *DashboardService {
	return &DashboardService{repo: repo}
}

// Stats returns the subject, document, and query counts for one user.
func (s *DashboardService) Stats(ctx context.Context, userID string) (*DashboardStats, error) {
	ctx, span := telemetry.StartSpan(ctx, "DashboardService.Stats", telemetry.SpanAttributes{
		UserID:    userID,
		Operation: "stats",
	})
	defer span.End()

	subjects, err := s.repo.CountSubjects(ctx, userID)
	if err != nil {
		return nil, err
	}

	documents, err := s.repo.CountDocuments(ctx, userID)
	if err != nil {
		return nil, err
	}

	queries, err := s.repo.CountActivities(ctx, userID, domain.ActionChatQuery)
	if err != nil {
		return nil, err
	}

	return &DashboardStats{
		Subjects:  subjects,
		Documents: documents,
		Queries:   queries,
	}, nil
}

// RecentActivity returns the user's most recent activities, newest first.
func (s *DashboardService) RecentActivity(ctx context.Context, userID string, limit int) ([]*domain.ActivityLog, error) {
	ctx, span := telemetry.StartSpan(ctx, "DashboardService.RecentActivity", telemetry.SpanAttributes{
		UserID:    userID,
		Operation: "activity",
	})
	defer span.End()

	if limit <= 0 {
		limit = 10
	}
	return s.repo.ListRecentActivities(ctx, userID, limit)
}
