package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kortex-labs/kortex/internal/domain"
)

type ActivityLogRepository struct {
	db dbtx
}

func NewActivityLogRepository(pool *pgxpool.Pool) *ActivityLogRepository {
	return &ActivityLogRepository{db: pool}
}

func NewActivityLogRepositoryWithTx(tx pgx.Tx) *ActivityLogRepository {
	return &ActivityLogRepository{db: tx}
}

func (r *ActivityLogRepository) Create(ctx context.Context, log *domain.ActivityLog) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO activity_logs (id, user_id, action_type, entity_id, metadata, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		log.ID, log.UserID, log.ActionType, nullableString(log.EntityID), log.Metadata, log.CreatedAt,
	)
	return err
}

func (r *ActivityLogRepository) CountActivities(ctx context.Context, userID string, action domain.ActionType) (int, error) {
	var count int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM activity_logs WHERE user_id = $1 AND action_type = $2`,
		userID, action,
	).Scan(&count)
	return count, err
}

func (r *ActivityLogRepository) ListRecentActivities(ctx context.Context, userID string, limit int) ([]*domain.ActivityLog, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, user_id, action_type, entity_id, metadata, created_at
		 FROM activity_logs
		 WHERE user_id = $1
		 ORDER BY created_at DESC, id DESC
		 LIMIT $2`,
		userID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []*domain.ActivityLog
	for rows.Next() {
		var a domain.ActivityLog
		var entityID *string
		if err := rows.Scan(&a.ID, &a.UserID, &a.ActionType, &entityID, &a.Metadata, &a.CreatedAt); err != nil {
			return nil, err
		}
		if entityID != nil {
			a.EntityID = *entityID
		}
		results = append(results, &a)
	}
	return results, rows.Err()
}

func (r *ActivityLogRepository) CountSubjects(ctx context.Context, userID string) (int, error) {
	var count int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM subjects WHERE user_id = $1`, userID,
	).Scan(&count)
	return count, err
}

func (r *ActivityLogRepository) CountDocuments(ctx context.Context, userID string) (int, error) {
	var count int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM documents WHERE user_id = $1`, userID,
	).Scan(&count)
	return count, err
}
