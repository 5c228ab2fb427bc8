package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kortex-labs/kortex/internal/domain"
)

type SubjectRepository struct {
	db dbtx
}

func NewSubjectRepository(pool *pgxpool.Pool) *SubjectRepository {
	return &SubjectRepository{db: pool}
}

func NewSubjectRepositoryWithTx(tx pgx.Tx) *SubjectRepository {
	return &SubjectRepository{db: tx}
}

func (r *SubjectRepository) Create(ctx context.Context, s *domain.Subject) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO subjects (id, user_id, name, created_at)
		 VALUES ($1, $2, $3, $4)`,
		s.ID, s.UserID, s.Name, s.CreatedAt,
	)
	return err
}

func (r *SubjectRepository) GetByID(ctx context.Context, id string) (*domain.Subject, error) {
	var s domain.Subject
	err := r.db.QueryRow(ctx,
		`SELECT id, user_id, name, created_at FROM subjects WHERE id = $1`,
		id,
	).Scan(&s.ID, &s.UserID, &s.Name, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrSubjectNotFound
		}
		return nil, err
	}
	return &s, nil
}

func (r *SubjectRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Subject, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, user_id, name, created_at
		 FROM subjects WHERE user_id = $1 ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []*domain.Subject
	for rows.Next() {
		var s domain.Subject
		if err := rows.Scan(&s.ID, &s.UserID, &s.Name, &s.CreatedAt); err != nil {
			return nil, err
		}
		results = append(results, &s)
	}
	return results, rows.Err()
}

func (r *SubjectRepository) Rename(ctx context.Context, id, name string) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE subjects SET name = $2 WHERE id = $1`,
		id, name,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrSubjectNotFound
	}
	return nil
}

// Delete removes a subject. Documents and chunks follow through
// ON DELETE CASCADE.
func (r *SubjectRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM subjects WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrSubjectNotFound
	}
	return nil
}
