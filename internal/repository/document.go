package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kortex-labs/kortex/internal/domain"
	"github.com/kortex-labs/kortex/internal/pagination"
)

type DocumentRepository struct {
	db dbtx
}

func NewDocumentRepository(pool *pgxpool.Pool) *DocumentRepository {
	return &DocumentRepository{db: pool}
}

func NewDocumentRepositoryWithTx(tx pgx.Tx) *DocumentRepository {
	return &DocumentRepository{db: tx}
}

func (r *DocumentRepository) Create(ctx context.Context, d *domain.Document) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO documents (id, subject_id, user_id, title, storage_key, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		d.ID, d.SubjectID, d.UserID, d.Title, nullableString(d.StorageKey), d.CreatedAt,
	)
	return err
}

func (r *DocumentRepository) GetByID(ctx context.Context, id string) (*domain.Document, error) {
	var d domain.Document
	var storageKey *string
	err := r.db.QueryRow(ctx,
		`SELECT id, subject_id, user_id, title, storage_key, created_at
		 FROM documents WHERE id = $1`,
		id,
	).Scan(&d.ID, &d.SubjectID, &d.UserID, &d.Title, &storageKey, &d.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrDocumentNotFound
		}
		return nil, err
	}
	if storageKey != nil {
		d.StorageKey = *storageKey
	}
	return &d, nil
}

func (r *DocumentRepository) ListBySubjectWithCursor(ctx context.Context, subjectID string, cursor *pagination.Cursor, limit int) (*pagination.PageResult[*domain.Document], error) {
	if limit <= 0 {
		limit = 20
	}

	var rows pgx.Rows
	var err error

	if cursor != nil {
		rows, err = r.db.Query(ctx,
			`SELECT id, subject_id, user_id, title, storage_key, created_at
			 FROM documents
			 WHERE subject_id = $1 AND (created_at, id) < ($2, $3)
			 ORDER BY created_at DESC, id DESC
			 LIMIT $4`,
			subjectID, cursor.Timestamp, cursor.LastID, limit+1,
		)
	} else {
		rows, err = r.db.Query(ctx,
			`SELECT id, subject_id, user_id, title, storage_key, created_at
			 FROM documents
			 WHERE subject_id = $1
			 ORDER BY created_at DESC, id DESC
			 LIMIT $2`,
			subjectID, limit+1,
		)
	}

	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items, err := scanDocumentRows(rows)
	if err != nil {
		return nil, err
	}

	hasMore := len(items) > limit
	if hasMore {
		items = items[:limit]
	}

	var nextCursor string
	if hasMore && len(items) > 0 {
		lastItem := items[len(items)-1]
		nextCursor = pagination.EncodeCursor(lastItem.ID, lastItem.CreatedAt)
	}

	return &pagination.PageResult[*domain.Document]{
		Items:   items,
		Cursor:  nextCursor,
		HasMore: hasMore,
	}, nil
}

// Delete removes a document; its chunks follow through ON DELETE CASCADE.
func (r *DocumentRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM documents WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrDocumentNotFound
	}
	return nil
}

// SetStorageKey records where the original upload was archived.
func (r *DocumentRepository) SetStorageKey(ctx context.Context, id, storageKey string) error {
	_, err := r.db.Exec(ctx,
		`UPDATE documents SET storage_key = $2 WHERE id = $1`,
		id, nullableString(storageKey),
	)
	return err
}

func scanDocumentRows(rows pgx.Rows) ([]*domain.Document, error) {
	var results []*domain.Document
	for rows.Next() {
		var d domain.Document
		var storageKey *string
		if err := rows.Scan(&d.ID, &d.SubjectID, &d.UserID, &d.Title, &storageKey, &d.CreatedAt); err != nil {
			return nil, err
		}
		if storageKey != nil {
			d.StorageKey = *storageKey
		}
		results = append(results, &d)
	}
	return results, rows.Err()
}
