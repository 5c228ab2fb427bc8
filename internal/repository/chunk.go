package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"github.com/kortex-labs/kortex/internal/domain"
)

type ChunkRepository struct {
	db   dbtx
	pool *pgxpool.Pool
}

func NewChunkRepository(pool *pgxpool.Pool) *ChunkRepository {
	return &ChunkRepository{db: pool, pool: pool}
}

func NewChunkRepositoryWithTx(tx pgx.Tx) *ChunkRepository {
	return &ChunkRepository{db: tx}
}

// CreateBatch inserts all chunks atomically. When backed by the pool it opens
// its own transaction; when already transaction-bound it inserts directly and
// leaves commit/rollback to the caller.
func (r *ChunkRepository) CreateBatch(ctx context.Context, chunks []*domain.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	if r.pool == nil {
		return r.insertAll(ctx, r.db, chunks)
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := r.insertAll(ctx, tx, chunks); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (r *ChunkRepository) insertAll(ctx context.Context, db dbtx, chunks []*domain.Chunk) error {
	for _, c := range chunks {
		_, err := db.Exec(ctx,
			`INSERT INTO chunks (id, document_id, subject_id, user_id, content, embedding, metadata, created_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			c.ID, c.DocumentID, c.SubjectID, c.UserID, c.Content,
			pgvector.NewVector(c.Embedding), c.Metadata, c.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert chunk %s: %w", c.ID, err)
		}
	}
	return nil
}

// SearchChunks finds the chunks in a subject most similar to the query
// embedding. Similarity is cosine, rescaled to [0, 1] where 1 is identical.
// Rows below the threshold never leave the database.
func (r *ChunkRepository) SearchChunks(ctx context.Context, embedding []float32, subjectID string, threshold float64, limit int) ([]domain.RetrievedChunk, error) {
	vec := pgvector.NewVector(embedding)

	rows, err := r.db.Query(ctx,
		`SELECT id, content, metadata, 1 - (embedding <=> $1) AS similarity
		 FROM chunks
		 WHERE subject_id = $2 AND 1 - (embedding <=> $1) >= $3
		 ORDER BY embedding <=> $1
		 LIMIT $4`,
		vec, subjectID, threshold, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("vector search failed: %w", err)
	}
	defer rows.Close()

	var results []domain.RetrievedChunk
	for rows.Next() {
		var c domain.RetrievedChunk
		if err := rows.Scan(&c.ID, &c.Content, &c.Metadata, &c.Similarity); err != nil {
			return nil, fmt.Errorf("failed to scan search result: %w", err)
		}
		results = append(results, c)
	}
	return results, rows.Err()
}

// CountByDocument reports how many chunks a document produced.
func (r *ChunkRepository) CountByDocument(ctx context.Context, documentID string) (int, error) {
	var count int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM chunks WHERE document_id = $1`, documentID,
	).Scan(&count)
	return count, err
}
