package domain

import (
	"fmt"
	"time"
)

// EmbeddingDimensions is the expected size of every stored embedding vector.
// The embedding model (bge-base) produces 768-dimensional vectors; a vector
// of any other length must never reach the store.
const EmbeddingDimensions = 768

// ChunkMeta carries the positional metadata attached to each chunk so that
// retrieved passages can be traced back to their place in the source document.
type ChunkMeta struct {
	ChunkIndex  int    `json:"chunkIndex"`
	TotalChunks int    `json:"totalChunks"`
	SourceLabel string `json:"sourceLabel"`
}

// Chunk is one embedded text segment of a document.
type Chunk struct {
	ID         string
	DocumentID string
	SubjectID  string
	UserID     string
	Content    string
	Embedding  []float32
	Metadata   ChunkMeta
	CreatedAt  time.Time
}

// RetrievedChunk is a chunk returned from vector search, carrying its
// similarity to the query embedding. Transient; never persisted.
type RetrievedChunk struct {
	ID         string    `json:"id"`
	Content    string    `json:"content"`
	Similarity float64   `json:"similarity"`
	Metadata   ChunkMeta `json:"metadata"`
}

// ValidateChunk validates a Chunk instance
func ValidateChunk(c *Chunk) error {
	if c == nil {
		return fmt.Errorf("chunk cannot be nil")
	}

	if c.ID == "" {
		return fmt.Errorf("chunk ID is required")
	}

	if c.DocumentID == "" {
		return fmt.Errorf("chunk DocumentID is required")
	}

	if c.SubjectID == "" {
		return fmt.Errorf("chunk SubjectID is required")
	}

	if c.Content == "" {
		return fmt.Errorf("chunk Content is required")
	}

	if len(c.Embedding) != EmbeddingDimensions {
		return fmt.Errorf("chunk Embedding must have %d dimensions, got %d", EmbeddingDimensions, len(c.Embedding))
	}

	if c.Metadata.ChunkIndex < 0 {
		return fmt.Errorf("chunk Metadata.ChunkIndex must be non-negative")
	}

	if c.Metadata.TotalChunks < 1 {
		return fmt.Errorf("chunk Metadata.TotalChunks must be positive")
	}

	return nil
}
