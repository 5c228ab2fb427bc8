package openai

import (
	"context"
	"errors"
	"fmt"
	"os"

	openai "github.com/sashabaranov/go-openai"
)

const (
	// DefaultEmbeddingModel is the Workers AI model used for embeddings
	DefaultEmbeddingModel = "@cf/baai/bge-base-en-v1.5"
	// DefaultEmbeddingDimensions is the vector size produced by bge-base
	DefaultEmbeddingDimensions = 768
)

var (
	// ErrEmptyText is returned when text is empty
	ErrEmptyText = errors.New("text cannot be empty")
	// ErrWrongDimensions is returned when embedding has wrong dimensions
	ErrWrongDimensions = errors.New("embedding has wrong dimensions, expected 768")
	// ErrNoAPIKey is returned when the embedding API key is not set
	ErrNoAPIKey = errors.New("EMBEDDING_API_KEY environment variable not set")
)

// EmbeddingAPI defines the interface for embedding generation
type EmbeddingAPI interface {
	CreateEmbeddings(ctx context.Context, texts []string) ([][]float32, error)
}

// Client wraps an OpenAI-compatible embedding API
type Client struct {
	api        EmbeddingAPI
	dimensions int
}

// APIAdapter talks to any OpenAI-compatible embeddings endpoint. The base
// URL selects the provider (Cloudflare Workers AI in production).
type APIAdapter struct {
	client *openai.Client
	model  string
}

func NewAPIAdapter(apiKey, baseURL, model string) *APIAdapter {
	if model == "" {
		model = DefaultEmbeddingModel
	}
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &APIAdapter{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}
}

// CreateEmbeddings calls the embeddings endpoint for a batch of inputs
func (a *APIAdapter) CreateEmbeddings(ctx context.Context, texts []string) ([][]float32, error) {
	resp, err := a.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: texts,
		Model: openai.EmbeddingModel(a.model),
	})
	if err != nil {
		return nil, err
	}

	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("expected %d embeddings, got %d", len(texts), len(resp.Data))
	}

	embeddings := make([][]float32, len(resp.Data))
	for i, d := range resp.Data {
		embeddings[i] = d.Embedding
	}
	return embeddings, nil
}

type Config struct {
	APIKey              string
	BaseURL             string
	EmbeddingModel      string
	EmbeddingDimensions int
}

// NewClient creates a new embedding client using defaults.
func NewClient(apiKey, baseURL string) *Client {
	return NewClientWithConfig(Config{APIKey: apiKey, BaseURL: baseURL})
}

// NewClientWithConfig creates a new embedding client with explicit configuration.
func NewClientWithConfig(cfg Config) *Client {
	dimensions := cfg.EmbeddingDimensions
	if dimensions <= 0 {
		dimensions = DefaultEmbeddingDimensions
	}
	return &Client{
		api:        NewAPIAdapter(cfg.APIKey, cfg.BaseURL, cfg.EmbeddingModel),
		dimensions: dimensions,
	}
}

// NewClientFromEnv creates a new embedding client from EMBEDDING_API_KEY
// and EMBEDDING_BASE_URL environment variables
func NewClientFromEnv() (*Client, error) {
	apiKey := os.Getenv("EMBEDDING_API_KEY")
	if apiKey == "" {
		return nil, ErrNoAPIKey
	}
	return NewClient(apiKey, os.Getenv("EMBEDDING_BASE_URL")), nil
}

// GenerateEmbedding generates an embedding for the given text
func (c *Client) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, ErrEmptyText
	}

	embeddings, err := c.api.CreateEmbeddings(ctx, []string{text})
	if err != nil {
		return nil, fmt.Errorf("failed to create embedding: %w", err)
	}
	if len(embeddings) == 0 {
		return nil, errors.New("no embedding data returned")
	}

	embedding := embeddings[0]
	if len(embedding) != c.expected() {
		return nil, ErrWrongDimensions
	}

	return embedding, nil
}

// GenerateEmbeddings generates embeddings for a batch of texts, preserving
// input order.
func (c *Client) GenerateEmbeddings(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, ErrEmptyText
	}
	for _, t := range texts {
		if t == "" {
			return nil, ErrEmptyText
		}
	}

	embeddings, err := c.api.CreateEmbeddings(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("failed to create embeddings: %w", err)
	}

	for _, e := range embeddings {
		if len(e) != c.expected() {
			return nil, ErrWrongDimensions
		}
	}

	return embeddings, nil
}

func (c *Client) expected() int {
	if c.dimensions > 0 {
		return c.dimensions
	}
	return DefaultEmbeddingDimensions
}
