package config

import (
	"fmt"
	"log"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Port  string `envconfig:"PORT" default:"8080"`
	Debug bool   `envconfig:"DEBUG" default:"false"`

	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`

	// Embedding provider: any OpenAI-compatible embeddings endpoint.
	EmbeddingAPIKey  string `envconfig:"EMBEDDING_API_KEY"`
	EmbeddingBaseURL string `envconfig:"EMBEDDING_BASE_URL"`

	// Chat provider: any OpenAI-compatible chat completions endpoint.
	GroqAPIKey  string `envconfig:"GROQ_API_KEY"`
	GroqBaseURL string `envconfig:"GROQ_BASE_URL" default:"https://api.groq.com/openai/v1"`
	ChatModel   string `envconfig:"CHAT_MODEL" default:"llama-3.3-70b-versatile"`

	SimilarityThreshold float64 `envconfig:"SIMILARITY_THRESHOLD" default:"0.5"`
	ConfidenceFloor     float64 `envconfig:"CONFIDENCE_FLOOR" default:"0.5"`
	MaxChunks           int     `envconfig:"MAX_CHUNKS" default:"5"`

	MaxUploadBytes int64 `envconfig:"MAX_UPLOAD_BYTES" default:"10485760"`

	S3Endpoint  string `envconfig:"S3_ENDPOINT"`
	S3AccessKey string `envconfig:"S3_ACCESS_KEY_ID"`
	S3SecretKey string `envconfig:"S3_SECRET_ACCESS_KEY"`
	S3Bucket    string `envconfig:"S3_BUCKET" default:"kortex-documents"`
	S3Region    string `envconfig:"S3_REGION" default:"us-east-1"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("KORTEX", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	return &cfg, nil
}

func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	return cfg
}

func (c *Config) HasS3() bool {
	return c.S3Endpoint != "" && c.S3AccessKey != "" && c.S3SecretKey != ""
}

func (c *Config) HasEmbedding() bool {
	return c.EmbeddingAPIKey != ""
}

func (c *Config) HasChat() bool {
	return c.GroqAPIKey != ""
}
