package openai

import (
	"context"
	"errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"github.com/kortex-labs/kortex/internal/domain"
)

const (
	// DefaultChatModel is the Groq-hosted model used for answer generation
	DefaultChatModel = "llama-3.3-70b-versatile"
	// DefaultChatTemperature keeps answers close to the supplied context
	DefaultChatTemperature = 0.1
	// DefaultChatMaxTokens caps one generated answer
	DefaultChatMaxTokens = 1024
)

// ErrNoMessages is returned when a generation call carries no messages
var ErrNoMessages = errors.New("messages cannot be empty")

// ChatAPI defines the interface for chat completion calls
type ChatAPI interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Generator produces answers through an OpenAI-compatible chat endpoint
// (Groq in production).
type Generator struct {
	api         ChatAPI
	model       string
	temperature float32
	maxTokens   int
}

type GeneratorConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	// Temperature nil means the default; an explicit zero is honored.
	Temperature *float32
	MaxTokens   int
}

// NewGenerator creates an answer generator with explicit configuration.
func NewGenerator(cfg GeneratorConfig) *Generator {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	model := cfg.Model
	if model == "" {
		model = DefaultChatModel
	}
	temperature := float32(DefaultChatTemperature)
	if cfg.Temperature != nil {
		temperature = *cfg.Temperature
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = DefaultChatMaxTokens
	}

	return &Generator{
		api:         openai.NewClientWithConfig(clientCfg),
		model:       model,
		temperature: temperature,
		maxTokens:   maxTokens,
	}
}

// GenerateAnswer sends the ordered messages to the model and returns the
// answer text plus token usage when the provider reports it.
func (g *Generator) GenerateAnswer(ctx context.Context, messages []domain.ChatMessage) (string, *domain.TokenUsage, error) {
	if len(messages) == 0 {
		return "", nil, ErrNoMessages
	}

	chatMessages := make([]openai.ChatCompletionMessage, len(messages))
	for i, m := range messages {
		chatMessages[i] = openai.ChatCompletionMessage{
			Role:    m.Role,
			Content: m.Content,
		}
	}

	resp, err := g.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       g.model,
		Messages:    chatMessages,
		Temperature: g.temperature,
		MaxTokens:   g.maxTokens,
	})
	if err != nil {
		return "", nil, fmt.Errorf("failed to create chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", nil, errors.New("no completion choices returned")
	}

	var usage *domain.TokenUsage
	if resp.Usage.TotalTokens > 0 {
		usage = &domain.TokenUsage{
			Prompt:     resp.Usage.PromptTokens,
			Completion: resp.Usage.CompletionTokens,
			Total:      resp.Usage.TotalTokens,
		}
	}

	return resp.Choices[0].Message.Content, usage, nil
}
