package domain

// Chat message roles understood by the answer generator.
const (
	RoleSystem = "system"
	RoleUser   = "user"
)

// ChatMessage is one ordered message handed to the answer generator.
type ChatMessage struct {
	Role    string
	Content string
}

// TokenUsage reports the token accounting from one generation call.
type TokenUsage struct {
	Prompt     int `json:"prompt"`
	Completion int `json:"completion"`
	Total      int `json:"total"`
}

// RAGResult is the outcome of one retrieval-augmented query. RetrievedChunks
// holds exactly the chunks shown to the model, in the order they were shown,
// so the caller can render the explainability trace. TokensUsed is nil when
// generation was skipped or the provider did not report usage.
type RAGResult struct {
	Answer          string           `json:"answer"`
	RetrievedChunks []RetrievedChunk `json:"retrievedChunks"`
	TokensUsed      *TokenUsage      `json:"tokensUsed,omitempty"`
}
