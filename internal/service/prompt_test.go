package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kortex-labs/kortex/internal/domain"
)

func TestAssemblePrompt(t *testing.T) {
	chunks := []domain.RetrievedChunk{
		{ID: "c1", Content: "The cell membrane is selectively permeable.", Similarity: 0.91},
		{ID: "c2", Content: "Osmosis moves water toward higher solute concentration.", Similarity: 0.87},
	}

	systemPrompt, userPrompt := AssemblePrompt("What is osmosis?", chunks)

	assert.Contains(t, systemPrompt, "KORTEX")
	assert.Contains(t, systemPrompt, "STRICTLY")
	assert.Contains(t, systemPrompt, "RULES:")

	assert.Contains(t, userPrompt, "[Source 1] The cell membrane is selectively permeable.")
	assert.Contains(t, userPrompt, "[Source 2] Osmosis moves water toward higher solute concentration.")
	assert.Contains(t, userPrompt, "Question: What is osmosis?")
	assert.Contains(t, userPrompt, "based only on the context above")

	// Sources separated by a blank line, in the order given.
	first := strings.Index(userPrompt, "[Source 1]")
	second := strings.Index(userPrompt, "[Source 2]")
	assert.Less(t, first, second)
	assert.Contains(t, userPrompt, "permeable.\n\n[Source 2]")
}

func TestAssemblePromptNoChunks(t *testing.T) {
	systemPrompt, userPrompt := AssemblePrompt("anything", nil)

	assert.NotEmpty(t, systemPrompt)
	assert.Contains(t, userPrompt, "Question: anything")
}

func TestAssemblePromptSystemUserSplit(t *testing.T) {
	systemPrompt, userPrompt := AssemblePrompt("q", []domain.RetrievedChunk{{Content: "ctx"}})

	// Behavioral rules live in the system prompt, the payload in the user
	// prompt.
	assert.NotContains(t, systemPrompt, "ctx")
	assert.Contains(t, userPrompt, "ctx")
}
