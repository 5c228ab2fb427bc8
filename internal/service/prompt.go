package service

import (
	"fmt"
	"strings"

	"github.com/kortex-labs/kortex/internal/domain"
)

// ragSystemPrompt carries the durable behavioral rules for the model. The
// per-query payload lives in the user prompt; keeping the split matters for
// providers that treat system messages specially.
const ragSystemPrompt = `You are KORTEX, a helpful study assistant. Your role is to answer questions based STRICTLY on the provided document context.

RULES:
1. Only use information from the context below
2. If the context doesn't contain enough information, say so clearly
3. Be concise but comprehensive
4. Use bullet points or numbered lists when appropriate
5. If asked about something not in the context, politely state you can only answer from uploaded documents`

// AssemblePrompt builds the system and user prompts for one query. Chunk
// contents are prefixed with 1-based [Source n] labels in the order given,
// separated by blank lines.
func AssemblePrompt(question string, chunks []domain.RetrievedChunk) (systemPrompt, userPrompt string) {
	sources := make([]string, len(chunks))
	for i, chunk := range chunks {
		sources[i] = fmt.Sprintf("[Source %d] %s", i+1, chunk.Content)
	}
	context := strings.Join(sources, "\n\n")

	userPrompt = fmt.Sprintf(`Context from uploaded documents:

%s

Question: %s

Please provide a clear, accurate answer based only on the context above.`, context, question)

	return ragSystemPrompt, userPrompt
}
