package service

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/kortex-labs/kortex/internal/domain"
)

// Default chunking parameters. Changing these invalidates the boundaries of
// already-persisted chunks, so they are fixed for the life of a store.
const (
	DefaultMaxChunkTokens     = 600
	DefaultChunkOverlapTokens = 100
)

var (
	collapseNewlines = regexp.MustCompile(`\n{3,}`)
	collapseSpaces   = regexp.MustCompile(`[ \t]+`)
)

// estimateTokens approximates token count as ceil(len/4). It is a crude
// proxy for the real tokenizer, kept as-is because persisted chunk
// boundaries depend on it.
func estimateTokens(text string) int {
	return (len(text) + 3) / 4
}

// NormalizeText cleans raw extracted text: line endings become \n, runs of
// three or more newlines collapse to two, runs of spaces and tabs collapse
// to one space, and the result is trimmed. Idempotent.
func NormalizeText(raw string) string {
	clean := strings.ReplaceAll(raw, "\r\n", "\n")
	clean = strings.ReplaceAll(clean, "\r", "\n")
	clean = collapseNewlines.ReplaceAllString(clean, "\n\n")
	clean = collapseSpaces.ReplaceAllString(clean, " ")
	return strings.TrimSpace(clean)
}

// SplitSentences splits normalized text at points where a sentence-ending
// mark (. ! ?) is followed by whitespace. The boundary whitespace is
// consumed; the punctuation stays with its sentence. Text without any
// sentence-ending mark comes back as a single sentence.
func SplitSentences(clean string) []string {
	var sentences []string
	start := 0
	runes := []rune(clean)

	for i := 0; i < len(runes); i++ {
		if runes[i] != '.' && runes[i] != '!' && runes[i] != '?' {
			continue
		}
		if i+1 >= len(runes) || !isSpace(runes[i+1]) {
			continue
		}

		sentence := strings.TrimSpace(string(runes[start : i+1]))
		if sentence != "" {
			sentences = append(sentences, sentence)
		}

		// Consume the boundary whitespace.
		j := i + 1
		for j < len(runes) && isSpace(runes[j]) {
			j++
		}
		start = j
		i = j - 1
	}

	if start < len(runes) {
		sentence := strings.TrimSpace(string(runes[start:]))
		if sentence != "" {
			sentences = append(sentences, sentence)
		}
	}

	return sentences
}

func isSpace(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\r', '\v', '\f':
		return true
	}
	return false
}

// ChunkText packs sentences into token-bounded overlapping chunks.
// Sentences accumulate greedily; when the next sentence would push the
// running estimate past maxTokens the current chunk is emitted and the next
// one is seeded with up to overlapTokens worth of trailing sentences from
// it. A single sentence larger than maxTokens is placed whole. Pure and
// deterministic.
func ChunkText(text string, maxTokens, overlapTokens int) []string {
	cleaned := NormalizeText(text)
	sentences := SplitSentences(cleaned)
	if len(sentences) == 0 {
		return nil
	}

	var chunks []string
	var currentChunk []string
	currentTokenCount := 0

	for _, sentence := range sentences {
		sentenceTokens := estimateTokens(sentence)

		if currentTokenCount+sentenceTokens > maxTokens && len(currentChunk) > 0 {
			chunks = append(chunks, strings.Join(currentChunk, " "))

			// Walk backward through the emitted chunk collecting
			// sentences into the overlap, original order preserved.
			overlapText := ""
			overlapCount := 0
			for i := len(currentChunk) - 1; i >= 0; i-- {
				sentTokens := estimateTokens(currentChunk[i])
				if overlapCount+sentTokens > overlapTokens {
					break
				}
				overlapText = currentChunk[i] + " " + overlapText
				overlapCount += sentTokens
			}

			overlapText = strings.TrimSpace(overlapText)
			if overlapText != "" {
				currentChunk = []string{overlapText}
			} else {
				currentChunk = nil
			}
			currentTokenCount = overlapCount
		}

		currentChunk = append(currentChunk, sentence)
		currentTokenCount += sentenceTokens
	}

	if len(currentChunk) > 0 {
		chunks = append(chunks, strings.Join(currentChunk, " "))
	}

	return chunks
}

// ChunkMetadata builds the positional metadata for the chunk at 0-based
// position i of a document that produced n chunks in total.
func ChunkMetadata(i, n int) domain.ChunkMeta {
	return domain.ChunkMeta{
		ChunkIndex:  i,
		TotalChunks: n,
		SourceLabel: fmt.Sprintf("Chunk %d/%d", i+1, n),
	}
}
