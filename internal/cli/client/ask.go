package client

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// AskAPIRequest represents the chat API request.
type AskAPIRequest struct {
	Question  string `json:"question"`
	SubjectID string `json:"subject_id"`
}

// RetrievedChunkResponse is one retrieved passage with its similarity score.
type RetrievedChunkResponse struct {
	ID         string  `json:"id"`
	Content    string  `json:"content"`
	Similarity float64 `json:"similarity"`
	Metadata   struct {
		SourceLabel string `json:"sourceLabel"`
	} `json:"metadata"`
}

// AskAPIResponse represents the chat API response.
type AskAPIResponse struct {
	Answer          string                   `json:"answer"`
	RetrievedChunks []RetrievedChunkResponse `json:"retrievedChunks"`
}

// AskCmd creates the ask command.
func AskCmd() *cobra.Command {
	var subjectID string
	var showSources bool

	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Ask a question about your uploaded documents",
		Long:  "Answers a question from the documents of one subject, with the supporting passages.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			api, err := NewAPIClientWithCmd(cmd)
			if err != nil {
				return err
			}
			question := strings.Join(args, " ")
			return runAsk(api, question, subjectID, showSources, outputJSON)
		},
	}

	cmd.Flags().StringVarP(&subjectID, "subject", "s", "", "Subject ID to search in (required)")
	cmd.Flags().BoolVar(&showSources, "sources", false, "Show the retrieved passages under the answer")
	cmd.MarkFlagRequired("subject")

	return cmd
}

func runAsk(api *APIClient, question, subjectID string, showSources, outputJSON bool) error {
	resp, err := api.Post("/api/chat", AskAPIRequest{
		Question:  question,
		SubjectID: subjectID,
	})
	if err != nil {
		return fmt.Errorf("ask failed: %w", err)
	}

	var answer AskAPIResponse
	if err := json.Unmarshal(resp.Data, &answer); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	if outputJSON {
		output, _ := json.MarshalIndent(answer, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	fmt.Println(answer.Answer)

	if showSources && len(answer.RetrievedChunks) > 0 {
		fmt.Printf("\nSources (%d):\n", len(answer.RetrievedChunks))
		for i, chunk := range answer.RetrievedChunks {
			label := chunk.Metadata.SourceLabel
			if label == "" {
				label = chunk.ID
			}
			fmt.Printf("%d. %s (similarity %.3f)\n", i+1, label, chunk.Similarity)
			fmt.Printf("   %s\n", truncate(chunk.Content, 200))
		}
	}

	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
