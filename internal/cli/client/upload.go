package client

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

// UploadAPIResponse represents the upload API response.
type UploadAPIResponse struct {
	DocumentID string `json:"document_id"`
	Title      string `json:"title"`
	ChunkCount int    `json:"chunk_count"`
}

// UploadCmd creates the upload command.
func UploadCmd() *cobra.Command {
	var subjectID string

	cmd := &cobra.Command{
		Use:   "upload <file.pdf>",
		Short: "Upload a PDF into a subject",
		Long:  "Uploads a PDF, extracts its text, and makes it searchable through 'kortex ask'.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runUpload(args[0], subjectID, outputJSON)
		},
	}

	cmd.Flags().StringVarP(&subjectID, "subject", "s", "", "Subject ID to upload into (required)")
	cmd.MarkFlagRequired("subject")

	return cmd
}

func runUpload(filePath, subjectID string, outputJSON bool) error {
	if !strings.HasSuffix(strings.ToLower(filePath), ".pdf") {
		return fmt.Errorf("only PDF files are supported")
	}
	if _, err := os.Stat(filePath); err != nil {
		return fmt.Errorf("cannot read %s: %w", filePath, err)
	}

	api, err := NewAPIClient()
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "Uploading %s...\n", filePath)

	resp, err := api.UploadPDF("/api/upload", filePath, subjectID)
	if err != nil {
		return fmt.Errorf("upload failed: %w", err)
	}

	var result UploadAPIResponse
	if err := json.Unmarshal(resp.Data, &result); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	if outputJSON {
		output, _ := json.MarshalIndent(result, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	fmt.Printf("Uploaded '%s'\n", result.Title)
	fmt.Printf("Document ID: %s\n", result.DocumentID)
	fmt.Printf("Chunks: %d\n", result.ChunkCount)
	return nil
}
