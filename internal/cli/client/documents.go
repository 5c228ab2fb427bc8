package client

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"github.com/spf13/cobra"
)

// DocumentItemResponse represents a single document in the list response.
type DocumentItemResponse struct {
	ID        string `json:"id"`
	SubjectID string `json:"subject_id"`
	Title     string `json:"title"`
	CreatedAt string `json:"created_at"`
}

// DocumentListAPIResponse represents the documents list API response.
type DocumentListAPIResponse struct {
	Items   []DocumentItemResponse `json:"items"`
	Cursor  string                 `json:"cursor,omitempty"`
	HasMore bool                   `json:"has_more"`
}

// DocumentsCmd creates the documents parent command.
func DocumentsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "documents",
		Short: "Manage uploaded documents",
	}

	cmd.AddCommand(documentsListCmd())
	cmd.AddCommand(documentsDeleteCmd())

	return cmd
}

func documentsListCmd() *cobra.Command {
	var subjectID string
	var cursor string
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List documents in a subject",
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runDocumentsList(subjectID, cursor, limit, outputJSON)
		},
	}

	cmd.Flags().StringVarP(&subjectID, "subject", "s", "", "Subject ID to list (required)")
	cmd.Flags().StringVar(&cursor, "cursor", "", "Pagination cursor from previous response")
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of results")
	cmd.MarkFlagRequired("subject")

	return cmd
}

func runDocumentsList(subjectID, cursor string, limit int, outputJSON bool) error {
	api, err := NewAPIClient()
	if err != nil {
		return err
	}

	params := url.Values{}
	params.Set("subject_id", subjectID)
	params.Set("limit", strconv.Itoa(limit))
	if cursor != "" {
		params.Set("cursor", cursor)
	}

	resp, err := api.Get("/api/documents?" + params.Encode())
	if err != nil {
		return fmt.Errorf("list failed: %w", err)
	}

	var listResp DocumentListAPIResponse
	if err := json.Unmarshal(resp.Data, &listResp); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	if outputJSON {
		output, _ := json.MarshalIndent(listResp, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	if len(listResp.Items) == 0 {
		fmt.Println("No documents found.")
		return nil
	}

	for _, d := range listResp.Items {
		fmt.Printf("%s  %s  (uploaded %s)\n", d.ID, d.Title, d.CreatedAt)
	}

	if listResp.HasMore && listResp.Cursor != "" {
		fmt.Printf("\nMore results available. Use --cursor %s\n", listResp.Cursor)
	}

	return nil
}

func documentsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a document and its chunks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := NewAPIClient()
			if err != nil {
				return err
			}

			if _, err := api.Delete("/api/documents/" + args[0]); err != nil {
				return fmt.Errorf("delete failed: %w", err)
			}

			fmt.Printf("Deleted document %s\n", args[0])
			return nil
		},
	}
}
