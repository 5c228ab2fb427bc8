package client

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// SubjectResponse represents a subject in API responses.
type SubjectResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	CreatedAt string `json:"created_at"`
}

// SubjectsCmd creates the subjects parent command.
func SubjectsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "subjects",
		Short: "Manage subjects",
		Long:  "Create, list, rename, and delete the subjects your documents are grouped into",
	}

	cmd.AddCommand(subjectsListCmd())
	cmd.AddCommand(subjectsCreateCmd())
	cmd.AddCommand(subjectsRenameCmd())
	cmd.AddCommand(subjectsDeleteCmd())

	return cmd
}

func subjectsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List your subjects",
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")

			api, err := NewAPIClient()
			if err != nil {
				return err
			}

			resp, err := api.Get("/api/subjects")
			if err != nil {
				return fmt.Errorf("list failed: %w", err)
			}

			var subjects []SubjectResponse
			if err := json.Unmarshal(resp.Data, &subjects); err != nil {
				return fmt.Errorf("failed to parse response: %w", err)
			}

			if outputJSON {
				output, _ := json.MarshalIndent(subjects, "", "  ")
				fmt.Println(string(output))
				return nil
			}

			if len(subjects) == 0 {
				fmt.Println("No subjects yet. Create one with 'kortex subjects create <name>'.")
				return nil
			}

			for _, s := range subjects {
				fmt.Printf("%s  %s  (created %s)\n", s.ID, s.Name, s.CreatedAt)
			}
			return nil
		},
	}
}

func subjectsCreateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "create <name>",
		Short: "Create a new subject",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")

			api, err := NewAPIClient()
			if err != nil {
				return err
			}

			resp, err := api.Post("/api/subjects", map[string]string{"name": args[0]})
			if err != nil {
				return fmt.Errorf("create failed: %w", err)
			}

			var subject SubjectResponse
			if err := json.Unmarshal(resp.Data, &subject); err != nil {
				return fmt.Errorf("failed to parse response: %w", err)
			}

			if outputJSON {
				output, _ := json.MarshalIndent(subject, "", "  ")
				fmt.Println(string(output))
				return nil
			}

			fmt.Printf("Created subject '%s'\n", subject.Name)
			fmt.Printf("ID: %s\n", subject.ID)
			return nil
		},
	}
}

func subjectsRenameCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rename <id> <name>",
		Short: "Rename a subject",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := NewAPIClient()
			if err != nil {
				return err
			}

			resp, err := api.Patch("/api/subjects/"+args[0], map[string]string{"name": args[1]})
			if err != nil {
				return fmt.Errorf("rename failed: %w", err)
			}

			var subject SubjectResponse
			if err := json.Unmarshal(resp.Data, &subject); err != nil {
				return fmt.Errorf("failed to parse response: %w", err)
			}

			fmt.Printf("Renamed subject to '%s'\n", subject.Name)
			return nil
		},
	}
}

func subjectsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a subject and all its documents",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := NewAPIClient()
			if err != nil {
				return err
			}

			if _, err := api.Delete("/api/subjects/" + args[0]); err != nil {
				return fmt.Errorf("delete failed: %w", err)
			}

			fmt.Printf("Deleted subject %s\n", args[0])
			return nil
		},
	}
}
