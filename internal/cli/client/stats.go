package client

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

// StatsAPIResponse represents the dashboard stats API response.
type StatsAPIResponse struct {
	Subjects  int `json:"subjects"`
	Documents int `json:"documents"`
	Queries   int `json:"queries"`
}

// ActivityItemResponse represents one entry in the activity feed.
type ActivityItemResponse struct {
	ID         string         `json:"id"`
	ActionType string         `json:"action_type"`
	EntityID   string         `json:"entity_id,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	CreatedAt  string         `json:"created_at"`
}

// StatsCmd creates the stats command.
func StatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show your usage counters",
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")

			api, err := NewAPIClient()
			if err != nil {
				return err
			}

			resp, err := api.Get("/api/dashboard/stats")
			if err != nil {
				return fmt.Errorf("stats failed: %w", err)
			}

			var stats StatsAPIResponse
			if err := json.Unmarshal(resp.Data, &stats); err != nil {
				return fmt.Errorf("failed to parse response: %w", err)
			}

			if outputJSON {
				output, _ := json.MarshalIndent(stats, "", "  ")
				fmt.Println(string(output))
				return nil
			}

			fmt.Printf("Subjects:  %d\n", stats.Subjects)
			fmt.Printf("Documents: %d\n", stats.Documents)
			fmt.Printf("Queries:   %d\n", stats.Queries)
			return nil
		},
	}
}

// ActivityCmd creates the activity command.
func ActivityCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "activity",
		Short: "Show your recent activity",
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")

			api, err := NewAPIClient()
			if err != nil {
				return err
			}

			resp, err := api.Get("/api/dashboard/activity?limit=" + strconv.Itoa(limit))
			if err != nil {
				return fmt.Errorf("activity failed: %w", err)
			}

			var activities []ActivityItemResponse
			if err := json.Unmarshal(resp.Data, &activities); err != nil {
				return fmt.Errorf("failed to parse response: %w", err)
			}

			if outputJSON {
				output, _ := json.MarshalIndent(activities, "", "  ")
				fmt.Println(string(output))
				return nil
			}

			if len(activities) == 0 {
				fmt.Println("No activity yet.")
				return nil
			}

			for _, a := range activities {
				fmt.Printf("%s  %-16s  %s\n", a.CreatedAt, a.ActionType, a.EntityID)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "Maximum number of entries")

	return cmd
}
