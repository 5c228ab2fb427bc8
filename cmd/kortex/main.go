package main

import (
	"fmt"
	"os"

	"github.com/kortex-labs/kortex/internal/cli"
	"github.com/kortex-labs/kortex/internal/cli/client"
	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:   "kortex",
		Short: "Kortex CLI - Study with your own documents",
		Long: `Kortex CLI provides commands to upload study material and ask questions about it.

Environment variables:
  KORTEX_USER_ID   User ID for identification (run 'kortex init' to obtain one)
  KORTEX_API_URL   API base URL (default: http://localhost:8080)`,
		Version: version,
	}

	rootCmd.PersistentFlags().Bool("output", false, "Output as JSON")
	rootCmd.PersistentFlags().String("user-id", "", "User ID (overrides env and config)")
	rootCmd.PersistentFlags().String("api-url", "", "API base URL (overrides env and config)")
	cli.AddHelpJSONFlag(rootCmd)

	rootCmd.AddCommand(client.InitCmd())
	rootCmd.AddCommand(client.AuthCmd())
	rootCmd.AddCommand(client.SubjectsCmd())
	rootCmd.AddCommand(client.UploadCmd())
	rootCmd.AddCommand(client.AskCmd())
	rootCmd.AddCommand(client.DocumentsCmd())
	rootCmd.AddCommand(client.StatsCmd())
	rootCmd.AddCommand(client.ActivityCmd())

	cli.CheckHelpJSON(rootCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
