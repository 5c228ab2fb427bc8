package client

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

// AuthCmd creates the auth parent command
func AuthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage stored identity",
		Long:  "Login, logout, and check identity status for the kortex CLI",
	}

	cmd.AddCommand(AuthLoginCmd())
	cmd.AddCommand(AuthLogoutCmd())
	cmd.AddCommand(AuthStatusCmd())

	return cmd
}

// AuthLoginCmd creates the auth login command
func AuthLoginCmd() *cobra.Command {
	var userID string
	var apiURL string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Login with an existing user ID",
		Long:  "Store a user ID and API URL in the global config (~/.config/kortex/config.json)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAuthLogin(userID, apiURL)
		},
	}

	cmd.Flags().StringVar(&userID, "user-id", "", "User ID (UUID)")
	cmd.Flags().StringVar(&apiURL, "url", "http://localhost:8080", "API URL")

	return cmd
}

// AuthLogoutCmd creates the auth logout command
func AuthLogoutCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "logout",
		Short: "Logout and clear stored identity",
		Long:  "Remove the stored identity from the global config",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAuthLogout()
		},
	}

	return cmd
}

// AuthStatusCmd creates the auth status command
func AuthStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show identity status",
		Long:  "Display the current identity source and credentials",
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runAuthStatus(outputJSON)
		},
	}

	cmd.Flags().Bool("output", false, "Output as JSON")

	return cmd
}

func runAuthLogin(userID, apiURL string) error {
	if userID == "" {
		fmt.Print("Enter user ID: ")
		reader := bufio.NewReader(os.Stdin)
		input, err := reader.ReadString('\n')
		if err != nil {
			return fmt.Errorf("failed to read user ID: %w", err)
		}
		userID = strings.TrimSpace(input)
	}

	if !IsValidUserID(userID) {
		return fmt.Errorf("invalid user ID format (expected a UUID)")
	}

	config := &GlobalConfig{
		UserID: userID,
		APIURL: apiURL,
	}

	if err := SaveGlobalConfig(config); err != nil {
		return fmt.Errorf("failed to save credentials: %w", err)
	}

	fmt.Println("Successfully logged in")
	return nil
}

func runAuthLogout() error {
	if err := DeleteGlobalConfig(); err != nil {
		return fmt.Errorf("failed to logout: %w", err)
	}

	fmt.Println("Successfully logged out")
	return nil
}

func runAuthStatus(outputJSON bool) error {
	source, userID, apiURL := GetCredentialSource("", "")

	if outputJSON {
		return outputStatusJSON(source, userID, apiURL)
	}

	return outputStatusText(source, userID, apiURL)
}

func outputStatusJSON(source CredentialSource, userID, apiURL string) error {
	status := map[string]interface{}{
		"authenticated": source != SourceNone,
		"source":        string(source),
	}

	if source != SourceNone {
		status["user_id"] = maskUserID(userID)
		status["api_url"] = apiURL
	}

	data, err := json.MarshalIndent(status, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal status: %w", err)
	}

	fmt.Println(string(data))
	return nil
}

func outputStatusText(source CredentialSource, userID, apiURL string) error {
	if source == SourceNone {
		fmt.Println("Not authenticated")
		fmt.Println("Run 'kortex init' to set up an identity")
		return nil
	}

	fmt.Printf("Authenticated: yes\n")
	fmt.Printf("Source: %s\n", source)
	fmt.Printf("User ID: %s\n", maskUserID(userID))
	fmt.Printf("API URL: %s\n", apiURL)

	return nil
}

func maskUserID(id string) string {
	if len(id) < 12 {
		return "***"
	}
	return id[:8] + "..." + id[len(id)-4:]
}
