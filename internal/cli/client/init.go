package client

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// InitCmd creates the init command: register (or look up) a user and store
// the identity in the global config.
func InitCmd() *cobra.Command {
	var email string
	var name string
	var apiURL string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Set up the kortex CLI",
		Long:  "Registers (or looks up) your user by email and stores the identity in the global config.",
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runInit(email, name, apiURL, outputJSON)
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Email address to register with")
	cmd.Flags().StringVar(&name, "name", "", "Display name")
	cmd.Flags().StringVar(&apiURL, "api-url", "", "API base URL (default: http://localhost:8080)")

	return cmd
}

func runInit(email, name, apiURL string, outputJSON bool) error {
	_ = godotenv.Load()

	if email == "" {
		fmt.Print("Enter email: ")
		reader := bufio.NewReader(os.Stdin)
		input, err := reader.ReadString('\n')
		if err != nil {
			return fmt.Errorf("failed to read email: %w", err)
		}
		email = strings.TrimSpace(input)
		if email == "" {
			return fmt.Errorf("email is required")
		}
	}

	if apiURL == "" {
		apiURL = os.Getenv(envAPIURL)
	}
	if apiURL == "" {
		apiURL = defaultAPIURL
	}

	// get-or-create needs no identity header; the user may not exist yet.
	api, err := NewAPIClientWithConfig("", apiURL)
	if err != nil {
		return fmt.Errorf("failed to create API client: %w", err)
	}

	resp, err := api.Post("/api/users/get-or-create", map[string]string{
		"email": email,
		"name":  name,
	})
	if err != nil {
		return fmt.Errorf("failed to register user: %w", err)
	}

	var user struct {
		ID    string `json:"id"`
		Email string `json:"email"`
		Name  string `json:"name"`
	}
	if err := json.Unmarshal(resp.Data, &user); err != nil {
		return fmt.Errorf("failed to parse user response: %w", err)
	}

	config := &GlobalConfig{
		UserID: user.ID,
		Email:  user.Email,
		APIURL: apiURL,
	}
	if err := SaveGlobalConfig(config); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	configPath, _ := GetConfigPath()

	if outputJSON {
		result := map[string]interface{}{
			"success": true,
			"user_id": user.ID,
			"email":   user.Email,
			"config":  configPath,
		}
		data, _ := json.MarshalIndent(result, "", "  ")
		fmt.Println(string(data))
	} else {
		fmt.Printf("Initialized kortex for %s\n", user.Email)
		fmt.Printf("User ID: %s\n", user.ID)
		fmt.Printf("Config saved to %s\n", configPath)
	}

	return nil
}
