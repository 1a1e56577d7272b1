package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// tokenCmd represents the token command
var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Mint a test signature token",
	Long:  `Request a short-lived test token from the gateway, usable as the x-signature header on webhook posts.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		token, err := fetchTestToken()
		if err != nil {
			return err
		}
		if outputJSON {
			printRaw(map[string]any{"token": token})
			return nil
		}
		fmt.Println(token)
		return nil
	},
}

// fetchTestToken requests a token from /generate-test-token.
func fetchTestToken() (string, error) {
	resp, err := makeRequest("GET", "/generate-test-token", nil, nil)
	if err != nil {
		return "", fmt.Errorf("token request failed: %w", err)
	}
	body, err := decodeBody(resp)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != 200 {
		return "", fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}
	token, ok := body["token"].(string)
	if !ok || token == "" {
		return "", fmt.Errorf("no token in response")
	}
	return token, nil
}

func init() {
	rootCmd.AddCommand(tokenCmd)
}
