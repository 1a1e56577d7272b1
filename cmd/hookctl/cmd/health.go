package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// healthCmd represents the health command
var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check the health of the hookgate service",
	Long:  `Check the health status of the hookgate gateway via its /health endpoint.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		resp, err := makeRequest("GET", "/health", nil, nil)
		if err != nil {
			return fmt.Errorf("health check failed: %w", err)
		}
		body, err := decodeBody(resp)
		if err != nil {
			return err
		}

		if outputJSON {
			printRaw(body)
			return nil
		}

		if resp.StatusCode == 200 {
			fmt.Printf("✓ Service is healthy (uptime %.0fs)\n", body["uptime"])
		} else {
			fmt.Printf("✗ Service is unhealthy (HTTP %d)\n", resp.StatusCode)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(healthCmd)
}
