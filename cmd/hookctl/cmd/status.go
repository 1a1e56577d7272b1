package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// statusCmd represents the status command
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the delivery queue status",
	Long:  `Show the pending queue, retry budget, and recent delivery outcomes.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		resp, err := makeRequest("GET", "/queue-status", nil, nil)
		if err != nil {
			return fmt.Errorf("status request failed: %w", err)
		}
		body, err := decodeBody(resp)
		if err != nil {
			return err
		}
		if resp.StatusCode != 200 {
			return fmt.Errorf("unexpected status: %d", resp.StatusCode)
		}

		if outputJSON {
			printRaw(body)
			return nil
		}

		fmt.Printf("Queue length:  %v\n", body["queueLength"])
		fmt.Printf("Processed:     %v\n", body["processedCount"])
		fmt.Printf("Max retries:   %v\n", body["maxRetries"])

		if items, ok := body["items"].([]any); ok && len(items) > 0 {
			fmt.Println("\nPending items:")
			for _, raw := range items {
				if item, ok := raw.(map[string]any); ok {
					fmt.Printf("  %v (retries: %v)\n", item["event"], item["retries"])
				}
			}
		}
		if recent, ok := body["recentEvents"].([]any); ok && len(recent) > 0 {
			fmt.Println("\nRecent outcomes:")
			for _, raw := range recent {
				if ev, ok := raw.(map[string]any); ok {
					fmt.Printf("  %v  %v  %v\n", ev["timestamp"], ev["status"], ev["event"])
				}
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
