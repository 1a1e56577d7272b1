package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	sendEventType string
	sendData      string
)

// sendCmd represents the send command
var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Send a signed test event to the gateway",
	Long: `Post a signed webhook event to the gateway. If no --token is given,
a test token is minted from /generate-test-token first.

The --data flag takes a JSON value for the event payload.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if sendEventType == "" {
			return fmt.Errorf("--event is required")
		}

		var data any
		if sendData != "" {
			if err := json.Unmarshal([]byte(sendData), &data); err != nil {
				return fmt.Errorf("invalid --data JSON: %w", err)
			}
		}

		token := authToken
		if token == "" {
			var err error
			token, err = fetchTestToken()
			if err != nil {
				return err
			}
		}

		payload, err := json.Marshal(map[string]any{"event": sendEventType, "data": data})
		if err != nil {
			return fmt.Errorf("marshal payload: %w", err)
		}

		resp, err := makeRequest("POST", "/webhook", bytes.NewReader(payload), map[string]string{
			"x-signature": token,
		})
		if err != nil {
			return fmt.Errorf("webhook post failed: %w", err)
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
			fmt.Printf("✓ Event %q accepted: %v\n", sendEventType, body["message"])
		} else {
			fmt.Printf("✗ Rejected (HTTP %d): %v\n", resp.StatusCode, body["error"])
		}
		return nil
	},
}

func init() {
	sendCmd.Flags().StringVar(&sendEventType, "event", "", "event type, e.g. user.created")
	sendCmd.Flags().StringVar(&sendData, "data", "", "event payload as JSON")
	rootCmd.AddCommand(sendCmd)
}
