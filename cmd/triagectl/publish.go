package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	natsclient "github.com/MATHUR-LUV/Aegis/internal/messaging/nats"
)

var (
	publishSubject string
	publishPayload string
)

var publishCmd = &cobra.Command{
	Use:   "publish",
	Short: "Publish a raw event to the platform stream",
	Long: `Publish a single raw event payload to the platform event stream.

Useful for smoke-testing the triage path end to end:

  triagectl publish --payload '{"event_type":"payment_failed","amount":42}'`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if publishPayload == "" {
			return fmt.Errorf("--payload is required")
		}

		js, err := natsclient.NewJetStreamClient(natsclient.Config{
			URL:           natsURL,
			Name:          "triagectl",
			MaxReconnects: 3,
			ReconnectWait: time.Second,
			Timeout:       5 * time.Second,
		})
		if err != nil {
			return fmt.Errorf("connect to NATS: %w", err)
		}
		defer js.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		ack, err := js.PublishSync(ctx, publishSubject, []byte(publishPayload))
		if err != nil {
			return fmt.Errorf("publish event: %w", err)
		}

		fmt.Printf("Published to %s (stream: %s, seq: %d)\n", publishSubject, ack.Stream, ack.Sequence)
		return nil
	},
}

func init() {
	publishCmd.Flags().StringVar(&publishSubject, "subject", "events.platform", "subject to publish to")
	publishCmd.Flags().StringVar(&publishPayload, "payload", "", "raw event payload (required)")

	rootCmd.AddCommand(publishCmd)
}
