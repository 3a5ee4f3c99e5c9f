package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/MATHUR-LUV/Aegis/internal/dlq"
	natsclient "github.com/MATHUR-LUV/Aegis/internal/messaging/nats"
)

var dlqLimit int

var dlqCmd = &cobra.Command{
	Use:   "dlq",
	Short: "Inspect the failed-dispatch dead-letter queue",
}

var dlqListCmd = &cobra.Command{
	Use:   "list",
	Short: "List dead-lettered dispatches",
	RunE: func(cmd *cobra.Command, args []string) error {
		queue, cleanup, err := connectDLQ()
		if err != nil {
			return err
		}
		defer cleanup()

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		entries, err := queue.List(ctx, dlqLimit)
		if err != nil {
			return err
		}

		switch output {
		case "json":
			return printJSON(entries)
		case "yaml":
			return printYAML(entries)
		default:
			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "TIMESTAMP\tEVENT TYPE\tREASON\tERROR")
			for _, e := range entries {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
					e.Timestamp.Format(time.RFC3339), e.EventType, e.Reason, e.Error)
			}
			return w.Flush()
		}
	},
}

var dlqPurgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Remove all entries from the dead-letter queue",
	RunE: func(cmd *cobra.Command, args []string) error {
		queue, cleanup, err := connectDLQ()
		if err != nil {
			return err
		}
		defer cleanup()

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := queue.Purge(ctx); err != nil {
			return err
		}

		fmt.Println("DLQ purged")
		return nil
	},
}

func connectDLQ() (*dlq.JetStreamQueue, func(), error) {
	js, err := natsclient.NewJetStreamClient(natsclient.Config{
		URL:           natsURL,
		Name:          "triagectl",
		MaxReconnects: 3,
		ReconnectWait: time.Second,
		Timeout:       5 * time.Second,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("connect to NATS: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	queue, err := dlq.NewJetStreamQueue(ctx, js)
	if err != nil {
		js.Close()
		return nil, nil, err
	}

	return queue, func() { js.Close() }, nil
}

func init() {
	dlqListCmd.Flags().IntVar(&dlqLimit, "limit", 100, "maximum entries to fetch")

	dlqCmd.AddCommand(dlqListCmd)
	dlqCmd.AddCommand(dlqPurgeCmd)
	rootCmd.AddCommand(dlqCmd)
}
