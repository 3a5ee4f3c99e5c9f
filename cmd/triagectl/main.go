package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	apiURL  string
	natsURL string
	output  string
)

var rootCmd = &cobra.Command{
	Use:   "triagectl",
	Short: "Aegis triage operator CLI",
	Long: `triagectl is the command-line interface for the Aegis triage service.

Inspect dispatch outcomes, publish test events to the platform stream,
and manage the dead-letter queue from your terminal.`,
	Version: "0.1.0",
}

func init() {
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "http://localhost:8086", "triage service API URL")
	rootCmd.PersistentFlags().StringVar(&natsURL, "nats-url", "nats://localhost:4222", "NATS server URL")
	rootCmd.PersistentFlags().StringVar(&output, "output", "table", "output format: table, json, yaml")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
