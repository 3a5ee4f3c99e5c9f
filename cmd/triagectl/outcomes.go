package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/MATHUR-LUV/Aegis/internal/models"
)

var (
	outcomeStatus    string
	outcomeEventType string
	outcomePage      int
	outcomeLimit     int
)

var outcomesCmd = &cobra.Command{
	Use:   "outcomes",
	Short: "Inspect triage dispatch outcomes",
}

var outcomesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded dispatch outcomes",
	RunE: func(cmd *cobra.Command, args []string) error {
		q := url.Values{}
		if outcomeStatus != "" {
			q.Set("status", outcomeStatus)
		}
		if outcomeEventType != "" {
			q.Set("event_type", outcomeEventType)
		}
		q.Set("page", fmt.Sprint(outcomePage))
		q.Set("limit", fmt.Sprint(outcomeLimit))

		var resp models.ListOutcomesResponse
		if err := apiGet("/api/v1/outcomes?"+q.Encode(), &resp); err != nil {
			return err
		}

		switch output {
		case "json":
			return printJSON(resp)
		case "yaml":
			return printYAML(resp)
		default:
			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tEVENT TYPE\tSTATUS\tAGENT STATUS\tDURATION\tCREATED")
			for _, o := range resp.Outcomes {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%dms\t%s\n",
					o.ID, o.EventType, o.Status, o.AgentStatus,
					o.DurationMs, o.CreatedAt.Format(time.RFC3339))
			}
			if err := w.Flush(); err != nil {
				return err
			}
			fmt.Printf("\n%d of %d outcomes (page %d)\n", len(resp.Outcomes), resp.Total, resp.Page)
			return nil
		}
	},
}

var outcomesGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Show one dispatch outcome",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var o models.TriageOutcome
		if err := apiGet("/api/v1/outcomes/"+args[0], &o); err != nil {
			return err
		}

		switch output {
		case "yaml":
			return printYAML(o)
		default:
			return printJSON(o)
		}
	},
}

func init() {
	outcomesListCmd.Flags().StringVar(&outcomeStatus, "status", "", "filter by status (success, failed, suppressed)")
	outcomesListCmd.Flags().StringVar(&outcomeEventType, "event-type", "", "filter by event type")
	outcomesListCmd.Flags().IntVar(&outcomePage, "page", 1, "page number")
	outcomesListCmd.Flags().IntVar(&outcomeLimit, "limit", 20, "results per page")

	outcomesCmd.AddCommand(outcomesListCmd)
	outcomesCmd.AddCommand(outcomesGetCmd)
	rootCmd.AddCommand(outcomesCmd)
}

func apiGet(path string, out interface{}) error {
	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Get(apiURL + path)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var errBody map[string]string
		_ = json.NewDecoder(resp.Body).Decode(&errBody)
		return fmt.Errorf("API returned %d: %s", resp.StatusCode, errBody["error"])
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printYAML(v interface{}) error {
	data, err := yaml.Marshal(v)
	if err != nil {
		return err
	}
	_, err = os.Stdout.Write(data)
	return err
}
