package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show store health overview",
	Long: `Display statistics about tracked topics including repository counts,
open finding counts, and overall database totals.`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	c, err := bootstrap()
	if err != nil {
		return err
	}
	defer c.Store.Close()

	topicStats, err := c.Store.GetTopicStats()
	if err != nil {
		return fmt.Errorf("querying topic stats: %w", err)
	}

	out := cmd.OutOrStdout()
	if len(topicStats) == 0 {
		fmt.Fprintln(out, "No repositories tracked yet.")
		fmt.Fprintln(out, "Run 'fleetwatch ingest <topic>' to get started.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TOPIC\tREPOSITORIES\tOPEN FINDINGS")
	fmt.Fprintln(w, "-----\t------------\t-------------")
	for _, ts := range topicStats {
		fmt.Fprintf(w, "%s\t%d\t%d\n", ts.Topic, ts.Repositories, ts.OpenFindings)
	}
	w.Flush()

	stats, err := c.Store.GetStats()
	if err != nil {
		return fmt.Errorf("querying stats: %w", err)
	}

	fmt.Fprintln(out)
	fmt.Fprintf(out, "Totals: %d repositories, %d open findings, %d open pull requests, %d products\n",
		stats.Repositories, stats.OpenFindings, stats.OpenPullRequests, stats.Products)

	dbPath := expandHome(c.Config.Store.Path)
	if info, err := os.Stat(dbPath); err == nil {
		fmt.Fprintf(out, "Database: %s (%d bytes)\n", dbPath, info.Size())
	} else {
		fmt.Fprintf(out, "Database: %s\n", dbPath)
	}

	return nil
}
