package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/fleetwatch/fleetwatch/internal/store"
)

var prsCmd = &cobra.Command{
	Use:   "prs [product-id]",
	Short: "List open pull requests",
	Long: `List open pull requests across tracked repositories, most recently
updated first. With a product id, only that product's repositories are
included.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPRs,
}

func init() {
	rootCmd.AddCommand(prsCmd)
}

func runPRs(cmd *cobra.Command, args []string) error {
	c, err := bootstrap()
	if err != nil {
		return err
	}
	defer c.Store.Close()

	var prs []store.PullRequest
	if len(args) == 1 {
		prs, err = c.Service.ListOpenPullRequestsForProduct(args[0])
	} else {
		prs, err = c.Service.ListOpenPullRequests()
	}
	if err != nil {
		return err
	}

	if len(prs) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No open pull requests.")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "REPOSITORY\tTITLE\tAUTHOR\tURL")
	for _, pr := range prs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", pr.RepositoryName, pr.Title, pr.Author, pr.URL)
	}
	return w.Flush()
}
