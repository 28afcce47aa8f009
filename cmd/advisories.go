package cmd

import (
	"fmt"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/fleetwatch/fleetwatch/internal/store"
	"github.com/fleetwatch/fleetwatch/internal/transform"
)

var (
	advisoriesLimit int
	advisoriesAll   bool
)

var advisoriesCmd = &cobra.Command{
	Use:   "advisories [product-id]",
	Short: "List open security advisories",
	Long: `List open security advisories for a product's repositories, most
recently updated first. With --all, advisories across every tracked
repository are listed instead.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAdvisories,
}

func init() {
	advisoriesCmd.Flags().IntVar(&advisoriesLimit, "limit", 0, "maximum advisories to list (default 10)")
	advisoriesCmd.Flags().BoolVar(&advisoriesAll, "all", false, "list advisories across all tracked repositories")
	rootCmd.AddCommand(advisoriesCmd)
}

func runAdvisories(cmd *cobra.Command, args []string) error {
	if !advisoriesAll && len(args) == 0 {
		return fmt.Errorf("a product id is required unless --all is given")
	}

	c, err := bootstrap()
	if err != nil {
		return err
	}
	defer c.Store.Close()

	var advisories []store.SecurityAdvisory
	if advisoriesAll {
		advisories, err = c.Service.ListAllSecurityAdvisories(advisoriesLimit)
	} else {
		advisories, err = c.Service.ListSecurityAdvisoriesForProduct(args[0], advisoriesLimit)
	}
	if err != nil {
		return err
	}

	if len(advisories) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No open advisories.")
		return nil
	}

	// Most severe first within the recency-ordered page.
	sort.SliceStable(advisories, func(i, j int) bool {
		return transform.SeverityWeight(advisories[i].Severity) > transform.SeverityWeight(advisories[j].Severity)
	})

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "SEVERITY\tPACKAGE\tREPOSITORY\tPATCHED\tID")
	for _, a := range advisories {
		patched := "-"
		if a.PatchedVersion != nil {
			patched = *a.PatchedVersion
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", a.Severity, a.PackageName, a.RepoName, patched, a.ExternalID)
	}
	return w.Flush()
}
