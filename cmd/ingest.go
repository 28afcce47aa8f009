package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [topic ...]",
	Short: "One-shot ingestion of repositories by topic",
	Long: `Ingest fetches every repository tagged with the given topics,
records them along with their vulnerability alerts and pull requests,
and reports any partial failures.

If no topics are provided, the topics from the config file are used.`,
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	logger := setupLogger()

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	topics, err := resolveTopics(args, cfg.Topics)
	if err != nil {
		return err
	}

	c, err := initComponents(cfg, logger)
	if err != nil {
		return fmt.Errorf("initializing components: %w", err)
	}
	defer c.Store.Close()

	if err := c.Worker.Init(); err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	errs := c.Worker.IngestTopics(ctx, topics)
	if len(errs) > 0 {
		for _, e := range errs {
			logger.Error("ingestion error", "error", e)
		}
		return fmt.Errorf("ingestion finished with %d error(s)", len(errs))
	}

	fmt.Fprintf(cmd.OutOrStdout(), "ingested %d topic(s)\n", len(topics))
	return nil
}
