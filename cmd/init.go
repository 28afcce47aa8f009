package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the storage schema",
	Long: `Initialize the local database, creating all tables. Safe to run
more than once; an existing schema is left untouched.`,
	Args: cobra.NoArgs,
	RunE: runInitSchema,
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func runInitSchema(cmd *cobra.Command, args []string) error {
	logger := setupLogger()

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	c, err := initComponents(cfg, logger)
	if err != nil {
		return fmt.Errorf("initializing components: %w", err)
	}
	defer c.Store.Close()

	if err := c.Worker.Init(); err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), "schema initialized")
	return nil
}
