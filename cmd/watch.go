package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/fleetwatch/fleetwatch/internal/notify"
)

var (
	watchInterval string
	watchNotify   string
	watchDryRun   bool
)

var watchCmd = &cobra.Command{
	Use:   "watch [topic ...]",
	Short: "Continuously ingest topics on an interval",
	Long: `Watch periodically re-ingests the given topics, keeping tracked
repositories, vulnerability findings and pull requests current.

Multiple topics can be specified as arguments:
  fleetwatch watch webapp infra

If no arguments are provided, the topics from the config file are used.`,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVar(&watchInterval, "interval", "", "ingest interval (e.g. 30m, 1h); defaults to config poll_interval")
	watchCmd.Flags().StringVar(&watchNotify, "notify", "", "notification target: slack, discord, or both")
	watchCmd.Flags().BoolVar(&watchDryRun, "dry-run", false, "ingest but skip notifications")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	logger := setupLogger()

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	topics, err := resolveTopics(args, cfg.Topics)
	if err != nil {
		return err
	}

	interval, err := cfg.Defaults.PollInterval()
	if err != nil {
		return fmt.Errorf("invalid poll_interval: %w", err)
	}
	if watchInterval != "" {
		interval, err = time.ParseDuration(watchInterval)
		if err != nil {
			return fmt.Errorf("invalid interval %q: %w", watchInterval, err)
		}
	}

	c, err := initComponents(cfg, logger)
	if err != nil {
		return fmt.Errorf("initializing components: %w", err)
	}
	defer c.Store.Close()

	if err := c.Worker.Init(); err != nil {
		return err
	}

	n, err := createNotifier(cfg, watchNotify)
	if err != nil {
		return fmt.Errorf("creating notifier: %w", err)
	}
	if watchDryRun {
		n = nil
		logger.Info("dry-run mode enabled, notifications disabled")
	}

	// Graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received signal, shutting down", "signal", sig)
		cancel()
	}()

	logger.Info("starting watch", "topics", topics, "interval", interval.String())

	// Do an immediate cycle, then tick.
	runCycle(ctx, c, n, topics)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("watch stopped", "reason", ctx.Err())
			return nil
		case <-ticker.C:
			runCycle(ctx, c, n, topics)
		}
	}
}

// runCycle ingests every topic once and sends one summary per topic.
func runCycle(ctx context.Context, c *components, n notify.Notifier, topics []string) {
	for _, topic := range topics {
		if ctx.Err() != nil {
			return
		}

		start := time.Now()
		errs := c.Worker.IngestTopic(ctx, topic)
		c.Logger.Info("ingest cycle finished",
			"topic", topic,
			"errors", len(errs),
			"duration", time.Since(start),
		)

		if n == nil {
			continue
		}

		summary := notify.IngestSummary{Topic: topic}
		for _, e := range errs {
			summary.Errors = append(summary.Errors, e.Error())
		}
		if stats, err := c.Store.GetStats(); err == nil {
			summary.Repositories = stats.Repositories
			summary.Findings = stats.OpenFindings
			summary.PullRequests = stats.OpenPullRequests
		}

		if err := n.Notify(ctx, summary); err != nil {
			c.Logger.Warn("notification failed", "topic", topic, "error", err)
		}
	}
}
