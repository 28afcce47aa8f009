// Package worker drives topic ingestion: external fetch, transform,
// bulk writes. The write path collects partial failures instead of
// aborting, except for the repository batch which everything downstream
// references.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/fleetwatch/fleetwatch/internal/github"
	"github.com/fleetwatch/fleetwatch/internal/store"
	"github.com/fleetwatch/fleetwatch/internal/transform"
)

// RepositorySearcher is the external API collaborator. It returns one
// fully-resolved node set per call; pagination, auth and retries are
// its concern, not the worker's.
type RepositorySearcher interface {
	SearchRepositoriesByTopic(ctx context.Context, topic string) ([]github.RepositoryNode, error)
}

// Store is the persistence collaborator used by the write path.
type Store interface {
	InitSchema() error
	BulkInsertRepositories([]store.Repository) error
	BulkInsertSecurityFindings([]store.SecurityFinding) error
	BulkInsertPullRequests([]store.PullRequest) error
}

// Worker ingests topics into the store.
type Worker struct {
	client RepositorySearcher
	store  Store
	logger *slog.Logger
}

// New creates a Worker with injected collaborators.
func New(client RepositorySearcher, st Store, logger *slog.Logger) *Worker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Worker{client: client, store: st, logger: logger}
}

// Init bootstraps the store schema. Intended to run once before any
// ingestion.
func (w *Worker) Init() error {
	if err := w.store.InitSchema(); err != nil {
		return fmt.Errorf("initializing schema: %w", err)
	}
	return nil
}

// IngestTopic runs one topic's full ingestion cycle. The fetch resolves
// completely before any transform runs, and all records of one entity
// type are accumulated before that type's bulk write. A repository
// insert failure aborts the run with that single error; finding and
// pull-request insert failures are collected. An empty slice signals
// full success.
func (w *Worker) IngestTopic(ctx context.Context, topic string) []error {
	nodes, err := w.client.SearchRepositoriesByTopic(ctx, topic)
	if err != nil {
		return []error{fmt.Errorf("searching topic %q: %w", topic, err)}
	}

	var repos []store.Repository
	var findings []store.SecurityFinding
	var prs []store.PullRequest

	for _, node := range nodes {
		repo := transform.RepositoryFromNode(node, node.Owner, topic)
		repos = append(repos, repo)

		nodeFindings, skipped := transform.SecurityFindingsFromNode(node, repo.ID)
		for _, skip := range skipped {
			w.logger.Warn("skipping malformed vulnerability alert", "repo", node.Name, "reason", skip)
		}
		findings = append(findings, nodeFindings...)

		nodePRs, skipped := transform.PullRequestsFromNode(node, repo.Name, node.Owner, shortName(node))
		for _, skip := range skipped {
			w.logger.Warn("skipping malformed pull request", "repo", node.Name, "reason", skip)
		}
		prs = append(prs, nodePRs...)
	}

	var errs []error

	w.logger.Debug("inserting repositories", "topic", topic, "count", len(repos))
	if err := w.store.BulkInsertRepositories(repos); err != nil {
		w.logger.Error("failed to insert repositories", "topic", topic, "count", len(repos), "error", err)
		return append(errs, fmt.Errorf("inserting repositories: %w", err))
	}

	w.logger.Debug("inserting security findings", "topic", topic, "count", len(findings))
	if err := w.store.BulkInsertSecurityFindings(findings); err != nil {
		w.logger.Error("failed to insert security findings", "topic", topic, "count", len(findings), "error", err)
		errs = append(errs, fmt.Errorf("inserting security findings: %w", err))
	}

	w.logger.Debug("inserting pull requests", "topic", topic, "count", len(prs))
	if err := w.store.BulkInsertPullRequests(prs); err != nil {
		w.logger.Error("failed to insert pull requests", "topic", topic, "count", len(prs), "error", err)
		errs = append(errs, fmt.Errorf("inserting pull requests: %w", err))
	}

	return errs
}

// IngestTopics ingests each topic in order, accumulating errors across
// topics. One topic's failure does not stop the others.
func (w *Worker) IngestTopics(ctx context.Context, topics []string) []error {
	var errs []error
	for _, topic := range topics {
		if err := ctx.Err(); err != nil {
			return append(errs, err)
		}
		errs = append(errs, w.IngestTopic(ctx, topic)...)
	}
	return errs
}

// shortName strips the owner prefix from a node's full name.
func shortName(node github.RepositoryNode) string {
	return strings.TrimPrefix(node.Name, node.Owner+"/")
}
