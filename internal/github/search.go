package github

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	gogithub "github.com/google/go-github/v60/github"

	"github.com/fleetwatch/fleetwatch/internal/retry"
)

const pageSize = 100

// Searcher resolves topic searches against the GitHub API. It owns
// pagination and bounded retries; callers receive one fully-resolved
// node set per call.
type Searcher struct {
	client *gogithub.Client
	logger *slog.Logger
}

// NewSearcher creates a Searcher backed by the given API client.
func NewSearcher(client *gogithub.Client, logger *slog.Logger) *Searcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Searcher{client: client, logger: logger}
}

// SearchRepositoriesByTopic returns every repository tagged with the
// given topic, each with its vulnerability alerts and pull requests
// attached.
func (s *Searcher) SearchRepositoriesByTopic(ctx context.Context, topic string) ([]RepositoryNode, error) {
	query := fmt.Sprintf("topic:%s", topic)
	opts := &gogithub.SearchOptions{
		ListOptions: gogithub.ListOptions{PerPage: pageSize},
	}

	var nodes []RepositoryNode
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		var result *gogithub.RepositoriesSearchResult
		var resp *gogithub.Response
		err := retry.Do(ctx, retry.DefaultMaxAttempts, func() error {
			var err error
			result, resp, err = s.client.Search.Repositories(ctx, query, opts)
			return err
		})
		if err != nil {
			return nil, fmt.Errorf("searching repositories for topic %q: %w", topic, err)
		}

		for _, repo := range result.Repositories {
			node, err := s.resolveNode(ctx, repo)
			if err != nil {
				return nil, err
			}
			nodes = append(nodes, node)
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	s.logger.Debug("resolved topic search", "topic", topic, "repositories", len(nodes))
	return nodes, nil
}

// resolveNode attaches vulnerability alerts and pull requests to one
// search hit.
func (s *Searcher) resolveNode(ctx context.Context, repo *gogithub.Repository) (RepositoryNode, error) {
	owner := repo.GetOwner().GetLogin()
	name := repo.GetName()

	node := RepositoryNode{
		ID:    repo.GetNodeID(),
		Name:  repo.GetFullName(),
		URL:   repo.GetHTMLURL(),
		Owner: owner,
	}

	alerts, err := s.listAlerts(ctx, owner, name)
	if err != nil {
		return RepositoryNode{}, fmt.Errorf("listing alerts for %s: %w", node.Name, err)
	}
	node.VulnerabilityAlerts = alerts

	prs, err := s.listPullRequests(ctx, owner, name)
	if err != nil {
		return RepositoryNode{}, fmt.Errorf("listing pull requests for %s: %w", node.Name, err)
	}
	node.PullRequests = prs

	return node, nil
}

func (s *Searcher) listAlerts(ctx context.Context, owner, name string) ([]VulnerabilityAlert, error) {
	opts := &gogithub.ListAlertsOptions{
		ListCursorOptions: gogithub.ListCursorOptions{PerPage: pageSize},
	}

	var alerts []VulnerabilityAlert
	for {
		var page []*gogithub.DependabotAlert
		var resp *gogithub.Response
		err := retry.Do(ctx, retry.DefaultMaxAttempts, func() error {
			var err error
			page, resp, err = s.client.Dependabot.ListRepoAlerts(ctx, owner, name, opts)
			if resp != nil && (resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusNotFound) {
				return retry.Permanent(err)
			}
			return err
		})
		if err != nil {
			// Repositories without Dependabot alerts enabled are routine
			// in topic searches; treat them as having no alerts.
			if resp != nil && (resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusNotFound) {
				s.logger.Debug("vulnerability alerts unavailable", "repo", owner+"/"+name, "status", resp.StatusCode)
				return nil, nil
			}
			return nil, err
		}

		for _, alert := range page {
			alerts = append(alerts, normalizeAlert(alert))
		}

		if resp.After == "" {
			break
		}
		opts.After = resp.After
	}

	return alerts, nil
}

func (s *Searcher) listPullRequests(ctx context.Context, owner, name string) ([]PullRequestNode, error) {
	opts := &gogithub.PullRequestListOptions{
		State:       "all",
		ListOptions: gogithub.ListOptions{PerPage: pageSize},
	}

	var prs []PullRequestNode
	for {
		var page []*gogithub.PullRequest
		var resp *gogithub.Response
		err := retry.Do(ctx, retry.DefaultMaxAttempts, func() error {
			var err error
			page, resp, err = s.client.PullRequests.List(ctx, owner, name, opts)
			return err
		})
		if err != nil {
			return nil, err
		}

		for _, pr := range page {
			prs = append(prs, normalizePullRequest(pr))
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return prs, nil
}

func normalizeAlert(alert *gogithub.DependabotAlert) VulnerabilityAlert {
	a := VulnerabilityAlert{
		ID:    alert.GetSecurityAdvisory().GetGHSAID(),
		State: normalizeState(alert.GetState()),
	}
	if vuln := alert.GetSecurityVulnerability(); vuln != nil {
		a.PackageName = vuln.GetPackage().GetName()
		a.Severity = NormalizeSeverity(vuln.GetSeverity())
		if fpv := vuln.FirstPatchedVersion; fpv != nil && fpv.Identifier != nil {
			identifier := fpv.GetIdentifier()
			a.FirstPatchedVersion = &identifier
		}
	}
	return a
}

func normalizePullRequest(pr *gogithub.PullRequest) PullRequestNode {
	node := PullRequestNode{
		ID:     pr.GetNodeID(),
		Title:  pr.GetTitle(),
		URL:    pr.GetHTMLURL(),
		State:  normalizeState(pr.GetState()),
		Author: pr.GetUser().GetLogin(),
	}
	if pr.MergedAt != nil {
		t := pr.MergedAt.Time
		node.MergedAt = &t
		node.State = "MERGED"
	}
	return node
}

// NormalizeSeverity maps API severity values onto the canonical set
// LOW, MODERATE, HIGH, CRITICAL. The REST API reports "medium" where
// the canonical vocabulary says MODERATE.
func NormalizeSeverity(severity string) string {
	s := strings.ToUpper(severity)
	if s == "MEDIUM" {
		s = "MODERATE"
	}
	return s
}

func normalizeState(state string) string {
	return strings.ToUpper(state)
}
