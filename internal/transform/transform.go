// Package transform maps external API nodes to internal records. All
// functions are pure: no I/O, no logging, fresh identifiers for every
// record produced. External identifiers survive only as ExternalID.
package transform

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/fleetwatch/fleetwatch/internal/github"
	"github.com/fleetwatch/fleetwatch/internal/store"
)

// RepositoryFromNode maps a repository node 1:1 onto a Repository with
// a newly generated identifier. Timestamps are left zero; the store
// stamps them at write time.
func RepositoryFromNode(node github.RepositoryNode, owner, topic string) store.Repository {
	return store.Repository{
		ID:    uuid.NewString(),
		Name:  node.Name,
		URL:   node.URL,
		Topic: topic,
		Owner: owner,
	}
}

// SecurityFindingsFromNode maps a node's vulnerability alerts onto
// findings referencing repositoryID. Alerts missing an external
// identifier or package name are skipped; each skip is reported in the
// second return value for the caller to log.
func SecurityFindingsFromNode(node github.RepositoryNode, repositoryID string) ([]store.SecurityFinding, []error) {
	var findings []store.SecurityFinding
	var skipped []error
	for _, alert := range node.VulnerabilityAlerts {
		if alert.ID == "" {
			skipped = append(skipped, fmt.Errorf("alert on %s has no external id", node.Name))
			continue
		}
		if alert.PackageName == "" {
			skipped = append(skipped, fmt.Errorf("alert %s has no package name", alert.ID))
			continue
		}
		findings = append(findings, store.SecurityFinding{
			ID:             uuid.NewString(),
			ExternalID:     alert.ID,
			RepositoryID:   repositoryID,
			PackageName:    alert.PackageName,
			State:          alert.State,
			Severity:       alert.Severity,
			PatchedVersion: alert.FirstPatchedVersion,
		})
	}
	return findings, skipped
}

// PullRequestsFromNode maps a node's pull requests onto records carrying
// denormalized repository identity. Entries without an external
// identifier are skipped and reported.
func PullRequestsFromNode(node github.RepositoryNode, repositoryName, owner, repoName string) ([]store.PullRequest, []error) {
	var prs []store.PullRequest
	var skipped []error
	for _, pr := range node.PullRequests {
		if pr.ID == "" {
			skipped = append(skipped, fmt.Errorf("pull request %q on %s has no external id", pr.Title, node.Name))
			continue
		}
		prs = append(prs, store.PullRequest{
			ID:             uuid.NewString(),
			ExternalID:     pr.ID,
			Title:          pr.Title,
			RepositoryName: repositoryName,
			RepoOwner:      owner,
			RepoName:       repoName,
			URL:            pr.URL,
			State:          pr.State,
			Author:         pr.Author,
			MergedAt:       pr.MergedAt,
		})
	}
	return prs, skipped
}

// SeverityWeight returns a total order over advisory severities for
// ranking: CRITICAL=4, HIGH=3, MODERATE=2, LOW=1. Unknown values weigh
// 0 and sort last, never error.
func SeverityWeight(severity string) int {
	switch severity {
	case "LOW":
		return 1
	case "MODERATE":
		return 2
	case "HIGH":
		return 3
	case "CRITICAL":
		return 4
	default:
		return 0
	}
}
