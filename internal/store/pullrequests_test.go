package store

import (
	"testing"
	"time"
)

func TestBulkInsertPullRequestsIgnoresConflicts(t *testing.T) {
	db := setupTestDB(t)

	first := PullRequest{
		ID:             "p1",
		ExternalID:     "PR_1",
		Title:          "Add feature",
		RepositoryName: "acme/web",
		RepoOwner:      "acme",
		RepoName:       "web",
		URL:            "https://github.com/acme/web/pull/1",
		State:          "OPEN",
		Author:         "octocat",
	}
	if err := db.BulkInsertPullRequests([]PullRequest{first}); err != nil {
		t.Fatalf("first insert failed: %v", err)
	}

	second := first
	second.ID = "p2"
	second.Title = "Renamed"
	if err := db.BulkInsertPullRequests([]PullRequest{second}); err != nil {
		t.Fatalf("conflicting insert failed: %v", err)
	}

	prs, err := db.GetOpenPullRequests()
	if err != nil {
		t.Fatalf("GetOpenPullRequests failed: %v", err)
	}
	if len(prs) != 1 {
		t.Fatalf("expected 1 pull request, got %d", len(prs))
	}
	if prs[0].ID != "p1" || prs[0].Title != "Add feature" {
		t.Errorf("expected first-write row, got %+v", prs[0])
	}
}

func TestGetOpenPullRequestsFiltersState(t *testing.T) {
	db := setupTestDB(t)

	merged := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	prs := []PullRequest{
		{ID: "p1", ExternalID: "PR_1", Title: "open one", RepositoryName: "acme/web", RepoOwner: "acme", RepoName: "web", URL: "u1", State: "OPEN", Author: "a"},
		{ID: "p2", ExternalID: "PR_2", Title: "merged one", RepositoryName: "acme/web", RepoOwner: "acme", RepoName: "web", URL: "u2", State: "MERGED", Author: "b", MergedAt: &merged},
		{ID: "p3", ExternalID: "PR_3", Title: "closed one", RepositoryName: "acme/web", RepoOwner: "acme", RepoName: "web", URL: "u3", State: "CLOSED", Author: "c"},
	}
	if err := db.BulkInsertPullRequests(prs); err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	open, err := db.GetOpenPullRequests()
	if err != nil {
		t.Fatalf("GetOpenPullRequests failed: %v", err)
	}
	if len(open) != 1 || open[0].ExternalID != "PR_1" {
		t.Errorf("expected only PR_1 open, got %+v", open)
	}
}

func TestGetOpenPullRequestsByProductID(t *testing.T) {
	db := setupTestDB(t)
	seedRepo(t, db, "r1", "acme/web", "webapp")
	seedRepo(t, db, "r2", "acme/infra", "infra")

	prs := []PullRequest{
		{ID: "p1", ExternalID: "PR_1", Title: "web pr", RepositoryName: "acme/web", RepoOwner: "acme", RepoName: "web", URL: "u1", State: "OPEN", Author: "a"},
		{ID: "p2", ExternalID: "PR_2", Title: "infra pr", RepositoryName: "acme/infra", RepoOwner: "acme", RepoName: "infra", URL: "u2", State: "OPEN", Author: "b"},
	}
	if err := db.BulkInsertPullRequests(prs); err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	if err := db.InsertProduct("frontend", []string{"webapp"}); err != nil {
		t.Fatalf("InsertProduct failed: %v", err)
	}
	products, _ := db.GetAllProducts()

	got, err := db.GetOpenPullRequestsByProductID(products[0].ID)
	if err != nil {
		t.Fatalf("GetOpenPullRequestsByProductID failed: %v", err)
	}
	if len(got) != 1 || got[0].ExternalID != "PR_1" {
		t.Errorf("expected only the webapp pull request, got %+v", got)
	}

	// MergedAt round-trips as NULL for open PRs.
	if got[0].MergedAt != nil {
		t.Errorf("expected nil MergedAt, got %v", got[0].MergedAt)
	}
}

func TestGetStats(t *testing.T) {
	db := setupTestDB(t)
	seedRepo(t, db, "r1", "acme/web", "webapp")

	findings := []SecurityFinding{
		{ID: "f1", ExternalID: "GHSA-1", RepositoryID: "r1", PackageName: "pkg", State: "OPEN", Severity: "LOW"},
		{ID: "f2", ExternalID: "GHSA-2", RepositoryID: "r1", PackageName: "pkg", State: "FIXED", Severity: "LOW"},
	}
	if err := db.BulkInsertSecurityFindings(findings); err != nil {
		t.Fatalf("inserting findings: %v", err)
	}
	if err := db.InsertProduct("frontend", []string{"webapp"}); err != nil {
		t.Fatalf("InsertProduct failed: %v", err)
	}

	stats, err := db.GetStats()
	if err != nil {
		t.Fatalf("GetStats failed: %v", err)
	}
	if stats.Repositories != 1 || stats.OpenFindings != 1 || stats.Products != 1 {
		t.Errorf("unexpected stats: %+v", stats)
	}

	topicStats, err := db.GetTopicStats()
	if err != nil {
		t.Fatalf("GetTopicStats failed: %v", err)
	}
	if len(topicStats) != 1 || topicStats[0].Topic != "webapp" || topicStats[0].OpenFindings != 1 {
		t.Errorf("unexpected topic stats: %+v", topicStats)
	}
}
