package store

import (
	"database/sql"
	"fmt"
	"time"
)

// PullRequest mirrors a pull request on a tracked repository.
type PullRequest struct {
	ID             string
	ExternalID     string
	Title          string
	RepositoryName string
	RepoOwner      string
	RepoName       string
	URL            string
	State          string
	Author         string
	MergedAt       *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// BulkInsertPullRequests inserts the given pull requests in one
// transaction. A conflict on external_id is silently ignored.
func (d *DB) BulkInsertPullRequests(prs []PullRequest) error {
	tx, err := d.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning pull request insert: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO pull_requests (id, external_id, title, repository_name, repo_owner, repo_name, url, state, author, merged_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(external_id) DO NOTHING`)
	if err != nil {
		return fmt.Errorf("preparing pull request insert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC().Format(time.RFC3339)
	for _, pr := range prs {
		var mergedAt any
		if pr.MergedAt != nil {
			mergedAt = pr.MergedAt.UTC().Format(time.RFC3339)
		}
		_, err := stmt.Exec(pr.ID, pr.ExternalID, pr.Title, pr.RepositoryName,
			pr.RepoOwner, pr.RepoName, pr.URL, pr.State, pr.Author, mergedAt, now, now)
		if err != nil {
			return fmt.Errorf("inserting pull request %s: %w", pr.ExternalID, err)
		}
	}

	return tx.Commit()
}

const pullRequestSelect = `
	SELECT pr.id, pr.external_id, pr.title, pr.repository_name, pr.repo_owner, pr.repo_name,
	       pr.url, pr.state, pr.author, pr.merged_at, pr.created_at, pr.updated_at
	FROM pull_requests pr
	WHERE pr.state = 'OPEN'`

// GetOpenPullRequests returns all open pull requests, newest first.
func (d *DB) GetOpenPullRequests() ([]PullRequest, error) {
	rows, err := d.db.Query(pullRequestSelect + ` ORDER BY pr.updated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("querying open pull requests: %w", err)
	}
	defer rows.Close()

	return scanPullRequests(rows)
}

// GetOpenPullRequestsByProductID returns open pull requests scoped to
// repositories belonging to the given product.
func (d *DB) GetOpenPullRequestsByProductID(productID string) ([]PullRequest, error) {
	product, err := d.GetProductByID(productID)
	if err != nil {
		return nil, err
	}

	rows, err := d.db.Query(pullRequestSelect+`
		AND pr.repository_name IN (
			SELECT name FROM repositories
			WHERE topic IN (SELECT value FROM json_each(?)))
		ORDER BY pr.updated_at DESC`,
		marshalTags(product.Tags),
	)
	if err != nil {
		return nil, fmt.Errorf("querying open pull requests by product: %w", err)
	}
	defer rows.Close()

	return scanPullRequests(rows)
}

func scanPullRequests(rows *sql.Rows) ([]PullRequest, error) {
	var prs []PullRequest
	for rows.Next() {
		var pr PullRequest
		var author, mergedAt sql.NullString
		var createdAt, updatedAt string
		err := rows.Scan(&pr.ID, &pr.ExternalID, &pr.Title, &pr.RepositoryName,
			&pr.RepoOwner, &pr.RepoName, &pr.URL, &pr.State, &author, &mergedAt,
			&createdAt, &updatedAt)
		if err != nil {
			return nil, fmt.Errorf("scanning pull request: %w", err)
		}
		pr.Author = author.String
		if mergedAt.Valid {
			t, _ := time.Parse(time.RFC3339, mergedAt.String)
			pr.MergedAt = &t
		}
		pr.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		pr.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
		prs = append(prs, pr)
	}
	return prs, rows.Err()
}
