package store

import (
	"database/sql"
	"fmt"
	"time"
)

// Repository is one externally hosted code repository tagged with a topic.
type Repository struct {
	ID        string
	Name      string
	URL       string
	Topic     string
	Owner     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// BulkInsertRepositories inserts the given repositories in one
// transaction. A conflict on the unique name is silently ignored:
// the first write wins and the existing row is left untouched.
// Timestamps are stamped at write time; caller-supplied values are ignored.
func (d *DB) BulkInsertRepositories(repos []Repository) error {
	tx, err := d.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning repository insert: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO repositories (id, name, url, topic, owner, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(name) DO NOTHING`)
	if err != nil {
		return fmt.Errorf("preparing repository insert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC().Format(time.RFC3339)
	for _, repo := range repos {
		if _, err := stmt.Exec(repo.ID, repo.Name, repo.URL, repo.Topic, repo.Owner, now, now); err != nil {
			return fmt.Errorf("inserting repository %s: %w", repo.Name, err)
		}
	}

	return tx.Commit()
}

// GetRepositoryByName retrieves a repository by its unique name.
func (d *DB) GetRepositoryByName(name string) (*Repository, error) {
	row := d.db.QueryRow(`
		SELECT id, name, url, topic, owner, created_at, updated_at
		FROM repositories WHERE name = ?`,
		name,
	)
	var r Repository
	var createdAt, updatedAt string
	if err := row.Scan(&r.ID, &r.Name, &r.URL, &r.Topic, &r.Owner, &createdAt, &updatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scanning repository: %w", err)
	}
	r.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	r.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return &r, nil
}

// GetRepositoriesByProductID returns the repositories whose topic is a
// member of the given product's tag set. Membership is computed at
// query time, so tag edits take effect immediately.
func (d *DB) GetRepositoriesByProductID(productID string) ([]Repository, error) {
	product, err := d.GetProductByID(productID)
	if err != nil {
		return nil, err
	}

	rows, err := d.db.Query(`
		SELECT id, name, url, topic, owner, created_at, updated_at
		FROM repositories
		WHERE topic IN (SELECT value FROM json_each(?))
		ORDER BY name`,
		marshalTags(product.Tags),
	)
	if err != nil {
		return nil, fmt.Errorf("querying repositories by product: %w", err)
	}
	defer rows.Close()

	var repos []Repository
	for rows.Next() {
		var r Repository
		var createdAt, updatedAt string
		if err := rows.Scan(&r.ID, &r.Name, &r.URL, &r.Topic, &r.Owner, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("scanning repository: %w", err)
		}
		r.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		r.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
		repos = append(repos, r)
	}
	return repos, rows.Err()
}
