package store

import (
	"database/sql"
	"fmt"
	"time"
)

// SecurityFinding is one vulnerability alert on a tracked repository,
// keyed externally by ExternalID.
type SecurityFinding struct {
	ID             string
	ExternalID     string
	RepositoryID   string
	PackageName    string
	State          string
	Severity       string
	PatchedVersion *string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// SecurityAdvisory is a read projection joining an open finding to its
// repository's identity, used for ranked reporting.
type SecurityAdvisory struct {
	ID             string
	ExternalID     string
	PackageName    string
	State          string
	Severity       string
	PatchedVersion *string
	UpdatedAt      time.Time
	RepoOwner      string
	RepoName       string
	RepoURL        string
}

// BulkInsertSecurityFindings upserts the given findings in one
// transaction, keyed on external_id. On conflict only state, severity,
// patched_version and updated_at are replaced; id, external_id,
// repository_id, package_name and created_at are immutable after the
// first insert.
func (d *DB) BulkInsertSecurityFindings(findings []SecurityFinding) error {
	tx, err := d.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning security insert: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO securities (id, external_id, repository_id, package_name, state, severity, patched_version, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(external_id) DO UPDATE SET
			state = excluded.state,
			severity = excluded.severity,
			patched_version = excluded.patched_version,
			updated_at = excluded.updated_at`)
	if err != nil {
		return fmt.Errorf("preparing security insert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC().Format(time.RFC3339)
	for _, f := range findings {
		_, err := stmt.Exec(f.ID, f.ExternalID, f.RepositoryID, f.PackageName,
			f.State, f.Severity, f.PatchedVersion, now, now)
		if err != nil {
			return fmt.Errorf("upserting finding %s: %w", f.ExternalID, err)
		}
	}

	return tx.Commit()
}

// GetSecurityFindingByExternalID retrieves a finding by its external key.
func (d *DB) GetSecurityFindingByExternalID(externalID string) (*SecurityFinding, error) {
	row := d.db.QueryRow(`
		SELECT id, external_id, repository_id, package_name, state, severity, patched_version, created_at, updated_at
		FROM securities WHERE external_id = ?`,
		externalID,
	)
	var f SecurityFinding
	var patched sql.NullString
	var createdAt, updatedAt string
	err := row.Scan(&f.ID, &f.ExternalID, &f.RepositoryID, &f.PackageName,
		&f.State, &f.Severity, &patched, &createdAt, &updatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scanning finding: %w", err)
	}
	if patched.Valid {
		f.PatchedVersion = &patched.String
	}
	f.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	f.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return &f, nil
}

const advisorySelect = `
	SELECT sec.id, sec.external_id, sec.package_name, sec.state, sec.severity, sec.patched_version, sec.updated_at,
	       repo.owner, repo.name, repo.url
	FROM securities sec
	JOIN repositories repo ON repo.id = sec.repository_id
	WHERE sec.state = 'OPEN'`

// GetSecurityAdvisoriesByProductID returns open findings joined to
// repository identity, restricted to the product's repositories,
// newest first, capped at limit.
func (d *DB) GetSecurityAdvisoriesByProductID(productID string, limit int) ([]SecurityAdvisory, error) {
	product, err := d.GetProductByID(productID)
	if err != nil {
		return nil, err
	}

	rows, err := d.db.Query(advisorySelect+`
		AND repo.topic IN (SELECT value FROM json_each(?))
		ORDER BY sec.updated_at DESC
		LIMIT ?`,
		marshalTags(product.Tags), limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying advisories by product: %w", err)
	}
	defer rows.Close()

	return scanAdvisories(rows)
}

// GetAllSecurityAdvisories returns open findings across all tracked
// repositories, newest first, capped at limit.
func (d *DB) GetAllSecurityAdvisories(limit int) ([]SecurityAdvisory, error) {
	rows, err := d.db.Query(advisorySelect+`
		ORDER BY sec.updated_at DESC
		LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying advisories: %w", err)
	}
	defer rows.Close()

	return scanAdvisories(rows)
}

func scanAdvisories(rows *sql.Rows) ([]SecurityAdvisory, error) {
	var advisories []SecurityAdvisory
	for rows.Next() {
		var a SecurityAdvisory
		var patched sql.NullString
		var updatedAt string
		err := rows.Scan(&a.ID, &a.ExternalID, &a.PackageName, &a.State, &a.Severity,
			&patched, &updatedAt, &a.RepoOwner, &a.RepoName, &a.RepoURL)
		if err != nil {
			return nil, fmt.Errorf("scanning advisory: %w", err)
		}
		if patched.Valid {
			a.PatchedVersion = &patched.String
		}
		a.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
		advisories = append(advisories, a)
	}
	return advisories, rows.Err()
}
