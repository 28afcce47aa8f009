package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
)

// Product is a user-defined grouping of repository topics. A repository
// belongs to a product when its topic appears in the product's tags;
// the relation is derived at query time, never stored.
type Product struct {
	ID        string
	Name      string
	Tags      []string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// marshalTags encodes a tag list as the JSON stored in the tags column.
func marshalTags(tags []string) string {
	if tags == nil {
		tags = []string{}
	}
	b, _ := json.Marshal(tags)
	return string(b)
}

// InsertProduct creates a product with a freshly generated identifier.
// A duplicate name surfaces as the constraint error from the driver.
func (d *DB) InsertProduct(name string, tags []string) error {
	now := time.Now().UTC().Format(time.RFC3339)
	_, err := d.db.Exec(`
		INSERT INTO products (id, name, tags, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)`,
		uuid.NewString(), name, marshalTags(tags), now, now,
	)
	if err != nil {
		return fmt.Errorf("inserting product %s: %w", name, err)
	}
	return nil
}

// UpdateProduct replaces a product's name and tags.
func (d *DB) UpdateProduct(id, name string, tags []string) error {
	now := time.Now().UTC().Format(time.RFC3339)
	result, err := d.db.Exec(`
		UPDATE products SET name = ?, tags = ?, updated_at = ? WHERE id = ?`,
		name, marshalTags(tags), now, id,
	)
	if err != nil {
		return fmt.Errorf("updating product %s: %w", id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking product update: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// GetProductByID retrieves a product by its identifier.
func (d *DB) GetProductByID(id string) (*Product, error) {
	row := d.db.QueryRow(`
		SELECT id, name, tags, created_at, updated_at FROM products WHERE id = ?`,
		id,
	)
	return scanProduct(row.Scan)
}

// GetAllProducts returns all products ordered by name.
func (d *DB) GetAllProducts() ([]Product, error) {
	rows, err := d.db.Query(`
		SELECT id, name, tags, created_at, updated_at FROM products ORDER BY name`,
	)
	if err != nil {
		return nil, fmt.Errorf("querying products: %w", err)
	}
	defer rows.Close()

	var products []Product
	for rows.Next() {
		p, err := scanProduct(rows.Scan)
		if err != nil {
			return nil, err
		}
		products = append(products, *p)
	}
	return products, rows.Err()
}

// DeleteProduct removes a product. Repositories and findings are never
// deleted alongside it; membership is derived, so they simply stop
// appearing under the product.
func (d *DB) DeleteProduct(id string) error {
	result, err := d.db.Exec(`DELETE FROM products WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting product %s: %w", id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking product delete: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// GetAllProductTags returns the deduplicated union of tags across all
// products, sorted.
func (d *DB) GetAllProductTags() ([]string, error) {
	rows, err := d.db.Query(`SELECT tags FROM products`)
	if err != nil {
		return nil, fmt.Errorf("querying product tags: %w", err)
	}
	defer rows.Close()

	seen := make(map[string]bool)
	var tags []string
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scanning product tags: %w", err)
		}
		var parsed []string
		if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
			return nil, fmt.Errorf("decoding product tags: %w", err)
		}
		for _, tag := range parsed {
			if !seen[tag] {
				seen[tag] = true
				tags = append(tags, tag)
			}
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	sort.Strings(tags)
	return tags, nil
}

func scanProduct(scan func(dest ...any) error) (*Product, error) {
	var p Product
	var raw string
	var createdAt, updatedAt string
	if err := scan(&p.ID, &p.Name, &raw, &createdAt, &updatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scanning product: %w", err)
	}
	if err := json.Unmarshal([]byte(raw), &p.Tags); err != nil {
		return nil, fmt.Errorf("decoding product tags: %w", err)
	}
	p.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	p.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return &p, nil
}
