package store

import "fmt"

// Stats summarizes what the store currently tracks.
type Stats struct {
	Repositories     int
	OpenFindings     int
	OpenPullRequests int
	Products         int
}

// GetStats returns row counts across all tracked entities.
func (d *DB) GetStats() (*Stats, error) {
	var s Stats
	row := d.db.QueryRow(`
		SELECT
			(SELECT COUNT(*) FROM repositories),
			(SELECT COUNT(*) FROM securities WHERE state = 'OPEN'),
			(SELECT COUNT(*) FROM pull_requests WHERE state = 'OPEN'),
			(SELECT COUNT(*) FROM products)`)
	if err := row.Scan(&s.Repositories, &s.OpenFindings, &s.OpenPullRequests, &s.Products); err != nil {
		return nil, fmt.Errorf("querying stats: %w", err)
	}
	return &s, nil
}

// TopicStats summarizes one topic's tracked repositories and findings.
type TopicStats struct {
	Topic        string
	Repositories int
	OpenFindings int
}

// GetTopicStats returns per-topic repository and open-finding counts.
func (d *DB) GetTopicStats() ([]TopicStats, error) {
	rows, err := d.db.Query(`
		SELECT r.topic,
		       COUNT(DISTINCT r.id),
		       COUNT(s.id)
		FROM repositories r
		LEFT JOIN securities s ON s.repository_id = r.id AND s.state = 'OPEN'
		GROUP BY r.topic
		ORDER BY r.topic`)
	if err != nil {
		return nil, fmt.Errorf("querying topic stats: %w", err)
	}
	defer rows.Close()

	var stats []TopicStats
	for rows.Next() {
		var ts TopicStats
		if err := rows.Scan(&ts.Topic, &ts.Repositories, &ts.OpenFindings); err != nil {
			return nil, fmt.Errorf("scanning topic stats: %w", err)
		}
		stats = append(stats, ts)
	}
	return stats, rows.Err()
}
