// Package logging records interpolation table builds in the build_log table
// next to the persisted tables.
package logging

import (
	"database/sql"
	"fmt"
	"time"
)

// #region schema
// Schema creates the build_log table. The table store runs it on open.
const Schema = `
CREATE TABLE IF NOT EXISTS build_log (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	build_id      TEXT NOT NULL,
	fingerprint   TEXT NOT NULL,
	name          TEXT NOT NULL,
	source        TEXT NOT NULL,
	nodes         INTEGER NOT NULL,
	duration_ms   REAL,
	description   TEXT,
	created_at    TEXT NOT NULL
);
`
// #endregion schema

// #region log-build
// LogBuild writes a build entry to the build_log table.
func LogBuild(db *sql.DB, entry BuildEntry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	_, err := db.Exec(
		`INSERT INTO build_log (build_id, fingerprint, name, source, nodes, duration_ms, description, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.BuildID,
		entry.Fingerprint,
		entry.Name,
		entry.Source,
		entry.Nodes,
		float64(entry.Duration)/float64(time.Millisecond),
		nullIfEmpty(entry.Description),
		entry.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("log build: %w", err)
	}
	return nil
}
// #endregion log-build

// #region list-builds
// ListBuilds returns the most recent build entries, newest first.
func ListBuilds(db *sql.DB, limit int) ([]BuildEntry, error) {
	rows, err := db.Query(
		`SELECT build_id, fingerprint, name, source, nodes, duration_ms, description, created_at
		 FROM build_log ORDER BY id DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list builds: %w", err)
	}
	defer rows.Close()

	var entries []BuildEntry
	for rows.Next() {
		var e BuildEntry
		var durationMS sql.NullFloat64
		var description sql.NullString
		var createdStr string
		if err := rows.Scan(&e.BuildID, &e.Fingerprint, &e.Name, &e.Source, &e.Nodes,
			&durationMS, &description, &createdStr); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		if durationMS.Valid {
			e.Duration = time.Duration(durationMS.Float64 * float64(time.Millisecond))
		}
		if description.Valid {
			e.Description = description.String
		}
		e.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
// #endregion list-builds

// #region helpers
func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
// #endregion helpers
