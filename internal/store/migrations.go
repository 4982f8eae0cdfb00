package store

import (
	"fmt"
)

type migration struct {
	Version     int
	Description string
	SQL         string
}

var migrations = []migration{
	{
		Version:     1,
		Description: "learnings: extracted insight candidates with verification lifecycle",
		SQL: `
CREATE TABLE learnings (
    id           TEXT PRIMARY KEY,
    project      TEXT NOT NULL,
    content      TEXT NOT NULL,
    category     TEXT NOT NULL DEFAULT 'general',
    status       TEXT NOT NULL DEFAULT 'pending' CHECK (status IN ('pending', 'verified', 'rejected', 'promoted')),
    promoted_to  TEXT,
    created_at   INTEGER NOT NULL,
    updated_at   INTEGER NOT NULL
);

CREATE INDEX idx_learnings_project ON learnings(project);
CREATE INDEX idx_learnings_status  ON learnings(status);
`,
	},
	{
		Version:     2,
		Description: "session_analyses: audit trail of transcript retrospectives",
		SQL: `
CREATE TABLE session_analyses (
    id              INTEGER PRIMARY KEY,
    project         TEXT NOT NULL,
    session_name    TEXT,
    summary         TEXT NOT NULL,
    recommendations TEXT NOT NULL,
    created_at      INTEGER NOT NULL
);

CREATE INDEX idx_analyses_project ON session_analyses(project, created_at DESC);
`,
	},
}

func (db *DB) migrate() error {
	// Create schema_versions table if it doesn't exist
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_versions (
			version     INTEGER PRIMARY KEY,
			description TEXT NOT NULL,
			applied_at  INTEGER NOT NULL DEFAULT (strftime('%s', 'now') * 1000)
		)
	`)
	if err != nil {
		return fmt.Errorf("create schema_versions: %w", err)
	}

	for _, m := range migrations {
		var applied int
		err := db.QueryRow(`SELECT COUNT(*) FROM schema_versions WHERE version = ?`, m.Version).Scan(&applied)
		if err != nil {
			return fmt.Errorf("check migration %d: %w", m.Version, err)
		}
		if applied > 0 {
			continue
		}

		if _, err := db.Exec(m.SQL); err != nil {
			return fmt.Errorf("apply migration %d (%s): %w", m.Version, m.Description, err)
		}
		if _, err := db.Exec(`INSERT INTO schema_versions (version, description) VALUES (?, ?)`, m.Version, m.Description); err != nil {
			return fmt.Errorf("record migration %d: %w", m.Version, err)
		}
	}

	return nil
}
