package store

import (
	"database/sql"
	"fmt"
	"time"
)

// SessionAnalysisRecord is one persisted transcript retrospective. The
// recommendations column holds the JSON-encoded recommendation list.
type SessionAnalysisRecord struct {
	ID              int64  `json:"id"`
	Project         string `json:"project"`
	SessionName     string `json:"session_name"`
	Summary         string `json:"summary"`
	Recommendations string `json:"recommendations"`
	CreatedAt       int64  `json:"created_at"`
}

// SaveSessionAnalysis appends a retrospective to the history.
func (db *DB) SaveSessionAnalysis(project, sessionName, summary, recommendationsJSON string) (*SessionAnalysisRecord, error) {
	now := time.Now().UnixMilli()
	result, err := db.Exec(`
		INSERT INTO session_analyses (project, session_name, summary, recommendations, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, project, sessionName, summary, recommendationsJSON, now)
	if err != nil {
		return nil, fmt.Errorf("save session analysis: %w", err)
	}

	id, _ := result.LastInsertId()
	return &SessionAnalysisRecord{
		ID:              id,
		Project:         project,
		SessionName:     sessionName,
		Summary:         summary,
		Recommendations: recommendationsJSON,
		CreatedAt:       now,
	}, nil
}

// LatestSessionAnalysis returns the newest retrospective for a project, or
// nil if none has been recorded.
func (db *DB) LatestSessionAnalysis(project string) (*SessionAnalysisRecord, error) {
	var r SessionAnalysisRecord
	err := db.QueryRow(`
		SELECT id, project, session_name, summary, recommendations, created_at
		FROM session_analyses WHERE project = ?
		ORDER BY created_at DESC, id DESC LIMIT 1
	`, project).Scan(&r.ID, &r.Project, &r.SessionName, &r.Summary, &r.Recommendations, &r.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("latest session analysis: %w", err)
	}
	return &r, nil
}

// ListSessionAnalyses returns the most recent retrospectives, newest first.
func (db *DB) ListSessionAnalyses(project string, limit int) ([]SessionAnalysisRecord, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := db.Query(`
		SELECT id, project, session_name, summary, recommendations, created_at
		FROM session_analyses WHERE project = ?
		ORDER BY created_at DESC, id DESC LIMIT ?
	`, project, limit)
	if err != nil {
		return nil, fmt.Errorf("list session analyses: %w", err)
	}
	defer rows.Close()

	var records []SessionAnalysisRecord
	for rows.Next() {
		var r SessionAnalysisRecord
		if err := rows.Scan(&r.ID, &r.Project, &r.SessionName, &r.Summary, &r.Recommendations, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan session analysis: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}
