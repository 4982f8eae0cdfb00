package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Learning lifecycle statuses. A learning moves pending → verified/rejected,
// and → promoted once folded into a durable artifact.
const (
	StatusPending  = "pending"
	StatusVerified = "verified"
	StatusRejected = "rejected"
	StatusPromoted = "promoted"
)

// ValidStatuses defines the allowed learning statuses.
var ValidStatuses = map[string]bool{
	StatusPending:  true,
	StatusVerified: true,
	StatusRejected: true,
	StatusPromoted: true,
}

// Learning is an extracted insight candidate.
type Learning struct {
	ID         string  `json:"id"`
	Project    string  `json:"project"`
	Content    string  `json:"content"`
	Category   string  `json:"category"`
	Status     string  `json:"status"`
	PromotedTo *string `json:"promoted_to,omitempty"`
	CreatedAt  int64   `json:"created_at"`
	UpdatedAt  int64   `json:"updated_at"`
}

// InsertLearning stores a new pending learning and returns it.
func (db *DB) InsertLearning(project, content, category string) (*Learning, error) {
	if content == "" {
		return nil, fmt.Errorf("empty learning content")
	}
	if category == "" {
		category = "general"
	}

	now := time.Now().UnixMilli()
	l := &Learning{
		ID:        uuid.NewString(),
		Project:   project,
		Content:   content,
		Category:  category,
		Status:    StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err := db.Exec(`
		INSERT INTO learnings (id, project, content, category, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, l.ID, l.Project, l.Content, l.Category, l.Status, l.CreatedAt, l.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert learning: %w", err)
	}
	return l, nil
}

// GetLearning returns a learning by id, or nil if not found.
func (db *DB) GetLearning(id string) (*Learning, error) {
	var l Learning
	err := db.QueryRow(`
		SELECT id, project, content, category, status, promoted_to, created_at, updated_at
		FROM learnings WHERE id = ?
	`, id).Scan(&l.ID, &l.Project, &l.Content, &l.Category, &l.Status, &l.PromotedTo, &l.CreatedAt, &l.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get learning: %w", err)
	}
	return &l, nil
}

// ListLearnings returns all learnings for a project, newest first.
func (db *DB) ListLearnings(project string) ([]Learning, error) {
	rows, err := db.Query(`
		SELECT id, project, content, category, status, promoted_to, created_at, updated_at
		FROM learnings WHERE project = ? ORDER BY created_at DESC
	`, project)
	if err != nil {
		return nil, fmt.Errorf("list learnings: %w", err)
	}
	defer rows.Close()

	var learnings []Learning
	for rows.Next() {
		var l Learning
		if err := rows.Scan(&l.ID, &l.Project, &l.Content, &l.Category, &l.Status, &l.PromotedTo, &l.CreatedAt, &l.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan learning: %w", err)
		}
		learnings = append(learnings, l)
	}
	return learnings, rows.Err()
}

// SetLearningStatus updates a learning's lifecycle status and returns the
// updated row. Promotion goes through MarkPromoted so the target is recorded.
func (db *DB) SetLearningStatus(id, status string) (*Learning, error) {
	if !ValidStatuses[status] {
		return nil, fmt.Errorf("invalid learning status %q", status)
	}

	now := time.Now().UnixMilli()
	result, err := db.Exec(`
		UPDATE learnings SET status = ?, updated_at = ? WHERE id = ?
	`, status, now, id)
	if err != nil {
		return nil, fmt.Errorf("set learning status: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return nil, fmt.Errorf("no learning found for %s", id)
	}
	return db.GetLearning(id)
}

// MarkPromoted sets a learning to promoted and records which artifact it was
// folded into.
func (db *DB) MarkPromoted(id, target string) error {
	now := time.Now().UnixMilli()
	result, err := db.Exec(`
		UPDATE learnings SET status = ?, promoted_to = ?, updated_at = ? WHERE id = ?
	`, StatusPromoted, target, now, id)
	if err != nil {
		return fmt.Errorf("mark promoted: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("no learning found for %s", id)
	}
	return nil
}

// CountLearnings returns total and active (pending or verified) learning
// counts for a project.
func (db *DB) CountLearnings(project string) (total, active int, err error) {
	err = db.QueryRow(`
		SELECT COUNT(*),
		       COALESCE(SUM(CASE WHEN status IN ('pending', 'verified') THEN 1 ELSE 0 END), 0)
		FROM learnings WHERE project = ?
	`, project).Scan(&total, &active)
	if err != nil {
		return 0, 0, fmt.Errorf("count learnings: %w", err)
	}
	return total, active, nil
}
