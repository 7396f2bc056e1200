package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/NeoKiring/Ichimoku/internal/model"
)

// ErrNotFound 记录不存在
var ErrNotFound = errors.New("not found")

// SaveProject 保存项目（按 ID 覆盖）
func (s *Store) SaveProject(p *model.Project) error {
	if p == nil || p.ID == "" {
		return fmt.Errorf("failed to save project: missing id")
	}
	p.RefreshStatus()

	doc, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to marshal project: %w", err)
	}

	sum := p.Summary()
	_, err = s.db.Exec(`
		INSERT INTO projects (
			id, name, description, status, progress,
			phase_count, process_count, task_count,
			start_date, end_date, document, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			description = excluded.description,
			status = excluded.status,
			progress = excluded.progress,
			phase_count = excluded.phase_count,
			process_count = excluded.process_count,
			task_count = excluded.task_count,
			start_date = excluded.start_date,
			end_date = excluded.end_date,
			document = excluded.document,
			updated_at = CURRENT_TIMESTAMP
	`,
		p.ID, p.Name, p.Description, string(sum.Status), sum.Progress,
		sum.PhaseCount, sum.ProcessCount, sum.TaskCount,
		dateColumn(sum.StartDate), dateColumn(sum.EndDate), string(doc), p.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save project: %w", err)
	}
	return nil
}

// GetProject 读取完整项目树
func (s *Store) GetProject(id string) (*model.Project, error) {
	var doc string
	err := s.db.QueryRow("SELECT document FROM projects WHERE id = ?", id).Scan(&doc)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("project %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get project: %w", err)
	}

	var p model.Project
	if err := json.Unmarshal([]byte(doc), &p); err != nil {
		return nil, fmt.Errorf("failed to decode project %s: %w", id, err)
	}
	return &p, nil
}

// ListProjects 按更新时间倒序列出项目概要
func (s *Store) ListProjects() ([]model.ProjectSummary, error) {
	rows, err := s.db.Query(`
		SELECT id, name, status, progress, phase_count, process_count, task_count,
			start_date, end_date, updated_at
		FROM projects
		ORDER BY updated_at DESC, name ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	out := []model.ProjectSummary{}
	for rows.Next() {
		var (
			sum        model.ProjectSummary
			status     string
			start, end sql.NullString
		)
		if err := rows.Scan(
			&sum.ProjectID, &sum.Name, &status, &sum.Progress,
			&sum.PhaseCount, &sum.ProcessCount, &sum.TaskCount,
			&start, &end, &sum.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		sum.Status = model.ProjectStatus(status)
		sum.StartDate = parseDateColumn(start)
		sum.EndDate = parseDateColumn(end)
		out = append(out, sum)
	}
	return out, rows.Err()
}

// DeleteProject 删除项目
func (s *Store) DeleteProject(id string) error {
	res, err := s.db.Exec("DELETE FROM projects WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("project %s: %w", id, ErrNotFound)
	}
	return nil
}

func dateColumn(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.Format("2006-01-02")
}

func parseDateColumn(v sql.NullString) *time.Time {
	if !v.Valid {
		return nil
	}
	t, err := time.Parse("2006-01-02", v.String)
	if err != nil {
		return nil
	}
	return &t
}
