package store

import (
	"database/sql"
	"fmt"
	"time"
)

// 导入日志状态
const (
	ImportStatusProcessing = "processing"
	ImportStatusSuccess    = "success"
	ImportStatusFailed     = "failed"
)

// ImportLogUpdate 导入完成时回写的字段
type ImportLogUpdate struct {
	ProjectID       string
	Format          string
	PhaseCount      int
	ProcessCount    int
	TaskCount       int
	DiagnosticCount int
	Status          string
	ErrorMessage    string
}

// ImportLog 导入日志
type ImportLog struct {
	ID              int64      `json:"id"`
	Filename        string     `json:"filename"`
	FilePath        string     `json:"filePath"`
	FileSize        int64      `json:"fileSize"`
	FileHash        string     `json:"fileHash"`
	Format          string     `json:"format"`
	ProjectID       string     `json:"projectId,omitempty"`
	PhaseCount      int        `json:"phaseCount"`
	ProcessCount    int        `json:"processCount"`
	TaskCount       int        `json:"taskCount"`
	DiagnosticCount int        `json:"diagnosticCount"`
	Status          string     `json:"status"`
	ErrorMessage    string     `json:"errorMessage,omitempty"`
	StartedAt       time.Time  `json:"startedAt"`
	CompletedAt     *time.Time `json:"completedAt,omitempty"`
}

// CreateImportLog 创建导入日志，返回 import_log_id
func (s *Store) CreateImportLog(filename, filePath string, fileSize int64, fileHash string) (int64, error) {
	res, err := s.db.Exec(`
		INSERT INTO import_logs (filename, file_path, file_size, file_hash, status)
		VALUES (?, ?, ?, ?, ?)
	`, filename, filePath, fileSize, fileHash, ImportStatusProcessing)
	if err != nil {
		return 0, fmt.Errorf("failed to create import log: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get import log id: %w", err)
	}
	return id, nil
}

// UpdateImportLog 完成导入日志更新
func (s *Store) UpdateImportLog(id int64, u ImportLogUpdate) error {
	_, err := s.db.Exec(`
		UPDATE import_logs SET
			project_id = ?,
			format = ?,
			phase_count = ?,
			process_count = ?,
			task_count = ?,
			diagnostic_count = ?,
			status = ?,
			error_message = ?,
			completed_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, nullString(u.ProjectID), u.Format, u.PhaseCount, u.ProcessCount, u.TaskCount,
		u.DiagnosticCount, u.Status, u.ErrorMessage, id)
	if err != nil {
		return fmt.Errorf("failed to update import log: %w", err)
	}
	return nil
}

// ListImportLogs 最近的导入日志，limit <= 0 时返回全部
func (s *Store) ListImportLogs(limit int) ([]ImportLog, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.Query(`
		SELECT id, filename, COALESCE(file_path, ''), COALESCE(file_size, 0), COALESCE(file_hash, ''),
			COALESCE(format, ''), project_id, phase_count, process_count, task_count, diagnostic_count,
			status, COALESCE(error_message, ''), started_at, completed_at
		FROM import_logs
		ORDER BY id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list import logs: %w", err)
	}
	defer rows.Close()

	out := []ImportLog{}
	for rows.Next() {
		var (
			l         ImportLog
			projectID sql.NullString
			completed sql.NullTime
		)
		if err := rows.Scan(
			&l.ID, &l.Filename, &l.FilePath, &l.FileSize, &l.FileHash,
			&l.Format, &projectID, &l.PhaseCount, &l.ProcessCount, &l.TaskCount, &l.DiagnosticCount,
			&l.Status, &l.ErrorMessage, &l.StartedAt, &completed,
		); err != nil {
			return nil, fmt.Errorf("failed to scan import log: %w", err)
		}
		l.ProjectID = projectID.String
		if completed.Valid {
			t := completed.Time
			l.CompletedAt = &t
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
