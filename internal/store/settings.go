package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"
)

const (
	settingLastBulkRoot = "last_bulk_root"
	settingLastBulkAt   = "last_bulk_at"
	settingLastBulkOK   = "last_bulk_imported"
)

// GetSetting 获取设置项
func (s *Store) GetSetting(key string) (string, error) {
	var value string
	err := s.db.QueryRow("SELECT value FROM settings WHERE key = ?", key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", fmt.Errorf("setting %s: %w", key, ErrNotFound)
		}
		return "", err
	}
	return value, nil
}

// SetSetting 设置设置项
func (s *Store) SetSetting(key, value string) error {
	_, err := s.db.Exec(`
		INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = ?, updated_at = CURRENT_TIMESTAMP
	`, key, value, value)
	return err
}

// GetAllSettings 获取所有设置项
func (s *Store) GetAllSettings() (map[string]string, error) {
	rows, err := s.db.Query("SELECT key, value FROM settings")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	settings := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, err
		}
		settings[key] = value
	}

	return settings, rows.Err()
}

// BulkRun 最近一次批量导入
type BulkRun struct {
	RootDir  string    `json:"rootDir"`
	At       time.Time `json:"at"`
	Imported int       `json:"imported"`
}

// SetLastBulkRun 记录最近一次批量导入
func (s *Store) SetLastBulkRun(run BulkRun) error {
	if err := s.SetSetting(settingLastBulkRoot, run.RootDir); err != nil {
		return err
	}
	if err := s.SetSetting(settingLastBulkAt, run.At.UTC().Format(time.RFC3339)); err != nil {
		return err
	}
	return s.SetSetting(settingLastBulkOK, strconv.Itoa(run.Imported))
}

// GetLastBulkRun 读取最近一次批量导入，从未执行时返回 ErrNotFound
func (s *Store) GetLastBulkRun() (*BulkRun, error) {
	root, err := s.GetSetting(settingLastBulkRoot)
	if err != nil {
		return nil, err
	}
	run := &BulkRun{RootDir: root}

	if v, err := s.GetSetting(settingLastBulkAt); err == nil {
		run.At, _ = time.Parse(time.RFC3339, v)
	}
	if v, err := s.GetSetting(settingLastBulkOK); err == nil {
		run.Imported, _ = strconv.Atoi(v)
	}
	return run, nil
}
