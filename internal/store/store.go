package store

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaFS embed.FS

// Store SQLite 数据库存储层
type Store struct {
	db *sql.DB
}

// New 创建新的 Store 实例
func New(dbPath string) (*Store, error) {
	// 确保 data 目录存在
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	// 打开数据库连接
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// 测试连接
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// 设置连接池参数
	db.SetMaxOpenConns(1) // SQLite 建议单连接
	db.SetMaxIdleConns(1)

	store := &Store{db: db}

	// 初始化数据库结构
	if err := store.initSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

// SchemaVersion 当前数据库结构版本，记录在 settings 表
const SchemaVersion = 1

const settingSchemaVersion = "schema_version"

// ErrSchemaTooNew 数据库由更新版本创建
var ErrSchemaTooNew = errors.New("database schema is newer than this build")

// initSchema 建表并登记结构版本，拒绝打开更新版本写入的数据库
func (s *Store) initSchema() error {
	schemaSQL, err := schemaFS.ReadFile("schema.sql")
	if err != nil {
		return fmt.Errorf("failed to read schema.sql: %w", err)
	}
	if _, err := s.db.Exec(string(schemaSQL)); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}

	current, err := s.SchemaVersion()
	switch {
	case errors.Is(err, ErrNotFound):
	case err != nil:
		return err
	case current > SchemaVersion:
		return fmt.Errorf("schema version %d > %d: %w", current, SchemaVersion, ErrSchemaTooNew)
	case current == SchemaVersion:
		return nil
	}
	return s.SetSetting(settingSchemaVersion, strconv.Itoa(SchemaVersion))
}

// SchemaVersion 读取已登记的结构版本
func (s *Store) SchemaVersion() (int, error) {
	v, err := s.GetSetting(settingSchemaVersion)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid schema version %q: %w", v, err)
	}
	return n, nil
}

// Close 关闭数据库连接
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
