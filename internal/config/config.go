package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

// AppConfig 应用配置
type AppConfig struct {
	Server ServerConfig `toml:"server"`
	Data   DataConfig   `toml:"data"`
	Import ImportConfig `toml:"import"`
	Log    LogConfig    `toml:"log"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Port    int  `toml:"port"`
	DevMode bool `toml:"dev_mode"`
}

// DataConfig 数据配置
type DataConfig struct {
	DataDir string `toml:"data_dir"`
}

// ImportConfig 导入配置
type ImportConfig struct {
	Format     string   `toml:"format"`      // auto|standard|ms_project|simple
	BulkMarker string   `toml:"bulk_marker"` // 批量导入文件名前缀
	Extensions []string `toml:"extensions"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level  string `toml:"level"`  // debug|info|warn|error
	Format string `toml:"format"` // text|json
}

// LoadConfigInfo 配置加载元信息
type LoadConfigInfo struct {
	Path          string
	FileFound     bool
	PortSpecified bool
}

// DefaultConfig 默认配置
func DefaultConfig() *AppConfig {
	return &AppConfig{
		Server: ServerConfig{
			Port:    20262,
			DevMode: false,
		},
		Data: DataConfig{
			DataDir: "data",
		},
		Import: ImportConfig{
			Format:     "auto",
			BulkMarker: "【Gantt",
			Extensions: []string{".xlsx", ".xls", ".xlsm"},
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

func isPortSpecifiedInToml(data []byte) bool {
	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		return false
	}

	serverAny, ok := raw["server"]
	if !ok {
		return false
	}

	serverMap, ok := serverAny.(map[string]any)
	if !ok {
		return false
	}

	_, ok = serverMap["port"]
	return ok
}

// GetExeDir 获取可执行文件所在目录
func GetExeDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", err
	}
	return filepath.Dir(exe), nil
}

// DefaultConfigPath ICHIMOKU_CONFIG 优先，否则为可执行文件同目录下的 config.toml
func DefaultConfigPath() string {
	if v := os.Getenv("ICHIMOKU_CONFIG"); v != "" {
		return v
	}
	exeDir, err := GetExeDir()
	if err != nil {
		// 无法获取可执行文件目录，使用当前目录
		exeDir = "."
	}
	return filepath.Join(exeDir, "config.toml")
}

// LoadConfigWithInfo 加载 .env 与 config.toml 并返回元信息
func LoadConfigWithInfo() (*AppConfig, LoadConfigInfo, error) {
	// .env 不存在时忽略
	_ = godotenv.Load()
	return LoadConfigFrom(DefaultConfigPath())
}

// LoadConfigFrom 从指定路径加载配置，文件不存在时使用默认值
func LoadConfigFrom(path string) (*AppConfig, LoadConfigInfo, error) {
	info := LoadConfigInfo{Path: path}
	config := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		info.FileFound = true
		info.PortSpecified = isPortSpecifiedInToml(data)
		if err := toml.Unmarshal(data, config); err != nil {
			return nil, info, fmt.Errorf("parse %s: %w", path, err)
		}
	case os.IsNotExist(err):
		// 配置文件不存在，使用默认配置
	default:
		return nil, info, err
	}

	if err := applyEnv(config, &info); err != nil {
		return nil, info, err
	}
	return config, info, nil
}

// applyEnv 环境变量覆盖配置文件
func applyEnv(config *AppConfig, info *LoadConfigInfo) error {
	if v := os.Getenv("ICHIMOKU_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid ICHIMOKU_PORT %q: %w", v, err)
		}
		config.Server.Port = port
		info.PortSpecified = true
	}
	if v := os.Getenv("ICHIMOKU_DEV"); v != "" {
		config.Server.DevMode = v == "1" || strings.EqualFold(v, "true")
	}
	if v := os.Getenv("ICHIMOKU_DATA_DIR"); v != "" {
		config.Data.DataDir = v
	}
	if v := os.Getenv("ICHIMOKU_IMPORT_FORMAT"); v != "" {
		config.Import.Format = v
	}
	if v := os.Getenv("ICHIMOKU_BULK_MARKER"); v != "" {
		config.Import.BulkMarker = v
	}
	if v := os.Getenv("ICHIMOKU_LOG_LEVEL"); v != "" {
		config.Log.Level = v
	}
	if v := os.Getenv("ICHIMOKU_LOG_FORMAT"); v != "" {
		config.Log.Format = v
	}
	return nil
}

// SaveConfig 保存配置到 path
func SaveConfig(config *AppConfig, path string) error {
	data, err := toml.Marshal(config)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// EnsureDataDir 确保数据目录存在
// 相对路径以可执行文件所在目录为基准
func EnsureDataDir(config *AppConfig) (string, error) {
	dataDir := config.Data.DataDir
	if !filepath.IsAbs(dataDir) {
		exeDir, err := GetExeDir()
		if err != nil {
			exeDir = "."
		}
		dataDir = filepath.Join(exeDir, dataDir)
	}

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return "", err
	}

	// 创建子目录
	subdirs := []string{"uploads", "reports"}
	for _, subdir := range subdirs {
		path := filepath.Join(dataDir, subdir)
		if err := os.MkdirAll(path, 0755); err != nil {
			return "", err
		}
	}

	return dataDir, nil
}

// DatabasePath 数据库文件路径
func DatabasePath(dataDir string) string {
	return filepath.Join(dataDir, "ichimoku.db")
}
