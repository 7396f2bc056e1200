package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadConfigFrom_MissingFileUsesDefaults(t *testing.T) {
	t.Parallel()

	cfg, info, err := LoadConfigFrom(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if info.FileFound || info.PortSpecified {
		t.Fatalf("unexpected info: %+v", info)
	}
	def := DefaultConfig()
	if cfg.Server.Port != def.Server.Port || cfg.Import.Format != "auto" || cfg.Import.BulkMarker != "【Gantt" {
		t.Fatalf("defaults not applied: %+v", cfg)
	}
}

func TestLoadConfigFrom_File(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `
[server]
port = 8088
dev_mode = true

[import]
format = "simple"
extensions = [".xlsx"]

[log]
level = "debug"
`)
	cfg, info, err := LoadConfigFrom(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !info.FileFound || !info.PortSpecified {
		t.Fatalf("info: %+v", info)
	}
	if cfg.Server.Port != 8088 || !cfg.Server.DevMode {
		t.Fatalf("server: %+v", cfg.Server)
	}
	if cfg.Import.Format != "simple" || len(cfg.Import.Extensions) != 1 {
		t.Fatalf("import: %+v", cfg.Import)
	}
	// 未出现的字段保持默认值
	if cfg.Import.BulkMarker != "【Gantt" || cfg.Log.Format != "text" || cfg.Log.Level != "debug" {
		t.Fatalf("merge with defaults failed: %+v", cfg)
	}
}

func TestLoadConfigFrom_PortNotSpecified(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, "[server]\ndev_mode = true\n")
	_, info, err := LoadConfigFrom(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if info.PortSpecified {
		t.Fatalf("port should not be marked as specified")
	}
}

func TestLoadConfigFrom_InvalidToml(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, "[server\nport = ")
	if _, _, err := LoadConfigFrom(path); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestLoadConfigFrom_EnvOverrides(t *testing.T) {
	t.Setenv("ICHIMOKU_PORT", "9001")
	t.Setenv("ICHIMOKU_DEV", "true")
	t.Setenv("ICHIMOKU_IMPORT_FORMAT", "ms_project")
	t.Setenv("ICHIMOKU_BULK_MARKER", "【工程")
	t.Setenv("ICHIMOKU_LOG_FORMAT", "json")

	path := writeConfig(t, "[server]\nport = 8088\n")
	cfg, info, err := LoadConfigFrom(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != 9001 || !info.PortSpecified || !cfg.Server.DevMode {
		t.Fatalf("server: %+v", cfg.Server)
	}
	if cfg.Import.Format != "ms_project" || cfg.Import.BulkMarker != "【工程" || cfg.Log.Format != "json" {
		t.Fatalf("overrides: %+v", cfg)
	}
}

func TestLoadConfigFrom_InvalidEnvPort(t *testing.T) {
	t.Setenv("ICHIMOKU_PORT", "abc")

	if _, _, err := LoadConfigFrom(filepath.Join(t.TempDir(), "none.toml")); err == nil {
		t.Fatalf("expected error for invalid port")
	}
}

func TestSaveConfigRoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.toml")
	cfg := DefaultConfig()
	cfg.Server.Port = 7070
	cfg.Import.Format = "standard"
	if err := SaveConfig(cfg, path); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, info, err := LoadConfigFrom(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !info.PortSpecified || got.Server.Port != 7070 || got.Import.Format != "standard" {
		t.Fatalf("round trip: %+v", got)
	}
}

func TestEnsureDataDir(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.Data.DataDir = filepath.Join(t.TempDir(), "data")
	dir, err := EnsureDataDir(cfg)
	if err != nil {
		t.Fatalf("ensure: %v", err)
	}
	for _, sub := range []string{"uploads", "reports"} {
		if st, err := os.Stat(filepath.Join(dir, sub)); err != nil || !st.IsDir() {
			t.Fatalf("missing %s: %v", sub, err)
		}
	}
	if DatabasePath(dir) != filepath.Join(dir, "ichimoku.db") {
		t.Fatalf("db path: %s", DatabasePath(dir))
	}
}
