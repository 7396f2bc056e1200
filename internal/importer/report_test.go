package importer

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/NeoKiring/Ichimoku/internal/parser"
)

func sampleReport() *BatchReport {
	r := &BatchReport{RootDir: "/data/gantt"}
	r.TotalFiles = 2
	r.record(FileReport{
		Subdirectory: "案件A",
		FileName:     "【Gantt】受注管理.xlsx",
		Status:       FileImported,
		ProjectName:  "受注管理",
		Format:       parser.FormatSimple,
		Phases:       1,
		Processes:    3,
		Tasks:        5,
		Diagnostics: []parser.Diagnostic{
			{Kind: parser.DiagParseWarning, Sheet: "Tasks", Row: 4, Message: `unparsable end_date "N/A"`},
		},
	})
	r.record(FileReport{Subdirectory: "案件B", FileName: "【Gantt】壊れた.xlsx", Status: FileFailed, Error: "workbook load failed"})
	return r
}

func TestBatchReport_EncodeJSON(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if err := sampleReport().Encode(&buf, "json"); err != nil {
		t.Fatalf("encode: %v", err)
	}
	var decoded BatchReport
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded.ImportedFiles != 1 || decoded.FailedFiles != 1 || len(decoded.Files) != 2 {
		t.Fatalf("decoded: %+v", decoded)
	}
	if decoded.Files[0].Diagnostics[0].Kind != parser.DiagParseWarning {
		t.Fatalf("diagnostics: %+v", decoded.Files[0].Diagnostics)
	}
}

func TestBatchReport_WriteFileYAML(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "report.yaml")
	if err := sampleReport().WriteFile(path); err != nil {
		t.Fatalf("write: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !strings.Contains(string(data), "importedFiles: 1") {
		t.Fatalf("yaml output:\n%s", data)
	}

	var decoded map[string]any
	if err := yaml.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("yaml decode: %v", err)
	}
	files, ok := decoded["files"].([]any)
	if !ok || len(files) != 2 {
		t.Fatalf("files: %#v", decoded["files"])
	}
}

func TestBatchReport_UnsupportedFormat(t *testing.T) {
	t.Parallel()

	if err := sampleReport().Encode(&bytes.Buffer{}, "csv"); err == nil {
		t.Fatalf("expected error for csv")
	}
}

func TestBatchReport_WriteFileCreatesDirAndSkipsUnsupported(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "reports", "2024", "bulk.json")
	if err := sampleReport().WriteFile(path); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Fatalf("temp file left behind: %v", err)
	}

	bad := filepath.Join(dir, "bulk.csv")
	if err := sampleReport().WriteFile(bad); err == nil {
		t.Fatalf("expected error for csv")
	}
	if _, err := os.Stat(bad); !os.IsNotExist(err) {
		t.Fatalf("csv report should not be created")
	}
}

func TestBatchReport_WriteFileRenameFailureCleansUp(t *testing.T) {
	t.Parallel()

	// 目标路径是非空目录时重命名失败
	path := filepath.Join(t.TempDir(), "report.json")
	if err := os.MkdirAll(filepath.Join(path, "occupied"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	err := sampleReport().WriteFile(path)
	if err == nil || !strings.Contains(err.Error(), "rename report") {
		t.Fatalf("expected rename error, got %v", err)
	}
	if _, statErr := os.Stat(path + ".tmp"); !os.IsNotExist(statErr) {
		t.Fatalf("temp file left behind: %v", statErr)
	}
}
