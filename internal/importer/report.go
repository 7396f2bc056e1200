package importer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/NeoKiring/Ichimoku/internal/parser"
)

// FileStatus 单文件导入状态
type FileStatus string

const (
	FileImported FileStatus = "imported"
	FileFailed   FileStatus = "failed"
)

// FileReport 单文件导入结果
type FileReport struct {
	Subdirectory string               `json:"subdirectory" yaml:"subdirectory"`
	FileName     string               `json:"fileName" yaml:"fileName"`
	Path         string               `json:"path" yaml:"path"`
	Status       FileStatus           `json:"status" yaml:"status"`
	ProjectID    string               `json:"projectId,omitempty" yaml:"projectId,omitempty"`
	ProjectName  string               `json:"projectName,omitempty" yaml:"projectName,omitempty"`
	NameSource   NameSource           `json:"nameSource,omitempty" yaml:"nameSource,omitempty"`
	Format       parser.FormatVariant `json:"format,omitempty" yaml:"format,omitempty"`
	Strategy     Strategy             `json:"strategy,omitempty" yaml:"strategy,omitempty"`
	Phases       int                  `json:"phases" yaml:"phases"`
	Processes    int                  `json:"processes" yaml:"processes"`
	Tasks        int                  `json:"tasks" yaml:"tasks"`
	Diagnostics  []parser.Diagnostic  `json:"diagnostics,omitempty" yaml:"diagnostics,omitempty"`
	Saved        bool                 `json:"saved" yaml:"saved"`
	SaveError    string               `json:"saveError,omitempty" yaml:"saveError,omitempty"`
	Error        string               `json:"error,omitempty" yaml:"error,omitempty"`
	Duration     time.Duration        `json:"duration" yaml:"duration"`
}

func (fr *FileReport) fill(res *Result) {
	fr.ProjectID = res.Project.ID
	fr.ProjectName = res.Project.Name
	fr.NameSource = res.NameSource
	fr.Format = res.Format
	fr.Strategy = res.Strategy
	fr.Phases, fr.Processes, fr.Tasks = res.Project.Counts()
	fr.Diagnostics = res.Diagnostics
}

// BatchReport 批量导入报告
type BatchReport struct {
	RootDir       string        `json:"rootDir" yaml:"rootDir"`
	TotalFiles    int           `json:"totalFiles" yaml:"totalFiles"`
	ImportedFiles int           `json:"importedFiles" yaml:"importedFiles"`
	FailedFiles   int           `json:"failedFiles" yaml:"failedFiles"`
	Error         string        `json:"error,omitempty" yaml:"error,omitempty"`
	Duration      time.Duration `json:"duration" yaml:"duration"`
	Files         []FileReport  `json:"files" yaml:"files"`
}

func (r *BatchReport) record(fr FileReport) {
	r.Files = append(r.Files, fr)
	if fr.Status == FileImported {
		r.ImportedFiles++
	} else {
		r.FailedFiles++
	}
}

// Encode 按 json 或 yaml 输出
func (r *BatchReport) Encode(w io.Writer, format string) error {
	switch strings.ToLower(format) {
	case "yaml", "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(r); err != nil {
			return fmt.Errorf("encode yaml report: %w", err)
		}
		return enc.Close()
	case "json", "":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(r); err != nil {
			return fmt.Errorf("encode json report: %w", err)
		}
		return nil
	}
	return fmt.Errorf("unsupported report format %q", format)
}

// WriteFile 按扩展名选择格式写入报告，先写临时文件再重命名
func (r *BatchReport) WriteFile(path string) error {
	format := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	var buf bytes.Buffer
	if err := r.Encode(&buf, format); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create report dir: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("rename report: %w", err)
	}
	return nil
}
