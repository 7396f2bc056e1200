package importer

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/NeoKiring/Ichimoku/internal/parser"
	"github.com/NeoKiring/Ichimoku/internal/store"
)

// DefaultBulkMarker 批量导入的文件名前缀
const DefaultBulkMarker = "【Gantt"

// DefaultExtensions 批量导入接受的扩展名
var DefaultExtensions = []string{".xlsx", ".xls", ".xlsm"}

// 进度事件类型
const (
	EventStart     = "start"
	EventFileStart = "file_start"
	EventFileDone  = "file_done"
	EventWarning   = "warning"
	EventError     = "error"
	EventDone      = "done"
)

// Coordinator 导入协调器：逐个文件调用流水线，隔离单文件失败
type Coordinator struct {
	pipeline *Pipeline
	store    *store.Store
	logger   *slog.Logger
}

// NewCoordinator 创建导入协调器，store 为 nil 时不持久化
func NewCoordinator(pipeline *Pipeline, st *store.Store, logger *slog.Logger) *Coordinator {
	if logger == nil {
		logger = slog.Default()
	}
	if pipeline == nil {
		pipeline = NewPipeline(logger)
	}
	return &Coordinator{pipeline: pipeline, store: st, logger: logger}
}

// BulkOptions 批量导入选项
type BulkOptions struct {
	RootDir    string
	Format     parser.FormatVariant
	Marker     string   // 为空时使用 DefaultBulkMarker
	Extensions []string // 为空时使用 DefaultExtensions
	Save       bool     // 是否保存到 store
}

// ProgressEvent 进度事件
type ProgressEvent struct {
	Type      string      `json:"type"`      // start/file_start/file_done/warning/error/done
	Message   string      `json:"message"`   // 事件消息
	Data      interface{} `json:"data"`      // 附加数据
	Timestamp time.Time   `json:"timestamp"` // 时间戳
}

// Run 执行批量导入，返回进度通道；done 事件携带 *BatchReport
func (c *Coordinator) Run(ctx context.Context, opts BulkOptions) <-chan ProgressEvent {
	progressChan := make(chan ProgressEvent, 100)

	go func() {
		defer close(progressChan)
		report := c.doBulk(ctx, opts, progressChan)
		c.sendFinal(ctx, progressChan, ProgressEvent{
			Type:      EventDone,
			Message:   fmt.Sprintf("导入完成: 成功 %d, 失败 %d", report.ImportedFiles, report.FailedFiles),
			Data:      report,
			Timestamp: time.Now(),
		})
	}()

	return progressChan
}

// RunSync 同步执行并返回报告
func (c *Coordinator) RunSync(ctx context.Context, opts BulkOptions) *BatchReport {
	var report *BatchReport
	for evt := range c.Run(ctx, opts) {
		if evt.Type == EventDone {
			report, _ = evt.Data.(*BatchReport)
		}
	}
	return report
}

func (c *Coordinator) doBulk(ctx context.Context, opts BulkOptions, ch chan ProgressEvent) *BatchReport {
	start := time.Now()
	report := &BatchReport{RootDir: opts.RootDir, Files: []FileReport{}}

	c.sendProgress(ch, ProgressEvent{
		Type:    EventStart,
		Message: "开始批量导入",
		Data: map[string]string{
			"root": opts.RootDir,
		},
		Timestamp: time.Now(),
	})

	candidates, err := ScanCandidates(opts.RootDir, opts.Marker, opts.Extensions)
	if err != nil {
		report.Error = err.Error()
		c.logger.Error("scan bulk directory failed", "root", opts.RootDir, "error", err)
		c.sendProgress(ch, ProgressEvent{
			Type:      EventError,
			Message:   fmt.Sprintf("扫描目录失败: %v", err),
			Timestamp: time.Now(),
		})
		report.Duration = time.Since(start)
		return report
	}
	report.TotalFiles = len(candidates)

	for i, cand := range candidates {
		if ctx.Err() != nil {
			report.Error = ctx.Err().Error()
			break
		}

		c.sendProgress(ch, ProgressEvent{
			Type:    EventFileStart,
			Message: fmt.Sprintf("正在导入 (%d/%d): %s", i+1, len(candidates), cand.FileName),
			Data: map[string]string{
				"subdirectory": cand.Subdirectory,
				"file":         cand.FileName,
			},
			Timestamp: time.Now(),
		})

		fr := c.importCandidate(cand, opts)
		report.record(fr)

		evtType := EventFileDone
		msg := fmt.Sprintf("%s -> %s", cand.FileName, fr.ProjectName)
		if fr.Status == FileFailed {
			evtType = EventError
			msg = fmt.Sprintf("%s 导入失败: %s", cand.FileName, fr.Error)
		} else if fr.SaveError != "" {
			evtType = EventWarning
			msg = fmt.Sprintf("%s 保存失败: %s", cand.FileName, fr.SaveError)
		}
		c.sendProgress(ch, ProgressEvent{Type: evtType, Message: msg, Data: fr, Timestamp: time.Now()})
	}

	report.Duration = time.Since(start)
	if opts.Save && c.store != nil {
		run := store.BulkRun{RootDir: opts.RootDir, At: start, Imported: report.ImportedFiles}
		if err := c.store.SetLastBulkRun(run); err != nil {
			c.logger.Warn("record bulk run failed", "error", err)
		}
	}
	c.logger.Info("bulk import finished",
		"root", opts.RootDir,
		"files", report.TotalFiles,
		"imported", report.ImportedFiles,
		"failed", report.FailedFiles,
		"duration", report.Duration,
	)
	return report
}

// importCandidate 导入单个文件，任何错误或 panic 都记录在报告中
func (c *Coordinator) importCandidate(cand Candidate, opts BulkOptions) (fr FileReport) {
	fr = FileReport{
		Subdirectory: cand.Subdirectory,
		FileName:     cand.FileName,
		Path:         cand.Path,
		Status:       FileFailed,
	}
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("import panicked", "file", cand.Path, "panic", r)
			fr.Status = FileFailed
			fr.Error = fmt.Sprintf("panic: %v", r)
		}
		fr.Duration = time.Since(start)
	}()

	res, err := c.pipeline.ImportFile(cand.Path, opts.Format)
	if err != nil {
		fr.Error = err.Error()
		c.logImport(cand.Path, nil, err, opts.Save)
		return fr
	}

	project := res.Project
	if res.NameSource == NameFromDefault || strings.TrimSpace(project.Name) == "" {
		project.Name = FallbackProjectName(cand.FileName, cand.Subdirectory)
	}
	note := fmt.Sprintf("サブディレクトリ '%s' のファイル '%s' からインポート", cand.Subdirectory, cand.FileName)
	if project.Description != "" {
		project.Description += "\n" + note
	} else {
		project.Description = note
	}

	fr.Status = FileImported
	fr.fill(res)

	if opts.Save {
		if err := c.saveProject(cand.Path, res); err != nil {
			fr.SaveError = err.Error()
		} else {
			fr.Saved = true
		}
	}
	return fr
}

// ImportOne 导入单个文件并按需保存（CLI 与 HTTP 单文件入口）
func (c *Coordinator) ImportOne(path string, format parser.FormatVariant, save bool) (*Result, error) {
	res, err := c.pipeline.ImportFile(path, format)
	if err != nil {
		c.logImport(path, nil, err, save)
		return nil, err
	}
	if save {
		if err := c.saveProject(path, res); err != nil {
			return res, err
		}
	}
	return res, nil
}

func (c *Coordinator) saveProject(path string, res *Result) error {
	if c.store == nil {
		return fmt.Errorf("no store configured")
	}
	if err := c.store.SaveProject(res.Project); err != nil {
		c.logImport(path, res, err, true)
		return err
	}
	c.logImport(path, res, nil, true)
	return nil
}

// logImport 写入导入日志，失败只记录 warn
func (c *Coordinator) logImport(path string, res *Result, importErr error, enabled bool) {
	if !enabled || c.store == nil {
		return
	}
	size, hash := fileFingerprint(path)
	id, err := c.store.CreateImportLog(filepath.Base(path), path, size, hash)
	if err != nil {
		c.logger.Warn("create import log failed", "file", path, "error", err)
		return
	}

	upd := store.ImportLogUpdate{Status: store.ImportStatusSuccess}
	if res != nil {
		phases, processes, tasks := res.Project.Counts()
		upd.ProjectID = res.Project.ID
		upd.Format = string(res.Format)
		upd.PhaseCount, upd.ProcessCount, upd.TaskCount = phases, processes, tasks
		upd.DiagnosticCount = len(res.Diagnostics)
	}
	if importErr != nil {
		upd.Status = store.ImportStatusFailed
		upd.ErrorMessage = importErr.Error()
	}
	if err := c.store.UpdateImportLog(id, upd); err != nil {
		c.logger.Warn("update import log failed", "file", path, "error", err)
	}
}

// sendProgress 发送进度事件
func (c *Coordinator) sendProgress(ch chan ProgressEvent, event ProgressEvent) {
	select {
	case ch <- event:
	default:
		// 通道已满，丢弃事件
	}
}

// sendFinal done 事件必须送达，除非调用方已取消
func (c *Coordinator) sendFinal(ctx context.Context, ch chan ProgressEvent, event ProgressEvent) {
	select {
	case ch <- event:
	case <-ctx.Done():
	}
}

// Candidate 待导入文件
type Candidate struct {
	Subdirectory string
	FileName     string
	Path         string
}

// ScanCandidates 只扫描根目录下一层子目录，按名称排序
func ScanCandidates(root, marker string, extensions []string) ([]Candidate, error) {
	if marker == "" {
		marker = DefaultBulkMarker
	}
	if len(extensions) == 0 {
		extensions = DefaultExtensions
	}

	dirs, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("read root %s: %w", root, err)
	}

	var out []Candidate
	for _, d := range dirs {
		if !d.IsDir() {
			continue
		}
		subPath := filepath.Join(root, d.Name())
		entries, err := os.ReadDir(subPath)
		if err != nil {
			return nil, fmt.Errorf("read subdirectory %s: %w", d.Name(), err)
		}
		for _, e := range entries {
			if e.IsDir() || !strings.HasPrefix(e.Name(), marker) || !hasExtension(e.Name(), extensions) {
				continue
			}
			out = append(out, Candidate{
				Subdirectory: d.Name(),
				FileName:     e.Name(),
				Path:         filepath.Join(subPath, e.Name()),
			})
		}
	}
	return out, nil
}

func hasExtension(name string, extensions []string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range extensions {
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		if ext == strings.ToLower(e) {
			return true
		}
	}
	return false
}

var bracketToken = regexp.MustCompile(`【[^】]*】`)

// FallbackProjectName 去掉扩展名与第一个【…】标记后的文件名，为空时用子目录名
func FallbackProjectName(fileName, subdirectory string) string {
	base := strings.TrimSuffix(fileName, filepath.Ext(fileName))
	if loc := bracketToken.FindStringIndex(base); loc != nil {
		base = base[:loc[0]] + base[loc[1]:]
	}
	base = strings.Trim(base, " 　_-")
	if base == "" {
		return subdirectory
	}
	return base
}

func fileFingerprint(path string) (int64, string) {
	f, err := os.Open(path)
	if err != nil {
		return 0, ""
	}
	defer f.Close()

	h := sha256.New()
	n, err := io.Copy(h, f)
	if err != nil {
		return n, ""
	}
	return n, hex.EncodeToString(h.Sum(nil))
}
