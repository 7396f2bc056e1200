package importer

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/NeoKiring/Ichimoku/internal/model"
	"github.com/NeoKiring/Ichimoku/internal/parser"
)

var (
	// ErrWorkbookLoad 文件无法打开或读取
	ErrWorkbookLoad = errors.New("workbook load failed")
	// ErrNoUsableData 完整处理后仍没有任何阶段
	ErrNoUsableData = errors.New("no usable data found")
)

// Strategy 实际使用的层级重建方式
type Strategy string

const (
	StrategyIdentifier   Strategy = "identifier"
	StrategyLevel        Strategy = "level"
	StrategyFlat         Strategy = "flat"
	StrategyLegacy       Strategy = "legacy_layout"
	StrategyUnstructured Strategy = "unstructured"
)

// Result 单个工作簿的导入结果
type Result struct {
	Project     *model.Project       `json:"project"`
	Format      parser.FormatVariant `json:"format"`
	Detected    bool                 `json:"detected"` // 布局由自动识别得出
	SheetName   string               `json:"sheetName"`
	HeaderRow   int                  `json:"headerRow"`
	Strategy    Strategy             `json:"strategy"`
	NameSource  NameSource           `json:"nameSource"`
	Diagnostics []parser.Diagnostic  `json:"diagnostics,omitempty"`
}

// Pipeline 导入流水线：识别布局 -> 定位表头 -> 重建层级 -> 兜底 -> 校验
// 每次调用独立构建项目树，实例可复用
type Pipeline struct {
	detector *parser.FormatDetector
	mapper   *parser.ColumnRoleMapper
	logger   *slog.Logger
}

// NewPipeline 创建流水线，logger 为空时使用默认 logger
func NewPipeline(logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		detector: parser.NewFormatDetector(),
		mapper:   parser.NewColumnRoleMapper(),
		logger:   logger,
	}
}

// ImportFile 打开文件并导入，不会修改源文件
func (p *Pipeline) ImportFile(path string, variant parser.FormatVariant) (*Result, error) {
	wb, err := parser.OpenWorkbook(path)
	if err != nil {
		p.logger.Error("open workbook failed", "file", filepath.Base(path), "error", err)
		return nil, fmt.Errorf("%w: %v", ErrWorkbookLoad, err)
	}
	defer wb.Close()

	res, err := p.Import(wb, variant)
	if err != nil {
		return nil, err
	}
	res.Project.Description = fmt.Sprintf("ファイル '%s' からインポート", filepath.Base(path))
	return res, nil
}

// Import 导入已打开的工作簿，variant 为空或 auto 时自动识别
func (p *Pipeline) Import(wb *parser.Workbook, variant parser.FormatVariant) (*Result, error) {
	res := &Result{}
	if variant == "" || variant == parser.FormatAuto {
		detection := p.detector.DetectWithReason(wb.SheetNames())
		variant = detection.Variant
		res.Detected = true
		p.logger.Debug("format detected", "format", variant, "reason", detection.Reason)
	}
	res.Format = variant

	sheet, err := p.targetSheet(wb, variant)
	if err != nil {
		if errors.Is(err, parser.ErrSheetNotFound) {
			return nil, fmt.Errorf("%w: %v", ErrNoUsableData, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrWorkbookLoad, err)
	}
	res.SheetName = sheet.Name()

	diags := &parser.Diagnostics{}
	info := p.mapper.Analyze(sheet, variant)
	res.HeaderRow = info.Row
	if !info.Found() {
		diags.Addf(parser.DiagHeaderNotFound, sheet.Name(), 0, "no header row with enough keywords")
	}

	project := model.NewProject("", "")
	builder := parser.NewHierarchyBuilder(project, diags, p.logger)
	if variant == parser.FormatStandard {
		builder.WithTaskSheets(taskSheetLookup(wb, sheet.Name()))
	}

	res.Strategy = p.build(builder, sheet, info, variant)

	project.Name, res.NameSource = DiscoverProjectName(sheet, info.Row, variant)

	if len(project.Phases) == 0 {
		firstRow := 1
		if info.Found() {
			firstRow = info.Row + 1
		}
		added := builder.BuildUnstructured(sheet, firstRow)
		res.Strategy = StrategyUnstructured
		p.logger.Debug("unstructured fallback", "sheet", sheet.Name(), "processes", added)
	}

	if len(project.Phases) == 0 {
		return nil, fmt.Errorf("%w: sheet %q", ErrNoUsableData, sheet.Name())
	}

	project.RefreshStatus()
	res.Project = project
	res.Diagnostics = diags.Items()

	phases, processes, tasks := project.Counts()
	p.logger.Info("workbook imported",
		"project", project.Name,
		"format", variant,
		"sheet", sheet.Name(),
		"strategy", res.Strategy,
		"phases", phases,
		"processes", processes,
		"tasks", tasks,
		"diagnostics", len(res.Diagnostics),
	)
	for _, d := range res.Diagnostics {
		p.logger.Debug("import diagnostic", "kind", d.Kind, "sheet", d.Sheet, "row", d.Row, "message", d.Message)
	}
	return res, nil
}

// targetSheet 各布局的主数据表，找不到时退回活动表
func (p *Pipeline) targetSheet(wb *parser.Workbook, variant parser.FormatVariant) (*parser.Sheet, error) {
	if name := parser.ScheduleSheetFor(wb, variant); name != "" {
		return wb.Sheet(name)
	}
	return wb.ActiveSheet()
}

// build 根据布局与表头选择层级策略
func (p *Pipeline) build(b *parser.HierarchyBuilder, sheet *parser.Sheet, info parser.HeaderInfo, variant parser.FormatVariant) Strategy {
	if !info.Found() {
		if variant == parser.FormatStandard {
			b.BuildByIdentifier(parser.LegacyStandardLayout(sheet))
			return StrategyLegacy
		}
		return StrategyUnstructured
	}

	layout := info.Layout(sheet)
	switch variant {
	case parser.FormatMSProject:
		b.BuildByLevel(layout)
		return StrategyLevel
	case parser.FormatSimple:
		b.BuildFlat(layout)
		return StrategyFlat
	}

	// standard / standard_like
	// 标识列兼作层级列（WBS 大纲编号）且没有字母阶段标识时按层级处理
	if info.Roles.Has(parser.RoleIdentifier) && (info.LevelColumn == 0 || parser.HasPhaseIdentifiers(layout)) {
		b.BuildByIdentifier(layout)
		return StrategyIdentifier
	}
	if info.LevelColumn > 0 || parser.HasIndentedNames(layout) {
		b.BuildByLevel(layout)
		return StrategyLevel
	}
	b.BuildFlat(layout)
	return StrategyFlat
}

// taskSheetLookup 与工序标识同名的工作表为任务明细
func taskSheetLookup(wb *parser.Workbook, scheduleSheet string) parser.TaskSheetLookup {
	return func(identifier string) (*parser.Sheet, bool) {
		if identifier == scheduleSheet || !wb.HasSheet(identifier) {
			return nil, false
		}
		s, err := wb.Sheet(identifier)
		if err != nil {
			return nil, false
		}
		return s, true
	}
}
