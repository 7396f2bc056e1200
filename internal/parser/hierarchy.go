package parser

import (
	"log/slog"
	"time"

	"github.com/NeoKiring/Ichimoku/internal/model"
)

// 合成阶段与任务的名称
const (
	UnclassifiedPhaseName = "未分類フェーズ"
	MainPhaseName         = "メインフェーズ"

	CompletedPortionSuffix = " (完了部分)"
	RemainingPortionSuffix = " (残り部分)"
	DefaultTaskSuffix      = " (デフォルトタスク)"
)

// 工序明细表中任务所在区域（B6:C17）
const (
	taskSheetFirstRow = 6
	taskSheetLastRow  = 17
	taskNameCol       = 2
	taskStatusCol     = 3
)

// Layout 数据区域：工作表、首个数据行与列语义
type Layout struct {
	Sheet       *Sheet
	FirstRow    int
	Roles       *RoleMap
	LevelColumn int

	// OutlineLevel 层级列为 WBS 大纲编号，按段数计层级
	OutlineLevel bool
}

func (l Layout) cell(row int, role ColumnRole) CellValue {
	col, ok := l.Roles.Column(role)
	if !ok {
		return Empty()
	}
	return l.Sheet.Cell(row, col)
}

// TaskSheetLookup 按工序标识查找明细表
type TaskSheetLookup func(identifier string) (*Sheet, bool)

// HierarchyBuilder 将数据行重建为 阶段 -> 工序 -> 任务 树
// 同一次导入内共享"未分類"与"メイン"两个合成阶段
type HierarchyBuilder struct {
	project      *model.Project
	diags        *Diagnostics
	logger       *slog.Logger
	taskSheets   TaskSheetLookup
	unclassified *model.Phase
	main         *model.Phase
}

// NewHierarchyBuilder 创建构建器，阶段直接追加到 project
func NewHierarchyBuilder(project *model.Project, diags *Diagnostics, logger *slog.Logger) *HierarchyBuilder {
	if diags == nil {
		diags = &Diagnostics{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &HierarchyBuilder{project: project, diags: diags, logger: logger}
}

// WithTaskSheets 启用工序明细表（标准格式）
func (b *HierarchyBuilder) WithTaskSheets(lookup TaskSheetLookup) *HierarchyBuilder {
	b.taskSheets = lookup
	return b
}

// Project 构建中的项目
func (b *HierarchyBuilder) Project() *model.Project { return b.project }

func (b *HierarchyBuilder) unclassifiedPhase() *model.Phase {
	if b.unclassified == nil {
		b.unclassified = model.NewPhase(UnclassifiedPhaseName)
		b.project.AddPhase(b.unclassified)
	}
	return b.unclassified
}

func (b *HierarchyBuilder) mainPhase() *model.Phase {
	if b.main == nil {
		b.main = model.NewPhase(MainPhaseName)
		b.project.AddPhase(b.main)
	}
	return b.main
}

// BuildByIdentifier 标识模式：纯字母为阶段，字母加数字为工序
// 工序按标识中的字母归属阶段（B3 -> B），找不到时归入"未分類"
func (b *HierarchyBuilder) BuildByIdentifier(l Layout) {
	sheet := l.Sheet.Name()
	phases := make(map[string]*model.Phase)

	for row := l.FirstRow; row <= l.Sheet.MaxRow(); row++ {
		id := NormalizeText(l.cell(row, RoleIdentifier).String())
		name := l.cell(row, RoleName).String()
		if id == "" || name == "" {
			continue
		}

		if isLettersOnly(id) {
			phase := model.NewPhase(name)
			b.project.AddPhase(phase)
			phases[id] = phase
			continue
		}

		prefix, hasDigit := letterPrefix(id)
		if prefix == "" || !hasDigit {
			b.diags.Addf(DiagStructureWarning, sheet, row, "unrecognized identifier %q, row skipped", id)
			b.logger.Debug("identifier skipped", "sheet", sheet, "row", row, "id", id)
			continue
		}

		phase, ok := phases[prefix]
		if !ok {
			b.diags.Addf(DiagOrphanProcess, sheet, row, "no phase %q for process %q", prefix, id)
			phase = b.unclassifiedPhase()
		}
		phase.AddProcess(b.newProcess(l, row, name, id))
	}
}

// BuildByLevel 层级模式：0/1 级为阶段，更深为工序
// 父阶段取层级更低且最近记录的阶段
func (b *HierarchyBuilder) BuildByLevel(l Layout) {
	sheet := l.Sheet.Name()
	open := make(map[int]*model.Phase)

	for row := l.FirstRow; row <= l.Sheet.MaxRow(); row++ {
		nameCell := l.cell(row, RoleName)
		name := nameCell.String()
		if name == "" {
			continue
		}

		level := b.rowLevel(l, row, nameCell)
		if level <= 1 {
			phase := model.NewPhase(name)
			b.project.AddPhase(phase)
			for lv := range open {
				if lv >= level {
					delete(open, lv)
				}
			}
			open[level] = phase
			continue
		}

		var parent *model.Phase
		for lv := level - 1; lv >= 0; lv-- {
			if p, ok := open[lv]; ok {
				parent = p
				break
			}
		}
		if parent == nil {
			b.diags.Addf(DiagOrphanProcess, sheet, row, "no parent phase for %q at level %d", name, level)
			parent = b.unclassifiedPhase()
		}
		parent.AddProcess(b.newProcess(l, row, name, ""))
	}
}

// rowLevel WBS 编号段数 / 层级列数值 > 层级列文本缩进 > 名称缩进
func (b *HierarchyBuilder) rowLevel(l Layout, row int, nameCell CellValue) int {
	if l.LevelColumn > 0 {
		v := l.Sheet.Cell(row, l.LevelColumn)
		if l.OutlineLevel {
			if depth, ok := wbsDepth(v); ok {
				return depth
			}
		}
		switch v.Kind {
		case CellNumber:
			if v.Number < 0 {
				return 0
			}
			return int(v.Number)
		case CellText:
			if depth, ok := outlineDepth(v.Text); ok {
				return depth
			}
			if n, ok := CoerceNumber(v); ok && n >= 0 {
				return int(n)
			}
			return indentLevel(v.Text)
		}
	}
	if nameCell.IsText() {
		return indentLevel(nameCell.Text)
	}
	return 0
}

// BuildFlat 无结构信号时全部工序归入"メイン"阶段
func (b *HierarchyBuilder) BuildFlat(l Layout) {
	for row := l.FirstRow; row <= l.Sheet.MaxRow(); row++ {
		name := l.cell(row, RoleName).String()
		if name == "" {
			continue
		}
		b.mainPhase().AddProcess(b.newProcess(l, row, name, ""))
	}
}

// BuildUnstructured 最后手段：取最左侧两个含文本的列
// 第二列有值时作为任务名，工序名取第一列（为空则同任务名）；仅第一列有值时补一个默认任务
// 返回新增工序数，为 0 时不会创建阶段
func (b *HierarchyBuilder) BuildUnstructured(s *Sheet, firstRow int) int {
	if firstRow < 1 {
		firstRow = 1
	}
	c1, c2 := textColumns(s, firstRow)
	if c1 == 0 {
		return 0
	}

	added := 0
	for row := firstRow; row <= s.MaxRow(); row++ {
		first := s.Cell(row, c1)
		second := Empty()
		if c2 > 0 {
			second = s.Cell(row, c2)
		}

		var proc *model.Process
		switch {
		case second.IsText():
			taskName := second.String()
			procName := taskName
			if first.IsText() {
				procName = first.String()
			}
			proc = model.NewProcess(procName)
			proc.AddTask(model.NewTask(taskName, model.TaskNotStarted))
		case first.IsText():
			procName := first.String()
			proc = model.NewProcess(procName)
			proc.AddTask(model.NewTask(procName+DefaultTaskSuffix, model.TaskNotStarted))
		default:
			continue
		}
		b.mainPhase().AddProcess(proc)
		added++
	}
	return added
}

// textColumns 最左侧两个含文本单元格的列
func textColumns(s *Sheet, firstRow int) (int, int) {
	var cols []int
	for col := 1; col <= s.MaxCol() && len(cols) < 2; col++ {
		for row := firstRow; row <= s.MaxRow(); row++ {
			if s.Cell(row, col).IsText() {
				cols = append(cols, col)
				break
			}
		}
	}
	switch len(cols) {
	case 0:
		return 0, 0
	case 1:
		return cols[0], 0
	}
	return cols[0], cols[1]
}

// newProcess 填充日期、工时、负责人，并处理任务明细或进度
func (b *HierarchyBuilder) newProcess(l Layout, row int, name, identifier string) *model.Process {
	proc := model.NewProcess(name)
	proc.Assignee = l.cell(row, RoleAssignee).String()
	proc.SetDates(b.dateField(l, row, RoleStartDate), b.dateField(l, row, RoleEndDate))
	proc.SetHours(b.hoursField(l, row, RoleEstimatedHours), b.hoursField(l, row, RoleActualHours))

	if identifier != "" && b.taskSheets != nil {
		if sheet, ok := b.taskSheets(identifier); ok {
			b.importTaskSheet(proc, sheet)
			return proc
		}
	}

	if progress, ok := ProgressValue(l.cell(row, RoleProgress)); ok {
		ReconcileProgress(proc, progress)
	} else if v := l.cell(row, RoleProgress); !v.IsEmpty() {
		b.diags.Addf(DiagParseWarning, l.Sheet.Name(), row, "unparsable progress %q", v.String())
	}
	return proc
}

func (b *HierarchyBuilder) dateField(l Layout, row int, role ColumnRole) *time.Time {
	v := l.cell(row, role)
	if v.IsEmpty() {
		return nil
	}
	t, ok := NormalizeDate(v)
	if !ok {
		b.diags.Addf(DiagParseWarning, l.Sheet.Name(), row, "unparsable %s %q", role, v.String())
		return nil
	}
	return &t
}

func (b *HierarchyBuilder) hoursField(l Layout, row int, role ColumnRole) float64 {
	v := l.cell(row, role)
	if v.IsEmpty() {
		return 0
	}
	if _, ok := CoerceNumber(v); !ok {
		b.diags.Addf(DiagParseWarning, l.Sheet.Name(), row, "unparsable %s %q", role, v.String())
	}
	return HoursValue(v)
}

// importTaskSheet 读取明细表 B6:C17 的任务名与状态
func (b *HierarchyBuilder) importTaskSheet(proc *model.Process, s *Sheet) {
	for row := taskSheetFirstRow; row <= taskSheetLastRow; row++ {
		name := s.Cell(row, taskNameCol).String()
		if name == "" {
			continue
		}
		statusCell := s.Cell(row, taskStatusCol)
		status, ok := model.ParseTaskStatus(statusCell.String())
		if !ok && !statusCell.IsEmpty() {
			b.diags.Addf(DiagParseWarning, s.Name(), row, "unknown task status %q", statusCell.String())
		}
		proc.AddTask(model.NewTask(name, status))
	}
}
