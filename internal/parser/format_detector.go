package parser

// 各布局约定的工作表名别名
var (
	standardScheduleSheet = "スケジュール"
	standardInputSheet    = "入力"

	msTaskSheets     = []string{"Tasks", "タスク", "Task List"}
	msResourceSheets = []string{"Resources", "リソース"}

	simpleSheets = []string{"Project", "プロジェクト", "Tasks", "タスク"}

	// 包含即可
	scheduleKeywords = []string{"スケジュール", "計画", "Schedule", "Plan"}
)

// formatRule 按顺序匹配，第一个命中的规则决定布局
type formatRule struct {
	variant FormatVariant
	reason  string
	match   func(names map[string]bool) bool
}

var formatRules = []formatRule{
	{
		variant: FormatStandard,
		reason:  "schedule and input sheets present",
		match: func(names map[string]bool) bool {
			return names[standardScheduleSheet] && names[standardInputSheet]
		},
	},
	{
		variant: FormatMSProject,
		reason:  "tasks and resources sheets present",
		match: func(names map[string]bool) bool {
			return hasAnyName(names, msTaskSheets) && hasAnyName(names, msResourceSheets)
		},
	},
	{
		variant: FormatSimple,
		reason:  "project or tasks sheet present",
		match: func(names map[string]bool) bool {
			return hasAnyName(names, simpleSheets)
		},
	},
	{
		variant: FormatStandardLike,
		reason:  "sheet name mentions schedule or plan",
		match: func(names map[string]bool) bool {
			for name := range names {
				if ContainsAny(name, scheduleKeywords) {
					return true
				}
			}
			return false
		},
	},
}

func hasAnyName(names map[string]bool, aliases []string) bool {
	for _, a := range aliases {
		if names[a] {
			return true
		}
	}
	return false
}

// FormatDetection 识别结果
type FormatDetection struct {
	Variant FormatVariant `json:"variant"`
	Reason  string        `json:"reason"`
}

// FormatDetector 根据工作表名集合判定布局，与顺序无关
type FormatDetector struct{}

// NewFormatDetector 创建识别器
func NewFormatDetector() *FormatDetector {
	return &FormatDetector{}
}

// Detect 判定布局，无法识别时为 simple
func (d *FormatDetector) Detect(sheetNames []string) FormatVariant {
	return d.DetectWithReason(sheetNames).Variant
}

// DetectWithReason 判定布局并给出命中的规则
func (d *FormatDetector) DetectWithReason(sheetNames []string) FormatDetection {
	names := make(map[string]bool, len(sheetNames))
	for _, n := range sheetNames {
		names[n] = true
	}

	for _, rule := range formatRules {
		if rule.match(names) {
			return FormatDetection{Variant: rule.variant, Reason: rule.reason}
		}
	}

	return FormatDetection{Variant: FormatSimple, Reason: "no known sheet names"}
}

// pickSheet 返回第一个存在的别名工作表
func pickSheet(wb *Workbook, aliases []string) string {
	for _, a := range aliases {
		if wb.HasSheet(a) {
			return a
		}
	}
	return ""
}

// pickSheetContaining 返回第一个名称包含关键词的工作表
func pickSheetContaining(wb *Workbook, keywords []string) string {
	for _, name := range wb.SheetNames() {
		if ContainsAny(name, keywords) {
			return name
		}
	}
	return ""
}

// ScheduleSheetFor 各布局的主数据表，找不到时返回空串
func ScheduleSheetFor(wb *Workbook, variant FormatVariant) string {
	switch variant {
	case FormatStandard:
		if wb.HasSheet(standardScheduleSheet) {
			return standardScheduleSheet
		}
		return pickSheetContaining(wb, scheduleKeywords)
	case FormatMSProject:
		return pickSheet(wb, msTaskSheets)
	case FormatSimple:
		return pickSheet(wb, append(append([]string{}, simpleSheets...), "Sheet1", "シート1"))
	case FormatStandardLike:
		return pickSheetContaining(wb, scheduleKeywords)
	}
	return ""
}
