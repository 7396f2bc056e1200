package parser

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/NeoKiring/Ichimoku/internal/model"
)

var (
	outlineNumber = regexp.MustCompile(`^\d+(\.\d+)+$`)
	wbsCode       = regexp.MustCompile(`^\d+(\.\d+)*$`)
)

// ReconcileProgress 用合成任务表达导入的百分比
// p > 0 追加已完成任务，p < 100 追加未开始任务；介于两者之间的值只能近似为 50%
func ReconcileProgress(proc *model.Process, progress float64) {
	if progress > 0 {
		proc.AddTask(model.NewTask(proc.Name+CompletedPortionSuffix, model.TaskCompleted))
	}
	if progress < 100 {
		proc.AddTask(model.NewTask(proc.Name+RemainingPortionSuffix, model.TaskNotStarted))
	}
}

// outlineDepth 大纲编号 "1.2.3" 的段数
func outlineDepth(s string) (int, bool) {
	s = NormalizeText(s)
	if !outlineNumber.MatchString(s) {
		return 0, false
	}
	return strings.Count(s, ".") + 1, true
}

// wbsDepth WBS 编号的段数，"2" 为 1 级，"2.1" 为 2 级
func wbsDepth(v CellValue) (int, bool) {
	var s string
	switch v.Kind {
	case CellNumber:
		if v.Number < 0 {
			return 0, false
		}
		// 数值单元格中 "1.1" 以 1.1 保存
		s = strconv.FormatFloat(v.Number, 'f', -1, 64)
	case CellText:
		s = NormalizeText(v.Text)
	default:
		return 0, false
	}
	if !wbsCode.MatchString(s) {
		return 0, false
	}
	return strings.Count(s, ".") + 1, true
}
