package parser

import (
	"fmt"
	"strings"
)

// FormatVariant 工作簿布局约定
type FormatVariant string

const (
	FormatStandard     FormatVariant = "standard"
	FormatMSProject    FormatVariant = "ms_project"
	FormatSimple       FormatVariant = "simple"
	FormatStandardLike FormatVariant = "standard_like"
	// FormatAuto 仅用于调用方选择，表示交给 FormatDetector 判定
	FormatAuto FormatVariant = "auto"
)

// ParseFormatSelector 解析调用方传入的格式选择
// standard_like 只能由自动识别得出，不接受显式指定
func ParseFormatSelector(s string) (FormatVariant, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return FormatAuto, nil
	case "standard":
		return FormatStandard, nil
	case "ms_project", "msproject", "ms-project":
		return FormatMSProject, nil
	case "simple":
		return FormatSimple, nil
	default:
		return "", fmt.Errorf("unsupported format %q (auto|standard|ms_project|simple)", s)
	}
}

// ColumnRole 列语义
type ColumnRole int

const (
	RoleIdentifier ColumnRole = iota
	RoleName
	RoleAssignee
	RoleProgress
	RoleStartDate
	RoleEndDate
	RoleEstimatedHours
	RoleActualHours
)

func (r ColumnRole) String() string {
	switch r {
	case RoleIdentifier:
		return "identifier"
	case RoleName:
		return "name"
	case RoleAssignee:
		return "assignee"
	case RoleProgress:
		return "progress"
	case RoleStartDate:
		return "start_date"
	case RoleEndDate:
		return "end_date"
	case RoleEstimatedHours:
		return "estimated_hours"
	case RoleActualHours:
		return "actual_hours"
	}
	return fmt.Sprintf("role(%d)", int(r))
}

// RoleMap 列索引与语义的双向映射，每个语义至多对应一列
type RoleMap struct {
	byColumn map[int]ColumnRole
	byRole   map[ColumnRole]int
}

// NewRoleMap 创建空映射
func NewRoleMap() *RoleMap {
	return &RoleMap{
		byColumn: make(map[int]ColumnRole),
		byRole:   make(map[ColumnRole]int),
	}
}

// assign 已占用的语义不会被覆盖
func (m *RoleMap) assign(col int, role ColumnRole) bool {
	if _, taken := m.byRole[role]; taken {
		return false
	}
	if _, taken := m.byColumn[col]; taken {
		return false
	}
	m.byColumn[col] = role
	m.byRole[role] = col
	return true
}

// Column 返回语义对应的列号（1 起）
func (m *RoleMap) Column(role ColumnRole) (int, bool) {
	if m == nil {
		return 0, false
	}
	col, ok := m.byRole[role]
	return col, ok
}

// Role 返回列号对应的语义
func (m *RoleMap) Role(col int) (ColumnRole, bool) {
	if m == nil {
		return 0, false
	}
	role, ok := m.byColumn[col]
	return role, ok
}

// Has 是否映射了该语义
func (m *RoleMap) Has(role ColumnRole) bool {
	_, ok := m.Column(role)
	return ok
}

// Len 已映射列数
func (m *RoleMap) Len() int {
	if m == nil {
		return 0
	}
	return len(m.byColumn)
}

// DiagnosticKind 诊断类别
type DiagnosticKind string

const (
	DiagHeaderNotFound   DiagnosticKind = "header_not_found"
	DiagParseWarning     DiagnosticKind = "parse_warning"
	DiagStructureWarning DiagnosticKind = "structure_warning"
	DiagOrphanProcess    DiagnosticKind = "orphan_process"
)

// Diagnostic 导入过程中可恢复的内容异常
type Diagnostic struct {
	Kind    DiagnosticKind `json:"kind" yaml:"kind"`
	Sheet   string         `json:"sheet,omitempty" yaml:"sheet,omitempty"`
	Row     int            `json:"row,omitempty" yaml:"row,omitempty"`
	Message string         `json:"message" yaml:"message"`
}

func (d Diagnostic) String() string {
	if d.Row > 0 {
		return fmt.Sprintf("[%s] %s!%d: %s", d.Kind, d.Sheet, d.Row, d.Message)
	}
	if d.Sheet != "" {
		return fmt.Sprintf("[%s] %s: %s", d.Kind, d.Sheet, d.Message)
	}
	return fmt.Sprintf("[%s] %s", d.Kind, d.Message)
}

// Diagnostics 诊断收集器
type Diagnostics struct {
	items []Diagnostic
}

// Addf 追加一条诊断
func (d *Diagnostics) Addf(kind DiagnosticKind, sheet string, row int, format string, args ...any) {
	d.items = append(d.items, Diagnostic{
		Kind:    kind,
		Sheet:   sheet,
		Row:     row,
		Message: fmt.Sprintf(format, args...),
	})
}

// Items 返回全部诊断
func (d *Diagnostics) Items() []Diagnostic {
	if d == nil {
		return nil
	}
	return d.items
}

// Count 统计某类诊断数量
func (d *Diagnostics) Count(kind DiagnosticKind) int {
	n := 0
	for _, it := range d.Items() {
		if it.Kind == kind {
			n++
		}
	}
	return n
}
