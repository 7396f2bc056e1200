package parser

const (
	headerScanRows  = 20
	headerScanCols  = 15
	headerThreshold = 3
	roleScanCols    = 20
	levelScanCols   = 9
)

// headerKeywords 表头行识别关键词（已小写）
var headerKeywords = []string{
	"名前", "タスク", "開始", "終了", "担当", "進捗",
	"task", "name", "start", "end", "finish", "resource", "progress",
}

// roleAliases 语义别名表，按优先级排列
// 一个表头命中多个语义时取靠前者，例如 "実工数" 归为实际工时而非预估工时
var roleAliases = []struct {
	role    ColumnRole
	aliases []string
}{
	{RoleIdentifier, []string{"id", "番号", "no", "no.", "wbs", "code", "コード"}},
	{RoleAssignee, []string{"assignee", "担当", "担当者", "resource", "リソース", "責任者", "担当部署", "owner"}},
	{RoleStartDate, []string{"start", "開始", "開始日", "着手", "着手日", "begin"}},
	{RoleEndDate, []string{"end", "finish", "終了", "終了日", "期日", "期限", "納期", "完了日", "deadline", "due"}},
	{RoleActualHours, []string{"actual", "実績", "実工数", "実時間", "実作業時間"}},
	{RoleEstimatedHours, []string{"estimate", "予想", "見積", "工数", "計画時間", "予定時間"}},
	{RoleProgress, []string{"progress", "進捗", "進捗率", "%", "completion", "complete", "完了", "達成率"}},
	{RoleName, []string{"name", "名前", "名称", "タスク", "task", "作業", "項目", "内容", "title", "件名"}},
}

// levelKeywords 层级列关键词
var levelKeywords = []string{"level", "wbs", "階層", "インデント", "レベル", "outline"}

// outlineKeywords 表示 WBS 大纲编号的层级列；"Outline Level" 是层级数值，不在其中
var outlineKeywords = []string{"wbs", "outline number", "outline no", "アウトライン番号"}

// HeaderInfo 表头分析结果
type HeaderInfo struct {
	Row         int            // 表头所在行，0 表示未找到
	Roles       *RoleMap       // 列语义
	LevelColumn int            // 层级列，0 表示没有
	Outline     bool           // 层级列是 WBS 大纲编号
	Headers     map[int]string // 列号 -> 规范化后的表头文本
}

// Found 是否找到表头
func (h HeaderInfo) Found() bool { return h.Row > 0 }

// Layout 表头下方的数据区域
func (h HeaderInfo) Layout(s *Sheet) Layout {
	return Layout{Sheet: s, FirstRow: h.Row + 1, Roles: h.Roles, LevelColumn: h.LevelColumn, OutlineLevel: h.Outline}
}

// ColumnRoleMapper 表头定位与列语义映射
type ColumnRoleMapper struct{}

// NewColumnRoleMapper 创建映射器
func NewColumnRoleMapper() *ColumnRoleMapper {
	return &ColumnRoleMapper{}
}

// Analyze 定位表头并映射列语义
func (m *ColumnRoleMapper) Analyze(s *Sheet, variant FormatVariant) HeaderInfo {
	row, ok := m.FindHeaderRow(s)
	if !ok {
		return HeaderInfo{Roles: NewRoleMap()}
	}
	info := HeaderInfo{
		Row:         row,
		Roles:       m.MapRoles(s, row),
		LevelColumn: m.FindLevelColumn(s, row, variant),
		Headers:     headerTexts(s, row, roleScanCols),
	}
	info.Outline = isOutlineColumn(s, row, info.LevelColumn, info.Roles)
	return info
}

// isOutlineColumn 层级列表头为 WBS 或大纲编号、兼作标识列，或数据中出现 "1.2" 形式的编号
func isOutlineColumn(s *Sheet, headerRow, col int, roles *RoleMap) bool {
	if col == 0 {
		return false
	}
	if v := s.Cell(headerRow, col); v.IsText() {
		if _, ok := firstKeyword(NormalizeColumnName(v.Text), outlineKeywords); ok {
			return true
		}
	}
	if idCol, ok := roles.Column(RoleIdentifier); ok && idCol == col {
		return true
	}
	for row := headerRow + 1; row <= s.MaxRow(); row++ {
		if v := s.Cell(row, col); v.IsText() {
			if _, ok := outlineDepth(v.Text); ok {
				return true
			}
		}
	}
	return false
}

// FindHeaderRow 前 20 行中第一个命中 3 个不同关键词的行
func (m *ColumnRoleMapper) FindHeaderRow(s *Sheet) (int, bool) {
	for row := 1; row <= headerScanRows && row <= s.MaxRow(); row++ {
		hits := make(map[string]bool)
		for col := 1; col <= headerScanCols; col++ {
			v := s.Cell(row, col)
			if !v.IsText() {
				continue
			}
			if kw, ok := firstKeyword(NormalizeColumnName(v.Text), headerKeywords); ok {
				hits[kw] = true
			}
		}
		if len(hits) >= headerThreshold {
			return row, true
		}
	}
	return 0, false
}

// MapRoles 为表头行前 20 列分配语义，已占用的语义不会被后面的列覆盖
func (m *ColumnRoleMapper) MapRoles(s *Sheet, headerRow int) *RoleMap {
	roles := NewRoleMap()
	for col := 1; col <= roleScanCols; col++ {
		v := s.Cell(headerRow, col)
		if v.IsEmpty() {
			continue
		}
		if role, ok := MatchRole(v.String()); ok {
			roles.assign(col, role)
		}
	}
	return roles
}

// MatchRole 按别名表匹配单个表头
func MatchRole(header string) (ColumnRole, bool) {
	h := NormalizeColumnName(header)
	if h == "" {
		return 0, false
	}
	for _, entry := range roleAliases {
		if _, ok := firstKeyword(h, entry.aliases); ok {
			return entry.role, true
		}
	}
	return 0, false
}

// FindLevelColumn 层级列只在前 9 列中查找
func (m *ColumnRoleMapper) FindLevelColumn(s *Sheet, headerRow int, variant FormatVariant) int {
	keywords := levelKeywords
	if variant == FormatStandardLike {
		keywords = append(append([]string{}, levelKeywords...), "id")
	}
	for col := 1; col <= levelScanCols; col++ {
		v := s.Cell(headerRow, col)
		if !v.IsText() {
			continue
		}
		if _, ok := firstKeyword(NormalizeColumnName(v.Text), keywords); ok {
			return col
		}
	}
	return 0
}

func firstKeyword(text string, keywords []string) (string, bool) {
	for _, kw := range keywords {
		if containsKeyword(text, kw) {
			return kw, true
		}
	}
	return "", false
}

func headerTexts(s *Sheet, row, maxCol int) map[int]string {
	out := make(map[int]string)
	for col := 1; col <= maxCol; col++ {
		if v := s.Cell(row, col); !v.IsEmpty() {
			out[col] = NormalizeColumnName(v.String())
		}
	}
	return out
}

// 旧版标准模板「スケジュール」表的固定列：B 标识 C 名称 D 负责人 F 开始 G 结束 H 预估 I 实际，数据自第 8 行起
const legacyFirstDataRow = 8

var legacyColumns = map[ColumnRole]int{
	RoleIdentifier:     2,
	RoleName:           3,
	RoleAssignee:       4,
	RoleStartDate:      6,
	RoleEndDate:        7,
	RoleEstimatedHours: 8,
	RoleActualHours:    9,
}

// LegacyStandardLayout 找不到表头时使用的固定布局
func LegacyStandardLayout(s *Sheet) Layout {
	roles := NewRoleMap()
	for role, col := range legacyColumns {
		roles.assign(col, role)
	}
	return Layout{Sheet: s, FirstRow: legacyFirstDataRow, Roles: roles}
}

// HasIndentedNames 名称列中是否存在缩进到工序层级（>= 2）的行
func HasIndentedNames(l Layout) bool {
	col, ok := l.Roles.Column(RoleName)
	if !ok {
		return false
	}
	for row := l.FirstRow; row <= l.Sheet.MaxRow(); row++ {
		if v := l.Sheet.Cell(row, col); v.IsText() && indentLevel(v.Text) >= 2 {
			return true
		}
	}
	return false
}

// HasPhaseIdentifiers 标识列中是否存在纯字母的阶段标识
// "1.2" 这类大纲编号的标识列应按层级处理
func HasPhaseIdentifiers(l Layout) bool {
	col, ok := l.Roles.Column(RoleIdentifier)
	if !ok {
		return false
	}
	for row := l.FirstRow; row <= l.Sheet.MaxRow(); row++ {
		if isLettersOnly(NormalizeText(l.Sheet.Cell(row, col).String())) {
			return true
		}
	}
	return false
}
