package parser

import (
	"fmt"
	"testing"
)

// grid 由字面量构造工作表：string 为文本，数字为数值，nil 为空
func grid(name string, rows ...[]any) *Sheet {
	cells := make([][]CellValue, len(rows))
	for r, row := range rows {
		cells[r] = make([]CellValue, len(row))
		for c, v := range row {
			switch x := v.(type) {
			case nil:
			case CellValue:
				cells[r][c] = x
			case string:
				cells[r][c] = Text(x)
			case int:
				cells[r][c] = Number(float64(x))
			case float64:
				cells[r][c] = Number(x)
			default:
				panic(fmt.Sprintf("unsupported fixture value %T", v))
			}
		}
	}
	return NewSheet(name, cells)
}

func TestFindHeaderRow(t *testing.T) {
	t.Parallel()

	s := grid("Schedule",
		[]any{"プロジェクト名", "新基幹システム"},
		[]any{},
		[]any{"ID", "タスク名", "担当者", "開始日", "終了日", "進捗率"},
		[]any{"A", "要件定義"},
	)
	row, ok := NewColumnRoleMapper().FindHeaderRow(s)
	if !ok || row != 3 {
		t.Fatalf("header row: %d %v", row, ok)
	}
}

func TestFindHeaderRow_RepeatedKeywordCountsOnce(t *testing.T) {
	t.Parallel()

	s := grid("Sheet1",
		[]any{"task", "task", "task", "memo"},
		[]any{"Task Name", "Start", "Finish"},
	)
	row, ok := NewColumnRoleMapper().FindHeaderRow(s)
	if !ok || row != 2 {
		t.Fatalf("header row: %d %v", row, ok)
	}
}

func TestFindHeaderRow_NotFound(t *testing.T) {
	t.Parallel()

	s := grid("Sheet1",
		[]any{"メモ", "備考"},
		[]any{"要件定義", "画面設計"},
	)
	if _, ok := NewColumnRoleMapper().FindHeaderRow(s); ok {
		t.Fatalf("unexpected header")
	}
}

func TestMatchRole(t *testing.T) {
	t.Parallel()

	cases := []struct {
		header string
		role   ColumnRole
		ok     bool
	}{
		{"ID", RoleIdentifier, true},
		{"No.", RoleIdentifier, true},
		{"WBS", RoleIdentifier, true},
		{"タスク名", RoleName, true},
		{"Task Name", RoleName, true},
		{"担当者", RoleAssignee, true},
		{"Resource Names", RoleAssignee, true},
		{"開始日", RoleStartDate, true},
		{"Finish", RoleEndDate, true},
		{"完了日", RoleEndDate, true},
		{"進捗率", RoleProgress, true},
		{"% Complete", RoleProgress, true},
		{"予定工数", RoleEstimatedHours, true},
		{"実工数", RoleActualHours, true},
		{"Notes", 0, false},
		{"Valid", 0, false},
		{"備考", 0, false},
	}
	for _, c := range cases {
		role, ok := MatchRole(c.header)
		if ok != c.ok || (ok && role != c.role) {
			t.Fatalf("%q: got %s,%v want %s,%v", c.header, role, ok, c.role, c.ok)
		}
	}
}

func TestMapRoles_FirstColumnWins(t *testing.T) {
	t.Parallel()

	s := grid("Sheet1",
		[]any{"タスク", "作業内容", "担当", "開始", "終了"},
	)
	roles := NewColumnRoleMapper().MapRoles(s, 1)
	if col, ok := roles.Column(RoleName); !ok || col != 1 {
		t.Fatalf("name column: %d %v", col, ok)
	}
	if _, ok := roles.Role(2); ok {
		t.Fatalf("second name column must stay unmapped")
	}
	if roles.Len() != 4 {
		t.Fatalf("mapped columns: %d", roles.Len())
	}
}

func TestFindLevelColumn(t *testing.T) {
	t.Parallel()

	s := grid("Tasks",
		[]any{"Outline Level", "Task Name", "Start", "Finish"},
	)
	m := NewColumnRoleMapper()
	if col := m.FindLevelColumn(s, 1, FormatMSProject); col != 1 {
		t.Fatalf("level column: %d", col)
	}

	withID := grid("計画",
		[]any{"ID", "タスク名", "開始", "終了"},
	)
	if col := m.FindLevelColumn(withID, 1, FormatStandard); col != 0 {
		t.Fatalf("id is not a level column for standard: %d", col)
	}
	if col := m.FindLevelColumn(withID, 1, FormatStandardLike); col != 1 {
		t.Fatalf("id is a level column for standard_like: %d", col)
	}
}

func TestLegacyStandardLayout(t *testing.T) {
	t.Parallel()

	l := LegacyStandardLayout(grid("スケジュール"))
	if l.FirstRow != 8 {
		t.Fatalf("first row: %d", l.FirstRow)
	}
	if col, _ := l.Roles.Column(RoleIdentifier); col != 2 {
		t.Fatalf("identifier column: %d", col)
	}
	if col, _ := l.Roles.Column(RoleName); col != 3 {
		t.Fatalf("name column: %d", col)
	}
	if l.Roles.Has(RoleProgress) {
		t.Fatalf("legacy layout has no progress column")
	}
}

func TestAnalyze_OutlineColumn(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		sheet   *Sheet
		variant FormatVariant
		want    bool
	}{
		{"wbs header", grid("計画",
			[]any{"WBS", "タスク名", "開始", "終了"},
			[]any{"1", "企画"},
		), FormatStandardLike, true},
		{"outline level is a numeric level", grid("Tasks",
			[]any{"Outline Level", "Task Name", "Start", "Finish"},
			[]any{1, "Phase"},
			[]any{2, "Design"},
		), FormatMSProject, false},
		{"dotted numbers in a level column", grid("Tasks",
			[]any{"階層", "Task Name", "Start", "Finish"},
			[]any{"1", "Phase"},
			[]any{"1.1", "Design"},
		), FormatMSProject, true},
		{"no level column", grid("Tasks",
			[]any{"Task Name", "Start", "Finish"},
		), FormatSimple, false},
	}
	m := NewColumnRoleMapper()
	for _, tc := range cases {
		info := m.Analyze(tc.sheet, tc.variant)
		if !info.Found() {
			t.Fatalf("%s: header not found", tc.name)
		}
		if info.Outline != tc.want {
			t.Fatalf("%s: outline=%v want %v", tc.name, info.Outline, tc.want)
		}
		if info.Layout(tc.sheet).OutlineLevel != tc.want {
			t.Fatalf("%s: layout does not carry outline flag", tc.name)
		}
	}
}
