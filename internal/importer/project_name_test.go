package importer

import (
	"testing"

	"github.com/NeoKiring/Ichimoku/internal/parser"
)

func TestDiscoverProjectName(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name      string
		sheet     *parser.Sheet
		headerRow int
		variant   parser.FormatVariant
		want      string
		source    NameSource
	}{
		{
			name:      "template cell",
			sheet:     memSheet("スケジュール", []any{nil, "基幹刷新"}, []any{"ID", "タスク名"}),
			headerRow: 2,
			variant:   parser.FormatStandard,
			want:      "基幹刷新",
			source:    NameFromTemplateCell,
		},
		{
			name:      "label adjacent value",
			sheet:     memSheet("Plan", []any{"Project Title:", "Mobile App"}, []any{}, []any{"Task", "Start", "End"}),
			headerRow: 3,
			variant:   parser.FormatStandardLike,
			want:      "Mobile App",
			source:    NameFromLabel,
		},
		{
			name:      "first long text",
			sheet:     memSheet("Sheet1", []any{"v1", "社内ポータル構築"}, []any{"Task", "Start", "End"}),
			headerRow: 2,
			variant:   parser.FormatSimple,
			want:      "社内ポータル構築",
			source:    NameFromText,
		},
		{
			name:      "header on first row",
			sheet:     memSheet("Sheet1", []any{"Task Name", "Start", "Finish"}),
			headerRow: 1,
			variant:   parser.FormatSimple,
			want:      DefaultProjectNames[parser.FormatSimple],
			source:    NameFromDefault,
		},
		{
			name:      "rows below header ignored",
			sheet:     memSheet("Tasks", []any{"Task Name", "Start", "Finish"}, []any{"プロジェクト", "偽の名前"}),
			headerRow: 1,
			variant:   parser.FormatMSProject,
			want:      DefaultProjectNames[parser.FormatMSProject],
			source:    NameFromDefault,
		},
	}

	for _, c := range cases {
		got, src := DiscoverProjectName(c.sheet, c.headerRow, c.variant)
		if got != c.want || src != c.source {
			t.Fatalf("%s: got %q (%s) want %q (%s)", c.name, got, src, c.want, c.source)
		}
	}
}
