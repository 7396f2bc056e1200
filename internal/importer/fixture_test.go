package importer

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/NeoKiring/Ichimoku/internal/logging"
	"github.com/NeoKiring/Ichimoku/internal/parser"
)

type fixtureSheet struct {
	name string
	rows [][]any
}

// writeWorkbook 写出测试工作簿，nil 单元格留空
func writeWorkbook(t *testing.T, path string, sheets ...fixtureSheet) {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	for i, s := range sheets {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", s.name); err != nil {
				t.Fatalf("rename sheet: %v", err)
			}
		} else if _, err := f.NewSheet(s.name); err != nil {
			t.Fatalf("new sheet %s: %v", s.name, err)
		}
		for r, row := range s.rows {
			for c, v := range row {
				if v == nil {
					continue
				}
				cell, err := excelize.CoordinatesToCellName(c+1, r+1)
				if err != nil {
					t.Fatalf("cell name: %v", err)
				}
				if err := f.SetCellValue(s.name, cell, v); err != nil {
					t.Fatalf("set %s!%s: %v", s.name, cell, err)
				}
			}
		}
	}

	if err := f.SaveAs(path); err != nil {
		t.Fatalf("save %s: %v", filepath.Base(path), err)
	}
}

func newTestPipeline() *Pipeline {
	return NewPipeline(logging.Discard())
}

// memSheet 内存工作表：string 为文本，数字为数值，nil 为空
func memSheet(name string, rows ...[]any) *parser.Sheet {
	cells := make([][]parser.CellValue, len(rows))
	for r, row := range rows {
		cells[r] = make([]parser.CellValue, len(row))
		for c, v := range row {
			switch x := v.(type) {
			case nil:
			case parser.CellValue:
				cells[r][c] = x
			case string:
				cells[r][c] = parser.Text(x)
			case int:
				cells[r][c] = parser.Number(float64(x))
			case float64:
				cells[r][c] = parser.Number(x)
			default:
				panic(fmt.Sprintf("unsupported fixture value %T", v))
			}
		}
	}
	return parser.NewSheet(name, cells)
}
