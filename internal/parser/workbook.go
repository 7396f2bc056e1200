package parser

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// ErrSheetNotFound 工作表不存在
var ErrSheetNotFound = errors.New("sheet not found")

// Workbook 只读工作簿，按需加载并缓存工作表
type Workbook struct {
	file   *excelize.File
	names  []string
	sheets map[string]*Sheet
	active string
}

// OpenWorkbook 打开 xlsx/xlsm 文件
func OpenWorkbook(path string) (*Workbook, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook %s: %w", filepath.Base(path), err)
	}
	return NewWorkbook(f), nil
}

// NewWorkbook 包装已打开的 excelize 文件
func NewWorkbook(f *excelize.File) *Workbook {
	w := &Workbook{
		file:   f,
		names:  f.GetSheetList(),
		sheets: make(map[string]*Sheet),
	}
	w.active = f.GetSheetName(f.GetActiveSheetIndex())
	return w
}

// NewMemoryWorkbook 由内存中的工作表构造工作簿，第一个为活动表
func NewMemoryWorkbook(sheets ...*Sheet) *Workbook {
	w := &Workbook{sheets: make(map[string]*Sheet)}
	for _, s := range sheets {
		w.names = append(w.names, s.name)
		w.sheets[s.name] = s
	}
	if len(w.names) > 0 {
		w.active = w.names[0]
	}
	return w
}

// Close 关闭底层文件
func (w *Workbook) Close() error {
	if w.file != nil {
		return w.file.Close()
	}
	return nil
}

// SheetNames 按工作簿顺序返回工作表名
func (w *Workbook) SheetNames() []string {
	out := make([]string, len(w.names))
	copy(out, w.names)
	return out
}

// HasSheet 是否存在同名工作表
func (w *Workbook) HasSheet(name string) bool {
	for _, n := range w.names {
		if n == name {
			return true
		}
	}
	return false
}

// Sheet 返回指定工作表
func (w *Workbook) Sheet(name string) (*Sheet, error) {
	if s, ok := w.sheets[name]; ok {
		return s, nil
	}
	if !w.HasSheet(name) || w.file == nil {
		return nil, fmt.Errorf("%w: %s", ErrSheetNotFound, name)
	}
	s, err := loadSheet(w.file, name)
	if err != nil {
		return nil, err
	}
	w.sheets[name] = s
	return s, nil
}

// ActiveSheet 返回活动工作表，没有时返回第一个
func (w *Workbook) ActiveSheet() (*Sheet, error) {
	name := w.active
	if name == "" || !w.HasSheet(name) {
		if len(w.names) == 0 {
			return nil, fmt.Errorf("%w: workbook has no sheets", ErrSheetNotFound)
		}
		name = w.names[0]
	}
	return w.Sheet(name)
}

// Sheet 二维单元格网格，行列均从 1 开始
type Sheet struct {
	name   string
	rows   [][]CellValue
	maxRow int
	maxCol int
}

// NewSheet 由内存数据构造工作表，rows[0] 为第 1 行
func NewSheet(name string, rows [][]CellValue) *Sheet {
	s := &Sheet{name: name, rows: rows}
	s.measure()
	return s
}

func (s *Sheet) measure() {
	s.maxRow, s.maxCol = 0, 0
	for r, row := range s.rows {
		for c, v := range row {
			if v.IsEmpty() {
				continue
			}
			if r+1 > s.maxRow {
				s.maxRow = r + 1
			}
			if c+1 > s.maxCol {
				s.maxCol = c + 1
			}
		}
	}
}

// Name 工作表名
func (s *Sheet) Name() string { return s.name }

// MaxRow 最后一个非空行
func (s *Sheet) MaxRow() int { return s.maxRow }

// MaxCol 最后一个非空列
func (s *Sheet) MaxCol() int { return s.maxCol }

// Cell 按行列读取，越界返回空值
func (s *Sheet) Cell(row, col int) CellValue {
	if row < 1 || col < 1 || row > len(s.rows) {
		return Empty()
	}
	r := s.rows[row-1]
	if col > len(r) {
		return Empty()
	}
	return r[col-1]
}

// CellAt 按 "B3" 形式的地址读取
func (s *Sheet) CellAt(ref string) CellValue {
	col, row, err := excelize.CellNameToCoordinates(ref)
	if err != nil {
		return Empty()
	}
	return s.Cell(row, col)
}

func loadSheet(f *excelize.File, name string) (*Sheet, error) {
	rows, err := f.GetRows(name, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", name, err)
	}

	formats := make(map[int]numFmtKind)
	cells := make([][]CellValue, len(rows))
	for r, row := range rows {
		vals := make([]CellValue, len(row))
		for c, raw := range row {
			if raw == "" {
				continue
			}
			ref, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				continue
			}
			vals[c] = classifyCell(f, name, ref, raw, formats)
		}
		cells[r] = vals
	}
	return NewSheet(name, cells), nil
}

// classifyCell 根据单元格类型与数字格式归类原始值
func classifyCell(f *excelize.File, sheet, ref, raw string, formats map[int]numFmtKind) CellValue {
	typ, err := f.GetCellType(sheet, ref)
	if err != nil {
		return Text(raw)
	}

	switch typ {
	case excelize.CellTypeBool:
		if raw == "1" || strings.EqualFold(raw, "true") {
			return Text("TRUE")
		}
		return Text("FALSE")
	case excelize.CellTypeDate:
		for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02"} {
			if t, err := time.Parse(layout, raw); err == nil {
				return Date(t)
			}
		}
		return Text(raw)
	case excelize.CellTypeError, excelize.CellTypeSharedString, excelize.CellTypeInlineString, excelize.CellTypeFormula:
		return Text(raw)
	}

	num, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return Text(raw)
	}

	switch cellNumFmt(f, sheet, ref, formats) {
	case numFmtDate:
		if t, err := excelize.ExcelDateToTime(num, false); err == nil {
			return Date(t)
		}
	case numFmtPercent:
		return Percent(num)
	}
	return Number(num)
}

type numFmtKind int

const (
	numFmtGeneral numFmtKind = iota
	numFmtDate
	numFmtPercent
)

func cellNumFmt(f *excelize.File, sheet, ref string, cache map[int]numFmtKind) numFmtKind {
	idx, err := f.GetCellStyle(sheet, ref)
	if err != nil || idx == 0 {
		return numFmtGeneral
	}
	if k, ok := cache[idx]; ok {
		return k
	}

	kind := numFmtGeneral
	if style, err := f.GetStyle(idx); err == nil && style != nil {
		if style.CustomNumFmt != nil {
			kind = classifyNumFmtCode(*style.CustomNumFmt)
		} else {
			kind = classifyNumFmtID(style.NumFmt)
		}
	}
	cache[idx] = kind
	return kind
}

// classifyNumFmtID 内置数字格式编号
func classifyNumFmtID(id int) numFmtKind {
	switch {
	case id == 9 || id == 10:
		return numFmtPercent
	case id >= 14 && id <= 22, id >= 27 && id <= 36, id >= 45 && id <= 47, id >= 50 && id <= 58:
		return numFmtDate
	}
	return numFmtGeneral
}

// classifyNumFmtCode 自定义格式串，忽略引号内文本与方括号段
func classifyNumFmtCode(code string) numFmtKind {
	var b strings.Builder
	inQuote, inBracket, escaped := false, false, false
	for _, r := range strings.ToLower(code) {
		switch {
		case escaped:
			escaped = false
		case r == '\\':
			escaped = true
		case r == '"':
			inQuote = !inQuote
		case inQuote:
		case r == '[':
			inBracket = true
		case r == ']':
			inBracket = false
		case inBracket:
		default:
			b.WriteRune(r)
		}
	}
	plain := b.String()
	if plain == "general" {
		return numFmtGeneral
	}
	if strings.ContainsAny(plain, "yd") || (strings.Contains(plain, "h") && strings.ContainsAny(plain, "ms")) {
		return numFmtDate
	}
	if strings.Contains(plain, "%") {
		return numFmtPercent
	}
	return numFmtGeneral
}
