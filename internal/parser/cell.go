package parser

import (
	"strconv"
	"strings"
	"time"
)

// CellKind 单元格值类型
type CellKind int

const (
	CellEmpty CellKind = iota
	CellText
	CellNumber
	CellDate
)

func (k CellKind) String() string {
	switch k {
	case CellText:
		return "text"
	case CellNumber:
		return "number"
	case CellDate:
		return "date"
	}
	return "empty"
}

// CellValue 读取后立即分类的单元格值
type CellValue struct {
	Kind   CellKind
	Text   string    // 原始文本，保留前导缩进
	Number float64
	Date   time.Time
	// Percent 数字格式为百分比（0.5 显示为 50%）
	Percent bool
}

// Empty 空单元格
func Empty() CellValue { return CellValue{} }

// Text 文本单元格，仅含空白时视为空
func Text(s string) CellValue {
	if strings.TrimSpace(s) == "" {
		return CellValue{}
	}
	return CellValue{Kind: CellText, Text: s}
}

// Number 数值单元格
func Number(f float64) CellValue {
	return CellValue{Kind: CellNumber, Number: f}
}

// Percent 百分比格式的数值单元格
func Percent(f float64) CellValue {
	return CellValue{Kind: CellNumber, Number: f, Percent: true}
}

// Date 日期单元格
func Date(t time.Time) CellValue {
	return CellValue{Kind: CellDate, Date: t}
}

// IsEmpty 是否为空
func (v CellValue) IsEmpty() bool { return v.Kind == CellEmpty }

// IsText 是否为非空文本
func (v CellValue) IsText() bool { return v.Kind == CellText }

// String 显示文本（已去除首尾空白）
func (v CellValue) String() string {
	switch v.Kind {
	case CellText:
		return strings.TrimSpace(v.Text)
	case CellNumber:
		return strconv.FormatFloat(v.Number, 'f', -1, 64)
	case CellDate:
		if h, m, s := v.Date.Clock(); h != 0 || m != 0 || s != 0 {
			return v.Date.Format("2006-01-02 15:04:05")
		}
		return v.Date.Format("2006-01-02")
	}
	return ""
}
