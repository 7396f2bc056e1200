package importer

import (
	"strings"
	"unicode/utf8"

	"github.com/NeoKiring/Ichimoku/internal/parser"
)

// NameSource 项目名称来源
type NameSource string

const (
	NameFromTemplateCell NameSource = "template_cell" // 标准模板 B1
	NameFromLabel        NameSource = "label"         // 标签右侧单元格
	NameFromText         NameSource = "text"          // 左上区域第一个较长文本
	NameFromDefault      NameSource = "default"       // 布局默认名
)

const (
	labelScanRows = 10
	labelScanCols = 5
	textScanRows  = 5
	textScanCols  = 5
	minNameRunes  = 4
)

var projectNameLabels = []string{"プロジェクト", "project", "title", "タイトル", "名前"}

// DefaultProjectNames 各布局的占位名称
var DefaultProjectNames = map[parser.FormatVariant]string{
	parser.FormatStandard:     "Excelからインポートしたプロジェクト",
	parser.FormatMSProject:    "MS Projectからインポートしたプロジェクト",
	parser.FormatSimple:       "シンプルフォーマットからインポートしたプロジェクト",
	parser.FormatStandardLike: "スケジュールからインポートしたプロジェクト",
}

// DiscoverProjectName 依次尝试：模板单元格、标签相邻值、较长文本、默认名
// headerRow > 0 时只查看表头以上的行
func DiscoverProjectName(s *parser.Sheet, headerRow int, variant parser.FormatVariant) (string, NameSource) {
	limit := func(n int) int {
		if headerRow > 0 && headerRow-1 < n {
			return headerRow - 1
		}
		return n
	}

	if variant == parser.FormatStandard && headerRow != 1 {
		if v := s.CellAt("B1"); v.IsText() {
			return v.String(), NameFromTemplateCell
		}
	}

	for row := 1; row <= limit(labelScanRows); row++ {
		for col := 1; col <= labelScanCols; col++ {
			v := s.Cell(row, col)
			if !v.IsText() {
				continue
			}
			if !parser.ContainsAny(parser.NormalizeColumnName(v.Text), projectNameLabels) {
				continue
			}
			if name := s.Cell(row, col+1).String(); name != "" {
				return name, NameFromLabel
			}
		}
	}

	for row := 1; row <= limit(textScanRows); row++ {
		for col := 1; col <= textScanCols; col++ {
			v := s.Cell(row, col)
			if v.IsText() && utf8.RuneCountInString(strings.TrimSpace(v.Text)) >= minNameRunes {
				return v.String(), NameFromText
			}
		}
	}

	return DefaultProjectNames[variant], NameFromDefault
}
