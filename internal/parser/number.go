package parser

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// numericText 数字与至多一个小数点
var numericText = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)$`)

// CoerceNumber 数值直接返回；数字文本（去除千分位）解析后返回
func CoerceNumber(v CellValue) (float64, bool) {
	switch v.Kind {
	case CellNumber:
		if math.IsNaN(v.Number) || math.IsInf(v.Number, 0) {
			return 0, false
		}
		return v.Number, true
	case CellText:
		return parseNumericText(v.Text)
	}
	return 0, false
}

func parseNumericText(s string) (float64, bool) {
	s = NormalizeText(s)
	s = strings.ReplaceAll(s, ",", "")
	if !numericText.MatchString(s) {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// HoursValue 工时：无法解析或缺失时为 0，负数截断为 0
func HoursValue(v CellValue) float64 {
	f, ok := CoerceNumber(v)
	if !ok || f < 0 {
		return 0
	}
	return f
}

// ProgressValue 进度百分比（0-100 口径）
// 百分比格式的数值乘以 100；文本允许 % 或 ％ 后缀
func ProgressValue(v CellValue) (float64, bool) {
	switch v.Kind {
	case CellNumber:
		f, ok := CoerceNumber(v)
		if !ok {
			return 0, false
		}
		if v.Percent {
			f *= 100
		}
		return f, true
	case CellText:
		s := strings.TrimSuffix(NormalizeText(v.Text), "%")
		return parseNumericText(s)
	}
	return 0, false
}
