package parser

import (
	"math"
	"regexp"
	"strconv"
	"time"
)

// serialEpoch 序列日期起点，沿用表格软件 1900 闰年约定
var serialEpoch = time.Date(1899, 12, 30, 0, 0, 0, 0, time.UTC)

// maxSerial 9999-12-31
const maxSerial = 2958465

// DateLayouts 文本日期按顺序尝试，先匹配者胜出
var DateLayouts = []string{
	"2006/1/2",
	"2006-1-2",
	"2006年1月2日",
	"2006/1/2 15:04",
	"2006/1/2 15:04:05",
	"2006-1-2 15:04",
	"2006-1-2 15:04:05",
	"2006年1月2日 15:04",
	"2006年1月2日 15:04:05",
	"2006-01-02T15:04:05",
	"1/2/2006",
	"2/1/2006",
	"1-2-2006",
	"2-1-2006",
	"Jan 2, 2006",
	"2 Jan 2006",
	"January 2, 2006",
	"2 January 2006",
}

var (
	dotTriple = regexp.MustCompile(`^(\d{4})\.(\d{1,2})\.(\d{1,2})$`)
	eraDate   = regexp.MustCompile(`^(令和|平成|昭和|R|H|S)\s*(元|\d{1,2})\s*[年.]\s*(\d{1,2})\s*[月.]\s*(\d{1,2})\s*日?$`)
)

// eraOffsets 和历元年对应的公历年减一
var eraOffsets = map[string]int{
	"令和": 2018, "R": 2018,
	"平成": 1988, "H": 1988,
	"昭和": 1925, "S": 1925,
}

// NormalizeDate 将单元格值转换为日期，无法识别时返回 false
func NormalizeDate(v CellValue) (time.Time, bool) {
	switch v.Kind {
	case CellDate:
		return v.Date, true
	case CellNumber:
		return SerialToDate(v.Number)
	case CellText:
		return ParseDateText(v.Text)
	}
	return time.Time{}, false
}

// ParseDateText 解析文本日期
func ParseDateText(s string) (time.Time, bool) {
	s = spaceRun.ReplaceAllString(NormalizeText(s), " ")
	if s == "" {
		return time.Time{}, false
	}

	for _, layout := range DateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}

	if m := eraDate.FindStringSubmatch(s); m != nil {
		year := 1
		if m[2] != "元" {
			year, _ = strconv.Atoi(m[2])
		}
		return civilDate(eraOffsets[m[1]]+year, m[3], m[4])
	}

	if m := dotTriple.FindStringSubmatch(s); m != nil {
		year, _ := strconv.Atoi(m[1])
		return civilDate(year, m[2], m[3])
	}

	return time.Time{}, false
}

// civilDate 校验月日合法，拒绝 2 月 30 日这类溢出
func civilDate(year int, month, day string) (time.Time, bool) {
	mo, err1 := strconv.Atoi(month)
	d, err2 := strconv.Atoi(day)
	if err1 != nil || err2 != nil || mo < 1 || mo > 12 || d < 1 {
		return time.Time{}, false
	}
	t := time.Date(year, time.Month(mo), d, 0, 0, 0, 0, time.UTC)
	if t.Month() != time.Month(mo) || t.Day() != d {
		return time.Time{}, false
	}
	return t, true
}

// SerialToDate 序列日期：1899-12-30 加上 floor(v) 天
func SerialToDate(v float64) (time.Time, bool) {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 || v > maxSerial {
		return time.Time{}, false
	}
	return serialEpoch.AddDate(0, 0, int(math.Floor(v))), true
}

// DateToSerial SerialToDate 的逆运算，仅保留日期部分
func DateToSerial(t time.Time) float64 {
	d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return float64((d.Unix() - serialEpoch.Unix()) / 86400)
}

// FormatDate 统一输出格式
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}
