package parser

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/width"
)

var spaceRun = regexp.MustCompile(`\s+`)

// NormalizeText 全角转半角并去除首尾空白
// 例: "　ＩＤ　" -> "ID", "５０％" -> "50%"
func NormalizeText(s string) string {
	return strings.TrimSpace(width.Fold.String(s))
}

// NormalizeColumnName 规范化列名：全角转半角、小写、去除换行并压缩空白
func NormalizeColumnName(name string) string {
	name = NormalizeText(name)
	name = strings.ReplaceAll(name, "\r", " ")
	name = strings.ReplaceAll(name, "\n", " ")
	name = spaceRun.ReplaceAllString(name, " ")
	return strings.ToLower(name)
}

// ContainsAny 检查字符串是否包含任意一个关键词
func ContainsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

// containsKeyword 关键词匹配
// 不超过 3 个字符的 ASCII 关键词必须匹配完整词元，避免 "notes" 命中 "no"
func containsKeyword(text, kw string) bool {
	if !isShortASCII(kw) {
		return strings.Contains(text, kw)
	}
	for _, tok := range tokenize(text) {
		if tok == kw {
			return true
		}
	}
	return false
}

func isShortASCII(kw string) bool {
	if len([]rune(kw)) > 3 {
		return false
	}
	for _, r := range kw {
		if r > unicode.MaxASCII || !(unicode.IsLetter(r) || r == '.') {
			return false
		}
	}
	return true
}

// tokenize 按非字母数字切分，保留 "no." 这类带点的缩写
func tokenize(text string) []string {
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return !(unicode.IsLetter(r) || unicode.IsDigit(r) || r == '.')
	})
	out := make([]string, 0, len(fields)*2)
	for _, f := range fields {
		out = append(out, f)
		if trimmed := strings.Trim(f, "."); trimmed != f && trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// indentLevel 制表符数量加上每 4 个空格计 1 级
func indentLevel(s string) int {
	level, spaces := 0, 0
	for _, r := range s {
		switch r {
		case '\t':
			level++
		case ' ':
			spaces++
		case '　':
			// 全角空格按 2 个半角计
			spaces += 2
		default:
			return level + spaces/4
		}
	}
	return level + spaces/4
}

// isLettersOnly 仅由字母组成（含非拉丁字母）
func isLettersOnly(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}

// letterPrefix 提取标识中的全部字母，"B3" -> "B"
func letterPrefix(s string) (letters string, hasDigit bool) {
	var b strings.Builder
	for _, r := range s {
		switch {
		case unicode.IsLetter(r):
			b.WriteRune(r)
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	return b.String(), hasDigit
}
