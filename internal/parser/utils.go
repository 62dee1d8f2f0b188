package parser

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var whitespaceRe = regexp.MustCompile(`\s+`)

// NormalizeColumnName 去除首尾空白并压缩内部空白
func NormalizeColumnName(name string) string {
	name = strings.ReplaceAll(name, "\u00a0", " ")
	name = strings.ReplaceAll(name, "\u202f", " ")
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(name, " "))
}

// NormalizeCode 规范化编码列：trim + 压缩空白，保证可作为连接键
func NormalizeCode(code string) string {
	return NormalizeColumnName(code)
}

// FoldKey 宽松比较用的键：去重音、小写、去掉空白/下划线/连字符
// "Qté Vendue" / "qte_vendue" / "QTE-VENDUE" 得到同一个键
func FoldKey(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	folded = strings.ToLower(folded)
	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range folded {
		if unicode.IsSpace(r) || r == '_' || r == '-' || r == '.' {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// ParseNumber 解析数值单元格，兼容法式格式（"1 234,56 €"）
// 无法解析时返回 ok=false
func ParseNumber(raw string) (float64, bool) {
	s := NormalizeColumnName(raw)
	if s == "" {
		return 0, false
	}
	s = strings.NewReplacer(" ", "", "€", "", "$", "", "'", "").Replace(s)
	s = strings.TrimSuffix(strings.TrimSuffix(strings.ToUpper(s), "MAD"), "DH")

	comma := strings.LastIndex(s, ",")
	dot := strings.LastIndex(s, ".")
	switch {
	case comma >= 0 && dot >= 0:
		if comma > dot {
			s = strings.ReplaceAll(s, ".", "")
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case comma >= 0:
		if strings.Count(s, ",") == 1 {
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// NumberOrZero 解析失败按 0 处理
func NumberOrZero(raw string) float64 {
	v, _ := ParseNumber(raw)
	return v
}
