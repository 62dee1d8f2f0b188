package util

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// RoundMoney 金额按分四舍五入
func RoundMoney(value float64) float64 {
	return RoundTo(value, 2)
}

// RoundTo 按指定小数位四舍五入（十进制，避免 0.1+0.2 类误差）
func RoundTo(value float64, places int32) float64 {
	f, _ := decimal.NewFromFloat(value).Round(places).Float64()
	return f
}

// FormatPercent 比率格式化为百分比，保留一位小数（0.3125 -> "31.3%"）
func FormatPercent(ratio float64) string {
	return decimal.NewFromFloat(ratio).Mul(decimal.NewFromInt(100)).StringFixed(1) + "%"
}

// FormatCurrency 金额格式化（千分位空格，两位小数）
func FormatCurrency(value float64) string {
	s := decimal.NewFromFloat(value).StringFixed(2)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	intPart, frac := s, ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		intPart, frac = s[:i], s[i:]
	}

	var b strings.Builder
	for i, ch := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(' ')
		}
		b.WriteRune(ch)
	}

	out := b.String() + frac
	if neg {
		out = "-" + out
	}
	return out
}

// FormatQuantity 数量格式化：整数不带小数
func FormatQuantity(value float64) string {
	d := decimal.NewFromFloat(value).Round(3)
	if d.IsInteger() {
		return d.StringFixed(0)
	}
	return strings.TrimRight(strings.TrimRight(d.StringFixed(3), "0"), ".")
}

// FormatFloat 导出 CSV 用的紧凑数值
func FormatFloat(value float64, places int32) string {
	return fmt.Sprint(RoundTo(value, places))
}
