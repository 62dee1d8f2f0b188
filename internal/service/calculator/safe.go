package calculator

import "math"

// SafeDivide 安全除法：除数为 0（含 -0）或结果非有限数时返回 0
func SafeDivide(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return finite(num / den)
}

// shareOf 占比：仅当 whole > 0 时有定义
func shareOf(part, whole float64) float64 {
	if whole > 0 {
		return finite(part / whole)
	}
	return 0
}

// perUnit 单位值：仅当 qty > 0 时有定义
func perUnit(amount, qty float64) float64 {
	if qty > 0 {
		return finite(amount / qty)
	}
	return 0
}

func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// Grouped 分组求和结果，Keys 保持首次出现顺序
type Grouped[K comparable] struct {
	Keys []K
	Sums map[K][]float64
}

// GroupSum 按 key 分组，对每个 value 函数分别求和
func GroupSum[T any, K comparable](rows []T, key func(T) K, values ...func(T) float64) Grouped[K] {
	g := Grouped[K]{
		Keys: make([]K, 0),
		Sums: make(map[K][]float64),
	}
	for _, row := range rows {
		k := key(row)
		acc, ok := g.Sums[k]
		if !ok {
			acc = make([]float64, len(values))
			g.Keys = append(g.Keys, k)
		}
		for i, fn := range values {
			acc[i] += finite(fn(row))
		}
		g.Sums[k] = acc
	}
	return g
}

// Get 返回 key 的第 i 个汇总值，缺失时为 0
func (g Grouped[K]) Get(key K, i int) float64 {
	acc, ok := g.Sums[key]
	if !ok || i < 0 || i >= len(acc) {
		return 0
	}
	return acc[i]
}

// Joined 左连接结果行
type Joined[L, R any] struct {
	Left    L
	Right   R
	Matched bool
}

// LeftJoin 左连接：保留全部左侧行，右侧未匹配时取 zero；右侧 key 重复时以首行为准
func LeftJoin[L, R any, K comparable](left []L, leftKey func(L) K, right []R, rightKey func(R) K, zero R) []Joined[L, R] {
	index := make(map[K]R, len(right))
	for _, r := range right {
		k := rightKey(r)
		if _, exists := index[k]; !exists {
			index[k] = r
		}
	}

	out := make([]Joined[L, R], 0, len(left))
	for _, l := range left {
		r, ok := index[leftKey(l)]
		if !ok {
			r = zero
		}
		out = append(out, Joined[L, R]{Left: l, Right: r, Matched: ok})
	}
	return out
}
