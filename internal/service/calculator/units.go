package calculator

import (
	"strings"

	"economat/internal/model"
)

// unitScale 克→千克、毫升→升
const unitScale = 1000.0

// NormalizeUnit 单位标签规范化：小写、去首尾空白、压缩内部空白
func NormalizeUnit(label string) string {
	return strings.Join(strings.Fields(strings.ToLower(label)), " ")
}

// UnitDivisor 返回换算到千克/升所需的除数，计数类单位为 1
func UnitDivisor(label string) float64 {
	u := NormalizeUnit(label)
	switch {
	case u == "g", strings.HasPrefix(u, "gram"):
		return unitScale
	case u == "ml":
		return unitScale
	default:
		return 1
	}
}

// NormalizeRecipeLines 返回数量换算后的新配方行，不修改入参
func NormalizeRecipeLines(lines []model.RecipeLine) []model.RecipeLine {
	out := make([]model.RecipeLine, len(lines))
	for i, line := range lines {
		out[i] = model.RecipeLine{
			ProductCode:    line.ProductCode,
			IngredientCode: line.IngredientCode,
			Quantity:       finite(line.Quantity) / UnitDivisor(line.Unit),
			Unit:           NormalizeUnit(line.Unit),
		}
	}
	return out
}
