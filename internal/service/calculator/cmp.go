package calculator

import "economat/internal/model"

// ComputeIngredientCost 计算原料加权平均成本（CMP）
// 采购按原料汇总后左连接到库存；无采购的原料按 0 处理，库存中没有的原料不输出
func ComputeIngredientCost(stock []model.IngredientStockRow, purchases []model.PurchaseRow) []model.IngredientCost {
	bought := GroupSum(purchases,
		func(p model.PurchaseRow) string { return p.IngredientCode },
		func(p model.PurchaseRow) float64 { return p.PurchasedQuantity },
		func(p model.PurchaseRow) float64 { return p.PurchasedValue },
	)
	opening := GroupSum(stock,
		func(s model.IngredientStockRow) string { return s.IngredientCode },
		func(s model.IngredientStockRow) float64 { return s.OpeningQuantity },
		func(s model.IngredientStockRow) float64 { return s.OpeningValue },
	)

	out := make([]model.IngredientCost, 0, len(opening.Keys))
	for _, code := range opening.Keys {
		qty := opening.Get(code, 0) + bought.Get(code, 0)
		value := opening.Get(code, 1) + bought.Get(code, 1)
		out = append(out, model.IngredientCost{
			IngredientCode:    code,
			TotalQuantity:     qty,
			TotalValue:        value,
			EffectiveUnitCost: SafeDivide(value, qty),
		})
	}
	return out
}
