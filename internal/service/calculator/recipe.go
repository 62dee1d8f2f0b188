package calculator

import "economat/internal/model"

// ComputeProductMaterialCost 计算每个产品的每份原料成本
// 配方中出现的每个产品编码恰好输出一行；找不到 CMP 的原料按 0 计
func ComputeProductMaterialCost(recipes []model.RecipeLine, costs []model.IngredientCost) []model.ProductMaterialCost {
	joined := LeftJoin(NormalizeRecipeLines(recipes),
		func(l model.RecipeLine) string { return l.IngredientCode },
		costs,
		func(c model.IngredientCost) string { return c.IngredientCode },
		model.IngredientCost{},
	)

	byProduct := GroupSum(joined,
		func(j Joined[model.RecipeLine, model.IngredientCost]) string { return j.Left.ProductCode },
		func(j Joined[model.RecipeLine, model.IngredientCost]) float64 {
			return j.Left.Quantity * j.Right.EffectiveUnitCost
		},
	)

	out := make([]model.ProductMaterialCost, 0, len(byProduct.Keys))
	for _, code := range byProduct.Keys {
		out = append(out, model.ProductMaterialCost{
			ProductCode:            code,
			MaterialCostPerPortion: byProduct.Get(code, 0),
		})
	}
	return out
}
