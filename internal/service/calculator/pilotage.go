package calculator

import "economat/internal/model"

// ToleranceThreshold 原料成本率容忍阈值
const ToleranceThreshold = 0.35

// BuildPilotageTable 组装产品盈利分析表，每个目录产品一行（编码重复时取首行）
//
// 菜单售价为 0 时，原料成本率与费用率均按 0 处理。
func BuildPilotageTable(products []model.Product, materials []model.ProductMaterialCost, allocated []model.AllocatedSaleLine) []model.PilotageRow {
	material := GroupSum(materials,
		func(m model.ProductMaterialCost) string { return m.ProductCode },
		func(m model.ProductMaterialCost) float64 { return m.MaterialCostPerPortion },
	)
	charges := GroupSum(allocated,
		func(a model.AllocatedSaleLine) string { return a.ProductCode },
		func(a model.AllocatedSaleLine) float64 { return a.GlobalChargePerUnit },
		func(a model.AllocatedSaleLine) float64 { return a.SpecificChargePerUnit },
		func(model.AllocatedSaleLine) float64 { return 1 },
	)

	seen := make(map[string]struct{}, len(products))
	rows := make([]model.PilotageRow, 0, len(products))
	for _, p := range products {
		if _, dup := seen[p.Code]; dup {
			continue
		}
		seen[p.Code] = struct{}{}

		lines := charges.Get(p.Code, 2)
		row := model.PilotageRow{
			ProductCode:              p.Code,
			Name:                     p.Name,
			Family:                   p.Family,
			MenuPrice:                finite(p.MenuPrice),
			MaterialCostPerPortion:   material.Get(p.Code, 0),
			GlobalChargePerPortion:   SafeDivide(charges.Get(p.Code, 0), lines),
			SpecificChargePerPortion: SafeDivide(charges.Get(p.Code, 1), lines),
			ToleranceThreshold:       ToleranceThreshold,
		}
		row.TotalChargePerPortion = row.GlobalChargePerPortion + row.SpecificChargePerPortion
		row.GrossMargin = row.MenuPrice - row.MaterialCostPerPortion
		row.NetMargin = row.GrossMargin - row.TotalChargePerPortion
		row.FoodCostRatio = SafeDivide(row.MaterialCostPerPortion, row.MenuPrice)
		row.ChargeRatio = SafeDivide(row.TotalChargePerPortion, row.MenuPrice)
		row.AlertStatus = alertFor(row.NetMargin, row.FoodCostRatio)
		row.Score = scoreFor(row.NetMargin, row.FoodCostRatio)

		rows = append(rows, row)
	}
	return rows
}

// alertFor 亏损优先于成本率预警
func alertFor(netMargin, foodCostRatio float64) model.AlertStatus {
	switch {
	case netMargin < 0:
		return model.AlertNotProfitable
	case foodCostRatio > ToleranceThreshold:
		return model.AlertNeedsMonitor
	default:
		return model.AlertOK
	}
}

func scoreFor(netMargin, foodCostRatio float64) int {
	score := 0
	if netMargin > 0 {
		score++
	}
	if foodCostRatio < ToleranceThreshold {
		score++
	}
	return score
}
