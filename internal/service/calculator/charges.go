package calculator

import (
	"strings"

	"economat/internal/model"
)

// AllocateCharges 分摊固定费用，总营业额取全部销售行之和
func AllocateCharges(charges []model.FixedChargeRow, sales []model.SaleLine) model.AllocationResult {
	total := 0.0
	for _, s := range sales {
		total += finite(s.Revenue())
	}
	return AllocateChargesWithRevenue(charges, sales, total)
}

// AllocateChargesWithRevenue 使用外部给定的总营业额分摊固定费用
//
// 通用费用按行营业额占总营业额的比例分摊；专项费用按行营业额占所在产品族营业额的比例分摊。
// 所有除零情况都归零。
func AllocateChargesWithRevenue(charges []model.FixedChargeRow, sales []model.SaleLine, totalRevenue float64) model.AllocationResult {
	result := model.AllocationResult{
		Lines:            make([]model.AllocatedSaleLine, 0, len(sales)),
		TotalRevenue:     finite(totalRevenue),
		SpecificByFamily: make(map[string]float64),
		FamilyRevenue:    make(map[string]float64),
	}

	for _, c := range charges {
		amount := finite(c.MonthlyAmount)
		if c.IsGlobal() {
			result.GlobalTotal += amount
			continue
		}
		family := strings.TrimSpace(c.Family)
		if family == "" {
			result.UnallocatedSpecific += amount
			continue
		}
		result.SpecificByFamily[family] += amount
	}

	for _, s := range sales {
		result.FamilyRevenue[s.Family] += finite(s.Revenue())
	}

	for _, s := range sales {
		revenue := finite(s.Revenue())
		line := model.AllocatedSaleLine{
			SaleLine:    s,
			RevenueLine: revenue,
		}

		line.GlobalChargeLine = shareOf(revenue, result.TotalRevenue) * result.GlobalTotal
		line.GlobalChargePerUnit = perUnit(line.GlobalChargeLine, s.QuantitySold)

		if amount, ok := result.SpecificByFamily[s.Family]; ok {
			line.SpecificChargeLine = shareOf(revenue, result.FamilyRevenue[s.Family]) * amount
			line.SpecificChargePerUnit = perUnit(line.SpecificChargeLine, s.QuantitySold)
		}

		result.Lines = append(result.Lines, line)
	}

	return result
}
