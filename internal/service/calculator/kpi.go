package calculator

import (
	"sort"
	"strings"

	"economat/internal/model"
)

// TopProductsLimit 营业额排行取前 N 个产品
const TopProductsLimit = 5

// ComputeKpis 由销售流水计算顶层指标
//
// 缺少营业额列时按 售价 × 数量 合成；缺少原料成本列时按 每份成本 × 数量 合成；
// 都无法合成时该项为 0。排行按产品名分组（空名称忽略），组内顺序为名称升序，
// 再按营业额稳定降序，取前 TopProductsLimit 个。编码先按目录换算为产品名再分组。
func ComputeKpis(journal model.Journal, products []model.Product) model.KpiSummary {
	summary := model.KpiSummary{TopProducts: []model.ProductRevenue{}}
	if len(journal.Lines) == 0 {
		return summary
	}

	cols := journal.Columns
	revenueOf := func(l model.JournalLine) float64 {
		switch {
		case cols.Revenue:
			return finite(l.Revenue)
		case cols.Price && cols.Quantity:
			return finite(l.Price) * finite(l.Quantity)
		default:
			return 0
		}
	}
	materialOf := func(l model.JournalLine) float64 {
		switch {
		case cols.MaterialCost:
			return finite(l.MaterialCost)
		case cols.UnitCost && cols.Quantity:
			return finite(l.UnitCost) * finite(l.Quantity)
		default:
			return 0
		}
	}

	for _, l := range journal.Lines {
		summary.TotalRevenue += revenueOf(l)
		summary.TotalMaterialCost += materialOf(l)
	}
	if summary.TotalRevenue != 0 {
		summary.FoodCostPercentage = summary.TotalMaterialCost / summary.TotalRevenue * 100
	}

	// 先把编码换算为产品名再分组，同一产品的编码行与名称行合并
	labels := productLabels(products)
	labelOf := func(l model.JournalLine) string {
		name := strings.TrimSpace(l.Product)
		if label, ok := labels[name]; ok {
			return label
		}
		return name
	}

	named := make([]model.JournalLine, 0, len(journal.Lines))
	for _, l := range journal.Lines {
		if labelOf(l) != "" {
			named = append(named, l)
		}
	}
	byProduct := GroupSum(named, labelOf, revenueOf)

	ranking := make([]model.ProductRevenue, 0, len(byProduct.Keys))
	for _, name := range byProduct.Keys {
		ranking = append(ranking, model.ProductRevenue{Product: name, Revenue: byProduct.Get(name, 0)})
	}
	sort.SliceStable(ranking, func(i, j int) bool { return ranking[i].Product < ranking[j].Product })
	sort.SliceStable(ranking, func(i, j int) bool { return ranking[i].Revenue > ranking[j].Revenue })
	if len(ranking) > TopProductsLimit {
		ranking = ranking[:TopProductsLimit]
	}
	summary.TopProducts = ranking
	return summary
}

// productLabels 编码 → 产品名（名称为空的产品不参与）
func productLabels(products []model.Product) map[string]string {
	out := make(map[string]string, len(products))
	for _, p := range products {
		if p.Code == "" || p.Name == "" || p.Code == p.Name {
			continue
		}
		if _, ok := out[p.Code]; !ok {
			out[p.Code] = p.Name
		}
	}
	return out
}
