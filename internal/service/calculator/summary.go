package calculator

import (
	"sort"

	"economat/internal/model"
)

// BuildSalesSummary 简版销售汇总：按产品编码汇总销量，关联目录中的每份成本与售价，按销量降序
func BuildSalesSummary(products []model.Product, sales []model.SaleLine) []model.SalesSummaryRow {
	qty := GroupSum(sales,
		func(s model.SaleLine) string { return s.ProductCode },
		func(s model.SaleLine) float64 { return s.QuantitySold },
	)
	codes := append([]string(nil), qty.Keys...)
	sort.Strings(codes)

	joined := LeftJoin(codes,
		func(code string) string { return code },
		products,
		func(p model.Product) string { return p.Code },
		model.Product{},
	)

	rows := make([]model.SalesSummaryRow, 0, len(joined))
	for _, j := range joined {
		q := qty.Get(j.Left, 0)
		row := model.SalesSummaryRow{
			ProductCode:    j.Left,
			Name:           j.Right.Name,
			Quantity:       q,
			CostPerPortion: finite(j.Right.CostPerPortion),
			SalePrice:      finite(j.Right.MenuPrice),
		}
		row.TotalCost = row.CostPerPortion * q
		row.Revenue = row.SalePrice * q
		row.Margin = row.Revenue - row.TotalCost
		rows = append(rows, row)
	}

	sort.SliceStable(rows, func(i, k int) bool { return rows[i].Quantity > rows[k].Quantity })
	return rows
}
