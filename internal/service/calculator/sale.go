package calculator

import (
	"fmt"
	"time"

	"economat/internal/model"
)

// JournalDateLayout 录入流水的日期格式
const JournalDateLayout = "2006-01-02 15:04:05"

// NewSaleEntry 由目录产品与数量生成一条流水行和对应的销售行
// 售价取目录 Prix Menu，每份成本取目录 Coût Moyen Portion
func NewSaleEntry(product *model.Product, quantity float64, at time.Time) (model.JournalLine, model.SaleLine, error) {
	if err := ValidateSale(product, quantity); err != nil {
		return model.JournalLine{}, model.SaleLine{}, fmt.Errorf("invalid sale: %w", err)
	}

	sale := model.SaleLine{
		ProductCode:  product.Code,
		Family:       product.Family,
		QuantitySold: quantity,
		MenuPrice:    product.MenuPrice,
	}
	name := product.Name
	if name == "" {
		name = product.Code
	}
	line := model.JournalLine{
		Date:         at.Format(JournalDateLayout),
		ProductCode:  product.Code,
		Product:      name,
		Quantity:     quantity,
		Price:        product.MenuPrice,
		Revenue:      sale.Revenue(),
		UnitCost:     product.CostPerPortion,
		MaterialCost: quantity * product.CostPerPortion,
	}
	return line, sale, nil
}

// EntryColumns 录入后流水具备的列
func EntryColumns() model.JournalColumns {
	return model.JournalColumns{
		Product:      true,
		Quantity:     true,
		Price:        true,
		Revenue:      true,
		UnitCost:     true,
		MaterialCost: true,
	}
}
