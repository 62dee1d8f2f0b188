package calculator

import (
	"github.com/google/uuid"

	"economat/internal/model"
	"economat/internal/service/store"
)

// Run 依次执行 CMP → 配方成本 → 费用分摊 → 盈利分析表 → KPI
// 纯函数：相同输入得到相同输出
func Run(wb *model.Workbook) *model.Report {
	if wb == nil {
		wb = &model.Workbook{}
	}

	ingredients := ComputeIngredientCost(wb.Stock, wb.Purchases)
	materials := ComputeProductMaterialCost(wb.Recipes, ingredients)
	allocation := AllocateCharges(wb.Charges, wb.Sales)

	return &model.Report{
		Ingredients:   ingredients,
		MaterialCosts: materials,
		Allocation:    allocation,
		Pilotage:      BuildPilotageTable(wb.Products, materials, allocation.Lines),
		Kpis:          ComputeKpis(wb.Journal, wb.Products),
	}
}

// Engine 成本计算引擎（绑定当前已加载的工作簿）
type Engine struct {
	store *store.MemoryStore
}

// NewEngine 创建计算引擎
func NewEngine(store *store.MemoryStore) *Engine {
	return &Engine{store: store}
}

// Calculate 基于当前工作簿计算全部结果
func (e *Engine) Calculate() *model.Report {
	report := Run(e.store.Workbook())
	report.RunID = uuid.New().String()
	return report
}

// SalesSummary 当前工作簿的简版销售汇总
func (e *Engine) SalesSummary() []model.SalesSummaryRow {
	wb := e.store.Workbook()
	return BuildSalesSummary(wb.Products, wb.Sales)
}
