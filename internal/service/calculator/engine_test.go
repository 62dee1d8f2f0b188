package calculator

import (
	"reflect"
	"testing"

	"economat/internal/model"
	"economat/internal/service/store"
)

// 创建测试用的工作簿数据
func createTestWorkbook() *model.Workbook {
	return &model.Workbook{
		Products: []model.Product{
			{Code: "X", Name: "Tajine", Family: "Plats", MenuPrice: 10},
			{Code: "Y", Name: "Thé", Family: "Boissons", MenuPrice: 2},
			{Code: "Z", Name: "Offert", Family: "Plats", MenuPrice: 0},
		},
		Stock: []model.IngredientStockRow{
			{IngredientCode: "P1", OpeningQuantity: 10, OpeningValue: 100},
			{IngredientCode: "P2", OpeningQuantity: 1, OpeningValue: 20},
		},
		Purchases: []model.PurchaseRow{
			{IngredientCode: "P1", PurchasedQuantity: 10, PurchasedValue: 150},
		},
		Recipes: []model.RecipeLine{
			{ProductCode: "X", IngredientCode: "P1", Quantity: 200, Unit: "g"},
			{ProductCode: "Y", IngredientCode: "P2", Quantity: 10, Unit: "ml"},
		},
		Sales: []model.SaleLine{
			{ProductCode: "X", Family: "Plats", QuantitySold: 10, MenuPrice: 10},
			{ProductCode: "Y", Family: "Boissons", QuantitySold: 150, MenuPrice: 2},
		},
		Charges: []model.FixedChargeRow{
			{Label: "Loyer", AllocationType: "Global", MonthlyAmount: 40},
			{Label: "Hotte", AllocationType: "Spécifique", Family: "Plats", MonthlyAmount: 20},
		},
		Journal: model.Journal{
			Columns: model.JournalColumns{Product: true, Quantity: true, Price: true},
			Lines: []model.JournalLine{
				{Product: "Tajine", Quantity: 10, Price: 10},
				{Product: "Thé", Quantity: 150, Price: 2},
			},
		},
	}
}

// TestRunPipeline 测试完整流水线
func TestRunPipeline(t *testing.T) {
	report := Run(createTestWorkbook())

	if len(report.Ingredients) != 2 {
		t.Fatalf("ingredients=%d, want 2", len(report.Ingredients))
	}
	if !floatEquals(report.Ingredients[0].EffectiveUnitCost, 12.5) {
		t.Errorf("P1 CMP = %v, want 12.5", report.Ingredients[0].EffectiveUnitCost)
	}

	if len(report.Pilotage) != 3 {
		t.Fatalf("pilotage rows=%d, want 3", len(report.Pilotage))
	}
	x := report.Pilotage[0]
	if !floatEquals(x.MaterialCostPerPortion, 2.5) {
		t.Errorf("X material = %v, want 2.5", x.MaterialCostPerPortion)
	}
	// 总营业额 400：X 占 100 → 通用费用 10，10 份 → 每份 1；专项 20 全归 X → 每份 2
	if !floatEquals(x.GlobalChargePerPortion, 1) {
		t.Errorf("X global per portion = %v, want 1", x.GlobalChargePerPortion)
	}
	if !floatEquals(x.SpecificChargePerPortion, 2) {
		t.Errorf("X specific per portion = %v, want 2", x.SpecificChargePerPortion)
	}
	if !floatEquals(x.NetMargin, 10-2.5-3) {
		t.Errorf("X net margin = %v, want 4.5", x.NetMargin)
	}

	z := report.Pilotage[2]
	if z.FoodCostRatio != 0 || z.ChargeRatio != 0 {
		t.Errorf("Z ratios = %v/%v, want 0/0", z.FoodCostRatio, z.ChargeRatio)
	}

	if !floatEquals(report.Kpis.TotalRevenue, 400) {
		t.Errorf("kpi revenue = %v, want 400", report.Kpis.TotalRevenue)
	}
}

// TestRunIdempotent 测试重复运行结果一致
func TestRunIdempotent(t *testing.T) {
	wb := createTestWorkbook()
	first := Run(wb)
	second := Run(wb)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("pipeline is not idempotent")
	}
}

// TestRunNilWorkbook 测试空输入
func TestRunNilWorkbook(t *testing.T) {
	report := Run(nil)
	if len(report.Pilotage) != 0 || report.Kpis.TotalRevenue != 0 {
		t.Fatalf("unexpected report for nil workbook: %+v", report)
	}
}

// TestEngineCalculate 测试引擎读取内存存储
func TestEngineCalculate(t *testing.T) {
	memStore := store.NewMemoryStore()
	memStore.SetWorkbook(createTestWorkbook(), model.LoadReport{FileName: "test.xlsx"}, "")
	engine := NewEngine(memStore)

	report := engine.Calculate()
	if report.RunID == "" {
		t.Errorf("expected run id")
	}
	if len(report.Pilotage) != 3 {
		t.Errorf("pilotage rows=%d, want 3", len(report.Pilotage))
	}

	summary := engine.SalesSummary()
	if len(summary) != 2 || summary[0].ProductCode != "Y" {
		t.Errorf("unexpected summary: %+v", summary)
	}
}

// floatEquals 浮点数近似相等判断
func floatEquals(a, b float64) bool {
	const epsilon = 1e-9
	diff := a - b
	if diff < 0 {
		diff = -diff
	}
	return diff < epsilon
}
