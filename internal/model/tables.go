package model

import "strings"

// Product 产品目录行
type Product struct {
	Code           string  `json:"code"`
	Name           string  `json:"name"`
	Family         string  `json:"family"`
	MenuPrice      float64 `json:"menuPrice"`
	CostPerPortion float64 `json:"costPerPortion"` // 目录中录入的每份成本（Coût Moyen Portion）
}

// IngredientStockRow 原料期初库存
type IngredientStockRow struct {
	IngredientCode  string  `json:"ingredientCode"`
	OpeningQuantity float64 `json:"openingQuantity"`
	OpeningValue    float64 `json:"openingValue"`
}

// PurchaseRow 原料采购行，同一原料可出现多行
type PurchaseRow struct {
	IngredientCode    string  `json:"ingredientCode"`
	PurchasedQuantity float64 `json:"purchasedQuantity"`
	PurchasedValue    float64 `json:"purchasedValue"`
}

// IngredientCost 原料加权平均成本（CMP）
type IngredientCost struct {
	IngredientCode    string  `json:"ingredientCode"`
	TotalQuantity     float64 `json:"totalQuantity"`
	TotalValue        float64 `json:"totalValue"`
	EffectiveUnitCost float64 `json:"effectiveUnitCost"`
}

// RecipeLine 配方行
type RecipeLine struct {
	ProductCode    string  `json:"productCode"`
	IngredientCode string  `json:"ingredientCode"`
	Quantity       float64 `json:"quantity"`
	Unit           string  `json:"unit"`
}

// ProductMaterialCost 每份原料成本
type ProductMaterialCost struct {
	ProductCode            string  `json:"productCode"`
	MaterialCostPerPortion float64 `json:"materialCostPerPortion"`
}

// SaleLine 销售行
type SaleLine struct {
	ProductCode  string  `json:"productCode"`
	Family       string  `json:"family"`
	QuantitySold float64 `json:"quantitySold"`
	MenuPrice    float64 `json:"menuPrice"`
}

// Revenue 行营业额 = 数量 × 售价
func (s SaleLine) Revenue() float64 {
	return s.QuantitySold * s.MenuPrice
}

// FixedChargeRow 固定费用行
type FixedChargeRow struct {
	Label          string  `json:"label"`
	AllocationType string  `json:"allocationType"` // global / 其他视为按产品族分摊
	Family         string  `json:"family"`
	MonthlyAmount  float64 `json:"monthlyAmount"`
}

// IsGlobal 分摊类型是否包含 "global"（不区分大小写）
func (c FixedChargeRow) IsGlobal() bool {
	return strings.Contains(strings.ToLower(c.AllocationType), "global")
}

// AllocatedSaleLine 分摊后的销售行
type AllocatedSaleLine struct {
	SaleLine
	RevenueLine           float64 `json:"revenueLine"`
	GlobalChargeLine      float64 `json:"globalChargeLine"`
	GlobalChargePerUnit   float64 `json:"globalChargePerUnit"`
	SpecificChargeLine    float64 `json:"specificChargeLine"`
	SpecificChargePerUnit float64 `json:"specificChargePerUnit"`
}

// AllocationResult 费用分摊结果
type AllocationResult struct {
	Lines            []AllocatedSaleLine `json:"lines"`
	TotalRevenue     float64             `json:"totalRevenue"`
	GlobalTotal      float64             `json:"globalTotal"`
	SpecificByFamily map[string]float64  `json:"specificByFamily"`
	FamilyRevenue    map[string]float64  `json:"familyRevenue"`

	// UnallocatedSpecific 未指定产品族的专项费用，不参与分摊
	UnallocatedSpecific float64 `json:"unallocatedSpecific"`
}

// Workbook 加载后的全部数据表（固定内部结构）
// 缺失的 sheet 对应空切片，不为 nil 语义
type Workbook struct {
	Products  []Product            `json:"products"`
	Sales     []SaleLine           `json:"sales"`
	Journal   Journal              `json:"journal"`
	Recipes   []RecipeLine         `json:"recipes"`
	Stock     []IngredientStockRow `json:"stock"`
	Purchases []PurchaseRow        `json:"purchases"`
	Charges   []FixedChargeRow     `json:"charges"`
}

// RowCounts 各逻辑表行数
func (w *Workbook) RowCounts() map[TableName]int {
	return map[TableName]int{
		TableProducts:  len(w.Products),
		TableSales:     len(w.Sales),
		TableRecipes:   len(w.Recipes),
		TableStock:     len(w.Stock),
		TablePurchases: len(w.Purchases),
		TableCharges:   len(w.Charges),
	}
}

// Clone 深拷贝各数据表切片
func (w *Workbook) Clone() *Workbook {
	if w == nil {
		return &Workbook{}
	}
	return &Workbook{
		Products:  append([]Product(nil), w.Products...),
		Sales:     append([]SaleLine(nil), w.Sales...),
		Journal:   Journal{Columns: w.Journal.Columns, Lines: append([]JournalLine(nil), w.Journal.Lines...)},
		Recipes:   append([]RecipeLine(nil), w.Recipes...),
		Stock:     append([]IngredientStockRow(nil), w.Stock...),
		Purchases: append([]PurchaseRow(nil), w.Purchases...),
		Charges:   append([]FixedChargeRow(nil), w.Charges...),
	}
}

// FindProduct 按编码或名称查找产品（编码优先）
func (w *Workbook) FindProduct(key string) (Product, bool) {
	key = strings.TrimSpace(key)
	if key == "" {
		return Product{}, false
	}
	for _, p := range w.Products {
		if p.Code == key {
			return p, true
		}
	}
	for _, p := range w.Products {
		if p.Name == key {
			return p, true
		}
	}
	return Product{}, false
}
