package model

// JournalColumns 销售流水中实际存在的语义列
type JournalColumns struct {
	Product      bool `json:"product"`
	Quantity     bool `json:"quantity"`
	Price        bool `json:"price"`
	Revenue      bool `json:"revenue"`
	UnitCost     bool `json:"unitCost"`
	MaterialCost bool `json:"materialCost"`
}

// JournalLine 销售流水行（原始口径）
type JournalLine struct {
	Date         string  `json:"date"`
	ProductCode  string  `json:"productCode,omitempty"`
	Product      string  `json:"product"`
	Quantity     float64 `json:"quantity"`
	Price        float64 `json:"price"`
	Revenue      float64 `json:"revenue"`
	UnitCost     float64 `json:"unitCost"`
	MaterialCost float64 `json:"materialCost"`
}

// Journal 销售流水
type Journal struct {
	Columns JournalColumns `json:"columns"`
	Lines   []JournalLine  `json:"lines"`
}

// ProductRevenue 产品营业额
type ProductRevenue struct {
	Product string  `json:"product"`
	Revenue float64 `json:"revenue"`
}

// KpiSummary 顶层经营指标
type KpiSummary struct {
	TotalRevenue       float64          `json:"totalRevenue"`
	TotalMaterialCost  float64          `json:"totalMaterialCost"`
	FoodCostPercentage float64          `json:"foodCostPercentage"`
	TopProducts        []ProductRevenue `json:"topProducts"`
}
