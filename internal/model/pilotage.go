package model

// AlertStatus 产品健康状态
type AlertStatus string

const (
	AlertOK            AlertStatus = "OK"
	AlertNeedsMonitor  AlertStatus = "Needs monitoring"
	AlertNotProfitable AlertStatus = "Not profitable"
)

// PilotageRow 盈利分析表行
type PilotageRow struct {
	ProductCode              string      `json:"productCode"`
	Name                     string      `json:"name"`
	Family                   string      `json:"family"`
	MenuPrice                float64     `json:"menuPrice"`
	MaterialCostPerPortion   float64     `json:"materialCostPerPortion"`
	GlobalChargePerPortion   float64     `json:"globalChargePerPortion"`
	SpecificChargePerPortion float64     `json:"specificChargePerPortion"`
	TotalChargePerPortion    float64     `json:"totalChargePerPortion"`
	GrossMargin              float64     `json:"grossMargin"`
	NetMargin                float64     `json:"netMargin"`
	FoodCostRatio            float64     `json:"foodCostRatio"`
	ChargeRatio              float64     `json:"chargeRatio"`
	ToleranceThreshold       float64     `json:"toleranceThreshold"`
	AlertStatus              AlertStatus `json:"alertStatus"`
	Score                    int         `json:"score"`
}

// SalesSummaryRow 简版销售汇总（按产品编码聚合销量）
type SalesSummaryRow struct {
	ProductCode    string  `json:"productCode"`
	Name           string  `json:"name"`
	Quantity       float64 `json:"quantity"`
	CostPerPortion float64 `json:"costPerPortion"`
	TotalCost      float64 `json:"totalCost"`
	SalePrice      float64 `json:"salePrice"`
	Revenue        float64 `json:"revenue"`
	Margin         float64 `json:"margin"`
}

// Report 一次完整计算的全部产物
type Report struct {
	RunID         string                `json:"runId"`
	Ingredients   []IngredientCost      `json:"ingredients"`
	MaterialCosts []ProductMaterialCost `json:"materialCosts"`
	Allocation    AllocationResult      `json:"allocation"`
	Pilotage      []PilotageRow         `json:"pilotage"`
	Kpis          KpiSummary            `json:"kpis"`
}
