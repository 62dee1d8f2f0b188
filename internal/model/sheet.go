package model

// TableName 逻辑表名（工作簿中各数据表的角色）
type TableName string

const (
	TableUnknown TableName = "unknown"

	TableProducts  TableName = "products"  // 产品目录 tbl_Produits
	TableSales     TableName = "sales"     // 销售流水 tbl_Ventes
	TableRecipes   TableName = "recipes"   // 配方 tbl_Recettes
	TableStock     TableName = "stock"     // 期初库存 tbl_Stock
	TablePurchases TableName = "purchases" // 采购 tbl_Achats
	TableCharges   TableName = "charges"   // 固定费用 tbl_Charges
)

// AllTables 返回全部已知逻辑表（固定顺序）
func AllTables() []TableName {
	return []TableName{
		TableProducts,
		TableSales,
		TableRecipes,
		TableStock,
		TablePurchases,
		TableCharges,
	}
}

// SheetRecognition 单个 sheet 的识别结果
type SheetRecognition struct {
	SheetName     string    `json:"sheetName"`
	Table         TableName `json:"table"`
	Score         float64   `json:"score"`
	MissingFields []string  `json:"missingFields"`
}
