package parser

import (
	"economat/internal/model"
)

// 各逻辑表解析的语义列（顺序即占列优先级）
var (
	productRoles  = []Role{RoleProductCode, RoleProductName, RoleFamily, RoleMenuPrice, RoleCostPerPortion}
	saleRoles     = []Role{RoleSaleDate, RoleProductCode, RoleProductName, RoleFamily, RoleQuantitySold, RoleMenuPrice, RoleRevenueLine, RoleMaterialLine, RoleUnitCost}
	recipeRoles   = []Role{RoleProductCode, RoleIngredientCode, RoleRecipeQuantity, RoleRecipeUnit, RoleProductName}
	stockRoles    = []Role{RoleIngredientCode, RoleOpeningQuantity, RoleOpeningValue}
	purchaseRoles = []Role{RoleIngredientCode, RolePurchasedQuantity, RolePurchasedValue}
	chargeRoles   = []Role{RoleChargeLabel, RoleAllocationType, RoleFamily, RoleMonthlyAmount}
)

// WorkbookBuilder 把原始表映射为固定内部结构
// 列名只在这里解析一次，之后的计算只使用 model 中的字段
type WorkbookBuilder struct {
	mapper     *FieldMapper
	recognizer *SheetRecognizer
}

// NewWorkbookBuilder 创建构建器
func NewWorkbookBuilder(cfg ColumnConfig) *WorkbookBuilder {
	mapper := NewFieldMapper(cfg)
	return &WorkbookBuilder{
		mapper:     mapper,
		recognizer: NewSheetRecognizer(mapper),
	}
}

// Build 识别 sheet 并构建工作簿；缺失的表为空切片
// 报告中的 LoadID / FileName / LoadedAt 由调用方填写
func (b *WorkbookBuilder) Build(tables []*Table) (*model.Workbook, model.LoadReport) {
	resolved, _ := b.recognizer.Resolve(tables)

	byName := make(map[string]*Table, len(tables))
	names := make([]string, 0, len(tables))
	for _, t := range tables {
		byName[t.Name] = t
		names = append(names, t.Name)
	}
	pick := func(name model.TableName) *Table {
		if sheet, ok := resolved.Sheets[name]; ok {
			return byName[sheet]
		}
		return &Table{Name: string(name)}
	}

	unresolved := make(map[model.TableName][]string)
	note := func(name model.TableName, missing []string) {
		if _, ok := resolved.Sheets[name]; ok && len(missing) > 0 {
			unresolved[name] = missing
		}
	}

	wb := &model.Workbook{}
	var missing []string

	wb.Products, missing = b.Products(pick(model.TableProducts))
	note(model.TableProducts, missing)

	wb.Journal, wb.Sales, missing = b.Sales(pick(model.TableSales), wb.Products)
	note(model.TableSales, missing)

	wb.Recipes, missing = b.Recipes(pick(model.TableRecipes), wb.Products)
	note(model.TableRecipes, missing)

	wb.Stock, missing = b.Stock(pick(model.TableStock))
	note(model.TableStock, missing)

	wb.Purchases, missing = b.Purchases(pick(model.TablePurchases))
	note(model.TablePurchases, missing)

	wb.Charges, missing = b.Charges(pick(model.TableCharges))
	note(model.TableCharges, missing)

	ensureNonNil(wb)

	unused := append(append([]string{}, resolved.UnknownSheets...), resolved.UnusedSheets...)
	report := model.LoadReport{
		Sheets:      resolved.Sheets,
		RowCounts:   wb.RowCounts(),
		Unresolved:  unresolved,
		SheetNames:  names,
		UnusedNames: unused,
	}
	return wb, report
}

// Products 产品目录；无编码列时以产品名作为编码
func (b *WorkbookBuilder) Products(t *Table) ([]model.Product, []string) {
	idx, missing := b.mapper.Resolve(t.Headers, productRoles...)
	out := make([]model.Product, 0, len(t.Rows))
	for _, row := range t.Rows {
		name := NormalizeColumnName(idx.Get(row, RoleProductName))
		if !idx.Has(RoleProductName) && !idx.Has(RoleProductCode) {
			name = NormalizeColumnName(Cell(row, 0))
		}
		code := NormalizeCode(idx.Get(row, RoleProductCode))
		if code == "" {
			code = name
		}
		if code == "" {
			continue
		}
		out = append(out, model.Product{
			Code:           code,
			Name:           name,
			Family:         NormalizeColumnName(idx.Get(row, RoleFamily)),
			MenuPrice:      NumberOrZero(idx.Get(row, RoleMenuPrice)),
			CostPerPortion: NumberOrZero(idx.Get(row, RoleCostPerPortion)),
		})
	}
	return out, missing
}

// Sales 销售流水：同时产出原始口径流水（KPI 用）与按编码的销售行（分摊用）
// 产品名、编码列都缺失时以首列作为产品；匹配到目录时补齐缺失的产品名、编码、产品族、售价与每份成本
func (b *WorkbookBuilder) Sales(t *Table, products []model.Product) (model.Journal, []model.SaleLine, []string) {
	idx, missing := b.mapper.Resolve(t.Headers, saleRoles...)
	missing = withoutRole(missing, RoleFamily)
	if idx.Has(RoleProductName) {
		missing = withoutRole(missing, RoleProductCode)
	} else if idx.Has(RoleProductCode) {
		missing = withoutRole(missing, RoleProductName)
	}
	catalog := &model.Workbook{Products: products}

	journal := model.Journal{
		Columns: model.JournalColumns{
			Product:      idx.Has(RoleProductName) || idx.Has(RoleProductCode),
			Quantity:     idx.Has(RoleQuantitySold),
			Price:        idx.Has(RoleMenuPrice),
			Revenue:      idx.Has(RoleRevenueLine),
			UnitCost:     idx.Has(RoleUnitCost),
			MaterialCost: idx.Has(RoleMaterialLine),
		},
		Lines: make([]model.JournalLine, 0, len(t.Rows)),
	}
	sales := make([]model.SaleLine, 0, len(t.Rows))

	for _, row := range t.Rows {
		product := NormalizeColumnName(idx.Get(row, RoleProductName))
		if !idx.Has(RoleProductName) && !idx.Has(RoleProductCode) {
			product = NormalizeColumnName(Cell(row, 0))
		}
		code := NormalizeCode(idx.Get(row, RoleProductCode))
		line := model.JournalLine{
			Date:         NormalizeColumnName(idx.Get(row, RoleSaleDate)),
			ProductCode:  code,
			Product:      product,
			Quantity:     NumberOrZero(idx.Get(row, RoleQuantitySold)),
			Price:        NumberOrZero(idx.Get(row, RoleMenuPrice)),
			Revenue:      NumberOrZero(idx.Get(row, RoleRevenueLine)),
			UnitCost:     NumberOrZero(idx.Get(row, RoleUnitCost)),
			MaterialCost: NumberOrZero(idx.Get(row, RoleMaterialLine)),
		}

		key := code
		if key == "" {
			key = product
		}
		sale := model.SaleLine{
			ProductCode:  key,
			Family:       NormalizeColumnName(idx.Get(row, RoleFamily)),
			QuantitySold: line.Quantity,
			MenuPrice:    line.Price,
		}
		if p, ok := catalog.FindProduct(key); ok {
			sale.ProductCode = p.Code
			line.ProductCode = p.Code
			if line.Product == "" {
				line.Product = p.Name
			}
			if !idx.Has(RoleFamily) || sale.Family == "" {
				sale.Family = p.Family
			}
			if !idx.Has(RoleMenuPrice) {
				sale.MenuPrice = p.MenuPrice
				line.Price = p.MenuPrice
			}
			if !idx.Has(RoleUnitCost) {
				line.UnitCost = p.CostPerPortion
			}
		}
		if line.Product == "" {
			line.Product = line.ProductCode
		}
		journal.Lines = append(journal.Lines, line)

		if sale.ProductCode == "" {
			continue
		}
		sales = append(sales, sale)
	}
	return journal, sales, missing
}

// Recipes 配方行；只有产品名列时按产品目录换算为编码
func (b *WorkbookBuilder) Recipes(t *Table, products []model.Product) ([]model.RecipeLine, []string) {
	idx, missing := b.mapper.Resolve(t.Headers, recipeRoles...)
	missing = withoutRole(missing, RoleProductName)
	if idx.Has(RoleProductName) {
		missing = withoutRole(missing, RoleProductCode)
	}
	catalog := &model.Workbook{Products: products}
	out := make([]model.RecipeLine, 0, len(t.Rows))
	for _, row := range t.Rows {
		product := NormalizeCode(idx.Get(row, RoleProductCode))
		if product == "" {
			product = NormalizeCode(idx.Get(row, RoleProductName))
			if p, ok := catalog.FindProduct(product); ok {
				product = p.Code
			}
		}
		ingredient := NormalizeCode(idx.Get(row, RoleIngredientCode))
		if product == "" && ingredient == "" {
			continue
		}
		out = append(out, model.RecipeLine{
			ProductCode:    product,
			IngredientCode: ingredient,
			Quantity:       NumberOrZero(idx.Get(row, RoleRecipeQuantity)),
			Unit:           NormalizeColumnName(idx.Get(row, RoleRecipeUnit)),
		})
	}
	return out, missing
}

// Stock 期初库存
func (b *WorkbookBuilder) Stock(t *Table) ([]model.IngredientStockRow, []string) {
	idx, missing := b.mapper.Resolve(t.Headers, stockRoles...)
	out := make([]model.IngredientStockRow, 0, len(t.Rows))
	for _, row := range t.Rows {
		code := NormalizeCode(idx.Get(row, RoleIngredientCode))
		if code == "" {
			continue
		}
		out = append(out, model.IngredientStockRow{
			IngredientCode:  code,
			OpeningQuantity: NumberOrZero(idx.Get(row, RoleOpeningQuantity)),
			OpeningValue:    NumberOrZero(idx.Get(row, RoleOpeningValue)),
		})
	}
	return out, missing
}

// Purchases 采购行
func (b *WorkbookBuilder) Purchases(t *Table) ([]model.PurchaseRow, []string) {
	idx, missing := b.mapper.Resolve(t.Headers, purchaseRoles...)
	out := make([]model.PurchaseRow, 0, len(t.Rows))
	for _, row := range t.Rows {
		code := NormalizeCode(idx.Get(row, RoleIngredientCode))
		if code == "" {
			continue
		}
		out = append(out, model.PurchaseRow{
			IngredientCode:    code,
			PurchasedQuantity: NumberOrZero(idx.Get(row, RolePurchasedQuantity)),
			PurchasedValue:    NumberOrZero(idx.Get(row, RolePurchasedValue)),
		})
	}
	return out, missing
}

// Charges 固定费用
func (b *WorkbookBuilder) Charges(t *Table) ([]model.FixedChargeRow, []string) {
	idx, missing := b.mapper.Resolve(t.Headers, chargeRoles...)
	out := make([]model.FixedChargeRow, 0, len(t.Rows))
	for _, row := range t.Rows {
		charge := model.FixedChargeRow{
			Label:          NormalizeColumnName(idx.Get(row, RoleChargeLabel)),
			AllocationType: NormalizeColumnName(idx.Get(row, RoleAllocationType)),
			Family:         NormalizeColumnName(idx.Get(row, RoleFamily)),
			MonthlyAmount:  NumberOrZero(idx.Get(row, RoleMonthlyAmount)),
		}
		if charge.Label == "" && charge.AllocationType == "" && charge.MonthlyAmount == 0 {
			continue
		}
		out = append(out, charge)
	}
	return out, missing
}

func withoutRole(missing []string, role Role) []string {
	out := missing[:0]
	for _, m := range missing {
		if m != string(role) {
			out = append(out, m)
		}
	}
	return out
}

func ensureNonNil(wb *model.Workbook) {
	if wb.Products == nil {
		wb.Products = []model.Product{}
	}
	if wb.Sales == nil {
		wb.Sales = []model.SaleLine{}
	}
	if wb.Journal.Lines == nil {
		wb.Journal.Lines = []model.JournalLine{}
	}
	if wb.Recipes == nil {
		wb.Recipes = []model.RecipeLine{}
	}
	if wb.Stock == nil {
		wb.Stock = []model.IngredientStockRow{}
	}
	if wb.Purchases == nil {
		wb.Purchases = []model.PurchaseRow{}
	}
	if wb.Charges == nil {
		wb.Charges = []model.FixedChargeRow{}
	}
}
