package parser

import (
	"sort"
	"strings"

	"economat/internal/model"
)

// 识别阈值：低于该分数的 sheet 视为未知
const recognizeThreshold = 0.5

type tableRule struct {
	Table    model.TableName
	Exact    string   // 标准 sheet 名
	Keywords []string // sheet 名关键词（FoldKey 后比较）
	Roles    []Role   // 表头应具备的语义列
}

// SheetRecognizer Sheet 逻辑表识别器
type SheetRecognizer struct {
	mapper *FieldMapper
	rules  []tableRule
}

// NewSheetRecognizer 创建识别器
func NewSheetRecognizer(mapper *FieldMapper) *SheetRecognizer {
	if mapper == nil {
		mapper = NewFieldMapper(nil)
	}
	return &SheetRecognizer{
		mapper: mapper,
		rules:  defaultTableRules(),
	}
}

func defaultTableRules() []tableRule {
	return []tableRule{
		{
			Table:    model.TableProducts,
			Exact:    "tbl_Produits",
			Keywords: []string{"produit", "product", "carte"},
			Roles:    []Role{RoleProductCode, RoleProductName, RoleMenuPrice, RoleCostPerPortion},
		},
		{
			Table:    model.TableSales,
			Exact:    "tbl_Ventes",
			Keywords: []string{"vente", "sales", "journal"},
			Roles:    []Role{RoleSaleDate, RoleProductName, RoleQuantitySold, RoleRevenueLine},
		},
		{
			Table:    model.TableRecipes,
			Exact:    "tbl_Recettes",
			Keywords: []string{"recette", "recipe", "fichetechnique"},
			Roles:    []Role{RoleProductCode, RoleIngredientCode, RoleRecipeQuantity, RoleRecipeUnit},
		},
		{
			Table:    model.TableStock,
			Exact:    "tbl_Stock",
			Keywords: []string{"stock", "inventaire"},
			Roles:    []Role{RoleIngredientCode, RoleOpeningQuantity, RoleOpeningValue},
		},
		{
			Table:    model.TablePurchases,
			Exact:    "tbl_Achats",
			Keywords: []string{"achat", "purchase"},
			Roles:    []Role{RoleIngredientCode, RolePurchasedQuantity, RolePurchasedValue},
		},
		{
			Table:    model.TableCharges,
			Exact:    "tbl_Charges",
			Keywords: []string{"charge", "frais"},
			Roles:    []Role{RoleChargeLabel, RoleAllocationType, RoleMonthlyAmount},
		},
	}
}

// nameBoost 标准名 > 前缀容错（如 "tbl_Produits "）> 关键词
func nameBoost(rule tableRule, sheetName string) float64 {
	trimmed := strings.TrimSpace(sheetName)
	switch {
	case sheetName == rule.Exact:
		return 3
	case strings.HasPrefix(sheetName, rule.Exact) || trimmed == rule.Exact:
		return 2
	}
	key := FoldKey(sheetName)
	for _, kw := range rule.Keywords {
		if strings.Contains(key, kw) {
			return 1
		}
	}
	return 0
}

// Recognize 识别单个 sheet 属于哪张逻辑表
func (r *SheetRecognizer) Recognize(t *Table) model.SheetRecognition {
	best := model.SheetRecognition{
		SheetName:     t.Name,
		Table:         model.TableUnknown,
		MissingFields: []string{},
	}
	for _, rule := range r.rules {
		_, missing := r.mapper.Resolve(t.Headers, rule.Roles...)
		hit := len(rule.Roles) - len(missing)
		score := float64(hit)/float64(len(rule.Roles)) + nameBoost(rule, t.Name)
		if score > best.Score {
			best.Table = rule.Table
			best.Score = score
			best.MissingFields = missing
		}
	}
	if best.Score < recognizeThreshold {
		best.Table = model.TableUnknown
	}
	return best
}

// Resolve 为每张逻辑表挑选一个 sheet
// 分数高者优先，同分按工作簿中的顺序
func (r *SheetRecognizer) Resolve(tables []*Table) (model.ResolveResult, []model.SheetRecognition) {
	result := model.ResolveResult{
		Sheets:        make(map[model.TableName]string),
		UnknownSheets: []string{},
		UnusedSheets:  []string{},
	}

	recognitions := make([]model.SheetRecognition, 0, len(tables))
	for _, t := range tables {
		recognitions = append(recognitions, r.Recognize(t))
	}

	order := make([]int, len(recognitions))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return recognitions[order[a]].Score > recognitions[order[b]].Score
	})

	for _, i := range order {
		rec := recognitions[i]
		if rec.Table == model.TableUnknown {
			continue
		}
		if _, taken := result.Sheets[rec.Table]; taken {
			continue
		}
		result.Sheets[rec.Table] = rec.SheetName
	}

	selected := make(map[string]bool, len(result.Sheets))
	for _, name := range result.Sheets {
		selected[name] = true
	}
	for _, rec := range recognitions {
		switch {
		case rec.Table == model.TableUnknown:
			result.UnknownSheets = append(result.UnknownSheets, rec.SheetName)
		case !selected[rec.SheetName]:
			result.UnusedSheets = append(result.UnusedSheets, rec.SheetName)
		}
	}

	sort.Strings(result.UnknownSheets)
	sort.Strings(result.UnusedSheets)
	return result, recognitions
}
