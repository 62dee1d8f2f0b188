package parser

// Role 语义列角色
type Role string

const (
	RoleProductCode    Role = "product_code"
	RoleProductName    Role = "product_name"
	RoleFamily         Role = "family"
	RoleMenuPrice      Role = "menu_price"
	RoleCostPerPortion Role = "cost_per_portion"

	RoleSaleDate     Role = "sale_date"
	RoleQuantitySold Role = "quantity_sold"
	RoleRevenueLine  Role = "revenue_line"
	RoleUnitCost     Role = "unit_cost"
	RoleMaterialLine Role = "material_cost_line"

	RoleIngredientCode Role = "ingredient_code"
	RoleRecipeQuantity Role = "recipe_quantity"
	RoleRecipeUnit     Role = "recipe_unit"

	RoleOpeningQuantity Role = "opening_quantity"
	RoleOpeningValue    Role = "opening_value"

	RolePurchasedQuantity Role = "purchased_quantity"
	RolePurchasedValue    Role = "purchased_value"

	RoleChargeLabel    Role = "charge_label"
	RoleAllocationType Role = "allocation_type"
	RoleMonthlyAmount  Role = "monthly_amount"
)

// ColumnConfig 每个语义角色可接受的列名（有序，先匹配者优先）
type ColumnConfig map[Role][]string

// DefaultColumnConfig 默认列名别名
func DefaultColumnConfig() ColumnConfig {
	return ColumnConfig{
		RoleProductCode:    {"Code produit", "code", "code_produit", "Code"},
		RoleProductName:    {"Produit", "Nom du Produit", "Nom Produit", "Description", "Désignation"},
		RoleFamily:         {"Famille", "Famille produit", "Catégorie", "Family"},
		RoleMenuPrice:      {"Prix Menu", "Prix de vente", "prix_vente", "Prix", "PrixVente"},
		RoleCostPerPortion: {"Coût Moyen Portion", "CMP_par_portion", "Coût_par_portion", "CMP"},

		RoleSaleDate:     {"Date", "date", "Date vente"},
		RoleQuantitySold: {"Qté Vendue", "Qté vendue", "Quantité", "qte", "Qte", "Qty", "quantity"},
		RoleRevenueLine:  {"CA ligne", "CA", "Montant"},
		RoleUnitCost:     {"CMP_par_portion", "Coût Moyen Portion", "Coût_par_portion", "CMP"},
		RoleMaterialLine: {"Coût matière ligne", "Coût matière", "Cout_ligne"},

		RoleIngredientCode: {"Code ingrédient", "Code ingredient", "code_ingredient", "Code MP", "Code article", "Ingrédient"},
		RoleRecipeQuantity: {"Quantité", "Qté", "Qte", "Quantité portion", "Qty"},
		RoleRecipeUnit:     {"Unité", "Unite", "Unit", "UM"},

		RoleOpeningQuantity: {"Stock initial", "Qté initiale", "Quantité initiale", "Qté stock", "Quantité"},
		RoleOpeningValue:    {"Valeur initiale", "Valeur stock", "Valeur"},

		RolePurchasedQuantity: {"Qté achetée", "Quantité achetée", "Quantité", "Qté"},
		RolePurchasedValue:    {"Montant achat", "Valeur achat", "Montant", "Valeur"},

		RoleChargeLabel:    {"Libellé", "Charge", "Label"},
		RoleAllocationType: {"Type répartition", "Répartition", "Type", "Allocation"},
		RoleMonthlyAmount:  {"Montant mensuel", "Montant", "Monthly amount"},
	}
}

// WithOverrides 用户配置的别名追加在默认别名之前
func (c ColumnConfig) WithOverrides(overrides map[string][]string) ColumnConfig {
	out := make(ColumnConfig, len(c))
	for role, aliases := range c {
		out[role] = append([]string(nil), aliases...)
	}
	for key, aliases := range overrides {
		role := Role(key)
		if len(aliases) == 0 {
			continue
		}
		merged := append([]string(nil), aliases...)
		out[role] = append(merged, out[role]...)
	}
	return out
}

// ColumnIndex 表头解析结果：角色 -> 列索引
type ColumnIndex map[Role]int

// Has 该角色是否找到对应列
func (ci ColumnIndex) Has(role Role) bool {
	_, ok := ci[role]
	return ok
}

// Get 读取某角色的单元格，未解析的角色返回空串
func (ci ColumnIndex) Get(row []string, role Role) string {
	idx, ok := ci[role]
	if !ok {
		return ""
	}
	return Cell(row, idx)
}

// FieldMapper 字段映射器：在表头中为每个角色找到一列
type FieldMapper struct {
	config ColumnConfig
}

// NewFieldMapper 创建字段映射器
func NewFieldMapper(cfg ColumnConfig) *FieldMapper {
	if cfg == nil {
		cfg = DefaultColumnConfig()
	}
	return &FieldMapper{config: cfg}
}

// Config 当前列名配置
func (m *FieldMapper) Config() ColumnConfig {
	return m.config
}

// Resolve 为给定角色解析列索引，返回未找到的角色
// 每个角色先按原样比较（trim 后），再按 FoldKey 宽松比较；别名顺序决定优先级
// 同一列不会被两个角色同时占用，角色顺序在前者优先
func (m *FieldMapper) Resolve(headers []string, roles ...Role) (ColumnIndex, []string) {
	exact := make(map[string]int, len(headers))
	folded := make(map[string]int, len(headers))
	for i, h := range headers {
		h = NormalizeColumnName(h)
		if h == "" {
			continue
		}
		if _, ok := exact[h]; !ok {
			exact[h] = i
		}
		k := FoldKey(h)
		if _, ok := folded[k]; !ok {
			folded[k] = i
		}
	}

	index := make(ColumnIndex, len(roles))
	used := make(map[int]bool, len(roles))
	missing := []string{}

	for _, role := range roles {
		idx, ok := m.match(role, exact, folded, used)
		if !ok {
			missing = append(missing, string(role))
			continue
		}
		index[role] = idx
		used[idx] = true
	}
	return index, missing
}

func (m *FieldMapper) match(role Role, exact, folded map[string]int, used map[int]bool) (int, bool) {
	aliases := m.config[role]
	for _, alias := range aliases {
		if idx, ok := exact[NormalizeColumnName(alias)]; ok && !used[idx] {
			return idx, true
		}
	}
	for _, alias := range aliases {
		if idx, ok := folded[FoldKey(alias)]; ok && !used[idx] {
			return idx, true
		}
	}
	return -1, false
}
