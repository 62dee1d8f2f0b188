package parser

import (
	"testing"

	"economat/internal/model"
)

func sampleTables() []*Table {
	return []*Table{
		NewTable("tbl_Produits ", [][]string{
			{"Code produit", "Produit", "Famille", "Prix Menu", "Coût Moyen Portion"},
			{" P1 ", "Tajine", "Plats", "45", "12,5"},
			{"P2", "Thé", "Boissons", "8", "1"},
		}),
		NewTable("tbl_Ventes", [][]string{
			{"Date", "Produit", "Qté Vendue", "Prix Menu", "CA ligne"},
			{"2026-01-02", "Tajine", "2", "45", "90"},
			{"2026-01-02", "Thé", "3", "", "24"},
			{"2026-01-03", "Inconnu", "1", "10", "10"},
		}),
		NewTable("tbl_Recettes", [][]string{
			{"Produit", "Code ingrédient", "Quantité", "Unité"},
			{"Tajine", "VIANDE", "200", "g"},
		}),
		NewTable("tbl_Stock", [][]string{
			{"Code ingrédient", "Stock initial", "Valeur initiale"},
			{"VIANDE", "10", "100"},
		}),
		NewTable("tbl_Achats", [][]string{
			{"Code ingrédient", "Qté achetée", "Montant achat"},
			{"VIANDE", "10", "150"},
			{"VIANDE", "abc", ""},
		}),
		NewTable("Notes", [][]string{{"Texte"}, {"bonjour"}}),
	}
}

func TestWorkbookBuilder_Build(t *testing.T) {
	t.Parallel()

	wb, report := NewWorkbookBuilder(nil).Build(sampleTables())

	if len(wb.Products) != 2 || wb.Products[0].Code != "P1" || wb.Products[0].CostPerPortion != 12.5 {
		t.Fatalf("unexpected products: %+v", wb.Products)
	}

	if len(wb.Journal.Lines) != 3 {
		t.Fatalf("journal lines=%d", len(wb.Journal.Lines))
	}
	if !wb.Journal.Columns.Revenue || wb.Journal.Columns.MaterialCost {
		t.Fatalf("unexpected journal columns: %+v", wb.Journal.Columns)
	}

	if len(wb.Sales) != 3 {
		t.Fatalf("sales=%d", len(wb.Sales))
	}
	first := wb.Sales[0]
	if first.ProductCode != "P1" || first.Family != "Plats" || first.QuantitySold != 2 || first.MenuPrice != 45 {
		t.Fatalf("unexpected sale: %+v", first)
	}
	// 售价列存在但单元格为空：按 0 处理，不从目录补
	if wb.Sales[1].ProductCode != "P2" || wb.Sales[1].MenuPrice != 0 {
		t.Fatalf("unexpected sale: %+v", wb.Sales[1])
	}
	if wb.Sales[2].ProductCode != "Inconnu" || wb.Sales[2].Family != "" {
		t.Fatalf("unmatched product should keep its name as key: %+v", wb.Sales[2])
	}

	if len(wb.Recipes) != 1 || wb.Recipes[0].ProductCode != "P1" || wb.Recipes[0].Unit != "g" {
		t.Fatalf("unexpected recipes: %+v", wb.Recipes)
	}
	if len(wb.Purchases) != 2 || wb.Purchases[1].PurchasedQuantity != 0 {
		t.Fatalf("malformed numbers should coerce to 0: %+v", wb.Purchases)
	}

	if wb.Charges == nil || len(wb.Charges) != 0 {
		t.Fatalf("absent charges sheet should be an empty table")
	}
	if _, ok := report.Sheets[model.TableCharges]; ok {
		t.Fatalf("charges should not be resolved")
	}
	if report.Sheets[model.TableProducts] != "tbl_Produits " {
		t.Fatalf("products sheet=%q", report.Sheets[model.TableProducts])
	}
	if report.RowCounts[model.TableSales] != 3 {
		t.Fatalf("row counts: %+v", report.RowCounts)
	}
	if len(report.UnusedNames) != 1 || report.UnusedNames[0] != "Notes" {
		t.Fatalf("unused: %v", report.UnusedNames)
	}
	if _, ok := report.Unresolved[model.TableRecipes]; ok {
		t.Fatalf("recipe product name column should satisfy product code: %v", report.Unresolved[model.TableRecipes])
	}
}

func TestWorkbookBuilder_SalesWithoutProductColumn(t *testing.T) {
	t.Parallel()

	b := NewWorkbookBuilder(nil)
	tbl := NewTable("Ventes", [][]string{
		{"Article", "Qty", "Prix"},
		{"Couscous", "2", "50"},
	})
	products := []model.Product{{Code: "C1", Name: "Couscous", Family: "Plats", MenuPrice: 55}}

	journal, sales, missing := b.Sales(tbl, products)
	if journal.Columns.Product {
		t.Fatalf("product column should be reported as absent")
	}
	if journal.Lines[0].Product != "Couscous" {
		t.Fatalf("first column should be used as product, got %q", journal.Lines[0].Product)
	}
	if sales[0].ProductCode != "C1" || sales[0].Family != "Plats" || sales[0].MenuPrice != 50 {
		t.Fatalf("unexpected sale: %+v", sales[0])
	}
	if len(missing) == 0 {
		t.Fatalf("expected missing roles")
	}
}

func TestWorkbookBuilder_SalesWithCodeOnly(t *testing.T) {
	t.Parallel()

	b := NewWorkbookBuilder(nil)
	tbl := NewTable("caisse.csv", [][]string{
		{"Date", "Code produit", "Qté Vendue"},
		{"2026-02-01", "P2", "4"},
		{"2026-02-01", "X9", "1"},
	})
	products := []model.Product{{Code: "P2", Name: "Couscous", Family: "Plats", MenuPrice: 50, CostPerPortion: 16}}

	journal, sales, missing := b.Sales(tbl, products)
	if !journal.Columns.Product || journal.Columns.Price {
		t.Fatalf("unexpected columns: %+v", journal.Columns)
	}
	got := journal.Lines[0]
	if got.ProductCode != "P2" || got.Product != "Couscous" || got.Date != "2026-02-01" {
		t.Fatalf("product should come from the catalog: %+v", got)
	}
	if got.Price != 50 || got.UnitCost != 16 {
		t.Fatalf("price and cost should come from the catalog: %+v", got)
	}
	if unknown := journal.Lines[1]; unknown.Product != "X9" || unknown.ProductCode != "X9" {
		t.Fatalf("unmatched code should stay as product: %+v", unknown)
	}
	if len(sales) != 2 || sales[0].ProductCode != "P2" || sales[0].MenuPrice != 50 || sales[0].Family != "Plats" {
		t.Fatalf("unexpected sales: %+v", sales)
	}
	for _, role := range missing {
		if role == string(RoleProductName) || role == string(RoleProductCode) {
			t.Fatalf("product roles should not be reported missing: %v", missing)
		}
	}
}

func TestWorkbookBuilder_EmptyInput(t *testing.T) {
	t.Parallel()

	wb, report := NewWorkbookBuilder(nil).Build(nil)
	for table, n := range wb.RowCounts() {
		if n != 0 {
			t.Fatalf("%s should be empty", table)
		}
	}
	if wb.Products == nil || wb.Sales == nil || wb.Journal.Lines == nil {
		t.Fatalf("empty tables must not be nil")
	}
	if len(report.Sheets) != 0 {
		t.Fatalf("unexpected sheets: %v", report.Sheets)
	}
}
