package parser

import (
	"testing"

	"economat/internal/model"
)

func TestSheetRecognizer_Recognize(t *testing.T) {
	t.Parallel()

	r := NewSheetRecognizer(nil)

	tests := []struct {
		name    string
		sheet   string
		headers []string
		want    model.TableName
	}{
		{"标准名", "tbl_Produits", nil, model.TableProducts},
		{"尾随空格", "tbl_Produits ", nil, model.TableProducts},
		{"关键词", "Ventes 2026", nil, model.TableSales},
		{"英文关键词", "Recipes", nil, model.TableRecipes},
		{"按表头识别", "Feuil3", []string{"Code ingrédient", "Stock initial", "Valeur initiale"}, model.TableStock},
		{"采购表头", "Feuil4", []string{"Code ingrédient", "Qté achetée", "Montant achat"}, model.TablePurchases},
		{"费用表头", "Feuil5", []string{"Libellé", "Type répartition", "Montant mensuel"}, model.TableCharges},
		{"无法识别", "Notes", []string{"Commentaire"}, model.TableUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := r.Recognize(&Table{Name: tt.sheet, Headers: tt.headers})
			if got.Table != tt.want {
				t.Fatalf("sheet %q recognized as %s (score %.2f), want %s", tt.sheet, got.Table, got.Score, tt.want)
			}
		})
	}
}

func TestSheetRecognizer_ResolvePrefersExactName(t *testing.T) {
	t.Parallel()

	r := NewSheetRecognizer(nil)
	tables := []*Table{
		{Name: "Produits archivés", Headers: []string{"Code produit", "Produit", "Prix Menu", "CMP"}},
		{Name: "tbl_Produits", Headers: []string{"Code produit"}},
		{Name: "tbl_Ventes"},
		{Name: "Notes"},
	}

	res, recs := r.Resolve(tables)
	if len(recs) != 4 {
		t.Fatalf("recognitions=%d", len(recs))
	}
	if res.Sheets[model.TableProducts] != "tbl_Produits" {
		t.Fatalf("products sheet=%q", res.Sheets[model.TableProducts])
	}
	if res.Sheets[model.TableSales] != "tbl_Ventes" {
		t.Fatalf("sales sheet=%q", res.Sheets[model.TableSales])
	}
	if len(res.UnusedSheets) != 1 || res.UnusedSheets[0] != "Produits archivés" {
		t.Fatalf("unused=%v", res.UnusedSheets)
	}
	if len(res.UnknownSheets) != 1 || res.UnknownSheets[0] != "Notes" {
		t.Fatalf("unknown=%v", res.UnknownSheets)
	}
}
