package excel

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// SampleFileName 示例工作簿文件名
const SampleFileName = "economat_exemple.xlsx"

// sampleSheets 示例数据（首行为表头）
var sampleSheets = []struct {
	Name string
	Rows [][]interface{}
}{
	{"tbl_Produits", [][]interface{}{
		{"Code produit", "Produit", "Famille", "Prix Menu", "Coût Moyen Portion"},
		{"P1", "Tajine poulet", "Plats", 45, 14},
		{"P2", "Couscous", "Plats", 50, 16},
		{"P3", "Thé menthe", "Boissons", 8, 1.2},
	}},
	{"tbl_Ventes", [][]interface{}{
		{"Date", "Code produit", "Produit", "Qté Vendue", "Prix Menu", "CA ligne", "CMP_par_portion", "Coût matière ligne"},
		{"2026-01-05 12:10:00", "P1", "Tajine poulet", 12, 45, 540, 14, 168},
		{"2026-01-05 12:40:00", "P2", "Couscous", 8, 50, 400, 16, 128},
		{"2026-01-05 16:00:00", "P3", "Thé menthe", 30, 8, 240, 1.2, 36},
		{"2026-01-06 12:30:00", "P1", "Tajine poulet", 6, 45, 270, 14, 84},
		{"2026-01-06 17:00:00", "P3", "Thé menthe", 20, 8, 160, 1.2, 24},
	}},
	{"tbl_Recettes", [][]interface{}{
		{"Code produit", "Code ingrédient", "Quantité", "Unité"},
		{"P1", "POULET", 300, "g"},
		{"P1", "LEGUMES", 150, "g"},
		{"P2", "SEMOULE", 200, "g"},
		{"P2", "LEGUMES", 250, "g"},
		{"P3", "THE", 5, "g"},
		{"P3", "SUCRE", 20, "g"},
	}},
	{"tbl_Stock", [][]interface{}{
		{"Code ingrédient", "Stock initial", "Valeur initiale"},
		{"POULET", 10, 350},
		{"LEGUMES", 20, 200},
		{"SEMOULE", 25, 250},
		{"THE", 2, 300},
		{"SUCRE", 10, 120},
	}},
	{"tbl_Achats", [][]interface{}{
		{"Code ingrédient", "Qté achetée", "Montant achat"},
		{"POULET", 10, 370},
		{"LEGUMES", 30, 330},
		{"THE", 1, 160},
	}},
	{"tbl_Charges", [][]interface{}{
		{"Libellé", "Type répartition", "Famille", "Montant mensuel"},
		{"Loyer", "Global", "", 600},
		{"Électricité", "Global", "", 150},
		{"Gaz cuisine", "Spécifique", "Plats", 120},
		{"Vaisselle", "Spécifique", "Boissons", 30},
	}},
}

// SampleWorkbook 构建内置示例工作簿（所有逻辑表齐全）
func SampleWorkbook() (*excelize.File, error) {
	f := excelize.NewFile()
	for i, sheet := range sampleSheets {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", sheet.Name); err != nil {
				return nil, err
			}
		} else if _, err := f.NewSheet(sheet.Name); err != nil {
			return nil, err
		}
		for r, row := range sheet.Rows {
			cell, _ := excelize.CoordinatesToCellName(1, r+1)
			values := row
			if err := f.SetSheetRow(sheet.Name, cell, &values); err != nil {
				return nil, fmt.Errorf("failed to write sample sheet %s: %w", sheet.Name, err)
			}
		}
	}
	f.SetActiveSheet(0)
	return f, nil
}
