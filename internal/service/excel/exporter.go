package excel

import (
	"errors"
	"fmt"

	"github.com/xuri/excelize/v2"

	"economat/internal/model"
	"economat/internal/util"
)

// 导出 sheet 名
const (
	SheetPilotage    = "pilotage"
	SheetKpi         = "kpi"
	SheetIngredients = "ingredients"
	SheetMaterials   = "materials"
)

// PilotageHeaders 盈利分析表导出列
var PilotageHeaders = []string{
	"Code produit", "Produit", "Famille", "Prix Menu",
	"Coût matière portion", "Charge globale portion", "Charge spécifique portion", "Charge totale portion",
	"Marge brute", "Marge nette", "Food cost %", "Charge %",
	"Seuil tolérance", "Alerte", "Score",
}

// PilotageRecord 一行盈利分析表的导出值（金额保留两位，比率保留四位）
func PilotageRecord(r model.PilotageRow) []interface{} {
	return []interface{}{
		r.ProductCode, r.Name, r.Family, util.RoundMoney(r.MenuPrice),
		util.RoundMoney(r.MaterialCostPerPortion), util.RoundMoney(r.GlobalChargePerPortion),
		util.RoundMoney(r.SpecificChargePerPortion), util.RoundMoney(r.TotalChargePerPortion),
		util.RoundMoney(r.GrossMargin), util.RoundMoney(r.NetMargin),
		util.RoundTo(r.FoodCostRatio, 4), util.RoundTo(r.ChargeRatio, 4),
		r.ToleranceThreshold, string(r.AlertStatus), r.Score,
	}
}

// Exporter Excel导出器
type Exporter struct{}

// NewExporter 创建导出器
func NewExporter() *Exporter {
	return &Exporter{}
}

// Export 导出计算结果：盈利分析表 + KPI + 原料成本 + 每份原料成本
func (e *Exporter) Export(report *model.Report) (*excelize.File, error) {
	if report == nil {
		return nil, errors.New("report is nil")
	}

	f := excelize.NewFile()
	f.SetSheetName("Sheet1", SheetPilotage)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#E2E8F0"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	// 盈利分析表
	pilotage := make([][]interface{}, 0, len(report.Pilotage))
	for _, r := range report.Pilotage {
		pilotage = append(pilotage, PilotageRecord(r))
	}
	if err := writeSheet(f, SheetPilotage, PilotageHeaders, pilotage, headerStyle); err != nil {
		return nil, err
	}
	if err := highlightAlerts(f, report.Pilotage); err != nil {
		return nil, err
	}
	f.SetColWidth(SheetPilotage, "A", "C", 18)
	f.SetColWidth(SheetPilotage, "D", "O", 14)

	// KPI
	kpis := [][]interface{}{
		{"Total CA", util.RoundMoney(report.Kpis.TotalRevenue)},
		{"Coût matière total", util.RoundMoney(report.Kpis.TotalMaterialCost)},
		{"Food cost %", util.RoundTo(report.Kpis.FoodCostPercentage, 2)},
	}
	for _, p := range report.Kpis.TopProducts {
		kpis = append(kpis, []interface{}{"Top: " + p.Product, util.RoundMoney(p.Revenue)})
	}
	if err := addSheet(f, SheetKpi, []string{"Indicateur", "Valeur"}, kpis, headerStyle); err != nil {
		return nil, err
	}
	f.SetColWidth(SheetKpi, "A", "A", 30)

	// 原料 CMP
	ingredients := make([][]interface{}, 0, len(report.Ingredients))
	for _, c := range report.Ingredients {
		ingredients = append(ingredients, []interface{}{
			c.IngredientCode, c.TotalQuantity, util.RoundMoney(c.TotalValue), util.RoundTo(c.EffectiveUnitCost, 4),
		})
	}
	if err := addSheet(f, SheetIngredients, []string{"Code ingrédient", "Quantité totale", "Valeur totale", "CMP"}, ingredients, headerStyle); err != nil {
		return nil, err
	}

	// 每份原料成本
	materials := make([][]interface{}, 0, len(report.MaterialCosts))
	for _, m := range report.MaterialCosts {
		materials = append(materials, []interface{}{m.ProductCode, util.RoundTo(m.MaterialCostPerPortion, 4)})
	}
	if err := addSheet(f, SheetMaterials, []string{"Code produit", "Coût matière portion"}, materials, headerStyle); err != nil {
		return nil, err
	}

	f.SetActiveSheet(0)
	return f, nil
}

func addSheet(f *excelize.File, name string, headers []string, rows [][]interface{}, headerStyle int) error {
	if _, err := f.NewSheet(name); err != nil {
		return fmt.Errorf("failed to create sheet %s: %w", name, err)
	}
	return writeSheet(f, name, headers, rows, headerStyle)
}

func writeSheet(f *excelize.File, name string, headers []string, rows [][]interface{}, headerStyle int) error {
	header := make([]interface{}, len(headers))
	for i, h := range headers {
		header[i] = h
	}
	if err := f.SetSheetRow(name, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header of %s: %w", name, err)
	}
	if err := f.SetRowStyle(name, 1, 1, headerStyle); err != nil {
		return fmt.Errorf("failed to style header of %s: %w", name, err)
	}
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		r := row
		if err := f.SetSheetRow(name, cell, &r); err != nil {
			return fmt.Errorf("failed to write %s row %d: %w", name, i+2, err)
		}
	}
	return nil
}

// highlightAlerts 亏损行标红、需关注行标黄（仅 Alerte 列）
func highlightAlerts(f *excelize.File, rows []model.PilotageRow) error {
	red, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "#B91C1C"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#FEE2E2"}, Pattern: 1},
	})
	if err != nil {
		return err
	}
	amber, err := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#FEF3C7"}, Pattern: 1},
	})
	if err != nil {
		return err
	}

	alertCol := len(PilotageHeaders) - 1 // Alerte 为倒数第二列
	for i, r := range rows {
		style := 0
		switch r.AlertStatus {
		case model.AlertNotProfitable:
			style = red
		case model.AlertNeedsMonitor:
			style = amber
		default:
			continue
		}
		cell, _ := excelize.CoordinatesToCellName(alertCol, i+2)
		if err := f.SetCellStyle(SheetPilotage, cell, cell, style); err != nil {
			return err
		}
	}
	return nil
}
