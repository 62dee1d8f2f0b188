package excel

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"economat/internal/model"
	"economat/internal/parser"
)

// DefaultSalesSheet 工作簿中没有销售 sheet 时新建的 sheet 名
const DefaultSalesSheet = "tbl_Ventes"

// 录入销售时写入的列（语义角色 -> 缺列时新建的列名）
var journalColumns = []struct {
	Role   parser.Role
	Header string
}{
	{parser.RoleSaleDate, "Date"},
	{parser.RoleProductCode, "Code produit"},
	{parser.RoleProductName, "Produit"},
	{parser.RoleQuantitySold, "Qté Vendue"},
	{parser.RoleMenuPrice, "Prix Menu"},
	{parser.RoleRevenueLine, "CA ligne"},
	{parser.RoleUnitCost, "CMP_par_portion"},
	{parser.RoleMaterialLine, "Coût matière ligne"},
}

// JournalWriter 把新录入的销售流水追加到工作簿文件
// 其他 sheet 原样保留；写入临时文件后原子替换
type JournalWriter struct {
	mapper *parser.FieldMapper
}

// NewJournalWriter 创建写入器
func NewJournalWriter(cfg parser.ColumnConfig) *JournalWriter {
	return &JournalWriter{mapper: parser.NewFieldMapper(cfg)}
}

// Append 追加流水行到 sheet；sheet 为空时使用（必要时新建）DefaultSalesSheet
func (w *JournalWriter) Append(path, sheet string, lines []model.JournalLine) error {
	if len(lines) == 0 {
		return nil
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return fmt.Errorf("failed to open excel %s: %w", path, err)
	}
	defer f.Close()

	if err := w.AppendTo(f, sheet, lines); err != nil {
		return err
	}
	return saveAtomic(f, path)
}

// AppendTo 在内存工作簿上追加流水行
func (w *JournalWriter) AppendTo(f *excelize.File, sheet string, lines []model.JournalLine) error {
	if sheet == "" {
		sheet = DefaultSalesSheet
		if idx, _ := f.GetSheetIndex(sheet); idx < 0 {
			if _, err := f.NewSheet(sheet); err != nil {
				return fmt.Errorf("failed to create sheet %s: %w", sheet, err)
			}
		}
	} else if idx, _ := f.GetSheetIndex(sheet); idx < 0 {
		return fmt.Errorf("%w: %s", ErrSheetNotFound, sheet)
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return fmt.Errorf("failed to read sheet %s: %w", sheet, err)
	}
	var headers []string
	if len(rows) > 0 {
		headers = rows[0]
	}

	roles := make([]parser.Role, len(journalColumns))
	for i, c := range journalColumns {
		roles[i] = c.Role
	}
	index, _ := w.mapper.Resolve(headers, roles...)

	// 缺失的列追加到表头末尾
	next := len(headers)
	for _, c := range journalColumns {
		if index.Has(c.Role) {
			continue
		}
		cell, _ := excelize.CoordinatesToCellName(next+1, 1)
		if err := f.SetCellValue(sheet, cell, c.Header); err != nil {
			return err
		}
		index[c.Role] = next
		next++
	}

	rowNum := len(rows) + 1
	if rowNum < 2 {
		rowNum = 2
	}
	for _, line := range lines {
		values := map[parser.Role]interface{}{
			parser.RoleSaleDate:     line.Date,
			parser.RoleProductCode:  line.ProductCode,
			parser.RoleProductName:  line.Product,
			parser.RoleQuantitySold: line.Quantity,
			parser.RoleMenuPrice:    line.Price,
			parser.RoleRevenueLine:  line.Revenue,
			parser.RoleUnitCost:     line.UnitCost,
			parser.RoleMaterialLine: line.MaterialCost,
		}
		for role, v := range values {
			cell, _ := excelize.CoordinatesToCellName(index[role]+1, rowNum)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return err
			}
		}
		rowNum++
	}
	return nil
}

// saveAtomic 写入同目录临时文件后 rename 覆盖原文件
func saveAtomic(f *excelize.File, path string) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".economat-*.xlsx")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := f.WriteTo(tmp); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace workbook: %w", err)
	}
	return nil
}

// SaveAs 原子写入导出文件
func SaveAs(f *excelize.File, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return saveAtomic(f, path)
}
