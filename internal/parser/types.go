package parser

// Table 原始数据表：表头 + 字符串单元格
// 由 excel 读取或 CSV 导入得到，尚未映射到固定结构
type Table struct {
	Name    string     `json:"name"`
	Headers []string   `json:"headers"`
	Rows    [][]string `json:"rows"`
}

// NewTable 由 GetRows 风格的二维数组构造表（首行为表头）
func NewTable(name string, rows [][]string) *Table {
	t := &Table{Name: name}
	if len(rows) == 0 {
		return t
	}
	t.Headers = rows[0]
	for _, row := range rows[1:] {
		if isBlankRow(row) {
			continue
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

// Cell 安全读取单元格，越界返回空串
func Cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}

func isBlankRow(row []string) bool {
	for _, v := range row {
		if NormalizeColumnName(v) != "" {
			return false
		}
	}
	return true
}
