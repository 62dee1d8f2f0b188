package model

import "time"

// ResolveResult 识别阶段产物：逻辑表到 sheet 名的映射
type ResolveResult struct {
	Sheets        map[TableName]string `json:"sheets"`
	UnknownSheets []string             `json:"unknownSheets"`
	UnusedSheets  []string             `json:"unusedSheets"`
}

// LoadReport 工作簿加载报告
type LoadReport struct {
	LoadID      string                 `json:"loadId"`
	FileName    string                 `json:"fileName"`
	LoadedAt    time.Time              `json:"loadedAt"`
	Sheets      map[TableName]string   `json:"sheets"`
	RowCounts   map[TableName]int      `json:"rowCounts"`
	Unresolved  map[TableName][]string `json:"unresolvedColumns"` // 未找到的语义列（按零值处理）
	SheetNames  []string               `json:"sheetNames"`
	UnusedNames []string               `json:"unusedSheets"`
}
