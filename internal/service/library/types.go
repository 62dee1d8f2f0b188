package library

import "time"

// Entry 工作簿库中的一个工作簿
type Entry struct {
	WorkbookID   string    `json:"workbookId"`
	Name         string    `json:"name"`
	Path         string    `json:"path"`
	External     bool      `json:"external"` // 外部文件（-file / 配置指定），删除时不删文件
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
	LastOpenedAt time.Time `json:"lastOpenedAt"`
	SavedSales   int       `json:"savedSales"`
	CanUndo      bool      `json:"canUndo"`
}

// Index 库索引文件：data/workbooks.json
type Index struct {
	SchemaVersion int     `json:"schemaVersion"`
	LastActiveID  string  `json:"lastActiveId"`
	Items         []Entry `json:"items"`
}

// HistoryAction 历史记录类型
type HistoryAction string

const (
	ActionImport HistoryAction = "import"
	ActionSave   HistoryAction = "save"
	ActionUndo   HistoryAction = "undo"
)

// HistoryItem 工作簿操作记录
type HistoryItem struct {
	At     time.Time     `json:"at"`
	Action HistoryAction `json:"action"`
	Lines  int           `json:"lines,omitempty"`
	Note   string        `json:"note,omitempty"`
}

// Detail 工作簿详情（/api/workbooks/:id）
type Detail struct {
	Entry   Entry         `json:"entry"`
	History []HistoryItem `json:"history"`
}
