package store

import (
	"errors"
	"sync"
	"time"

	"economat/internal/model"
)

// ErrNoWorkbook 尚未加载工作簿
var ErrNoWorkbook = errors.New("no workbook loaded")

// SaveFunc 将待保存的销售流水写回工作簿文件
// sheet 为加载时识别出的销售 sheet，未识别时为空
type SaveFunc func(path, sheet string, lines []model.JournalLine) error

// MemoryStore 当前工作簿的内存存储（仅供 HTTP 层使用，计算核心不依赖它）
type MemoryStore struct {
	mu sync.RWMutex

	workbook *model.Workbook
	report   model.LoadReport
	path     string

	// 已录入但尚未写回文件的销售流水
	pending []model.JournalLine

	saver     SaveFunc
	saveDelay time.Duration
	saveTimer *time.Timer
	lastSave  error
}

// NewMemoryStore 创建内存存储
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		workbook: &model.Workbook{},
	}
}

// SetSaver 设置写回函数与自动保存延迟（delay 为 0 表示每次录入立即保存）
func (s *MemoryStore) SetSaver(fn SaveFunc, delay time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saver = fn
	s.saveDelay = delay
}

// SetWorkbook 整体替换当前工作簿，未保存的流水被丢弃
func (s *MemoryStore) SetWorkbook(wb *model.Workbook, report model.LoadReport, path string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.saveTimer != nil {
		s.saveTimer.Stop()
		s.saveTimer = nil
	}
	s.workbook = wb.Clone()
	s.report = report
	s.path = path
	s.pending = nil
}

// Workbook 返回当前工作簿副本
func (s *MemoryStore) Workbook() *model.Workbook {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.workbook.Clone()
}

// LoadReport 获取加载报告
func (s *MemoryStore) LoadReport() model.LoadReport {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.report
}

// Path 当前工作簿文件路径（上传或示例数据时可能为空）
func (s *MemoryStore) Path() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.path
}

// HasData 是否已加载任意数据
func (s *MemoryStore) HasData() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, n := range s.workbook.RowCounts() {
		if n > 0 {
			return true
		}
	}
	return len(s.workbook.Journal.Lines) > 0
}

// FindProduct 在产品目录中按编码或名称查找
func (s *MemoryStore) FindProduct(key string) (model.Product, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.workbook.FindProduct(key)
}

// AppendSale 追加一笔销售到流水与销售行，并标记流水具备的列
func (s *MemoryStore) AppendSale(line model.JournalLine, sale model.SaleLine, cols model.JournalColumns) {
	s.AppendJournal(model.Journal{Columns: cols, Lines: []model.JournalLine{line}}, []model.SaleLine{sale})
}

// AppendJournal 批量追加导入的流水；流水行与销售行不要求一一对应
func (s *MemoryStore) AppendJournal(journal model.Journal, sales []model.SaleLine) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.workbook.Journal.Lines = append(s.workbook.Journal.Lines, journal.Lines...)
	s.workbook.Sales = append(s.workbook.Sales, sales...)
	s.pending = append(s.pending, journal.Lines...)
	s.markColumnsLocked(journal.Columns)
}

// markColumnsLocked 合并流水列标记，调用方需持有写锁
func (s *MemoryStore) markColumnsLocked(cols model.JournalColumns) {
	c := &s.workbook.Journal.Columns
	c.Product = c.Product || cols.Product
	c.Quantity = c.Quantity || cols.Quantity
	c.Price = c.Price || cols.Price
	c.Revenue = c.Revenue || cols.Revenue
	c.UnitCost = c.UnitCost || cols.UnitCost
	c.MaterialCost = c.MaterialCost || cols.MaterialCost
}

// JournalTail 最近 limit 条销售流水
func (s *MemoryStore) JournalTail(limit int) []model.JournalLine {
	s.mu.RLock()
	defer s.mu.RUnlock()

	lines := s.workbook.Journal.Lines
	if limit > 0 && len(lines) > limit {
		lines = lines[len(lines)-limit:]
	}
	return append([]model.JournalLine(nil), lines...)
}

// PendingCount 待保存流水条数
func (s *MemoryStore) PendingCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.pending)
}

// AutoSaveEnabled 是否启用延迟自动保存
func (s *MemoryStore) AutoSaveEnabled() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.saveDelay > 0
}

// ScheduleSave 延迟保存（重复调用会重置计时器）
func (s *MemoryStore) ScheduleSave() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.saver == nil || s.saveDelay <= 0 {
		return
	}
	if s.saveTimer != nil {
		s.saveTimer.Stop()
	}
	s.saveTimer = time.AfterFunc(s.saveDelay, func() {
		err := s.SaveNow()
		s.mu.Lock()
		s.lastSave = err
		s.mu.Unlock()
	})
}

// LastAutoSaveError 最近一次自动保存的错误
func (s *MemoryStore) LastAutoSaveError() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastSave
}

// SaveNow 立即把待保存流水写回文件；失败时保留待保存数据
func (s *MemoryStore) SaveNow() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.pending) == 0 {
		return nil
	}
	if s.saver == nil || s.path == "" {
		return ErrNoWorkbook
	}
	if err := s.saver(s.path, s.report.Sheets[model.TableSales], s.pending); err != nil {
		return err
	}
	s.pending = nil
	return nil
}
