package library

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	schemaVersion = 1
	historyLimit  = 50
)

var (
	// ErrNotFound 工作簿不在库中
	ErrNotFound = errors.New("workbook not found")
	// ErrNoUndo 没有可撤销的保存
	ErrNoUndo = errors.New("no undo snapshot")
)

// Manager 工作簿库：保存上传的工作簿、记录当前工作簿、单步撤销上一次保存
type Manager struct {
	dataDir string

	mu       sync.Mutex
	index    Index
	activeID string
}

// NewManager 创建工作簿库（dataDir 不存在时创建）
func NewManager(dataDir string) (*Manager, error) {
	if err := requireNonEmptyString(dataDir, "dataDir is required"); err != nil {
		return nil, err
	}

	m := &Manager{
		dataDir: dataDir,
		index: Index{
			SchemaVersion: schemaVersion,
			Items:         []Entry{},
		},
	}
	if err := m.loadIndex(); err != nil {
		return nil, err
	}
	if _, ok := m.findLocked(m.index.LastActiveID); ok {
		m.activeID = m.index.LastActiveID
	}
	return m, nil
}

func (m *Manager) indexPath() string {
	return filepath.Join(m.dataDir, "workbooks.json")
}

func (m *Manager) entryDir(id string) string {
	return filepath.Join(m.dataDir, "workbooks", id)
}

func (m *Manager) historyPath(id string) string {
	return filepath.Join(m.entryDir(id), "history.json")
}

func (m *Manager) undoPath(id string) string {
	return filepath.Join(m.entryDir(id), "undo.xlsx")
}

func (m *Manager) loadIndex() error {
	path := m.indexPath()
	if !fileExists(path) {
		return writeJSONAtomic(path, m.index)
	}
	var idx Index
	if err := readJSON(path, &idx); err != nil {
		return fmt.Errorf("failed to read workbook index: %w", err)
	}
	if idx.SchemaVersion == 0 {
		idx.SchemaVersion = schemaVersion
	}
	if idx.Items == nil {
		idx.Items = []Entry{}
	}
	m.index = idx
	return nil
}

func (m *Manager) saveIndexLocked() error {
	return writeJSONAtomic(m.indexPath(), m.index)
}

// Import 保存上传的工作簿到库中并设为当前
func (m *Manager) Import(fileName string, data []byte) (Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(data) == 0 {
		return Entry{}, errors.New("empty workbook")
	}

	now := time.Now().UTC()
	id := fmt.Sprintf("w_%s", uuid.New().String()[:8])
	name := safeFileName(fileName)
	entry := Entry{
		WorkbookID:   id,
		Name:         name,
		Path:         filepath.Join(m.entryDir(id), name),
		CreatedAt:    now,
		UpdatedAt:    now,
		LastOpenedAt: now,
	}
	if err := writeBytesAtomic(entry.Path, data); err != nil {
		return Entry{}, fmt.Errorf("failed to store workbook: %w", err)
	}

	m.index.Items = append(m.index.Items, entry)
	m.activateLocked(id)
	m.appendHistoryLocked(id, HistoryItem{At: now, Action: ActionImport, Note: name})
	if err := m.saveIndexLocked(); err != nil {
		return Entry{}, err
	}
	return entry, nil
}

// Register 登记外部工作簿（不复制文件），已登记的路径直接设为当前
func (m *Manager) Register(path string) (Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	abs, err := filepath.Abs(path)
	if err != nil {
		return Entry{}, err
	}
	if !fileExists(abs) {
		return Entry{}, fmt.Errorf("workbook not found: %s", abs)
	}

	now := time.Now().UTC()
	for _, item := range m.index.Items {
		if item.Path == abs {
			item.LastOpenedAt = now
			m.replaceLocked(item)
			m.activateLocked(item.WorkbookID)
			return item, m.saveIndexLocked()
		}
	}

	id := fmt.Sprintf("w_%s", uuid.New().String()[:8])
	entry := Entry{
		WorkbookID:   id,
		Name:         filepath.Base(abs),
		Path:         abs,
		External:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
		LastOpenedAt: now,
	}
	m.index.Items = append(m.index.Items, entry)
	m.activateLocked(id)
	m.appendHistoryLocked(id, HistoryItem{At: now, Action: ActionImport, Note: abs})
	if err := m.saveIndexLocked(); err != nil {
		return Entry{}, err
	}
	return entry, nil
}

// List 库索引（最近打开在前）
func (m *Manager) List() Index {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.refreshLocked()
	out := m.index
	out.Items = append([]Entry(nil), m.index.Items...)
	return out
}

// Active 当前工作簿
func (m *Manager) Active() (Entry, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.findLocked(m.activeID)
	if ok {
		entry.CanUndo = fileExists(m.undoPath(entry.WorkbookID))
	}
	return entry, ok
}

// Select 切换当前工作簿
func (m *Manager) Select(id string) (Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := requireNonEmptyString(id, "workbookId is required"); err != nil {
		return Entry{}, err
	}
	entry, ok := m.findLocked(id)
	if !ok {
		return Entry{}, ErrNotFound
	}
	if !fileExists(entry.Path) {
		return Entry{}, fmt.Errorf("workbook file missing: %s", entry.Path)
	}

	entry.LastOpenedAt = time.Now().UTC()
	m.replaceLocked(entry)
	m.activateLocked(id)
	return entry, m.saveIndexLocked()
}

// Detail 工作簿详情与操作记录
func (m *Manager) Detail(id string) (*Detail, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.findLocked(id)
	if !ok {
		return nil, ErrNotFound
	}
	entry.CanUndo = fileExists(m.undoPath(id))

	history := []HistoryItem{}
	if fileExists(m.historyPath(id)) {
		_ = readJSON(m.historyPath(id), &history)
	}
	return &Detail{Entry: entry, History: history}, nil
}

// Delete 从库中移除；上传的工作簿连同目录一起删除，外部文件保留
func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.findLocked(id); !ok {
		return ErrNotFound
	}

	next := make([]Entry, 0, len(m.index.Items))
	for _, item := range m.index.Items {
		if item.WorkbookID != id {
			next = append(next, item)
		}
	}
	m.index.Items = next
	_ = os.RemoveAll(m.entryDir(id))

	if m.activeID == id {
		m.activeID = ""
		m.index.LastActiveID = ""
	}
	return m.saveIndexLocked()
}

// Snapshot 保存前备份当前工作簿文件（单步撤销）
func (m *Manager) Snapshot() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.findLocked(m.activeID)
	if !ok {
		return nil
	}
	if err := copyFileAtomic(entry.Path, m.undoPath(entry.WorkbookID)); err != nil {
		return fmt.Errorf("failed to snapshot workbook: %w", err)
	}
	return nil
}

// RecordSave 记录一次流水写回
func (m *Manager) RecordSave(lines int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.findLocked(m.activeID)
	if !ok {
		return nil
	}
	now := time.Now().UTC()
	entry.UpdatedAt = now
	entry.SavedSales += lines
	m.replaceLocked(entry)
	m.appendHistoryLocked(entry.WorkbookID, HistoryItem{At: now, Action: ActionSave, Lines: lines})
	return m.saveIndexLocked()
}

// UndoLast 用快照恢复当前工作簿文件，并清空快照
func (m *Manager) UndoLast() (Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.findLocked(m.activeID)
	if !ok {
		return Entry{}, ErrNotFound
	}
	snapshot := m.undoPath(entry.WorkbookID)
	if !fileExists(snapshot) {
		return Entry{}, ErrNoUndo
	}
	if err := copyFileAtomic(snapshot, entry.Path); err != nil {
		return Entry{}, fmt.Errorf("failed to restore workbook: %w", err)
	}
	_ = os.Remove(snapshot)

	now := time.Now().UTC()
	entry.UpdatedAt = now
	m.replaceLocked(entry)
	m.appendHistoryLocked(entry.WorkbookID, HistoryItem{At: now, Action: ActionUndo})
	return entry, m.saveIndexLocked()
}

func (m *Manager) activateLocked(id string) {
	m.activeID = id
	m.index.LastActiveID = id
}

func (m *Manager) appendHistoryLocked(id string, item HistoryItem) {
	history := []HistoryItem{}
	if fileExists(m.historyPath(id)) {
		_ = readJSON(m.historyPath(id), &history)
	}
	history = append([]HistoryItem{item}, history...)
	if len(history) > historyLimit {
		history = history[:historyLimit]
	}
	_ = writeJSONAtomic(m.historyPath(id), history)
}

func (m *Manager) refreshLocked() {
	for i := range m.index.Items {
		m.index.Items[i].CanUndo = fileExists(m.undoPath(m.index.Items[i].WorkbookID))
	}
	sort.SliceStable(m.index.Items, func(i, j int) bool {
		return m.index.Items[i].LastOpenedAt.After(m.index.Items[j].LastOpenedAt)
	})
}

func (m *Manager) findLocked(id string) (Entry, bool) {
	if id == "" {
		return Entry{}, false
	}
	for _, item := range m.index.Items {
		if item.WorkbookID == id {
			return item, true
		}
	}
	return Entry{}, false
}

func (m *Manager) replaceLocked(entry Entry) {
	for i := range m.index.Items {
		if m.index.Items[i].WorkbookID == entry.WorkbookID {
			m.index.Items[i] = entry
			return
		}
	}
}
