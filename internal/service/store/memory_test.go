package store

import (
	"errors"
	"sync"
	"testing"
	"time"

	"economat/internal/model"
)

func sampleWorkbook() *model.Workbook {
	return &model.Workbook{
		Products: []model.Product{
			{Code: "P1", Name: "Tajine", MenuPrice: 12},
			{Code: "P2", Name: "Thé", MenuPrice: 2},
		},
		Journal: model.Journal{
			Lines: []model.JournalLine{{Product: "Tajine", Quantity: 1}},
		},
	}
}

// TestNewMemoryStore 测试创建存储
func TestNewMemoryStore(t *testing.T) {
	store := NewMemoryStore()
	if store == nil {
		t.Fatal("NewMemoryStore() returned nil")
	}
	if store.HasData() {
		t.Errorf("New store should be empty")
	}
	if store.Workbook() == nil {
		t.Errorf("Workbook() should never be nil")
	}
}

// TestSetWorkbookIsolatesCaller 测试存储与调用方数据隔离
func TestSetWorkbookIsolatesCaller(t *testing.T) {
	store := NewMemoryStore()
	wb := sampleWorkbook()
	store.SetWorkbook(wb, model.LoadReport{FileName: "a.xlsx"}, "/tmp/a.xlsx")

	wb.Products[0].Name = "changed"
	if got := store.Workbook().Products[0].Name; got != "Tajine" {
		t.Fatalf("store mutated through caller slice: %s", got)
	}

	snapshot := store.Workbook()
	snapshot.Products[0].Name = "changed again"
	if got := store.Workbook().Products[0].Name; got != "Tajine" {
		t.Fatalf("store mutated through snapshot: %s", got)
	}
	if store.Path() != "/tmp/a.xlsx" || store.LoadReport().FileName != "a.xlsx" {
		t.Fatalf("unexpected path/report")
	}
}

// TestFindProduct 测试按编码或名称查找
func TestFindProduct(t *testing.T) {
	store := NewMemoryStore()
	store.SetWorkbook(sampleWorkbook(), model.LoadReport{}, "")

	if p, ok := store.FindProduct("P2"); !ok || p.Name != "Thé" {
		t.Fatalf("find by code failed: %+v %v", p, ok)
	}
	if p, ok := store.FindProduct(" Tajine "); !ok || p.Code != "P1" {
		t.Fatalf("find by name failed: %+v %v", p, ok)
	}
	if _, ok := store.FindProduct("missing"); ok {
		t.Fatalf("expected not found")
	}
}

// TestAppendSaleAndSaveNow 测试录入与立即保存
func TestAppendSaleAndSaveNow(t *testing.T) {
	store := NewMemoryStore()
	report := model.LoadReport{Sheets: map[model.TableName]string{model.TableSales: "tbl_Ventes"}}
	store.SetWorkbook(sampleWorkbook(), report, "book.xlsx")

	var savedPath, savedSheet string
	var saved []model.JournalLine
	store.SetSaver(func(path, sheet string, lines []model.JournalLine) error {
		savedPath = path
		savedSheet = sheet
		saved = append(saved, lines...)
		return nil
	}, 0)

	store.AppendSale(model.JournalLine{Product: "Thé", Quantity: 3}, model.SaleLine{ProductCode: "P2", QuantitySold: 3}, model.JournalColumns{})
	if store.PendingCount() != 1 {
		t.Fatalf("pending=%d, want 1", store.PendingCount())
	}
	if tail := store.JournalTail(1); len(tail) != 1 || tail[0].Product != "Thé" {
		t.Fatalf("unexpected tail: %+v", tail)
	}
	if got := len(store.Workbook().Sales); got != 1 {
		t.Fatalf("sales=%d, want 1", got)
	}

	if err := store.SaveNow(); err != nil {
		t.Fatalf("SaveNow failed: %v", err)
	}
	if savedPath != "book.xlsx" || savedSheet != "tbl_Ventes" || len(saved) != 1 {
		t.Fatalf("saver got path=%q sheet=%q lines=%d", savedPath, savedSheet, len(saved))
	}
	if store.PendingCount() != 0 {
		t.Fatalf("pending should be cleared")
	}
	if err := store.SaveNow(); err != nil {
		t.Fatalf("SaveNow with nothing pending should be a no-op, got %v", err)
	}
}

// TestAppendJournal 测试批量追加导入流水
func TestAppendJournal(t *testing.T) {
	store := NewMemoryStore()
	store.SetWorkbook(sampleWorkbook(), model.LoadReport{}, "book.xlsx")

	journal := model.Journal{
		Columns: model.JournalColumns{Product: true, Quantity: true, Revenue: true},
		Lines: []model.JournalLine{
			{Product: "Tajine", Quantity: 2, Revenue: 24},
			{Product: "", Quantity: 1},
		},
	}
	store.AppendJournal(journal, []model.SaleLine{{ProductCode: "P1", QuantitySold: 2, MenuPrice: 12}})

	wb := store.Workbook()
	if len(wb.Journal.Lines) != 3 || len(wb.Sales) != 1 {
		t.Fatalf("journal=%d sales=%d", len(wb.Journal.Lines), len(wb.Sales))
	}
	if !wb.Journal.Columns.Revenue || !wb.Journal.Columns.Product {
		t.Fatalf("columns should be marked: %+v", wb.Journal.Columns)
	}
	if store.PendingCount() != 2 {
		t.Fatalf("pending=%d, want 2", store.PendingCount())
	}
}

// TestAppendJournalColumnsVisibleWithLines 测试并发读取时新增流水与列标记同时可见
func TestAppendJournalColumnsVisibleWithLines(t *testing.T) {
	store := NewMemoryStore()
	store.SetWorkbook(&model.Workbook{}, model.LoadReport{}, "")

	journal := model.Journal{
		Columns: model.JournalColumns{Product: true, Quantity: true, Revenue: true},
		Lines:   []model.JournalLine{{Product: "Tajine", Quantity: 2, Revenue: 24}},
	}

	var wg sync.WaitGroup
	errs := make(chan string, 100)
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			store.AppendJournal(journal, nil)
		}()
		go func() {
			defer wg.Done()
			wb := store.Workbook()
			if len(wb.Journal.Lines) > 0 && !wb.Journal.Columns.Revenue {
				errs <- "lines visible before revenue column"
			}
		}()
	}
	wg.Wait()
	close(errs)

	for msg := range errs {
		t.Fatal(msg)
	}
	if got := len(store.Workbook().Journal.Lines); got != 50 {
		t.Fatalf("journal lines=%d, want 50", got)
	}
}

// TestSaveNowKeepsPendingOnError 测试保存失败保留待保存数据
func TestSaveNowKeepsPendingOnError(t *testing.T) {
	store := NewMemoryStore()
	store.SetWorkbook(sampleWorkbook(), model.LoadReport{}, "book.xlsx")
	boom := errors.New("disk full")
	store.SetSaver(func(string, string, []model.JournalLine) error { return boom }, 0)

	store.AppendSale(model.JournalLine{Product: "Thé"}, model.SaleLine{ProductCode: "P2"}, model.JournalColumns{})
	if err := store.SaveNow(); !errors.Is(err, boom) {
		t.Fatalf("err=%v, want %v", err, boom)
	}
	if store.PendingCount() != 1 {
		t.Fatalf("pending should be kept after failure")
	}
}

// TestSaveNowWithoutPath 测试无文件路径时无法保存
func TestSaveNowWithoutPath(t *testing.T) {
	store := NewMemoryStore()
	store.SetWorkbook(sampleWorkbook(), model.LoadReport{}, "")
	store.AppendSale(model.JournalLine{Product: "Thé"}, model.SaleLine{ProductCode: "P2"}, model.JournalColumns{})

	if err := store.SaveNow(); !errors.Is(err, ErrNoWorkbook) {
		t.Fatalf("err=%v, want ErrNoWorkbook", err)
	}
}

// TestScheduleSaveDebounce 测试延迟保存合并多次录入
func TestScheduleSaveDebounce(t *testing.T) {
	store := NewMemoryStore()
	store.SetWorkbook(sampleWorkbook(), model.LoadReport{}, "book.xlsx")

	var mu sync.Mutex
	calls := 0
	lines := 0
	done := make(chan struct{}, 1)
	store.SetSaver(func(_, _ string, l []model.JournalLine) error {
		mu.Lock()
		calls++
		lines += len(l)
		mu.Unlock()
		done <- struct{}{}
		return nil
	}, 20*time.Millisecond)

	if !store.AutoSaveEnabled() {
		t.Fatalf("auto save should be enabled")
	}
	for i := 0; i < 3; i++ {
		store.AppendSale(model.JournalLine{Product: "Thé"}, model.SaleLine{ProductCode: "P2"}, model.JournalColumns{})
		store.ScheduleSave()
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("auto save did not run")
	}

	mu.Lock()
	defer mu.Unlock()
	if calls != 1 || lines != 3 {
		t.Fatalf("calls=%d lines=%d, want 1/3", calls, lines)
	}
	if store.LastAutoSaveError() != nil {
		t.Fatalf("unexpected auto save error: %v", store.LastAutoSaveError())
	}
}

// TestConcurrentAccess 测试并发读写安全
func TestConcurrentAccess(t *testing.T) {
	store := NewMemoryStore()
	store.SetWorkbook(sampleWorkbook(), model.LoadReport{}, "")

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			store.AppendSale(model.JournalLine{Product: "Thé"}, model.SaleLine{ProductCode: "P2"}, model.JournalColumns{})
		}()
		go func() {
			defer wg.Done()
			_ = store.Workbook()
			_ = store.JournalTail(10)
		}()
	}
	wg.Wait()

	if got := len(store.Workbook().Journal.Lines); got != 51 {
		t.Fatalf("journal lines=%d, want 51", got)
	}
}
