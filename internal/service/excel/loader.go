package excel

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"economat/internal/model"
	"economat/internal/parser"
	"economat/internal/util"
)

// ErrSheetNotFound 工作簿中找不到指定 sheet
var ErrSheetNotFound = errors.New("sheet not found")

// Loader 工作簿加载器：读取全部 sheet，交给 parser 映射为固定结构
type Loader struct {
	builder *parser.WorkbookBuilder
}

// NewLoader 创建加载器
func NewLoader(cfg parser.ColumnConfig) *Loader {
	return &Loader{builder: parser.NewWorkbookBuilder(cfg)}
}

// Builder 返回内部的表构建器（CSV 导入复用同一套列名配置）
func (l *Loader) Builder() *parser.WorkbookBuilder {
	return l.builder
}

// LoadFile 从磁盘加载工作簿
func (l *Loader) LoadFile(path string) (*model.Workbook, model.LoadReport, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, model.LoadReport{}, fmt.Errorf("failed to open excel %s: %w", path, err)
	}
	defer f.Close()
	return l.LoadExcelize(f, filepath.Base(path))
}

// LoadReader 从上传流加载工作簿
func (l *Loader) LoadReader(name string, r io.Reader) (*model.Workbook, model.LoadReport, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, model.LoadReport{}, fmt.Errorf("failed to open excel: %w", err)
	}
	defer f.Close()
	return l.LoadExcelize(f, name)
}

// LoadExcelize 从已打开的 excelize 工作簿加载
func (l *Loader) LoadExcelize(f *excelize.File, name string) (*model.Workbook, model.LoadReport, error) {
	tables, err := ReadTables(f)
	if err != nil {
		return nil, model.LoadReport{}, err
	}

	wb, report := l.builder.Build(tables)
	report.LoadID = uuid.New().String()
	report.FileName = name
	report.LoadedAt = time.Now().UTC()

	for _, table := range model.AllTables() {
		sheet, ok := report.Sheets[table]
		if !ok {
			util.Logger.Warn().Str("file", name).Str("table", string(table)).Msg("未找到对应 sheet，按空表处理")
			continue
		}
		util.Logger.Debug().
			Str("file", name).
			Str("table", string(table)).
			Str("sheet", sheet).
			Int("rows", report.RowCounts[table]).
			Msg("sheet 识别")
		if missing := report.Unresolved[table]; len(missing) > 0 {
			util.Logger.Warn().Str("sheet", sheet).Strs("missing", missing).Msg("缺少语义列，按 0 处理")
		}
	}
	return wb, report, nil
}

// ReadTables 读取工作簿内全部 sheet 为原始表（保持工作簿顺序）
func ReadTables(f *excelize.File) ([]*parser.Table, error) {
	if f == nil {
		return nil, errors.New("workbook is nil")
	}
	sheets := f.GetSheetList()
	tables := make([]*parser.Table, 0, len(sheets))
	for _, name := range sheets {
		rows, err := f.GetRows(name)
		if err != nil {
			return nil, fmt.Errorf("failed to read sheet %s: %w", name, err)
		}
		tables = append(tables, parser.NewTable(name, rows))
	}
	return tables, nil
}
