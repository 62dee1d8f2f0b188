package handlers

import (
	"errors"
	"net/http"
	"os"
	"sync"

	"github.com/gin-gonic/gin"

	"economat/internal/model"
	"economat/internal/service/calculator"
	"economat/internal/service/excel"
	"economat/internal/service/library"
	"economat/internal/service/store"
	"economat/internal/util"
)

// 业务响应码
const (
	CodeOK           = 0
	CodeBadParams    = 1001
	CodeLoadFailed   = 2001
	CodeNoWorkbook   = 2002
	CodeSaleRejected = 3001
	CodeExportFailed = 4001
	CodeSaveFailed   = 5001
	CodeLibrary      = 5002
	CodeOpenFailed   = 5003
)

// Handlers API处理器
type Handlers struct {
	store    *store.MemoryStore
	engine   *calculator.Engine
	loader   *excel.Loader
	writer   *excel.JournalWriter
	exporter *excel.Exporter
	library  *library.Manager

	// 导出文件缓存
	exportDir string
	exports   map[string]exportFile
	exportsMu sync.RWMutex

	openFile func(string) error
}

type exportFile struct {
	Path     string
	FileName string
}

// NewHandlers 创建处理器；library 为 nil 时工作簿只在内存中使用
func NewHandlers(st *store.MemoryStore, loader *excel.Loader, writer *excel.JournalWriter, lib *library.Manager, exportDir string) *Handlers {
	if exportDir == "" {
		exportDir = os.TempDir()
	}
	return &Handlers{
		store:     st,
		engine:    calculator.NewEngine(st),
		loader:    loader,
		writer:    writer,
		exporter:  excel.NewExporter(),
		library:   lib,
		exportDir: exportDir,
		exports:   make(map[string]exportFile),
		openFile:  util.OpenBrowserWithFallback,
	}
}

// SetOpener 替换打开本地文件的方式
func (h *Handlers) SetOpener(fn func(string) error) {
	h.openFile = fn
}

// RegisterRoutes 注册路由
func (h *Handlers) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/status", h.GetStatus)

	// 工作簿
	r.POST("/workbook", h.UploadWorkbook)
	r.POST("/workbook/reload", h.ReloadWorkbook)
	r.POST("/workbook/sample", h.LoadSample)
	r.POST("/workbook/open", h.OpenWorkbookFile)

	// 工作簿库
	r.GET("/workbooks", h.ListWorkbooks)
	r.GET("/workbooks/:workbookId", h.GetWorkbookDetail)
	r.POST("/workbooks/:workbookId/select", h.SelectWorkbook)
	r.DELETE("/workbooks/:workbookId", h.DeleteWorkbook)
	r.POST("/undo", h.Undo)

	// 计算结果
	r.GET("/report", h.GetReport)
	r.GET("/ingredients", h.GetIngredients)
	r.GET("/materials", h.GetMaterials)
	r.GET("/charges", h.GetCharges)
	r.GET("/pilotage", h.GetPilotage)
	r.GET("/summary", h.GetSummary)
	r.GET("/kpis", h.GetKpis)

	// 销售流水
	r.GET("/sales", h.ListSales)
	r.POST("/sales", h.RecordSale)
	r.POST("/sales/import", h.ImportSales)
	r.POST("/save", h.SaveNow)

	// 导出
	r.GET("/export/pilotage.xlsx", h.ExportPilotageXLSX)
	r.GET("/export/pilotage.csv", h.ExportPilotageCSV)
	r.POST("/export", h.CreateExport)
	r.GET("/export/download/:exportId", h.DownloadExport)
}

// Response 通用响应
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    CodeOK,
		Message: "success",
		Data:    data,
	})
}

func errorResponse(c *gin.Context, code int, message string) {
	c.JSON(http.StatusOK, Response{
		Code:    code,
		Message: message,
	})
}

func (h *Handlers) requireWorkbook(c *gin.Context) bool {
	if !h.store.HasData() {
		errorResponse(c, CodeNoWorkbook, "尚未加载工作簿")
		return false
	}
	return true
}

func (h *Handlers) requireLibrary(c *gin.Context) bool {
	if h.library == nil {
		errorResponse(c, CodeLibrary, "工作簿库不可用")
		return false
	}
	return true
}

// SaveJournal 写回销售流水：先备份（单步撤销），再追加并原子替换文件
func (h *Handlers) SaveJournal(path, sheet string, lines []model.JournalLine) error {
	if h.library != nil {
		if err := h.library.Snapshot(); err != nil {
			return err
		}
	}
	if err := h.writer.Append(path, sheet, lines); err != nil {
		return err
	}
	if h.library != nil {
		if err := h.library.RecordSave(len(lines)); err != nil {
			util.Logger.Warn().Err(err).Msg("记录保存历史失败")
		}
	}
	util.Logger.Info().Str("path", path).Int("lines", len(lines)).Msg("销售流水已写回")
	return nil
}

// OpenPath 加载磁盘上的工作簿并登记到工作簿库
func (h *Handlers) OpenPath(path string) (model.LoadReport, error) {
	h.flushBeforeSwitch()
	if h.library != nil {
		entry, err := h.library.Register(path)
		if err != nil {
			return model.LoadReport{}, err
		}
		path = entry.Path
	}
	return h.loadPath(path)
}

// RestoreActive 重新打开上次使用的工作簿
func (h *Handlers) RestoreActive() (bool, error) {
	if h.library == nil {
		return false, nil
	}
	entry, ok := h.library.Active()
	if !ok {
		return false, nil
	}
	if _, err := h.loadPath(entry.Path); err != nil {
		return false, err
	}
	return true, nil
}

// Flush 立即写回未保存的流水（退出前调用）
func (h *Handlers) Flush() error {
	err := h.store.SaveNow()
	if errors.Is(err, store.ErrNoWorkbook) {
		return nil
	}
	return err
}

// flushBeforeSwitch 切换当前工作簿前写回未保存的流水（写回依赖库中的当前工作簿）
func (h *Handlers) flushBeforeSwitch() {
	if err := h.Flush(); err != nil {
		util.Logger.Warn().Err(err).Msg("切换工作簿前保存失败，未保存的流水被丢弃")
	}
}

func (h *Handlers) loadPath(path string) (model.LoadReport, error) {
	wb, report, err := h.loader.LoadFile(path)
	if err != nil {
		return model.LoadReport{}, err
	}
	h.store.SetWorkbook(wb, report, path)
	util.Logger.Info().Str("path", path).Str("loadId", report.LoadID).Msg("工作簿已加载")
	return report, nil
}

// persist 录入后保存：启用自动保存时延迟写回，否则立即写回
func (h *Handlers) persist() error {
	if h.store.AutoSaveEnabled() {
		h.store.ScheduleSave()
		return nil
	}
	return h.store.SaveNow()
}
