package handlers

import (
	"bytes"
	"errors"
	"io"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"economat/internal/model"
	"economat/internal/service/excel"
	"economat/internal/service/library"
)

const maxUploadSize = 20 * 1024 * 1024

func (h *Handlers) status() gin.H {
	wb := h.store.Workbook()
	out := gin.H{
		"loaded":       h.store.HasData(),
		"path":         h.store.Path(),
		"report":       h.store.LoadReport(),
		"rowCounts":    wb.RowCounts(),
		"pendingSales": h.store.PendingCount(),
		"autoSave":     h.store.AutoSaveEnabled(),
	}
	if err := h.store.LastAutoSaveError(); err != nil {
		out["lastAutoSaveError"] = err.Error()
	}
	if h.library != nil {
		if entry, ok := h.library.Active(); ok {
			out["workbook"] = entry
		}
	}
	return out
}

// GetStatus 当前工作簿状态
func (h *Handlers) GetStatus(c *gin.Context) {
	success(c, h.status())
}

// UploadWorkbook 上传工作簿并设为当前
func (h *Handlers) UploadWorkbook(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		errorResponse(c, CodeBadParams, "请上传文件")
		return
	}
	defer file.Close()

	if header.Size > maxUploadSize {
		errorResponse(c, CodeBadParams, "文件过大，最大支持20MB")
		return
	}
	ext := strings.ToLower(filepath.Ext(header.Filename))
	if ext != ".xlsx" && ext != ".xlsm" {
		errorResponse(c, CodeBadParams, "仅支持 .xlsx 和 .xlsm 格式")
		return
	}

	content, err := io.ReadAll(file)
	if err != nil {
		errorResponse(c, CodeBadParams, "读取文件失败")
		return
	}

	// 先解析，确认可用后再入库
	wb, report, err := h.loader.LoadReader(header.Filename, bytes.NewReader(content))
	if err != nil {
		errorResponse(c, CodeLoadFailed, "文件解析失败: "+err.Error())
		return
	}

	if err := h.Flush(); err != nil {
		errorResponse(c, CodeSaveFailed, "保存当前工作簿失败: "+err.Error())
		return
	}
	path := ""
	if h.library != nil {
		entry, err := h.library.Import(header.Filename, content)
		if err != nil {
			errorResponse(c, CodeLibrary, err.Error())
			return
		}
		path = entry.Path
	}
	h.store.SetWorkbook(wb, report, path)

	success(c, gin.H{
		"report": report,
		"status": h.status(),
	})
}

// ReloadWorkbook 保存后从磁盘重新加载当前工作簿
func (h *Handlers) ReloadWorkbook(c *gin.Context) {
	path := h.store.Path()
	if path == "" {
		errorResponse(c, CodeNoWorkbook, "当前工作簿没有对应的文件")
		return
	}
	if err := h.Flush(); err != nil {
		errorResponse(c, CodeSaveFailed, "保存失败: "+err.Error())
		return
	}
	report, err := h.loadPath(path)
	if err != nil {
		errorResponse(c, CodeLoadFailed, err.Error())
		return
	}
	success(c, gin.H{"report": report})
}

// LoadSample 加载内置测试数据
func (h *Handlers) LoadSample(c *gin.Context) {
	f, err := excel.SampleWorkbook()
	if err != nil {
		errorResponse(c, CodeLoadFailed, err.Error())
		return
	}
	defer f.Close()

	if err := h.Flush(); err != nil {
		errorResponse(c, CodeSaveFailed, "保存当前工作簿失败: "+err.Error())
		return
	}

	if h.library == nil {
		wb, report, err := h.loader.LoadExcelize(f, excel.SampleFileName)
		if err != nil {
			errorResponse(c, CodeLoadFailed, err.Error())
			return
		}
		h.store.SetWorkbook(wb, report, "")
		success(c, gin.H{"report": report})
		return
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		errorResponse(c, CodeLoadFailed, err.Error())
		return
	}
	entry, err := h.library.Import(excel.SampleFileName, buf.Bytes())
	if err != nil {
		errorResponse(c, CodeLibrary, err.Error())
		return
	}
	report, err := h.loadPath(entry.Path)
	if err != nil {
		errorResponse(c, CodeLoadFailed, err.Error())
		return
	}
	success(c, gin.H{"report": report, "workbook": entry})
}

// OpenWorkbookFile 用系统默认程序（Excel）打开当前工作簿
func (h *Handlers) OpenWorkbookFile(c *gin.Context) {
	path := h.store.Path()
	if path == "" {
		errorResponse(c, CodeNoWorkbook, "当前工作簿没有对应的文件")
		return
	}
	if err := h.Flush(); err != nil {
		errorResponse(c, CodeSaveFailed, "保存失败: "+err.Error())
		return
	}
	if err := h.openFile(path); err != nil {
		errorResponse(c, CodeOpenFailed, "无法打开文件: "+err.Error())
		return
	}
	success(c, gin.H{"path": path})
}

// ListWorkbooks 工作簿库列表
func (h *Handlers) ListWorkbooks(c *gin.Context) {
	if !h.requireLibrary(c) {
		return
	}
	success(c, h.library.List())
}

// GetWorkbookDetail 工作簿详情与操作记录
func (h *Handlers) GetWorkbookDetail(c *gin.Context) {
	if !h.requireLibrary(c) {
		return
	}
	detail, err := h.library.Detail(c.Param("workbookId"))
	if err != nil {
		errorResponse(c, CodeLibrary, err.Error())
		return
	}
	success(c, detail)
}

// SelectWorkbook 切换当前工作簿
func (h *Handlers) SelectWorkbook(c *gin.Context) {
	if !h.requireLibrary(c) {
		return
	}
	h.flushBeforeSwitch()
	entry, err := h.library.Select(c.Param("workbookId"))
	if err != nil {
		errorResponse(c, CodeLibrary, err.Error())
		return
	}
	report, err := h.loadPath(entry.Path)
	if err != nil {
		errorResponse(c, CodeLoadFailed, err.Error())
		return
	}
	success(c, gin.H{"workbook": entry, "report": report})
}

// DeleteWorkbook 从库中移除工作簿；移除当前工作簿时清空内存数据
func (h *Handlers) DeleteWorkbook(c *gin.Context) {
	if !h.requireLibrary(c) {
		return
	}
	id := c.Param("workbookId")
	detail, err := h.library.Detail(id)
	if err != nil {
		errorResponse(c, CodeLibrary, err.Error())
		return
	}
	if err := h.library.Delete(id); err != nil {
		errorResponse(c, CodeLibrary, err.Error())
		return
	}
	if detail.Entry.Path == h.store.Path() {
		h.store.SetWorkbook(&model.Workbook{}, model.LoadReport{}, "")
	}
	success(c, gin.H{"deleted": true})
}

// Undo 撤销上一次写回：恢复保存前的文件并重新加载，未保存的流水被丢弃
func (h *Handlers) Undo(c *gin.Context) {
	if !h.requireLibrary(c) {
		return
	}
	entry, err := h.library.UndoLast()
	if err != nil {
		if errors.Is(err, library.ErrNoUndo) {
			errorResponse(c, CodeLibrary, "没有可撤销的保存")
			return
		}
		errorResponse(c, CodeLibrary, err.Error())
		return
	}

	wb, report, err := h.loader.LoadFile(entry.Path)
	if err != nil {
		errorResponse(c, CodeLoadFailed, err.Error())
		return
	}
	h.store.SetWorkbook(wb, report, entry.Path)

	success(c, gin.H{
		"workbook": entry,
		"kpis":     h.engine.Calculate().Kpis,
	})
}
