package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"economat/internal/service/excel"
)

const (
	pilotageXLSXName = "tableau_pilotage.xlsx"
	pilotageCSVName  = "tableau_pilotage.csv"
	xlsxContentType  = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	csvContentType   = "text/csv; charset=utf-8"
)

// ExportPilotageXLSX 直接下载盈利分析表 xlsx
func (h *Handlers) ExportPilotageXLSX(c *gin.Context) {
	if !h.requireWorkbook(c) {
		return
	}
	f, err := h.exporter.Export(h.engine.Calculate())
	if err != nil {
		errorResponse(c, CodeExportFailed, "导出失败: "+err.Error())
		return
	}
	defer f.Close()

	buf, err := f.WriteToBuffer()
	if err != nil {
		errorResponse(c, CodeExportFailed, "导出失败: "+err.Error())
		return
	}
	c.Header("Content-Disposition", "attachment; filename="+pilotageXLSXName)
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

// ExportPilotageCSV 直接下载盈利分析表 CSV
func (h *Handlers) ExportPilotageCSV(c *gin.Context) {
	if !h.requireWorkbook(c) {
		return
	}
	var buf bytes.Buffer
	if err := excel.WritePilotageCSV(&buf, h.engine.Calculate().Pilotage); err != nil {
		errorResponse(c, CodeExportFailed, "导出失败: "+err.Error())
		return
	}
	c.Header("Content-Disposition", "attachment; filename="+pilotageCSVName)
	c.Data(http.StatusOK, csvContentType, buf.Bytes())
}

// CreateExport 生成导出文件，返回下载地址
func (h *Handlers) CreateExport(c *gin.Context) {
	if !h.requireWorkbook(c) {
		return
	}
	var req struct {
		Format string `json:"format"`
	}
	_ = c.ShouldBindJSON(&req)
	if req.Format == "" {
		req.Format = "xlsx"
	}

	exportID := uuid.New().String()
	report := h.engine.Calculate()
	var (
		path     string
		fileName string
	)
	switch req.Format {
	case "xlsx":
		f, err := h.exporter.Export(report)
		if err != nil {
			errorResponse(c, CodeExportFailed, "导出失败: "+err.Error())
			return
		}
		defer f.Close()
		fileName = pilotageXLSXName
		path = filepath.Join(h.exportDir, fmt.Sprintf("pilotage_%s.xlsx", exportID))
		if err := excel.SaveAs(f, path); err != nil {
			errorResponse(c, CodeExportFailed, "保存失败: "+err.Error())
			return
		}
	case "csv":
		var buf bytes.Buffer
		if err := excel.WritePilotageCSV(&buf, report.Pilotage); err != nil {
			errorResponse(c, CodeExportFailed, "导出失败: "+err.Error())
			return
		}
		fileName = pilotageCSVName
		path = filepath.Join(h.exportDir, fmt.Sprintf("pilotage_%s.csv", exportID))
		if err := os.MkdirAll(h.exportDir, 0755); err != nil {
			errorResponse(c, CodeExportFailed, "保存失败: "+err.Error())
			return
		}
		if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
			errorResponse(c, CodeExportFailed, "保存失败: "+err.Error())
			return
		}
	default:
		errorResponse(c, CodeBadParams, "不支持的导出格式: "+req.Format)
		return
	}

	h.exportsMu.Lock()
	h.exports[exportID] = exportFile{Path: path, FileName: fileName}
	h.exportsMu.Unlock()

	success(c, gin.H{
		"exportId":    exportID,
		"runId":       report.RunID,
		"downloadUrl": fmt.Sprintf("/api/export/download/%s", exportID),
		"createdAt":   time.Now().Format(time.RFC3339),
	})
}

// DownloadExport 下载已生成的导出文件
func (h *Handlers) DownloadExport(c *gin.Context) {
	exportID := c.Param("exportId")

	h.exportsMu.RLock()
	file, ok := h.exports[exportID]
	h.exportsMu.RUnlock()

	if !ok {
		errorResponse(c, CodeExportFailed, "导出文件不存在或已过期")
		return
	}
	c.FileAttachment(file.Path, file.FileName)
}
