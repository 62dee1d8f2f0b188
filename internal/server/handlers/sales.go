package handlers

import (
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"economat/internal/model"
	"economat/internal/service/calculator"
	"economat/internal/service/excel"
	"economat/internal/util"
)

const defaultJournalTail = 50

// ListSales 最近的销售流水
func (h *Handlers) ListSales(c *gin.Context) {
	if !h.requireWorkbook(c) {
		return
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultJournalTail)))
	if err != nil || limit < 0 {
		errorResponse(c, CodeBadParams, "limit 参数错误")
		return
	}

	wb := h.store.Workbook()
	lines := h.store.JournalTail(limit)
	cols := wb.Journal.Columns
	display := make([]gin.H, len(lines))
	for i := range lines {
		// 没有 CA ligne 列时按 售价 × 数量 展示
		if !cols.Revenue {
			lines[i].Revenue = lines[i].Price * lines[i].Quantity
		}
		display[i] = gin.H{
			"quantity": util.FormatQuantity(lines[i].Quantity),
			"revenue":  util.FormatCurrency(lines[i].Revenue),
		}
	}

	success(c, gin.H{
		"items":   lines,
		"display": display,
		"columns": cols,
		"total":   len(wb.Journal.Lines),
		"pending": h.store.PendingCount(),
	})
}

// RecordSale 录入一笔销售
func (h *Handlers) RecordSale(c *gin.Context) {
	var req struct {
		Product  string  `json:"product"`
		Quantity float64 `json:"quantity"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, CodeBadParams, "参数错误")
		return
	}
	if strings.TrimSpace(req.Product) == "" {
		errorResponse(c, CodeBadParams, "产品不能为空")
		return
	}
	if !h.requireWorkbook(c) {
		return
	}

	var product *model.Product
	if p, ok := h.store.FindProduct(req.Product); ok {
		product = &p
	}
	line, sale, err := calculator.NewSaleEntry(product, req.Quantity, time.Now())
	if err != nil {
		errorResponse(c, CodeSaleRejected, err.Error())
		return
	}

	h.store.AppendSale(line, sale, calculator.EntryColumns())

	out := gin.H{"line": line}
	if err := h.persist(); err != nil {
		util.Logger.Warn().Err(err).Msg("销售已录入但写回失败")
		out["saveError"] = err.Error()
	}
	out["pending"] = h.store.PendingCount()
	out["kpis"] = h.engine.Calculate().Kpis
	success(c, out)
}

// ImportSales 从 CSV 销售流水批量追加
func (h *Handlers) ImportSales(c *gin.Context) {
	if !h.requireWorkbook(c) {
		return
	}
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		errorResponse(c, CodeBadParams, "请上传文件")
		return
	}
	defer file.Close()

	if ext := strings.ToLower(filepath.Ext(header.Filename)); ext != ".csv" && ext != ".txt" {
		errorResponse(c, CodeBadParams, "仅支持 .csv 格式")
		return
	}
	if header.Size > maxUploadSize {
		errorResponse(c, CodeBadParams, "文件过大，最大支持20MB")
		return
	}

	table, err := excel.ReadCSVTable(header.Filename, file)
	if err != nil {
		errorResponse(c, CodeBadParams, "CSV 解析失败: "+err.Error())
		return
	}

	journal, sales, missing := h.loader.Builder().Sales(table, h.store.Workbook().Products)
	if len(journal.Lines) == 0 {
		errorResponse(c, CodeBadParams, "CSV 中没有销售行")
		return
	}
	fillDerivedAmounts(&journal)
	h.store.AppendJournal(journal, sales)

	out := gin.H{
		"imported":       len(journal.Lines),
		"sales":          len(sales),
		"missingColumns": missing,
	}
	if err := h.persist(); err != nil {
		util.Logger.Warn().Err(err).Msg("导入流水写回失败")
		out["saveError"] = err.Error()
	}
	out["pending"] = h.store.PendingCount()
	success(c, out)
}

// SaveNow 立即写回未保存的流水
func (h *Handlers) SaveNow(c *gin.Context) {
	if !h.requireWorkbook(c) {
		return
	}
	if err := h.store.SaveNow(); err != nil {
		errorResponse(c, CodeSaveFailed, "保存失败: "+err.Error())
		return
	}
	success(c, gin.H{"saved": true, "pending": h.store.PendingCount()})
}

// fillDerivedAmounts 缺失 CA ligne / Coût matière ligne 列时按单价乘数量补齐
// 单价已由产品目录补齐，导入后的流水按写回的完整列标记
func fillDerivedAmounts(journal *model.Journal) {
	cols := &journal.Columns
	if !cols.Quantity {
		return
	}
	if !cols.Revenue {
		for i := range journal.Lines {
			journal.Lines[i].Revenue = journal.Lines[i].Price * journal.Lines[i].Quantity
		}
		cols.Revenue = true
	}
	if !cols.MaterialCost {
		for i := range journal.Lines {
			journal.Lines[i].MaterialCost = journal.Lines[i].UnitCost * journal.Lines[i].Quantity
		}
		cols.MaterialCost = true
	}
	cols.Price = true
	cols.UnitCost = true
}
