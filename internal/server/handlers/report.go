package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"

	"economat/internal/model"
	"economat/internal/util"
)

// GetReport 完整计算结果
func (h *Handlers) GetReport(c *gin.Context) {
	if !h.requireWorkbook(c) {
		return
	}
	success(c, h.engine.Calculate())
}

// GetIngredients 原料加权平均成本
func (h *Handlers) GetIngredients(c *gin.Context) {
	if !h.requireWorkbook(c) {
		return
	}
	report := h.engine.Calculate()
	success(c, gin.H{
		"runId": report.RunID,
		"items": report.Ingredients,
	})
}

// GetMaterials 每份原料成本
func (h *Handlers) GetMaterials(c *gin.Context) {
	if !h.requireWorkbook(c) {
		return
	}
	report := h.engine.Calculate()
	success(c, gin.H{
		"runId": report.RunID,
		"items": report.MaterialCosts,
	})
}

// GetCharges 固定费用分摊结果
func (h *Handlers) GetCharges(c *gin.Context) {
	if !h.requireWorkbook(c) {
		return
	}
	report := h.engine.Calculate()
	success(c, gin.H{
		"runId":      report.RunID,
		"allocation": report.Allocation,
	})
}

// GetPilotage 盈利分析表，可按 alert / family 筛选
func (h *Handlers) GetPilotage(c *gin.Context) {
	if !h.requireWorkbook(c) {
		return
	}
	alert := strings.TrimSpace(c.Query("alert"))
	family := strings.TrimSpace(c.Query("family"))

	report := h.engine.Calculate()
	rows := make([]model.PilotageRow, 0, len(report.Pilotage))
	for _, r := range report.Pilotage {
		if alert != "" && !strings.EqualFold(string(r.AlertStatus), alert) {
			continue
		}
		if family != "" && !strings.EqualFold(r.Family, family) {
			continue
		}
		rows = append(rows, r)
	}

	counts := map[model.AlertStatus]int{}
	for _, r := range report.Pilotage {
		counts[r.AlertStatus]++
	}

	success(c, gin.H{
		"runId":  report.RunID,
		"items":  rows,
		"total":  len(rows),
		"alerts": counts,
	})
}

// GetSummary 简版销售汇总
func (h *Handlers) GetSummary(c *gin.Context) {
	if !h.requireWorkbook(c) {
		return
	}
	success(c, gin.H{"items": h.engine.SalesSummary()})
}

// GetKpis 顶层经营指标（附带展示用的格式化文本）
func (h *Handlers) GetKpis(c *gin.Context) {
	if !h.requireWorkbook(c) {
		return
	}
	k := h.engine.Calculate().Kpis
	success(c, gin.H{
		"kpis": k,
		"display": gin.H{
			"totalRevenue":       util.FormatCurrency(k.TotalRevenue),
			"totalMaterialCost":  util.FormatCurrency(k.TotalMaterialCost),
			"foodCostPercentage": util.FormatPercent(k.FoodCostPercentage / 100),
		},
	})
}
