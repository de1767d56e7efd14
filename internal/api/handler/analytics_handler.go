package handler

import (
	"github.com/gin-gonic/gin"

	"mmarau-music/backend/internal/service"
	"mmarau-music/backend/pkg/response"
)

// AnalyticsHandler 参与度分析 HTTP 处理器
//
// 分析接口对未知学期不报 404：查不到就是零/空结果，
// 前端拿到空集自行渲染占位。
type AnalyticsHandler struct {
	analyticsSvc service.AnalyticsService
}

// NewAnalyticsHandler 创建 AnalyticsHandler
func NewAnalyticsHandler(analyticsSvc service.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{analyticsSvc: analyticsSvc}
}

// TotalMinisters 牧者总数
// GET /api/v1/analytics/ministers/total
func (h *AnalyticsHandler) TotalMinisters(c *gin.Context) {
	result, err := h.analyticsSvc.TotalMinisters(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, result)
}

// GroupByGender 按性别分组计数
// GET /api/v1/analytics/ministers/gender
func (h *AnalyticsHandler) GroupByGender(c *gin.Context) {
	result, err := h.analyticsSvc.GroupByGender(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, gin.H{"list": result})
}

// RankAll 全体参与度排名
// GET /api/v1/analytics/ministers/rank
func (h *AnalyticsHandler) RankAll(c *gin.Context) {
	result, err := h.analyticsSvc.RankAll(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, gin.H{"list": result})
}

// RankByGender 按性别分组的参与度排名
// GET /api/v1/analytics/ministers/rank/gender
func (h *AnalyticsHandler) RankByGender(c *gin.Context) {
	result, err := h.analyticsSvc.RankByGender(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, gin.H{"list": result})
}

// MinisterStats 单学期参与统计
// GET /api/v1/analytics/semesters/:id/ministers
func (h *AnalyticsHandler) MinisterStats(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "Semester ID is required")
		return
	}

	result, err := h.analyticsSvc.MinisterStats(c.Request.Context(), id)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, gin.H{"list": result})
}

// SemesterServiceCount 学期场次计数
// GET /api/v1/analytics/semesters/:id/services/count
func (h *AnalyticsHandler) SemesterServiceCount(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "Semester ID is required")
		return
	}

	result, err := h.analyticsSvc.SemesterServiceCount(c.Request.Context(), id)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, result)
}
