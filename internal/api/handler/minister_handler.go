package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"mmarau-music/backend/internal/dto"
	"mmarau-music/backend/internal/service"
	"mmarau-music/backend/pkg/response"
)

// MinisterHandler 牧者模块 HTTP 处理器
type MinisterHandler struct {
	ministerSvc service.MinisterService
	rosterSvc   service.RosterService
}

// NewMinisterHandler 创建 MinisterHandler
func NewMinisterHandler(ministerSvc service.MinisterService, rosterSvc service.RosterService) *MinisterHandler {
	return &MinisterHandler{ministerSvc: ministerSvc, rosterSvc: rosterSvc}
}

// ListMinisters 获取牧者列表
// GET /api/v1/ministers
func (h *MinisterHandler) ListMinisters(c *gin.Context) {
	ministers, err := h.ministerSvc.List(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, gin.H{"list": ministers})
}

// GetMinister 获取牧者详情
// GET /api/v1/ministers/:id
func (h *MinisterHandler) GetMinister(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "Minister ID is required")
		return
	}

	minister, err := h.ministerSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleMinisterError(c, err)
		return
	}

	response.OK(c, minister)
}

// CreateMinister 登记牧者
// POST /api/v1/ministers
func (h *MinisterHandler) CreateMinister(c *gin.Context) {
	var req dto.CreateMinisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "Invalid request body")
		return
	}

	minister, err := h.ministerSvc.Create(c.Request.Context(), &req)
	if err != nil {
		h.handleMinisterError(c, err)
		return
	}

	response.Created(c, minister)
}

// UpdateMinister 更新牧者
// PUT /api/v1/ministers/:id
func (h *MinisterHandler) UpdateMinister(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "Minister ID is required")
		return
	}

	var req dto.UpdateMinisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "Invalid request body")
		return
	}

	minister, err := h.ministerSvc.Update(c.Request.Context(), id, &req)
	if err != nil {
		h.handleMinisterError(c, err)
		return
	}

	response.OK(c, minister)
}

// DeactivateMinister 停用牧者（保留历史排班）
// PUT /api/v1/ministers/:id/deactivate
func (h *MinisterHandler) DeactivateMinister(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "Minister ID is required")
		return
	}

	if err := h.ministerSvc.Deactivate(c.Request.Context(), id); err != nil {
		h.handleMinisterError(c, err)
		return
	}

	response.OK(c, nil)
}

// DeleteMinister 永久删除牧者
// DELETE /api/v1/ministers/:id
func (h *MinisterHandler) DeleteMinister(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "Minister ID is required")
		return
	}

	if err := h.ministerSvc.Delete(c.Request.Context(), id); err != nil {
		h.handleMinisterError(c, err)
		return
	}

	response.OK(c, nil)
}

// ListAvailability 获取在册牧者的"近期已排"标记
// GET /api/v1/ministers/availability?semesterId=xxx
func (h *MinisterHandler) ListAvailability(c *gin.Context) {
	semesterID := c.Query("semesterId")
	if semesterID == "" {
		response.BadRequest(c, 10001, "semesterId is required")
		return
	}

	ministers, err := h.rosterSvc.MinistersWithRecentFlag(c.Request.Context(), semesterID)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, gin.H{"list": ministers})
}

// handleMinisterError 统一处理牧者模块业务错误
func (h *MinisterHandler) handleMinisterError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrMinisterNotFound):
		response.NotFound(c, 11001, "Minister not found")
	case errors.Is(err, service.ErrMinisterExists):
		response.BadRequest(c, 11002, "Minister already exists")
	default:
		response.InternalError(c)
	}
}
