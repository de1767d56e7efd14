package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"mmarau-music/backend/internal/dto"
	"mmarau-music/backend/internal/service"
	"mmarau-music/backend/pkg/response"
)

// SemesterHandler 学期模块 HTTP 处理器
type SemesterHandler struct {
	semesterSvc service.SemesterService
}

// NewSemesterHandler 创建 SemesterHandler
func NewSemesterHandler(semesterSvc service.SemesterService) *SemesterHandler {
	return &SemesterHandler{semesterSvc: semesterSvc}
}

// ListSemesters 获取学期列表
// GET /api/v1/semesters
func (h *SemesterHandler) ListSemesters(c *gin.Context) {
	semesters, err := h.semesterSvc.List(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, gin.H{"list": semesters})
}

// GetSemester 获取学期详情
// GET /api/v1/semesters/:id
func (h *SemesterHandler) GetSemester(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "Semester ID is required")
		return
	}

	semester, err := h.semesterSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleSemesterError(c, err)
		return
	}

	response.OK(c, semester)
}

// GetCurrentSemester 获取当前（激活）学期
// GET /api/v1/semesters/current
func (h *SemesterHandler) GetCurrentSemester(c *gin.Context) {
	semester, err := h.semesterSvc.GetCurrent(c.Request.Context())
	if err != nil {
		h.handleSemesterError(c, err)
		return
	}

	response.OK(c, semester)
}

// CreateSemester 创建学期
// POST /api/v1/semesters
func (h *SemesterHandler) CreateSemester(c *gin.Context) {
	var req dto.CreateSemesterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "Invalid request body")
		return
	}

	semester, err := h.semesterSvc.Create(c.Request.Context(), &req)
	if err != nil {
		h.handleSemesterError(c, err)
		return
	}

	response.Created(c, semester)
}

// UpdateSemester 更新学期
// PUT /api/v1/semesters/:id
func (h *SemesterHandler) UpdateSemester(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "Semester ID is required")
		return
	}

	var req dto.UpdateSemesterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "Invalid request body")
		return
	}

	semester, err := h.semesterSvc.Update(c.Request.Context(), id, &req)
	if err != nil {
		h.handleSemesterError(c, err)
		return
	}

	response.OK(c, semester)
}

// ActivateSemester 激活学期（自动停用其他学期）
// PUT /api/v1/semesters/:id/activate
func (h *SemesterHandler) ActivateSemester(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "Semester ID is required")
		return
	}

	if err := h.semesterSvc.Activate(c.Request.Context(), id); err != nil {
		h.handleSemesterError(c, err)
		return
	}

	response.OK(c, nil)
}

// DeactivateSemester 停用学期
// PUT /api/v1/semesters/:id/deactivate
func (h *SemesterHandler) DeactivateSemester(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "Semester ID is required")
		return
	}

	if err := h.semesterSvc.Deactivate(c.Request.Context(), id); err != nil {
		h.handleSemesterError(c, err)
		return
	}

	response.OK(c, nil)
}

// DeleteSemester 删除学期
// DELETE /api/v1/semesters/:id
func (h *SemesterHandler) DeleteSemester(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "Semester ID is required")
		return
	}

	if err := h.semesterSvc.Delete(c.Request.Context(), id); err != nil {
		h.handleSemesterError(c, err)
		return
	}

	response.OK(c, nil)
}

// handleSemesterError 统一处理学期模块业务错误
func (h *SemesterHandler) handleSemesterError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrSemesterNotFound):
		response.NotFound(c, 12001, "Semester not found")
	case errors.Is(err, service.ErrSemesterNameExists):
		response.BadRequest(c, 12002, "Semester name already exists")
	case errors.Is(err, service.ErrSemesterDateInvalid):
		response.BadRequest(c, 12003, "End date must be after start date")
	default:
		response.InternalError(c)
	}
}
