package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"mmarau-music/backend/internal/dto"
	"mmarau-music/backend/internal/service"
	"mmarau-music/backend/pkg/response"
)

// ServiceHandler 礼拜场次模块 HTTP 处理器
type ServiceHandler struct {
	rosterSvc service.RosterService
}

// NewServiceHandler 创建 ServiceHandler
func NewServiceHandler(rosterSvc service.RosterService) *ServiceHandler {
	return &ServiceHandler{rosterSvc: rosterSvc}
}

// ListServices 获取场次列表（可按学期/类型过滤）
// GET /api/v1/services?semesterId=xxx&serviceType=sunday
func (h *ServiceHandler) ListServices(c *gin.Context) {
	services, err := h.rosterSvc.List(c.Request.Context(), c.Query("semesterId"), c.Query("serviceType"))
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, gin.H{"list": services})
}

// GetService 获取场次详情
// GET /api/v1/services/:id
func (h *ServiceHandler) GetService(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "Service ID is required")
		return
	}

	svc, err := h.rosterSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	response.OK(c, svc)
}

// CreateService 创建场次（含完整名单校验）
// POST /api/v1/services
func (h *ServiceHandler) CreateService(c *gin.Context) {
	var req dto.CreateServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 13002, "Missing required fields")
		return
	}

	svc, err := h.rosterSvc.Create(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	response.Created(c, svc)
}

// UpdateService 更新场次（部分更新，校验合并后的完整状态）
// PUT /api/v1/services/:id
func (h *ServiceHandler) UpdateService(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "Service ID is required")
		return
	}

	var req dto.UpdateServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "Invalid request body")
		return
	}

	svc, err := h.rosterSvc.Update(c.Request.Context(), id, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	response.OK(c, svc)
}

// DeleteService 删除场次（名单级联删除）
// DELETE /api/v1/services/:id
func (h *ServiceHandler) DeleteService(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "Service ID is required")
		return
	}

	if err := h.rosterSvc.Delete(c.Request.Context(), id); err != nil {
		h.handleServiceError(c, err)
		return
	}

	response.OK(c, nil)
}

// handleServiceError 统一处理场次模块业务错误。
// 日期越界错误携带学期边界，文案由错误自身给出。
func (h *ServiceHandler) handleServiceError(c *gin.Context, err error) {
	var rangeErr *service.DateOutOfRangeError

	switch {
	case errors.Is(err, service.ErrServiceNotFound):
		response.NotFound(c, 13001, "Service not found")
	case errors.Is(err, service.ErrMissingFields):
		response.BadRequest(c, 13002, "Missing required fields")
	case errors.As(err, &rangeErr):
		response.BadRequest(c, 13003, rangeErr.Error())
	case errors.Is(err, service.ErrDuplicateMinister):
		response.BadRequest(c, 13004, "A minister cannot appear more than once in a service")
	case errors.Is(err, service.ErrRosterIncomplete):
		response.BadRequest(c, 13005, "Service must have lead and backup for soprano, alto, and tenor")
	case errors.Is(err, service.ErrSlotTaken):
		response.BadRequest(c, 13006, "Service already exists for this date and type")
	case errors.Is(err, service.ErrBadDate):
		response.BadRequest(c, 13007, "Invalid date format")
	case errors.Is(err, service.ErrSemesterNotFound):
		response.NotFound(c, 12001, "Semester not found")
	default:
		response.InternalError(c)
	}
}
