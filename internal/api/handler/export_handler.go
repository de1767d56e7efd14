package handler

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"mmarau-music/backend/internal/service"
	"mmarau-music/backend/pkg/response"
)

// ExportHandler 导出与日历订阅 HTTP 处理器
type ExportHandler struct {
	exportSvc   service.ExportService
	calendarSvc service.CalendarService
}

// NewExportHandler 创建 ExportHandler
func NewExportHandler(exportSvc service.ExportService, calendarSvc service.CalendarService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc, calendarSvc: calendarSvc}
}

// ExportRoster 导出学期排班表为 Excel
// GET /api/v1/export/roster?semesterId=xxx
func (h *ExportHandler) ExportRoster(c *gin.Context) {
	semesterID := c.Query("semesterId")
	if semesterID == "" {
		response.BadRequest(c, 10001, "semesterId is required")
		return
	}

	buf, filename, err := h.exportSvc.ExportRoster(c.Request.Context(), semesterID)
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	// 设置下载响应头
	encodedFilename := url.QueryEscape(filename)
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+encodedFilename)
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}

// CalendarFeed 学期排班的 ICS 日历订阅
// GET /api/v1/export/calendar/:id
func (h *ExportHandler) CalendarFeed(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "Semester ID is required")
		return
	}

	feed, err := h.calendarSvc.SemesterFeed(c.Request.Context(), id)
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	c.Header("Content-Disposition", "inline; filename=roster.ics")
	c.Data(http.StatusOK, "text/calendar; charset=utf-8", []byte(feed))
}

func (h *ExportHandler) handleExportError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrSemesterNotFound):
		response.NotFound(c, 12001, "Semester not found")
	case errors.Is(err, service.ErrExportNoServices):
		response.NotFound(c, 15001, "No services found for this semester")
	case errors.Is(err, service.ErrExportGenerateFail):
		response.InternalError(c)
	default:
		response.InternalError(c)
	}
}
