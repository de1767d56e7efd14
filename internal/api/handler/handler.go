package handler

import "mmarau-music/backend/internal/service"

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Minister  *MinisterHandler
	Semester  *SemesterHandler
	Service   *ServiceHandler
	Analytics *AnalyticsHandler
	Export    *ExportHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Minister:  NewMinisterHandler(svc.Minister, svc.Roster),
		Semester:  NewSemesterHandler(svc.Semester),
		Service:   NewServiceHandler(svc.Roster),
		Analytics: NewAnalyticsHandler(svc.Analytics),
		Export:    NewExportHandler(svc.Export, svc.Calendar),
	}
}
