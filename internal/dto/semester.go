package dto

// ── 学期模块 DTO ──

// CreateSemesterRequest 创建学期请求
// IsActive 缺省为 true（与排班页"新建即启用"的习惯一致）
type CreateSemesterRequest struct {
	Name      string `json:"name"       binding:"required,min=2,max=100"`
	StartDate string `json:"start_date" binding:"required"` // "2026-01-01"
	EndDate   string `json:"end_date"   binding:"required"` // "2026-04-30"
	IsActive  *bool  `json:"is_active"`
}

// UpdateSemesterRequest 更新学期请求（部分更新）
type UpdateSemesterRequest struct {
	Name      *string `json:"name"       binding:"omitempty,min=2,max=100"`
	StartDate *string `json:"start_date"`
	EndDate   *string `json:"end_date"`
	IsActive  *bool   `json:"is_active"`
}

// SemesterResponse 学期信息响应
type SemesterResponse struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	StartDate  string `json:"start_date"`
	EndDate    string `json:"end_date"`
	TotalWeeks int    `json:"total_weeks"`
	IsActive   bool   `json:"is_active"`
	CreatedAt  string `json:"created_at"`
	UpdatedAt  string `json:"updated_at"`
}
