package dto

// ── 牧者模块 DTO ──

// CreateMinisterRequest 创建牧者请求
type CreateMinisterRequest struct {
	FullName string   `json:"fullname" binding:"required,min=2,max=100"`
	Gender   string   `json:"gender"   binding:"required,oneof=male female"`
	Voices   []string `json:"voices"   binding:"required,min=1,dive,oneof=soprano alto tenor"`
}

// UpdateMinisterRequest 更新牧者请求（部分更新）
type UpdateMinisterRequest struct {
	FullName *string  `json:"fullname" binding:"omitempty,min=2,max=100"`
	Gender   *string  `json:"gender"   binding:"omitempty,oneof=male female"`
	Voices   []string `json:"voices"   binding:"omitempty,min=1,dive,oneof=soprano alto tenor"`
	IsActive *bool    `json:"is_active"`
}

// MinisterResponse 牧者信息响应
type MinisterResponse struct {
	ID        string   `json:"id"`
	FullName  string   `json:"fullname"`
	Gender    string   `json:"gender"`
	Voices    []string `json:"voices"`
	IsActive  bool     `json:"is_active"`
	CreatedAt string   `json:"created_at"`
	UpdatedAt string   `json:"updated_at"`
}

// MinisterAvailabilityResponse 带"近期已排"标记的牧者响应
type MinisterAvailabilityResponse struct {
	MinisterResponse
	HasServedRecently bool `json:"hasServedRecently"`
}
