package dto

import (
	"encoding/json"
	"fmt"
)

// ── 礼拜场次模块 DTO ──

// MinisterRef 排班条目中的牧者引用。
// 前端既可能提交裸 ID 字符串，也可能把展开后的牧者对象原样传回，
// 两种形态统一归一化为同一个可比较的 ID。
type MinisterRef struct {
	ID string
}

// UnmarshalJSON 接受 "uuid" / {"minister_id": "uuid"} / {"_id": "uuid"} / {"id": "uuid"}
func (r *MinisterRef) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		r.ID = s
		return nil
	}

	var obj struct {
		MinisterID string `json:"minister_id"`
		MongoID    string `json:"_id"`
		ID         string `json:"id"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("minister_id 必须为字符串或对象: %w", err)
	}
	switch {
	case obj.MinisterID != "":
		r.ID = obj.MinisterID
	case obj.MongoID != "":
		r.ID = obj.MongoID
	default:
		r.ID = obj.ID
	}
	return nil
}

// MarshalJSON 始终输出裸 ID 字符串
func (r MinisterRef) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.ID)
}

// AssignmentInput 排班条目请求
type AssignmentInput struct {
	MinisterID MinisterRef `json:"minister_id" binding:"required"`
	Voice      string      `json:"voice"       binding:"required,oneof=soprano alto tenor"`
	Role       string      `json:"role"        binding:"required,oneof=lead backup"`
}

// CreateServiceRequest 创建礼拜场次请求
type CreateServiceRequest struct {
	Date        string            `json:"date"         binding:"required"` // "2026-01-07" 或 RFC3339
	ServiceType string            `json:"service_type" binding:"required,oneof=sunday saturday"`
	SemesterID  string            `json:"semester_id"  binding:"required"`
	Ministers   []AssignmentInput `json:"ministers"    binding:"required,min=1,dive"`
}

// UpdateServiceRequest 更新礼拜场次请求（部分更新，校验作用于合并后的状态）
type UpdateServiceRequest struct {
	Date        *string           `json:"date"`
	ServiceType *string           `json:"service_type" binding:"omitempty,oneof=sunday saturday"`
	SemesterID  *string           `json:"semester_id"`
	Ministers   []AssignmentInput `json:"ministers"    binding:"omitempty,min=1,dive"`
}

// AssignmentResponse 排班条目响应（含展开的牧者字段）
type AssignmentResponse struct {
	MinisterID string `json:"minister_id"`
	FullName   string `json:"fullname,omitempty"`
	Gender     string `json:"gender,omitempty"`
	Voice      string `json:"voice"`
	Role       string `json:"role"`
}

// ServiceResponse 礼拜场次响应
type ServiceResponse struct {
	ID           string               `json:"id"`
	Date         string               `json:"date"`
	ServiceType  string               `json:"service_type"`
	SemesterID   string               `json:"semester_id"`
	SemesterName string               `json:"semester_name,omitempty"`
	Ministers    []AssignmentResponse `json:"ministers"`
	CreatedAt    string               `json:"created_at"`
	UpdatedAt    string               `json:"updated_at"`
}
