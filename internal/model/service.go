package model

import "time"

// ── 礼拜类型枚举 ──

const (
	ServiceTypeSunday   = "sunday"
	ServiceTypeSaturday = "saturday"
)

// Service 礼拜场次表 — 对应 services
// 一场礼拜独占其排班名单（Assignment 不可独立寻址，随场次级联删除）
type Service struct {
	ServiceID   string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"service_id"`
	ServiceDate time.Time `gorm:"type:timestamptz;not null"                      json:"date"`
	// ServiceDay 日历日投影（槽位唯一键的一半），业务层在保存前由 ServiceDate 推导
	ServiceDay  time.Time `gorm:"type:date;not null"                             json:"-"`
	ServiceType string    `gorm:"type:varchar(10);not null"                      json:"service_type"` // sunday | saturday
	SemesterID  string    `gorm:"type:uuid;not null"                             json:"semester_id"`
	BaseModel

	// 关联
	Semester    *Semester    `gorm:"foreignKey:SemesterID;references:SemesterID" json:"semester,omitempty"`
	Assignments []Assignment `gorm:"foreignKey:ServiceID"                        json:"ministers,omitempty"`
}

// TableName 指定表名
func (Service) TableName() string { return "services" }

// Assignment 排班条目表 — 对应 service_assignments
// (minister, voice, role) 三元组；MinisterID 无外键，容忍悬挂引用
type Assignment struct {
	AssignmentID string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"assignment_id"`
	ServiceID    string `gorm:"type:uuid;not null"                             json:"-"`
	MinisterID   string `gorm:"type:uuid;not null"                             json:"minister_id"`
	Voice        string `gorm:"type:varchar(10);not null"                      json:"voice"` // soprano | alto | tenor
	Role         string `gorm:"type:varchar(10);not null"                      json:"role"`  // lead | backup
	Position     int    `gorm:"not null;default:0"                             json:"-"`     // 名单内顺序

	// 关联
	Minister *Minister `gorm:"foreignKey:MinisterID;references:MinisterID" json:"minister,omitempty"`
}

// TableName 指定表名
func (Assignment) TableName() string { return "service_assignments" }

// DayBounds 返回 date 所在日历日的起止时刻 [00:00:00, 23:59:59.999999999]
func DayBounds(date time.Time) (time.Time, time.Time) {
	y, m, d := date.Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, date.Location())
	end := time.Date(y, m, d, 23, 59, 59, int(time.Second-time.Nanosecond), date.Location())
	return start, end
}
