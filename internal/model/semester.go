package model

import "time"

// Semester 学期表 — 对应 semesters
type Semester struct {
	SemesterID string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"semester_id"`
	Name       string    `gorm:"type:varchar(100);not null"                     json:"name"`
	StartDate  time.Time `gorm:"type:date;not null"                             json:"start_date"`
	EndDate    time.Time `gorm:"type:date;not null"                             json:"end_date"`
	// TotalWeeks 派生字段：ceil(天数跨度 / 7)，每次保存前由业务层重算
	TotalWeeks int  `gorm:"not null"                                       json:"total_weeks"`
	IsActive   bool `gorm:"not null;default:false"                         json:"is_active"`
	BaseModel
}

// TableName 指定表名
func (Semester) TableName() string { return "semesters" }

// ComputeTotalWeeks 按日期跨度重算总周数（向上取整）
func (s *Semester) ComputeTotalWeeks() {
	days := s.EndDate.Sub(s.StartDate).Hours() / 24
	weeks := int(days / 7)
	if days > float64(weeks*7) {
		weeks++
	}
	s.TotalWeeks = weeks
}
