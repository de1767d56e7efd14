package model

import (
	"database/sql/driver"
	"fmt"
	"strings"
	"time"
)

// ── PostgreSQL TEXT[] 自定义类型 ──

// StringArray 对应 PostgreSQL TEXT[] 类型，实现 GORM Scanner/Valuer 接口。
// 仅面向枚举词（声部名），不处理含逗号或引号的元素。
type StringArray []string

// Scan 将 PostgreSQL 返回的 {soprano,alto} 文本解析为 []string。
func (a *StringArray) Scan(src interface{}) error {
	if src == nil {
		*a = nil
		return nil
	}
	var s string
	switch v := src.(type) {
	case []byte:
		s = string(v)
	case string:
		s = v
	default:
		return fmt.Errorf("StringArray.Scan: unsupported type %T", src)
	}
	s = strings.Trim(s, "{}")
	if s == "" {
		*a = StringArray{}
		return nil
	}
	parts := strings.Split(s, ",")
	arr := make(StringArray, 0, len(parts))
	for _, p := range parts {
		arr = append(arr, strings.Trim(strings.TrimSpace(p), `"`))
	}
	*a = arr
	return nil
}

// Value 将 []string 序列化为 PostgreSQL {a,b,c} 文本。
func (a StringArray) Value() (driver.Value, error) {
	if a == nil {
		return nil, nil
	}
	return "{" + strings.Join(a, ",") + "}", nil
}

// BaseModel 通用审计字段（所有业务模型嵌入）
type BaseModel struct {
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}
