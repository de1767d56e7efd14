package model

// ── 性别 / 声部 / 角色枚举 ──

const (
	GenderMale   = "male"
	GenderFemale = "female"
)

const (
	VoiceSoprano = "soprano"
	VoiceAlto    = "alto"
	VoiceTenor   = "tenor"
)

const (
	RoleLead   = "lead"
	RoleBackup = "backup"
)

// Voices 全部声部（完整性校验按此遍历）
var Voices = []string{VoiceSoprano, VoiceAlto, VoiceTenor}

// Minister 牧者（诗班成员）表 — 对应 ministers
type Minister struct {
	MinisterID string      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"minister_id"`
	FullName   string      `gorm:"column:fullname;type:varchar(100);not null"     json:"fullname"`
	Gender     string      `gorm:"type:varchar(10);not null"                      json:"gender"` // male | female
	Voices     StringArray `gorm:"type:text[];not null"                           json:"voices"` // soprano | alto | tenor
	IsActive   bool        `gorm:"not null;default:true"                          json:"is_active"`
	BaseModel
}

// TableName 指定表名
func (Minister) TableName() string { return "ministers" }
