package dto

// ── 分析模块 DTO ──

// TotalMinistersResponse 牧者总数
type TotalMinistersResponse struct {
	Total int64 `json:"total"`
}

// GenderCountResponse 按性别分组计数
type GenderCountResponse struct {
	Gender string `json:"gender"`
	Total  int64  `json:"total"`
}

// RankedMinisterResponse 全体参与度排名条目
type RankedMinisterResponse struct {
	Rank          int    `json:"rank"`
	MinisterID    string `json:"minister_id"`
	Name          string `json:"name"`
	Gender        string `json:"gender"`
	IsActive      bool   `json:"is_active"`
	TotalServices int    `json:"totalServices"`
}

// GenderRankedMinister 性别分组内的排名条目
type GenderRankedMinister struct {
	Rank          int    `json:"rank"`
	Name          string `json:"name"`
	TotalServices int    `json:"totalServices"`
}

// GenderRankGroupResponse 一个性别分组的排名结果
type GenderRankGroupResponse struct {
	Gender    string                 `json:"gender"`
	Ministers []GenderRankedMinister `json:"ministers"`
}

// MinisterStatsResponse 单学期内某牧者的参与统计
type MinisterStatsResponse struct {
	MinisterID    string   `json:"minister_id"`
	Name          string   `json:"name"`
	Gender        string   `json:"gender"`
	TotalServices int      `json:"totalServices"`
	LeadCount     int      `json:"leadCount"`
	BackupCount   int      `json:"backupCount"`
	ServiceDates  []string `json:"serviceDates"`
}

// ServiceCountResponse 学期场次计数
type ServiceCountResponse struct {
	Total int64 `json:"total"`
}
