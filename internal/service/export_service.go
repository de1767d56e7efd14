package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"mmarau-music/backend/internal/model"
	"mmarau-music/backend/internal/repository"
)

// ── 导出模块业务错误 ──

var (
	ErrExportNoServices   = errors.New("no services found for this semester")
	ErrExportGenerateFail = errors.New("failed to generate excel file")
)

// ExportService 导出业务接口
//
// 设计说明：
//   - 导出单学期的全部排班为 Excel (.xlsx)，按日期升序一行一场
//   - 导出以 bytes.Buffer 返回，由 Handler 层设置 HTTP 响应头后写入 Response
//   - 列结构：日期 / 类型之后，每个声部两列（lead / backup），
//     同一格多人用逗号分隔
type ExportService interface {
	// ExportRoster 导出学期排班表为 Excel
	ExportRoster(ctx context.Context, semesterID string) (*bytes.Buffer, string, error)
}

type exportService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewExportService 创建 ExportService 实例
func NewExportService(repo *repository.Repository, logger *zap.Logger) ExportService {
	return &exportService{repo: repo, logger: logger}
}

// ═══════════════════════════════════════════════════════════
// ExportRoster — 导出学期排班表为 Excel
// ═══════════════════════════════════════════════════════════
//
// 输出格式：
//   - 单 Sheet "Roster"
//   - 行头: Date | Day | Type | Soprano (Lead) | Soprano (Backup) | Alto … | Tenor …
//   - 单元格: 牧者姓名，同声部同角色多人以 ", " 连接
//
// 返回值：buf（Excel 内容）, filename（建议文件名）, error

func (s *exportService) ExportRoster(ctx context.Context, semesterID string) (*bytes.Buffer, string, error) {
	// 1. 学期必须存在（文件名和标题都要用学期名）
	semester, err := s.repo.Semester.GetByID(ctx, semesterID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrSemesterNotFound
		}
		s.logger.Error("查询学期失败", zap.String("id", semesterID), zap.Error(err))
		return nil, "", err
	}

	// 2. 查询学期内全部场次
	services, err := s.repo.Service.List(ctx, repository.ServiceFilter{SemesterID: semesterID})
	if err != nil {
		s.logger.Error("查询学期场次失败", zap.Error(err))
		return nil, "", err
	}
	if len(services) == 0 {
		return nil, "", ErrExportNoServices
	}

	// List 默认日期倒序，导出按时间正序更顺眼
	sort.Slice(services, func(i, j int) bool {
		return services[i].ServiceDate.Before(services[j].ServiceDate)
	})

	// 3. 生成 Excel
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Roster"
	idx, _ := f.NewSheet(sheetName)
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	// 列宽：日期/星期/类型窄列，六个名单列宽列
	f.SetColWidth(sheetName, "A", "A", 12)
	f.SetColWidth(sheetName, "B", "B", 10)
	f.SetColWidth(sheetName, "C", "C", 10)
	f.SetColWidth(sheetName, "D", "I", 24)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	// 标题行
	f.SetCellValue(sheetName, "A1", fmt.Sprintf("%s — Service Roster", semester.Name))
	f.MergeCell(sheetName, "A1", "I1")
	f.SetCellStyle(sheetName, "A1", "A1", headerStyle)

	// 表头
	headers := []string{"Date", "Day", "Type",
		"Soprano (Lead)", "Soprano (Backup)",
		"Alto (Lead)", "Alto (Backup)",
		"Tenor (Lead)", "Tenor (Backup)"}
	for i, h := range headers {
		col, _ := excelize.ColumnNumberToName(i + 1)
		f.SetCellValue(sheetName, cell(col, 2), h)
	}

	// 数据行
	row := 3
	for i := range services {
		svc := &services[i]

		// "voice:role" → 姓名列表
		names := make(map[string][]string)
		for _, a := range svc.Assignments {
			if a.Minister == nil {
				continue
			}
			key := a.Voice + ":" + a.Role
			names[key] = append(names[key], a.Minister.FullName)
		}

		f.SetCellValue(sheetName, cell("A", row), svc.ServiceDate.Format("2006-01-02"))
		f.SetCellValue(sheetName, cell("B", row), svc.ServiceDate.Format("Monday"))
		f.SetCellValue(sheetName, cell("C", row), svc.ServiceType)

		col := 4
		for _, voice := range model.Voices {
			for _, role := range []string{model.RoleLead, model.RoleBackup} {
				text := strings.Join(names[voice+":"+role], ", ")
				if text == "" {
					text = "-"
				}
				name, _ := excelize.ColumnNumberToName(col)
				f.SetCellValue(sheetName, cell(name, row), text)
				col++
			}
		}
		row++
	}

	// 写入 buffer
	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("roster_%s.xlsx", strings.ReplaceAll(semester.Name, " ", "_"))
	return buf, filename, nil
}

// ── 辅助函数 ──

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
