package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
)

// ── ExportRoster 测试 ──

func setupTestExportService() (ExportService, *mockMinisterRepo, *mockSemesterRepo, *mockServiceRepo) {
	repo, ministers, semesters, services := newMockRepository()
	svc := NewExportService(repo, zap.NewNop())
	return svc, ministers, semesters, services
}

func TestExportService_ExportRoster_Success(t *testing.T) {
	svc, ministers, semesters, services := setupTestExportService()
	seedSemester(semesters)
	seedChoir(ministers)

	base := time.Date(2026, 1, 4, 10, 0, 0, 0, time.UTC)
	seedServiceAt(services, "sem-001", "min-s1", base)
	seedServiceAt(services, "sem-001", "min-t1", base.AddDate(0, 0, 7))

	buf, filename, err := svc.ExportRoster(context.Background(), "sem-001")
	if err != nil {
		t.Fatalf("ExportRoster 应成功: %v", err)
	}
	if buf.Len() == 0 {
		t.Error("导出内容不应为空")
	}
	if filename != "roster_Jan-Apr_2026.xlsx" {
		t.Errorf("期望文件名 roster_Jan-Apr_2026.xlsx，实际=%s", filename)
	}
	// xlsx 是 zip 容器，前两字节为 PK
	if b := buf.Bytes(); len(b) < 2 || b[0] != 'P' || b[1] != 'K' {
		t.Error("导出内容应为合法的 xlsx(zip) 文件")
	}
}

func TestExportService_ExportRoster_SemesterNotFound(t *testing.T) {
	svc, _, _, _ := setupTestExportService()

	if _, _, err := svc.ExportRoster(context.Background(), "nonexistent"); !errors.Is(err, ErrSemesterNotFound) {
		t.Errorf("期望 ErrSemesterNotFound，实际: %v", err)
	}
}

func TestExportService_ExportRoster_NoServices(t *testing.T) {
	svc, _, semesters, _ := setupTestExportService()
	seedSemester(semesters)

	if _, _, err := svc.ExportRoster(context.Background(), "sem-001"); !errors.Is(err, ErrExportNoServices) {
		t.Errorf("期望 ErrExportNoServices，实际: %v", err)
	}
}

// ── SemesterFeed 测试 ──

func setupTestCalendarService() (CalendarService, *mockMinisterRepo, *mockSemesterRepo, *mockServiceRepo) {
	repo, ministers, semesters, services := newMockRepository()
	svc := NewCalendarService(repo, zap.NewNop())
	return svc, ministers, semesters, services
}

func TestCalendarService_SemesterFeed_Success(t *testing.T) {
	svc, ministers, semesters, services := setupTestCalendarService()
	seedSemester(semesters)
	seedChoir(ministers)

	base := time.Date(2026, 1, 4, 10, 0, 0, 0, time.UTC)
	seedServiceAt(services, "sem-001", "min-s1", base)

	feed, err := svc.SemesterFeed(context.Background(), "sem-001")
	if err != nil {
		t.Fatalf("SemesterFeed 应成功: %v", err)
	}
	if !strings.Contains(feed, "BEGIN:VCALENDAR") || !strings.Contains(feed, "END:VCALENDAR") {
		t.Error("输出应为合法的 iCalendar 内容")
	}
	if !strings.Contains(feed, "BEGIN:VEVENT") {
		t.Error("每场礼拜应生成一个 VEVENT")
	}
	if !strings.Contains(feed, "Sunday Service") {
		t.Error("事件标题应标明礼拜类型")
	}
	if !strings.Contains(feed, "Grace Wanjiru") {
		t.Error("事件描述应包含名单牧者")
	}
}

func TestCalendarService_SemesterFeed_EmptySemester(t *testing.T) {
	svc, _, semesters, _ := setupTestCalendarService()
	seedSemester(semesters)

	feed, err := svc.SemesterFeed(context.Background(), "sem-001")
	if err != nil {
		t.Fatalf("空学期应返回空日历而非错误: %v", err)
	}
	if !strings.Contains(feed, "BEGIN:VCALENDAR") {
		t.Error("空学期仍应返回合法的日历骨架")
	}
	if strings.Contains(feed, "BEGIN:VEVENT") {
		t.Error("空学期不应有事件")
	}
}

func TestCalendarService_SemesterFeed_SemesterNotFound(t *testing.T) {
	svc, _, _, _ := setupTestCalendarService()

	if _, err := svc.SemesterFeed(context.Background(), "nonexistent"); !errors.Is(err, ErrSemesterNotFound) {
		t.Errorf("期望 ErrSemesterNotFound，实际: %v", err)
	}
}
