package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"mmarau-music/backend/internal/model"
	"mmarau-music/backend/internal/repository"
)

// 礼拜时长约定一小时，ICS 事件需要一个结束时间
const serviceDuration = time.Hour

// CalendarService 日历订阅业务接口
//
// 将学期排班生成标准 iCalendar (RFC 5545) 内容，
// 牧者把订阅链接加进手机日历即可跟进自己的排班。
type CalendarService interface {
	// SemesterFeed 生成学期排班的 ICS 日历内容
	SemesterFeed(ctx context.Context, semesterID string) (string, error)
}

type calendarService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewCalendarService 创建 CalendarService 实例
func NewCalendarService(repo *repository.Repository, logger *zap.Logger) CalendarService {
	return &calendarService{repo: repo, logger: logger}
}

func (s *calendarService) SemesterFeed(ctx context.Context, semesterID string) (string, error) {
	semester, err := s.repo.Semester.GetByID(ctx, semesterID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrSemesterNotFound
		}
		s.logger.Error("查询学期失败", zap.String("id", semesterID), zap.Error(err))
		return "", err
	}

	services, err := s.repo.Service.List(ctx, repository.ServiceFilter{SemesterID: semesterID})
	if err != nil {
		s.logger.Error("查询学期场次失败", zap.Error(err))
		return "", err
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//MMARAU Music Ministry//Roster//EN")
	cal.SetName(fmt.Sprintf("%s — Music Ministry Roster", semester.Name))

	// 空学期返回合法的空日历，订阅端静默等待新场次
	for i := range services {
		svc := &services[i]

		event := cal.AddEvent(fmt.Sprintf("%s@mmarau-music", svc.ServiceID))
		event.SetDtStampTime(svc.UpdatedAt)
		event.SetStartAt(svc.ServiceDate)
		event.SetEndAt(svc.ServiceDate.Add(serviceDuration))
		event.SetSummary(summaryFor(svc.ServiceType))
		event.SetDescription(rosterDescription(svc.Assignments))
	}

	return cal.Serialize(), nil
}

// ── 内部辅助方法 ──

func summaryFor(serviceType string) string {
	switch serviceType {
	case model.ServiceTypeSunday:
		return "Sunday Service — Music Ministry"
	case model.ServiceTypeSaturday:
		return "Saturday Service — Music Ministry"
	default:
		return "Service — Music Ministry"
	}
}

// rosterDescription 按声部列出名单，每个声部一行
func rosterDescription(assignments []model.Assignment) string {
	names := make(map[string][]string)
	for _, a := range assignments {
		if a.Minister == nil {
			continue
		}
		label := a.Minister.FullName
		if a.Role == model.RoleLead {
			label += " (lead)"
		}
		names[a.Voice] = append(names[a.Voice], label)
	}

	lines := make([]string, 0, len(model.Voices))
	for _, voice := range model.Voices {
		if len(names[voice]) == 0 {
			continue
		}
		lines = append(lines, fmt.Sprintf("%s: %s", titleVoice(voice), strings.Join(names[voice], ", ")))
	}

	return strings.Join(lines, "\n")
}

func titleVoice(voice string) string {
	if voice == "" {
		return voice
	}
	return strings.ToUpper(voice[:1]) + voice[1:]
}
