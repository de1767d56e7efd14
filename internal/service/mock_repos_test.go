package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"gorm.io/gorm"

	"mmarau-music/backend/internal/model"
	"mmarau-music/backend/internal/repository"
)

// ── Mock MinisterRepository ──

type mockMinisterRepo struct {
	ministers map[string]*model.Minister
	order     []string // 登记先后，模拟 created_at ASC
	seq       int
	createErr error // 注入 Create 失败（如唯一索引冲突）
}

func newMockMinisterRepo() *mockMinisterRepo {
	return &mockMinisterRepo{ministers: make(map[string]*model.Minister)}
}

func (m *mockMinisterRepo) Create(_ context.Context, minister *model.Minister) error {
	if m.createErr != nil {
		return m.createErr
	}
	if minister.MinisterID == "" {
		m.seq++
		minister.MinisterID = fmt.Sprintf("min-%03d", m.seq)
	}
	m.ministers[minister.MinisterID] = minister
	m.order = append(m.order, minister.MinisterID)
	return nil
}

func (m *mockMinisterRepo) GetByID(_ context.Context, id string) (*model.Minister, error) {
	if mm, ok := m.ministers[id]; ok {
		return mm, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockMinisterRepo) GetByFullName(_ context.Context, fullname string) (*model.Minister, error) {
	for _, mm := range m.ministers {
		if mm.FullName == fullname {
			return mm, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockMinisterRepo) List(_ context.Context, onlyActive bool) ([]model.Minister, error) {
	var result []model.Minister
	for _, id := range m.order {
		mm, ok := m.ministers[id]
		if !ok {
			continue
		}
		if onlyActive && !mm.IsActive {
			continue
		}
		result = append(result, *mm)
	}
	return result, nil
}

func (m *mockMinisterRepo) Update(_ context.Context, minister *model.Minister) error {
	m.ministers[minister.MinisterID] = minister
	return nil
}

func (m *mockMinisterRepo) Delete(_ context.Context, id string) error {
	delete(m.ministers, id)
	return nil
}

func (m *mockMinisterRepo) CountAll(_ context.Context) (int64, error) {
	return int64(len(m.ministers)), nil
}

func (m *mockMinisterRepo) CountByGender(_ context.Context) ([]repository.GenderCount, error) {
	counts := make(map[string]int64)
	for _, mm := range m.ministers {
		counts[mm.Gender]++
	}
	var result []repository.GenderCount
	for _, g := range []string{model.GenderMale, model.GenderFemale} {
		if counts[g] > 0 {
			result = append(result, repository.GenderCount{Gender: g, Total: counts[g]})
		}
	}
	return result, nil
}

// ── Mock SemesterRepository ──

type mockSemesterRepo struct {
	semesters map[string]*model.Semester
	services  *mockServiceRepo // 级联删除用，模拟 ON DELETE CASCADE
	seq       int
	createErr error // 注入 Create 失败（如唯一索引冲突）
}

func newMockSemesterRepo() *mockSemesterRepo {
	return &mockSemesterRepo{semesters: make(map[string]*model.Semester)}
}

func (m *mockSemesterRepo) Create(_ context.Context, semester *model.Semester) error {
	if m.createErr != nil {
		return m.createErr
	}
	if semester.SemesterID == "" {
		m.seq++
		semester.SemesterID = fmt.Sprintf("sem-%03d", m.seq)
	}
	m.semesters[semester.SemesterID] = semester
	return nil
}

func (m *mockSemesterRepo) GetByID(_ context.Context, id string) (*model.Semester, error) {
	if s, ok := m.semesters[id]; ok {
		return s, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockSemesterRepo) GetByName(_ context.Context, name string) (*model.Semester, error) {
	for _, s := range m.semesters {
		if s.Name == name {
			return s, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockSemesterRepo) GetCurrent(_ context.Context) (*model.Semester, error) {
	for _, s := range m.semesters {
		if s.IsActive {
			return s, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockSemesterRepo) List(_ context.Context) ([]model.Semester, error) {
	var result []model.Semester
	for _, s := range m.semesters {
		result = append(result, *s)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].StartDate.After(result[j].StartDate)
	})
	return result, nil
}

func (m *mockSemesterRepo) Update(_ context.Context, semester *model.Semester) error {
	m.semesters[semester.SemesterID] = semester
	return nil
}

func (m *mockSemesterRepo) Delete(_ context.Context, id string) error {
	delete(m.semesters, id)
	// semester_id 外键 ON DELETE CASCADE：学期删除时场次随之删除
	if m.services != nil {
		for sid, s := range m.services.services {
			if s.SemesterID == id {
				delete(m.services.services, sid)
			}
		}
	}
	return nil
}

func (m *mockSemesterRepo) ClearActiveExcept(_ context.Context, excludeID string) error {
	for _, s := range m.semesters {
		if excludeID != "" && s.SemesterID == excludeID {
			continue
		}
		s.IsActive = false
	}
	return nil
}

// ── Mock ServiceRepository ──

// mockServiceRepo 持有 mockMinisterRepo 引用以模拟关联查询（Preload / JOIN）
type mockServiceRepo struct {
	services  map[string]*model.Service
	ministers *mockMinisterRepo
	semesters *mockSemesterRepo
	seq       int
}

func newMockServiceRepo(ministers *mockMinisterRepo, semesters *mockSemesterRepo) *mockServiceRepo {
	return &mockServiceRepo{
		services:  make(map[string]*model.Service),
		ministers: ministers,
		semesters: semesters,
	}
}

func (m *mockServiceRepo) Create(_ context.Context, service *model.Service) error {
	if service.ServiceID == "" {
		m.seq++
		service.ServiceID = fmt.Sprintf("svc-%03d", m.seq)
	}
	for i := range service.Assignments {
		service.Assignments[i].ServiceID = service.ServiceID
	}
	m.services[service.ServiceID] = service
	return nil
}

// expand 复制场次并填充关联（模拟 Preload）
func (m *mockServiceRepo) expand(service *model.Service) *model.Service {
	out := *service
	out.Assignments = make([]model.Assignment, len(service.Assignments))
	copy(out.Assignments, service.Assignments)
	for i := range out.Assignments {
		if mm, ok := m.ministers.ministers[out.Assignments[i].MinisterID]; ok {
			out.Assignments[i].Minister = mm
		}
	}
	if sem, ok := m.semesters.semesters[out.SemesterID]; ok {
		out.Semester = sem
	}
	return &out
}

func (m *mockServiceRepo) GetByID(_ context.Context, id string) (*model.Service, error) {
	if s, ok := m.services[id]; ok {
		return m.expand(s), nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockServiceRepo) List(_ context.Context, filter repository.ServiceFilter) ([]model.Service, error) {
	var result []model.Service
	for _, s := range m.services {
		if filter.SemesterID != "" && s.SemesterID != filter.SemesterID {
			continue
		}
		if filter.ServiceType != "" && s.ServiceType != filter.ServiceType {
			continue
		}
		result = append(result, *m.expand(s))
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].ServiceDate.After(result[j].ServiceDate)
	})
	return result, nil
}

func (m *mockServiceRepo) Update(_ context.Context, service *model.Service) error {
	existing, ok := m.services[service.ServiceID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	updated := *service
	updated.Assignments = existing.Assignments
	updated.Semester = nil
	m.services[service.ServiceID] = &updated
	return nil
}

func (m *mockServiceRepo) ReplaceAssignments(_ context.Context, serviceID string, assignments []model.Assignment) error {
	s, ok := m.services[serviceID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	for i := range assignments {
		assignments[i].ServiceID = serviceID
		assignments[i].Position = i
	}
	s.Assignments = assignments
	return nil
}

func (m *mockServiceRepo) Delete(_ context.Context, id string) error {
	delete(m.services, id)
	return nil
}

func (m *mockServiceRepo) FindBySlot(_ context.Context, day time.Time, serviceType string, excludeID string) (*model.Service, error) {
	key := day.Format("2006-01-02")
	for _, s := range m.services {
		if excludeID != "" && s.ServiceID == excludeID {
			continue
		}
		if s.ServiceDay.Format("2006-01-02") == key && s.ServiceType == serviceType {
			return m.expand(s), nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockServiceRepo) ListRecent(_ context.Context, semesterID string, limit int) ([]model.Service, error) {
	var result []model.Service
	for _, s := range m.services {
		if s.SemesterID != semesterID {
			continue
		}
		result = append(result, *m.expand(s))
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].ServiceDate.After(result[j].ServiceDate)
	})
	if len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (m *mockServiceRepo) CountBySemester(_ context.Context, semesterID string) (int64, error) {
	var count int64
	for _, s := range m.services {
		if s.SemesterID == semesterID {
			count++
		}
	}
	return count, nil
}

func (m *mockServiceRepo) ParticipationTotals(_ context.Context) ([]repository.ParticipationCount, error) {
	totals := make(map[string]int)
	for _, s := range m.services {
		for _, a := range s.Assignments {
			totals[a.MinisterID]++
		}
	}
	var result []repository.ParticipationCount
	for id, n := range totals {
		result = append(result, repository.ParticipationCount{MinisterID: id, Total: n})
	}
	return result, nil
}

func (m *mockServiceRepo) ListSemesterAssignments(_ context.Context, semesterID string) ([]repository.SemesterAssignmentRow, error) {
	var rows []repository.SemesterAssignmentRow
	for _, s := range m.services {
		if s.SemesterID != semesterID {
			continue
		}
		for _, a := range s.Assignments {
			mm, ok := m.ministers.ministers[a.MinisterID]
			if !ok {
				// INNER JOIN 语义：悬挂引用不进统计
				continue
			}
			rows = append(rows, repository.SemesterAssignmentRow{
				MinisterID:  a.MinisterID,
				FullName:    mm.FullName,
				Gender:      mm.Gender,
				Role:        a.Role,
				ServiceDate: s.ServiceDate,
			})
		}
	}
	return rows, nil
}

// ── 聚合 ──

// newMockRepository 组装全 mock 的 Repository（db 为 nil，BeginTx 返回 nil 事务）
func newMockRepository() (*repository.Repository, *mockMinisterRepo, *mockSemesterRepo, *mockServiceRepo) {
	ministers := newMockMinisterRepo()
	semesters := newMockSemesterRepo()
	services := newMockServiceRepo(ministers, semesters)
	semesters.services = services
	repo := &repository.Repository{
		Minister: ministers,
		Semester: semesters,
		Service:  services,
	}
	return repo, ministers, semesters, services
}
