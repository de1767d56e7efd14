package service

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"

	"mmarau-music/backend/internal/dto"
	"mmarau-music/backend/internal/model"
)

// ── 测试辅助 ──

func setupTestMinisterService() (MinisterService, *mockMinisterRepo) {
	repo, ministers, _, _ := newMockRepository()
	svc := NewMinisterService(repo, zap.NewNop())
	return svc, ministers
}

// ── Create 测试 ──

func TestMinisterService_Create_Success(t *testing.T) {
	svc, _ := setupTestMinisterService()

	req := &dto.CreateMinisterRequest{
		FullName: "Grace Wanjiru",
		Gender:   model.GenderFemale,
		Voices:   []string{model.VoiceSoprano, model.VoiceAlto},
	}

	result, err := svc.Create(context.Background(), req)
	if err != nil {
		t.Fatalf("Create 应成功: %v", err)
	}
	if result.FullName != "Grace Wanjiru" {
		t.Errorf("期望 FullName=Grace Wanjiru，实际=%s", result.FullName)
	}
	if !result.IsActive {
		t.Error("新登记牧者应默认在册")
	}
	if len(result.Voices) != 2 {
		t.Errorf("期望 2 个声部，实际=%d", len(result.Voices))
	}
}

func TestMinisterService_Create_DuplicateName(t *testing.T) {
	svc, _ := setupTestMinisterService()

	req := &dto.CreateMinisterRequest{
		FullName: "Grace Wanjiru",
		Gender:   model.GenderFemale,
		Voices:   []string{model.VoiceSoprano},
	}
	if _, err := svc.Create(context.Background(), req); err != nil {
		t.Fatalf("首次创建应成功: %v", err)
	}

	if _, err := svc.Create(context.Background(), req); !errors.Is(err, ErrMinisterExists) {
		t.Errorf("期望 ErrMinisterExists，实际: %v", err)
	}
}

func TestMinisterService_Create_NameRace(t *testing.T) {
	svc, ministers := setupTestMinisterService()

	// 预检通过后并发登记撞上唯一索引，库层错误映射回同一业务错误
	ministers.createErr = &pgconn.PgError{Code: "23505"}

	_, err := svc.Create(context.Background(), &dto.CreateMinisterRequest{
		FullName: "Grace Wanjiru",
		Gender:   model.GenderFemale,
		Voices:   []string{model.VoiceSoprano},
	})
	if !errors.Is(err, ErrMinisterExists) {
		t.Errorf("期望 ErrMinisterExists，实际: %v", err)
	}
}

// ── Update 测试 ──

func TestMinisterService_Update_Partial(t *testing.T) {
	svc, _ := setupTestMinisterService()

	created, _ := svc.Create(context.Background(), &dto.CreateMinisterRequest{
		FullName: "Brian Kipchoge",
		Gender:   model.GenderMale,
		Voices:   []string{model.VoiceTenor},
	})

	voices := []string{model.VoiceTenor, model.VoiceAlto}
	updated, err := svc.Update(context.Background(), created.ID, &dto.UpdateMinisterRequest{Voices: voices})
	if err != nil {
		t.Fatalf("Update 应成功: %v", err)
	}
	if len(updated.Voices) != 2 {
		t.Errorf("期望 2 个声部，实际=%d", len(updated.Voices))
	}
	// 未提交的字段保持不变
	if updated.FullName != "Brian Kipchoge" || updated.Gender != model.GenderMale {
		t.Error("未提交字段不应改动")
	}
}

func TestMinisterService_Update_NameConflict(t *testing.T) {
	svc, _ := setupTestMinisterService()

	svc.Create(context.Background(), &dto.CreateMinisterRequest{
		FullName: "Grace Wanjiru", Gender: model.GenderFemale, Voices: []string{model.VoiceSoprano},
	})
	other, _ := svc.Create(context.Background(), &dto.CreateMinisterRequest{
		FullName: "Mercy Achieng", Gender: model.GenderFemale, Voices: []string{model.VoiceAlto},
	})

	conflict := "Grace Wanjiru"
	if _, err := svc.Update(context.Background(), other.ID, &dto.UpdateMinisterRequest{FullName: &conflict}); !errors.Is(err, ErrMinisterExists) {
		t.Errorf("期望 ErrMinisterExists，实际: %v", err)
	}
}

func TestMinisterService_Update_NotFound(t *testing.T) {
	svc, _ := setupTestMinisterService()

	if _, err := svc.Update(context.Background(), "nonexistent", &dto.UpdateMinisterRequest{}); !errors.Is(err, ErrMinisterNotFound) {
		t.Errorf("期望 ErrMinisterNotFound，实际: %v", err)
	}
}

// ── Deactivate / Delete 测试 ──

func TestMinisterService_Deactivate(t *testing.T) {
	svc, ministers := setupTestMinisterService()

	created, _ := svc.Create(context.Background(), &dto.CreateMinisterRequest{
		FullName: "Dennis Otieno", Gender: model.GenderMale, Voices: []string{model.VoiceTenor},
	})

	if err := svc.Deactivate(context.Background(), created.ID); err != nil {
		t.Fatalf("Deactivate 应成功: %v", err)
	}
	if ministers.ministers[created.ID].IsActive {
		t.Error("牧者应已停用")
	}
	// 停用后记录仍可读取
	got, err := svc.GetByID(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("停用后 GetByID 应成功: %v", err)
	}
	if got.IsActive {
		t.Error("响应应反映停用状态")
	}
}

func TestMinisterService_Delete(t *testing.T) {
	svc, _ := setupTestMinisterService()

	created, _ := svc.Create(context.Background(), &dto.CreateMinisterRequest{
		FullName: "Dennis Otieno", Gender: model.GenderMale, Voices: []string{model.VoiceTenor},
	})

	if err := svc.Delete(context.Background(), created.ID); err != nil {
		t.Fatalf("Delete 应成功: %v", err)
	}
	if _, err := svc.GetByID(context.Background(), created.ID); !errors.Is(err, ErrMinisterNotFound) {
		t.Errorf("删除后期望 ErrMinisterNotFound，实际: %v", err)
	}
}

// ── List 测试 ──

func TestMinisterService_List_IncludesInactive(t *testing.T) {
	svc, _ := setupTestMinisterService()

	a, _ := svc.Create(context.Background(), &dto.CreateMinisterRequest{
		FullName: "Grace Wanjiru", Gender: model.GenderFemale, Voices: []string{model.VoiceSoprano},
	})
	svc.Create(context.Background(), &dto.CreateMinisterRequest{
		FullName: "Brian Kipchoge", Gender: model.GenderMale, Voices: []string{model.VoiceTenor},
	})
	svc.Deactivate(context.Background(), a.ID)

	result, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("List 应成功: %v", err)
	}
	// 管理列表包含停用牧者
	if len(result) != 2 {
		t.Errorf("期望 2 名牧者，实际=%d", len(result))
	}
}
