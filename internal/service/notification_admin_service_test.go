package service

import (
	"Beacon/internal/api/dto"
	"Beacon/internal/model"
	"Beacon/internal/pkg/kafka"
	"Beacon/internal/repository"
	"context"
	"errors"
	"testing"
	"time"
)

type fakeAdminRepo struct {
	fakeNotificationRepo

	created       *model.Notification
	createErr     error
	updateResult  int64
	archiveResult int64
}

func (f *fakeAdminRepo) CreateNotification(ctx context.Context, n *model.Notification, recipientIDs []uint64) error {
	f.created = n
	return f.createErr
}

func (f *fakeAdminRepo) UpdateNotification(ctx context.Context, n *model.Notification, fields []string, recipientIDs []uint64) (int64, error) {
	return f.updateResult, nil
}

func (f *fakeAdminRepo) ArchiveNotification(ctx context.Context, id string, now time.Time) (int64, error) {
	return f.archiveResult, nil
}

type capturedEvent struct {
	events []kafka.NotificationEvent
}

func (c *capturedEvent) PublishNotificationEvent(ctx context.Context, event kafka.NotificationEvent) error {
	c.events = append(c.events, event)
	return nil
}

func validSaveDTO(audience string, recipients []uint64) *dto.AdminNotificationSaveDTO {
	return &dto.AdminNotificationSaveDTO{
		Title:            "维护公告",
		Body:             "今晚维护",
		Type:             model.NotificationTypeInfo,
		Audience:         audience,
		RecipientUserIDs: recipients,
	}
}

func TestCreateNotificationValidation(t *testing.T) {
	ctx := context.Background()

	t.Run("反向测试: 定向通知必须指定接收人", func(t *testing.T) {
		svc := NewNotificationAdminService(&fakeAdminRepo{}, nil)
		_, err := svc.CreateNotification(ctx, validSaveDTO(string(model.AudienceSelected), nil))
		if !errors.Is(err, ErrRecipientRequired) {
			t.Errorf("err = %v, want ErrRecipientRequired", err)
		}
	})

	t.Run("反向测试: 全员通知不允许附带接收人", func(t *testing.T) {
		svc := NewNotificationAdminService(&fakeAdminRepo{}, nil)
		_, err := svc.CreateNotification(ctx, validSaveDTO(string(model.AudienceAll), []uint64{1}))
		if !errors.Is(err, ErrRecipientNotAllowed) {
			t.Errorf("err = %v, want ErrRecipientNotAllowed", err)
		}
	})

	t.Run("反向测试: 非法受众模式", func(t *testing.T) {
		svc := NewNotificationAdminService(&fakeAdminRepo{}, nil)
		_, err := svc.CreateNotification(ctx, validSaveDTO("EVERYONE", nil))
		if !errors.Is(err, ErrParamInvalid) {
			t.Errorf("err = %v, want ErrParamInvalid", err)
		}
	})

	t.Run("反向测试: 时间格式错误", func(t *testing.T) {
		svc := NewNotificationAdminService(&fakeAdminRepo{}, nil)
		saveDTO := validSaveDTO(string(model.AudienceAll), nil)
		bad := "2026/08/01 12:00"
		saveDTO.PublishedAt = &bad
		_, err := svc.CreateNotification(ctx, saveDTO)
		if !errors.Is(err, ErrParamInvalid) {
			t.Errorf("err = %v, want ErrParamInvalid", err)
		}
	})

	t.Run("反向测试: 接收人包含无效用户", func(t *testing.T) {
		repo := &fakeAdminRepo{createErr: repository.ErrUnknownRecipient}
		svc := NewNotificationAdminService(repo, nil)
		_, err := svc.CreateNotification(ctx, validSaveDTO(string(model.AudienceSelected), []uint64{404}))
		if !errors.Is(err, ErrRecipientInvalid) {
			t.Errorf("err = %v, want ErrRecipientInvalid", err)
		}
	})

	t.Run("正向测试: 创建成功并发布生命周期事件", func(t *testing.T) {
		repo := &fakeAdminRepo{}
		publisher := &capturedEvent{}
		svc := NewNotificationAdminService(repo, publisher)

		saveDTO := validSaveDTO(string(model.AudienceAll), nil)
		publishedAt := "2026-08-01T12:00:00"
		saveDTO.PublishedAt = &publishedAt

		item, err := svc.CreateNotification(ctx, saveDTO)
		if err != nil {
			t.Fatalf("创建失败: %v", err)
		}
		if item.ID == "" {
			t.Error("应生成通知 id")
		}
		if repo.created == nil || repo.created.PublishedAt == nil {
			t.Fatal("发布时间未落地")
		}
		if len(publisher.events) != 1 || publisher.events[0].Event != kafka.EventNotificationCreated {
			t.Errorf("应发布 created 事件, got %+v", publisher.events)
		}
	})
}

func TestUpdateNotificationService(t *testing.T) {
	ctx := context.Background()

	t.Run("反向测试: 通知不存在", func(t *testing.T) {
		repo := &fakeAdminRepo{updateResult: 0}
		svc := NewNotificationAdminService(repo, nil)
		_, err := svc.UpdateNotification(ctx, "missing", validSaveDTO(string(model.AudienceAll), nil))
		if !errors.Is(err, ErrNotificationNotFound) {
			t.Errorf("err = %v, want ErrNotificationNotFound", err)
		}
	})

	t.Run("正向测试: 更新成功返回行数", func(t *testing.T) {
		repo := &fakeAdminRepo{updateResult: 1}
		svc := NewNotificationAdminService(repo, nil)
		updated, err := svc.UpdateNotification(ctx, "n-1", validSaveDTO(string(model.AudienceAll), nil))
		if err != nil {
			t.Fatalf("更新失败: %v", err)
		}
		if updated.Updated != 1 {
			t.Errorf("Updated = %d, want 1", updated.Updated)
		}
	})
}

func TestArchiveNotificationService(t *testing.T) {
	ctx := context.Background()

	t.Run("正向测试: 归档成功并发布事件", func(t *testing.T) {
		repo := &fakeAdminRepo{archiveResult: 1}
		publisher := &capturedEvent{}
		svc := NewNotificationAdminService(repo, publisher)

		updated, err := svc.ArchiveNotification(ctx, "n-1")
		if err != nil {
			t.Fatalf("归档失败: %v", err)
		}
		if updated.Updated != 1 {
			t.Errorf("Updated = %d, want 1", updated.Updated)
		}
		if len(publisher.events) != 1 || publisher.events[0].Event != kafka.EventNotificationArchived {
			t.Errorf("应发布 archived 事件, got %+v", publisher.events)
		}
	})

	t.Run("正向测试: 重复归档返回 0 但不报错", func(t *testing.T) {
		repo := &fakeAdminRepo{archiveResult: 0}
		publisher := &capturedEvent{}
		svc := NewNotificationAdminService(repo, publisher)

		updated, err := svc.ArchiveNotification(ctx, "n-1")
		if err != nil {
			t.Fatalf("重复归档不应报错: %v", err)
		}
		if updated.Updated != 0 {
			t.Errorf("Updated = %d, want 0", updated.Updated)
		}
		if len(publisher.events) != 0 {
			t.Error("无效归档不应发布事件")
		}
	})
}
