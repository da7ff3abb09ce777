package service

import (
	"Beacon/internal/api/dto"
	"Beacon/internal/model"
	pkgredis "Beacon/internal/pkg/redis"
	"Beacon/internal/repository"
	"context"
	"errors"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// fakeNotificationRepo 按需注入各方法行为，未注入的方法不应被调用
type fakeNotificationRepo struct {
	notification *model.Notification
	recipient    *model.NotificationRecipient

	upsertCalled  bool
	markAllResult int64

	listRows    []*repository.UserNotificationRow
	listTotal   int64
	unreadCount int64
}

func (f *fakeNotificationRepo) CreateNotification(ctx context.Context, n *model.Notification, recipientIDs []uint64) error {
	return errors.New("not implemented")
}

func (f *fakeNotificationRepo) UpdateNotification(ctx context.Context, n *model.Notification, fields []string, recipientIDs []uint64) (int64, error) {
	return 0, errors.New("not implemented")
}

func (f *fakeNotificationRepo) ArchiveNotification(ctx context.Context, id string, now time.Time) (int64, error) {
	return 0, errors.New("not implemented")
}

func (f *fakeNotificationRepo) GetNotificationByID(ctx context.Context, id string) (*model.Notification, error) {
	return f.notification, nil
}

func (f *fakeNotificationRepo) GetRecipient(ctx context.Context, notificationID string, userID uint64) (*model.NotificationRecipient, error) {
	return f.recipient, nil
}

func (f *fakeNotificationRepo) ListUserNotifications(ctx context.Context, q repository.UserNotificationQuery, now time.Time) ([]*repository.UserNotificationRow, int64, error) {
	return f.listRows, f.listTotal, nil
}

func (f *fakeNotificationRepo) CountUserUnread(ctx context.Context, userID uint64, now time.Time) (int64, error) {
	return f.unreadCount, nil
}

func (f *fakeNotificationRepo) ListAdminNotifications(ctx context.Context, q repository.AdminNotificationQuery, now time.Time) ([]*model.Notification, int64, error) {
	return nil, 0, errors.New("not implemented")
}

func (f *fakeNotificationRepo) UpsertRead(ctx context.Context, notificationID string, userID uint64, now time.Time) error {
	f.upsertCalled = true
	return nil
}

func (f *fakeNotificationRepo) MarkAllRead(ctx context.Context, userID uint64, ids []string, now time.Time) (int64, error) {
	return f.markAllResult, nil
}

// 测试里指向一个打不开的地址，缓存读写全部失败并被忽略，逻辑退化为直查
func setupDeadRedis() {
	pkgredis.Rdb = goredis.NewClient(&goredis.Options{Addr: "127.0.0.1:1"})
}

func publishedNotification(audience model.Audience) *model.Notification {
	published := time.Now().Add(-time.Hour)
	return &model.Notification{
		ID:          "0c40a8a2-3f13-4b6c-9a5e-000000000001",
		Title:       "测试通知",
		Body:        "正文",
		Type:        model.NotificationTypeInfo,
		Audience:    audience,
		PublishedAt: &published,
	}
}

func TestMarkRead(t *testing.T) {
	setupDeadRedis()
	ctx := context.Background()

	t.Run("反向测试: 通知不存在", func(t *testing.T) {
		repo := &fakeNotificationRepo{}
		svc := NewNotificationService(repo)

		err := svc.MarkRead(ctx, 7, "missing")
		if !errors.Is(err, ErrNotificationNotFound) {
			t.Errorf("err = %v, want ErrNotificationNotFound", err)
		}
	})

	t.Run("反向测试: 不可见通知按不存在处理", func(t *testing.T) {
		n := publishedNotification(model.AudienceAll)
		future := time.Now().Add(time.Hour)
		n.PublishedAt = &future
		repo := &fakeNotificationRepo{notification: n}
		svc := NewNotificationService(repo)

		err := svc.MarkRead(ctx, 7, n.ID)
		if !errors.Is(err, ErrNotificationNotFound) {
			t.Errorf("err = %v, want ErrNotificationNotFound", err)
		}
	})

	t.Run("反向测试: 非受众用户标记定向通知", func(t *testing.T) {
		repo := &fakeNotificationRepo{notification: publishedNotification(model.AudienceSelected)}
		svc := NewNotificationService(repo)

		err := svc.MarkRead(ctx, 7, repo.notification.ID)
		if !errors.Is(err, UnauthorizedError) {
			t.Errorf("err = %v, want UnauthorizedError", err)
		}
		if repo.upsertCalled {
			t.Error("越权请求不应触达写入")
		}
	})

	t.Run("正向测试: 全员通知首次标记触发懒插入", func(t *testing.T) {
		repo := &fakeNotificationRepo{notification: publishedNotification(model.AudienceAll)}
		svc := NewNotificationService(repo)

		err := svc.MarkRead(ctx, 7, repo.notification.ID)
		if err != nil {
			t.Errorf("标记已读失败: %v", err)
		}
		if !repo.upsertCalled {
			t.Error("应触发 UpsertRead")
		}
	})

	t.Run("正向测试: 已读状态下重复标记是无操作", func(t *testing.T) {
		readAt := time.Now().Add(-time.Minute)
		repo := &fakeNotificationRepo{
			notification: publishedNotification(model.AudienceSelected),
			recipient: &model.NotificationRecipient{
				UserID: 7,
				ReadAt: &readAt,
			},
		}
		svc := NewNotificationService(repo)

		err := svc.MarkRead(ctx, 7, repo.notification.ID)
		if err != nil {
			t.Errorf("重复标记不应报错: %v", err)
		}
		if repo.upsertCalled {
			t.Error("已读状态下不应再次写入")
		}
	})
}

func TestMarkAllReadService(t *testing.T) {
	setupDeadRedis()
	ctx := context.Background()

	t.Run("正向测试: 空 id 集合返回 0", func(t *testing.T) {
		repo := &fakeNotificationRepo{markAllResult: 99}
		svc := NewNotificationService(repo)

		affected, err := svc.MarkAllRead(ctx, 7, nil)
		if err != nil {
			t.Errorf("空集合不应报错: %v", err)
		}
		if affected != 0 {
			t.Errorf("affected = %d, want 0", affected)
		}
	})

	t.Run("正向测试: 返回仓储层的影响行数", func(t *testing.T) {
		repo := &fakeNotificationRepo{markAllResult: 3}
		svc := NewNotificationService(repo)

		affected, err := svc.MarkAllRead(ctx, 7, []string{"n-1", "n-2", "n-3"})
		if err != nil {
			t.Errorf("批量标记失败: %v", err)
		}
		if affected != 3 {
			t.Errorf("affected = %d, want 3", affected)
		}
	})
}

func TestListNotifications(t *testing.T) {
	setupDeadRedis()
	ctx := context.Background()

	t.Run("反向测试: 非法 tab", func(t *testing.T) {
		svc := NewNotificationService(&fakeNotificationRepo{})
		_, err := svc.ListNotifications(ctx, 7, &dto.NotificationListQueryDTO{
			Tab: "starred", Type: TypeFilterAll, Page: 1, PageSize: 20,
		})
		if !errors.Is(err, ErrParamInvalid) {
			t.Errorf("err = %v, want ErrParamInvalid", err)
		}
	})

	t.Run("反向测试: 超出分页上限", func(t *testing.T) {
		svc := NewNotificationService(&fakeNotificationRepo{})
		_, err := svc.ListNotifications(ctx, 7, &dto.NotificationListQueryDTO{
			Tab: TabAll, Type: TypeFilterAll, Page: 1, PageSize: MaxPageSize + 1,
		})
		if !errors.Is(err, ErrParamInvalid) {
			t.Errorf("err = %v, want ErrParamInvalid", err)
		}
	})

	t.Run("正向测试: 未读数独立于列表过滤", func(t *testing.T) {
		readAt := time.Now().Add(-time.Minute)
		row := &repository.UserNotificationRow{
			Notification: *publishedNotification(model.AudienceAll),
			ReadAt:       &readAt,
		}
		repo := &fakeNotificationRepo{
			listRows:    []*repository.UserNotificationRow{row},
			listTotal:   1,
			unreadCount: 5,
		}
		svc := NewNotificationService(repo)

		list, err := svc.ListNotifications(ctx, 7, &dto.NotificationListQueryDTO{
			Tab: TabAll, Type: TypeFilterAll, Page: 1, PageSize: 20,
		})
		if err != nil {
			t.Fatalf("列表查询失败: %v", err)
		}
		if list.UnreadCount != 5 {
			t.Errorf("UnreadCount = %d, want 5", list.UnreadCount)
		}
		if list.Total != 1 || len(list.Items) != 1 {
			t.Errorf("Total = %d, Items = %d, want 1/1", list.Total, len(list.Items))
		}
		if list.Items[0].ReadAt == nil {
			t.Error("已读行的 ReadAt 不应为空")
		}
	})
}
