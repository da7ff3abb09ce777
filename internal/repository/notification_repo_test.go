package repository

import (
	"Beacon/internal/model"
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("An error '%s' was not expected when opening a stub database connection", err)
	}

	gormDB, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      db,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to open gorm database: %v", err)
	}

	return gormDB, mock
}

func TestUpsertRead(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	t.Run("正向测试: 已有未读行时置位 read_at", func(t *testing.T) {
		db, mock := setupMockDB(t)
		repo := NewNotificationRepo(db)

		mock.ExpectBegin()
		mock.ExpectExec("UPDATE `notification_recipients` SET").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := repo.UpsertRead(context.Background(), "n-1", 7, now)
		if err != nil {
			t.Errorf("标记已读失败: %v", err)
		}
		if err = mock.ExpectationsWereMet(); err != nil {
			t.Errorf("存在未满足的数据库期望: %v", err)
		}
	})

	t.Run("正向测试: 无行时懒插入已读行", func(t *testing.T) {
		db, mock := setupMockDB(t)
		repo := NewNotificationRepo(db)

		mock.ExpectBegin()
		mock.ExpectExec("UPDATE `notification_recipients` SET").
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec("INSERT INTO `notification_recipients`").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := repo.UpsertRead(context.Background(), "n-1", 7, now)
		if err != nil {
			t.Errorf("懒插入已读行失败: %v", err)
		}
		if err = mock.ExpectationsWereMet(); err != nil {
			t.Errorf("存在未满足的数据库期望: %v", err)
		}
	})

	t.Run("正向测试: 并发方已插入时唯一键冲突降级为无操作", func(t *testing.T) {
		db, mock := setupMockDB(t)
		repo := NewNotificationRepo(db)

		mock.ExpectBegin()
		mock.ExpectExec("UPDATE `notification_recipients` SET").
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec("INSERT INTO `notification_recipients`").
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectCommit()

		err := repo.UpsertRead(context.Background(), "n-1", 7, now)
		if err != nil {
			t.Errorf("冲突降级后不应报错: %v", err)
		}
	})
}

func TestArchiveNotification(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	t.Run("正向测试: 归档活跃通知", func(t *testing.T) {
		db, mock := setupMockDB(t)
		repo := NewNotificationRepo(db)

		mock.ExpectBegin()
		mock.ExpectExec("UPDATE `notifications` SET").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		updated, err := repo.ArchiveNotification(context.Background(), "n-1", now)
		if err != nil {
			t.Errorf("归档失败: %v", err)
		}
		if updated != 1 {
			t.Errorf("updated = %d, want 1", updated)
		}
	})

	t.Run("反向测试: 重复归档返回 0 行", func(t *testing.T) {
		db, mock := setupMockDB(t)
		repo := NewNotificationRepo(db)

		mock.ExpectBegin()
		mock.ExpectExec("UPDATE `notifications` SET").
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectCommit()

		updated, err := repo.ArchiveNotification(context.Background(), "n-1", now)
		if err != nil {
			t.Errorf("重复归档不应报错: %v", err)
		}
		if updated != 0 {
			t.Errorf("updated = %d, want 0", updated)
		}
	})
}

func TestMarkAllRead(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	ids := []string{"n-1", "n-2"}

	t.Run("正向测试: 空 id 集合直接返回 0", func(t *testing.T) {
		db, _ := setupMockDB(t)
		repo := NewNotificationRepo(db)

		affected, err := repo.MarkAllRead(context.Background(), 7, nil, now)
		if err != nil {
			t.Errorf("空集合不应报错: %v", err)
		}
		if affected != 0 {
			t.Errorf("affected = %d, want 0", affected)
		}
	})

	t.Run("正向测试: 三步调和影响行数求和", func(t *testing.T) {
		db, mock := setupMockDB(t)
		repo := NewNotificationRepo(db)

		mock.ExpectBegin()
		// 1. SELECTED 未读行置位
		mock.ExpectExec("UPDATE `notification_recipients` SET").
			WillReturnResult(sqlmock.NewResult(0, 1))
		// 2. ALL 且无行的 id
		mock.ExpectQuery("SELECT notifications.id FROM `notifications`").
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("n-2"))
		mock.ExpectExec("INSERT INTO `notification_recipients`").
			WillReturnResult(sqlmock.NewResult(0, 1))
		// 3. ALL 的未读行兜底置位
		mock.ExpectExec("UPDATE `notification_recipients` SET").
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectCommit()

		affected, err := repo.MarkAllRead(context.Background(), 7, ids, now)
		if err != nil {
			t.Errorf("批量已读失败: %v", err)
		}
		if affected != 2 {
			t.Errorf("affected = %d, want 2", affected)
		}
		if err = mock.ExpectationsWereMet(); err != nil {
			t.Errorf("存在未满足的数据库期望: %v", err)
		}
	})

	t.Run("正向测试: 第二次调用全部命中已读恒为 0", func(t *testing.T) {
		db, mock := setupMockDB(t)
		repo := NewNotificationRepo(db)

		mock.ExpectBegin()
		mock.ExpectExec("UPDATE `notification_recipients` SET").
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery("SELECT notifications.id FROM `notifications`").
			WillReturnRows(sqlmock.NewRows([]string{"id"}))
		mock.ExpectExec("UPDATE `notification_recipients` SET").
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectCommit()

		affected, err := repo.MarkAllRead(context.Background(), 7, ids, now)
		if err != nil {
			t.Errorf("幂等重放不应报错: %v", err)
		}
		if affected != 0 {
			t.Errorf("affected = %d, want 0", affected)
		}
	})
}

func TestUpdateNotificationRecipientDiff(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	fields := []string{"title", "body", "type", "audience", "published_at", "archived_at", "updated_at"}

	selectedNotification := func() *model.Notification {
		return &model.Notification{
			ID:        "n-1",
			Title:     "测试",
			Body:      "正文",
			Type:      model.NotificationTypeInfo,
			Audience:  model.AudienceSelected,
			UpdatedAt: now,
		}
	}

	t.Run("正向测试: 集合变更只删移除者插新增者留存者不动", func(t *testing.T) {
		db, mock := setupMockDB(t)
		repo := NewNotificationRepo(db)

		// 现有接收人 {1,2} 调和到 {2,3}：删 1、插 3(未读)，2 的行不产生任何语句
		mock.ExpectBegin()
		mock.ExpectQuery("SELECT count").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
		mock.ExpectExec("UPDATE `notifications` SET").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery("SELECT `user_id` FROM `notification_recipients`").
			WillReturnRows(sqlmock.NewRows([]string{"user_id"}).AddRow(1).AddRow(2))
		mock.ExpectExec("DELETE FROM `notification_recipients`").
			WithArgs("n-1", 1).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("INSERT INTO `notification_recipients`").
			WithArgs("n-1", 3, nil, now).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		updated, err := repo.UpdateNotification(context.Background(), selectedNotification(), fields, []uint64{2, 3})
		if err != nil {
			t.Errorf("接收人调和失败: %v", err)
		}
		if updated != 1 {
			t.Errorf("updated = %d, want 1", updated)
		}
		if err = mock.ExpectationsWereMet(); err != nil {
			t.Errorf("存在未满足的数据库期望: %v", err)
		}
	})

	t.Run("正向测试: 集合未变时不产生增删语句", func(t *testing.T) {
		db, mock := setupMockDB(t)
		repo := NewNotificationRepo(db)

		mock.ExpectBegin()
		mock.ExpectQuery("SELECT count").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
		mock.ExpectExec("UPDATE `notifications` SET").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery("SELECT `user_id` FROM `notification_recipients`").
			WillReturnRows(sqlmock.NewRows([]string{"user_id"}).AddRow(1).AddRow(2))
		mock.ExpectCommit()

		updated, err := repo.UpdateNotification(context.Background(), selectedNotification(), fields, []uint64{1, 2})
		if err != nil {
			t.Errorf("无变更调和失败: %v", err)
		}
		if updated != 1 {
			t.Errorf("updated = %d, want 1", updated)
		}
		if err = mock.ExpectationsWereMet(); err != nil {
			t.Errorf("存在未满足的数据库期望: %v", err)
		}
	})

	t.Run("反向测试: 通知不存在时跳过接收人调和", func(t *testing.T) {
		db, mock := setupMockDB(t)
		repo := NewNotificationRepo(db)

		mock.ExpectBegin()
		mock.ExpectQuery("SELECT count").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
		mock.ExpectExec("UPDATE `notifications` SET").
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectCommit()

		updated, err := repo.UpdateNotification(context.Background(), selectedNotification(), fields, []uint64{2, 3})
		if err != nil {
			t.Errorf("不存在的通知不应报错: %v", err)
		}
		if updated != 0 {
			t.Errorf("updated = %d, want 0", updated)
		}
		if err = mock.ExpectationsWereMet(); err != nil {
			t.Errorf("存在未满足的数据库期望: %v", err)
		}
	})
}

func TestLikePattern(t *testing.T) {
	cases := []struct {
		name    string
		keyword string
		want    string
	}{
		{"普通关键字原样包装", "维护", "%维护%"},
		{"百分号按字面转义", "100%", `%100\%%`},
		{"下划线按字面转义", "user_id", `%user\_id%`},
		{"反斜杠先于通配符转义", `a\b`, `%a\\b%`},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := likePattern(c.keyword); got != c.want {
				t.Errorf("likePattern(%q) = %q, want %q", c.keyword, got, c.want)
			}
		})
	}
}

func TestCreateNotification(t *testing.T) {
	t.Run("反向测试: 接收人包含不存在用户时整个事务回滚", func(t *testing.T) {
		db, mock := setupMockDB(t)
		repo := NewNotificationRepo(db)

		mock.ExpectBegin()
		mock.ExpectQuery("SELECT count").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
		mock.ExpectRollback()

		n := &model.Notification{
			ID:       "n-1",
			Title:    "测试",
			Body:     "正文",
			Type:     model.NotificationTypeInfo,
			Audience: model.AudienceSelected,
		}
		err := repo.CreateNotification(context.Background(), n, []uint64{1, 2})
		if err != ErrUnknownRecipient {
			t.Errorf("err = %v, want ErrUnknownRecipient", err)
		}
		if err = mock.ExpectationsWereMet(); err != nil {
			t.Errorf("存在未满足的数据库期望: %v", err)
		}
	})
}
