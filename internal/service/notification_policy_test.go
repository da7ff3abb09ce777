package service

import (
	"Beacon/internal/model"
	"testing"
	"time"
)

func timePtr(t time.Time) *time.Time {
	return &t
}

func TestIsVisibleAt(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		name        string
		publishedAt *time.Time
		archivedAt  *time.Time
		want        bool
	}{
		{"未发布的通知不可见", nil, nil, false},
		{"定时发布且未到时间不可见", timePtr(now.Add(time.Hour)), nil, false},
		{"已发布可见", timePtr(now.Add(-time.Hour)), nil, true},
		{"发布时间恰为当前时间可见", timePtr(now), nil, true},
		{"已归档不可见", timePtr(now.Add(-2 * time.Hour)), timePtr(now.Add(-time.Hour)), false},
		{"归档时间在未来仍可见", timePtr(now.Add(-2 * time.Hour)), timePtr(now.Add(time.Hour)), true},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			n := &model.Notification{PublishedAt: c.publishedAt, ArchivedAt: c.archivedAt}
			if got := IsVisibleAt(n, now); got != c.want {
				t.Errorf("IsVisibleAt() = %v, want %v", got, c.want)
			}
		})
	}
}

func TestStatusAt(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		name        string
		publishedAt *time.Time
		archivedAt  *time.Time
		want        string
	}{
		{"已发布", timePtr(now.Add(-time.Hour)), nil, StatusPublished},
		{"未发布视为已发布态以外的定时", timePtr(now.Add(time.Hour)), nil, StatusScheduled},
		{"已归档", timePtr(now.Add(-2 * time.Hour)), timePtr(now.Add(-time.Hour)), StatusArchived},
		{"归档优先于定时", timePtr(now.Add(time.Hour)), timePtr(now.Add(-time.Hour)), StatusArchived},
		{"归档时间在未来按定时处理", timePtr(now.Add(time.Hour)), timePtr(now.Add(2 * time.Hour)), StatusScheduled},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			n := &model.Notification{PublishedAt: c.publishedAt, ArchivedAt: c.archivedAt}
			if got := StatusAt(n, now); got != c.want {
				t.Errorf("StatusAt() = %v, want %v", got, c.want)
			}
		})
	}
}

func TestInAudience(t *testing.T) {
	t.Run("全员通知对任何人可见", func(t *testing.T) {
		n := &model.Notification{Audience: model.AudienceAll}
		if !InAudience(n, nil) {
			t.Error("ALL 模式下无接收人行也应命中受众")
		}
	})

	t.Run("定向通知仅对接收人可见", func(t *testing.T) {
		n := &model.Notification{Audience: model.AudienceSelected}
		if InAudience(n, nil) {
			t.Error("SELECTED 模式下无接收人行不应命中受众")
		}
		if !InAudience(n, &model.NotificationRecipient{UserID: 1}) {
			t.Error("SELECTED 模式下存在接收人行应命中受众")
		}
	})
}

func TestIsUnread(t *testing.T) {
	now := time.Now()

	t.Run("全员通知无行视为未读", func(t *testing.T) {
		n := &model.Notification{Audience: model.AudienceAll}
		if !IsUnread(n, nil) {
			t.Error("ALL 模式下没有已读行应视为未读")
		}
	})

	t.Run("全员通知已读行落地后视为已读", func(t *testing.T) {
		n := &model.Notification{Audience: model.AudienceAll}
		if IsUnread(n, &model.NotificationRecipient{ReadAt: &now}) {
			t.Error("ALL 模式下 read_at 非空应视为已读")
		}
	})

	t.Run("定向通知行上无已读标记视为未读", func(t *testing.T) {
		n := &model.Notification{Audience: model.AudienceSelected}
		if !IsUnread(n, &model.NotificationRecipient{}) {
			t.Error("SELECTED 模式下 read_at 为空应视为未读")
		}
	})

	t.Run("定向通知无行不算未读", func(t *testing.T) {
		n := &model.Notification{Audience: model.AudienceSelected}
		if IsUnread(n, nil) {
			t.Error("SELECTED 模式下无接收人行不应视为未读")
		}
	})
}
