package service

import (
	"Beacon/internal/model"
	"time"
)

// NotificationStatus 管理端视角的通知状态
const (
	StatusPublished = "published"
	StatusScheduled = "scheduled"
	StatusArchived  = "archived"
)

// 这里的判定全部显式传入 now，不读全局时钟，保证可测试

// IsVisibleAt 终端用户可见窗口：已发布且未归档
func IsVisibleAt(n *model.Notification, now time.Time) bool {
	if n.PublishedAt == nil || n.PublishedAt.After(now) {
		return false
	}
	if n.ArchivedAt != nil && !n.ArchivedAt.After(now) {
		return false
	}
	return true
}

// StatusAt 推导管理端状态，归档优先于定时
func StatusAt(n *model.Notification, now time.Time) string {
	if n.ArchivedAt != nil && !n.ArchivedAt.After(now) {
		return StatusArchived
	}
	if n.PublishedAt != nil && n.PublishedAt.After(now) {
		return StatusScheduled
	}
	return StatusPublished
}

// InAudience 受众归属判定。ALL 无条件命中；
// SELECTED 以接收人行是否存在为准，与已读状态无关。
func InAudience(n *model.Notification, recipient *model.NotificationRecipient) bool {
	if n.Audience == model.AudienceAll {
		return true
	}
	return recipient != nil
}

// IsUnread 按受众模式的未读策略解读接收人行
func IsUnread(n *model.Notification, recipient *model.NotificationRecipient) bool {
	switch n.Audience.UnreadPolicy() {
	case model.UnreadExplicitRowFlag:
		return recipient != nil && recipient.ReadAt == nil
	default:
		return recipient == nil || recipient.ReadAt == nil
	}
}
