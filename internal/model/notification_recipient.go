package model

import "time"

// NotificationRecipient 通知与用户的关联行，承载已读状态
// (notification_id, user_id) 的联合主键是并发控制的唯一依据：
// ALL 模式下的懒插入依赖它把重复插入降级为无操作
type NotificationRecipient struct {
	NotificationID string     `gorm:"type:char(36);primaryKey" json:"notificationId"`
	UserID         uint64     `gorm:"primaryKey;index:idx_user_id" json:"userId"`
	ReadAt         *time.Time `json:"readAt"` // 为空表示未读
	CreatedAt      time.Time  `json:"createdAt"`
}

func (NotificationRecipient) TableName() string {
	return "notification_recipients"
}
