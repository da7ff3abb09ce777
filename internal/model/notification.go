package model

import (
	"time"
)

// Audience 通知的受众模式
type Audience string

const (
	AudienceAll      Audience = "ALL"      // 广播给全部用户
	AudienceSelected Audience = "SELECTED" // 仅投递给指定接收人
)

// NotificationType 通知类型
const (
	NotificationTypeInfo     = "info"
	NotificationTypeWarn     = "warn"
	NotificationTypeSecurity = "security"
)

// UnreadPolicy 未读判定策略，随受众模式二选一
// ALL 模式下没有已读行即视为未读（行是读时才懒创建的）
// SELECTED 模式下必须存在 read_at 为空的接收人行才算未读
type UnreadPolicy int8

const (
	UnreadImplicitUntilRow UnreadPolicy = iota
	UnreadExplicitRowFlag
)

// UnreadPolicy 返回该受众模式对应的未读判定策略
func (a Audience) UnreadPolicy() UnreadPolicy {
	if a == AudienceSelected {
		return UnreadExplicitRowFlag
	}
	return UnreadImplicitUntilRow
}

// Valid 校验受众模式取值
func (a Audience) Valid() bool {
	return a == AudienceAll || a == AudienceSelected
}

type Notification struct {
	ID          string     `gorm:"type:char(36);primaryKey" json:"id"`
	Title       string     `gorm:"type:varchar(255);not null" json:"title"`
	Body        string     `gorm:"not null" json:"body"`
	Type        string     `gorm:"type:varchar(20);not null;index:idx_type" json:"type"`
	Audience    Audience   `gorm:"type:varchar(10);not null" json:"audience"`
	PublishedAt *time.Time `gorm:"index:idx_published_at" json:"published_at"` // 为空或晚于当前时间表示尚未可见
	ArchivedAt  *time.Time `json:"archived_at"`                                // 非空且早于当前时间表示已归档
	CreatedAt   time.Time  `gorm:"index:idx_created_at" json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`

	Recipients []NotificationRecipient `gorm:"foreignKey:NotificationID;references:ID"`
}

func (Notification) TableName() string {
	return "notifications"
}
