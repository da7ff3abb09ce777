package dto

// NotificationListQueryDTO 终端用户列表查询参数
type NotificationListQueryDTO struct {
	Tab      string `form:"tab" json:"tab"`           // unread | all
	Keyword  string `form:"q" json:"q"`               // 标题/正文模糊匹配
	Type     string `form:"type" json:"type"`         // info | warn | security | all
	Page     int    `form:"page" json:"page"`         // 从 1 开始
	PageSize int    `form:"page_size" json:"pageSize"` // 1..50
}

// NotificationItemDTO 终端用户列表项
type NotificationItemDTO struct {
	ID        string  `json:"id"`
	Type      string  `json:"type"`
	Title     string  `json:"title"`
	Body      string  `json:"body"`
	CreatedAt string  `json:"created_at"`
	ReadAt    *string `json:"read_at"` // null 表示未读
}

// NotificationListDTO 终端用户列表返回
// UnreadCount 独立于 tab 过滤，始终是真实未读总数（角标用）
type NotificationListDTO struct {
	Total       int64                  `json:"total"`
	UnreadCount int64                  `json:"unread_count"`
	Items       []*NotificationItemDTO `json:"items"`
}

// NotificationUnreadDTO 未读数返回
type NotificationUnreadDTO struct {
	UnreadCount int64 `json:"unread_count"`
}

// MarkReadDTO 单条标记已读
type MarkReadDTO struct {
	NotificationID string `json:"notification_id" binding:"required,uuid"`
}

// MarkAllReadDTO 批量标记已读，只作用于调用方当前渲染出的 id 集合
type MarkAllReadDTO struct {
	NotificationIDs []string `json:"notification_ids" binding:"required,dive,uuid"`
}

// AdminNotificationSaveDTO 管理端创建/编辑入参
type AdminNotificationSaveDTO struct {
	Title            string   `json:"title" binding:"required" validate:"required,max=255"`
	Body             string   `json:"body" binding:"required" validate:"required"`
	Type             string   `json:"type" binding:"required" validate:"required,oneof=info warn security"`
	Audience         string   `json:"audience" binding:"required" validate:"required,oneof=ALL SELECTED"`
	RecipientUserIDs []uint64 `json:"recipient_user_ids"`
	PublishedAt      *string  `json:"published_at"` // ISO 本地时间，空表示未发布
	ArchivedAt       *string  `json:"archived_at"`
}

// AdminNotificationQueryDTO 管理端列表查询参数
type AdminNotificationQueryDTO struct {
	Keyword  string `form:"q" json:"q"`
	Type     string `form:"type" json:"type"`         // info | warn | security | all
	Audience string `form:"audience" json:"audience"` // all | ALL | SELECTED
	Archived string `form:"archived" json:"archived"` // active | archived
	Page     int    `form:"page" json:"page"`
	PageSize int    `form:"page_size" json:"pageSize"`
}

// AdminNotificationItemDTO 管理端列表/详情项
type AdminNotificationItemDTO struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Body        string  `json:"body"`
	Type        string  `json:"type"`
	Audience    string  `json:"audience"`
	Status      string  `json:"status"` // published | scheduled | archived
	PublishedAt *string `json:"published_at"`
	ArchivedAt  *string `json:"archived_at"`
	CreatedAt   string  `json:"created_at"`
	UpdatedAt   string  `json:"updated_at"`
}

// AdminNotificationListDTO 管理端列表返回
type AdminNotificationListDTO struct {
	Total int64                       `json:"total"`
	Items []*AdminNotificationItemDTO `json:"items"`
}

// UpdatedDTO 更新型操作的行数回执，0 的含义由各操作自行约定
type UpdatedDTO struct {
	Updated int64 `json:"updated"`
}
