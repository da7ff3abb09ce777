package repository

import (
	"Beacon/internal/model"
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrUnknownRecipient 接收人集合中存在不存在的用户，由事务内校验抛出
var ErrUnknownRecipient = errors.New("recipient user does not exist")

// UserNotificationQuery 终端用户列表查询条件（由 service 校验后传入）
type UserNotificationQuery struct {
	UserID     uint64
	UnreadOnly bool
	Keyword    string
	Type       string // 为空表示不过滤
	Limit      int
	Offset     int
}

// AdminNotificationQuery 管理端列表查询条件
type AdminNotificationQuery struct {
	Keyword  string
	Type     string         // 为空表示不过滤
	Audience model.Audience // 为空表示不过滤
	Archived bool
	Limit    int
	Offset   int
}

// UserNotificationRow 列表行，附带该用户视角下解析出的 read_at
type UserNotificationRow struct {
	model.Notification
	ReadAt *time.Time
}

type NotificationRepo interface {
	CreateNotification(ctx context.Context, n *model.Notification, recipientIDs []uint64) error
	UpdateNotification(ctx context.Context, n *model.Notification, fields []string, recipientIDs []uint64) (int64, error)
	ArchiveNotification(ctx context.Context, id string, now time.Time) (int64, error)
	GetNotificationByID(ctx context.Context, id string) (*model.Notification, error)
	GetRecipient(ctx context.Context, notificationID string, userID uint64) (*model.NotificationRecipient, error)
	ListUserNotifications(ctx context.Context, q UserNotificationQuery, now time.Time) ([]*UserNotificationRow, int64, error)
	CountUserUnread(ctx context.Context, userID uint64, now time.Time) (int64, error)
	ListAdminNotifications(ctx context.Context, q AdminNotificationQuery, now time.Time) ([]*model.Notification, int64, error)
	UpsertRead(ctx context.Context, notificationID string, userID uint64, now time.Time) error
	MarkAllRead(ctx context.Context, userID uint64, ids []string, now time.Time) (int64, error)
}

type NotificationRepoImpl struct {
	db *gorm.DB
}

func NewNotificationRepo(db *gorm.DB) NotificationRepo {
	return &NotificationRepoImpl{db: db}
}

// visibleScope 终端用户可见窗口：已发布且未归档
func visibleScope(now time.Time) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.
			Where("notifications.published_at IS NOT NULL AND notifications.published_at <= ?", now).
			Where("notifications.archived_at IS NULL OR notifications.archived_at > ?", now)
	}
}

// audienceScope 受众过滤：ALL 对所有人可见，SELECTED 仅对接收人可见
func audienceScope(userID uint64) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where(
			"notifications.audience = ? OR EXISTS (SELECT 1 FROM notification_recipients nr WHERE nr.notification_id = notifications.id AND nr.user_id = ?)",
			model.AudienceAll, userID,
		)
	}
}

// unreadClause 按 UnreadPolicy 生成单一受众模式下的未读判定 SQL
// 两种策略统一走这里，避免查询路径各自分支后悄悄偏离
func unreadClause(policy model.UnreadPolicy) string {
	if policy == model.UnreadExplicitRowFlag {
		return "EXISTS (SELECT 1 FROM notification_recipients nr WHERE nr.notification_id = notifications.id AND nr.user_id = ? AND nr.read_at IS NULL)"
	}
	return "NOT EXISTS (SELECT 1 FROM notification_recipients nr WHERE nr.notification_id = notifications.id AND nr.user_id = ? AND nr.read_at IS NOT NULL)"
}

// unreadScope 合成两种受众模式的未读条件
func unreadScope(userID uint64) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where(
			"(notifications.audience = ? AND "+unreadClause(model.AudienceAll.UnreadPolicy())+")"+
				" OR (notifications.audience = ? AND "+unreadClause(model.AudienceSelected.UnreadPolicy())+")",
			model.AudienceAll, userID, model.AudienceSelected, userID,
		)
	}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// likePattern 把用户输入包装成 LIKE 子串模式，通配符按字面匹配
func likePattern(keyword string) string {
	return "%" + likeEscaper.Replace(keyword) + "%"
}

func keywordScope(keyword string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if keyword == "" {
			return db
		}
		// utf8mb4 的 ci 排序规则保证 LIKE 大小写不敏感
		pattern := likePattern(keyword)
		return db.Where("notifications.title LIKE ? OR notifications.body LIKE ?", pattern, pattern)
	}
}

func typeScope(typ string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if typ == "" {
			return db
		}
		return db.Where("notifications.type = ?", typ)
	}
}

// CreateNotification 创建通知；SELECTED 模式在同一事务内校验并写入接收人行
func (s *NotificationRepoImpl) CreateNotification(ctx context.Context, n *model.Notification, recipientIDs []uint64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if n.Audience == model.AudienceSelected {
			if err := checkRecipientsExist(tx, recipientIDs); err != nil {
				return err
			}
		}

		if result := tx.Omit("Recipients").Create(n); result.Error != nil {
			return result.Error
		}

		if n.Audience == model.AudienceSelected && len(recipientIDs) > 0 {
			rows := make([]*model.NotificationRecipient, 0, len(recipientIDs))
			for _, uid := range recipientIDs {
				rows = append(rows, &model.NotificationRecipient{
					NotificationID: n.ID,
					UserID:         uid,
					CreatedAt:      n.CreatedAt,
				})
			}
			if result := tx.Create(rows); result.Error != nil {
				return result.Error
			}
		}
		return nil
	})
}

// UpdateNotification 更新通知字段，并对 SELECTED 模式做接收人集合差量调和：
// 移除者删行、新增者补行(未读)、留存者不动以保住原 read_at。
// 返回通知主行的更新行数，0 表示通知不存在。
func (s *NotificationRepoImpl) UpdateNotification(ctx context.Context, n *model.Notification, fields []string, recipientIDs []uint64) (int64, error) {
	var updated int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if n.Audience == model.AudienceSelected {
			if err := checkRecipientsExist(tx, recipientIDs); err != nil {
				return err
			}
		}

		result := tx.Model(&model.Notification{}).
			Where("id = ?", n.ID).
			Select(fields).
			Updates(n)
		if result.Error != nil {
			return result.Error
		}
		updated = result.RowsAffected
		if updated == 0 {
			return nil
		}

		if n.Audience != model.AudienceSelected {
			// 切回 ALL 时留存的行只承载已读状态，正是 ALL 模式的语义，无需清理
			return nil
		}

		var existing []uint64
		if err := tx.Model(&model.NotificationRecipient{}).
			Where("notification_id = ?", n.ID).
			Pluck("user_id", &existing).Error; err != nil {
			return err
		}

		target := make(map[uint64]struct{}, len(recipientIDs))
		for _, uid := range recipientIDs {
			target[uid] = struct{}{}
		}
		current := make(map[uint64]struct{}, len(existing))
		for _, uid := range existing {
			current[uid] = struct{}{}
		}

		var removed []uint64
		for _, uid := range existing {
			if _, ok := target[uid]; !ok {
				removed = append(removed, uid)
			}
		}
		var added []uint64
		for _, uid := range recipientIDs {
			if _, ok := current[uid]; !ok {
				added = append(added, uid)
			}
		}

		if len(removed) > 0 {
			if err := tx.Where("notification_id = ? AND user_id IN ?", n.ID, removed).
				Delete(&model.NotificationRecipient{}).Error; err != nil {
				return err
			}
		}
		if len(added) > 0 {
			rows := make([]*model.NotificationRecipient, 0, len(added))
			for _, uid := range added {
				rows = append(rows, &model.NotificationRecipient{
					NotificationID: n.ID,
					UserID:         uid,
					CreatedAt:      n.UpdatedAt,
				})
			}
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(rows).Error; err != nil {
				return err
			}
		}
		return nil
	})
	return updated, err
}

// checkRecipientsExist 事务内校验接收人均为存在且未注销的用户
func checkRecipientsExist(tx *gorm.DB, recipientIDs []uint64) error {
	if len(recipientIDs) == 0 {
		return nil
	}
	uniq := make(map[uint64]struct{}, len(recipientIDs))
	for _, uid := range recipientIDs {
		uniq[uid] = struct{}{}
	}
	ids := make([]uint64, 0, len(uniq))
	for uid := range uniq {
		ids = append(ids, uid)
	}

	var count int64
	if err := tx.Model(&model.User{}).
		Where("id IN ? AND is_delete = ?", ids, false).
		Count(&count).Error; err != nil {
		return err
	}
	if count != int64(len(ids)) {
		return ErrUnknownRecipient
	}
	return nil
}

// ArchiveNotification 软删除：设置 archived_at。
// 返回 0 表示通知不存在或已归档，由调用方自行解释。
func (s *NotificationRepoImpl) ArchiveNotification(ctx context.Context, id string, now time.Time) (int64, error) {
	result := s.db.WithContext(ctx).
		Model(&model.Notification{}).
		Where("id = ? AND (archived_at IS NULL OR archived_at > ?)", id, now).
		Update("archived_at", now)
	return result.RowsAffected, result.Error
}

func (s *NotificationRepoImpl) GetNotificationByID(ctx context.Context, id string) (*model.Notification, error) {
	n := &model.Notification{}
	result := s.db.WithContext(ctx).Where("id = ?", id).First(n)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return n, nil
}

func (s *NotificationRepoImpl) GetRecipient(ctx context.Context, notificationID string, userID uint64) (*model.NotificationRecipient, error) {
	rec := &model.NotificationRecipient{}
	result := s.db.WithContext(ctx).
		Where("notification_id = ? AND user_id = ?", notificationID, userID).
		First(rec)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return rec, nil
}

// ListUserNotifications 终端用户分页列表，按创建时间倒序，附带本人视角的 read_at
func (s *NotificationRepoImpl) ListUserNotifications(ctx context.Context, q UserNotificationQuery, now time.Time) ([]*UserNotificationRow, int64, error) {
	base := s.db.WithContext(ctx).Model(&model.Notification{}).
		Scopes(visibleScope(now), audienceScope(q.UserID), keywordScope(q.Keyword), typeScope(q.Type))
	if q.UnreadOnly {
		base = base.Scopes(unreadScope(q.UserID))
	}

	var total int64
	if result := base.Session(&gorm.Session{}).Count(&total); result.Error != nil {
		return nil, 0, result.Error
	}

	rows := make([]*UserNotificationRow, 0, q.Limit)
	result := base.Session(&gorm.Session{}).
		Select("notifications.*, nr.read_at AS read_at").
		Joins("LEFT JOIN notification_recipients nr ON nr.notification_id = notifications.id AND nr.user_id = ?", q.UserID).
		Order("notifications.created_at DESC").
		Limit(q.Limit).
		Offset(q.Offset).
		Find(&rows)
	if result.Error != nil {
		return nil, 0, result.Error
	}
	return rows, total, nil
}

// CountUserUnread 独立的未读总数，不受列表 tab 过滤影响
func (s *NotificationRepoImpl) CountUserUnread(ctx context.Context, userID uint64, now time.Time) (int64, error) {
	var count int64
	result := s.db.WithContext(ctx).Model(&model.Notification{}).
		Scopes(visibleScope(now), audienceScope(userID), unreadScope(userID)).
		Count(&count)
	if result.Error != nil {
		return 0, result.Error
	}
	return count, nil
}

// ListAdminNotifications 管理端列表，不关心单用户已读状态
func (s *NotificationRepoImpl) ListAdminNotifications(ctx context.Context, q AdminNotificationQuery, now time.Time) ([]*model.Notification, int64, error) {
	base := s.db.WithContext(ctx).Model(&model.Notification{}).
		Scopes(keywordScope(q.Keyword), typeScope(q.Type))
	if q.Audience != "" {
		base = base.Where("notifications.audience = ?", q.Audience)
	}
	if q.Archived {
		base = base.Where("notifications.archived_at IS NOT NULL AND notifications.archived_at <= ?", now)
	} else {
		base = base.Scopes(visibleScope(now))
	}

	var total int64
	if result := base.Session(&gorm.Session{}).Count(&total); result.Error != nil {
		return nil, 0, result.Error
	}

	list := make([]*model.Notification, 0, q.Limit)
	result := base.Session(&gorm.Session{}).
		Order("notifications.created_at DESC").
		Limit(q.Limit).
		Offset(q.Offset).
		Find(&list)
	if result.Error != nil {
		return nil, 0, result.Error
	}
	return list, total, nil
}

// UpsertRead 单条标记已读。一套操作同时覆盖两种受众模式：
// 有未读行则置位，无行则懒插入；唯一键冲突说明并发方已写入，忽略即可。
// 已读状态下重复调用是无操作，仍返回成功。
func (s *NotificationRepoImpl) UpsertRead(ctx context.Context, notificationID string, userID uint64, now time.Time) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&model.NotificationRecipient{}).
			Where("notification_id = ? AND user_id = ? AND read_at IS NULL", notificationID, userID).
			Update("read_at", now)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected > 0 {
			return nil
		}

		rec := &model.NotificationRecipient{
			NotificationID: notificationID,
			UserID:         userID,
			ReadAt:         &now,
			CreatedAt:      now,
		}
		return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(rec).Error
	})
}

// MarkAllRead 对给定 id 集合做批量已读调和，单事务内三步：
//  1. SELECTED 且存在未读行的 → 置 read_at
//  2. ALL 且尚无行的 → 懒插入已读行（容忍唯一键冲突，防与单条已读竞态）
//  3. ALL 且已有未读行的 → 置 read_at（兜住第 2 步竞态留下的行）
//
// 返回三步影响行数之和；重复调用第二次恒为 0。
func (s *NotificationRepoImpl) MarkAllRead(ctx context.Context, userID uint64, ids []string, now time.Time) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	var affected int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		visibleIDs := func(audience model.Audience) *gorm.DB {
			return tx.Model(&model.Notification{}).
				Select("notifications.id").
				Where("notifications.id IN ? AND notifications.audience = ?", ids, audience).
				Scopes(visibleScope(now))
		}

		result := tx.Model(&model.NotificationRecipient{}).
			Where("user_id = ? AND read_at IS NULL", userID).
			Where("notification_id IN (?)", visibleIDs(model.AudienceSelected)).
			Update("read_at", now)
		if result.Error != nil {
			return result.Error
		}
		affected += result.RowsAffected

		var missing []string
		if err := visibleIDs(model.AudienceAll).
			Where("NOT EXISTS (SELECT 1 FROM notification_recipients nr WHERE nr.notification_id = notifications.id AND nr.user_id = ?)", userID).
			Pluck("notifications.id", &missing).Error; err != nil {
			return err
		}
		if len(missing) > 0 {
			rows := make([]*model.NotificationRecipient, 0, len(missing))
			for _, nid := range missing {
				readAt := now
				rows = append(rows, &model.NotificationRecipient{
					NotificationID: nid,
					UserID:         userID,
					ReadAt:         &readAt,
					CreatedAt:      now,
				})
			}
			result = tx.Clauses(clause.OnConflict{DoNothing: true}).Create(rows)
			if result.Error != nil {
				return result.Error
			}
			affected += result.RowsAffected
		}

		result = tx.Model(&model.NotificationRecipient{}).
			Where("user_id = ? AND read_at IS NULL", userID).
			Where("notification_id IN (?)", visibleIDs(model.AudienceAll)).
			Update("read_at", now)
		if result.Error != nil {
			return result.Error
		}
		affected += result.RowsAffected

		return nil
	})
	if err != nil {
		return 0, err
	}
	return affected, nil
}
