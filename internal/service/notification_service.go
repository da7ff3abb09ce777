package service

import (
	"Beacon/internal/api/dto"
	"Beacon/internal/pkg/consts"
	"Beacon/internal/pkg/redis"
	"Beacon/internal/repository"
	"context"
	"strconv"
	"time"

	"github.com/jinzhu/copier"
)

const (
	TabUnread = "unread"
	TabAll    = "all"

	TypeFilterAll = "all"

	MaxPageSize = 50

	unreadCountCacheTTL = time.Minute
)

type NotificationService interface {
	ListNotifications(ctx context.Context, userID uint64, query *dto.NotificationListQueryDTO) (*dto.NotificationListDTO, error)
	GetUnreadCount(ctx context.Context, userID uint64) (*dto.NotificationUnreadDTO, error)
	MarkRead(ctx context.Context, userID uint64, notificationID string) error
	MarkAllRead(ctx context.Context, userID uint64, notificationIDs []string) (int64, error)
}

type NotificationServiceImpl struct {
	notificationRepo repository.NotificationRepo
}

func NewNotificationService(notificationRepo repository.NotificationRepo) NotificationService {
	return &NotificationServiceImpl{notificationRepo: notificationRepo}
}

// ListNotifications 终端用户分页列表
// 未读总数独立于 tab 过滤实时计算，供角标展示
func (s *NotificationServiceImpl) ListNotifications(ctx context.Context, userID uint64, query *dto.NotificationListQueryDTO) (*dto.NotificationListDTO, error) {
	if err := validateListQuery(query.Tab, query.Type, query.Page, query.PageSize); err != nil {
		return nil, err
	}

	now := time.Now()
	repoQuery := repository.UserNotificationQuery{
		UserID:     userID,
		UnreadOnly: query.Tab == TabUnread,
		Keyword:    query.Keyword,
		Type:       normalizeTypeFilter(query.Type),
		Limit:      query.PageSize,
		Offset:     (query.Page - 1) * query.PageSize,
	}

	rows, total, err := s.notificationRepo.ListUserNotifications(ctx, repoQuery, now)
	if err != nil {
		return nil, err
	}

	unread, err := s.notificationRepo.CountUserUnread(ctx, userID, now)
	if err != nil {
		return nil, err
	}

	items := make([]*dto.NotificationItemDTO, 0, len(rows))
	for _, row := range rows {
		item := &dto.NotificationItemDTO{}
		_ = copier.Copy(item, row)
		item.CreatedAt = row.CreatedAt.UTC().Format(time.RFC3339)
		item.ReadAt = formatTimePtr(row.ReadAt)
		items = append(items, item)
	}

	return &dto.NotificationListDTO{
		Total:       total,
		UnreadCount: unread,
		Items:       items,
	}, nil
}

// GetUnreadCount 角标未读数，短 TTL 缓存，标记已读时失效
// 并发写下可能短暂偏旧，角标是提示性数字，可接受
func (s *NotificationServiceImpl) GetUnreadCount(ctx context.Context, userID uint64) (*dto.NotificationUnreadDTO, error) {
	key := consts.UnreadCountKey + strconv.FormatUint(userID, 10)

	valStr, err := redis.GetValue(ctx, key)
	if err == nil && valStr != "" {
		if count, parseErr := strconv.ParseInt(valStr, 10, 64); parseErr == nil {
			return &dto.NotificationUnreadDTO{UnreadCount: count}, nil
		}
	}

	count, err := s.notificationRepo.CountUserUnread(ctx, userID, time.Now())
	if err != nil {
		return nil, err
	}

	_ = redis.SetWithExpiration(ctx, key, count, unreadCountCacheTTL)
	return &dto.NotificationUnreadDTO{UnreadCount: count}, nil
}

// MarkRead 单条标记已读。两种受众模式走同一套 Upsert；
// 已读状态下重复调用是无操作，仍返回成功。
func (s *NotificationServiceImpl) MarkRead(ctx context.Context, userID uint64, notificationID string) error {
	notification, err := s.notificationRepo.GetNotificationByID(ctx, notificationID)
	if err != nil {
		return err
	}
	now := time.Now()
	if notification == nil || !IsVisibleAt(notification, now) {
		return ErrNotificationNotFound
	}

	recipient, err := s.notificationRepo.GetRecipient(ctx, notificationID, userID)
	if err != nil {
		return err
	}
	if !InAudience(notification, recipient) {
		return UnauthorizedError
	}
	if !IsUnread(notification, recipient) {
		return nil
	}

	if err = s.notificationRepo.UpsertRead(ctx, notificationID, userID, now); err != nil {
		return err
	}
	s.invalidateUnreadCache(ctx, userID)
	return nil
}

// MarkAllRead 批量调和调用方当前渲染的 id 集合，返回受影响行数
func (s *NotificationServiceImpl) MarkAllRead(ctx context.Context, userID uint64, notificationIDs []string) (int64, error) {
	if len(notificationIDs) == 0 {
		return 0, nil
	}

	affected, err := s.notificationRepo.MarkAllRead(ctx, userID, notificationIDs, time.Now())
	if err != nil {
		return 0, err
	}
	if affected > 0 {
		s.invalidateUnreadCache(ctx, userID)
	}
	return affected, nil
}

func (s *NotificationServiceImpl) invalidateUnreadCache(ctx context.Context, userID uint64) {
	_ = redis.DeleteKey(ctx, consts.UnreadCountKey+strconv.FormatUint(userID, 10))
}

func validateListQuery(tab, typ string, page, pageSize int) error {
	if tab != TabUnread && tab != TabAll {
		return ErrParamInvalid
	}
	if !validTypeFilter(typ) {
		return ErrParamInvalid
	}
	if page < 1 || pageSize < 1 || pageSize > MaxPageSize {
		return ErrParamInvalid
	}
	return nil
}

func validTypeFilter(typ string) bool {
	switch typ {
	case TypeFilterAll, "info", "warn", "security":
		return true
	}
	return false
}

func normalizeTypeFilter(typ string) string {
	if typ == TypeFilterAll {
		return ""
	}
	return typ
}

func formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	formatted := t.UTC().Format(time.RFC3339)
	return &formatted
}
