package service

import (
	"Beacon/internal/api/dto"
	"Beacon/internal/model"
	"Beacon/internal/pkg/kafka"
	"Beacon/internal/repository"
	"context"
	"errors"
	log "log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"
)

// 管理端入参使用不带时区的本地时间
const localDateTimeLayout = "2006-01-02T15:04:05"

// NotificationEventPublisher 通知生命周期事件出口，允许为空（未接入事件总线时）
type NotificationEventPublisher interface {
	PublishNotificationEvent(ctx context.Context, event kafka.NotificationEvent) error
}

type NotificationAdminService interface {
	CreateNotification(ctx context.Context, saveDTO *dto.AdminNotificationSaveDTO) (*dto.AdminNotificationItemDTO, error)
	UpdateNotification(ctx context.Context, id string, saveDTO *dto.AdminNotificationSaveDTO) (*dto.UpdatedDTO, error)
	ArchiveNotification(ctx context.Context, id string) (*dto.UpdatedDTO, error)
	GetNotification(ctx context.Context, id string) (*dto.AdminNotificationItemDTO, error)
	ListNotifications(ctx context.Context, query *dto.AdminNotificationQueryDTO) (*dto.AdminNotificationListDTO, error)
}

type NotificationAdminServiceImpl struct {
	notificationRepo repository.NotificationRepo
	publisher        NotificationEventPublisher
}

func NewNotificationAdminService(notificationRepo repository.NotificationRepo, publisher NotificationEventPublisher) NotificationAdminService {
	return &NotificationAdminServiceImpl{
		notificationRepo: notificationRepo,
		publisher:        publisher,
	}
}

// CreateNotification 创建通知，SELECTED 模式的接收人集合在创建时固定
func (s *NotificationAdminServiceImpl) CreateNotification(ctx context.Context, saveDTO *dto.AdminNotificationSaveDTO) (*dto.AdminNotificationItemDTO, error) {
	n, err := s.buildNotification(saveDTO)
	if err != nil {
		return nil, err
	}
	n.ID = uuid.NewString()
	now := time.Now()
	n.CreatedAt = now
	n.UpdatedAt = now

	err = s.notificationRepo.CreateNotification(ctx, n, saveDTO.RecipientUserIDs)
	if err != nil {
		if errors.Is(err, repository.ErrUnknownRecipient) {
			return nil, ErrRecipientInvalid
		}
		return nil, err
	}

	s.publishEvent(ctx, kafka.EventNotificationCreated, n)
	return toAdminItemDTO(n, now), nil
}

// UpdateNotification 编辑通知；updated 为 0 视为通知不存在，向调用方抛出明确错误
func (s *NotificationAdminServiceImpl) UpdateNotification(ctx context.Context, id string, saveDTO *dto.AdminNotificationSaveDTO) (*dto.UpdatedDTO, error) {
	if id == "" {
		return nil, ErrParamInvalid
	}
	n, err := s.buildNotification(saveDTO)
	if err != nil {
		return nil, err
	}
	n.ID = id
	n.UpdatedAt = time.Now()

	fields := []string{"title", "body", "type", "audience", "published_at", "archived_at", "updated_at"}
	updated, err := s.notificationRepo.UpdateNotification(ctx, n, fields, saveDTO.RecipientUserIDs)
	if err != nil {
		if errors.Is(err, repository.ErrUnknownRecipient) {
			return nil, ErrRecipientInvalid
		}
		return nil, err
	}
	if updated == 0 {
		return nil, ErrNotificationNotFound
	}
	return &dto.UpdatedDTO{Updated: updated}, nil
}

// ArchiveNotification 归档软删除。updated 为 0 表示已归档或不存在，
// 都是可回报的良性结果，不作为错误抛出。
func (s *NotificationAdminServiceImpl) ArchiveNotification(ctx context.Context, id string) (*dto.UpdatedDTO, error) {
	if id == "" {
		return nil, ErrParamInvalid
	}
	now := time.Now()
	updated, err := s.notificationRepo.ArchiveNotification(ctx, id, now)
	if err != nil {
		return nil, err
	}

	if updated > 0 {
		s.publishEvent(ctx, kafka.EventNotificationArchived, &model.Notification{ID: id})
	}
	return &dto.UpdatedDTO{Updated: updated}, nil
}

func (s *NotificationAdminServiceImpl) GetNotification(ctx context.Context, id string) (*dto.AdminNotificationItemDTO, error) {
	n, err := s.notificationRepo.GetNotificationByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if n == nil {
		return nil, ErrNotificationNotFound
	}
	return toAdminItemDTO(n, time.Now()), nil
}

// ListNotifications 管理端分页列表，逐项带上推导状态
func (s *NotificationAdminServiceImpl) ListNotifications(ctx context.Context, query *dto.AdminNotificationQueryDTO) (*dto.AdminNotificationListDTO, error) {
	if err := s.validateAdminQuery(query); err != nil {
		return nil, err
	}

	now := time.Now()
	repoQuery := repository.AdminNotificationQuery{
		Keyword:  query.Keyword,
		Type:     normalizeTypeFilter(query.Type),
		Archived: query.Archived == "archived",
		Limit:    query.PageSize,
		Offset:   (query.Page - 1) * query.PageSize,
	}
	if query.Audience != TypeFilterAll {
		repoQuery.Audience = model.Audience(query.Audience)
	}

	list, total, err := s.notificationRepo.ListAdminNotifications(ctx, repoQuery, now)
	if err != nil {
		return nil, err
	}

	items := make([]*dto.AdminNotificationItemDTO, 0, len(list))
	for _, n := range list {
		items = append(items, toAdminItemDTO(n, now))
	}
	return &dto.AdminNotificationListDTO{Total: total, Items: items}, nil
}

func (s *NotificationAdminServiceImpl) validateAdminQuery(query *dto.AdminNotificationQueryDTO) error {
	if !validTypeFilter(query.Type) {
		return ErrParamInvalid
	}
	switch query.Audience {
	case TypeFilterAll, string(model.AudienceAll), string(model.AudienceSelected):
	default:
		return ErrParamInvalid
	}
	if query.Archived != "active" && query.Archived != "archived" {
		return ErrParamInvalid
	}
	if query.Page < 1 || query.PageSize < 1 || query.PageSize > MaxPageSize {
		return ErrParamInvalid
	}
	return nil
}

// buildNotification 校验入参并组装模型，失败在触达存储前抛出
func (s *NotificationAdminServiceImpl) buildNotification(saveDTO *dto.AdminNotificationSaveDTO) (*model.Notification, error) {
	audience := model.Audience(saveDTO.Audience)
	if !audience.Valid() {
		return nil, ErrParamInvalid
	}
	if audience == model.AudienceSelected && len(saveDTO.RecipientUserIDs) == 0 {
		return nil, ErrRecipientRequired
	}
	// ALL 模式不允许附带接收人，接收人行只能由读取动作懒创建
	if audience == model.AudienceAll && len(saveDTO.RecipientUserIDs) > 0 {
		return nil, ErrRecipientNotAllowed
	}

	n := &model.Notification{}
	_ = copier.Copy(n, saveDTO)
	n.Audience = audience

	publishedAt, err := parseLocalTimePtr(saveDTO.PublishedAt)
	if err != nil {
		return nil, ErrParamInvalid
	}
	archivedAt, err := parseLocalTimePtr(saveDTO.ArchivedAt)
	if err != nil {
		return nil, ErrParamInvalid
	}
	n.PublishedAt = publishedAt
	n.ArchivedAt = archivedAt
	return n, nil
}

func (s *NotificationAdminServiceImpl) publishEvent(ctx context.Context, event string, n *model.Notification) {
	if s.publisher == nil {
		return
	}
	// 事件投递尽力而为，失败不影响主流程
	err := s.publisher.PublishNotificationEvent(ctx, kafka.NotificationEvent{
		Event:          event,
		NotificationID: n.ID,
		Type:           n.Type,
		Audience:       string(n.Audience),
		OccurredAt:     time.Now(),
	})
	if err != nil {
		log.WarnContext(ctx, "failed to publish notification event", "event", event, "notification_id", n.ID, "err", err)
	}
}

func parseLocalTimePtr(value *string) (*time.Time, error) {
	if value == nil || *value == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation(localDateTimeLayout, *value, time.Local)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func toAdminItemDTO(n *model.Notification, now time.Time) *dto.AdminNotificationItemDTO {
	item := &dto.AdminNotificationItemDTO{}
	_ = copier.Copy(item, n)
	item.Audience = string(n.Audience)
	item.Status = StatusAt(n, now)
	item.PublishedAt = formatTimePtr(n.PublishedAt)
	item.ArchivedAt = formatTimePtr(n.ArchivedAt)
	item.CreatedAt = n.CreatedAt.UTC().Format(time.RFC3339)
	item.UpdatedAt = n.UpdatedAt.UTC().Format(time.RFC3339)
	return item
}
