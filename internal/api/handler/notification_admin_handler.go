package handler

import (
	"Beacon/internal/api/dto"
	"Beacon/internal/pkg/response"
	"Beacon/internal/pkg/util"
	"Beacon/internal/service"

	"github.com/gin-gonic/gin"
)

type NotificationAdminHandler struct {
	adminSvc service.NotificationAdminService
}

func NewNotificationAdminHandler(adminSvc service.NotificationAdminService) *NotificationAdminHandler {
	return &NotificationAdminHandler{adminSvc: adminSvc}
}

func (s *NotificationAdminHandler) CreateNotification(c *gin.Context) {
	var saveDTO dto.AdminNotificationSaveDTO
	err := c.ShouldBind(&saveDTO)
	if err != nil {
		response.Error(c, err)
		return
	}
	if err = util.ValidateDTO(&saveDTO); err != nil {
		response.Error(c, err)
		return
	}
	item, err := s.adminSvc.CreateNotification(c.Request.Context(), &saveDTO)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, item)
}

func (s *NotificationAdminHandler) UpdateNotification(c *gin.Context) {
	id := c.Param("notification_id")
	var saveDTO dto.AdminNotificationSaveDTO
	err := c.ShouldBind(&saveDTO)
	if err != nil {
		response.Error(c, err)
		return
	}
	if err = util.ValidateDTO(&saveDTO); err != nil {
		response.Error(c, err)
		return
	}
	updated, err := s.adminSvc.UpdateNotification(c.Request.Context(), id, &saveDTO)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, updated)
}

func (s *NotificationAdminHandler) ArchiveNotification(c *gin.Context) {
	id := c.Param("notification_id")
	updated, err := s.adminSvc.ArchiveNotification(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, updated)
}

func (s *NotificationAdminHandler) GetNotification(c *gin.Context) {
	id := c.Param("notification_id")
	item, err := s.adminSvc.GetNotification(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, item)
}

func (s *NotificationAdminHandler) ListNotifications(c *gin.Context) {
	var query dto.AdminNotificationQueryDTO
	err := c.ShouldBindQuery(&query)
	if err != nil {
		response.Error(c, err)
		return
	}
	if query.Type == "" {
		query.Type = service.TypeFilterAll
	}
	if query.Audience == "" {
		query.Audience = service.TypeFilterAll
	}
	if query.Archived == "" {
		query.Archived = "active"
	}
	if query.Page == 0 {
		query.Page = 1
	}
	if query.PageSize == 0 {
		query.PageSize = 20
	}

	list, err := s.adminSvc.ListNotifications(c.Request.Context(), &query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, list)
}
