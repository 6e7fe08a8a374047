package handler

import (
	"Inkwell/internal/api/dto"
	"Inkwell/internal/pkg/response"
	"Inkwell/internal/service"

	"github.com/gin-gonic/gin"
)

type NotificationHandler struct {
	notificationSvc service.NotificationService
}

func NewNotificationHandler(s service.NotificationService) *NotificationHandler {
	return &NotificationHandler{
		notificationSvc: s,
	}
}

// GetNotificationList 获取通知列表
func (h *NotificationHandler) GetNotificationList(c *gin.Context) {
	var page dto.PageReq
	if err := c.ShouldBindQuery(&page); err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	list, err := h.notificationSvc.GetNotificationList(c.Request.Context(), c.GetUint64("user_id"), page.Page, page.PageSize)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, list)
}

// GetUnreadCount 获取未读数
func (h *NotificationHandler) GetUnreadCount(c *gin.Context) {
	unread, err := h.notificationSvc.GetUnreadCount(c.Request.Context(), c.GetUint64("user_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, unread)
}

// MarkRead 标记单条已读
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	if err := h.notificationSvc.MarkRead(c.Request.Context(), c.GetUint64("user_id"), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

// MarkAllRead 一键已读
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	if err := h.notificationSvc.MarkAllRead(c.Request.Context(), c.GetUint64("user_id")); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

// DeleteNotification 删除通知
func (h *NotificationHandler) DeleteNotification(c *gin.Context) {
	if err := h.notificationSvc.DeleteNotification(c.Request.Context(), c.GetUint64("user_id"), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}
