package handlers

import (
	"github.com/gin-gonic/gin"

	"doctor-booking-server/internal/notify"
	"doctor-booking-server/internal/utils"
)

// NotificationHandler serves the user's inbox.
type NotificationHandler struct {
	Notifier *notify.Notifier
}

func NewNotificationHandler(n *notify.Notifier) *NotificationHandler {
	return &NotificationHandler{Notifier: n}
}

func (h *NotificationHandler) GetNotifications(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	utils.Success(c, "Notifications retrieved successfully", h.Notifier.Inbox(user.ID))
}

type FollowUpRequest struct {
	Days int `json:"days" binding:"required,min=1,max=365"`
}

// ScheduleFollowUp queues a follow-up reminder for the user.
func (h *NotificationHandler) ScheduleFollowUp(c *gin.Context) {
	var req FollowUpRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}
	user, ok := requireUser(c)
	if !ok {
		return
	}
	utils.Created(c, "Follow-up reminder scheduled", h.Notifier.ScheduleFollowUp(user.ID, req.Days))
}
