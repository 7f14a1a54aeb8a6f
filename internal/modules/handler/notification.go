package handler

import (
	"net/http"
	"time"

	"github.com/eternalmoments/backend/internal/modules/model"
	"github.com/eternalmoments/backend/internal/modules/serializer"
	"github.com/eternalmoments/backend/internal/modules/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type NotificationHandler struct {
	svc service.NotificationService
}

func NewNotificationHandler(s service.NotificationService) *NotificationHandler {
	return &NotificationHandler{svc: s}
}

type ScheduleNotificationReq struct {
	CapsuleID        string                  `json:"capsule_id" binding:"required"`
	Contacts         []model.ContactSnapshot `json:"contacts"`
	NotificationType string                  `json:"notification_type"`
}

// ScheduleNotification godoc
//
//	@Summary		Schedule a capsule notification
//	@Description	Snapshot the capsule and its recipients into a pending notification. The daily sweep dispatches it on the capsule's release date.
//	@Tags			notification
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Success		201	{object}	serializer.Response{data=model.ScheduledNotification}
//	@Router			/send-notification [post]
func (h *NotificationHandler) ScheduleNotification(c *gin.Context) {
	req := ScheduleNotificationReq{}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}

	capsuleID, err := uuid.Parse(req.CapsuleID)
	if err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("invalid capsule_id", err))
		return
	}

	row, err := h.svc.Schedule(c.Request.Context(), service.ScheduleInput{
		CapsuleID:        capsuleID,
		Contacts:         req.Contacts,
		NotificationType: model.NotificationType(req.NotificationType),
	})
	if err != nil {
		writeServiceErr(c, err)
		return
	}

	c.JSON(http.StatusCreated, serializer.Response{Data: row})
}

// RunScheduledNotifications godoc
//
//	@Summary		Run the notification sweep
//	@Description	Dispatch every pending notification whose capsule releases today. Called by the cron scheduler; guarded by a shared secret, not user auth.
//	@Tags			notification
//	@Produce		json
//	@Success		200	{object}	serializer.Response{data=service.SweepSummary}
//	@Router			/run-scheduled-notifications [post]
func (h *NotificationHandler) RunScheduledNotifications(c *gin.Context) {
	summary, err := h.svc.RunSweep(c.Request.Context(), time.Now())
	if err != nil {
		c.JSON(http.StatusInternalServerError, serializer.DBErr("", err))
		return
	}

	c.JSON(http.StatusOK, serializer.Response{Data: summary})
}
