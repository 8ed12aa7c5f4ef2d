package controller

import (
	"net/http"
	"strconv"
	"time"

	"eon-notify/data"
	"eon-notify/logger"
	notificationService "eon-notify/services/notification"

	"github.com/gin-gonic/gin"
)

type NotificationController struct {
	notificationService notificationService.NotificationService
}

// NewNotificationController returns a new instance of NotificationController.
// It requires a notificationService to be injected for its dependencies.
func NewNotificationController(service notificationService.NotificationService) *NotificationController {
	return &NotificationController{notificationService: service}
}

// ListNotifications returns the session user's notifications, newest first.
// Query parameters isRead, category, priority, eventType, dateFrom and
// dateTo (RFC3339) filter the result; filters combine with AND.
func (controller *NotificationController) ListNotifications(ctx *gin.Context) {
	correlationId := ctx.GetString(data.CORRELATION_ID)

	filter, err := filterFromQuery(ctx)
	if err != nil {
		logger.Log.Error(logger.LogPayload{
			Component:     "NotificationController",
			Operation:     "ListNotifications",
			Message:       "Invalid filter parameters",
			CorrelationId: correlationId,
			Error:         err,
		})
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	records := controller.notificationService.Query(filter)
	logger.Log.Debug(logger.LogPayload{
		Component:     "NotificationController",
		Operation:     "ListNotifications",
		Message:       "Returning " + strconv.Itoa(len(records)) + " notifications",
		CorrelationId: correlationId,
	})
	ctx.JSON(http.StatusOK, records)
}

// GetStats returns the derived notification counters.
func (controller *NotificationController) GetStats(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, controller.notificationService.Stats())
}

// MarkRead marks one notification as read. Unknown ids are a silent no-op,
// mirroring the store semantics.
func (controller *NotificationController) MarkRead(ctx *gin.Context) {
	controller.mutateById(ctx, "MarkRead", controller.notificationService.MarkRead)
}

// MarkUnread clears the read flag of one notification.
func (controller *NotificationController) MarkUnread(ctx *gin.Context) {
	controller.mutateById(ctx, "MarkUnread", controller.notificationService.MarkUnread)
}

// MarkAllRead marks every notification as read.
func (controller *NotificationController) MarkAllRead(ctx *gin.Context) {
	controller.notificationService.MarkAllRead()
	ctx.JSON(http.StatusOK, controller.notificationService.Stats())
}

// DeleteNotification removes one notification.
func (controller *NotificationController) DeleteNotification(ctx *gin.Context) {
	controller.mutateById(ctx, "DeleteNotification", controller.notificationService.Delete)
}

// ClearNotifications removes every notification of the session user.
func (controller *NotificationController) ClearNotifications(ctx *gin.Context) {
	correlationId := ctx.GetString(data.CORRELATION_ID)
	controller.notificationService.ClearAll()
	logger.Log.Debug(logger.LogPayload{
		Component:     "NotificationController",
		Operation:     "ClearNotifications",
		Message:       "Cleared all notifications",
		CorrelationId: correlationId,
	})
	ctx.Status(http.StatusNoContent)
}

func (controller *NotificationController) mutateById(ctx *gin.Context, operation string, fn func(id string)) {
	correlationId := ctx.GetString(data.CORRELATION_ID)
	id := ctx.Param("id")
	if id == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "notification id is required"})
		return
	}
	fn(id)
	logger.Log.Debug(logger.LogPayload{
		Component:     "NotificationController",
		Operation:     operation,
		Message:       "Applied to notification " + id,
		CorrelationId: correlationId,
	})
	ctx.JSON(http.StatusOK, controller.notificationService.Stats())
}

func filterFromQuery(ctx *gin.Context) (*data.NotificationFilter, error) {
	filter := &data.NotificationFilter{
		Category:  ctx.Query("category"),
		Priority:  ctx.Query("priority"),
		EventType: ctx.Query("eventType"),
	}
	if raw := ctx.Query("isRead"); raw != "" {
		isRead, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, err
		}
		filter.IsRead = &isRead
	}
	if raw := ctx.Query("dateFrom"); raw != "" {
		from, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return nil, err
		}
		filter.DateFrom = &from
	}
	if raw := ctx.Query("dateTo"); raw != "" {
		to, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return nil, err
		}
		filter.DateTo = &to
	}
	return filter, nil
}
