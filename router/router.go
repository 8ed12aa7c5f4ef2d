package router

import (
	"eon-notify/controller"

	"github.com/gin-gonic/gin"
)

// RegisterNotificationRoutes mounts the notification center endpoints.
func RegisterNotificationRoutes(r *gin.Engine, notificationController *controller.NotificationController) {
	notifications := r.Group("/notifications")
	{
		notifications.GET("", notificationController.ListNotifications)
		notifications.GET("/stats", notificationController.GetStats)
		notifications.PATCH("/read-all", notificationController.MarkAllRead)
		notifications.PATCH("/:id/read", notificationController.MarkRead)
		notifications.PATCH("/:id/unread", notificationController.MarkUnread)
		notifications.DELETE("/:id", notificationController.DeleteNotification)
		notifications.DELETE("", notificationController.ClearNotifications)
	}
}
