package worker

import (
	"github.com/spec-kit/helpdesk/internal/service"
)

// StartNotificationWorker subscribes the notification fanout to ticket events.
func StartNotificationWorker(notificationService *service.NotificationService) {
	if notificationService == nil {
		return
	}
	notificationService.RegisterHandlers()
}
