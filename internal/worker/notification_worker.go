package worker

import (
	"github.com/portal-qssma/portal-service/internal/service"
)

// StartNotificationWorker wires the notification sinks and begins watching
// the announcement feed. The returned function stops the watch.
func StartNotificationWorker(notificationService *service.NotificationService) func() {
	if notificationService == nil {
		return func() {}
	}
	notificationService.RegisterHandlers()
	return notificationService.Watch()
}
