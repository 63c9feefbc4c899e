package workers

import (
	"context"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/endurancy/platform/internal/notification"
)

// NotificationWorker runs the two sweeps the dispatcher exposes as
// callable units: the retention cleanup and the stale-ticket scan.
type NotificationWorker struct {
	svc *notification.Service
}

func NewNotificationWorker(svc *notification.Service) *NotificationWorker {
	return &NotificationWorker{svc: svc}
}

func (w *NotificationWorker) ProcessCleanup(ctx context.Context, t *asynq.Task) error {
	deleted, err := w.svc.CleanupOld(ctx)
	if err != nil {
		return err
	}
	slog.Info("notification retention sweep finished", "deleted", deleted)
	return nil
}

func (w *NotificationWorker) ProcessSystemScan(ctx context.Context, t *asynq.Task) error {
	created, err := w.svc.GenerateSystemNotifications(ctx)
	if err != nil {
		return err
	}
	slog.Info("stale ticket scan finished", "notifications_created", created)
	return nil
}
