package worker

import (
	"context"
	"time"

	"github.com/keyshopvn/keyshop/internal/domain"
	"github.com/keyshopvn/keyshop/pkg/logger"
	"github.com/keyshopvn/keyshop/pkg/metrics"
)

// NotificationWorker continuously drains the notification queue and
// delivers each message through the Notifier. Delivery failures are
// logged and dropped; nothing upstream waits on them. Callers manage
// lifecycle by controlling the provided context (cancel on shutdown).
type NotificationWorker struct {
	queue    domain.NotificationQueue
	notifier domain.Notifier
	interval time.Duration
}

// NotificationWorkerConfig defines runtime options for the worker.
type NotificationWorkerConfig struct {
	PollingInterval time.Duration
}

// NewNotificationWorker builds a new notification worker instance.
func NewNotificationWorker(queue domain.NotificationQueue, notifier domain.Notifier, cfg NotificationWorkerConfig) *NotificationWorker {
	interval := cfg.PollingInterval
	if interval <= 0 {
		interval = 500 * time.Millisecond
	}

	return &NotificationWorker{
		queue:    queue,
		notifier: notifier,
		interval: interval,
	}
}

// Start launches the worker loop. It blocks until context cancellation.
func (w *NotificationWorker) Start(ctx context.Context) {
	logger.Info("Notification worker started")
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("Notification worker stopping", logger.ErrorField(ctx.Err()))
			return
		case <-ticker.C:
			w.processNext()
		}
	}
}

func (w *NotificationWorker) processNext() {
	if w.queue == nil || w.notifier == nil {
		logger.Warn("Notification worker missing dependencies")
		return
	}

	notification, err := w.queue.DequeueNotification()
	if err != nil {
		logger.Error("Failed to dequeue notification", logger.ErrorField(err))
		return
	}

	if notification == nil {
		// No items available
		return
	}

	start := time.Now()
	err = w.notifier.Send(notification)
	duration := time.Since(start)

	if err != nil {
		logger.Error("Failed to deliver notification",
			logger.String("kind", notification.Kind),
			logger.Duration("duration", duration),
			logger.ErrorField(err),
		)
		metrics.RecordNotification(notification.Kind, "failed")
		return
	}

	metrics.RecordNotification(notification.Kind, "delivered")
	logger.Info("Notification delivered",
		logger.String("kind", notification.Kind),
		logger.Duration("duration", duration),
	)

	w.recordBacklog()
}

// recordBacklog exposes the queue depth when the backing store can
// report it.
func (w *NotificationWorker) recordBacklog() {
	lengther, ok := w.queue.(interface{ GetQueueLength() (int64, error) })
	if !ok {
		return
	}
	if length, err := lengther.GetQueueLength(); err == nil {
		metrics.SetQueueSize("notifications", float64(length))
	}
}
