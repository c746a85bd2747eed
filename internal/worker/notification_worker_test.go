package worker

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/keyshopvn/keyshop/internal/domain"
)

type stubQueue struct {
	items []*domain.Notification
	err   error
}

func (q *stubQueue) EnqueueNotification(n *domain.Notification) error {
	q.items = append(q.items, n)
	return nil
}

func (q *stubQueue) DequeueNotification() (*domain.Notification, error) {
	if q.err != nil {
		return nil, q.err
	}
	if len(q.items) == 0 {
		return nil, nil
	}
	n := q.items[0]
	q.items = q.items[1:]
	return n, nil
}

type stubNotifier struct {
	sent []*domain.Notification
	err  error
}

func (s *stubNotifier) Send(n *domain.Notification) error {
	s.sent = append(s.sent, n)
	return s.err
}

func TestProcessNextDelivers(t *testing.T) {
	queue := &stubQueue{items: []*domain.Notification{
		{Kind: domain.NotifyOrderPlaced, Message: "order"},
	}}
	notifier := &stubNotifier{}

	w := NewNotificationWorker(queue, notifier, NotificationWorkerConfig{})
	w.processNext()

	assert.Len(t, notifier.sent, 1)
	assert.Empty(t, queue.items)
}

func TestProcessNextEmptyQueue(t *testing.T) {
	notifier := &stubNotifier{}
	w := NewNotificationWorker(&stubQueue{}, notifier, NotificationWorkerConfig{})
	w.processNext()

	assert.Empty(t, notifier.sent)
}

func TestProcessNextDropsOnDeliveryFailure(t *testing.T) {
	queue := &stubQueue{items: []*domain.Notification{
		{Kind: domain.NotifyLowStockAlert},
		{Kind: domain.NotifyOrderPlaced},
	}}
	notifier := &stubNotifier{err: errors.New("telegram unreachable")}

	w := NewNotificationWorker(queue, notifier, NotificationWorkerConfig{})
	w.processNext()

	// The failed message is not requeued; the next one is still served.
	assert.Len(t, queue.items, 1)
	assert.Equal(t, domain.NotifyOrderPlaced, queue.items[0].Kind)
}

func TestProcessNextDequeueError(t *testing.T) {
	notifier := &stubNotifier{}
	w := NewNotificationWorker(&stubQueue{err: errors.New("redis down")}, notifier, NotificationWorkerConfig{})
	w.processNext()

	assert.Empty(t, notifier.sent)
}
