package workers

import (
	"context"
	"fmt"
	"log/slog"

	"gamechat/contract"
)

// Ensure *NotifyWorker implements the contract.Worker interface at compile time.
var _ contract.Worker = (*NotifyWorker)(nil)

// NotificationRequest is one pending push notification.
type NotificationRequest struct {
	Username string
	Title    string
	Body     string
	Link     string
}

// NotifyWorker drains notification requests and calls the notifier off
// the hot path, so a slow push gateway can never stall a chat send or a
// room broadcast. Failures are logged and swallowed.
type NotifyWorker struct {
	log      *slog.Logger
	notifier contract.Notifier
	requests chan NotificationRequest
}

func NewNotifyWorker(log *slog.Logger, notifier contract.Notifier, bufferSize int) *NotifyWorker {
	return &NotifyWorker{
		log:      log,
		notifier: notifier,
		requests: make(chan NotificationRequest, bufferSize),
	}
}

// Requests is the submission channel. Producers must enqueue with a
// non-blocking send and drop on a full buffer.
func (w *NotifyWorker) Requests() chan<- NotificationRequest {
	return w.requests
}

func (w *NotifyWorker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Stopping worker")
			return ctx.Err()
		case req, ok := <-w.requests:
			if !ok {
				return nil
			}
			if err := w.notifier.Notify(ctx, req.Username, req.Title, req.Body, req.Link); err != nil {
				w.log.Warn(fmt.Sprintf("Push notification for %s failed: %v", req.Username, err))
			}
		}
	}
}
