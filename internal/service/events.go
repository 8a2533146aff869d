package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/iliyamo/todo-service/internal/queue"
)

const publishTimeout = 2 * time.Second

// emit publishes ev when a publisher is configured.  The request context's
// cancellation is dropped so a client disconnect does not lose the event.
func emit(ctx context.Context, p EventPublisher, log *slog.Logger, ev queue.ActivityEvent) {
	if p == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	if err := p.Publish(ctx, ev); err != nil {
		log.WarnContext(ctx, "publish activity event failed", "type", ev.Type, "user_id", ev.UserID, "err", err)
	}
}
