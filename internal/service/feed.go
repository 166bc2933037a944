package service

import (
	"context"

	"github.com/fjod/saree_store/internal/domain"
	"github.com/fjod/saree_store/internal/events"
	"github.com/fjod/saree_store/internal/logger"
	"github.com/fjod/saree_store/internal/repository"
	"go.uber.org/zap"
)

// feed emits the side effects of order and payment writes. Both are
// best-effort: the primary write has already happened, so failures are only logged.
type feed struct {
	notifications repository.NotificationRepository
	publisher     events.Publisher
	log           *zap.Logger
}

func (f feed) notify(ctx context.Context, n *domain.Notification) {
	if err := f.notifications.Create(ctx, n); err != nil {
		logger.FromContext(ctx, f.log).Error("failed to create notification",
			zap.String("type", string(n.Type)),
			zap.Any("meta", n.Meta),
			zap.Error(err))
	}
}

func (f feed) publish(ctx context.Context, e events.Event) {
	if err := f.publisher.Publish(ctx, e); err != nil {
		logger.FromContext(ctx, f.log).Warn("failed to publish event",
			zap.String("event_type", string(e.Type)),
			zap.String("order_id", e.OrderID),
			zap.Error(err))
	}
}
