package service

import (
	"context"

	"github.com/fjod/saree_store/internal/domain"
	"github.com/fjod/saree_store/internal/repository"
)

type NotificationService struct {
	repo repository.NotificationRepository
}

func NewNotificationService(repo repository.NotificationRepository) *NotificationService {
	return &NotificationService{repo: repo}
}

func (s *NotificationService) List(ctx context.Context, unreadOnly bool, limit int64) ([]*domain.Notification, error) {
	return s.repo.List(ctx, unreadOnly, limit)
}

func (s *NotificationService) SetRead(ctx context.Context, id string, read bool) error {
	return s.repo.SetRead(ctx, id, read)
}

// MarkAllRead flips every unread notification. Calling it again changes nothing.
func (s *NotificationService) MarkAllRead(ctx context.Context) (int64, error) {
	return s.repo.MarkAllRead(ctx)
}

func (s *NotificationService) UnreadCount(ctx context.Context) (int64, error) {
	return s.repo.UnreadCount(ctx)
}
