package usecase

import (
	"context"
	"errors"

	"github.com/xavierca1/leadflow/internal/entity"
)

type NotificationUseCase struct {
	Notifications entity.NotificationRepositoryInterface
}

func NewNotificationUseCase(notifications entity.NotificationRepositoryInterface) *NotificationUseCase {
	return &NotificationUseCase{Notifications: notifications}
}

func (uc *NotificationUseCase) List(ctx context.Context, actor *entity.User, unreadOnly bool) ([]*entity.Notification, error) {
	items, err := uc.Notifications.ListByUser(ctx, actor.ID, unreadOnly)
	if err != nil {
		return nil, technical("failed to list notifications", err)
	}
	return items, nil
}

// MarkRead only touches notifications addressed to the actor.
func (uc *NotificationUseCase) MarkRead(ctx context.Context, actor *entity.User, id string) (*entity.Notification, error) {
	n, err := uc.Notifications.MarkRead(ctx, id, actor.ID)
	if errors.Is(err, entity.ErrNotFound) {
		return nil, notFound("notification")
	}
	if err != nil {
		return nil, technical("failed to mark notification", err)
	}
	return n, nil
}

func (uc *NotificationUseCase) MarkAllRead(ctx context.Context, actor *entity.User) error {
	if err := uc.Notifications.MarkAllRead(ctx, actor.ID); err != nil {
		return technical("failed to mark notifications", err)
	}
	return nil
}
