package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/xavierca1/leadflow/internal/entity"
)

type NotificationRepository struct {
	mu    sync.RWMutex
	items map[string]*entity.Notification
}

func NewNotificationRepository() *NotificationRepository {
	return &NotificationRepository{items: map[string]*entity.Notification{}}
}

func (r *NotificationRepository) Create(_ context.Context, n *entity.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := *n
	r.items[n.ID] = &c
	return nil
}

func (r *NotificationRepository) ListByUser(_ context.Context, userID string, unreadOnly bool) ([]*entity.Notification, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []*entity.Notification{}
	for _, n := range r.items {
		if n.UserID != userID || (unreadOnly && n.IsRead) {
			continue
		}
		c := *n
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *NotificationRepository) MarkRead(_ context.Context, id, userID string) (*entity.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.items[id]
	if !ok || n.UserID != userID {
		return nil, entity.ErrNotFound
	}
	n.IsRead = true
	c := *n
	return &c, nil
}

func (r *NotificationRepository) MarkAllRead(_ context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, n := range r.items {
		if n.UserID == userID {
			n.IsRead = true
		}
	}
	return nil
}
