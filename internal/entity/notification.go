package entity

import (
	"context"
	"time"
)

type NotificationType string

const (
	NotificationNewLead         NotificationType = "new_lead"
	NotificationFollowUp        NotificationType = "follow_up"
	NotificationOverdueFollowUp NotificationType = "overdue_follow_up"
)

type Notification struct {
	ID        string           `json:"id"`
	UserID    string           `json:"user_id"`
	Type      NotificationType `json:"type"`
	Title     string           `json:"title"`
	Message   string           `json:"message"`
	LeadID    string           `json:"lead_id,omitempty"`
	IsRead    bool             `json:"is_read"`
	CreatedAt time.Time        `json:"created_at"`
}

type NotificationRepositoryInterface interface {
	Create(ctx context.Context, n *Notification) error
	// ListByUser returns notifications newest first.
	ListByUser(ctx context.Context, userID string, unreadOnly bool) ([]*Notification, error)
	MarkRead(ctx context.Context, id, userID string) (*Notification, error)
	MarkAllRead(ctx context.Context, userID string) error
}
