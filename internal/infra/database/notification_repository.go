package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/xavierca1/leadflow/internal/entity"
)

const notificationColumns = `id, user_id, type, title, message, lead_id, is_read, created_at`

type notificationRow struct {
	ID        string         `db:"id"`
	UserID    string         `db:"user_id"`
	Type      string         `db:"type"`
	Title     string         `db:"title"`
	Message   string         `db:"message"`
	LeadID    sql.NullString `db:"lead_id"`
	IsRead    bool           `db:"is_read"`
	CreatedAt time.Time      `db:"created_at"`
}

func (r notificationRow) toEntity() *entity.Notification {
	return &entity.Notification{
		ID:        r.ID,
		UserID:    r.UserID,
		Type:      entity.NotificationType(r.Type),
		Title:     r.Title,
		Message:   r.Message,
		LeadID:    r.LeadID.String,
		IsRead:    r.IsRead,
		CreatedAt: r.CreatedAt,
	}
}

type NotificationRepository struct {
	DB *sqlx.DB
}

func NewNotificationRepository(db *sqlx.DB) *NotificationRepository {
	return &NotificationRepository{DB: db}
}

func (r *NotificationRepository) Create(ctx context.Context, n *entity.Notification) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO notifications (`+notificationColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		n.ID, n.UserID, string(n.Type), n.Title, n.Message, nullString(n.LeadID), n.IsRead, n.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}

func (r *NotificationRepository) ListByUser(ctx context.Context, userID string, unreadOnly bool) ([]*entity.Notification, error) {
	query := `SELECT ` + notificationColumns + ` FROM notifications WHERE user_id = $1`
	if unreadOnly {
		query += ` AND NOT is_read`
	}
	query += ` ORDER BY created_at DESC`

	var rows []notificationRow
	if err := r.DB.SelectContext(ctx, &rows, query, userID); err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	out := make([]*entity.Notification, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toEntity())
	}
	return out, nil
}

func (r *NotificationRepository) MarkRead(ctx context.Context, id, userID string) (*entity.Notification, error) {
	var row notificationRow
	err := r.DB.GetContext(ctx, &row, `
		UPDATE notifications SET is_read = TRUE
		WHERE id = $1 AND user_id = $2
		RETURNING `+notificationColumns, id, userID)
	if err != nil {
		return nil, notFound(err)
	}
	return row.toEntity(), nil
}

func (r *NotificationRepository) MarkAllRead(ctx context.Context, userID string) error {
	if _, err := r.DB.ExecContext(ctx, `UPDATE notifications SET is_read = TRUE WHERE user_id = $1 AND NOT is_read`, userID); err != nil {
		return fmt.Errorf("mark notifications read: %w", err)
	}
	return nil
}
