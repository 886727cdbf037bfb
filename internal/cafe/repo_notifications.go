package cafe

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
)

// Notifikasi menumpuk dan tidak pernah dihapus; pembacaan selalu
// terbaru-dulu dengan cap.
const notificationCap = 50

func (r *Repo) InsertNotification(ctx context.Context, n *Notification) error {
	return r.DB.QueryRow(ctx, `
		INSERT INTO notifications(id, user_id, order_id, type, message, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at`,
		n.ID, n.UserID, n.OrderID, n.Type, n.Message, n.Status,
	).Scan(&n.CreatedAt)
}

func (r *Repo) ListNotifications(ctx context.Context, userID string) ([]Notification, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT id, user_id, order_id, type, message, status, created_at
		FROM notifications
		WHERE user_id=$1
		ORDER BY created_at DESC
		LIMIT $2`, userID, notificationCap)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Notification
	for rows.Next() {
		var n Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.OrderID, &n.Type, &n.Message, &n.Status, &n.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// MarkNotificationRead: hanya addressee yang boleh; unread -> read.
func (r *Repo) MarkNotificationRead(ctx context.Context, id string, actor Actor) (*Notification, error) {
	var n Notification
	err := r.DB.QueryRow(ctx, `
		UPDATE notifications SET status=$3
		WHERE id=$1 AND user_id=$2
		RETURNING id, user_id, order_id, type, message, status, created_at`,
		id, actor.ID, NotificationRead,
	).Scan(&n.ID, &n.UserID, &n.OrderID, &n.Type, &n.Message, &n.Status, &n.CreatedAt)
	if err == nil {
		return &n, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}
	var exists bool
	if err := r.DB.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM notifications WHERE id=$1)`, id).Scan(&exists); err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrForbidden
	}
	return nil, ErrNotFound
}

// ListAdminIDs: target fan-out "new order" (addressee = semua admin).
func (r *Repo) ListAdminIDs(ctx context.Context) ([]string, error) {
	rows, err := r.DB.Query(ctx, `SELECT id FROM users WHERE role=$1`, RoleAdmin)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}
