package repository

import (
	"database/sql"
	"fmt"
	"time"

	"cims/models"
)

// NotificationRepository handles the citizen notification inbox
type NotificationRepository struct {
	db *sql.DB
}

// NewNotificationRepository creates a new notification repository
func NewNotificationRepository(db *sql.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// CreateNotification inserts a notification row
func (r *NotificationRepository) CreateNotification(n *models.Notification) error {
	n.CreatedAt = time.Now().UTC()
	result, err := r.db.Exec(`
		INSERT INTO notifications (user_email, title, message, is_read, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, n.UserEmail, n.Title, n.Message, n.IsRead, n.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get notification ID: %w", err)
	}
	n.ID = id
	return nil
}

// GetNotificationsByEmail returns a citizen's notifications, newest first
func (r *NotificationRepository) GetNotificationsByEmail(email string) ([]models.Notification, error) {
	rows, err := r.db.Query(`
		SELECT id, user_email, title, message, is_read, created_at
		FROM notifications
		WHERE user_email = ?
		ORDER BY created_at DESC
	`, email)
	if err != nil {
		return nil, fmt.Errorf("failed to query notifications: %w", err)
	}
	defer rows.Close()

	var notifications []models.Notification
	for rows.Next() {
		var n models.Notification
		if err := rows.Scan(&n.ID, &n.UserEmail, &n.Title, &n.Message, &n.IsRead, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		notifications = append(notifications, n)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating notifications: %w", err)
	}
	return notifications, nil
}

// MarkNotificationRead marks a single notification as read
func (r *NotificationRepository) MarkNotificationRead(id int64, email string) error {
	result, err := r.db.Exec(`
		UPDATE notifications SET is_read = TRUE WHERE id = ? AND user_email = ?
	`, id, email)
	if err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
