package models

import (
	"database/sql"
	"fmt"
	"time"
)

// 通知タイプの閉じた集合
const (
	NotificationNewMessage = "new_message"
)

type Notification struct {
	ID        int       `json:"id"`
	UserID    int       `json:"user_id"` // 受信者
	SenderID  int       `json:"sender_id"`
	Type      string    `json:"type"`
	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"`

	// 表示用（保存しない）
	SenderName   string `json:"sender_name,omitempty"`
	SenderAvatar string `json:"sender_avatar,omitempty"`
}

// InsertNotification は通知を未読状態で保存する
func InsertNotification(db *sql.DB, n *Notification) error {
	err := db.QueryRow(`
		INSERT INTO notifications (user_id, sender_id, type, is_read, created_at)
		VALUES ($1, $2, $3, FALSE, NOW())
		RETURNING id, is_read, created_at
	`, n.UserID, n.SenderID, n.Type).Scan(&n.ID, &n.IsRead, &n.CreatedAt)
	if err != nil {
		return fmt.Errorf("error inserting notification: %v", err)
	}
	return nil
}

// GetNotifications はユーザー宛の通知を新しい順で返す
func GetNotifications(db *sql.DB, userID int) ([]Notification, error) {
	rows, err := db.Query(`
		SELECT n.id, n.user_id, n.sender_id, n.type, n.is_read, n.created_at,
		       s.username, s.avatar_url
		FROM notifications n
		JOIN users s ON n.sender_id = s.id
		WHERE n.user_id = $1
		ORDER BY n.created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	notifications := make([]Notification, 0)
	for rows.Next() {
		var n Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.SenderID, &n.Type, &n.IsRead, &n.CreatedAt,
			&n.SenderName, &n.SenderAvatar); err != nil {
			return nil, err
		}
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}

// MarkNotificationAsRead は通知を既読にする。notificationID=0なら全件。
func MarkNotificationAsRead(db *sql.DB, userID, notificationID int) error {
	var err error
	if notificationID == 0 {
		_, err = db.Exec(`
			UPDATE notifications SET is_read = TRUE
			WHERE user_id = $1 AND is_read = FALSE
		`, userID)
	} else {
		_, err = db.Exec(`
			UPDATE notifications SET is_read = TRUE
			WHERE id = $1 AND user_id = $2
		`, notificationID, userID)
	}
	if err != nil {
		return fmt.Errorf("error marking notification as read: %v", err)
	}
	return nil
}
