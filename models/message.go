package models

import (
	"database/sql"
	"fmt"
	"time"
)

// Message はDMまたはチャンネル宛のメッセージ。
// receiver_id と room_id はどちらか一方だけが入る。
// content か添付のどちらかは必須（チェックはパイプライン側で行う）。
type Message struct {
	ID             int       `json:"id"`
	SenderID       int       `json:"sender_id"`
	ReceiverID     int       `json:"receiver_id,omitempty"`
	RoomID         string    `json:"room_id,omitempty"`
	Content        string    `json:"content,omitempty"`
	AttachmentURL  string    `json:"attachment_url,omitempty"`
	AttachmentMime string    `json:"attachment_mime,omitempty"`
	FileName       string    `json:"file_name,omitempty"`
	FileSize       int64     `json:"file_size,omitempty"`
	Timestamp      time.Time `json:"timestamp"`

	// 配信用の表示情報（usersテーブルから読むだけ、保存はしない）
	SenderName     string `json:"sender_name,omitempty"`
	SenderAvatar   string `json:"sender_avatar,omitempty"`
	ReceiverName   string `json:"receiver_name,omitempty"`
	ReceiverAvatar string `json:"receiver_avatar,omitempty"`
}

// IsDirect はDM（チャンネル宛でない）かどうか
func (m *Message) IsDirect() bool {
	return m.RoomID == ""
}

// HasBody は本文または添付があるかどうか
func (m *Message) HasBody() bool {
	return m.Content != "" || m.AttachmentURL != ""
}

// InsertMessage はメッセージを保存し、IDと作成時刻を埋める
func InsertMessage(db *sql.DB, msg *Message) error {
	err := db.QueryRow(`
		INSERT INTO messages (sender_id, receiver_id, room_id, content, attachment_url, attachment_mime, file_name, file_size, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
		RETURNING id, created_at
	`, msg.SenderID, nullInt(msg.ReceiverID), nullStr(msg.RoomID), nullStr(msg.Content),
		nullStr(msg.AttachmentURL), nullStr(msg.AttachmentMime), nullStr(msg.FileName), nullInt64(msg.FileSize)).
		Scan(&msg.ID, &msg.Timestamp)
	if err != nil {
		return fmt.Errorf("error inserting message: %v", err)
	}
	return nil
}

// GetDirectMessages は2人の間のDM履歴を古い順で返す
func GetDirectMessages(db *sql.DB, userID, otherID int) ([]Message, error) {
	rows, err := db.Query(`
		SELECT m.id, m.sender_id, m.receiver_id, m.content, m.attachment_url, m.attachment_mime, m.file_name, m.file_size, m.created_at,
		       s.username, s.avatar_url
		FROM messages m
		JOIN users s ON m.sender_id = s.id
		WHERE m.room_id IS NULL
		  AND ((m.sender_id = $1 AND m.receiver_id = $2) OR (m.sender_id = $2 AND m.receiver_id = $1))
		ORDER BY m.created_at ASC
	`, userID, otherID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanMessages(rows)
}

// GetRoomMessages はチャンネルの履歴を古い順で返す
func GetRoomMessages(db *sql.DB, roomID string) ([]Message, error) {
	rows, err := db.Query(`
		SELECT m.id, m.sender_id, m.receiver_id, m.content, m.attachment_url, m.attachment_mime, m.file_name, m.file_size, m.created_at,
		       s.username, s.avatar_url
		FROM messages m
		JOIN users s ON m.sender_id = s.id
		WHERE m.room_id = $1
		ORDER BY m.created_at ASC
	`, roomID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanMessages(rows)
}

func scanMessages(rows *sql.Rows) ([]Message, error) {
	messages := make([]Message, 0)
	for rows.Next() {
		var m Message
		var receiverID sql.NullInt64
		var content, attURL, attMime, fileName sql.NullString
		var fileSize sql.NullInt64
		if err := rows.Scan(&m.ID, &m.SenderID, &receiverID, &content, &attURL, &attMime, &fileName, &fileSize,
			&m.Timestamp, &m.SenderName, &m.SenderAvatar); err != nil {
			return nil, err
		}
		m.ReceiverID = int(receiverID.Int64)
		m.Content = content.String
		m.AttachmentURL = attURL.String
		m.AttachmentMime = attMime.String
		m.FileName = fileName.String
		m.FileSize = fileSize.Int64
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

func nullStr(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullInt(n int) sql.NullInt64 {
	return sql.NullInt64{Int64: int64(n), Valid: n != 0}
}

func nullInt64(n int64) sql.NullInt64 {
	return sql.NullInt64{Int64: n, Valid: n != 0}
}
