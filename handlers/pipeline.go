package handlers

import (
	"log"
	"strings"

	"backend/db"
	"backend/metrics"
	"backend/models"
)

// Store は配信パイプラインが使う永続化・プロフィール参照。
// テストではインメモリ実装に差し替える。
type Store interface {
	SaveMessage(msg *models.Message) error
	SaveNotification(n *models.Notification) error
	GetUser(userID int) (*models.User, error)
}

// sqlStore は models パッケージへの委譲（本番用）
type sqlStore struct{}

func (sqlStore) SaveMessage(msg *models.Message) error {
	return models.InsertMessage(db.Conn, msg)
}

func (sqlStore) SaveNotification(n *models.Notification) error {
	return models.InsertNotification(db.Conn, n)
}

func (sqlStore) GetUser(userID int) (*models.User, error) {
	return models.GetUserByID(db.Conn, userID)
}

var store Store = sqlStore{}

// handleSendMessage はメッセージ送信の本体。
// 検証 → 保存 → 表示情報の付与 → 配信 → 通知、の順。
// 失敗は送信元の接続だけに send_failed で返す（temp_id付き）。
// 保存済みの行はロールバックしない：配信に失敗しても履歴取得で読める。
func handleSendMessage(c *Client, ev *clientEvent) {
	msg := &models.Message{
		SenderID:       c.UserID,
		ReceiverID:     ev.ReceiverID,
		RoomID:         ev.RoomID,
		Content:        strings.TrimSpace(ev.Content),
		AttachmentURL:  ev.AttachmentURL,
		AttachmentMime: ev.AttachmentMime,
		FileName:       ev.FileName,
		FileSize:       ev.FileSize,
	}

	if !msg.HasBody() {
		sendFailed(c, "メッセージが空です", ev.TempID)
		metrics.SendFailures.WithLabelValues("validation").Inc()
		return
	}
	if msg.ReceiverID == 0 && msg.RoomID == "" {
		sendFailed(c, "宛先がありません", ev.TempID)
		metrics.SendFailures.WithLabelValues("validation").Inc()
		return
	}

	if err := store.SaveMessage(msg); err != nil {
		log.Println("❌ メッセージ保存失敗:", err)
		sendFailed(c, "メッセージの保存に失敗しました", ev.TempID)
		metrics.SendFailures.WithLabelValues("persistence").Inc()
		return
	}

	delivered := deliverMessage(c, msg, ev.TempID)

	// 通知はDMのみ、保存が成功していれば配信の成否に関係なく作る。
	// 通知の失敗は送信自体を失敗にしない。
	if msg.IsDirect() {
		fanoutNotification(msg)
	}

	if delivered {
		if msg.IsDirect() {
			metrics.MessagesDelivered.WithLabelValues("direct").Inc()
		} else {
			metrics.MessagesDelivered.WithLabelValues("room").Inc()
		}
	}
}

// deliverMessage は表示情報を付けて両方のルームへ配信する。
// message_received は宛先ルームへ、message_sent（ack）は送信者本人のルームへ。
// 2回に分けるのは、自分宛かどうかでクライアント側の扱いが違うため。
func deliverMessage(c *Client, msg *models.Message, tempID string) bool {
	if err := enrichMessage(msg); err != nil {
		log.Println("❌ 表示情報の取得失敗:", err)
		sendFailed(c, "メッセージの配信に失敗しました", tempID)
		metrics.SendFailures.WithLabelValues("delivery").Inc()
		return false
	}

	if msg.IsDirect() {
		hub.Broadcast(userRoom(msg.ReceiverID), map[string]interface{}{
			"type":    "message_received",
			"message": msg,
		})
	} else {
		hub.Broadcast(channelRoom(msg.RoomID), map[string]interface{}{
			"type":    "message_received",
			"message": msg,
		})
	}

	ack := map[string]interface{}{
		"type":    "message_sent",
		"message": msg,
	}
	if tempID != "" {
		ack["temp_id"] = tempID
	}
	hub.Broadcast(userRoom(msg.SenderID), ack)

	log.Printf("📨 配信: %d → receiver=%d room=%q messageID=%d", msg.SenderID, msg.ReceiverID, msg.RoomID, msg.ID)
	return true
}

// enrichMessage はusersテーブルから表示用の名前とアバターを読む。
// 読み取り専用で、メッセージ保存の成否には関与しない。
func enrichMessage(msg *models.Message) error {
	sender, err := store.GetUser(msg.SenderID)
	if err != nil {
		return err
	}
	msg.SenderName = sender.Username
	msg.SenderAvatar = sender.AvatarURL

	if msg.IsDirect() {
		receiver, err := store.GetUser(msg.ReceiverID)
		if err != nil {
			return err
		}
		msg.ReceiverName = receiver.Username
		msg.ReceiverAvatar = receiver.AvatarURL
	}
	return nil
}

// sendFailed は送信元の接続だけにエラーを返す。
// temp_id を付けて返すので、クライアントは楽観表示していた行を失敗扱いにできる。
func sendFailed(c *Client, errMsg, tempID string) {
	payload := map[string]interface{}{
		"type":  "send_failed",
		"error": errMsg,
	}
	if tempID != "" {
		payload["temp_id"] = tempID
	}
	hub.SendTo(c, payload)
}
