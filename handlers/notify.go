package handlers

import (
	"log"

	"backend/metrics"
	"backend/models"
)

// NotifyUser はユーザー本人のルームへイベントを送る。
// 相手がオフラインなら黙って捨てられる（再送はしない）。
func NotifyUser(userID int, payload map[string]interface{}) {
	hub.Broadcast(userRoom(userID), payload)
}

// fanoutNotification はDMの保存成功後に通知レコードを作って受信者へ送る。
// メッセージ送信とは独立した失敗ドメイン：ここで失敗しても
// 送信は失敗にならず、リトライもしない。
func fanoutNotification(msg *models.Message) {
	n := &models.Notification{
		UserID:   msg.ReceiverID,
		SenderID: msg.SenderID,
		Type:     models.NotificationNewMessage,
	}

	if err := store.SaveNotification(n); err != nil {
		log.Println("⚠️ 通知の保存失敗:", err)
		return
	}

	n.SenderName = msg.SenderName
	n.SenderAvatar = msg.SenderAvatar

	NotifyUser(msg.ReceiverID, map[string]interface{}{
		"type":         "notification",
		"notification": n,
	})

	metrics.NotificationsCreated.Inc()
	log.Printf("📡 通知作成: sender=%d → user=%d notificationID=%d", n.SenderID, n.UserID, n.ID)
}
