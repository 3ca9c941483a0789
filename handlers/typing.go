package handlers

import (
	"log"

	"backend/metrics"
)

// handleTyping は入力中シグナルを相手のルームへそのまま中継する。
// 保存もackも順序保証もしない。停止シグナルのデバウンスはクライアントの責務で、
// サーバー側ではタイムアウトを掛けない。
func handleTyping(c *Client, ev *clientEvent) {
	if ev.ReceiverID == 0 {
		return
	}

	eventType := "typing_stopped"
	if ev.IsTyping {
		eventType = "typing_started"
	}

	NotifyUser(ev.ReceiverID, map[string]interface{}{
		"type":         eventType,
		"from_user_id": c.UserID,
	})

	metrics.TypingEvents.Inc()
	log.Printf("⌨️ typing: %d → %d is_typing=%v", c.UserID, ev.ReceiverID, ev.IsTyping)
}
