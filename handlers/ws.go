package handlers

import (
	"log"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"backend/middleware"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// クライアントから届くイベント
type clientEvent struct {
	Type string `json:"type"`

	// send_message
	ReceiverID     int    `json:"receiver_id,omitempty"`
	RoomID         string `json:"room_id,omitempty"`
	Content        string `json:"content,omitempty"`
	AttachmentURL  string `json:"attachment_url,omitempty"`
	AttachmentMime string `json:"attachment_mime,omitempty"`
	FileName       string `json:"file_name,omitempty"`
	FileSize       int64  `json:"file_size,omitempty"`
	TempID         string `json:"temp_id,omitempty"`

	// typing
	IsTyping bool `json:"is_typing,omitempty"`
}

// HandleWebSocket は認証 → upgrade → 登録 → 受信ループ。
// トークンが無効なら upgrade せずに 401 を返す（匿名接続は受け付けない）。
func HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.ValidateToken(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println("WebSocket upgrade error:", err)
		return
	}

	client := NewClient(uuid.NewString(), userID, conn)
	hub.Register(client)

	go client.writePump()
	go handleIncomingEvents(client)
}

// handleIncomingEvents は1接続ぶんの受信ループ。
// 接続内のイベントは到着順に処理する（順序はトランスポート任せ）。
func handleIncomingEvents(c *Client) {
	defer func() {
		c.conn.Close()
		hub.Unregister(c)
	}()

	for {
		var ev clientEvent
		if err := c.conn.ReadJSON(&ev); err != nil {
			log.Println("WebSocketの接続終了:", err)
			break
		}

		switch ev.Type {
		case "send_message":
			handleSendMessage(c, &ev)
		case "typing":
			handleTyping(c, &ev)
		case "join_room":
			if ev.RoomID != "" {
				hub.Join(c, channelRoom(ev.RoomID))
				log.Printf("📥 ルーム参加: userID=%d room=%s", c.UserID, ev.RoomID)
			}
		case "leave_room":
			if ev.RoomID != "" {
				hub.Leave(c, channelRoom(ev.RoomID))
				log.Printf("📤 ルーム退出: userID=%d room=%s", c.UserID, ev.RoomID)
			}
		default:
			log.Printf("⚠️ 未知のイベント: type=%q userID=%d", ev.Type, c.UserID)
		}
	}
}
