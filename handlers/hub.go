package handlers

import (
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"backend/metrics"
)

// Client は1本のWebSocket接続。
// 同じユーザーが複数タブ・複数端末で接続することがあるので、
// 接続ごとにユニークなハンドル（ID）を持つ。
type Client struct {
	ID     string // 接続ハンドル（UUID）
	UserID int

	conn   *websocket.Conn
	send   chan []byte
	closed bool
	rooms  map[string]bool // 参加中のルーム（hubのロックで保護）
}

// Hub は全接続のプレゼンス管理とルームへの配信を行う。
// clients / users / rooms は同じmutexで保護し、
// ロックを持ったままネットワークI/Oは行わない。
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*Client            // 接続ハンドル → 接続
	users   map[int]map[string]*Client    // ユーザーID → 接続の集合
	rooms   map[string]map[string]*Client // ルームID → 接続の集合
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[string]*Client),
		users:   make(map[int]map[string]*Client),
		rooms:   make(map[string]map[string]*Client),
	}
}

// プロセス全体で共有するハブ
var hub = NewHub()

// userRoom はユーザー本人のルームID。
// 認証直後に全接続が自動で参加するので、同じユーザーの全タブに届く。
func userRoom(userID int) string {
	return fmt.Sprintf("user:%d", userID)
}

// channelRoom はクライアントが明示的に参加するルームのID。
// ユーザールームと衝突しないようprefixを付ける。
func channelRoom(roomID string) string {
	return "room:" + roomID
}

// NewClient は接続をラップする。sendはバッファ付きで、
// 詰まった接続への配信は捨てる（ブロックしない）。
func NewClient(id string, userID int, conn *websocket.Conn) *Client {
	return &Client{
		ID:     id,
		UserID: userID,
		conn:   conn,
		send:   make(chan []byte, 256),
		rooms:  make(map[string]bool),
	}
}

// Register は接続を登録し、本人のルームに自動参加させる。
// 同じハンドルの二重登録は置き換えになる（配信が重複しない）。
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	if old, ok := h.clients[c.ID]; ok {
		if old == c {
			h.mu.Unlock()
			return // 登録済み
		}
		h.removeLocked(old)
		metrics.ActiveConnections.Dec()
	}
	c.closed = false
	h.clients[c.ID] = c
	if h.users[c.UserID] == nil {
		h.users[c.UserID] = make(map[string]*Client)
	}
	h.users[c.UserID][c.ID] = c
	h.joinLocked(c, userRoom(c.UserID))
	total := len(h.clients)
	h.mu.Unlock()

	metrics.ActiveConnections.Inc()
	log.Printf("✅ WebSocket接続: userID=%d conn=%s (合計%d接続)", c.UserID, c.ID, total)
}

// Unregister は接続を全ルームから外し、登録を解除する。
// そのユーザーの最後の接続ならオフラインになる。
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	registered := h.clients[c.ID] == c
	if registered {
		h.removeLocked(c)
	}
	online := len(h.users[c.UserID]) > 0
	h.mu.Unlock()

	if !registered {
		return
	}

	metrics.ActiveConnections.Dec()
	if online {
		log.Printf("👋 WebSocket切断: userID=%d conn=%s（他の接続あり）", c.UserID, c.ID)
	} else {
		log.Printf("👋 WebSocket切断: userID=%d conn=%s（オフラインへ）", c.UserID, c.ID)
	}
}

// removeLocked は h.mu を握った状態で呼ぶこと
func (h *Hub) removeLocked(c *Client) {
	for roomID := range c.rooms {
		h.leaveLocked(c, roomID)
	}
	delete(h.clients, c.ID)
	if conns := h.users[c.UserID]; conns != nil {
		delete(conns, c.ID)
		if len(conns) == 0 {
			delete(h.users, c.UserID)
		}
	}
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

// IsOnline はユーザーに1本でも接続があるかどうか。
// 表示用の情報であって、配信の可否はこれに依存しない。
func (h *Hub) IsOnline(userID int) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.users[userID]) > 0
}

// Join は接続をルームに参加させる
func (h *Hub) Join(c *Client, roomID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[c.ID] != c {
		return // 切断済みの接続は参加させない
	}
	h.joinLocked(c, roomID)
}

// Leave は接続をルームから外す
func (h *Hub) Leave(c *Client, roomID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.leaveLocked(c, roomID)
}

func (h *Hub) joinLocked(c *Client, roomID string) {
	if h.rooms[roomID] == nil {
		h.rooms[roomID] = make(map[string]*Client)
	}
	h.rooms[roomID][c.ID] = c
	c.rooms[roomID] = true
}

func (h *Hub) leaveLocked(c *Client, roomID string) {
	if members := h.rooms[roomID]; members != nil {
		delete(members, c.ID)
		if len(members) == 0 {
			delete(h.rooms, roomID)
		}
	}
	delete(c.rooms, roomID)
}

// Broadcast はルームの現在のメンバー全員にイベントを送る。
// メンバーがいなければ何もしない（エラーでもない）。
func (h *Hub) Broadcast(roomID string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		log.Println("❌ イベントのJSON化に失敗:", err)
		return
	}

	h.mu.RLock()
	members := make([]*Client, 0, len(h.rooms[roomID]))
	for _, c := range h.rooms[roomID] {
		members = append(members, c)
	}
	h.mu.RUnlock()

	for _, c := range members {
		if !h.safeSend(c, data) {
			log.Printf("⚠️ 送信バッファ溢れ: userID=%d conn=%s", c.UserID, c.ID)
		}
	}
}

// SendTo は特定の1接続だけに送る（送信元へのエラー通知用）
func (h *Hub) SendTo(c *Client, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		log.Println("❌ イベントのJSON化に失敗:", err)
		return
	}
	if !h.safeSend(c, data) {
		log.Printf("⚠️ 送信バッファ溢れ: userID=%d conn=%s", c.UserID, c.ID)
	}
}

// safeSend はチャネルが閉じられた後に送らないようロックの下で確認する
func (h *Hub) safeSend(c *Client, data []byte) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

// writePump はsendチャネルの内容を接続へ書き続ける。
// 定期的にpingを打って死んだ接続を検知する。
func (c *Client) writePump() {
	ticker := time.NewTicker(54 * time.Second)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Printf("⚠️ 送信エラー: conn=%s err=%v", c.ID, err)
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
