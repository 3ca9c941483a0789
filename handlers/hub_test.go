package handlers

import (
	"encoding/json"
	"sync"
	"testing"
)

// drainEvents は接続のsendチャネルに溜まったイベントを全部取り出す
func drainEvents(t *testing.T, c *Client) []map[string]interface{} {
	t.Helper()
	events := make([]map[string]interface{}, 0)
	for {
		select {
		case data, ok := <-c.send:
			if !ok {
				return events
			}
			var ev map[string]interface{}
			if err := json.Unmarshal(data, &ev); err != nil {
				t.Fatalf("イベントのJSONが不正: %v", err)
			}
			events = append(events, ev)
		default:
			return events
		}
	}
}

func TestRegisterJoinsOwnRoom(t *testing.T) {
	h := NewHub()
	c := NewClient("conn-1", 1, nil)
	h.Register(c)

	h.Broadcast(userRoom(1), map[string]interface{}{"type": "hello"})

	events := drainEvents(t, c)
	if len(events) != 1 {
		t.Fatalf("イベント数 = %d, want 1", len(events))
	}
	if events[0]["type"] != "hello" {
		t.Errorf("type = %v, want hello", events[0]["type"])
	}
}

func TestMultipleConnectionsPerUser(t *testing.T) {
	h := NewHub()
	tab1 := NewClient("conn-1", 1, nil)
	tab2 := NewClient("conn-2", 1, nil)
	h.Register(tab1)
	h.Register(tab2)

	if !h.IsOnline(1) {
		t.Fatal("IsOnline(1) = false, want true")
	}

	h.Broadcast(userRoom(1), map[string]interface{}{"type": "hello"})

	for _, c := range []*Client{tab1, tab2} {
		if got := len(drainEvents(t, c)); got != 1 {
			t.Errorf("conn=%s のイベント数 = %d, want 1", c.ID, got)
		}
	}
}

// 同じハンドルを二重登録しても配信は1回だけ
func TestRegisterIdempotent(t *testing.T) {
	h := NewHub()
	c := NewClient("conn-1", 1, nil)
	h.Register(c)
	h.Register(c)

	h.Broadcast(userRoom(1), map[string]interface{}{"type": "hello"})

	if got := len(drainEvents(t, c)); got != 1 {
		t.Errorf("イベント数 = %d, want 1", got)
	}
}

func TestUnregisterCleanup(t *testing.T) {
	h := NewHub()
	tab1 := NewClient("conn-1", 1, nil)
	tab2 := NewClient("conn-2", 1, nil)
	h.Register(tab1)
	h.Register(tab2)

	h.Unregister(tab1)

	// 残った接続には影響しない
	if !h.IsOnline(1) {
		t.Error("1本切断後も IsOnline(1) = true であるべき")
	}

	h.Broadcast(userRoom(1), map[string]interface{}{"type": "hello"})
	if got := len(drainEvents(t, tab1)); got != 0 {
		t.Errorf("切断済み接続へのイベント数 = %d, want 0", got)
	}
	if got := len(drainEvents(t, tab2)); got != 1 {
		t.Errorf("残存接続のイベント数 = %d, want 1", got)
	}

	// 最後の接続が切れたらオフライン
	h.Unregister(tab2)
	if h.IsOnline(1) {
		t.Error("全接続切断後は IsOnline(1) = false であるべき")
	}
}

func TestUnregisterTwiceIsSafe(t *testing.T) {
	h := NewHub()
	c := NewClient("conn-1", 1, nil)
	h.Register(c)
	h.Unregister(c)
	h.Unregister(c) // 2回目はno-op
}

func TestJoinLeaveChannelRoom(t *testing.T) {
	h := NewHub()
	a := NewClient("conn-a", 1, nil)
	b := NewClient("conn-b", 2, nil)
	h.Register(a)
	h.Register(b)

	room := channelRoom("golang")
	h.Join(a, room)
	h.Join(b, room)

	h.Broadcast(room, map[string]interface{}{"type": "hello"})
	if got := len(drainEvents(t, a)); got != 1 {
		t.Errorf("aのイベント数 = %d, want 1", got)
	}
	if got := len(drainEvents(t, b)); got != 1 {
		t.Errorf("bのイベント数 = %d, want 1", got)
	}

	h.Leave(b, room)
	h.Broadcast(room, map[string]interface{}{"type": "hello"})
	if got := len(drainEvents(t, a)); got != 1 {
		t.Errorf("退出後のaのイベント数 = %d, want 1", got)
	}
	if got := len(drainEvents(t, b)); got != 0 {
		t.Errorf("退出後のbのイベント数 = %d, want 0", got)
	}
}

// 切断時に参加していた全ルームから外れる
func TestUnregisterLeavesAllRooms(t *testing.T) {
	h := NewHub()
	c := NewClient("conn-1", 1, nil)
	h.Register(c)
	h.Join(c, channelRoom("a"))
	h.Join(c, channelRoom("b"))

	h.Unregister(c)

	h.mu.RLock()
	defer h.mu.RUnlock()
	if len(h.rooms) != 0 {
		t.Errorf("切断後のルーム数 = %d, want 0", len(h.rooms))
	}
}

// メンバー0のルームへの配信はエラーにならない
func TestBroadcastEmptyRoom(t *testing.T) {
	h := NewHub()
	h.Broadcast(userRoom(99), map[string]interface{}{"type": "hello"})
}

// join/leave/broadcast が並行しても競合しないこと（-race用）
func TestConcurrentAccess(t *testing.T) {
	h := NewHub()
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			c := NewClient(string(rune('a'+n)), n, nil)
			h.Register(c)
			h.Join(c, channelRoom("shared"))
			h.Broadcast(channelRoom("shared"), map[string]interface{}{"type": "hello"})
			h.IsOnline(n)
			h.Leave(c, channelRoom("shared"))
			h.Unregister(c)
		}(i)
	}
	wg.Wait()
}
