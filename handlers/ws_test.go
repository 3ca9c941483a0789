package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"backend/middleware"
)

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

// IsOnlineの変化を少し待つ（登録はupgrade直後に行われる）
func waitForOnline(t *testing.T, userID int, want bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if hub.IsOnline(userID) == want {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("IsOnline(%d) が %v にならない", userID, want)
}

// トークンなしの接続はupgrade前に401で拒否される
func TestWebSocketRejectsAnonymous(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(HandleWebSocket))
	defer srv.Close()

	_, resp, err := websocket.DefaultDialer.Dial(wsURL(srv), nil)
	if err == nil {
		t.Fatal("匿名接続が受理されてしまった")
	}
	if resp == nil || resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %v, want 401", resp)
	}
}

func TestWebSocketRejectsBadToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(HandleWebSocket))
	defer srv.Close()

	_, resp, err := websocket.DefaultDialer.Dial(wsURL(srv)+"?token=garbage", nil)
	if err == nil {
		t.Fatal("不正トークンの接続が受理されてしまった")
	}
	if resp == nil || resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %v, want 401", resp)
	}
}

// 有効なトークンなら接続でき、切断で即座にプレゼンスから消える
func TestWebSocketConnectAndDisconnect(t *testing.T) {
	oldHub := hub
	hub = NewHub()
	t.Cleanup(func() { hub = oldHub })

	srv := httptest.NewServer(http.HandlerFunc(HandleWebSocket))
	defer srv.Close()

	token, err := middleware.GenerateToken(5)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(srv)+"?token="+token, nil)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}

	waitForOnline(t, 5, true)

	conn.Close()
	waitForOnline(t, 5, false)
}
