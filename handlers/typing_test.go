package handlers

import "testing"

// typingシグナルは相手のルームにだけ届き、保存されない
func TestTypingDeliveredToTargetOnly(t *testing.T) {
	fs := setupPipeline(t)
	alice := NewClient("conn-a", 1, nil)
	bobTab1 := NewClient("conn-b1", 2, nil)
	bobTab2 := NewClient("conn-b2", 2, nil)
	carol := NewClient("conn-c", 3, nil)
	hub.Register(alice)
	hub.Register(bobTab1)
	hub.Register(bobTab2)
	hub.Register(carol)

	handleTyping(alice, &clientEvent{Type: "typing", ReceiverID: 2, IsTyping: true})

	for _, tab := range []*Client{bobTab1, bobTab2} {
		events := eventsOfType(drainEvents(t, tab), "typing_started")
		if len(events) != 1 {
			t.Fatalf("conn=%s の typing_started 数 = %d, want 1", tab.ID, len(events))
		}
		if events[0]["from_user_id"] != float64(1) {
			t.Errorf("from_user_id = %v, want 1", events[0]["from_user_id"])
		}
	}

	if got := len(drainEvents(t, carol)); got != 0 {
		t.Errorf("無関係なユーザーへのイベント数 = %d, want 0", got)
	}
	if got := len(drainEvents(t, alice)); got != 0 {
		t.Errorf("送信者本人へのイベント数 = %d, want 0", got)
	}

	// 痕跡が残らないこと
	if fs.messageCount() != 0 || fs.notificationCount() != 0 {
		t.Error("typingシグナルが永続化されている")
	}
}

func TestTypingStopped(t *testing.T) {
	setupPipeline(t)
	alice := NewClient("conn-a", 1, nil)
	bob := NewClient("conn-b", 2, nil)
	hub.Register(alice)
	hub.Register(bob)

	handleTyping(alice, &clientEvent{Type: "typing", ReceiverID: 2, IsTyping: false})

	if len(eventsOfType(drainEvents(t, bob), "typing_stopped")) != 1 {
		t.Error("typing_stopped が届いていない")
	}
}

// 宛先なしのtypingは無視される
func TestTypingWithoutTarget(t *testing.T) {
	setupPipeline(t)
	alice := NewClient("conn-a", 1, nil)
	hub.Register(alice)

	handleTyping(alice, &clientEvent{Type: "typing", IsTyping: true})

	if got := len(drainEvents(t, alice)); got != 0 {
		t.Errorf("イベント数 = %d, want 0", got)
	}
}
