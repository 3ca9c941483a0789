package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"backend/db"
	"backend/middleware"
	"backend/models"
)

// GET /messages?user_id=相手ID または /messages?room_id=ルームID
// 履歴取得。再接続後のキャッチアップもここで行う（WebSocket側の再送はない）。
func GetMessages(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.ValidateToken(r)
	if err != nil {
		http.Error(w, `{"error": "Unauthorized"}`, http.StatusUnauthorized)
		return
	}

	otherIDStr := r.URL.Query().Get("user_id")
	roomID := r.URL.Query().Get("room_id")

	var messages []models.Message
	switch {
	case otherIDStr != "":
		otherID, err := strconv.Atoi(otherIDStr)
		if err != nil {
			http.Error(w, `{"error": "user_id は数値である必要があります"}`, http.StatusBadRequest)
			return
		}
		messages, err = models.GetDirectMessages(db.Conn, userID, otherID)
		if err != nil {
			log.Println("❌ メッセージSELECT失敗:", err)
			http.Error(w, `{"error": "メッセージ取得に失敗しました"}`, http.StatusInternalServerError)
			return
		}
	case roomID != "":
		messages, err = models.GetRoomMessages(db.Conn, roomID)
		if err != nil {
			log.Println("❌ メッセージSELECT失敗:", err)
			http.Error(w, `{"error": "メッセージ取得に失敗しました"}`, http.StatusInternalServerError)
			return
		}
	default:
		http.Error(w, `{"error": "user_id か room_id が必要です"}`, http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(messages)
}
