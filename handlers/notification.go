package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"backend/db"
	"backend/middleware"
	"backend/models"
)

// GET /notifications 自分宛の通知一覧（新しい順）
func GetNotifications(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.ValidateToken(r)
	if err != nil {
		http.Error(w, `{"error": "Unauthorized"}`, http.StatusUnauthorized)
		return
	}

	notifications, err := models.GetNotifications(db.Conn, userID)
	if err != nil {
		log.Println("❌ 通知取得失敗:", err)
		http.Error(w, `{"error": "通知取得に失敗しました"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(notifications)
}

// POST /notifications/read {"notification_id": 1} （0または省略で全件既読）
func MarkNotificationsRead(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.ValidateToken(r)
	if err != nil {
		http.Error(w, `{"error": "Unauthorized"}`, http.StatusUnauthorized)
		return
	}

	var payload struct {
		NotificationID int `json:"notification_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, `{"error": "Invalid request body"}`, http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	if err := models.MarkNotificationAsRead(db.Conn, userID, payload.NotificationID); err != nil {
		log.Printf("❌ 既読UPDATE失敗: %v", err)
		http.Error(w, `{"error": "DB update failed"}`, http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
}
