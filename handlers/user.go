package handlers

import (
	"encoding/json"
	"net/http"

	"backend/db"
	"backend/middleware"
	"backend/models"
)

// GET /users 自分以外のユーザー一覧（DM相手の選択用）。
// online フラグはプレゼンス表示のためだけで、配信の可否とは無関係。
func GetUsers(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.ValidateToken(r)
	if err != nil {
		http.Error(w, `{"error": "Unauthorized"}`, http.StatusUnauthorized)
		return
	}

	users, err := models.GetUsers(db.Conn, userID)
	if err != nil {
		http.Error(w, `{"error": "DB error"}`, http.StatusInternalServerError)
		return
	}

	type userWithPresence struct {
		models.User
		Online bool `json:"online"`
	}

	result := make([]userWithPresence, 0, len(users))
	for _, u := range users {
		result = append(result, userWithPresence{User: u, Online: hub.IsOnline(u.ID)})
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}
