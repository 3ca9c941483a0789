package handlers

import (
	"database/sql"
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"backend/db"
	"backend/middleware"
	"backend/models"
)

type signUpRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// POST /signup
func SignUp(w http.ResponseWriter, r *http.Request) {
	var req signUpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error": "Bad request"}`, http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)
	if req.Username == "" || req.Email == "" || len(req.Password) < 8 {
		http.Error(w, `{"error": "ユーザー名・メール・8文字以上のパスワードが必要です"}`, http.StatusBadRequest)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		http.Error(w, `{"error": "登録に失敗しました"}`, http.StatusInternalServerError)
		return
	}

	user, err := models.CreateUser(db.Conn, req.Username, req.Email, string(hash))
	if err != nil {
		log.Println("❌ ユーザー登録失敗:", err)
		http.Error(w, `{"error": "このメールアドレスは既に使われています"}`, http.StatusConflict)
		return
	}

	issueTokenCookie(w, user.ID)
	log.Printf("✅ ユーザー登録: id=%d username=%s", user.ID, user.Username)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(user)
}

// POST /login
func Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error": "Bad request"}`, http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	user, hash, err := models.GetUserByEmail(db.Conn, req.Email)
	if err == sql.ErrNoRows {
		http.Error(w, `{"error": "メールアドレスまたはパスワードが違います"}`, http.StatusUnauthorized)
		return
	}
	if err != nil {
		http.Error(w, `{"error": "DB error"}`, http.StatusInternalServerError)
		return
	}

	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(req.Password)) != nil {
		http.Error(w, `{"error": "メールアドレスまたはパスワードが違います"}`, http.StatusUnauthorized)
		return
	}

	issueTokenCookie(w, user.ID)
	log.Printf("✅ ログイン: id=%d", user.ID)

	user.Email = ""
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(user)
}

// POST /logout
func Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     "token",
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
	})
	w.WriteHeader(http.StatusOK)
}

// GET /me
func GetMe(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.ValidateToken(r)
	if err != nil {
		http.Error(w, `{"error": "Unauthorized"}`, http.StatusUnauthorized)
		return
	}

	user, err := models.GetUserByID(db.Conn, userID)
	if err != nil {
		http.Error(w, `{"error": "ユーザーが見つかりません"}`, http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(user)
}

func issueTokenCookie(w http.ResponseWriter, userID int) {
	token, err := middleware.GenerateToken(userID)
	if err != nil {
		log.Println("❌ トークン発行失敗:", err)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     "token",
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(24 * time.Hour),
		HttpOnly: true,
	})
}
