package models

import (
	"database/sql"
	"time"
)

type User struct {
	ID        int       `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email,omitempty"`
	AvatarURL string    `json:"avatar_url"`
	CreatedAt time.Time `json:"created_at"`
}

// GetUserByID は表示用のユーザー情報（名前・アバター）を取得する
func GetUserByID(db *sql.DB, userID int) (*User, error) {
	var u User
	err := db.QueryRow(`
		SELECT id, username, avatar_url, created_at
		FROM users
		WHERE id = $1
	`, userID).Scan(&u.ID, &u.Username, &u.AvatarURL, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// GetUserByEmail はログイン用にパスワードハッシュ込みで取得する
func GetUserByEmail(db *sql.DB, email string) (*User, string, error) {
	var u User
	var hash string
	err := db.QueryRow(`
		SELECT id, username, email, avatar_url, password_hash, created_at
		FROM users
		WHERE email = $1
	`, email).Scan(&u.ID, &u.Username, &u.Email, &u.AvatarURL, &hash, &u.CreatedAt)
	if err != nil {
		return nil, "", err
	}
	return &u, hash, nil
}

// CreateUser は新規ユーザーを登録する
func CreateUser(db *sql.DB, username, email, passwordHash string) (*User, error) {
	var u User
	u.Username = username
	u.Email = email
	err := db.QueryRow(`
		INSERT INTO users (username, email, password_hash)
		VALUES ($1, $2, $3)
		RETURNING id, avatar_url, created_at
	`, username, email, passwordHash).Scan(&u.ID, &u.AvatarURL, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// GetUsers は自分以外の全ユーザーを返す（DM相手の選択用）
func GetUsers(db *sql.DB, excludeID int) ([]User, error) {
	rows, err := db.Query(`
		SELECT id, username, avatar_url, created_at
		FROM users
		WHERE id != $1
		ORDER BY username ASC
	`, excludeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]User, 0)
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.Username, &u.AvatarURL, &u.CreatedAt); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}
