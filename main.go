package main

import (
	"log"
	"net/http"
	"os"

	"github.com/gorilla/mux" // gorilla/muxパッケージをインポート
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors" // CORS設定を管理するrs/corsパッケージをインポート

	"backend/db"       // データベースを管理するパッケージ
	"backend/handlers" // HTTPリクエストのハンドラー関数を定義するパッケージ
)

func main() {
	db.Initialize()
	r := mux.NewRouter()

	// 🔐 認証
	r.HandleFunc("/signup", handlers.SignUp).Methods("POST")
	r.HandleFunc("/login", handlers.Login).Methods("POST")
	r.HandleFunc("/logout", handlers.Logout).Methods("POST")
	r.HandleFunc("/me", handlers.GetMe).Methods("GET")

	// 👤 ユーザー一覧
	r.HandleFunc("/users", handlers.GetUsers).Methods("GET")

	// 💬 メッセージ履歴（リアルタイム配信はWebSocket側）
	r.HandleFunc("/messages", handlers.GetMessages).Methods("GET")

	// 🔔 通知
	r.HandleFunc("/notifications", handlers.GetNotifications).Methods("GET")
	r.HandleFunc("/notifications/read", handlers.MarkNotificationsRead).Methods("POST")

	// 🌐 WebSocket
	r.HandleFunc("/ws", handlers.HandleWebSocket)

	// 📊 メトリクス
	r.Handle("/metrics", promhttp.Handler()).Methods("GET")

	// CORS設定
	origin := os.Getenv("CORS_ORIGIN")
	if origin == "" {
		origin = "http://localhost:3001"
	}
	handler := cors.New(cors.Options{
		AllowedOrigins:   []string{origin},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	}).Handler(r)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Println("✅ Server started at http://localhost:" + port)
	log.Fatal(http.ListenAndServe(":"+port, handler))
}
