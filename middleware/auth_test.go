package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestTokenRoundTrip(t *testing.T) {
	token, err := GenerateToken(42)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	userID, err := ParseToken(token)
	if err != nil {
		t.Fatalf("ParseToken: %v", err)
	}
	if userID != 42 {
		t.Errorf("userID = %d, want 42", userID)
	}
}

func TestParseInvalidToken(t *testing.T) {
	if _, err := ParseToken("not-a-token"); err == nil {
		t.Error("不正なトークンが通ってしまった")
	}
}

func TestValidateTokenFromCookie(t *testing.T) {
	token, _ := GenerateToken(7)
	r := httptest.NewRequest(http.MethodGet, "/me", nil)
	r.AddCookie(&http.Cookie{Name: "token", Value: token})

	userID, err := ValidateToken(r)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if userID != 7 {
		t.Errorf("userID = %d, want 7", userID)
	}
}

func TestValidateTokenFromAuthorizationHeader(t *testing.T) {
	token, _ := GenerateToken(7)
	r := httptest.NewRequest(http.MethodGet, "/me", nil)
	r.Header.Set("Authorization", "Bearer "+token)

	if userID, err := ValidateToken(r); err != nil || userID != 7 {
		t.Errorf("userID = %d, err = %v", userID, err)
	}
}

// WebSocketハンドシェイク用：クエリパラメータからも読める
func TestValidateTokenFromQuery(t *testing.T) {
	token, _ := GenerateToken(7)
	r := httptest.NewRequest(http.MethodGet, "/ws?token="+token, nil)

	if userID, err := ValidateToken(r); err != nil || userID != 7 {
		t.Errorf("userID = %d, err = %v", userID, err)
	}
}

func TestValidateTokenMissing(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/me", nil)
	if _, err := ValidateToken(r); err == nil {
		t.Error("トークンなしのリクエストが通ってしまった")
	}
}
