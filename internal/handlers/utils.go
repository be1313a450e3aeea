// internal/handlers/utils.go
package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/jason-s-yu/solitaire/internal/auth"
)

const authCookie = "auth_token"

// tokenFromRequest reads the bearer token, falling back to the auth cookie.
func tokenFromRequest(r *http.Request) string {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	if c, err := r.Cookie(authCookie); err == nil {
		return c.Value
	}
	return ""
}

func setAuthCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     authCookie,
		Value:    token,
		HttpOnly: true,
		Path:     "/",
		MaxAge:   int(auth.TokenLifetime / time.Second),
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
