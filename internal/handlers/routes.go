// internal/handlers/routes.go
package handlers

import (
	"net/http"

	"github.com/jason-s-yu/solitaire/internal/middleware"
)

// Routes mounts every endpoint behind the request logger.
func (srv *SessionServer) Routes() http.Handler {
	mux := http.NewServeMux()

	// player endpoints
	mux.HandleFunc("POST /player/create", srv.CreatePlayerHandler)
	mux.HandleFunc("POST /player/login", srv.LoginHandler)
	mux.HandleFunc("POST /player/claim", srv.ClaimPlayerHandler)

	// session endpoints
	mux.HandleFunc("POST /session/create", srv.CreateSessionHandler)
	mux.HandleFunc("POST /session/resume", srv.ResumeSessionHandler)
	mux.HandleFunc("GET /session/list", srv.ListSessionsHandler)
	mux.HandleFunc("GET /session/stats", srv.StatsHandler)

	// session websocket
	mux.HandleFunc("GET /session/ws/{id}", SessionWSHandler(srv))

	return middleware.LogMiddleware(srv.Logger)(mux)
}
