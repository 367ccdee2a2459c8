package main

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/sebuszqo/FinanceTracker/internal/auth"
	"github.com/sebuszqo/FinanceTracker/internal/finance/interfaces"
	"github.com/sebuszqo/FinanceTracker/internal/user"
)

type Response struct {
	Message string `json:"message"`
}

type healthChecker interface {
	Health(ctx context.Context) map[string]string
}

type Server struct {
	router      *http.ServeMux
	authHandler *auth.Handler
	userHandler *user.Handler
	authService auth.Service
	finance     interfaces.Handlers
	db          healthChecker
}

func NewServer(authHandler *auth.Handler, authService auth.Service, userHandler *user.Handler, finance interfaces.Handlers, db healthChecker) *Server {
	return &Server{
		authHandler: authHandler,
		userHandler: userHandler,
		authService: authService,
		finance:     finance,
		db:          db,
		router:      http.NewServeMux(),
	}
}

func notFoundHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusNotFound)
	json.NewEncoder(w).Encode(Response{Message: "Path not found"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	health := s.db.Health(r.Context())
	if health["status"] != "up" {
		interfaces.RespondJSON(w, http.StatusServiceUnavailable, map[string]interface{}{
			"status":   "unavailable",
			"database": health,
		})
		return
	}
	interfaces.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"status":   "ready",
		"database": health,
	})
}

func (s *Server) RegisterRoutes() {
	router := http.NewServeMux()
	protect := s.authService.JWTAccessTokenMiddleware()

	// Public routes
	router.HandleFunc("POST /api/auth/register", s.userHandler.HandleRegister)
	router.HandleFunc("POST /api/auth/login", s.authHandler.HandleLogin)
	router.HandleFunc("POST /api/auth/logout", s.authHandler.HandleLogout)
	router.HandleFunc("GET /api/auth/logout", s.authHandler.HandleLogout)
	router.HandleFunc("POST /api/auth/2fa/verify", s.authHandler.HandleVerifyTwoFactor)
	// /me validates the token itself so it can clear a stale cookie.
	router.HandleFunc("GET /api/auth/me", s.authHandler.HandleMe)
	router.HandleFunc("GET /api/ready", s.handleReady)

	// Protected routes
	router.Handle("POST /api/auth/2fa/setup", protect(http.HandlerFunc(s.authHandler.HandleSetupTwoFactor)))
	router.Handle("POST /api/auth/2fa/enable", protect(http.HandlerFunc(s.authHandler.HandleEnableTwoFactor)))
	router.Handle("POST /api/auth/2fa/disable", protect(http.HandlerFunc(s.authHandler.HandleDisableTwoFactor)))

	s.finance.RegisterRoutes(router, protect, interfaces.RespondError)

	router.HandleFunc("/", notFoundHandler)

	s.router = router
}
