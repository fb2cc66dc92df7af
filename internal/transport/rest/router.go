package rest

import (
	"net/http"
	"os"

	"decryptrace/internal/cache"
	"decryptrace/internal/config"
	"decryptrace/internal/service"
	"decryptrace/internal/transport/rest/handler"
	"decryptrace/internal/transport/rest/middleware"
	"decryptrace/internal/transport/ws"

	"github.com/gorilla/mux"
)

// Container holds all dependencies for the router
type Container struct {
	Config            *config.Config
	AuthService       *service.AuthService
	GameService       *service.GameService
	AssignmentService *service.AssignmentService
	SubmissionService *service.SubmissionService
	TeamService       *service.TeamService
	SubmitLimiter     cache.RateLimiter
	EnrollLimiter     cache.RateLimiter
	WSHub             *ws.Hub
}

// NewRouter creates the API router with all endpoints
func NewRouter(c *Container) http.Handler {
	r := mux.NewRouter()

	// Initialize handlers
	authHandler := handler.NewAuthHandler(c.AuthService)
	teamHandler := handler.NewTeamHandler(c.TeamService)
	gameHandler := handler.NewGameHandler(c.GameService, c.AssignmentService, c.SubmissionService)
	adminHandler := handler.NewAdminHandler(c.GameService, c.TeamService, c.AssignmentService, c.Config.PublicURL)
	wsHandler := ws.NewHandler(c.WSHub, c.AuthService, c.GameService)

	// Initialize middleware
	authMW := middleware.NewAuthMiddleware(c.AuthService)

	// CORS middleware (apply first)
	r.Use(corsMiddleware)

	// API v1 routes
	v1 := r.PathPrefix("/v1").Subrouter()

	// Public routes
	v1.HandleFunc("/auth/login", authHandler.Login).Methods("POST", "OPTIONS")
	v1.HandleFunc("/game-state", gameHandler.State).Methods("GET", "OPTIONS")
	v1.HandleFunc("/winners", gameHandler.Winners).Methods("GET", "OPTIONS")
	v1.HandleFunc("/teams/{teamName}/status", teamHandler.Status).Methods("GET", "OPTIONS")

	enrollRoutes := v1.NewRoute().Subrouter()
	enrollRoutes.Use(middleware.RateLimit(c.EnrollLimiter, "enroll"))
	enrollRoutes.HandleFunc("/teams/enroll", teamHandler.Enroll).Methods("POST", "OPTIONS")

	// WebSocket route (token in query param is optional)
	v1.HandleFunc("/ws", wsHandler.Connect).Methods("GET")

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	// Team routes (require team auth)
	teamRoutes := v1.NewRoute().Subrouter()
	teamRoutes.Use(authMW.RequireTeam)

	teamRoutes.HandleFunc("/encryption", gameHandler.Challenge).Methods("GET", "OPTIONS")

	submitRoutes := teamRoutes.NewRoute().Subrouter()
	submitRoutes.Use(middleware.RateLimit(c.SubmitLimiter, "submit"))
	submitRoutes.HandleFunc("/encryption/submit", gameHandler.Submit).Methods("POST", "OPTIONS")

	// Admin routes (require admin auth)
	adminRoutes := v1.PathPrefix("/admin").Subrouter()
	adminRoutes.Use(authMW.RequireAdmin)

	adminRoutes.HandleFunc("/game/start", adminHandler.Start).Methods("POST", "OPTIONS")
	adminRoutes.HandleFunc("/game/start-timer", adminHandler.StartWithTimer).Methods("POST", "OPTIONS")
	adminRoutes.HandleFunc("/game/stop", adminHandler.Stop).Methods("POST", "OPTIONS")
	adminRoutes.HandleFunc("/game/pause", adminHandler.Pause).Methods("POST", "OPTIONS")
	adminRoutes.HandleFunc("/game/resume", adminHandler.Resume).Methods("POST", "OPTIONS")
	adminRoutes.HandleFunc("/game/reset-timer", adminHandler.ResetTimer).Methods("POST", "OPTIONS")
	adminRoutes.HandleFunc("/game/reset", adminHandler.Reset).Methods("POST", "OPTIONS")
	adminRoutes.HandleFunc("/teams", adminHandler.Teams).Methods("GET", "OPTIONS")
	adminRoutes.HandleFunc("/teams/{teamName}/block", adminHandler.Block).Methods("POST", "OPTIONS")
	adminRoutes.HandleFunc("/teams/{teamName}/unblock", adminHandler.Unblock).Methods("POST", "OPTIONS")
	adminRoutes.HandleFunc("/teams/{teamName}", adminHandler.DeleteTeam).Methods("DELETE", "OPTIONS")
	adminRoutes.HandleFunc("/messages", adminHandler.Messages).Methods("GET", "OPTIONS")
	adminRoutes.HandleFunc("/messages/{id}/activate", adminHandler.ActivateMessage).Methods("POST", "OPTIONS")
	adminRoutes.HandleFunc("/join-qr", adminHandler.JoinQR).Methods("GET", "OPTIONS")

	return r
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowedOrigins := os.Getenv("CORS_ALLOWED_ORIGINS")
		if allowedOrigins == "" {
			allowedOrigins = "*"
		}

		allowedMethods := os.Getenv("CORS_ALLOWED_METHODS")
		if allowedMethods == "" {
			allowedMethods = "GET, POST, PUT, DELETE, OPTIONS"
		}

		allowedHeaders := os.Getenv("CORS_ALLOWED_HEADERS")
		if allowedHeaders == "" {
			allowedHeaders = "Content-Type, Authorization"
		}

		w.Header().Set("Access-Control-Allow-Origin", allowedOrigins)
		w.Header().Set("Access-Control-Allow-Methods", allowedMethods)
		w.Header().Set("Access-Control-Allow-Headers", allowedHeaders)

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
