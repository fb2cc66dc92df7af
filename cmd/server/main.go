package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"decryptrace/internal/cache"
	"decryptrace/internal/config"
	"decryptrace/internal/repository"
	"decryptrace/internal/service"
	"decryptrace/internal/transport/rest"
	"decryptrace/internal/transport/ws"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// @title Decrypt Race API
// @version 1.0
// @description Live decryption challenge: teams race to decode their message, first three correct answers win
// @host localhost:8080
// @BasePath /v1
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment")
	}
	cfg := config.Load()
	ctx := context.Background()

	// MongoDB connection
	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Fatal("Failed to connect to MongoDB:", err)
	}
	defer mongoClient.Disconnect(ctx)

	// Ping MongoDB
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := mongoClient.Ping(pingCtx, nil); err != nil {
		log.Fatal("Failed to ping MongoDB:", err)
	}
	log.Println("Connected to MongoDB")

	db := mongoClient.Database(cfg.MongoDB)
	if err := repository.EnsureIndexes(ctx, db); err != nil {
		log.Fatal("Failed to create indexes:", err)
	}

	// Redis connection
	rdb := redis.NewClient(&redis.Options{
		Addr: cfg.RedisAddr,
	})
	defer rdb.Close()

	if _, err := rdb.Ping(ctx).Result(); err != nil {
		log.Fatal("Failed to ping Redis:", err)
	}
	log.Println("Connected to Redis")

	// Initialize WebSocket hub and the cross-instance relay
	wsHub := ws.NewHub()
	relay := ws.NewRelay(wsHub, cache.NewEventBus(rdb))
	relayCtx, stopRelay := context.WithCancel(ctx)
	defer stopRelay()
	go relay.Run(relayCtx)
	log.Println("WebSocket hub started")

	// Initialize repositories
	stateRepo := repository.NewGameStateRepo(db)
	teamRepo := repository.NewTeamRepo(db)
	messageRepo := repository.NewMessageRepo(db)
	submissionRepo := repository.NewSubmissionRepo(db)
	winnerRepo := repository.NewWinnerRepo(db)

	// Initialize caches
	stateCache := cache.NewGameStateCache(rdb)
	assignments := cache.NewAssignmentCache(rdb)
	submitLimiter := cache.NewRateLimiter(rdb, cfg.SubmitRatePerMinute, time.Minute)
	enrollLimiter := cache.NewRateLimiter(rdb, cfg.EnrollRatePerMinute, time.Minute)

	// Initialize services
	authSvc, err := service.NewAuthService(cfg.Auth)
	if err != nil {
		log.Fatal("Failed to initialize auth:", err)
	}
	gameSvc := service.NewGameService(
		stateRepo, winnerRepo, submissionRepo, messageRepo,
		stateCache, assignments,
		cfg.Game.DefaultDuration, cfg.Game.TimerDuration,
	)
	assignmentSvc := service.NewAssignmentService(messageRepo, assignments)
	submissionSvc := service.NewSubmissionService(gameSvc, messageRepo, submissionRepo, winnerRepo, teamRepo)
	teamSvc := service.NewTeamService(teamRepo, submissionRepo, assignmentSvc, authSvc, cfg.Auth.AdminTeams)

	// Inject broadcaster (relay implements service.Broadcaster)
	gameSvc.SetBroadcaster(relay)
	assignmentSvc.SetBroadcaster(relay)
	submissionSvc.SetBroadcaster(relay)
	teamSvc.SetBroadcaster(relay)

	seeded, err := assignmentSvc.EnsurePool(ctx)
	if err != nil {
		log.Fatal("Failed to seed message pool:", err)
	}
	if seeded {
		log.Println("Seeded empty message pool")
	}

	state, err := gameSvc.Current(ctx)
	if err != nil {
		log.Fatal("Failed to load game state:", err)
	}
	log.Printf("Game state: phase=%s version=%d", state.Phase(), state.Version)

	// Create router with container
	container := &rest.Container{
		Config:            cfg,
		AuthService:       authSvc,
		GameService:       gameSvc,
		AssignmentService: assignmentSvc,
		SubmissionService: submissionSvc,
		TeamService:       teamSvc,
		SubmitLimiter:     submitLimiter,
		EnrollLimiter:     enrollLimiter,
		WSHub:             wsHub,
	}

	router := rest.NewRouter(container)

	// Start server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Printf("Server starting on :%s", cfg.Port)
		log.Printf("Admin auth: username=%s", cfg.Auth.AdminUsername)
		log.Println("Endpoints:")
		log.Println("  POST /v1/auth/login")
		log.Println("  POST /v1/teams/enroll")
		log.Println("  GET  /v1/teams/{teamName}/status")
		log.Println("  GET  /v1/game-state")
		log.Println("  GET  /v1/winners")
		log.Println("  GET  /v1/encryption")
		log.Println("  POST /v1/encryption/submit")
		log.Println("  POST /v1/admin/game/{start,start-timer,stop,pause,resume,reset-timer,reset}")
		log.Println("  GET  /v1/admin/teams, POST /v1/admin/teams/{teamName}/{block,unblock}")
		log.Println("  GET  /v1/admin/messages, POST /v1/admin/messages/{id}/activate")
		log.Println("  GET  /v1/admin/join-qr")
		log.Println("  WS   /v1/ws")

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("ListenAndServe:", err)
		}
	}()

	// Wait for interrupt
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	stopRelay()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}
	wsHub.Close()

	log.Println("Server exited")
}
