package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/patrickmn/go-cache"

	"hvac-dispatch-backend/config"
	"hvac-dispatch-backend/internal/api"
	"hvac-dispatch-backend/internal/db"
	"hvac-dispatch-backend/internal/holiday"
	"hvac-dispatch-backend/internal/kanban"
	"hvac-dispatch-backend/internal/notification"
	"hvac-dispatch-backend/internal/schedule"
	"hvac-dispatch-backend/internal/store"
)

func main() {
	// Setup logger
	logger := log.New(os.Stdout, "dispatch-backend ", log.LstdFlags)

	// Load configuration
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./config/config.yaml" // Default path for local development
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Fatalf("failed to load configuration from %s: %v", configPath, err)
	}
	logger.Printf("configuration loaded successfully from %s", configPath)

	// Check for VAPID keys
	if cfg.Push.PublicKey == "" || cfg.Push.PrivateKey == "" {
		logger.Fatalf("VAPID keys must be configured. Please generate them and add them to your config file.")
	}

	webpushOptions := webpush.Options{
		VAPIDPublicKey:  cfg.Push.PublicKey,
		VAPIDPrivateKey: cfg.Push.PrivateKey,
		Subscriber:      cfg.Push.Subject,
		TTL:             cfg.Push.TTL,
	}

	// Initialize database
	gormDB, err := db.Init(&cfg.Database)
	if err != nil {
		logger.Fatalf("failed to initialize database: %v", err)
	}
	logger.Println("database initialized successfully")

	// Create a context that can be cancelled
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	appStore := store.NewGormStore(gormDB)
	logger.Println("data store initialized")

	// Notification worker pool for dispatch-change pushes
	workerPool := notification.NewWorkerPool(cfg.WorkerPool.Size, gormDB, &webpushOptions)
	workerPool.Start(ctx)

	// Holiday feed client with its per-year cache (populate on first miss,
	// never expire)
	holidayCache := cache.New(cache.NoExpiration, 0)
	holidaySvc := holiday.NewService(&cfg.Holiday, holidayCache)

	// Scheduling core
	projector := schedule.NewProjector(cfg.Scheduling.DefaultDurationMinutes)
	detector := schedule.NewDetector(appStore, cfg.Scheduling.DefaultStartTime, cfg.Scheduling.DefaultDurationMinutes)
	rescheduler := schedule.NewRescheduler(appStore, detector, workerPool)

	// Kanban board sessions
	sessionTTL := time.Duration(cfg.Scheduling.BoardSessionTTLMinutes) * time.Minute
	boardSessions := cache.New(sessionTTL, 2*sessionTTL)
	boards := kanban.NewManager(appStore, kanban.LogNotifier{}, workerPool, boardSessions, cfg.Scheduling.SettleDelay, cfg.Scheduling.BoardPageSize)

	// Initialize router
	handler := api.NewHandler(appStore, holidaySvc, projector, detector, rescheduler, boards, &webpushOptions, &cfg.Scheduling)
	router := api.NewRouter(handler, &cfg.Server)
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	// Start the server in a goroutine
	go func() {
		logger.Printf("HTTP server starting on port %d", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("HTTP server ListenAndServe: %v", err)
		}
	}()

	// Setup signal handling for graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	// Block until a signal is received.
	<-stop
	logger.Println("Shutdown signal received, stopping services...")

	// Create a deadline to wait for.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Fatalf("HTTP server Shutdown: %v", err)
	}

	logger.Println("Server gracefully stopped")
}
