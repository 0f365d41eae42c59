package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"codecollab/internal/api"
	"codecollab/internal/auth"
	"codecollab/internal/config"
	"codecollab/internal/db"
	"codecollab/internal/repository"
	"codecollab/internal/services"
	"codecollab/internal/services/collaboration"
	"codecollab/internal/telemetry"
)

func main() {
	log.Println("🚀 Starting CodeCollab server...")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Failed to load config: %v", err)
	}

	// Initialize Jaeger tracing first so all operations are traced
	jaegerShutdown, err := telemetry.InitJaeger("codecollab", cfg.JaegerEndpoint)
	if err != nil {
		log.Printf("⚠️  Failed to initialize Jaeger: %v (continuing without tracing)", err)
		jaegerShutdown = func(ctx context.Context) error { return nil }
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := jaegerShutdown(ctx); err != nil {
			log.Printf("⚠️  Failed to shutdown Jaeger: %v", err)
		}
	}()

	// Initialize GORM database
	database, err := db.NewGorm(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to connect to database: %v", err)
	}
	defer database.Close()

	// Initialize repositories
	userRepo := repository.NewUserRepository(database.DB)
	projectRepo := repository.NewProjectRepository(database.DB)
	fileRepo := repository.NewFileRepository(database.DB)
	versionRepo := repository.NewVersionRepository(database.DB)
	activityRepo := repository.NewActivityRepository(database.DB)

	// Token verifier shared by REST middleware and the WebSocket handshake
	verifier := auth.NewVerifier(cfg.JWTSecret)

	// Access check shared by the editor endpoints and the relay
	accessService := services.NewAccessService(fileRepo, projectRepo)

	// Judge0 code-execution proxy
	executeService := services.NewExecuteService(cfg)

	// Live collaboration relay: room registry plus the join/edit/cursor
	// protocol over per-file rooms
	registry := collaboration.NewRegistry()
	relay := collaboration.NewRelay(registry, accessService, fileRepo, cfg.RelayWriteTimeout)
	wsHandler := collaboration.NewWebSocketHandler(relay, verifier)

	// Initialize handlers with dependency injection
	handler := api.NewHandler(
		userRepo,
		projectRepo,
		fileRepo,
		versionRepo,
		activityRepo,
		accessService,
		executeService,
		wsHandler,
		verifier,
		cfg.JWTTTL,
	)

	// Setup routes
	router := api.SetupRoutes(handler)

	// Configure HTTP server
	addr := fmt.Sprintf("%s:%s", cfg.ServerHost, cfg.ServerPort)
	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start HTTP server in a goroutine so shutdown signals can be handled
	go func() {
		log.Printf("🌐 Server listening on http://%s", addr)
		log.Printf("📚 API Endpoints:")
		log.Printf("   POST   /auth/register                - Create account")
		log.Printf("   POST   /auth/login                   - Login")
		log.Printf("   POST   /api/projects                 - Create project")
		log.Printf("   GET    /api/projects                 - List projects")
		log.Printf("   POST   /api/projects/:id/files       - Create file")
		log.Printf("   GET    /api/projects/:id/activity    - Activity feed")
		log.Printf("   GET    /api/projects/:id/versions    - Version history")
		log.Printf("   GET    /api/editor/files/:id         - File content")
		log.Printf("   POST   /api/execute                  - Run code")
		log.Printf("   WS     /ws/editor                    - Live collaboration")
		log.Println()

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("❌ Server error: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("\n🛑 Shutting down server...")

	// Give the server 30 seconds to finish existing requests
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("⚠️  Server forced to shutdown: %v", err)
	}

	log.Println("✓ Server shutdown complete")
}
