package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"member_portal/internal/compute"
	"member_portal/internal/config"
	"member_portal/internal/handler"
	"member_portal/internal/logger"
	"member_portal/internal/middleware"
	"member_portal/internal/repository"
	"member_portal/internal/service"
	"member_portal/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found or error loading, relying on environment variables")
	}

	// --- Configuration ---
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logg, err := logger.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = logg.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- User Store ---
	var (
		userRepo repository.UserRepository
		health   handler.Pinger
	)
	switch cfg.StoreDriver {
	case config.StoreMemory:
		logg.Warn("using in-memory user store; data is lost on restart")
		userRepo = repository.NewMemoryUserRepository()
	default:
		dbPool, err := config.ConnectDB(ctx, cfg.DB, logg)
		if err != nil {
			logg.Fatal("failed to connect to database", zap.Error(err))
		}
		defer dbPool.Close()

		if err := config.Migrate(ctx, dbPool, logg); err != nil {
			logg.Fatal("failed to migrate database", zap.Error(err))
		}
		userRepo = repository.NewUserRepository(dbPool)
		health = dbPool
	}

	// --- Initialize Utilities ---
	jwtUtil := utils.NewJWTUtil(cfg.JWTSecret, cfg.JWTExpiration)
	computeClient, err := compute.NewClient(compute.Config{
		BaseURL:   cfg.ComputeURL,
		Timeout:   cfg.ComputeTimeout,
		RateLimit: cfg.ComputeRateLimit,
		Burst:     cfg.ComputeBurst,
	})
	if err != nil {
		logg.Fatal("failed to create compute client", zap.Error(err))
	}

	// --- Initialize Services ---
	authService := service.NewAuthService(userRepo, jwtUtil, cfg.BcryptCost, logg)
	userService := service.NewUserService(userRepo, logg)
	apiService := service.NewAPIService(computeClient, userService, logg)

	if cfg.InitialAdminEmail != "" {
		if err := userService.BootstrapAdmin(ctx, cfg.InitialAdminEmail); err != nil {
			logg.Fatal("failed to bootstrap initial admin", zap.Error(err))
		}
	}

	// --- Initialize Handlers ---
	cookie := handler.CookieConfig{Name: cfg.CookieName, TTL: jwtUtil.TTL(), Secure: cfg.CookieSecure}
	authHandler := handler.NewAuthHandler(authService, userService, cookie, logg)
	memberHandler := handler.NewMemberHandler(userService, apiService, logg)
	adminHandler := handler.NewAdminHandler(userService, logg)

	// --- Setup Gin Router ---
	gin.SetMode(gin.ReleaseMode)
	router := handler.NewRouter(handler.RouterConfig{
		Log:        logg,
		Authn:      authService,
		CookieName: cfg.CookieName,
		Health:     health,
	}, handler.Routes(authHandler, memberHandler, adminHandler))

	// --- Start Server ---
	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           middleware.MethodOverride(router),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logg.Info("server starting", zap.String("port", cfg.ServerPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Fatal("listen failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	<-ctx.Done()
	logg.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logg.Error("server forced to shutdown", zap.Error(err))
	}

	logg.Info("server exiting")
}
