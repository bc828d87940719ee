// File: app/app.go
package app

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"secure-banking-api/config"
	"secure-banking-api/db"
	"secure-banking-api/handler"
	"secure-banking-api/logger"
	"secure-banking-api/repository"
	"secure-banking-api/router"
	"secure-banking-api/service"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// App is the fully wired API. Tests build one around their own database.
type App struct {
	DB     *sql.DB
	Router http.Handler
	Users  *service.UserService
	Ledger *service.AccountService
	Tokens *service.TokenService
}

// New wires repositories, services and handlers. cache may be nil.
func New(cfg config.Config, database *sql.DB, cache service.ICacheClient) *App {
	userRepo := repository.NewUserRepository(database)
	accountRepo := repository.NewAccountRepository(database)
	transactionRepo := repository.NewTransactionRepository(database)

	hasher := service.NewPasswordHasher(cfg.Security.BcryptCost)
	tokens := service.NewTokenService(cfg.JWT.SecretKey, cfg.JWT.Issuer, cfg.JWT.TTL)
	userService := service.NewUserService(database, userRepo, accountRepo, hasher)
	accountService := service.NewAccountService(database, accountRepo, transactionRepo, userRepo, cache, cfg.Redis.TTL)

	r := router.NewRouter(router.Handlers{
		Users:    handler.NewUserHandler(userService, tokens),
		Accounts: handler.NewAccountHandler(userService, accountService),
		Health:   handler.NewHealthHandler(database),
		Verifier: tokens,
	}, cfg.CORS.AllowedOrigins)

	return &App{
		DB:     database,
		Router: r,
		Users:  userService,
		Ledger: accountService,
		Tokens: tokens,
	}
}

// Bootstrap loads .env and configuration from configPath, sets up logging and opens the
// database, migrating it when configured. The caller owns the returned connection.
func Bootstrap(configPath string) (*sql.DB, error) {
	logger.Init()
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.Log.WithError(err).Warn("Could not read .env file")
	}

	if err := config.LoadConfig(configPath); err != nil {
		return nil, err
	}
	if err := logger.SetLevel(config.AppConfig.Log.Level); err != nil {
		logger.Log.WithError(err).Warn("Invalid log level, keeping info")
	}
	logger.Log.Info("Configuration loaded successfully")

	database, err := db.Connect(config.AppConfig.Database)
	if err != nil {
		return nil, err
	}

	if config.AppConfig.Database.AutoMigrate {
		if err := db.Migrate(database); err != nil {
			database.Close()
			return nil, err
		}
	}
	return database, nil
}

func Run() {
	database, err := Bootstrap(".")
	if err != nil {
		logger.Log.Fatalf("Startup failed: %v", err)
	}
	defer database.Close()

	cfg := config.AppConfig

	// Only an untyped nil disables the cache; a nil *redis.Client would not.
	var cache service.ICacheClient
	if cfg.Redis.Enabled {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		rdb, err := db.ConnectRedis(ctx, cfg.Redis)
		cancel()
		if err != nil {
			logger.Log.WithError(err).Warn("Balance cache disabled")
		} else {
			defer rdb.Close()
			cache = rdb
		}
	}

	a := New(cfg, database, cache)

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           a.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Log.WithFields(logrus.Fields{
			"port":         cfg.Server.Port,
			"cache":        cache != nil,
			"cors_origins": cfg.CORS.AllowedOrigins,
		}).Info("Server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Log.Warn("Shutdown signal received. Starting graceful shutdown...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Errorf("Server forced to shutdown: %v", err)
		return
	}

	logger.Log.Info("Server exited properly")
}
