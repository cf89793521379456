package main

import (
	"context"
	"errors"
	"io/fs"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"altiora-api/config"
	"altiora-api/internal/app"
	"altiora-api/internal/database"
	"altiora-api/internal/notify"
	"altiora-api/internal/server"
	"altiora-api/internal/storage/sqlstore"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
)

func main() {
	// A missing .env is normal outside local development.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("WARN: Failed to load .env file: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}

	conn, err := database.Open(cfg.DB)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer conn.Close()

	migrateCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	err = database.Migrate(migrateCtx, conn.DB, conn.Dialect)
	cancel()
	if err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	store, err := sqlstore.New(conn.DB, conn.Dialect)
	if err != nil {
		log.Fatalf("Failed to create store: %v", err)
	}

	// --- Initialize Redis Client ---
	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient, err = database.NewRedisClient(cfg.Redis)
		if err != nil {
			log.Printf("WARN: %v. Continuing without Redis.", err)
			redisClient = nil
		} else {
			defer redisClient.Close()
		}
	} else {
		log.Println("Redis address not configured, skipping initialization.")
	}

	// --- Initialize Notifier ---
	var notifier notify.Notifier = notify.Nop{}
	if cfg.Telegram.Token != "" && cfg.Telegram.ChatID != 0 {
		telegram, err := notify.NewTelegramNotifier(cfg.Telegram)
		if err != nil {
			log.Printf("WARN: Failed to initialize Telegram notifier: %v. Continuing without notifications.", err)
		} else {
			notifier = telegram
			log.Println("Telegram notifier initialized")
		}
	} else {
		log.Println("Telegram configuration missing (token or chat id), notifications disabled.")
	}

	application := app.New(cfg, store, redisClient, notifier)

	srv, err := server.NewServer(application)
	if err != nil {
		log.Fatalf("Failed to build server: %v", err)
	}

	// --- Graceful Shutdown Handling ---
	go func() {
		if err := srv.Start(); err != nil {
			log.Fatalf("Server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit // Block until a signal is received

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shut down: %v", err)
	}

	log.Println("Application gracefully stopped.")
}
