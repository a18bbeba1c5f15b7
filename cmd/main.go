package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"meedi8/backend/internal/api/handler"
	"meedi8/backend/internal/mainroom"
	"meedi8/backend/internal/models"
	"meedi8/backend/internal/notify"
	"meedi8/backend/internal/roomflow"
	"meedi8/backend/internal/storage"
)

func env(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func setupDependencies() (*gorm.DB, *redis.Client) {
	// 1. PostgreSQL
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		env("DB_HOST", "localhost"),
		env("DB_USER", "user"),
		env("DB_PASSWORD", "password"),
		env("DB_NAME", "meedi8db"),
		env("DB_PORT", "5432"),
	)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("Failed to connect PostgreSQL: %v", err)
	}

	// 2. Redis
	rdb := redis.NewClient(&redis.Options{
		Addr:     env("REDIS_ADDR", "localhost:6379"),
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       0,
	})
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Fatalf("Failed to connect Redis: %v", err)
	}

	// 3. Migrations
	err = db.AutoMigrate(
		&models.User{},
		&models.Room{},
		&models.RoomMessage{},
	)
	if err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	log.Println("Database and Redis connections established, migrations complete.")
	return db, rdb
}

func main() {
	log.Println("Starting Meedi8 Backend...")

	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Error loading .env file")
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		log.Fatal("JWT_SECRET is not set")
	}

	// 1. Dependencies
	db, rdb := setupDependencies()
	s := storage.NewStorageService(db, rdb)

	// 2. Main-room hub and phase flow
	hub := mainroom.NewHub(s)
	flow := roomflow.NewService(s)
	hub.StartPubSubListener()
	go hub.Run()

	// 3. Telegram notifier, only when a bot token is configured
	if botToken := os.Getenv("TELEGRAM_BOT_TOKEN"); botToken != "" {
		notifier, err := notify.NewService(botToken, s)
		if err != nil {
			log.Fatalf("Failed to start telegram notifier: %v", err)
		}
		go notifier.Run(context.Background())
	} else {
		log.Println("TELEGRAM_BOT_TOKEN not set, notifications disabled")
	}

	// 4. Gin routing
	r := gin.Default()
	h := handler.NewHandler(hub, s, flow, []byte(jwtSecret))

	r.POST("/auth/signup", h.Signup)
	r.POST("/auth/login", h.Login)
	r.GET("/join/:inviteToken", h.JoinPreview)
	// Authenticates itself so the token query parameter works on upgrades.
	r.GET("/ws/rooms/:roomId", h.ServeMainRoom)

	authed := r.Group("/")
	authed.Use(h.AuthRequired())
	{
		authed.GET("/auth/me", h.Profile)
		authed.POST("/rooms", h.CreateRoom)
		authed.GET("/rooms", h.ListRooms)
		authed.GET("/rooms/:roomId", h.GetRoom)
		authed.GET("/rooms/:roomId/lobby", h.GetLobby)
		authed.DELETE("/rooms/:roomId", h.DeleteRoom)
		authed.POST("/rooms/:roomId/advance", h.Advance)
		authed.GET("/rooms/:roomId/transcript", h.GetTranscript)
		authed.POST("/join/:inviteToken", h.Join)
	}

	server := &http.Server{
		Addr:           ":" + env("PORT", "8080"),
		Handler:        r,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	log.Fatal(server.ListenAndServe())
}
