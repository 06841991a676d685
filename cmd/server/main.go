package main // Entry point package

import (
	"context" // bounded startup maintenance calls
	"log"     // Logging library
	"time"

	"github.com/joho/godotenv"    // .env loader for local development
	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/iliyamo/event-lottery/internal/config"     // Internal config loader
	"github.com/iliyamo/event-lottery/internal/database"   // MySQL connection pool
	"github.com/iliyamo/event-lottery/internal/handler"    // HTTP handlers
	"github.com/iliyamo/event-lottery/internal/middleware" // rate limiting and response cache
	"github.com/iliyamo/event-lottery/internal/queue"      // RabbitMQ lifecycle consumer
	"github.com/iliyamo/event-lottery/internal/repository" // DB repositories
	"github.com/iliyamo/event-lottery/internal/router"     // Internal router setup
	"github.com/iliyamo/event-lottery/internal/utils"      // single-flight guard
	"github.com/iliyamo/event-lottery/internal/worker"     // decision deadline reminders
)

func main() {
	// .env is optional; in production configuration arrives via real
	// environment variables.
	_ = godotenv.Load()

	cfg := config.Load() // Load environment config

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	rdb := config.NewRedisClient() // nil-safe: middleware degrades without Redis

	// Repositories.
	userRepo := repository.NewUserRepo(db)
	tokenRepo := repository.NewTokenRepo(db)
	eventRepo := repository.NewEventRepo(db)
	waitlistRepo := repository.NewWaitlistRepo(db)
	notificationRepo := repository.NewNotificationRepo(db)

	// Clear out long-dead refresh tokens on boot so the table does not grow
	// without bound between deployments.
	{
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if n, err := tokenRepo.PurgeExpired(ctx, 24*time.Hour); err != nil {
			log.Printf("token purge: %v", err)
		} else if n > 0 {
			log.Printf("token purge: removed %d expired refresh tokens", n)
		}
		cancel()
	}

	// The consumer turns committed draw results into entrant notifications.
	// It reconnects forever on its own, so it runs detached from startup.
	go func() {
		if err := queue.StartLotteryConsumer(notificationRepo, waitlistRepo); err != nil {
			log.Printf("lottery-consumer: %v", err)
		}
	}()

	// Reminder sweep for entrants sitting on an unanswered selection.
	if err := worker.NewDeadlineReminder(eventRepo, waitlistRepo, notificationRepo).Start(); err != nil {
		log.Printf("deadline-reminder: %v", err)
	}

	// Handlers.
	flights := utils.NewFlightGuard()
	authHandler := handler.NewAuthHandler(cfg, userRepo, tokenRepo)
	publicHandler := handler.NewPublicHandler(eventRepo, waitlistRepo)
	entrantHandler := handler.NewEntrantHandler(eventRepo, waitlistRepo, userRepo, notificationRepo)
	notificationHandler := handler.NewNotificationHandler(notificationRepo, waitlistRepo, eventRepo, flights)
	organizerEvents := handler.NewOrganizerEventHandler(eventRepo, waitlistRepo)
	organizerDraws := handler.NewOrganizerDrawHandler(eventRepo, waitlistRepo, notificationRepo)
	organizerEntrants := handler.NewOrganizerEntrantHandler(eventRepo, waitlistRepo)
	adminHandler := handler.NewAdminHandler(eventRepo, userRepo, tokenRepo)

	e := echo.New() // Create Echo instance

	// Global middleware: token-bucket rate limiting first, then the
	// response cache for public reads.  Both no-op when Redis is absent or
	// disabled through configuration.
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))
	e.Use(middleware.NewRedisCache(config.LoadCacheConfig(), rdb))

	// Routes.
	router.RegisterRoutes(e)
	router.RegisterAuth(e, authHandler, cfg.JWTSecret)
	router.RegisterPublic(e, publicHandler, rdb)
	router.RegisterEntrant(e, entrantHandler, notificationHandler, rdb, cfg.JWTSecret)
	router.RegisterOrganizer(e, organizerEvents, organizerDraws, organizerEntrants, cfg.JWTSecret)
	router.RegisterAdmin(e, adminHandler, cfg.JWTSecret)

	addr := ":" + cfg.Port                                // Address string with port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env) // Print startup info

	if err := e.Start(addr); err != nil { // Start HTTP server
		log.Fatal(err) // Log and exit if server fails
	}
}
