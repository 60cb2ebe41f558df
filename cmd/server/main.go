package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"auctionhouse-backend/internal/clock"
	"auctionhouse-backend/internal/config"
	"auctionhouse-backend/internal/database"
	"auctionhouse-backend/internal/handler"
	"auctionhouse-backend/internal/middleware"
	"auctionhouse-backend/internal/repository"
	"auctionhouse-backend/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

func main() {
	cfg := config.Load()

	// Database
	db, err := database.NewPool(context.Background(), cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := database.RunMigrations(context.Background(), db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Migrations applied successfully")

	// Repositories
	listingRepo := repository.NewListingRepository(db)
	bidRepo := repository.NewBidRepository(db)

	// Event publishing (fire-and-forget; falls back to log-only)
	var events service.EventPublisher = service.NewLogPublisher()
	if cfg.NATSURL != "" {
		natsPub, err := service.NewNATSPublisher(cfg.NATSURL)
		if err != nil {
			log.Fatalf("Failed to connect to NATS: %v", err)
		}
		defer natsPub.Close()
		events = natsPub
	}

	// Status cache (optional)
	var cache service.StatusCache = service.NoopCache{}
	if cfg.RedisAddr != "" {
		redisCache, err := service.NewRedisStatusCache(
			cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB,
			time.Duration(cfg.StatusCacheTTLSecs)*time.Second,
		)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer redisCache.Close()
		cache = redisCache
	}

	// Services
	feedHub := service.NewFeedHub()
	auctionSvc := service.NewAuctionService(listingRepo, bidRepo, clock.System(), events, cache, feedHub)
	listingSvc := service.NewListingService(listingRepo, clock.System())

	// Fiber app
	app := fiber.New(fiber.Config{
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  30 * time.Second,
		BodyLimit:    1 * 1024 * 1024, // 1MB
	})

	app.Use(recover.New())
	app.Use(middleware.Logger())
	app.Use(middleware.CORS())

	// Health
	healthH := handler.NewHealthHandler(db)
	app.Get("/health", healthH.Health)
	app.Get("/ready", healthH.Ready)

	// API v1
	v1 := app.Group("/api/v1")

	// Public reads
	auctionH := handler.NewAuctionHandler(auctionSvc)
	listingH := handler.NewListingHandler(listingSvc)
	v1.Get("/listings/:id", listingH.GetByID)
	v1.Get("/listings/:id/auction", auctionH.Status)
	v1.Get("/listings/:id/bids", auctionH.History)

	// JWT-protected mutations
	protected := v1.Group("", middleware.Auth(cfg.JWTSecret))
	protected.Post("/listings", listingH.Create)
	protected.Post("/listings/:id/bids", middleware.RateLimit(30, time.Minute), auctionH.PlaceBid)
	protected.Post("/listings/:id/close", auctionH.Close)

	// WebSocket bid feed
	wsH := handler.NewWSHandler(feedHub)
	app.Get("/ws", wsH.Upgrade)

	// Background workers
	go feedHub.Run()
	sweeper := service.NewSweeper(auctionSvc, time.Duration(cfg.SweepIntervalSecs)*time.Second)
	go sweeper.Run()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Fatalf("Server error: %v", err)
		}
	}()

	log.Printf("Auctionhouse backend running on :%s (%s)", cfg.Port, cfg.Env)

	<-quit
	log.Println("Shutting down...")
	_ = app.ShutdownWithTimeout(5 * time.Second)
	sweeper.Shutdown()
	feedHub.Shutdown()
	log.Println("Server stopped")
}
