package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/weatherlookup/backend/internal/config"
	"github.com/weatherlookup/backend/internal/delivery/http"
	"github.com/weatherlookup/backend/internal/repository/postgres"
	"github.com/weatherlookup/backend/internal/service"
)

func main() {
	cfg := config.Load()

	if cfg.OpenWeatherAPIKey == "" {
		log.Println("Warning: OPENWEATHER_API_KEY is not set, lookups will fail")
	}

	// Lookup log storage
	var repo service.LookupRepository
	pool := connectDatabase(cfg.DatabaseURL)
	if pool != nil {
		defer pool.Close()
		pgRepo := postgres.NewPostgresRepository(pool)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := pgRepo.Migrate(ctx); err != nil {
			log.Printf("Warning: %v", err)
		}
		cancel()
		repo = pgRepo
	} else {
		repo = postgres.NewMockRepository()
	}

	// Dependency Injection: Services
	weatherSvc := service.NewWeatherService(cfg.OpenWeatherAPIKey, cfg.OpenWeatherBaseURL, cfg.OpenWeatherTimeout)
	lookupLog := service.NewLookupLog(repo)
	registry := service.NewSessionRegistry(weatherSvc, lookupLog, cfg.SessionTTL, cfg.MaxSessions)

	janitorCtx, stopJanitor := context.WithCancel(context.Background())
	defer stopJanitor()
	go registry.Run(janitorCtx, time.Minute)

	// Fiber App
	app := fiber.New(fiber.Config{
		AppName:      "Weather Lookup v1.0",
		Immutable:    true,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 2*cfg.OpenWeatherTimeout + 5*time.Second,
		ErrorHandler: http.ErrorHandler,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(requestid.New(requestid.Config{
		Generator: uuid.NewString,
	}))
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${locals:requestid} ${status} - ${method} ${path} (${latency})\n",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept",
	}))

	// Routes
	http.SetupRoutes(app, registry, lookupLog, cfg.SessionTTL)

	// Graceful shutdown
	go func() {
		log.Printf("Server starting on :%s (%s)", cfg.Port, cfg.Env)
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	if err := app.ShutdownWithTimeout(5 * time.Second); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}
	lookupLog.WaitBackground()
	log.Println("Server exited gracefully")
}

// connectDatabase returns nil when no database is configured or reachable
func connectDatabase(databaseURL string) *pgxpool.Pool {
	if databaseURL == "" {
		log.Println("DATABASE_URL not set, keeping lookup log in memory")
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		log.Printf("Warning: Could not connect to database: %v", err)
		log.Println("Keeping lookup log in memory")
		return nil
	}
	if err := pool.Ping(ctx); err != nil {
		log.Printf("Warning: Database not reachable: %v", err)
		log.Println("Keeping lookup log in memory")
		pool.Close()
		return nil
	}

	log.Println("Connected to PostgreSQL")
	return pool
}
