package main // Entry point package

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/tickzi/tickzi/internal/cache"
	"github.com/tickzi/tickzi/internal/config"
	"github.com/tickzi/tickzi/internal/database"
	"github.com/tickzi/tickzi/internal/handler"
	"github.com/tickzi/tickzi/internal/middleware"
	"github.com/tickzi/tickzi/internal/queue"
	"github.com/tickzi/tickzi/internal/repository"
	"github.com/tickzi/tickzi/internal/router"
	"github.com/tickzi/tickzi/internal/service"
)

func main() {
	// Load .env when present; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Redis is optional: a nil client disables caching and rate limiting
	// but the API keeps serving from the database.
	rdb := config.NewRedisClient()
	store := cache.New(rdb, config.LoadCacheConfig())

	users := repository.NewUserRepo(db)
	events := repository.NewEventRepo(db)
	tickets := repository.NewTicketRepo(db)

	reservations := service.NewReservation(repository.NewReservationStore(events, tickets))

	authHandler := handler.NewAuthHandler(cfg, users)
	eventHandler := handler.NewEventHandler(events, tickets, store)
	ticketHandler := handler.NewTicketHandler(reservations, tickets, store)
	ticketHandler.Publish = queue.PublishTicketReserved

	// Background consumer; reconnects on its own and never takes the
	// API down with it.
	go func() {
		if err := queue.StartTicketConsumer(); err != nil {
			log.Printf("ticket-consumer stopped: %v", err)
		}
	}()

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.RateLimit(config.LoadRateLimitConfig(), rdb))

	router.RegisterRoutes(e)
	router.RegisterAuth(e, authHandler)
	router.RegisterEvents(e, eventHandler, cfg.JWTSecret)
	router.RegisterTickets(e, ticketHandler, cfg.JWTSecret)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s, cache=%v)", addr, cfg.Env, store.Enabled())

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
