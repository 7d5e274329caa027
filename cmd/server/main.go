package main

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/roadprice/valuation/internal/auth"
	"github.com/roadprice/valuation/internal/config"
	"github.com/roadprice/valuation/internal/database"
	"github.com/roadprice/valuation/internal/handler"
	"github.com/roadprice/valuation/internal/queue"
	"github.com/roadprice/valuation/internal/repository"
	"github.com/roadprice/valuation/internal/router"
	"github.com/roadprice/valuation/internal/valuation"
)

func main() {
	// Best-effort .env load for local development; real deployments set
	// the environment directly.
	_ = godotenv.Load()

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Printf("redis unavailable: caching and rate limiting disabled")
	}

	accounts := repository.NewAccountRepo(db)
	reports := repository.NewReportRepo(db)

	codec := auth.NewCodec(cfg.JWTSecret, time.Duration(cfg.TokenTTLMin)*time.Minute)
	engine := auth.NewEngine(codec, accounts)

	// Background audit consumer; reconnects on its own until shutdown.
	go func() {
		if err := queue.StartAuditConsumer(); err != nil {
			log.Printf("audit consumer stopped: %v", err)
		}
	}()

	e := echo.New()
	router.Register(e, router.Deps{
		Engine:   engine,
		Accounts: handler.NewAccountHandler(accounts, codec),
		Reports:  handler.NewReportHandler(reports, valuation.NewEngine(reports)),
		Redis:    rdb,
		Cache:    config.LoadCacheConfig(),
		Rate:     config.LoadRateLimitConfig(),
	})

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
