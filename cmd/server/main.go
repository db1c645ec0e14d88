package main // Entry point package

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/iliyamo/travel-agency/internal/app"
	"github.com/iliyamo/travel-agency/internal/config"
	"github.com/iliyamo/travel-agency/internal/database"
	"github.com/iliyamo/travel-agency/internal/queue"
)

func main() {
	cfg := config.Load() // Load environment config

	db, err := database.Open(database.Options{
		Driver: cfg.DBDriver,
		User:   cfg.DBUser,
		Pass:   cfg.DBPass,
		Host:   cfg.DBHost,
		Port:   cfg.DBPort,
		Name:   cfg.DBName,
	})
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()
	if err := database.CreateTables(context.Background(), db); err != nil {
		log.Fatalf("database: create tables: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Printf("redis unavailable: rate limiting and response cache disabled")
	} else {
		defer rdb.Close()
	}

	deps := app.Deps{
		Config:    cfg,
		DB:        db,
		Redis:     rdb,
		RateLimit: config.LoadRateLimitConfig(),
		Cache:     config.LoadCacheConfig(),
	}
	if cfg.Queue.Enabled {
		pub := queue.NewPublisher(cfg.Queue.URL, cfg.Queue.Buffer)
		go pub.Run(ctx)
		deps.Events = pub
	}
	if cfg.Queue.ConsumerEnabled {
		go func() {
			if err := queue.StartSocialConsumer(ctx, cfg.Queue.URL, cfg.Queue.LogDir); err != nil && !errors.Is(err, context.Canceled) {
				log.Printf("social-consumer stopped: %v", err)
			}
		}()
	}

	e := app.New(deps)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s, db=%s)", addr, cfg.Env, cfg.DBDriver)
	go func() {
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err) // Log and exit if server fails
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}
