package main

import (
	"context"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/time/rate"
	"gopkg.in/natefinch/lumberjack.v2"

	"showguide/api"
	"showguide/config"
	"showguide/handlers"
	"showguide/internal/store"
	"showguide/services/assist"
	"showguide/services/epguides"
	"showguide/services/scheduler"
	"showguide/services/shows"
	"showguide/utils"
)

func main() {
	cfg := config.Load()

	if cfg.LogFile != "" {
		log.SetOutput(io.MultiWriter(os.Stderr, &lumberjack.Logger{
			Filename:   cfg.LogFile,
			MaxSize:    20, // MB
			MaxBackups: 3,
			MaxAge:     14, // days
			Compress:   true,
		}))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var st store.Store
	redisStore, err := store.NewRedisStore(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		log.Printf("[main] redis unavailable at %s, using in-memory store: %v", cfg.RedisAddr, err)
		st = store.NewMemoryStore()
	} else {
		st = redisStore
	}
	defer st.Close()

	source := epguides.NewClient(cfg.EpguidesBaseURL, cfg.TVMazeBaseURL, nil, st)
	showsSvc := shows.New(source, st)
	assistSvc := assist.New(cfg.AssistAPIURL, cfg.AssistAPIKey, cfg.AssistModel, nil)

	refresher := scheduler.New(source, cfg.RefreshInterval)
	refresher.Start()
	defer refresher.Stop()

	router := utils.NewRouter(cfg.AllowedOrigins)
	router.Use(api.RequestIDMiddleware())
	router.Use(api.LoggingMiddleware())
	if cfg.RateLimitPerMinute > 0 {
		limiter := api.NewClientLimiter(rate.Every(time.Minute/time.Duration(cfg.RateLimitPerMinute)), cfg.RateLimitBurst)
		router.Use(api.RateLimitMiddleware(limiter))
	}

	handlers.NewShowsHandler(showsSvc, assistSvc).Register(router)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Printf("[main] listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("[main] server error: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("[main] shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("[main] shutdown: %v", err)
	}
}
