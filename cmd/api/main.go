package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"folio/api/internal/app"
	"folio/api/internal/config"
	"folio/api/internal/history"
	"folio/api/internal/metadata"
	"folio/api/internal/store"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	ctx := context.Background()

	db, err := store.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}
	defer db.Close()

	if err := store.ApplyMigrations(ctx, db, cfg.MigrationsDir); err != nil {
		log.Fatalf("migrations failed: %v", err)
	}

	if err := os.MkdirAll(cfg.RevisionsDir, 0o755); err != nil {
		log.Fatalf("failed to create revisions dir: %v", err)
	}

	configStore := store.NewPostgresStore(db)
	revisions := history.New(cfg.RevisionsDir)

	var cache metadata.Cache
	if strings.TrimSpace(cfg.RedisURL) != "" {
		redisCache, err := metadata.NewRedisCache(cfg.RedisURL)
		if err != nil {
			log.Fatalf("redis connection failed: %v", err)
		}
		defer redisCache.Close()
		log.Printf("Using Redis for the metadata cache")
		cache = redisCache
	} else {
		log.Printf("Using in-memory metadata cache")
		cache = metadata.NewMemoryCache()
	}

	fetcher := metadata.NewHTTPFetcher(cfg.FetchTimeout)
	metaService := metadata.NewService(fetcher, cache, time.Duration(cfg.DefaultCacheMinutes)*time.Minute)

	service := app.New(configStore, revisions, metaService, cache)
	httpServer := app.NewHTTPServer(service, cfg.CORSOrigin)
	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           httpServer.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Printf("Folio API listening on %s", cfg.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}
