// cmd/nutrition-tracker/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"

	"nutrition-tracker/internal/config"
	"nutrition-tracker/internal/recommend"
	"nutrition-tracker/internal/resolver"
	"nutrition-tracker/internal/server"
	"nutrition-tracker/internal/session"
	"nutrition-tracker/internal/storage"
)

var (
	configPath = flag.String("config", "config.yaml", "Config file path")
	host       = flag.String("host", "", "Host address (overrides config)")
	port       = flag.Int("port", 0, "Port for HTTP transport (overrides config)")
	dbPath     = flag.String("db-path", "", "Database path (overrides config)")
	version    = flag.Bool("version", false, "Show version")
)

func main() {
	flag.Parse()

	if *version {
		fmt.Println("nutrition-tracker version 1.0.0")
		os.Exit(0)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *host != "" {
		cfg.Server.Host = *host
	}
	if *port != 0 {
		cfg.Server.Port = *port
	}
	if *dbPath != "" {
		cfg.Database.SQLitePath = *dbPath
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, err := storage.NewSQLiteKV(cfg.Database.SQLitePath)
	if err != nil {
		log.Fatalf("Failed to open storage: %v", err)
	}
	defer store.Close()

	// Destructive prompts are answered at the tool surface, so the session
	// itself runs with confirmations pre-approved.
	sess, err := session.Load(ctx, store, session.AutoConfirm)
	if err != nil {
		log.Fatalf("Failed to load session: %v", err)
	}

	srv, err := server.New(&server.Config{
		Host: cfg.Server.Host,
		Port: cfg.Server.Port,
	}, sess, resolver.NewFDCClient(cfg.FoodData.BaseURL, cfg.FoodData.APIKey), recommend.NewEngine())
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}

	// Day rollover: zero the ledger on schedule, no confirmation.
	scheduler := cron.New()
	if _, err := scheduler.AddFunc(cfg.Schedule.RolloverCron, func() {
		if err := srv.ResetDay(context.Background()); err != nil {
			log.Printf("Day rollover failed: %v", err)
		} else {
			log.Println("Day rollover: daily totals reset")
		}
	}); err != nil {
		log.Fatalf("Invalid rollover cron %q: %v", cfg.Schedule.RolloverCron, err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(ctx); err != nil {
			errCh <- err
		}
	}()

	select {
	case <-sigCh:
		log.Println("Received shutdown signal")
	case err := <-errCh:
		log.Printf("Server error: %v", err)
	}

	log.Println("Shutting down...")
	cancel()
	if err := srv.Stop(); err != nil {
		log.Printf("Error during shutdown: %v", err)
	}
}
