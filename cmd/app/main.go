package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"courier-console/internal/config"
	courierservice "courier-console/internal/courier-service"
	"courier-console/internal/mylogger"
)

func main() {
	cfg, err := config.New()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLogger, err := mylogger.New(cfg.Log.Level)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	token := flag.String("token", "", "Agent bearer token (JWT)")
	interval := flag.Int("interval", 0, "Location update interval in ms (overrides TRACKER_INTERVAL_MS)")
	flag.Parse()

	if *token == "" {
		*token = os.Getenv("AGENT_TOKEN")
	}
	if *token == "" {
		log.Fatal("Agent token is required (-token flag or AGENT_TOKEN)")
	}
	if *interval > 0 {
		cfg.Tracker.Interval = time.Duration(*interval) * time.Millisecond
	}

	appLogger.Action("courier_console_started").Info("Courier Console starting up")

	if err := courierservice.Run(context.Background(), appLogger, cfg, *token); err != nil {
		appLogger.Error("Courier Console stopped", err)
		os.Exit(1)
	}
}
