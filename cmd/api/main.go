package main

import (
	"log/slog"
	"os"

	"github.com/DualDorans/ai-humanizer-project/internal/api"
	"github.com/DualDorans/ai-humanizer-project/internal/config"
	"github.com/DualDorans/ai-humanizer-project/internal/pkg/supabase"
	"github.com/DualDorans/ai-humanizer-project/pkg/database"
	"github.com/DualDorans/ai-humanizer-project/pkg/kafka"
)

func main() {
	// Load configuration
	cfg := config.LoadConfig()

	// Initialize database clients
	db, err := database.NewClients(cfg.Database.URL, cfg.Redis.Addr)
	if err != nil {
		slog.Error("Failed to initialize database clients", "error", err)
		os.Exit(1)
	}
	defer db.DB.Close()
	slog.Info("✅ Connected to databases")

	if err := db.CreateTables(); err != nil {
		slog.Error("Failed to bootstrap schema", "error", err)
		os.Exit(1)
	}

	// Connect to the Supabase identity provider
	if err := supabase.InitClient(cfg.Supabase.URL, cfg.Supabase.ServiceKey); err != nil {
		slog.Error("Failed to initialize Supabase client", "error", err)
		os.Exit(1)
	}

	// Initialize Kafka producer
	producer, err := kafka.NewProducer(cfg.Kafka.Broker, cfg.Kafka.RetryMax, cfg.Kafka.RetryBackoff)
	if err != nil {
		slog.Error("Failed to create Kafka producer", "error", err)
		os.Exit(1)
	}
	defer producer.Close()
	slog.Info("✅ Connected to Kafka")

	// Create and start server
	server := api.NewServer(cfg, db, producer)
	if err := server.Start(); err != nil {
		slog.Error("Server error", "error", err)
		os.Exit(1)
	}
}
