package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/villageworks/villagecraft/internal/app"
	"github.com/villageworks/villagecraft/internal/config"
	"github.com/villageworks/villagecraft/internal/database"
	"github.com/villageworks/villagecraft/pkg/logger"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment")
	}

	// Initialize logger
	logger.Init()
	defer logger.Sync()

	logger.Info("Starting village simulation server...")

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatal("Failed to load config", err)
	}

	// Validate production security settings
	if cfg.AppEnv == "production" {
		if err := cfg.ValidateProductionSecurity(); err != nil {
			logger.Fatal("Production security validation failed", err)
		}
		logger.Info("Production security validation passed")
	}

	// Load the game balance document
	game, err := config.LoadGameConfig(cfg.GameConfigPath)
	if err != nil {
		logger.Fatal("Failed to load game config", err)
	}

	// Connect to database with TLS
	db, err := database.Connect(cfg)
	if err != nil {
		logger.Fatal("Failed to connect to database", err)
	}

	// Run GORM auto-migration
	if err := database.AutoMigrate(db); err != nil {
		logger.Fatal("Failed to run migrations", err)
	}

	// Assemble and start the simulation. Running headless: the in-memory
	// host stands in until a real game server attaches through app.Hooks.
	sim := app.New(db, game, app.Hooks{})
	sim.Start()

	logger.Info("Server started successfully", "env", cfg.AppEnv)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down gracefully...")
	sim.Stop()
	logger.Info("Server stopped")
}
