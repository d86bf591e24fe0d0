package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/linkedleaders/platform-api/internal/core/domain"
	"github.com/linkedleaders/platform-api/internal/infra/app"
	"github.com/linkedleaders/platform-api/internal/infra/config"
)

func main() {
	_ = godotenv.Load()

	if err := domain.ValidateRoleRegistry(); err != nil {
		log.Fatalf("invalid role registry: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	application, err := app.New(ctx, cfg)
	if err != nil {
		log.Fatalf("failed to init app: %v", err)
	}

	if err := application.Run(ctx); err != nil {
		log.Printf("application stopped: %v", err)
		os.Exit(1)
	}
}
