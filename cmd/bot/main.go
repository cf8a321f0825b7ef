package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"biomeai-be/internal/bootstrap"
	"biomeai-be/internal/config"
	"biomeai-be/internal/discord"
	"biomeai-be/internal/server"
	"biomeai-be/internal/tracer"
	"biomeai-be/pkg/database"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

func main() {
	// 1. Load Configuration
	cfg := config.Load()
	if err := cfg.Validate(true, false); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Initialize Tracer (no-op without OTEL_EXPORTER_OTLP_ENDPOINT)
	shutdownTracer := tracer.InitTracer("biomeai-be", cfg.App.OtelEndpoint)
	defer shutdownTracer(context.Background())

	// 3. Initialize Database
	var gormDB *gorm.DB
	if cfg.Database.Connection != "" {
		db, err := database.NewGormDBFromDSN(cfg.Database.Connection, !cfg.IsProduction())
		if err != nil {
			log.Panicf("Unable to connect to GORM DB: %v", err)
		}
		gormDB = db
	}

	// 4. Bootstrap Dependencies (Container)
	container := bootstrap.NewContainer(gormDB, cfg)
	defer container.Close()

	gateway, err := discord.NewGateway(cfg.Discord.Token, container.MessageHandler, container.Logger)
	if err != nil {
		log.Fatalf("Unable to create Discord session: %v", err)
	}

	srv := server.New(cfg, container)

	// 5. Run everything until a signal arrives or one part fails
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Println("Background: Starting Consumer Service...")
		return container.ConsumerService.Consume(gctx)
	})

	if container.AuditService != nil {
		g.Go(func() error {
			return container.AuditService.Start(gctx)
		})
	}

	g.Go(func() error {
		return gateway.Run(gctx)
	})

	g.Go(func() error {
		return srv.Run()
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Printf("Shutdown with error: %v", err)
	}
	log.Println("BiomeAI stopped")
}
