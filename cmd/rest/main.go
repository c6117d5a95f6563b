package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"electrician-be/internal/bootstrap"
	"electrician-be/internal/config"
	"electrician-be/internal/server"
	"electrician-be/internal/tracer"
	"electrician-be/pkg/database"
)

const serviceName = "electrician-chat-be"

func main() {
	// 1. Load Configuration
	cfg := config.Load()
	if cfg.Auth.JwtSecret == "" {
		log.Fatal("JWT_SECRET is not set")
	}

	// 2. Tracing (no-op unless OTEL_ENABLED=true)
	shutdownTracer := tracer.InitTracer(cfg.App.OtelEnabled, serviceName)
	defer func() {
		if err := shutdownTracer(context.Background()); err != nil {
			log.Printf("Tracer shutdown error: %v", err)
		}
	}()

	// 3. Initialize Database
	gormDB, err := database.NewGormDBFromDSN(cfg.Database.Connection, cfg.Database.Debug, database.PoolConfig{
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	})
	if err != nil {
		log.Panicf("Unable to connect to GORM DB: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 4. Bootstrap Dependencies (Container)
	container := bootstrap.NewContainer(ctx, gormDB, cfg)
	defer container.Close()

	// 5. Start Background Services
	container.Start(ctx)

	// 6. Run Server until a signal arrives
	srv := server.New(cfg, container)
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Run()
	}()

	select {
	case err := <-errCh:
		log.Printf("Server stopped: %v", err)
	case <-ctx.Done():
		log.Println("Shutting down...")
		if err := srv.Shutdown(cfg.App.ShutdownTimeout); err != nil {
			log.Printf("Server shutdown error: %v", err)
		}
	}
}
