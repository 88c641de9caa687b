package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	corecfg "github.com/fichron-lab/fichron/internal/core/config"
	"github.com/fichron-lab/fichron/internal/core/storage"
	"github.com/fichron-lab/fichron/internal/core/storage/dynamo"
	"github.com/fichron-lab/fichron/internal/core/storage/postgres"
	"github.com/fichron-lab/fichron/internal/event"
	"github.com/fichron-lab/fichron/internal/fiction"
	"github.com/fichron-lab/fichron/internal/imdb"
	"github.com/fichron-lab/fichron/internal/migrations"
	"github.com/fichron-lab/fichron/internal/server"
)

func main() {
	configPath := flag.String("config", "fichron.yaml", "Path to configuration file")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := corecfg.Load(*configPath)
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}
	slog.Info("Loaded config", "store_type", cfg.Store.Type, "stage", cfg.Store.Stage)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, err := newStore(ctx, cfg)
	if err != nil {
		slog.Error("Failed to initialize store", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	registry, err := fiction.NewRegistry(cfg.Fictions.DatasetsDir)
	if err != nil {
		slog.Error("Failed to load fiction registry", "error", err)
		os.Exit(1)
	}

	metadata := imdb.NewClient(cfg.IMDB.BaseURL, cfg.IMDB.APIKey, cfg.IMDB.RequestTimeout())

	svc := event.NewService(registry, store, metadata)

	srv := server.New(fmtAddr(cfg.Server.Host, cfg.Server.Port), store, cfg.Server.Mode)
	svc.RegisterRoutes(srv.Engine)

	// Signal handler → triggers the shutdown sequence below.
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		slog.Info("Signal received, shutting down...")
		cancel()
	}()

	// HTTP server blocks until ctx is cancelled.
	if err := srv.Run(ctx); err != nil {
		slog.Error("Server stopped with error", "error", err)
	}

	slog.Info("Shutdown complete")
}

// newStore builds the configured store backend. The postgres path also runs
// migrations before preparing statements.
func newStore(ctx context.Context, cfg *corecfg.Config) (storage.EventStore, error) {
	switch cfg.Store.Type {
	case "dynamodb":
		return dynamo.NewAdapter(ctx, dynamo.Options{
			Stage:     cfg.Store.Stage,
			Local:     cfg.Store.Dynamo.Local,
			Endpoint:  cfg.Store.Dynamo.Endpoint,
			Region:    cfg.Store.Dynamo.Region,
			AccessKey: cfg.Store.Dynamo.AccessKey,
			SecretKey: cfg.Store.Dynamo.SecretKey,
		})
	case "postgres":
		db, err := postgres.Open(
			cfg.Store.Postgres.DSN,
			cfg.Store.Postgres.MaxOpenConns,
			cfg.Store.Postgres.MaxIdleConns,
		)
		if err != nil {
			return nil, err
		}
		if err := migrations.RunMigrations(db, cfg.Store.Postgres.AutoMigrate); err != nil {
			db.Close()
			return nil, err
		}
		adapter, err := postgres.NewAdapter(db)
		if err != nil {
			db.Close()
			return nil, err
		}
		return adapter, nil
	default:
		return nil, fmt.Errorf("unsupported store.type %q", cfg.Store.Type)
	}
}

func fmtAddr(host string, port int) string {
	return fmt.Sprintf("%s:%d", host, port)
}
