package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/linkboard/linkboard/internal/api"
	"github.com/linkboard/linkboard/internal/auth"
	systemclock "github.com/linkboard/linkboard/internal/clock/system"
	"github.com/linkboard/linkboard/internal/config"
	"github.com/linkboard/linkboard/internal/directory"
	uuidgen "github.com/linkboard/linkboard/internal/id/uuid"
	"github.com/linkboard/linkboard/internal/logging"
	"github.com/linkboard/linkboard/internal/metadata"
	memorypub "github.com/linkboard/linkboard/internal/publisher/memory"
	gcppub "github.com/linkboard/linkboard/internal/publisher/pubsub"
	memorystore "github.com/linkboard/linkboard/internal/storage/memory"
	"github.com/linkboard/linkboard/internal/storage/postgres"
)

const shutdownGrace = 10 * time.Second

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "linkboard: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := logging.New(cfg.Logging.Development)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync() //nolint:errcheck
	zap.ReplaceGlobals(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	links, categories, users, cleanup, err := buildStores(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	publisher, pubCleanup, err := buildPublisher(ctx, cfg)
	if err != nil {
		return err
	}
	defer pubCleanup()

	svc := directory.NewService(
		links,
		categories,
		systemclock.New(),
		uuidgen.New(),
		publisher,
		cfg.Events.Topic,
		logger.Named("directory"),
	)

	extractor := metadata.New(metadata.Config{
		UserAgent: cfg.Fetch.UserAgent,
		Timeout:   cfg.FetchTimeout(),
	}, logger.Named("metadata"))

	server := api.NewServer(svc, extractor, auth.New(users), logger.Named("api"))

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           server.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting http server", zap.Int("port", cfg.Server.Port))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}

	logger.Info("server stopped")
	return nil
}

func buildStores(ctx context.Context, cfg config.Config, logger *zap.Logger) (
	directory.LinkStore,
	directory.CategoryStore,
	directory.UserStore,
	func(),
	error,
) {
	switch cfg.Store.Provider {
	case "postgres":
		pool, err := postgres.Connect(ctx, postgres.Config{
			DSN:      cfg.DB.DSN,
			MaxConns: cfg.DB.MaxConns,
			MinConns: cfg.DB.MinConns,
		})
		if err != nil {
			return nil, nil, nil, nil, fmt.Errorf("connect postgres: %w", err)
		}
		if err := postgres.EnsureSchema(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, nil, nil, fmt.Errorf("ensure schema: %w", err)
		}
		logger.Info("using postgres store")
		return postgres.NewLinkStore(pool), postgres.NewCategoryStore(pool), postgres.NewUserStore(pool), pool.Close, nil
	case "memory":
		categories := memorystore.NewCategoryStore()
		users := memorystore.NewUserStore()
		for _, seed := range cfg.Users {
			users.Seed(directory.User{
				ID:   seed.ID,
				Name: seed.Name,
				Role: directory.Role(seed.Role),
			}, seed.Token)
		}
		logger.Info("using memory store", zap.Int("seed_users", len(cfg.Users)))
		return memorystore.NewLinkStore(categories, users), categories, users, func() {}, nil
	default:
		return nil, nil, nil, nil, fmt.Errorf("unknown store provider: %s", cfg.Store.Provider)
	}
}

func buildPublisher(ctx context.Context, cfg config.Config) (directory.Publisher, func(), error) {
	switch cfg.Events.Provider {
	case "pubsub":
		pub, err := gcppub.New(ctx, cfg.Events.ProjectID, cfg.Events.Topic)
		if err != nil {
			return nil, nil, fmt.Errorf("connect pubsub: %w", err)
		}
		return pub, func() { pub.Close() }, nil
	case "memory":
		return memorypub.New(), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown events provider: %s", cfg.Events.Provider)
	}
}
