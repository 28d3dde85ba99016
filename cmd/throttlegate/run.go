package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/throttlegate/throttlegate/pkg/cli"
	"github.com/throttlegate/throttlegate/pkg/config"
	"github.com/throttlegate/throttlegate/pkg/decision"
	"github.com/throttlegate/throttlegate/pkg/decision/catalog"
	"github.com/throttlegate/throttlegate/pkg/decision/counter"
	"github.com/throttlegate/throttlegate/pkg/decision/resolver"
	"github.com/throttlegate/throttlegate/pkg/decision/store"
	"github.com/throttlegate/throttlegate/pkg/server"
	"github.com/throttlegate/throttlegate/pkg/telemetry/health"
	"github.com/throttlegate/throttlegate/pkg/telemetry/logging"
	"github.com/throttlegate/throttlegate/pkg/telemetry/metrics"
)

var runFlags struct {
	listenAddress string
	logLevel      string
	dryRun        bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the Throttlegate server",
	Long: `Start the Throttlegate server with the specified configuration.

The server listens on the configured address and serves rate limit
decisions backed by the configured catalog and counting store.

Examples:
  # Start with default config
  throttlegate run

  # Start with custom config
  throttlegate run --config /etc/throttlegate/config.yaml

  # Override listen address
  throttlegate run --listen 0.0.0.0:8080

  # Validate config without starting the server
  throttlegate run --dry-run`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runFlags.listenAddress, "listen", "l", "", "override listen address")
	runCmd.Flags().StringVar(&runFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	runCmd.Flags().BoolVar(&runFlags.dryRun, "dry-run", false, "validate config without starting the server")
}

func runServer(cmd *cobra.Command, args []string) error {
	if err := config.Initialize(cfgFile); err != nil {
		return cli.NewConfigError("", fmt.Sprintf("failed to load config: %v", err))
	}
	cfg := config.GetConfig()

	if runFlags.listenAddress != "" {
		cfg.Server.ListenAddress = runFlags.listenAddress
	}
	if runFlags.logLevel != "" {
		cfg.Telemetry.Logging.Level = runFlags.logLevel
	}

	logger, err := logging.New(logging.Config{
		Level:  cfg.Telemetry.Logging.Level,
		Format: cfg.Telemetry.Logging.Format,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	slog.SetDefault(logger)

	if runFlags.dryRun {
		fmt.Println("configuration valid")
		return nil
	}

	ctx := context.Background()

	catalogAdapter, catalogPing, catalogCloser, err := buildCatalog(ctx, cfg)
	if err != nil {
		return cli.NewCommandError("run", fmt.Errorf("initialize catalog: %w", err))
	}
	defer catalogCloser()

	storeBackend, storePing, storeCloser, err := buildStore(cfg)
	if err != nil {
		return cli.NewCommandError("run", fmt.Errorf("initialize counting store: %w", err))
	}
	defer storeCloser()

	res := resolver.New(catalogAdapter)
	cnt := counter.New(storeBackend).WithMaxRetries(cfg.Store.MaxRetries)
	svc := decision.NewService(res, cnt)

	checker := health.New(2 * time.Second)
	checker.Register("catalog", catalogPing)
	checker.Register("store", storePing)

	collector := metrics.NewCollector(nil)

	srv := server.NewServer(cfg, svc, checker, collector)

	errChan := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil {
			errChan <- err
		}
	}()

	slog.Info("throttlegate started",
		"address", cfg.Server.ListenAddress,
		"catalog_mode", cfg.Catalog.Mode,
		"store_backend", cfg.Store.Backend,
	)

	sigChan := cli.WaitForShutdown()
	select {
	case err := <-errChan:
		return cli.NewCommandError("run", err)
	case sig := <-sigChan:
		slog.Info("received shutdown signal", "signal", sig.String())

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return cli.NewCommandError("run", err)
		}

		slog.Info("throttlegate stopped")
		return nil
	}
}

// buildCatalog constructs a catalog.Adapter per cfg.Catalog.Mode, along with
// a readiness probe bound to the same underlying connection and a closer
// the caller must defer.
func buildCatalog(ctx context.Context, cfg *config.Config) (catalog.Adapter, health.CheckFunc, func(), error) {
	switch cfg.Catalog.Mode {
	case config.CatalogModePostgres:
		pg, err := catalog.Open(ctx, cfg.Catalog.PostgresDSN)
		if err != nil {
			return nil, nil, func() {}, err
		}
		pg = pg.WithTimeout(cfg.Catalog.OperationTimeout)
		ping := func(ctx context.Context) error { return pg.Ping(ctx) }
		return pg, ping, func() { pg.Close() }, nil
	case config.CatalogModeFile:
		f, err := catalog.NewFile(cfg.Catalog.FilePath, slog.Default())
		if err != nil {
			return nil, nil, func() {}, err
		}
		f = f.WithTimeout(cfg.Catalog.OperationTimeout)
		ping := func(ctx context.Context) error { return nil }
		return f, ping, func() { _ = f.Close() }, nil
	default:
		return nil, nil, func() {}, fmt.Errorf("unknown catalog mode: %s", cfg.Catalog.Mode)
	}
}

// buildStore constructs a store.Backend per cfg.Store.Backend, along with a
// readiness probe and a closer the caller must defer.
func buildStore(cfg *config.Config) (store.Backend, health.CheckFunc, func(), error) {
	switch cfg.Store.Backend {
	case config.StoreBackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr: cfg.Store.RedisAddr,
			DB:   cfg.Store.RedisDB,
		})
		backend := store.NewRedisBackend(client).WithTimeout(cfg.Store.OperationTimeout)
		ping := func(ctx context.Context) error { return client.Ping(ctx).Err() }
		return backend, ping, func() { _ = client.Close() }, nil
	case config.StoreBackendMemory:
		backend := store.NewMemoryBackend().WithTimeout(cfg.Store.OperationTimeout)
		ping := func(ctx context.Context) error { return nil }
		return backend, ping, func() { _ = backend.Close() }, nil
	default:
		return nil, nil, func() {}, fmt.Errorf("unknown store backend: %s", cfg.Store.Backend)
	}
}
