// Command collection serves the collection subgraph.
//
//	collection -config collection.yaml
//
// Every setting can be overridden from the environment, e.g.
// COLLECTION_SERVER_ADDR=:8080 or COLLECTION_DATABASE_DSN=postgres://...
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	"golang.org/x/sync/errgroup"
	_ "modernc.org/sqlite"

	"github.com/syssam/collection/config"
	"github.com/syssam/collection/dialect/sql"
	"github.com/syssam/collection/graph"
	"github.com/syssam/collection/graph/typegen"
	"github.com/syssam/collection/store"
)

func main() {
	if err := run(); err != nil {
		slog.Error("collection failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "path to the YAML configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	level := new(slog.LevelVar)
	if l, err := cfg.Log.SlogLevel(); err == nil {
		level.Set(l)
	}
	logger := slog.New(cfg.Log.Handler(os.Stderr, level))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, stats, err := openStore(ctx, cfg.Database, logger)
	if err != nil {
		return err
	}
	defer client.Close()
	if cfg.Database.AutoMigrate {
		if err := client.Schema.Create(ctx); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}

	schema, err := graph.NewSchema()
	if err != nil {
		return fmt.Errorf("build schema: %w", err)
	}
	if cfg.Artifacts.Enabled {
		writeArtifacts(ctx, cfg.Artifacts, schema, logger)
	}

	srv := &http.Server{
		Addr: cfg.Server.Addr,
		Handler: graph.NewHandler(schema, client,
			graph.WithPlayground(cfg.Server.Playground),
			graph.WithHandlerLogger(logger),
		),
		ReadHeaderTimeout: 10 * time.Second,
	}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("server listening", "addr", srv.Addr, "playground", cfg.Server.Playground)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down", "timeout", cfg.Server.ShutdownTimeout)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	if *configPath != "" {
		reloader := &config.Reloader{Level: level, Driver: stats}
		g.Go(func() error {
			return config.Watch(gctx, *configPath, logger, reloader.Apply)
		})
	}
	err = g.Wait()
	logger.Info("query statistics", "stats", stats.Stats())
	return err
}

// openStore connects to the database and wraps the driver with query
// statistics and, when enabled, statement logging.
func openStore(ctx context.Context, cfg config.Database, logger *slog.Logger) (*store.Client, *sql.StatsDriver, error) {
	drv, err := sql.Open(cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}
	drv.SetPool(sql.PoolOptions{
		MaxOpenConns:    cfg.MaxOpenConns,
		MaxIdleConns:    cfg.MaxIdleConns,
		ConnMaxLifetime: cfg.ConnMaxLifetime,
	})
	if err := drv.Ping(ctx); err != nil {
		drv.Close()
		return nil, nil, fmt.Errorf("ping database: %w", err)
	}
	opts := []sql.StatsOption{
		sql.WithSlowThreshold(cfg.SlowQueryThreshold),
		sql.WithSlowQueryLog(logger),
	}
	if cfg.Debug {
		opts = append(opts, sql.WithStatementLog(logger))
	}
	stats := sql.NewStatsDriver(drv, opts...)
	logger.Info("database connected", "driver", cfg.Driver)
	return store.NewClient(store.Driver(stats), store.Logger(logger)), stats, nil
}

// writeArtifacts writes the developer artifacts. Failures are logged only.
func writeArtifacts(ctx context.Context, cfg config.Artifacts, schema *graph.Schema, logger *slog.Logger) {
	gen := typegen.New(schema.AST, schema.Subgraph, cfg.Dir, typegen.WithPackage(cfg.Package))
	if err := gen.Generate(ctx); err != nil {
		logger.Warn("writing artifacts failed", "dir", cfg.Dir, "error", err)
		return
	}
	m := gen.Metrics()
	logger.Info("artifacts written", "dir", cfg.Dir, "files", m.FilesGenerated, "bytes", m.TotalBytes)
}
