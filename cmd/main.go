package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/adrewards/coinz/internal/adapters/http/api"
	"github.com/adrewards/coinz/internal/adapters/repository"
	app "github.com/adrewards/coinz/internal/app"
	"github.com/adrewards/coinz/internal/config"
	"github.com/adrewards/coinz/pkg/logger"
	"github.com/adrewards/coinz/pkg/metrics"

	"github.com/joho/godotenv"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// HTTP server timeout constants.
const (
	readTimeout           = 10 * time.Second
	writeTimeout          = 10 * time.Second
	idleTimeout           = 60 * time.Second
	readHeaderTimeout     = 5 * time.Second
	shutdownTimeout       = 30 * time.Second
	mongoPingTimeout      = 5 * time.Second
	systemMetricsInterval = 10 * time.Second
)

func main() {
	// Local development convenience; the file is absent in deployment.
	_ = godotenv.Load()

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	defer func() {
		if err := logger.Sync(); err != nil {
			os.Stderr.WriteString("failed to flush logs: " + err.Error() + "\n")
		}
	}()

	log := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return
	}

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	store, disconnect, err := connectStore(ctx, cfg, log)
	if err != nil {
		os.Stderr.WriteString("failed to initialize store: " + err.Error() + "\n")
		return
	}
	defer disconnect()

	svc := app.New(
		app.WithLogger(log),
		app.WithStore(store),
		app.WithLeaderboardLimit(cfg.LeaderboardLimit),
		app.WithDedupeSize(cfg.DedupeSize),
	)
	if err := svc.Start(ctx); err != nil {
		os.Stderr.WriteString("failed to start service: " + err.Error() + "\n")
		return
	}
	defer svc.Stop()

	go startSystemMetricsUpdater(ctx)

	mux := http.NewServeMux()
	api.NewServer(svc, svc).Register(ctx, mux)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			os.Stderr.WriteString("HTTP server failed: " + err.Error() + "\n")
		}
	}()

	<-ctx.Done()
	log.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
	}

	log.Info(ctx, "server stopped")
}

// connectStore builds the Mongo-backed store. An unreachable server is
// logged, not fatal: the process keeps serving and requests fail at the
// persistence call until the store comes back.
func connectStore(ctx context.Context, cfg *config.Config, log logger.Logger) (*repository.MongoStore, func(), error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURL))
	if err != nil {
		return nil, nil, err
	}
	disconnect := func() {
		dctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := client.Disconnect(dctx); err != nil {
			log.Error(dctx, "mongo disconnect failed", logger.Error(err))
		}
	}

	pingCtx, cancel := context.WithTimeout(ctx, mongoPingTimeout)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		log.Error(ctx, "mongo unreachable at startup; continuing", logger.Error(err))
	} else {
		log.Info(ctx, "mongo connected", logger.String("database", cfg.MongoDatabase))
	}

	store, err := repository.NewMongoStore(ctx, client.Database(cfg.MongoDatabase))
	if err != nil {
		// Index creation needs the server; treat like the failed ping.
		log.Error(ctx, "mongo index setup failed; continuing", logger.Error(err))
		store = repository.NewMongoStoreLazy(client.Database(cfg.MongoDatabase))
	}
	return store, disconnect, nil
}

// startSystemMetricsUpdater periodically refreshes process-level gauges.
func startSystemMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(systemMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			var m runtime.MemStats
			runtime.ReadMemStats(&m)
			metrics.UpdateSystemMemoryUsage(m.Alloc)
			metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())
		}
	}
}
