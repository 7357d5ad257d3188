package main

import (
	"context"
	stderrors "errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"hypotest/adapters/sqlstore"
	"hypotest/internal"
	"hypotest/internal/admin"
	"hypotest/internal/config"
	"hypotest/internal/errors"
	"hypotest/internal/hypothesis"
	"hypotest/internal/results"
	"hypotest/ports"
	"hypotest/ui"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

// initMetaStore picks where result metadata lives. Without a driver the
// result store keeps .meta files itself.
func initMetaStore(ctx context.Context, appConfig *config.Config) (ports.ResultMetaStore, *sqlx.DB, error) {
	if appConfig.Database.Driver == config.DriverFile {
		return nil, nil, nil
	}
	db, err := sqlstore.Open(ctx, appConfig.Database.Driver, appConfig.Database.URL)
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to initialize database")
	}
	return sqlstore.NewResultMetaStore(db), db, nil
}

// newAdminServer always serves /healthz and /metrics; PPROF_ENABLED only
// controls /debug/pprof.
func newAdminServer(appConfig *config.Config) *http.Server {
	router := admin.NewRouter(admin.Config{
		EnablePprof: appConfig.Profiling.Enabled,
		Ready: func() error {
			_, err := os.Stat(appConfig.Results.Dir)
			return err
		},
	})
	return &http.Server{
		Addr:              ":" + appConfig.Profiling.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
}

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	// Load application configuration
	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := internal.NewLogger(internal.ParseLogLevel(appConfig.Log.Level))
	gin.SetMode(appConfig.Server.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metaStore, db, err := initMetaStore(ctx, appConfig)
	if err != nil {
		log.Fatalf("Failed to initialize metadata store: %v", err)
	}
	if db != nil {
		defer db.Close()
	}

	store, err := results.NewStore(appConfig.Results.Dir, metaStore, results.Options{
		TTL:             appConfig.Results.TTL,
		OriginalNameMax: appConfig.Results.OriginalNameMax,
		Logger:          logger,
	})
	if err != nil {
		log.Fatalf("Failed to initialize result store: %v", err)
	}

	server := ui.NewServer(ui.Config{
		AllowedOrigins:      appConfig.Server.AllowedOrigins,
		MaxUploadBytes:      appConfig.Server.MaxUploadBytes,
		UploadRatePerSecond: appConfig.Server.UploadRatePerSecond,
		UploadBurst:         appConfig.Server.UploadBurst,
		Logger:              logger,
	}, hypothesis.NewCatalog(), store)

	servers := []*http.Server{
		{
			Addr:              ":" + appConfig.Server.Port,
			Handler:           server.Handler(),
			ReadHeaderTimeout: 10 * time.Second,
		},
		newAdminServer(appConfig),
	}

	g, gctx := errgroup.WithContext(ctx)

	for _, srv := range servers {
		srv := srv
		g.Go(func() error {
			logger.Info("listening on %s", srv.Addr)
			if err := srv.ListenAndServe(); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
				return errors.Wrapf(err, "server on %s failed", srv.Addr)
			}
			return nil
		})
	}

	g.Go(func() error {
		return store.RunCleanup(gctx, appConfig.Results.CleanupInterval)
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		for _, srv := range servers {
			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Error("shutdown of %s failed: %v", srv.Addr, err)
			}
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Fatalf("Server stopped: %v", err)
	}
	logger.Info("stopped")
}
