package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"

	"github.com/sbilibin2017/gw-user-registry/internal/config"
	"github.com/sbilibin2017/gw-user-registry/internal/handlers"
	"github.com/sbilibin2017/gw-user-registry/internal/logger"
	"github.com/sbilibin2017/gw-user-registry/internal/middlewares"
	"github.com/sbilibin2017/gw-user-registry/internal/repositories"
	"github.com/sbilibin2017/gw-user-registry/internal/services"

	_ "github.com/jackc/pgx/v5/stdlib"
	httpSwagger "github.com/swaggo/http-swagger"
)

// Build info variables, set via ldflags at build time.
var (
	buildVersion = "N/A" // Version of the service
	buildDate    = "N/A" // Build date
	buildCommit  = "N/A" // Git commit hash
)

// @title gw-user-registry API
// @version 1.0.0
// @description User registration service with a primary file store and a best-effort secondary database
// @host localhost:8080
// @BasePath /
// @schemes http
func main() {
	printBuildInfo()
	configPath := parseFlags()

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}

	if err := run(context.Background(), cfg); err != nil {
		log.Fatalf("application stopped with error: %v", err)
	}
}

// printBuildInfo prints the build version, commit hash, and build date.
func printBuildInfo() {
	fmt.Printf("Version: %s\nCommit: %s\nBuild: %s\n", buildVersion, buildCommit, buildDate)
}

// parseFlags parses command-line flags and returns the config file path.
func parseFlags() string {
	c := flag.String("c", "config.env", "Path to configuration file")
	flag.Parse()
	return *c
}

// run wires stores, services and handlers, then serves HTTP until ctx is
// cancelled or a termination signal arrives.
func run(ctx context.Context, cfg *config.Config) error {
	if err := logger.Initialize(cfg.LogLevel, logger.EncodingJSON); err != nil {
		fmt.Println("failed to initialize logger:", err)
		return err
	}
	defer logger.Sync()
	logger.Log.Infof("Logger initialized with level %s", cfg.LogLevel)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	stores, err := openStores(ctx, cfg)
	if err != nil {
		return err
	}
	defer stores.Close()

	statsFile, err := repositories.NewStatsFileRepository(cfg.StatsPath())
	if err != nil {
		return err
	}

	photos, err := repositories.NewPhotoFileRepository(cfg.UploadDir, cfg.UploadMaxBytes)
	if err != nil {
		return err
	}

	// interface values stay nil unless configured
	var cache services.StatsCache
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer rdb.Close()

		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Log.Warnw("Redis unavailable, stats reads fall back to the snapshot file", "addr", cfg.RedisAddr, "error", err)
		}
		cache = repositories.NewStatsCacheRepository(rdb, cfg.RedisStatsTTL)
	}

	var events services.KafkaWriter
	if len(cfg.KafkaBrokers) > 0 {
		kw := &kafka.Writer{
			Addr:                   kafka.TCP(cfg.KafkaBrokers...),
			Topic:                  cfg.KafkaTopic,
			Balancer:               &kafka.Hash{},
			RequiredAcks:           kafka.RequireOne,
			AllowAutoTopicCreation: true,
		}
		defer kw.Close()
		events = kw
	}

	userService := services.NewUserService(
		stores.primary,
		stores.secondary,
		statsFile,
		cache,
		events,
		cfg.BcryptCost,
		cfg.SecondaryPingTimeout,
	)
	if stores.secondary != nil {
		available := userService.CheckSecondary(ctx)
		logger.Log.Infow("secondary store checked", "store", stores.secondary.Name(), "available", available)
	}

	statsService := services.NewStatsService(statsFile, cache)

	r := newRouter(cfg, userService, statsService, photos)

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		logger.Log.Infof("HTTP server listening on %s", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("HTTP server failed: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		logger.Log.Info("Shutdown signal received, stopping HTTP server...")
	case serveErr := <-errChan:
		return serveErr
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Errorw("HTTP server shutdown error", "error", err)
	}

	logger.Log.Info("HTTP server stopped gracefully")
	return nil
}

func newRouter(
	cfg *config.Config,
	users *services.UserService,
	stats *services.StatsService,
	photos handlers.PhotoSaver,
) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Use(middlewares.LoggingMiddleware)

	r.Get("/health", handlers.NewHealthHandler())

	r.Route("/api", func(r chi.Router) {
		r.Post("/users/register", handlers.NewRegisterHandler(users, photos, cfg.UploadMaxBytes))
		r.Get("/users", handlers.NewListUsersHandler(users))
		r.Get("/users/stats", handlers.NewGetStatsHandler(stats))
		r.Get("/users/{id}", handlers.NewGetUserHandler(users))
		r.Get("/storage/status", handlers.NewStorageStatusHandler(users))
	})

	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL(fmt.Sprintf("http://%s/swagger/doc.json", cfg.Addr())),
	))

	return r
}
