// Command migrate reconciles the users file and the secondary store.
//
//	migrate [-c config.env] to-mongo|to-secondary|to-file
//
// to-secondary (alias to-mongo) copies file records whose email is missing
// from the secondary store. to-file overwrites the users file with the full
// secondary collection and refreshes the stats snapshot, including the Redis
// copy when REDIS_ADDR is set. The users file is always one side of the
// migration, so PRIMARY_STORE must be file.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/redis/go-redis/v9"

	"github.com/sbilibin2017/gw-user-registry/internal/config"
	"github.com/sbilibin2017/gw-user-registry/internal/logger"
	"github.com/sbilibin2017/gw-user-registry/internal/models"
	"github.com/sbilibin2017/gw-user-registry/internal/repositories"
	"github.com/sbilibin2017/gw-user-registry/internal/services"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// Exit codes.
const (
	exitOK      = 0
	exitAborted = 1
	exitUsage   = 2
)

const directionToMongo = "to-mongo"

var errUsage = errors.New("usage")

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "Usage: migrate [-c config.env] <direction>")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Directions:")
	fmt.Fprintln(w, "  to-mongo       copy users from the users file to MongoDB")
	fmt.Fprintln(w, "  to-secondary   copy users from the users file to the configured secondary store")
	fmt.Fprintln(w, "  to-file        overwrite the users file with the secondary store contents")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "The users file is the migration source or target, PRIMARY_STORE must be file.")
}

// parseArgs returns the config path and the migration direction.
func parseArgs(args []string, stderr io.Writer) (string, string, error) {
	fs := flag.NewFlagSet("migrate", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("c", "config.env", "Path to configuration file")
	fs.Usage = func() {}

	if err := fs.Parse(args); err != nil {
		return "", "", errUsage
	}
	if fs.NArg() != 1 {
		return "", "", errUsage
	}

	switch dir := fs.Arg(0); dir {
	case directionToMongo, models.DirectionToSecondary, models.DirectionToFile:
		return *configPath, dir, nil
	default:
		return "", "", errUsage
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	configPath, direction, err := parseArgs(args, stderr)
	if err != nil {
		usage(stderr)
		return exitUsage
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(stderr, "failed to parse config: %v\n", err)
		return exitAborted
	}

	if direction == directionToMongo {
		if cfg.SecondaryStore != config.StoreMongo {
			fmt.Fprintf(stderr, "to-mongo needs SECONDARY_STORE=mongo, got %q\n", cfg.SecondaryStore)
			return exitAborted
		}
		direction = models.DirectionToSecondary
	}
	if !cfg.HasSecondary() {
		fmt.Fprintln(stderr, "no secondary store configured, set SECONDARY_STORE")
		return exitAborted
	}
	if cfg.PrimaryStore != config.StoreFile {
		fmt.Fprintf(stderr, "migration reconciles the users file, needs PRIMARY_STORE=file, got %q\n", cfg.PrimaryStore)
		return exitAborted
	}

	if err := logger.Initialize(cfg.LogLevel, logger.EncodingConsole); err != nil {
		fmt.Fprintf(stderr, "failed to initialize logger: %v\n", err)
		return exitAborted
	}
	defer logger.Sync()

	users, err := repositories.NewUserFileRepository(cfg.UsersPath())
	if err != nil {
		fmt.Fprintf(stderr, "failed to open users file: %v\n", err)
		return exitAborted
	}
	stats, err := repositories.NewStatsFileRepository(cfg.StatsPath())
	if err != nil {
		fmt.Fprintf(stderr, "failed to open stats file: %v\n", err)
		return exitAborted
	}

	var cache services.StatsCache
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer rdb.Close()
		cache = repositories.NewStatsCacheRepository(rdb, cfg.RedisStatsTTL)
	}

	svc := services.NewMigrationService(users, stats, cache, secondaryConnector(cfg), cfg.MigrateConnectTimeout)

	summary, err := svc.Run(ctx, direction)
	if err != nil {
		fmt.Fprintf(stderr, "migration aborted: %v\n", err)
		return exitAborted
	}

	fmt.Fprintf(stdout, "Migration %s complete\n", summary.Direction)
	fmt.Fprintf(stdout, "  migrated: %d\n", summary.Migrated)
	fmt.Fprintf(stdout, "  skipped:  %d\n", summary.Skipped)
	fmt.Fprintf(stdout, "  errored:  %d\n", summary.Errored)
	fmt.Fprintf(stdout, "  total:    %d\n", summary.Total)
	return exitOK
}

// secondaryConnector connects to the configured secondary store. The context
// passed by the migration service bounds the attempt.
func secondaryConnector(cfg *config.Config) services.SecondaryConnector {
	return func(ctx context.Context) (services.MigrationTarget, func(context.Context) error, error) {
		switch cfg.SecondaryStore {
		case config.StoreMongo:
			client, err := repositories.ConnectMongo(ctx, cfg.MongoURI, cfg.MigrateConnectTimeout)
			if err != nil {
				return nil, nil, err
			}
			repo := repositories.NewUserMongoRepository(client.Database(cfg.MongoDB))
			if err := repo.EnsureIndexes(ctx); err != nil {
				_ = client.Disconnect(context.Background())
				return nil, nil, err
			}
			return repo, client.Disconnect, nil

		case config.StorePostgres:
			db, err := repositories.OpenPostgres(cfg.PostgresDSN, cfg.PostgresMaxOpenConns, cfg.PostgresMaxIdleConns)
			if err != nil {
				return nil, nil, err
			}
			repo := repositories.NewUserPostgresRepository(db)
			// Ping creates the schema on first contact
			if err := repo.Ping(ctx); err != nil {
				_ = db.Close()
				return nil, nil, err
			}
			return repo, func(context.Context) error { return db.Close() }, nil
		}
		return nil, nil, fmt.Errorf("unsupported secondary store %q", cfg.SecondaryStore)
	}
}
