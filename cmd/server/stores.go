package main

import (
	"context"
	"fmt"

	"github.com/sbilibin2017/gw-user-registry/internal/config"
	"github.com/sbilibin2017/gw-user-registry/internal/logger"
	"github.com/sbilibin2017/gw-user-registry/internal/repositories"
	"github.com/sbilibin2017/gw-user-registry/internal/services"
)

// storeSet holds the configured user stores and their cleanup functions.
type storeSet struct {
	primary   services.UserStore
	secondary services.UserStore // nil when SECONDARY_STORE=none
	closers   []func(context.Context) error
}

// Close releases every store connection.
func (s *storeSet) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](context.Background()); err != nil {
			logger.Log.Warnw("failed to close store", "error", err)
		}
	}
}

// openStores opens the primary store, which must be usable, and the
// secondary store, which may be down at start-up.
func openStores(ctx context.Context, cfg *config.Config) (*storeSet, error) {
	set := &storeSet{}

	switch cfg.PrimaryStore {
	case config.StoreFile:
		repo, err := repositories.NewUserFileRepository(cfg.UsersPath())
		if err != nil {
			return nil, err
		}
		set.primary = repo
	case config.StoreMongo:
		client, err := repositories.ConnectMongo(ctx, cfg.MongoURI, cfg.PrimaryConnectTimeout)
		if err != nil {
			return nil, err
		}
		set.closers = append(set.closers, client.Disconnect)

		repo := repositories.NewUserMongoRepository(client.Database(cfg.MongoDB))
		if err := repo.EnsureIndexes(ctx); err != nil {
			set.Close()
			return nil, err
		}
		set.primary = repo
	default:
		return nil, fmt.Errorf("unsupported primary store %q", cfg.PrimaryStore)
	}

	if !cfg.HasSecondary() {
		return set, nil
	}

	secondary, closeFn, err := openSecondary(ctx, cfg)
	if err != nil {
		set.Close()
		return nil, err
	}
	set.closers = append(set.closers, closeFn)
	set.secondary = secondary
	return set, nil
}

// openSecondary creates the secondary store without requiring the server to
// be up. A failed schema setup is logged here and retried by the store's
// Ping, which gates every secondary write.
func openSecondary(ctx context.Context, cfg *config.Config) (services.UserStore, func(context.Context) error, error) {
	setupCtx, cancel := context.WithTimeout(ctx, cfg.SecondaryPingTimeout)
	defer cancel()

	switch cfg.SecondaryStore {
	case config.StoreMongo:
		client, err := repositories.NewMongoClient(cfg.MongoURI, cfg.SecondaryPingTimeout)
		if err != nil {
			return nil, nil, err
		}
		repo := repositories.NewUserMongoRepository(client.Database(cfg.MongoDB))
		if err := repo.EnsureIndexes(setupCtx); err != nil {
			logger.Log.Warnw("could not create mongo indexes", "error", err)
		}
		return repo, client.Disconnect, nil

	case config.StorePostgres:
		db, err := repositories.OpenPostgres(cfg.PostgresDSN, cfg.PostgresMaxOpenConns, cfg.PostgresMaxIdleConns)
		if err != nil {
			return nil, nil, err
		}
		repo := repositories.NewUserPostgresRepository(db)
		if err := repo.EnsureSchema(setupCtx); err != nil {
			logger.Log.Warnw("could not create postgres schema", "error", err)
		}
		return repo, func(context.Context) error { return db.Close() }, nil
	}

	return nil, nil, fmt.Errorf("unsupported secondary store %q", cfg.SecondaryStore)
}
