// Package store opens the configured persistence backend and hands out its
// repositories.
package store

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"pricetrack/internal/domain/item"
	"pricetrack/internal/domain/user"
	"pricetrack/internal/infrastructure/mongodb"
	"pricetrack/internal/infrastructure/postgres"
	"pricetrack/internal/shared/config"
)

// Store bundles the repositories of one backend with its lifecycle.
type Store struct {
	Driver string
	Users  user.Repository
	Items  item.Repository

	ping  func(ctx context.Context) error
	close func(ctx context.Context) error
}

// Open connects to the backend selected by cfg.Store.Driver. The postgres
// backend has its schema migrated before the store is returned; the mongo
// backend ensures its indexes while connecting.
func Open(ctx context.Context, cfg *config.Config, log *zap.Logger) (*Store, error) {
	switch cfg.Store.Driver {
	case config.StoreMongo:
		return openMongo(ctx, cfg.Mongo, log)
	case config.StorePostgres:
		return openPostgres(cfg.Database, log)
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}

// OpenPostgres connects to postgres without running migrations.
func OpenPostgres(cfg config.DatabaseConfig, log *zap.Logger) (*Store, *postgres.DB, error) {
	db, err := postgres.New(cfg.ConnectionString())
	if err != nil {
		return nil, nil, err
	}
	log.Info("Connected to postgres", zap.String("host", cfg.Host), zap.String("database", cfg.DBName))
	return newPostgresStore(db), db, nil
}

func openMongo(ctx context.Context, cfg config.MongoConfig, log *zap.Logger) (*Store, error) {
	db, err := mongodb.New(ctx, cfg.URI, cfg.Database)
	if err != nil {
		return nil, err
	}
	log.Info("Connected to mongodb", zap.String("database", cfg.Database))

	return &Store{
		Driver: config.StoreMongo,
		Users:  mongodb.NewUserRepository(db),
		Items:  mongodb.NewItemRepository(db),
		ping:   db.Ping,
		close:  db.Close,
	}, nil
}

func openPostgres(cfg config.DatabaseConfig, log *zap.Logger) (*Store, error) {
	s, db, err := OpenPostgres(cfg, log)
	if err != nil {
		return nil, err
	}

	version, err := db.Migrate()
	if err != nil {
		db.Close()
		return nil, err
	}
	log.Info("Database schema up to date", zap.Uint("version", version))
	return s, nil
}

func newPostgresStore(db *postgres.DB) *Store {
	return &Store{
		Driver: config.StorePostgres,
		Users:  postgres.NewUserRepository(db),
		Items:  postgres.NewItemRepository(db),
		ping:   db.Ping,
		close:  func(context.Context) error { return db.Close() },
	}
}

// Ping reports whether the backend is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.ping(ctx)
}

// Close releases the backend's connections.
func (s *Store) Close(ctx context.Context) error {
	return s.close(ctx)
}
