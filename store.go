package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"shorts-player/domain/repository"
	"shorts-player/infrastructure/configuration"
	"shorts-player/infrastructure/persistence"
)

// videoStore bundles the selected video repository with its connection lifecycle.
type videoStore struct {
	repository.IVideoRecord
	driver string
	ping   func(ctx context.Context) error
	ensure func(ctx context.Context) error
	close  func(ctx context.Context) error
}

// InitiateStore opens the backend named by cfg.Driver. No connection is made yet.
func InitiateStore(cfg configuration.Database) (*videoStore, error) {
	switch strings.ToLower(cfg.Driver) {
	case "", "mongo", "mongodb":
		client, err := persistence.NewMongoDb(cfg.Mongo.URI, cfg.Mongo.Timeout)
		if err != nil {
			return nil, err
		}
		db := client.Database(cfg.Mongo.Database)
		return &videoStore{
			IVideoRecord: persistence.NewVideoRepositoryMongo(db),
			driver:       "mongo",
			ping:         func(ctx context.Context) error { return client.Ping(ctx, nil) },
			ensure:       func(ctx context.Context) error { return persistence.EnsureVideoIndexes(ctx, db) },
			close:        client.Disconnect,
		}, nil

	case "postgres", "postgresql", "psql":
		db, err := persistence.NewPostgreSQLDB(cfg.Psql)
		if err != nil {
			return nil, err
		}
		return &videoStore{
			IVideoRecord: persistence.NewVideoRepository(db),
			driver:       "postgres",
			ping:         db.PingContext,
			ensure:       func(context.Context) error { return persistence.EnsureVideoSchema(db) },
			close:        func(context.Context) error { return db.Close() },
		}, nil

	case "mssql", "sqlserver":
		db, err := persistence.NewMSSQLDB(cfg.Mssql)
		if err != nil {
			return nil, err
		}
		return &videoStore{
			IVideoRecord: persistence.NewVideoRepositoryMSSQL(db),
			driver:       "mssql",
			ping:         db.PingContext,
			ensure:       func(context.Context) error { return persistence.EnsureVideoSchemaMSSQL(db) },
			close:        func(context.Context) error { return db.Close() },
		}, nil

	case "mysql":
		gdb, err := persistence.NewMySQLGorm(cfg.MySql)
		if err != nil {
			return nil, err
		}
		sqlDB, err := gdb.DB()
		if err != nil {
			return nil, err
		}
		return &videoStore{
			IVideoRecord: persistence.NewVideoRepositoryGorm(gdb),
			driver:       "mysql",
			ping:         sqlDB.PingContext,
			ensure:       func(ctx context.Context) error { return persistence.EnsureVideoSchemaGorm(gdb.WithContext(ctx)) },
			close:        func(context.Context) error { return sqlDB.Close() },
		}, nil
	}
	return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
}

// prepare verifies connectivity and creates tables or indexes.
func (s *videoStore) prepare(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := s.ping(ctx); err != nil {
		return fmt.Errorf("ping %s store: %w", s.driver, err)
	}
	if err := s.ensure(ctx); err != nil {
		return fmt.Errorf("prepare %s schema: %w", s.driver, err)
	}
	return nil
}
