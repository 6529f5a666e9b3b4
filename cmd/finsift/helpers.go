package main

import (
	"context"
	"fmt"

	"github.com/spf13/viper"

	"github.com/finsift/finsift/internal/config"
	"github.com/finsift/finsift/internal/engine"
	"github.com/finsift/finsift/internal/storage"
)

// initStorage opens the transaction store and brings the schema up to date.
func initStorage(ctx context.Context) (*storage.SQLiteStorage, error) {
	dbPath := viper.GetString("database.path")
	if dbPath == "" {
		dbPath = config.DefaultDatabasePath()
	} else {
		dbPath = config.ExpandPath(dbPath)
	}

	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open storage: %w", err)
	}

	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// initPipeline opens the store and builds the ingestion pipeline over it.
// The caller owns closing the returned store.
func initPipeline(ctx context.Context) (*engine.Pipeline, *storage.SQLiteStorage, error) {
	store, err := initStorage(ctx)
	if err != nil {
		return nil, nil, err
	}

	pipeline, err := engine.New(store)
	if err != nil {
		_ = store.Close()
		return nil, nil, err
	}

	return pipeline, store, nil
}
