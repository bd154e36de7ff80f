package cmd

import (
	"context"
	"fmt"
	"time"

	"site-janitor/core/catalog"
	"site-janitor/core/config"
	"site-janitor/core/database"
	"site-janitor/core/logger"
	"site-janitor/core/storage"

	"go.uber.org/zap"
)

// environment holds the connections every command needs.
type environment struct {
	cfg     *config.Config
	logger  *zap.Logger
	store   *storage.Bucket
	catalog *catalog.Catalog
}

// setup loads configuration and opens the bucket and the catalog.
func setup() (*environment, error) {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	l, err := logger.New(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	db, err := database.Connect(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	cat, err := catalog.New(db, cfg.Catalog)
	if err != nil {
		return nil, err
	}

	client, err := storage.NewClient(cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to storage: %w", err)
	}

	bucket := storage.NewBucket(client, cfg.Storage)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := bucket.Check(ctx); err != nil {
		return nil, err
	}

	return &environment{
		cfg:     cfg,
		logger:  l.With(zap.String("bucket", cfg.Storage.Bucket)),
		store:   bucket,
		catalog: cat,
	}, nil
}
