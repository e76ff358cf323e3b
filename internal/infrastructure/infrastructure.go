// Package infrastructure assembles the shared systems every command needs:
// lifecycle coordination, logging, the database connection and blob storage.
package infrastructure

import (
	"fmt"
	"log/slog"

	"github.com/JaimeStill/flipbook/internal/config"
	"github.com/JaimeStill/flipbook/pkg/database"
	"github.com/JaimeStill/flipbook/pkg/lifecycle"
	"github.com/JaimeStill/flipbook/pkg/logging"
	"github.com/JaimeStill/flipbook/pkg/storage"
)

// Infrastructure holds the core systems required by the document domain.
type Infrastructure struct {
	Lifecycle *lifecycle.Coordinator
	Logger    *slog.Logger
	Database  database.System
	Storage   storage.System
}

// New creates an Infrastructure from the application configuration.
// It initializes all systems but does not start them; call Start separately.
func New(cfg *config.Config) (*Infrastructure, error) {
	lc := lifecycle.New()
	logger := logging.New(&cfg.Logging)

	db, err := database.New(&cfg.Database, logger)
	if err != nil {
		return nil, fmt.Errorf("database init failed: %w", err)
	}

	blobs, err := storage.New(&cfg.Storage, logger)
	if err != nil {
		return nil, fmt.Errorf("storage init failed: %w", err)
	}

	return &Infrastructure{
		Lifecycle: lc,
		Logger:    logger,
		Database:  db,
		Storage:   blobs,
	}, nil
}

// Start registers infrastructure teardown with the lifecycle coordinator.
func (i *Infrastructure) Start() error {
	if err := i.Database.Start(i.Lifecycle); err != nil {
		return fmt.Errorf("database start failed: %w", err)
	}
	if err := i.Storage.Start(i.Lifecycle); err != nil {
		return fmt.Errorf("storage start failed: %w", err)
	}
	return nil
}
