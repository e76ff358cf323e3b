package api

import (
	"fmt"

	"github.com/JaimeStill/flipbook/internal/assist"
	"github.com/JaimeStill/flipbook/internal/config"
	"github.com/JaimeStill/flipbook/internal/documents"
	"github.com/JaimeStill/flipbook/internal/store"
	"github.com/JaimeStill/flipbook/internal/thumbnail"
	"github.com/JaimeStill/flipbook/pkg/database"
)

// Domain holds the systems behind the API.
type Domain struct {
	Documents documents.System
	Assist    assist.System
}

// NewDomain creates the domain systems from the API runtime.
func NewDomain(cfg *config.Config, runtime *Runtime) (*Domain, error) {
	st := store.Unavailable()
	if cfg.Database.Driver != database.None {
		st = store.New(runtime.Database, runtime.Storage, runtime.Logger)
	}

	docs := documents.New(st, thumbnail.New(&cfg.Thumbnail, runtime.Logger), runtime.Logger)

	assistant, err := assist.New(&cfg.Assist, assist.NewRedisCache(&cfg.Cache), runtime.Logger)
	if err != nil {
		return nil, fmt.Errorf("assist init failed: %w", err)
	}

	return &Domain{
		Documents: docs,
		Assist:    assistant,
	}, nil
}

// Start loads the library mirror at startup and registers assistant teardown.
func (d *Domain) Start(runtime *Runtime) error {
	if err := d.Assist.Start(runtime.Lifecycle); err != nil {
		return fmt.Errorf("assist start failed: %w", err)
	}

	lc := runtime.Lifecycle
	lc.OnStartup(func() {
		if err := d.Documents.Load(lc.Context()); err != nil {
			runtime.Logger.Error("document library load failed", "error", err)
		}
	})
	return nil
}
