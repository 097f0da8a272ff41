package store

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/painel-economico/indicadores-server/internal/config"
)

// NewStore creates the snapshot store selected by the configuration.
func NewStore(ctx context.Context, cfg *config.Config) (Store, error) {
	storageType := config.StorageTypeMemory
	if cfg != nil {
		storageType = cfg.GetStorageType()
	}

	switch storageType {
	case config.StorageTypeMemory:
		slog.InfoContext(ctx, "Using in-memory storage")
		return NewMemoryStore(), nil
	case config.StorageTypePostgres:
		slog.InfoContext(ctx, "Using PostgreSQL storage")
		return NewPostgresStore(ctx, cfg)
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", storageType)
	}
}
