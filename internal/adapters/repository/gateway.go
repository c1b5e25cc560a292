package repository

import (
	"context"
	"fmt"

	"github.com/chordcraft/core/internal/infrastructure/config"
	"github.com/chordcraft/core/internal/infrastructure/logger"
	"github.com/chordcraft/core/internal/ports"
)

// NewGateway builds the document gateway selected by cfg.Backend
func NewGateway(ctx context.Context, cfg config.StorageConfig, logger *logger.Logger) (ports.DocumentGateway, error) {
	switch cfg.Backend {
	case config.StorageJSON, "":
		return NewJSONGateway(cfg.DataPath, logger), nil
	case config.StorageSQLite:
		gateway, err := NewSQLiteGateway(ctx, cfg.SQLitePath, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite storage: %w", err)
		}
		return gateway, nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}
