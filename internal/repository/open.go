// Package repository selects the storage backend named in the configuration.
package repository

import (
	"context"
	"fmt"

	"github.com/msomdec/inkwell/internal/config"
	"github.com/msomdec/inkwell/internal/domain"
	"github.com/msomdec/inkwell/internal/repository/mongo"
	"github.com/msomdec/inkwell/internal/repository/postgres"
	"github.com/msomdec/inkwell/internal/repository/sqlite"
)

// Open connects to the configured backend. The caller owns the returned
// Database and must Close it.
func Open(ctx context.Context, cfg config.DatabaseConfig) (domain.Database, error) {
	switch cfg.Driver {
	case config.DriverSQLite:
		return sqlite.New(cfg.URL)
	case config.DriverPostgres:
		return postgres.New(ctx, cfg.URL)
	case config.DriverMongo:
		return mongo.Connect(ctx, cfg.URL, cfg.Name)
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}
}
