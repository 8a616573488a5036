package repository_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/msomdec/inkwell/internal/config"
	"github.com/msomdec/inkwell/internal/repository"
)

func TestOpen_SQLite(t *testing.T) {
	ctx := context.Background()
	db, err := repository.Open(ctx, config.DatabaseConfig{
		Driver: config.DriverSQLite,
		URL:    filepath.Join(t.TempDir(), "open.db"),
	})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	if err := db.Ping(ctx); err != nil {
		t.Fatalf("Ping: %v", err)
	}
}

func TestOpen_UnknownDriver(t *testing.T) {
	if _, err := repository.Open(context.Background(), config.DatabaseConfig{Driver: "mysql"}); err == nil {
		t.Fatal("expected error for unknown driver")
	}
}
