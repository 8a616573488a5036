package cli_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/msomdec/inkwell/internal/cli"
	"github.com/msomdec/inkwell/internal/domain"
	"github.com/msomdec/inkwell/internal/repository/sqlite"
	"github.com/msomdec/inkwell/internal/service"
)

func execute(t *testing.T, args ...string) error {
	t.Helper()
	root := cli.Root()
	root.SetArgs(args)
	return root.Execute()
}

func TestMigrateSeedAndRole(t *testing.T) {
	t.Chdir(t.TempDir())
	dbPath := filepath.Join(t.TempDir(), "cli.db")
	common := []string{"--db-driver", "sqlite", "--db-url", dbPath, "--log-level", "error"}

	if err := execute(t, append([]string{"migrate"}, common...)...); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	db, err := sqlite.New(dbPath)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer db.Close()
	ctx := context.Background()

	auth := service.NewAuthService(db.Users(), "cli-test-secret-0123456789abcdefghij", 4, time.Hour)
	if _, err := auth.Register(ctx, "Owner", "owner@example.com", "secret1"); err != nil {
		t.Fatalf("Register: %v", err)
	}

	if err := execute(t, append([]string{"user", "role", "--email", "OWNER@example.com", "--role", "admin"}, common...)...); err != nil {
		t.Fatalf("user role: %v", err)
	}
	user, err := db.Users().GetByEmail(ctx, "owner@example.com")
	if err != nil {
		t.Fatalf("GetByEmail: %v", err)
	}
	if user.Role != domain.RoleAdmin {
		t.Fatalf("expected admin role, got %q", user.Role)
	}

	for range 2 {
		if err := execute(t, append([]string{"seed", "--email", "owner@example.com"}, common...)...); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	n, err := db.Posts().Count(ctx, domain.PostFilter{})
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if n != service.SamplePostCount() {
		t.Fatalf("expected %d posts after seeding twice, got %d", service.SamplePostCount(), n)
	}
}

func TestSeedUnknownOwner(t *testing.T) {
	t.Chdir(t.TempDir())
	dbPath := filepath.Join(t.TempDir(), "cli.db")

	err := execute(t, "seed", "--email", "nobody@example.com", "--db-driver", "sqlite", "--db-url", dbPath, "--log-level", "error")
	if err == nil {
		t.Fatal("expected error for unknown owner")
	}
}

func TestUserRoleRejectsUnknownRole(t *testing.T) {
	t.Chdir(t.TempDir())
	dbPath := filepath.Join(t.TempDir(), "cli.db")

	err := execute(t, "user", "role", "--email", "a@b.co", "--role", "owner", "--db-driver", "sqlite", "--db-url", dbPath, "--log-level", "error")
	if err == nil {
		t.Fatal("expected error for unknown role")
	}
}
