package migrations

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFindLatestMigrationVersion(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{
		"000001_create_levels.up.sql",
		"000001_create_levels.down.sql",
		"000012_add_index.up.sql",
		"README.md",
		"abc_000099.sql",
	} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("--"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "000500_dir"), 0o755); err != nil {
		t.Fatal(err)
	}

	if got := findLatestMigrationVersion(dir); got != 12 {
		t.Errorf("latest = %d, want 12", got)
	}
}

func TestFindLatestMigrationVersionMissingDir(t *testing.T) {
	if got := findLatestMigrationVersion(filepath.Join(t.TempDir(), "nope")); got != 0 {
		t.Errorf("latest = %d, want 0", got)
	}
}

func TestShippedMigrationsArePaired(t *testing.T) {
	dir := filepath.Join("..", "..", DefaultDir)
	if findLatestMigrationVersion(dir) == 0 {
		t.Fatal("no migrations found")
	}
	ups, _ := filepath.Glob(filepath.Join(dir, "*.up.sql"))
	downs, _ := filepath.Glob(filepath.Join(dir, "*.down.sql"))
	if len(ups) != len(downs) {
		t.Errorf("%d up migrations but %d down migrations", len(ups), len(downs))
	}
}

func TestRunMigrationsNeedsURL(t *testing.T) {
	if err := RunMigrations("", ""); err == nil {
		t.Error("expected an error for an empty database URL")
	}
}
