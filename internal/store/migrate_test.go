package store

import (
	"database/sql"
	"path/filepath"
	"testing"
)

// openBareDB opens a test database without running migrations.
func openBareDB(t *testing.T) *DB {
	t.Helper()
	sqlDB, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "runs.db"))
	if err != nil {
		t.Fatalf("failed to open test DB: %v", err)
	}
	t.Cleanup(func() { sqlDB.Close() })
	return &DB{sqlDB}
}

func TestMigrateUpCreatesSchema(t *testing.T) {
	db := openBareDB(t)

	if err := db.MigrateUp(Migrations()); err != nil {
		t.Fatalf("MigrateUp failed: %v", err)
	}

	version, dirty, err := db.MigrateVersion(Migrations())
	if err != nil {
		t.Fatalf("MigrateVersion failed: %v", err)
	}
	if version != 1 {
		t.Errorf("expected version 1, got %d", version)
	}
	if dirty {
		t.Error("database should not be dirty after successful migration")
	}

	for _, table := range []string{"mesh_runs", "run_grains"} {
		var exists bool
		err := db.QueryRow(`
			SELECT COUNT(*) > 0
			FROM sqlite_master
			WHERE type='table' AND name=?
		`, table).Scan(&exists)
		if err != nil {
			t.Fatalf("failed to check %s: %v", table, err)
		}
		if !exists {
			t.Errorf("%s should exist after migration", table)
		}
	}
}

func TestMigrateUp_Idempotency(t *testing.T) {
	db := openBareDB(t)

	if err := db.MigrateUp(Migrations()); err != nil {
		t.Fatalf("first MigrateUp failed: %v", err)
	}
	if err := db.MigrateUp(Migrations()); err != nil {
		t.Fatalf("second MigrateUp failed: %v", err)
	}
}

func TestMigrateDownDropsSchema(t *testing.T) {
	db := openBareDB(t)

	if err := db.MigrateUp(Migrations()); err != nil {
		t.Fatalf("MigrateUp failed: %v", err)
	}
	if err := db.MigrateDown(Migrations()); err != nil {
		t.Fatalf("MigrateDown failed: %v", err)
	}

	var exists bool
	err := db.QueryRow(`
		SELECT COUNT(*) > 0
		FROM sqlite_master
		WHERE type='table' AND name='mesh_runs'
	`).Scan(&exists)
	if err != nil {
		t.Fatalf("failed to check mesh_runs: %v", err)
	}
	if exists {
		t.Error("mesh_runs should be gone after down migration")
	}
}

func TestMigrateVersionOnFreshDB(t *testing.T) {
	db := openBareDB(t)

	version, dirty, err := db.MigrateVersion(Migrations())
	if err != nil {
		t.Fatalf("MigrateVersion failed: %v", err)
	}
	if version != 0 || dirty {
		t.Errorf("fresh db: version=%d dirty=%v, want 0 false", version, dirty)
	}
}

func TestNewDBMigratesAutomatically(t *testing.T) {
	db, err := NewDB(filepath.Join(t.TempDir(), "runs.db"))
	if err != nil {
		t.Fatalf("NewDB failed: %v", err)
	}
	defer db.Close()

	var exists bool
	if err := db.QueryRow(`
		SELECT COUNT(*) > 0
		FROM sqlite_master
		WHERE type='table' AND name='mesh_runs'
	`).Scan(&exists); err != nil {
		t.Fatalf("failed to check mesh_runs: %v", err)
	}
	if !exists {
		t.Error("NewDB should have created mesh_runs")
	}
}
