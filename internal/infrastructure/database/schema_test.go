package database_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/nerrad567/ring-extended-core/internal/infrastructure/database"
	_ "github.com/nerrad567/ring-extended-core/migrations"
)

func TestEmbeddedSchema(t *testing.T) {
	db, err := database.Open(database.Config{
		Path:        filepath.Join(t.TempDir(), "schema.db"),
		WALMode:     true,
		BusyTimeout: 5,
	})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer db.Close() //nolint:errcheck // Test cleanup

	ctx := context.Background()
	if err := db.Migrate(ctx); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}

	if _, err := db.ExecContext(ctx,
		`INSERT INTO firmware_devices (device_id, device_name, updated_at) VALUES ('front_door', 'Front Door', '2026-03-01T10:00:00Z')`,
	); err != nil {
		t.Fatalf("insert device: %v", err)
	}
	if _, err := db.ExecContext(ctx,
		`INSERT INTO firmware_events (device_id, seq, version, first_seen) VALUES ('front_door', 0, 'cam-1.28.10700', '2026-03-01T10:00:00Z')`,
	); err != nil {
		t.Fatalf("insert event: %v", err)
	}
	if _, err := db.ExecContext(ctx,
		`INSERT INTO firmware_events (device_id, seq, version, first_seen) VALUES ('missing', 0, 'x', '2026-03-01T10:00:00Z')`,
	); err == nil {
		t.Error("expected foreign key violation for unknown device")
	}

	if _, err := db.ExecContext(ctx, `DELETE FROM firmware_devices WHERE device_id = 'front_door'`); err != nil {
		t.Fatalf("delete device: %v", err)
	}
	var events int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM firmware_events`).Scan(&events); err != nil {
		t.Fatalf("count events: %v", err)
	}
	if events != 0 {
		t.Errorf("events after cascade = %d, want 0", events)
	}

	if err := db.MigrateDown(ctx); err != nil {
		t.Fatalf("MigrateDown() error = %v", err)
	}
}
