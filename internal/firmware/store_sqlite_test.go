package firmware

import (
	"context"
	"database/sql"
	"reflect"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// setupFirmwareTestDB creates an in-memory SQLite database with the firmware tables.
func setupFirmwareTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:?_foreign_keys=on")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	// Every connection to :memory: is a separate database.
	db.SetMaxOpenConns(1)

	schema := `
		CREATE TABLE firmware_devices (
			device_id   TEXT PRIMARY KEY,
			device_name TEXT NOT NULL DEFAULT '',
			updated_at  TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ', 'now'))
		) STRICT;
		CREATE TABLE firmware_events (
			device_id  TEXT NOT NULL REFERENCES firmware_devices(device_id) ON DELETE CASCADE,
			seq        INTEGER NOT NULL,
			version    TEXT NOT NULL,
			first_seen TEXT NOT NULL,
			PRIMARY KEY (device_id, seq)
		) STRICT;
	`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		t.Fatalf("failed to create test schema: %v", err)
	}

	t.Cleanup(func() {
		db.Close()
	})

	return db
}

func TestSQLiteStore_RoundTrip(t *testing.T) {
	db := setupFirmwareTestDB(t)
	store := NewSQLiteStore(db)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 10, 0, 0, 123456789, time.UTC)
	histories := []History{
		{
			DeviceID:   "front_door",
			DeviceName: "Front Door",
			Events: []Event{
				{Version: "cam-1.28.10700", FirstSeen: base},
				{Version: "cam-1.28.10800", FirstSeen: base.Add(5 * time.Minute)},
				{Version: "cam-1.28.10700", FirstSeen: base.Add(48 * time.Hour)},
			},
		},
		{
			DeviceID: "chime",
			Events:   []Event{{Version: "chime-2.1", FirstSeen: base}},
		},
	}
	for _, h := range histories {
		if err := store.Save(ctx, h); err != nil {
			t.Fatalf("Save(%s) error = %v", h.DeviceID, err)
		}
	}

	got, err := store.LoadAll(ctx)
	if err != nil {
		t.Fatalf("LoadAll() error = %v", err)
	}
	want := []History{histories[1], histories[0]}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("LoadAll() = %+v\nwant %+v", got, want)
	}
}

func TestSQLiteStore_SaveReplaces(t *testing.T) {
	db := setupFirmwareTestDB(t)
	store := NewSQLiteStore(db)
	ctx := context.Background()

	h := History{DeviceID: "dev", Events: []Event{{Version: "v1", FirstSeen: t0}}}
	if err := store.Save(ctx, h); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	h.DeviceName = "Driveway"
	h.Events = append(h.Events, Event{Version: "v2", FirstSeen: t0.Add(time.Hour)})
	if err := store.Save(ctx, h); err != nil {
		t.Fatalf("second Save() error = %v", err)
	}

	got, err := store.LoadAll(ctx)
	if err != nil {
		t.Fatalf("LoadAll() error = %v", err)
	}
	if len(got) != 1 || got[0].DeviceName != "Driveway" || len(got[0].Events) != 2 {
		t.Errorf("LoadAll() = %+v", got)
	}
}

func TestSQLiteStore_Delete(t *testing.T) {
	db := setupFirmwareTestDB(t)
	store := NewSQLiteStore(db)
	ctx := context.Background()

	_ = store.Save(ctx, History{DeviceID: "a", Events: []Event{{Version: "v1", FirstSeen: t0}}})
	_ = store.Save(ctx, History{DeviceID: "b", Events: []Event{{Version: "v1", FirstSeen: t0}}})

	if err := store.Delete(ctx, "a"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if err := store.Delete(ctx, "missing"); err != nil {
		t.Errorf("Delete(missing) error = %v", err)
	}

	var events int
	if err := db.QueryRow("SELECT COUNT(*) FROM firmware_events WHERE device_id = 'a'").Scan(&events); err != nil {
		t.Fatalf("count query: %v", err)
	}
	if events != 0 {
		t.Errorf("events left for deleted device = %d", events)
	}

	got, _ := store.LoadAll(ctx)
	if len(got) != 1 || got[0].DeviceID != "b" {
		t.Errorf("LoadAll() = %+v", got)
	}
}

func TestSQLiteStore_DeviceIDRequired(t *testing.T) {
	store := NewSQLiteStore(setupFirmwareTestDB(t))
	if err := store.Save(context.Background(), History{}); err != ErrDeviceIDRequired {
		t.Errorf("Save() error = %v, want ErrDeviceIDRequired", err)
	}
	if err := store.Delete(context.Background(), ""); err != ErrDeviceIDRequired {
		t.Errorf("Delete() error = %v, want ErrDeviceIDRequired", err)
	}
}

func TestTracker_WithSQLiteStore(t *testing.T) {
	db := setupFirmwareTestDB(t)
	ctx := context.Background()

	tr := NewTracker(NewSQLiteStore(db))
	for i := 1; i <= 10; i++ {
		version := "cam-1.28.10700"
		if i >= 6 {
			version = "cam-1.28.10800"
		}
		if _, err := tr.Observe(ctx, "front_door", version, cycle(i)); err != nil {
			t.Fatalf("Observe() error = %v", err)
		}
	}

	restarted := NewTracker(NewSQLiteStore(db))
	if err := restarted.Load(ctx); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got := restarted.Format("front_door"); got != "cam-1.28.10800 (1 updates)" {
		t.Errorf("Format() after restart = %q", got)
	}

	// The next observation after restart must not re-initialise.
	obs, err := restarted.Observe(ctx, "front_door", "cam-1.28.10800", cycle(11))
	if err != nil {
		t.Fatalf("Observe() error = %v", err)
	}
	if obs.Signal != SignalNone {
		t.Errorf("Signal after restart = %v, want none", obs.Signal)
	}
}
