package firmware

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// SQLiteStore implements Store on the firmware_devices and firmware_events
// tables.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite firmware store.
//
// Parameters:
//   - db: Open SQLite connection with migrations applied
//
// Returns:
//   - *SQLiteStore: Store instance ready for use
func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// LoadAll reads every device history, events ordered by sequence number.
//
// Parameters:
//   - ctx: Context for cancellation and timeout
//
// Returns:
//   - []History: One history per device, ordered by device ID
//   - error: nil on success, otherwise the underlying query error
func (s *SQLiteStore) LoadAll(ctx context.Context) ([]History, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT d.device_id, d.device_name, e.version, e.first_seen
		 FROM firmware_devices d
		 LEFT JOIN firmware_events e ON e.device_id = d.device_id
		 ORDER BY d.device_id, e.seq`)
	if err != nil {
		return nil, fmt.Errorf("querying firmware history: %w", err)
	}
	defer rows.Close()

	var out []History
	for rows.Next() {
		var (
			deviceID, deviceName string
			version, firstSeen   sql.NullString
		)
		if err := rows.Scan(&deviceID, &deviceName, &version, &firstSeen); err != nil {
			return nil, fmt.Errorf("scanning firmware history: %w", err)
		}

		if len(out) == 0 || out[len(out)-1].DeviceID != deviceID {
			out = append(out, History{DeviceID: deviceID, DeviceName: deviceName})
		}
		if !version.Valid {
			continue
		}

		ts, err := parseEventTimestamp(firstSeen.String)
		if err != nil {
			return nil, fmt.Errorf("device %s: %w", deviceID, err)
		}
		h := &out[len(out)-1]
		h.Events = append(h.Events, Event{Version: version.String, FirstSeen: ts})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating firmware history: %w", err)
	}

	return out, nil
}

// Save replaces the stored history for h.DeviceID in one transaction.
//
// Parameters:
//   - ctx: Context for cancellation and timeout
//   - h: Complete history to persist
//
// Returns:
//   - error: nil on success, otherwise the underlying database error
func (s *SQLiteStore) Save(ctx context.Context, h History) error {
	if h.DeviceID == "" {
		return ErrDeviceIDRequired
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	_, err = tx.ExecContext(ctx,
		`INSERT INTO firmware_devices (device_id, device_name, updated_at)
		 VALUES (?, ?, ?)
		 ON CONFLICT(device_id) DO UPDATE SET
		   device_name = excluded.device_name,
		   updated_at = excluded.updated_at`,
		h.DeviceID,
		h.DeviceName,
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("upserting firmware device: %w", err)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM firmware_events WHERE device_id = ?", h.DeviceID); err != nil {
		return fmt.Errorf("clearing firmware events: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		"INSERT INTO firmware_events (device_id, seq, version, first_seen) VALUES (?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("preparing event insert: %w", err)
	}
	defer stmt.Close()

	for i, ev := range h.Events {
		if _, err := stmt.ExecContext(ctx, h.DeviceID, i, ev.Version, ev.FirstSeen.UTC().Format(time.RFC3339Nano)); err != nil {
			return fmt.Errorf("inserting firmware event %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing firmware history: %w", err)
	}
	return nil
}

// Delete removes a device and its events.
//
// Parameters:
//   - ctx: Context for cancellation and timeout
//   - deviceID: Device to remove
//
// Returns:
//   - error: nil on success (including when the device was not stored)
func (s *SQLiteStore) Delete(ctx context.Context, deviceID string) error {
	if deviceID == "" {
		return ErrDeviceIDRequired
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if _, err := tx.ExecContext(ctx, "DELETE FROM firmware_events WHERE device_id = ?", deviceID); err != nil {
		return fmt.Errorf("deleting firmware events: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM firmware_devices WHERE device_id = ?", deviceID); err != nil {
		return fmt.Errorf("deleting firmware device: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing firmware delete: %w", err)
	}
	return nil
}

// parseEventTimestamp parses a first_seen value written by Save.
func parseEventTimestamp(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, fmt.Errorf("first_seen is empty")
	}

	ts, err := time.Parse(time.RFC3339Nano, value)
	if err == nil {
		return ts.UTC(), nil
	}

	fallback, fallbackErr := time.Parse("2006-01-02 15:04:05", value)
	if fallbackErr == nil {
		return fallback.UTC(), nil
	}

	return time.Time{}, fmt.Errorf("parsing first_seen: %w", err)
}
