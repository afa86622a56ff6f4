// Package firmware keeps a deduplicated, persisted changelog of the
// firmware versions reported by each device.
//
// Poll sources repeat the same version on every unchanged cycle. The
// Tracker turns that stream into one event per distinct version:
//
//	tracker := firmware.NewTracker(firmware.NewSQLiteStore(db.DB))
//	if err := tracker.Load(ctx); err != nil {
//	    return err
//	}
//
//	obs, err := tracker.Observe(ctx, "front_door", "cam-1.28.10800", snap.CapturedAt)
//	if errors.Is(err, firmware.ErrPersistence) {
//	    // obs is still valid; the write is retried by Flush
//	}
//	if obs.Signal == firmware.SignalChanged {
//	    notify(obs)
//	}
//
//	tracker.Format("front_door") // "cam-1.28.10800 (1 updates)"
//
// # Persistence
//
// Store implementations persist one record per device holding the ordered
// event list. SQLiteStore uses the firmware_devices and firmware_events
// tables created by the embedded migrations; MemoryStore is used when no
// database is configured.
package firmware
