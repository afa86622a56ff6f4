// Package database opens the SQLite file that holds firmware histories
// and applies the embedded schema migrations.
//
// The connection runs with foreign keys on (firmware events cascade with
// their device) and a single open connection, which matches SQLite's
// single-writer model. WAL mode lets API reads proceed during writes.
//
// Usage:
//
//	db, err := database.Open(database.Config{Path: cfg.Database.Path, WALMode: true, BusyTimeout: 5})
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//
//	if err := db.Migrate(ctx); err != nil {
//	    return err
//	}
//
// Migration files are named YYYYMMDD_HHMMSS_description.up.sql with a
// matching .down.sql, and are applied oldest first, each in its own
// transaction. Applied versions are recorded in schema_migrations.
package database
