// Package database handles the journal database connection and schema inspection.
//
// It wraps GORM to open either a MySQL server or a SQLite file based on the application's
// configuration.
//
// # Connect
//
// Connect picks the dialector from Config.Driver, applies timeouts and pool settings, and
// pings the database before returning it.
//
// # Schema Inspection
//
// TableColumns and MissingColumns read a table's columns (SHOW COLUMNS on MySQL,
// PRAGMA table_info on SQLite). The journal uses them to verify its tables after migration.
//
// # Usage
//
//	db, err := database.Connect(cfg.Database)
//	if err != nil {
//	    log.Fatal("Database connection failed", err)
//	}
//
//	missing, err := database.MissingColumns(db, "sync_runs", []string{"id", "status"})
package database
