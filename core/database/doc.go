// Package database handles catalog database connections and schema inspection.
//
// It wraps GORM to configure MySQL (or SQLite for local runs and tests) from
// the application's configuration.
//
// # Connect
//
// Connect opens and pings the database, bounded by the configured timeout.
//
// # Schema Inspection
//
// GetTableColumns lists a table's columns in ordinal order. The backup
// exporter falls back to it when a table has no rows, so the CSV still
// carries a header. Table and column names coming from configuration are
// checked with ValidateIdentifier before they reach SQL.
//
// # Usage
//
//	db, err := database.Connect(cfg.Database)
//	if err != nil {
//	    log.Fatal("Database connection failed", err)
//	}
//
//	names, err := database.ColumnNames(db, "profiles")
package database
