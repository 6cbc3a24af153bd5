// Package database handles database connections and schema inspection.
//
// It provides a wrapper around GORM to open the Nautobot database with the
// application's configuration. MySQL is used in production; SQLite serves local
// development and tests.
//
// # Connect
//
// Connect builds the DSN (URL-encoding credentials), applies the pool settings
// and verifies the connection with a ping bounded by TimeoutSeconds. Open is the
// shared gorm.Open wrapper and accepts any dialector, including a go-sqlmock
// backed one.
//
// # Schema Inspection
//
// GetTableColumns lists a table's columns on both dialects. MissingColumns
// compares the live schema against the columns the sync expects, which the
// migrate command reports after provisioning.
//
// # Usage
//
//	db, err := database.Connect(cfg.Database)
//	if err != nil {
//	    return err
//	}
//
//	missing, err := database.MissingColumns(db, map[string][]string{
//	    "dcim_device": {"id", "name", "serial"},
//	})
package database
