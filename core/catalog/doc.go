// Package catalog reads site and profile records from the relational catalog.
//
// Rows keep the column order reported by the driver, so the backup exporter
// can derive CSV headers in the order columns were observed.
package catalog
