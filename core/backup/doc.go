// Package backup exports the asset bucket and the catalog tables into a
// single zip archive.
//
// The archive holds every stored object under storage/<path>, empty-folder
// markers included, and one CSV dump per table under database/<table>.csv.
// It is assembled in memory and only returned once every object and table
// has been written; any failure discards it.
//
// # CSV
//
// Headers are the union of the keys observed across rows, in first-seen
// order. A table with no rows falls back to schema introspection so the dump
// still carries a header. Header names are sanitized and made unique; values
// are normalized before quoting (see NormalizeValue).
package backup
