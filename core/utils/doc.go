// Package utils provides small conversion helpers shared by the catalog and
// the HTTP handlers.
package utils
