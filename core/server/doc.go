// Package server holds the HTTP server configuration.
//
// # Configuration
//
// The Config struct defines the HTTP port, the secret that verifies admin
// bearer tokens, the catalog role admins must hold, and the request body
// limit.
//
// # Usage
//
// This package is embedded by core/config and read by the start command,
// which refuses to serve admin routes until Validate passes.
package server
