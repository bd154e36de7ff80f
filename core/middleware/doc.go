// Package middleware contains HTTP middleware for the Fiber application.
//
// # Components
//
//   - Auth: verifies an HS256 bearer token and requires the caller's catalog
//     role to equal the configured admin role. Every failure answers 403.
//   - RayID: assigns a request ID, stores it in the context locals and echoes
//     it in the X-Ray-ID response header.
//
// RayID is registered globally; Auth guards the admin route group.
package middleware
