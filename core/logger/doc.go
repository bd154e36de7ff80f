// Package logger provides a structured logging facility based on Zap.
//
// Debug level selects the development preset; any other level selects the
// production preset at that level. Format switches between JSON and a
// colored console encoding.
//
// # Request Correlation
//
// WithRayID reads the ray ID stored by the rayid middleware and attaches it
// to the logger, so every line written while serving a request can be
// correlated.
//
// # Usage
//
//	log, _ := logger.New(&logger.Config{Level: "info", Format: "json"})
//	log.Info("Server started")
//
//	// In a request handler:
//	l := logger.WithRayID(log, c)
//	l.Error("Handler failed", zap.Error(err))
package logger
